package models

import "time"

// DefaultCurrency is assigned to new accounts until the user picks another
// symbol.
const DefaultCurrency = "₽"

// User represents the user model in the database. MonthlyIncome is stored in
// minor currency units and starts at zero; it changes only through an
// explicit income update.
type User struct {
	Base
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	DisplayName         string     `json:"display_name"`
	MonthlyIncome       int64      `gorm:"type:bigint;not null;default:0" json:"monthly_income"`
	Currency            string     `gorm:"size:8;not null" json:"currency"`
	RefreshTokenHash    string     `gorm:"size:64" json:"-"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`

	// Relationships
	Categories []Category `gorm:"foreignKey:UserID" json:"categories,omitempty"`
	Expenses   []Expense  `gorm:"foreignKey:UserID" json:"expenses,omitempty"`
}
