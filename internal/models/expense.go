package models

import "time"

// Expense represents a single dated spending record inside a category.
// Amount is in minor currency units and always positive. Selected is the
// "set aside" marker: it affects nothing but display and the bulk reset.
type Expense struct {
	Base
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID  string    `gorm:"type:uuid;not null;index" json:"category_id"`
	Name        string    `gorm:"not null" json:"name"`
	Amount      int64     `gorm:"type:bigint;not null" json:"amount"`
	Date        time.Time `gorm:"not null" json:"date"`
	Description string    `json:"description"`
	Selected    bool      `gorm:"not null;default:false" json:"selected"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
