package services

import (
	"time"

	"kopilka/internal/budget"
	"kopilka/internal/models"
)

// UserServicer defines the contract for user and profile business logic.
type UserServicer interface {
	CreateUser(email, password, displayName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	UpdateMonthlyIncome(userID string, income int64) (*models.User, error)
	UpdateCurrency(userID, symbol string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	ClearRefreshTokenHash(userID string) error
}

// CategoryServicer defines the contract for category business logic.
type CategoryServicer interface {
	CreateCategory(userID, name, color, icon string) (*models.Category, error)
	GetUserCategories(userID string) ([]models.Category, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	RenameCategory(userID, categoryID, name string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, color, icon string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// ExpenseServicer defines the contract for expense business logic.
type ExpenseServicer interface {
	CreateExpense(userID, categoryID, name string, amount int64, date time.Time, description string) (*models.Expense, error)
	GetUserExpenses(userID string) ([]models.Expense, error)
	GetCategoryExpenses(userID, categoryID string) ([]models.Expense, error)
	GetExpenseByID(userID, expenseID string) (*models.Expense, error)
	UpdateExpense(userID, expenseID, name string, amount int64, date *time.Time, description *string) (*models.Expense, error)
	ToggleSelected(userID, expenseID string) (*models.Expense, error)
	SetSelected(userID string, expenseIDs []string, value bool) error
	ClearSelected(userID string) (int64, error)
	DeleteExpense(userID, expenseID string) error
}

// UserBudget is a user's computed budget summary plus the display currency
// carried from the profile.
type UserBudget struct {
	budget.Summary
	Currency string `json:"currency"`
}

// BudgetServicer defines the contract for the derived budget summary.
type BudgetServicer interface {
	GetSummary(userID string) (*UserBudget, error)
}
