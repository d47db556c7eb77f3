package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"kopilka/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:       email,
		Password:    string(hash),
		DisplayName: fmt.Sprintf("Test User %d", counter.Load()),
		Currency:    models.DefaultCurrency,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestUserWithIncome creates a user with the given monthly income (minor units).
func CreateTestUserWithIncome(t *testing.T, db *gorm.DB, income int64) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)
	if err := db.Model(user).Update("monthly_income", income).Error; err != nil {
		t.Fatalf("failed to set test user income: %v", err)
	}
	return user
}

// CreateTestCategory creates a category with palette defaults.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Color:  models.CategoryColors[0],
		Icon:   models.CategoryIcons[0],
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestExpense creates an expense of the given amount (minor units)
// dated today.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, categoryID string, amount int64) *models.Expense {
	t.Helper()

	now := time.Now()
	expense := &models.Expense{
		UserID:     userID,
		CategoryID: categoryID,
		Name:       fmt.Sprintf("Test Expense %d", nextID()),
		Amount:     amount,
		Date:       time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}
