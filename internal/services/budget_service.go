package services

import (
	"gorm.io/gorm"

	"kopilka/internal/budget"
	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
)

// budgetService assembles the derived budget summary. It owns no state: it
// re-fetches the user's records and recomputes from scratch on every call,
// which is the intended model for the small record counts involved.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// GetSummary loads the user's income, categories, and expenses and computes
// the full summary. Expenses come back date-descending so each category's
// list is already in display order.
func (s *budgetService) GetSummary(userID string) (*UserBudget, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUserNotFound, err)
	}

	var categories []models.Category
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := s.db.Where("user_id = ?", userID).
		Order("date DESC, created_at DESC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &UserBudget{
		Summary:  budget.Compute(user.MonthlyIncome, categories, expenses),
		Currency: user.Currency,
	}, nil
}
