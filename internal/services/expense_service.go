package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
)

// expenseService handles expense business logic.
type expenseService struct {
	db *gorm.DB
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db}
}

// normalizeDate strips the time component; expenses carry calendar dates.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CreateExpense records a new expense in a category. Name and amount are
// validated before any write; a zero date defaults to today. The selected
// flag always starts false.
func (s *expenseService) CreateExpense(userID, categoryID, name string, amount int64, date time.Time, description string) (*models.Expense, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "expense name is required")
	}
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	// The category must exist and belong to the caller.
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("id = ? AND user_id = ?", categoryID, userID).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return nil, apperrors.ErrCategoryNotFound
	}

	if date.IsZero() {
		date = time.Now()
	}

	expense := &models.Expense{
		UserID:      userID,
		CategoryID:  categoryID,
		Name:        name,
		Amount:      amount,
		Date:        normalizeDate(date),
		Description: strings.TrimSpace(description),
	}

	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return expense, nil
}

// GetUserExpenses returns a user's full expense history, newest date first.
func (s *expenseService) GetUserExpenses(userID string) ([]models.Expense, error) {
	var expenses []models.Expense
	if err := s.db.Where("user_id = ?", userID).
		Order("date DESC, created_at DESC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

// GetCategoryExpenses returns one category's expenses, newest date first.
// The category must belong to the caller.
func (s *expenseService) GetCategoryExpenses(userID, categoryID string) ([]models.Expense, error) {
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("id = ? AND user_id = ?", categoryID, userID).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return nil, apperrors.ErrCategoryNotFound
	}

	var expenses []models.Expense
	if err := s.db.Where("category_id = ?", categoryID).
		Order("date DESC, created_at DESC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expenses, nil
}

// GetExpenseByID retrieves an expense by ID for a specific user
func (s *expenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense edits name and amount, with the same validation as create.
// Date and description change only when provided. The selected flag is not
// part of this operation and keeps its stored value.
func (s *expenseService) UpdateExpense(userID, expenseID, name string, amount int64, date *time.Time, description *string) (*models.Expense, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "expense name is required")
	}
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":   name,
		"amount": amount,
	}
	if date != nil {
		updates["date"] = normalizeDate(*date)
	}
	if description != nil {
		updates["description"] = strings.TrimSpace(*description)
	}

	if err := s.db.Model(expense).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// ToggleSelected flips the set-aside flag. The store write happens first;
// when it fails the caller sees the error and no state has changed.
func (s *expenseService) ToggleSelected(userID, expenseID string) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(expense).Update("selected", !expense.Selected).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// SetSelected applies the flag to many expenses at once, all-or-nothing: the
// batch runs in a transaction and aborts when any ID is unknown or not the
// caller's, so a partial batch can never be observed.
func (s *expenseService) SetSelected(userID string, expenseIDs []string, value bool) error {
	if len(expenseIDs) == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "no expense ids given")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Expense{}).
			Where("user_id = ? AND id IN ?", userID, expenseIDs).
			Update("selected", value)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(expenseIDs)) {
			return apperrors.ErrExpenseNotFound
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ClearSelected resets the flag on every selected expense of the user and
// reports how many were cleared.
func (s *expenseService) ClearSelected(userID string) (int64, error) {
	res := s.db.Model(&models.Expense{}).
		Where("user_id = ? AND selected = ?", userID, true).
		Update("selected", false)
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteExpense removes an expense.
func (s *expenseService) DeleteExpense(userID, expenseID string) error {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
