package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/money"
	"kopilka/internal/services"
)

// ExpenseHandler handles expense requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService services.ExpenseServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// CreateExpenseRequest represents the expense creation payload. Amount is a
// decimal string; Date is optional and defaults to today.
type CreateExpenseRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Amount      string `json:"amount" binding:"required"`
	Date        string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Description string `json:"description" binding:"max=500"`
}

// UpdateExpenseRequest represents the expense update payload. Date and
// description are optional; omitting them keeps the stored values.
type UpdateExpenseRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Amount      string  `json:"amount" binding:"required"`
	Date        *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// SetSelectedRequest represents the bulk set-aside payload.
type SetSelectedRequest struct {
	ExpenseIDs []string `json:"expense_ids" binding:"required,min=1"`
	Selected   *bool    `json:"selected" binding:"required"`
}

func parseAmount(value string) (int64, error) {
	amount, err := money.ParseAmount(value)
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be a decimal number")
	}
	return amount, nil
}

// CreateExpense records a new expense in a category
// @Summary     Create expense
// @Description Record a new expense in one of the user's categories
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Param       request body CreateExpenseRequest true "Expense data"
// @Success     201 {object} models.Expense "Created expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id}/expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var date time.Time
	if req.Date != "" {
		date, _ = time.Parse("2006-01-02", req.Date)
	}

	expense, err := h.expenseService.CreateExpense(sess.UserID, c.Param("id"), req.Name, amount, date, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// GetUserExpenses lists all of the user's expenses
// @Summary     List expenses
// @Description Get the authenticated user's full expense history, newest first
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Expense "Expenses"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses [get]
func (h *ExpenseHandler) GetUserExpenses(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenses, err := h.expenseService.GetUserExpenses(sess.UserID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

// GetCategoryExpenses lists one category's expenses
// @Summary     List category expenses
// @Description Get all expenses in one category, newest first
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {array} models.Expense "Expenses"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id}/expenses [get]
func (h *ExpenseHandler) GetCategoryExpenses(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenses, err := h.expenseService.GetCategoryExpenses(sess.UserID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

// GetExpenseByID returns a single expense
// @Summary     Get expense
// @Description Get one of the authenticated user's expenses by ID
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} models.Expense "Expense"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpenseByID(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(sess.UserID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// UpdateExpense edits an expense
// @Summary     Update expense
// @Description Edit an expense's name and amount, optionally date and description. The set-aside flag is untouched.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Param       request body UpdateExpenseRequest true "Fields to update"
// @Success     200 {object} models.Expense "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var date *time.Time
	if req.Date != nil {
		parsed, _ := time.Parse("2006-01-02", *req.Date)
		date = &parsed
	}

	expense, err := h.expenseService.UpdateExpense(sess.UserID, c.Param("id"), req.Name, amount, date, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// ToggleSelected flips an expense's set-aside flag
// @Summary     Toggle set-aside flag
// @Description Flip the selected flag on one expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} models.Expense "Updated expense"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /expenses/{id}/toggle [post]
func (h *ExpenseHandler) ToggleSelected(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.ToggleSelected(sess.UserID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// SetSelected applies the set-aside flag to a batch of expenses
// @Summary     Bulk set set-aside flag
// @Description Set or clear the selected flag on several expenses at once. The batch is atomic.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetSelectedRequest true "Expense IDs and target value"
// @Success     200 {object} map[string]string "Applied"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Unknown expense in batch"
// @Router      /expenses/selected [put]
func (h *ExpenseHandler) SetSelected(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetSelectedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.expenseService.SetSelected(sess.UserID, req.ExpenseIDs, *req.Selected); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Selection updated successfully"})
}

// ClearSelected resets the set-aside flag on every selected expense
// @Summary     Clear all set-aside flags
// @Description Reset the selected flag on every one of the user's selected expenses
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int "Number of cleared expenses"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses/selected [delete]
func (h *ExpenseHandler) ClearSelected(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cleared, err := h.expenseService.ClearSelected(sess.UserID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}

// DeleteExpense deletes an expense
// @Summary     Delete expense
// @Description Delete one of the authenticated user's expenses
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(sess.UserID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}
