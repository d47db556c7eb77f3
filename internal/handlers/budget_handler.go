package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kopilka/internal/services"
)

// BudgetHandler serves the derived budget summary.
type BudgetHandler struct {
	budgetService services.BudgetServicer
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService services.BudgetServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// GetSummary returns the full budget summary
// @Summary     Get budget summary
// @Description Compute income, total expenses, balance, and per-category breakdowns for the authenticated user
// @Tags        budget
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.UserBudget "Budget summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /summary [get]
func (h *BudgetHandler) GetSummary(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.budgetService.GetSummary(sess.UserID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
