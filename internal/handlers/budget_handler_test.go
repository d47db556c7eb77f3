package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"kopilka/internal/budget"
	apperrors "kopilka/internal/errors"
	"kopilka/internal/services"
)

// --- mock budget service ---

type mockBudgetService struct {
	getSummaryFn func(userID string) (*services.UserBudget, error)
}

func (m *mockBudgetService) GetSummary(userID string) (*services.UserBudget, error) {
	if m.getSummaryFn != nil {
		return m.getSummaryFn(userID)
	}
	return &services.UserBudget{}, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectSession(testSession()))
	auth.GET("/summary", handler.GetSummary)
	return r
}

func TestBudgetHandler_GetSummary(t *testing.T) {
	t.Run("returns 200 with the computed summary", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			getSummaryFn: func(_ string) (*services.UserBudget, error) {
				return &services.UserBudget{
					Summary: budget.Summary{
						MonthlyIncome:      5000000,
						TotalExpenses:      150000,
						Balance:            4850000,
						PercentageOfIncome: 3,
						ByCategory: []budget.CategorySummary{
							{CategoryID: "cat-1", CategoryName: "Food", Total: 150000},
						},
					},
					Currency: "₽",
				}, nil
			},
		}
		handler := NewBudgetHandler(budgetSvc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/summary", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		summary := parseJSON(t, rec)["summary"].(map[string]interface{})
		if summary["balance"] != float64(4850000) {
			t.Errorf("expected balance 4850000, got %v", summary["balance"])
		}
		if summary["currency"] != "₽" {
			t.Errorf("expected currency ₽, got %v", summary["currency"])
		}
		byCategory := summary["by_category"].([]interface{})
		if len(byCategory) != 1 {
			t.Errorf("expected 1 category summary, got %d", len(byCategory))
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{})
		r := gin.New()
		r.GET("/summary", handler.GetSummary)

		rec := doRequest(r, "GET", "/summary", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("propagates service errors", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			getSummaryFn: func(_ string) (*services.UserBudget, error) {
				return nil, apperrors.ErrUserNotFound
			},
		}
		handler := NewBudgetHandler(budgetSvc)
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/summary", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
