// Package budget computes the derived budget summary: per-category totals,
// grand total, balance, and share of income. The computation is pure: it
// works on already-fetched records, holds no state, and is re-run in full
// after every mutation. Record counts are small (hundreds), so there is no
// incremental update or memoization.
package budget

import "kopilka/internal/models"

// CategorySummary is one category's slice of the budget: its identity fields,
// the sum of its expenses, and the expenses themselves (in input order).
type CategorySummary struct {
	CategoryID    string           `json:"category_id"`
	CategoryName  string           `json:"category_name"`
	CategoryColor string           `json:"category_color"`
	CategoryIcon  string           `json:"category_icon"`
	Total         int64            `json:"total"`
	Expenses      []models.Expense `json:"expenses"`
}

// Summary is the full derived budget state for one user. Balance may be
// negative. PercentageOfIncome is raw and unclamped; display code that needs
// a progress bar should use PercentageClamped.
type Summary struct {
	MonthlyIncome      int64             `json:"monthly_income"`
	TotalExpenses      int64             `json:"total_expenses"`
	Balance            int64             `json:"balance"`
	PercentageOfIncome float64           `json:"percentage_of_income"`
	ByCategory         []CategorySummary `json:"by_category"`
}

// Compute builds the summary from a user's income, categories, and expenses.
// Every category appears in ByCategory, including those with no expenses
// (Total 0, empty non-nil slice). Expenses whose CategoryID matches no given
// category contribute nothing; with cascading deletes such orphans cannot
// exist, but the function stays total rather than assuming it.
func Compute(monthlyIncome int64, categories []models.Category, expenses []models.Expense) Summary {
	byCategory := make(map[string][]models.Expense, len(categories))
	for _, e := range expenses {
		byCategory[e.CategoryID] = append(byCategory[e.CategoryID], e)
	}

	summary := Summary{
		MonthlyIncome: monthlyIncome,
		ByCategory:    make([]CategorySummary, 0, len(categories)),
	}

	for _, c := range categories {
		catExpenses := byCategory[c.ID]
		if catExpenses == nil {
			catExpenses = []models.Expense{}
		}

		var total int64
		for _, e := range catExpenses {
			total += e.Amount
		}

		summary.ByCategory = append(summary.ByCategory, CategorySummary{
			CategoryID:    c.ID,
			CategoryName:  c.Name,
			CategoryColor: c.Color,
			CategoryIcon:  c.Icon,
			Total:         total,
			Expenses:      catExpenses,
		})
		summary.TotalExpenses += total
	}

	summary.Balance = monthlyIncome - summary.TotalExpenses
	if monthlyIncome > 0 {
		summary.PercentageOfIncome = float64(summary.TotalExpenses) / float64(monthlyIncome) * 100
	}
	return summary
}

// PercentageClamped returns PercentageOfIncome clamped to [0, 100] for
// progress-bar style rendering.
func (s Summary) PercentageClamped() float64 {
	switch {
	case s.PercentageOfIncome < 0:
		return 0
	case s.PercentageOfIncome > 100:
		return 100
	}
	return s.PercentageOfIncome
}
