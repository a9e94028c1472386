package domain

// MonthlyCashflow aggregates one calendar month of activity across all
// accounts. Replace-by-key on Month.
// Corresponds to the monthly_cashflow table in ClickHouse.
type MonthlyCashflow struct {
	Month            string  // YYYY-MM
	Income           float64 // sum of positive amounts
	Expenses         float64 // sum of |amount| over expenses
	Net              float64 // income - expenses
	SavingsRate      float64 // net / income, 0 when income is 0
	TransactionCount int
}

// CategoryMonthly aggregates one month of expense activity for one category.
// Replace-by-key on (Month, Category).
// Corresponds to the category_monthly table in ClickHouse.
type CategoryMonthly struct {
	Month            string // YYYY-MM
	Category         string
	Expenses         float64 // sum of |amount| over expenses
	TransactionCount int
}
