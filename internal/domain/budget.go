package domain

// BudgetStatus bands actual spend against a target at +-10%.
type BudgetStatus string

const (
	BudgetOver  BudgetStatus = "over_budget"
	BudgetUnder BudgetStatus = "under_budget"
	BudgetOn    BudgetStatus = "on_budget"
)

// BudgetTarget is one row of the static category budget table.
// Corresponds to the budget_targets table in PostgreSQL.
type BudgetTarget struct {
	Category string
	Amount   float64 // monthly target in base currency
}

// BudgetVarianceRecord compares actual monthly category spend with its
// target. Replace-by-key on (month, category).
// Corresponds to the budget_variance table in PostgreSQL.
type BudgetVarianceRecord struct {
	Month       string // YYYY-MM
	Category    string
	Budget      float64
	Actual      float64 // sum of |amount| over the month's expenses
	Variance    float64 // actual - budget
	VariancePct float64 // variance / budget * 100, 0 when budget is 0
	Status      BudgetStatus
}
