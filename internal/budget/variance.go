// Package budget compares actual monthly category spend against the static
// target table.
package budget

import (
	"sort"

	"findataops/internal/domain"
)

// Banding thresholds: actual within +-10% of target is on budget.
const (
	overBudgetRatio  = 1.10
	underBudgetRatio = 0.90
)

// Variance computes one month of budget variance rows from the month's
// per-category expense aggregates. Categories without a target are skipped;
// targets with no activity report an actual of 0. Output is sorted by
// category.
func Variance(month string, actuals map[string]float64, targets []*domain.BudgetTarget) []*domain.BudgetVarianceRecord {
	records := make([]*domain.BudgetVarianceRecord, 0, len(targets))
	for _, target := range targets {
		actual := actuals[target.Category]
		variance := actual - target.Amount

		pct := 0.0
		if target.Amount != 0 {
			pct = variance / target.Amount * 100
		}

		records = append(records, &domain.BudgetVarianceRecord{
			Month:       month,
			Category:    target.Category,
			Budget:      target.Amount,
			Actual:      actual,
			Variance:    variance,
			VariancePct: pct,
			Status:      bandStatus(actual, target.Amount),
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Category < records[j].Category
	})
	return records
}

func bandStatus(actual, target float64) domain.BudgetStatus {
	if target == 0 {
		if actual > 0 {
			return domain.BudgetOver
		}
		return domain.BudgetOn
	}
	ratio := actual / target
	switch {
	case ratio > overBudgetRatio:
		return domain.BudgetOver
	case ratio < underBudgetRatio:
		return domain.BudgetUnder
	default:
		return domain.BudgetOn
	}
}
