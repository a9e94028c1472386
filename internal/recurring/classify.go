// Package recurring detects periodic expense patterns per (merchant, account)
// group and classifies their frequency and confidence.
package recurring

import "findataops/internal/domain"

// classRule is one row of the frequency decision table. Rows are evaluated
// in order; the first row whose bounds all hold wins. Anything that matches
// no row is irregular.
type classRule struct {
	rtype         domain.RecurringType
	minCount      int
	minInterval   float64 // days, inclusive
	maxInterval   float64 // days, inclusive
	maxIntervalCV float64 // exclusive ceiling
	maxAmountCV   float64 // exclusive ceiling
}

var classRules = []classRule{
	{domain.RecurringWeekly, 3, 6, 8, 0.3, 0.2},
	{domain.RecurringMonthly, 3, 25, 35, 0.3, 0.2},
	{domain.RecurringQuarterly, 3, 80, 95, 0.3, 0.2},
	{domain.RecurringYearly, 3, 360, 375, 0.3, 0.2},
	{domain.RecurringLikelyWeekly, 2, 6, 8, 0.5, 0.3},
	{domain.RecurringLikelyMonthly, 2, 25, 35, 0.5, 0.3},
}

// Classify runs the decision table over the group-level statistics.
// Nil CVs (undefined, zero-mean denominators) fail every ceiling check.
func Classify(count int, avgIntervalDays float64, intervalCV, amountCV *float64) domain.RecurringType {
	for _, r := range classRules {
		if count < r.minCount {
			continue
		}
		if avgIntervalDays < r.minInterval || avgIntervalDays > r.maxInterval {
			continue
		}
		if intervalCV == nil || *intervalCV >= r.maxIntervalCV {
			continue
		}
		if amountCV == nil || *amountCV >= r.maxAmountCV {
			continue
		}
		return r.rtype
	}
	return domain.RecurringIrregular
}

// canonicalPeriodDays maps a classified type to the period used for
// next-expected-date projection.
var canonicalPeriodDays = map[domain.RecurringType]int{
	domain.RecurringWeekly:        7,
	domain.RecurringLikelyWeekly:  7,
	domain.RecurringMonthly:       30,
	domain.RecurringLikelyMonthly: 30,
	domain.RecurringQuarterly:     90,
	domain.RecurringYearly:        365,
}
