// Package forecast projects income, expenses and per-category spend over
// one-to-three month horizons from monthly aggregate history.
package forecast

import (
	"sort"
	"time"

	"findataops/internal/domain"
	"findataops/internal/idhash"
	"findataops/internal/rollstats"
)

const (
	// MinHistoryMonths is the minimum history a scope needs before it is
	// forecast at all; shorter scopes are silently excluded.
	MinHistoryMonths = 3

	// LookbackMonths bounds how much history feeds the model.
	LookbackMonths = 24

	// MaxHorizon is the furthest projection, in months ahead.
	MaxHorizon = 3

	// levelWindow is the trailing moving-average span for the level.
	levelWindow = 3

	// volatilityWindow is the trailing span for trend volatility.
	volatilityWindow = 12

	monthLayout = "2006-01"
)

// MonthlyPoint is one month of history for a single scope.
type MonthlyPoint struct {
	Month  string // YYYY-MM
	Amount float64
}

// Run projects every scope with sufficient history. History maps are keyed
// by scope: the two totals plus one entry per category. Output is sorted by
// (scope, category, horizon) for deterministic persistence.
func Run(income, expenses []MonthlyPoint, categories map[string][]MonthlyPoint) []*domain.ForecastRecord {
	var records []*domain.ForecastRecord
	records = append(records, project(domain.ForecastTotalIncome, "", income)...)
	records = append(records, project(domain.ForecastTotalExpenses, "", expenses)...)

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		records = append(records, project(domain.ForecastCategory, name, categories[name])...)
	}
	return records
}

// project builds the horizon-1..3 records for one scope, or nil when the
// scope has insufficient history.
func project(scope domain.ForecastScope, category string, history []MonthlyPoint) []*domain.ForecastRecord {
	history = clampLookback(sortHistory(history))
	if len(history) < MinHistoryMonths {
		return nil
	}

	levels := make([]float64, len(history))
	for i, p := range history {
		levels[i] = p.Amount
	}

	level := rollstats.TrailingMean(levels, levelWindow)
	trends := trendSeries(levels)
	trend := trends[len(trends)-1]
	volatility := rollstats.TrailingStddev(trends, volatilityWindow)

	base := confidenceBand(trend, volatility)

	lastMonth, err := time.Parse(monthLayout, history[len(history)-1].Month)
	if err != nil {
		return nil
	}

	records := make([]*domain.ForecastRecord, 0, MaxHorizon)
	compounded := 1.0
	for h := 1; h <= MaxHorizon; h++ {
		compounded *= 1 + trend
		amount := level * compounded
		confidence := base * horizonDecay(h)
		month := lastMonth.AddDate(0, h, 0).Format(monthLayout)

		records = append(records, &domain.ForecastRecord{
			ForecastID:      idhash.ForecastID(month, string(scope), category),
			ForecastMonth:   month,
			Horizon:         h,
			Scope:           scope,
			Category:        category,
			ForecastAmount:  amount,
			LowerBound:      amount * (1 - confidence),
			UpperBound:      amount * (1 + confidence),
			ConfidenceLevel: confidence,
			Quality:         QualityLabel(confidence),
			Risk:            RiskLabel(volatility),
			Trend:           trend,
			TrendVolatility: volatility,
		})
	}
	return records
}

// trendSeries computes the period-over-period relative trend for each month
// after the first: (current - previous) / previous, 0 when previous <= 0.
func trendSeries(levels []float64) []float64 {
	trends := make([]float64, 0, len(levels)-1)
	for i := 1; i < len(levels); i++ {
		prev := levels[i-1]
		if prev <= 0 {
			trends = append(trends, 0)
			continue
		}
		trends = append(trends, (levels[i]-prev)/prev)
	}
	return trends
}

func sortHistory(history []MonthlyPoint) []MonthlyPoint {
	sorted := make([]MonthlyPoint, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Month < sorted[j].Month
	})
	return sorted
}

func clampLookback(history []MonthlyPoint) []MonthlyPoint {
	if len(history) > LookbackMonths {
		return history[len(history)-LookbackMonths:]
	}
	return history
}
