package domain

// ForecastScope identifies what a forecast row projects.
type ForecastScope string

const (
	ForecastTotalIncome   ForecastScope = "total_income"
	ForecastTotalExpenses ForecastScope = "total_expenses"
	ForecastCategory      ForecastScope = "category"
)

// Forecast quality labels, banded on confidence level.
const (
	QualityHigh    = "high"
	QualityMedium  = "medium"
	QualityLow     = "low"
	QualityVeryLow = "very_low"
)

// Forecast risk labels, banded on trend volatility.
const (
	RiskLow      = "low_risk"
	RiskMedium   = "medium_risk"
	RiskHigh     = "high_risk"
	RiskVeryHigh = "very_high_risk"
)

// ForecastRecord is a derived fact projecting one scope one horizon ahead.
// Superseded (replace-by-key) for a given (forecast_date, scope, category)
// each time the engine runs. Corresponds to the forecasts table in PostgreSQL.
type ForecastRecord struct {
	ForecastID      string        // deterministic hash of the natural key
	ForecastMonth   string        // target month YYYY-MM
	Horizon         int           // periods ahead: 1, 2 or 3
	Scope           ForecastScope
	Category        string  // empty unless Scope == ForecastCategory
	ForecastAmount  float64 // level * (1+trend)^horizon
	LowerBound      float64 // forecast * (1 - confidence)
	UpperBound      float64 // forecast * (1 + confidence)
	ConfidenceLevel float64
	Quality         string // QualityHigh .. QualityVeryLow
	Risk            string // RiskLow .. RiskVeryHigh
	Trend           float64
	TrendVolatility float64
}
