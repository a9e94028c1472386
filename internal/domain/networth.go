package domain

// NetWorthSnapshot is the daily balance roll-up across all accounts,
// converted to base currency. Replace-by-key on Date.
// Corresponds to the net_worth_daily table in ClickHouse.
type NetWorthSnapshot struct {
	Date             string  // YYYY-MM-DD
	NetWorth         float64 // assets - liabilities
	TotalAssets      float64
	TotalLiabilities float64 // positive magnitude
	ChangeDay        *float64 // vs previous day, nil if no prior snapshot
	ChangeWeek       *float64 // vs 7 days earlier
	ChangeMonth      *float64 // vs 30 days earlier
	ChangeYear       *float64 // vs 365 days earlier
}
