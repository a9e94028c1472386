// Package networth rolls daily account balances up into net worth snapshots
// with day/week/month/year deltas.
package networth

import (
	"sort"
	"time"

	"findataops/internal/domain"
	"findataops/internal/rollstats"
)

const dateLayout = "2006-01-02"

// Lag offsets, in days, for the snapshot delta fields.
const (
	lagDay   = 1
	lagWeek  = 7
	lagMonth = 30
	lagYear  = 365
)

// RateTable answers base-currency conversion lookups by carrying the most
// recent rate at or before the requested date forward, since the fx feed
// quotes sparsely. Base-currency amounts convert at 1.
type RateTable struct {
	byCurrency map[string][]*domain.FxRate // sorted by date ASC
	base       string
}

// NewRateTable builds a lookup table from the fx feed rows.
func NewRateTable(base string, rates []*domain.FxRate) *RateTable {
	t := &RateTable{
		byCurrency: make(map[string][]*domain.FxRate),
		base:       base,
	}
	for _, r := range rates {
		t.byCurrency[r.Currency] = append(t.byCurrency[r.Currency], r)
	}
	for _, series := range t.byCurrency {
		sort.Slice(series, func(i, j int) bool {
			return series[i].Date < series[j].Date
		})
	}
	return t
}

// At returns the conversion rate for currency on date (YYYY-MM-DD): the
// closest quote at or before the date, the first available quote when the
// date precedes all quotes, or 1 for the base currency and unknown
// currencies.
func (t *RateTable) At(date, currency string) float64 {
	if currency == t.base {
		return 1
	}
	series := t.byCurrency[currency]
	if len(series) == 0 {
		return 1
	}
	for i := len(series) - 1; i >= 0; i-- {
		if series[i].Date <= date {
			return series[i].Rate
		}
	}
	return series[0].Rate
}

// Rollup computes one net worth snapshot per day from the first transaction
// date through asOf. Account balances are opening balance plus cumulative
// transaction amounts, converted to base currency at each day's rate.
// Accounts whose type is a liability contribute their owed magnitude to
// TotalLiabilities; everything else is an asset.
func Rollup(accounts []*domain.Account, txns []*domain.Transaction, rates *RateTable, asOf time.Time) []*domain.NetWorthSnapshot {
	if len(accounts) == 0 {
		return nil
	}

	accountsByID := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		accountsByID[a.AccountID] = a
	}

	// Daily signed flow per account
	flows := make(map[string]map[string]float64) // accountID -> date -> sum
	var firstDate string
	for _, txn := range txns {
		if _, ok := accountsByID[txn.AccountID]; !ok {
			continue
		}
		date := txn.PostedAt.UTC().Format(dateLayout)
		if firstDate == "" || date < firstDate {
			firstDate = date
		}
		if flows[txn.AccountID] == nil {
			flows[txn.AccountID] = make(map[string]float64)
		}
		flows[txn.AccountID][date] += txn.Amount
	}
	if firstDate == "" {
		return nil
	}

	start, err := time.Parse(dateLayout, firstDate)
	if err != nil {
		return nil
	}
	end := asOf.UTC().Truncate(24 * time.Hour)
	if end.Before(start) {
		end = start
	}

	balances := make(map[string]float64, len(accounts))
	for _, a := range accounts {
		balances[a.AccountID] = a.OpeningBalance
	}

	var snapshots []*domain.NetWorthSnapshot
	var netWorths []float64
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		date := day.Format(dateLayout)

		assets := 0.0
		liabilities := 0.0
		for _, a := range accounts {
			balances[a.AccountID] += flows[a.AccountID][date]
			converted := balances[a.AccountID] * rates.At(date, a.Currency)
			if a.Type.IsLiability() {
				liabilities += -converted
			} else {
				assets += converted
			}
		}

		net := assets - liabilities
		netWorths = append(netWorths, net)
		i := len(netWorths) - 1

		snapshots = append(snapshots, &domain.NetWorthSnapshot{
			Date:             date,
			NetWorth:         net,
			TotalAssets:      assets,
			TotalLiabilities: liabilities,
			ChangeDay:        rollstats.LagDelta(netWorths, i, lagDay),
			ChangeWeek:       rollstats.LagDelta(netWorths, i, lagWeek),
			ChangeMonth:      rollstats.LagDelta(netWorths, i, lagMonth),
			ChangeYear:       rollstats.LagDelta(netWorths, i, lagYear),
		})
	}
	return snapshots
}
