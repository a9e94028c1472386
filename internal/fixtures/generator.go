// Package fixtures generates a deterministic synthetic household dataset for
// local pipeline runs and demos. The same options always yield the same rows.
package fixtures

import (
	"fmt"
	"math/rand"
	"time"

	"findataops/internal/domain"
)

// Options controls dataset generation.
type Options struct {
	// Months of history to generate. Default 12.
	Months int
	// Seed for the noise generator. Default 42.
	Seed int64
	// Start is the first day of the first month. Default 2024-01-01 UTC.
	Start time.Time
}

// Dataset is a complete synthetic input: accounts, conversion rates, budget
// targets, and the transaction history itself.
type Dataset struct {
	Accounts      []*domain.Account
	FxRates       []*domain.FxRate
	BudgetTargets []*domain.BudgetTarget
	Transactions  []*domain.Transaction
}

// Generate builds the dataset: a salary, rent, two subscription bills, weekly
// groceries with amount jitter, dining noise, and a quarterly spending spike
// that the anomaly detector should catch.
func Generate(opts Options) *Dataset {
	months := opts.Months
	if months == 0 {
		months = 12
	}
	seed := opts.Seed
	if seed == 0 {
		seed = 42
	}
	start := opts.Start
	if start.IsZero() {
		start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	rng := rand.New(rand.NewSource(seed))

	d := &Dataset{
		Accounts: []*domain.Account{
			{AccountID: "acc-checking", Institution: "First National", Type: domain.AccountChecking, Currency: "USD", OpeningBalance: 4000},
			{AccountID: "acc-savings", Institution: "First National", Type: domain.AccountSavings, Currency: "EUR", OpeningBalance: 10000},
			{AccountID: "acc-credit", Institution: "CardCo", Type: domain.AccountCredit, Currency: "USD", OpeningBalance: 0},
		},
		BudgetTargets: []*domain.BudgetTarget{
			{Category: "groceries", Amount: 450},
			{Category: "dining", Amount: 250},
			{Category: "entertainment", Amount: 100},
		},
	}

	seq := 0
	add := func(day time.Time, accountID string, amount float64, merchant, category string) {
		seq++
		d.Transactions = append(d.Transactions, &domain.Transaction{
			TxnID:         fmt.Sprintf("txn-%05d", seq),
			AccountID:     accountID,
			PostedAt:      day,
			Amount:        round2(amount),
			Currency:      "USD",
			Merchant:      merchant,
			Category:      category,
			IngestBatchID: "fixture",
		})
	}

	for m := 0; m < months; m++ {
		first := start.AddDate(0, m, 0)

		add(first.Add(9*time.Hour), "acc-checking", 4200, "", "")
		add(first.AddDate(0, 0, 1).Add(8*time.Hour), "acc-checking", -1500, "Sunrise Apartments", "rent")
		add(first.AddDate(0, 0, 4).Add(6*time.Hour), "acc-credit", -15.99, "StreamFlix", "entertainment")
		add(first.AddDate(0, 0, 7).Add(7*time.Hour), "acc-credit", -29.99, "GymPro", "health")

		for week := 0; week < 4; week++ {
			day := first.AddDate(0, 0, 2+7*week).Add(17 * time.Hour)
			add(day, "acc-credit", -(60 + rng.Float64()*50), "GreenGrocer", "groceries")
		}

		dinners := 2 + rng.Intn(4)
		for i := 0; i < dinners; i++ {
			day := first.AddDate(0, 0, 3+rng.Intn(24)).Add(19 * time.Hour)
			add(day, "acc-credit", -(18 + rng.Float64()*45), "Corner Bistro", "dining")
		}

		// One outsized purchase every third month.
		if m%3 == 2 {
			day := first.AddDate(0, 0, 14).Add(15 * time.Hour)
			add(day, "acc-credit", -(700 + rng.Float64()*400), "MegaTech", "shopping")
		}
	}

	// Daily EUR rate on a slow random walk around 1.08.
	rate := 1.08
	end := start.AddDate(0, months, 0)
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		rate += (rng.Float64() - 0.5) * 0.004
		d.FxRates = append(d.FxRates, &domain.FxRate{
			Date:     day.Format("2006-01-02"),
			Currency: "EUR",
			Rate:     round4(rate),
		})
	}

	return d
}

func round2(v float64) float64 {
	if v < 0 {
		return float64(int64(v*100-0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}

func round4(v float64) float64 {
	return float64(int64(v*10000+0.5)) / 10000
}
