package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"findataops/internal/domain"
	"findataops/internal/logger"
	"findataops/internal/rollstats"
	"findataops/internal/storage/memory"
)

type testStores struct {
	transactions *memory.TransactionStore
	accounts     *memory.AccountStore
	fxRates      *memory.FxRateStore
	targets      *memory.BudgetTargetStore
	anomalies    *memory.AnomalyStore
	recurring    *memory.RecurringPatternStore
	forecasts    *memory.ForecastStore
	variance     *memory.BudgetVarianceStore
	cashflow     *memory.MonthlyCashflowStore
	category     *memory.CategoryMonthlyStore
	netWorth     *memory.NetWorthStore
	windows      *memory.WindowPointStore
}

func newTestStores() *testStores {
	return &testStores{
		transactions: memory.NewTransactionStore(),
		accounts:     memory.NewAccountStore(),
		fxRates:      memory.NewFxRateStore(),
		targets:      memory.NewBudgetTargetStore(),
		anomalies:    memory.NewAnomalyStore(),
		recurring:    memory.NewRecurringPatternStore(),
		forecasts:    memory.NewForecastStore(),
		variance:     memory.NewBudgetVarianceStore(),
		cashflow:     memory.NewMonthlyCashflowStore(),
		category:     memory.NewCategoryMonthlyStore(),
		netWorth:     memory.NewNetWorthStore(),
		windows:      memory.NewWindowPointStore(),
	}
}

func newTestEngine(t *testing.T, s *testStores) *Engine {
	t.Helper()
	eng := New(Options{
		TransactionStore: s.transactions,
		AccountStore:     s.accounts,
		FxRateStore:      s.fxRates,
		BudgetTargets:    s.targets,
		AnomalyStore:     s.anomalies,
		RecurringStore:   s.recurring,
		ForecastStore:    s.forecasts,
		VarianceStore:    s.variance,
		CashflowStore:    s.cashflow,
		CategoryStore:    s.category,
		NetWorthStore:    s.netWorth,
		WindowStore:      s.windows,
		Logger:           logger.NewWithWriter(engineTestWriter{t}),
	})
	return eng.WithClock(func() time.Time {
		return time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	})
}

// seedHousehold loads eight months of synthetic activity: a monthly salary,
// weekly groceries, a monthly streaming bill, and one grocery spike large
// enough to flag.
func seedHousehold(t *testing.T, s *testStores) {
	t.Helper()
	ctx := context.Background()

	accounts := []*domain.Account{
		{AccountID: "acc-chk", Institution: "First Bank", Type: domain.AccountChecking, Currency: "USD", OpeningBalance: 5000},
		{AccountID: "acc-cc", Institution: "First Bank", Type: domain.AccountCredit, Currency: "USD", OpeningBalance: 0},
	}
	for _, a := range accounts {
		if err := s.accounts.Insert(ctx, a); err != nil {
			t.Fatalf("seed account: %v", err)
		}
	}
	if err := s.targets.Upsert(ctx, &domain.BudgetTarget{Category: "groceries", Amount: 400}); err != nil {
		t.Fatalf("seed budget target: %v", err)
	}

	var txns []*domain.Transaction
	seq := 0
	add := func(day time.Time, accountID string, amount float64, merchant, category string) {
		seq++
		txns = append(txns, &domain.Transaction{
			TxnID:     fmt.Sprintf("t%04d", seq),
			AccountID: accountID,
			PostedAt:  day,
			Amount:    amount,
			Currency:  "USD",
			Merchant:  merchant,
			Category:  category,
		})
	}

	for month := time.Month(1); month <= 8; month++ {
		first := time.Date(2024, month, 1, 9, 0, 0, 0, time.UTC)
		add(first, "acc-chk", 3000, "", "")                                          // salary
		add(first.AddDate(0, 0, 4), "acc-chk", -15.99, "StreamFlix", "entertainment") // monthly bill
		for week := 0; week < 4; week++ {
			add(first.AddDate(0, 0, 2+7*week), "acc-cc", -80, "GreenGrocer", "groceries")
		}
	}
	// One order of magnitude above the trailing grocery mean.
	add(time.Date(2024, 8, 28, 18, 0, 0, 0, time.UTC), "acc-cc", -950, "GreenGrocer", "groceries")

	if err := s.transactions.InsertBulk(ctx, txns); err != nil {
		t.Fatalf("seed transactions: %v", err)
	}
}

func TestEngine_FullRun(t *testing.T) {
	stores := newTestStores()
	seedHousehold(t, stores)
	ctx := context.Background()

	result, err := newTestEngine(t, stores).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.TransactionsProcessed != 8*6+1 {
		t.Errorf("TransactionsProcessed = %d, want %d", result.TransactionsProcessed, 8*6+1)
	}
	if result.CashflowMonths != 8 {
		t.Errorf("CashflowMonths = %d, want 8", result.CashflowMonths)
	}
	if result.AnomaliesFlagged == 0 {
		t.Error("expected the grocery spike to be flagged")
	}
	if result.PatternsDetected == 0 {
		t.Error("expected recurring patterns for StreamFlix and GreenGrocer")
	}
	if result.ForecastsProduced == 0 {
		t.Error("expected forecasts with eight months of history")
	}
	if result.VarianceMonths != 8 {
		t.Errorf("VarianceMonths = %d, want 8", result.VarianceMonths)
	}
	if result.NetWorthDays == 0 {
		t.Error("expected daily net worth snapshots")
	}

	anomalies, err := stores.anomalies.GetAll(ctx)
	if err != nil {
		t.Fatalf("load anomalies: %v", err)
	}
	found := false
	for _, a := range anomalies {
		if a.Merchant == "GreenGrocer" && a.Amount == -950 {
			found = true
			if a.Score < 20 {
				t.Errorf("published anomaly below threshold: score=%v", a.Score)
			}
		}
	}
	if !found {
		t.Error("grocery spike missing from anomaly store")
	}

	patterns, err := stores.recurring.GetAll(ctx)
	if err != nil {
		t.Fatalf("load patterns: %v", err)
	}
	byMerchant := make(map[string]*domain.RecurringPattern)
	for _, p := range patterns {
		byMerchant[p.Merchant] = p
	}
	stream, ok := byMerchant["StreamFlix"]
	if !ok {
		t.Fatal("no pattern for StreamFlix")
	}
	if stream.Type != domain.RecurringMonthly && stream.Type != domain.RecurringLikelyMonthly {
		t.Errorf("StreamFlix pattern type = %s, want a monthly classification", stream.Type)
	}

	variance, err := stores.variance.GetByMonth(ctx, "2024-07")
	if err != nil {
		t.Fatalf("load variance: %v", err)
	}
	if len(variance) != 1 {
		t.Fatalf("expected one variance row for 2024-07, got %d", len(variance))
	}
	// Four weekly trips at 80 against a 400 target: 320 actual, under budget.
	if variance[0].Actual != 320 || variance[0].Status != domain.BudgetUnder {
		t.Errorf("2024-07 groceries variance = %+v", variance[0])
	}
}

func TestEngine_RerunIsIdempotent(t *testing.T) {
	stores := newTestStores()
	seedHousehold(t, stores)
	ctx := context.Background()
	eng := newTestEngine(t, stores)

	first, err := eng.Run(ctx)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	firstForecasts, _ := stores.forecasts.GetAll(ctx)
	firstPatterns, _ := stores.recurring.GetAll(ctx)
	firstCashflow, _ := stores.cashflow.GetAll(ctx)
	firstNetWorth, _ := stores.netWorth.GetAll(ctx)

	second, err := eng.Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("run summaries differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}

	secondForecasts, _ := stores.forecasts.GetAll(ctx)
	secondPatterns, _ := stores.recurring.GetAll(ctx)
	secondCashflow, _ := stores.cashflow.GetAll(ctx)
	secondNetWorth, _ := stores.netWorth.GetAll(ctx)

	if !reflect.DeepEqual(firstForecasts, secondForecasts) {
		t.Error("forecasts changed on identical input")
	}
	if !reflect.DeepEqual(firstPatterns, secondPatterns) {
		t.Error("recurring patterns changed on identical input")
	}
	if !reflect.DeepEqual(firstCashflow, secondCashflow) {
		t.Error("monthly cashflow changed on identical input")
	}
	if !reflect.DeepEqual(firstNetWorth, secondNetWorth) {
		t.Error("net worth snapshots changed on identical input")
	}
}

func TestEngine_RerunPreservesAcknowledged(t *testing.T) {
	stores := newTestStores()
	seedHousehold(t, stores)
	ctx := context.Background()
	eng := newTestEngine(t, stores)

	if _, err := eng.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}

	anomalies, err := stores.anomalies.GetAll(ctx)
	if err != nil || len(anomalies) == 0 {
		t.Fatalf("expected anomalies after first run, err=%v", err)
	}
	if err := stores.anomalies.Acknowledge(ctx, anomalies[0].TxnID, true); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	if _, err := eng.Run(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}

	rec, err := stores.anomalies.GetByTxnID(ctx, anomalies[0].TxnID)
	if err != nil {
		t.Fatalf("reload anomaly: %v", err)
	}
	if !rec.Acknowledged {
		t.Error("re-run clobbered the acknowledged flag")
	}
}

func TestEngine_AbortsOnBadFeed(t *testing.T) {
	stores := newTestStores()
	ctx := context.Background()

	// A row with no account identity slips past the store but must stop the run.
	bad := &domain.Transaction{
		TxnID:    "bad-1",
		PostedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:   -10,
		Currency: "USD",
	}
	if err := stores.transactions.Insert(ctx, bad); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := newTestEngine(t, stores).Run(ctx)
	if err == nil {
		t.Fatal("expected run to abort")
	}
	if !errors.Is(err, rollstats.ErrNonMonotonicInput) {
		t.Fatalf("expected ErrNonMonotonicInput, got %v", err)
	}

	// Nothing may have been persisted.
	if rows, _ := stores.cashflow.GetAll(ctx); len(rows) != 0 {
		t.Error("aborted run persisted cashflow rows")
	}
	if rows, _ := stores.netWorth.GetAll(ctx); len(rows) != 0 {
		t.Error("aborted run persisted net worth rows")
	}
}

func TestEngine_EmptyInput(t *testing.T) {
	stores := newTestStores()
	ctx := context.Background()

	result, err := newTestEngine(t, stores).Run(ctx)
	if err != nil {
		t.Fatalf("Run on empty stores: %v", err)
	}
	if result.TransactionsProcessed != 0 || result.AnomaliesFlagged != 0 || result.ForecastsProduced != 0 {
		t.Errorf("empty input produced facts: %+v", result)
	}
}

// engineTestWriter routes engine logs through the test log.
type engineTestWriter struct {
	t *testing.T
}

func (w engineTestWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}
