// Package engine orchestrates the analytics pipeline.
// It coordinates: load -> validate -> rolling windows -> anomalies ->
// recurring patterns -> monthly marts -> forecasts -> budget variance ->
// net worth -> persist.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"findataops/internal/anomaly"
	"findataops/internal/budget"
	"findataops/internal/domain"
	"findataops/internal/forecast"
	"findataops/internal/networth"
	"findataops/internal/observability"
	"findataops/internal/recurring"
	"findataops/internal/rollstats"
	"findataops/internal/storage"
)

// Engine coordinates one full analytics run over the transaction history.
// Every derived fact is recomputed from scratch; stores replace rather than
// append, so running twice over the same input converges to the same state.
type Engine struct {
	transactionStore storage.TransactionStore
	accountStore     storage.AccountStore
	fxRateStore      storage.FxRateStore
	budgetTargets    storage.BudgetTargetStore

	anomalyStore    storage.AnomalyStore
	recurringStore  storage.RecurringPatternStore
	forecastStore   storage.ForecastStore
	varianceStore   storage.BudgetVarianceStore
	cashflowStore   storage.MonthlyCashflowStore
	categoryStore   storage.CategoryMonthlyStore
	netWorthStore   storage.NetWorthStore
	windowStore     storage.WindowPointStore

	baseCurrency string
	clock        func() time.Time
	log          zerolog.Logger
	metrics      *observability.Metrics
}

// Options for creating an Engine.
type Options struct {
	// Required source stores
	TransactionStore storage.TransactionStore
	AccountStore     storage.AccountStore
	FxRateStore      storage.FxRateStore
	BudgetTargets    storage.BudgetTargetStore

	// Required derived-fact stores
	AnomalyStore   storage.AnomalyStore
	RecurringStore storage.RecurringPatternStore
	ForecastStore  storage.ForecastStore
	VarianceStore  storage.BudgetVarianceStore
	CashflowStore  storage.MonthlyCashflowStore
	CategoryStore  storage.CategoryMonthlyStore
	NetWorthStore  storage.NetWorthStore
	WindowStore    storage.WindowPointStore

	// BaseCurrency is the reporting currency for net worth. Defaults to USD.
	BaseCurrency string

	Logger  zerolog.Logger
	Metrics *observability.Metrics // optional
}

// New creates a new Engine.
func New(opts Options) *Engine {
	base := opts.BaseCurrency
	if base == "" {
		base = "USD"
	}
	return &Engine{
		transactionStore: opts.TransactionStore,
		accountStore:     opts.AccountStore,
		fxRateStore:      opts.FxRateStore,
		budgetTargets:    opts.BudgetTargets,
		anomalyStore:     opts.AnomalyStore,
		recurringStore:   opts.RecurringStore,
		forecastStore:    opts.ForecastStore,
		varianceStore:    opts.VarianceStore,
		cashflowStore:    opts.CashflowStore,
		categoryStore:    opts.CategoryStore,
		netWorthStore:    opts.NetWorthStore,
		windowStore:      opts.WindowStore,
		baseCurrency:     base,
		clock:            func() time.Time { return time.Now().UTC() },
		log:              opts.Logger,
		metrics:          opts.Metrics,
	}
}

// WithClock sets a custom clock for deterministic output.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

// RunResult summarizes one engine run.
type RunResult struct {
	TransactionsProcessed int
	WindowPoints          int
	AnomaliesFlagged      int
	PatternsDetected      int
	ForecastsProduced     int
	VarianceMonths        int
	CashflowMonths        int
	NetWorthDays          int
}

// Run executes the full analytics pipeline.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	started := e.clock()
	result := &RunResult{}

	// Phase 1: load inputs
	txns, err := e.transactionStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	accounts, err := e.accountStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	fxRates, err := e.fxRateStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fx rates: %w", err)
	}
	targets, err := e.budgetTargets.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load budget targets: %w", err)
	}
	result.TransactionsProcessed = len(txns)
	e.log.Info().Int("transactions", len(txns)).Int("accounts", len(accounts)).Msg("inputs loaded")

	// Phase 2: canonical ordering and feed preconditions. A non-monotonic
	// feed aborts the run; stale derived facts are better than wrong ones.
	rollstats.SortTransactions(txns)
	if err := rollstats.ValidateOrdering(txns); err != nil {
		return nil, fmt.Errorf("validate transaction feed: %w", err)
	}

	// Phase 3: rolling windows and anomaly detection in one ordered sweep
	windowPoints, anomalies := e.sweepWindows(txns)
	result.WindowPoints = len(windowPoints)
	result.AnomaliesFlagged = len(anomalies)
	e.log.Info().Int("window_points", len(windowPoints)).Int("anomalies", len(anomalies)).Msg("windows swept")

	// Phase 4: recurring patterns
	patterns := recurring.Detect(txns, e.clock())
	result.PatternsDetected = len(patterns)

	// Phase 5: monthly marts
	cashflow := BuildMonthlyCashflow(txns)
	categoryMonthly := BuildCategoryMonthly(txns)
	result.CashflowMonths = len(cashflow)

	// Phase 6: forecasts from the monthly marts
	forecasts := forecast.Run(
		incomeSeries(cashflow),
		expenseSeries(cashflow),
		categorySeries(categoryMonthly),
	)
	result.ForecastsProduced = len(forecasts)

	// Phase 7: budget variance per observed month
	varianceByMonth := make(map[string][]*domain.BudgetVarianceRecord)
	if len(targets) > 0 {
		for _, month := range observedMonths(cashflow) {
			actuals := actualsForMonth(categoryMonthly, month)
			varianceByMonth[month] = budget.Variance(month, actuals, targets)
		}
	}
	result.VarianceMonths = len(varianceByMonth)

	// Phase 8: net worth roll-up
	rates := networth.NewRateTable(e.baseCurrency, fxRates)
	snapshots := networth.Rollup(accounts, txns, rates, e.clock())
	result.NetWorthDays = len(snapshots)

	// Phase 9: persist everything
	if err := e.persist(ctx, windowPoints, anomalies, patterns, forecasts, varianceByMonth, cashflow, categoryMonthly, snapshots); err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.EngineRunsTotal.WithLabelValues("success").Inc()
		e.metrics.EngineRunDuration.Observe(e.clock().Sub(started).Seconds())
		e.metrics.AnomaliesFlagged.Add(float64(len(anomalies)))
		e.metrics.PatternsDetected.Set(float64(len(patterns)))
	}
	e.log.Info().
		Int("anomalies", result.AnomaliesFlagged).
		Int("patterns", result.PatternsDetected).
		Int("forecasts", result.ForecastsProduced).
		Int("net_worth_days", result.NetWorthDays).
		Dur("elapsed", e.clock().Sub(started)).
		Msg("engine run complete")

	return result, nil
}

// sweepWindows walks the ordered transactions once, maintaining category and
// merchant rolling windows and scoring each expense against the state the
// windows held before it arrived.
func (e *Engine) sweepWindows(txns []*domain.Transaction) ([]*domain.WindowPoint, []*domain.AnomalyRecord) {
	catTracker := rollstats.NewTracker(domain.PartitionCategory)
	merchTracker := rollstats.NewTracker(domain.PartitionMerchant)
	flaggedAt := e.clock()

	var points []*domain.WindowPoint
	var anomalies []*domain.AnomalyRecord

	for _, txn := range txns {
		if !txn.IsExpense() {
			continue
		}

		var catSnap, merchSnap domain.WindowSnapshot
		if txn.Category != "" {
			catSnap = catTracker.Observe(txn)
			if p := catTracker.Point(txn); p != nil {
				points = append(points, p)
			}
		}
		if txn.Merchant != "" {
			merchSnap = merchTracker.Observe(txn)
			if p := merchTracker.Point(txn); p != nil {
				points = append(points, p)
			}
		}

		if rec := anomaly.Detect(txn, catSnap, merchSnap, flaggedAt); rec != nil {
			anomalies = append(anomalies, rec)
		}
	}
	return points, anomalies
}

func (e *Engine) persist(
	ctx context.Context,
	windowPoints []*domain.WindowPoint,
	anomalies []*domain.AnomalyRecord,
	patterns []*domain.RecurringPattern,
	forecasts []*domain.ForecastRecord,
	varianceByMonth map[string][]*domain.BudgetVarianceRecord,
	cashflow []*domain.MonthlyCashflow,
	categoryMonthly []*domain.CategoryMonthly,
	snapshots []*domain.NetWorthSnapshot,
) error {
	if err := e.windowStore.ReplaceAll(ctx, windowPoints); err != nil {
		return fmt.Errorf("persist window points: %w", err)
	}
	for _, rec := range anomalies {
		if err := e.anomalyStore.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("persist anomaly %s: %w", rec.TxnID, err)
		}
	}
	for _, p := range patterns {
		if err := e.recurringStore.Upsert(ctx, p); err != nil {
			return fmt.Errorf("persist recurring pattern %s: %w", p.PatternID, err)
		}
	}
	for _, f := range forecasts {
		if err := e.forecastStore.Upsert(ctx, f); err != nil {
			return fmt.Errorf("persist forecast %s: %w", f.ForecastID, err)
		}
	}
	for month, records := range varianceByMonth {
		if err := e.varianceStore.ReplaceMonth(ctx, month, records); err != nil {
			return fmt.Errorf("persist budget variance %s: %w", month, err)
		}
	}
	if err := e.cashflowStore.ReplaceAll(ctx, cashflow); err != nil {
		return fmt.Errorf("persist monthly cashflow: %w", err)
	}
	if err := e.categoryStore.ReplaceAll(ctx, categoryMonthly); err != nil {
		return fmt.Errorf("persist category monthly: %w", err)
	}
	if err := e.netWorthStore.ReplaceAll(ctx, snapshots); err != nil {
		return fmt.Errorf("persist net worth: %w", err)
	}
	return nil
}

// incomeSeries projects the cashflow mart onto the income forecast input.
func incomeSeries(rows []*domain.MonthlyCashflow) []forecast.MonthlyPoint {
	points := make([]forecast.MonthlyPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, forecast.MonthlyPoint{Month: r.Month, Amount: r.Income})
	}
	return points
}

// expenseSeries projects the cashflow mart onto the expense forecast input.
func expenseSeries(rows []*domain.MonthlyCashflow) []forecast.MonthlyPoint {
	points := make([]forecast.MonthlyPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, forecast.MonthlyPoint{Month: r.Month, Amount: r.Expenses})
	}
	return points
}

// categorySeries groups the category mart into per-category forecast inputs.
func categorySeries(rows []*domain.CategoryMonthly) map[string][]forecast.MonthlyPoint {
	series := make(map[string][]forecast.MonthlyPoint)
	for _, r := range rows {
		series[r.Category] = append(series[r.Category], forecast.MonthlyPoint{Month: r.Month, Amount: r.Expenses})
	}
	return series
}

func observedMonths(rows []*domain.MonthlyCashflow) []string {
	months := make([]string, 0, len(rows))
	for _, r := range rows {
		months = append(months, r.Month)
	}
	return months
}

func actualsForMonth(rows []*domain.CategoryMonthly, month string) map[string]float64 {
	actuals := make(map[string]float64)
	for _, r := range rows {
		if r.Month == month {
			actuals[r.Category] = r.Expenses
		}
	}
	return actuals
}
