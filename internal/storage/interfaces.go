package storage

import (
	"context"
	"time"

	"findataops/internal/domain"
)

// TransactionStore provides access to transactions storage.
type TransactionStore interface {
	// Insert adds a new transaction. Returns ErrDuplicateKey if txn_id exists.
	Insert(ctx context.Context, t *domain.Transaction) error

	// InsertBulk adds multiple transactions atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, txns []*domain.Transaction) error

	// GetAll retrieves every transaction, ordered by posted_at ASC, txn_id ASC.
	GetAll(ctx context.Context) ([]*domain.Transaction, error)

	// GetByAccountID retrieves all transactions for an account, ordered by posted_at ASC, txn_id ASC.
	GetByAccountID(ctx context.Context, accountID string) ([]*domain.Transaction, error)

	// GetByTimeRange retrieves transactions posted within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error)
}

// AccountStore provides access to accounts storage.
type AccountStore interface {
	// Insert adds a new account. Returns ErrDuplicateKey if account_id exists.
	Insert(ctx context.Context, a *domain.Account) error

	// GetByID retrieves an account by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAll retrieves all accounts, ordered by account_id ASC.
	GetAll(ctx context.Context) ([]*domain.Account, error)
}

// FxRateStore provides access to fx_rates storage.
type FxRateStore interface {
	// InsertBulk adds multiple rates. Fails entire batch on duplicate (date, currency).
	InsertBulk(ctx context.Context, rates []*domain.FxRate) error

	// GetAll retrieves all rates, ordered by currency ASC, date ASC.
	GetAll(ctx context.Context) ([]*domain.FxRate, error)
}

// BudgetTargetStore provides access to budget_targets storage.
type BudgetTargetStore interface {
	// Upsert inserts or replaces the target for a category.
	Upsert(ctx context.Context, t *domain.BudgetTarget) error

	// GetAll retrieves all targets, ordered by category ASC.
	GetAll(ctx context.Context) ([]*domain.BudgetTarget, error)
}

// AnomalyStore provides access to anomalies storage.
type AnomalyStore interface {
	// Upsert inserts or replaces the anomaly for a transaction. A replace
	// keeps the existing acknowledged flag so re-scoring never un-triages.
	Upsert(ctx context.Context, rec *domain.AnomalyRecord) error

	// GetByTxnID retrieves the anomaly for a transaction. Returns ErrNotFound if not exists.
	GetByTxnID(ctx context.Context, txnID string) (*domain.AnomalyRecord, error)

	// GetAll retrieves all anomalies, ordered by flagged_at ASC, txn_id ASC.
	GetAll(ctx context.Context) ([]*domain.AnomalyRecord, error)

	// Acknowledge sets the acknowledged flag. Returns ErrNotFound if not exists.
	Acknowledge(ctx context.Context, txnID string, acknowledged bool) error
}

// RecurringPatternStore provides access to recurring_patterns storage.
type RecurringPatternStore interface {
	// Upsert inserts or replaces the pattern keyed by pattern_id.
	Upsert(ctx context.Context, p *domain.RecurringPattern) error

	// GetByID retrieves a pattern by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, patternID string) (*domain.RecurringPattern, error)

	// GetAll retrieves all patterns, ordered by merchant ASC, account_id ASC.
	GetAll(ctx context.Context) ([]*domain.RecurringPattern, error)
}

// ForecastStore provides access to forecasts storage.
type ForecastStore interface {
	// Upsert inserts or replaces the forecast keyed by forecast_id.
	Upsert(ctx context.Context, f *domain.ForecastRecord) error

	// GetAll retrieves all forecasts, ordered by forecast_month ASC, scope ASC, category ASC.
	GetAll(ctx context.Context) ([]*domain.ForecastRecord, error)

	// GetByMonth retrieves forecasts targeting one month.
	GetByMonth(ctx context.Context, month string) ([]*domain.ForecastRecord, error)
}

// BudgetVarianceStore provides access to budget_variance storage.
type BudgetVarianceStore interface {
	// ReplaceMonth atomically replaces the variance rows for a month.
	ReplaceMonth(ctx context.Context, month string, records []*domain.BudgetVarianceRecord) error

	// GetByMonth retrieves variance rows for a month, ordered by category ASC.
	GetByMonth(ctx context.Context, month string) ([]*domain.BudgetVarianceRecord, error)

	// GetAll retrieves all variance rows, ordered by month ASC, category ASC.
	GetAll(ctx context.Context) ([]*domain.BudgetVarianceRecord, error)
}

// MonthlyCashflowStore provides access to the monthly_cashflow mart.
type MonthlyCashflowStore interface {
	// ReplaceAll replaces the mart with a fresh rebuild.
	ReplaceAll(ctx context.Context, rows []*domain.MonthlyCashflow) error

	// GetAll retrieves all rows, ordered by month ASC.
	GetAll(ctx context.Context) ([]*domain.MonthlyCashflow, error)
}

// CategoryMonthlyStore provides access to the category_monthly mart.
type CategoryMonthlyStore interface {
	// ReplaceAll replaces the mart with a fresh rebuild.
	ReplaceAll(ctx context.Context, rows []*domain.CategoryMonthly) error

	// GetAll retrieves all rows, ordered by month ASC, category ASC.
	GetAll(ctx context.Context) ([]*domain.CategoryMonthly, error)
}

// NetWorthStore provides access to the net_worth_daily mart.
type NetWorthStore interface {
	// ReplaceAll replaces the mart with a fresh rebuild.
	ReplaceAll(ctx context.Context, snaps []*domain.NetWorthSnapshot) error

	// GetAll retrieves all snapshots, ordered by date ASC.
	GetAll(ctx context.Context) ([]*domain.NetWorthSnapshot, error)

	// GetLatest retrieves the most recent snapshot. Returns ErrNotFound when empty.
	GetLatest(ctx context.Context) (*domain.NetWorthSnapshot, error)
}

// WindowPointStore provides access to the rolling_window_points mart.
type WindowPointStore interface {
	// ReplaceAll replaces the mart with a fresh rebuild.
	ReplaceAll(ctx context.Context, points []*domain.WindowPoint) error

	// GetByPartition retrieves points for one partition, ordered by posted_at ASC, txn_id ASC.
	GetByPartition(ctx context.Context, ptype domain.PartitionType, value string) ([]*domain.WindowPoint, error)
}
