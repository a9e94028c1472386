package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// BudgetTargetStore implements storage.BudgetTargetStore using PostgreSQL.
type BudgetTargetStore struct {
	pool *Pool
}

// NewBudgetTargetStore creates a new BudgetTargetStore.
func NewBudgetTargetStore(pool *Pool) *BudgetTargetStore {
	return &BudgetTargetStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BudgetTargetStore = (*BudgetTargetStore)(nil)

// Upsert inserts or replaces the target for a category.
func (s *BudgetTargetStore) Upsert(ctx context.Context, t *domain.BudgetTarget) error {
	if t == nil || t.Category == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO budget_targets (category, amount)
		VALUES ($1, $2)
		ON CONFLICT (category) DO UPDATE SET amount = EXCLUDED.amount
	`
	if _, err := s.pool.Exec(ctx, query, t.Category, t.Amount); err != nil {
		return fmt.Errorf("upsert budget target: %w", err)
	}
	return nil
}

// GetAll retrieves all targets, ordered by category ASC.
func (s *BudgetTargetStore) GetAll(ctx context.Context) ([]*domain.BudgetTarget, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT category, amount FROM budget_targets ORDER BY category ASC`)
	if err != nil {
		return nil, fmt.Errorf("get all budget targets: %w", err)
	}
	defer rows.Close()

	var targets []*domain.BudgetTarget
	for rows.Next() {
		var t domain.BudgetTarget
		if err := rows.Scan(&t.Category, &t.Amount); err != nil {
			return nil, fmt.Errorf("scan budget target row: %w", err)
		}
		targets = append(targets, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budget target rows: %w", err)
	}
	return targets, nil
}

// BudgetVarianceStore implements storage.BudgetVarianceStore using PostgreSQL.
type BudgetVarianceStore struct {
	pool *Pool
}

// NewBudgetVarianceStore creates a new BudgetVarianceStore.
func NewBudgetVarianceStore(pool *Pool) *BudgetVarianceStore {
	return &BudgetVarianceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BudgetVarianceStore = (*BudgetVarianceStore)(nil)

const selectVarianceColumns = `
	month, category, budget, actual, variance, variance_pct, status
`

// ReplaceMonth atomically replaces the variance rows for a month.
func (s *BudgetVarianceStore) ReplaceMonth(ctx context.Context, month string, records []*domain.BudgetVarianceRecord) error {
	if month == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM budget_variance WHERE month = $1`, month); err != nil {
		return fmt.Errorf("clear budget variance month: %w", err)
	}

	query := `
		INSERT INTO budget_variance (month, category, budget, actual, variance, variance_pct, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, r := range records {
		if r == nil || r.Category == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query, month, r.Category, r.Budget, r.Actual, r.Variance, r.VariancePct, r.Status)
		if err != nil {
			return fmt.Errorf("insert budget variance row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByMonth retrieves variance rows for a month, ordered by category ASC.
func (s *BudgetVarianceStore) GetByMonth(ctx context.Context, month string) ([]*domain.BudgetVarianceRecord, error) {
	query := `
		SELECT ` + selectVarianceColumns + `
		FROM budget_variance
		WHERE month = $1
		ORDER BY category ASC
	`

	rows, err := s.pool.Query(ctx, query, month)
	if err != nil {
		return nil, fmt.Errorf("get budget variance by month: %w", err)
	}
	defer rows.Close()

	return scanVariances(rows)
}

// GetAll retrieves all variance rows, ordered by month ASC, category ASC.
func (s *BudgetVarianceStore) GetAll(ctx context.Context) ([]*domain.BudgetVarianceRecord, error) {
	query := `
		SELECT ` + selectVarianceColumns + `
		FROM budget_variance
		ORDER BY month ASC, category ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all budget variance: %w", err)
	}
	defer rows.Close()

	return scanVariances(rows)
}

// scanVariances scans multiple rows into a slice of BudgetVarianceRecord.
func scanVariances(rows pgx.Rows) ([]*domain.BudgetVarianceRecord, error) {
	var records []*domain.BudgetVarianceRecord

	for rows.Next() {
		var r domain.BudgetVarianceRecord
		err := rows.Scan(&r.Month, &r.Category, &r.Budget, &r.Actual, &r.Variance, &r.VariancePct, &r.Status)
		if err != nil {
			return nil, fmt.Errorf("scan budget variance row: %w", err)
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budget variance rows: %w", err)
	}
	return records, nil
}
