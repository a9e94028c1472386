package postgres

import (
	"context"
	"fmt"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// FxRateStore implements storage.FxRateStore using PostgreSQL.
type FxRateStore struct {
	pool *Pool
}

// NewFxRateStore creates a new FxRateStore.
func NewFxRateStore(pool *Pool) *FxRateStore {
	return &FxRateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FxRateStore = (*FxRateStore)(nil)

// InsertBulk adds multiple rates. Fails entire batch on duplicate (date, currency).
func (s *FxRateStore) InsertBulk(ctx context.Context, rates []*domain.FxRate) error {
	if len(rates) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO fx_rates (date, currency, rate) VALUES ($1, $2, $3)`
	for _, r := range rates {
		if r == nil || r.Date == "" || r.Currency == "" {
			return storage.ErrInvalidInput
		}
		if _, err := tx.Exec(ctx, query, r.Date, r.Currency, r.Rate); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert fx rate in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves all rates, ordered by currency ASC, date ASC.
func (s *FxRateStore) GetAll(ctx context.Context) ([]*domain.FxRate, error) {
	query := `
		SELECT date, currency, rate
		FROM fx_rates
		ORDER BY currency ASC, date ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all fx rates: %w", err)
	}
	defer rows.Close()

	var rates []*domain.FxRate
	for rows.Next() {
		var r domain.FxRate
		if err := rows.Scan(&r.Date, &r.Currency, &r.Rate); err != nil {
			return nil, fmt.Errorf("scan fx rate row: %w", err)
		}
		rates = append(rates, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fx rate rows: %w", err)
	}
	return rates, nil
}
