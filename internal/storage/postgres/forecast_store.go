package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// ForecastStore implements storage.ForecastStore using PostgreSQL.
type ForecastStore struct {
	pool *Pool
}

// NewForecastStore creates a new ForecastStore.
func NewForecastStore(pool *Pool) *ForecastStore {
	return &ForecastStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ForecastStore = (*ForecastStore)(nil)

const selectForecastColumns = `
	forecast_id, forecast_month, horizon, scope, category, forecast_amount,
	lower_bound, upper_bound, confidence_level, quality, risk, trend, trend_volatility
`

// Upsert inserts or replaces the forecast keyed by forecast_id.
func (s *ForecastStore) Upsert(ctx context.Context, f *domain.ForecastRecord) error {
	if f == nil || f.ForecastID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO forecasts (
			forecast_id, forecast_month, horizon, scope, category, forecast_amount,
			lower_bound, upper_bound, confidence_level, quality, risk, trend, trend_volatility
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (forecast_id) DO UPDATE SET
			forecast_month = EXCLUDED.forecast_month,
			horizon = EXCLUDED.horizon,
			scope = EXCLUDED.scope,
			category = EXCLUDED.category,
			forecast_amount = EXCLUDED.forecast_amount,
			lower_bound = EXCLUDED.lower_bound,
			upper_bound = EXCLUDED.upper_bound,
			confidence_level = EXCLUDED.confidence_level,
			quality = EXCLUDED.quality,
			risk = EXCLUDED.risk,
			trend = EXCLUDED.trend,
			trend_volatility = EXCLUDED.trend_volatility
	`

	_, err := s.pool.Exec(ctx, query,
		f.ForecastID, f.ForecastMonth, f.Horizon, f.Scope, f.Category, f.ForecastAmount,
		f.LowerBound, f.UpperBound, f.ConfidenceLevel, f.Quality, f.Risk, f.Trend, f.TrendVolatility,
	)
	if err != nil {
		return fmt.Errorf("upsert forecast: %w", err)
	}
	return nil
}

// GetAll retrieves all forecasts, ordered by forecast_month ASC, scope ASC, category ASC.
func (s *ForecastStore) GetAll(ctx context.Context) ([]*domain.ForecastRecord, error) {
	query := `
		SELECT ` + selectForecastColumns + `
		FROM forecasts
		ORDER BY forecast_month ASC, scope ASC, category ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all forecasts: %w", err)
	}
	defer rows.Close()

	return scanForecasts(rows)
}

// GetByMonth retrieves forecasts targeting one month.
func (s *ForecastStore) GetByMonth(ctx context.Context, month string) ([]*domain.ForecastRecord, error) {
	query := `
		SELECT ` + selectForecastColumns + `
		FROM forecasts
		WHERE forecast_month = $1
		ORDER BY scope ASC, category ASC
	`

	rows, err := s.pool.Query(ctx, query, month)
	if err != nil {
		return nil, fmt.Errorf("get forecasts by month: %w", err)
	}
	defer rows.Close()

	return scanForecasts(rows)
}

// scanForecasts scans multiple rows into a slice of ForecastRecord.
func scanForecasts(rows pgx.Rows) ([]*domain.ForecastRecord, error) {
	var records []*domain.ForecastRecord

	for rows.Next() {
		var f domain.ForecastRecord
		err := rows.Scan(
			&f.ForecastID, &f.ForecastMonth, &f.Horizon, &f.Scope, &f.Category, &f.ForecastAmount,
			&f.LowerBound, &f.UpperBound, &f.ConfidenceLevel, &f.Quality, &f.Risk, &f.Trend, &f.TrendVolatility,
		)
		if err != nil {
			return nil, fmt.Errorf("scan forecast row: %w", err)
		}
		records = append(records, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate forecast rows: %w", err)
	}
	return records, nil
}
