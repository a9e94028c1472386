package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// RecurringPatternStore implements storage.RecurringPatternStore using PostgreSQL.
type RecurringPatternStore struct {
	pool *Pool
}

// NewRecurringPatternStore creates a new RecurringPatternStore.
func NewRecurringPatternStore(pool *Pool) *RecurringPatternStore {
	return &RecurringPatternStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RecurringPatternStore = (*RecurringPatternStore)(nil)

const selectPatternColumns = `
	pattern_id, merchant, account_id, category, occurrence_count, avg_interval_days,
	interval_cv, avg_amount, amount_cv, type, confidence_score,
	first_seen, last_seen, next_expected, days_until_next, status
`

// Upsert inserts or replaces the pattern keyed by pattern_id.
func (s *RecurringPatternStore) Upsert(ctx context.Context, p *domain.RecurringPattern) error {
	if p == nil || p.PatternID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO recurring_patterns (
			pattern_id, merchant, account_id, category, occurrence_count, avg_interval_days,
			interval_cv, avg_amount, amount_cv, type, confidence_score,
			first_seen, last_seen, next_expected, days_until_next, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (pattern_id) DO UPDATE SET
			merchant = EXCLUDED.merchant,
			account_id = EXCLUDED.account_id,
			category = EXCLUDED.category,
			occurrence_count = EXCLUDED.occurrence_count,
			avg_interval_days = EXCLUDED.avg_interval_days,
			interval_cv = EXCLUDED.interval_cv,
			avg_amount = EXCLUDED.avg_amount,
			amount_cv = EXCLUDED.amount_cv,
			type = EXCLUDED.type,
			confidence_score = EXCLUDED.confidence_score,
			first_seen = EXCLUDED.first_seen,
			last_seen = EXCLUDED.last_seen,
			next_expected = EXCLUDED.next_expected,
			days_until_next = EXCLUDED.days_until_next,
			status = EXCLUDED.status
	`

	_, err := s.pool.Exec(ctx, query,
		p.PatternID, p.Merchant, p.AccountID, p.Category, p.OccurrenceCount, p.AvgIntervalDays,
		p.IntervalCV, p.AvgAmount, p.AmountCV, p.Type, p.ConfidenceScore,
		p.FirstSeen, p.LastSeen, p.NextExpected, p.DaysUntilNext, p.Status,
	)
	if err != nil {
		return fmt.Errorf("upsert recurring pattern: %w", err)
	}
	return nil
}

// GetByID retrieves a pattern by its ID. Returns ErrNotFound if not exists.
func (s *RecurringPatternStore) GetByID(ctx context.Context, patternID string) (*domain.RecurringPattern, error) {
	query := `SELECT ` + selectPatternColumns + ` FROM recurring_patterns WHERE pattern_id = $1`

	var p domain.RecurringPattern
	err := s.pool.QueryRow(ctx, query, patternID).Scan(
		&p.PatternID, &p.Merchant, &p.AccountID, &p.Category, &p.OccurrenceCount, &p.AvgIntervalDays,
		&p.IntervalCV, &p.AvgAmount, &p.AmountCV, &p.Type, &p.ConfidenceScore,
		&p.FirstSeen, &p.LastSeen, &p.NextExpected, &p.DaysUntilNext, &p.Status,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get recurring pattern by id: %w", err)
	}
	return &p, nil
}

// GetAll retrieves all patterns, ordered by merchant ASC, account_id ASC.
func (s *RecurringPatternStore) GetAll(ctx context.Context) ([]*domain.RecurringPattern, error) {
	query := `
		SELECT ` + selectPatternColumns + `
		FROM recurring_patterns
		ORDER BY merchant ASC, account_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all recurring patterns: %w", err)
	}
	defer rows.Close()

	return scanPatterns(rows)
}

// scanPatterns scans multiple rows into a slice of RecurringPattern.
func scanPatterns(rows pgx.Rows) ([]*domain.RecurringPattern, error) {
	var patterns []*domain.RecurringPattern

	for rows.Next() {
		var p domain.RecurringPattern
		err := rows.Scan(
			&p.PatternID, &p.Merchant, &p.AccountID, &p.Category, &p.OccurrenceCount, &p.AvgIntervalDays,
			&p.IntervalCV, &p.AvgAmount, &p.AmountCV, &p.Type, &p.ConfidenceScore,
			&p.FirstSeen, &p.LastSeen, &p.NextExpected, &p.DaysUntilNext, &p.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("scan recurring pattern row: %w", err)
		}
		patterns = append(patterns, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring pattern rows: %w", err)
	}
	return patterns, nil
}
