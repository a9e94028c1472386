package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// AnomalyStore implements storage.AnomalyStore using PostgreSQL.
type AnomalyStore struct {
	pool *Pool
}

// NewAnomalyStore creates a new AnomalyStore.
func NewAnomalyStore(pool *Pool) *AnomalyStore {
	return &AnomalyStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AnomalyStore = (*AnomalyStore)(nil)

const selectAnomalyColumns = `
	txn_id, account_id, merchant, category, amount, score, severity, anomaly_type,
	driver, remediation_hint, category_z, merchant_z, flagged_at_ms, acknowledged
`

// Upsert inserts or replaces the anomaly for a transaction. The conflict
// branch deliberately leaves acknowledged alone: re-scoring never un-triages.
func (s *AnomalyStore) Upsert(ctx context.Context, rec *domain.AnomalyRecord) error {
	if rec == nil || rec.TxnID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO anomalies (
			txn_id, account_id, merchant, category, amount, score, severity, anomaly_type,
			driver, remediation_hint, category_z, merchant_z, flagged_at_ms, acknowledged
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (txn_id) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			merchant = EXCLUDED.merchant,
			category = EXCLUDED.category,
			amount = EXCLUDED.amount,
			score = EXCLUDED.score,
			severity = EXCLUDED.severity,
			anomaly_type = EXCLUDED.anomaly_type,
			driver = EXCLUDED.driver,
			remediation_hint = EXCLUDED.remediation_hint,
			category_z = EXCLUDED.category_z,
			merchant_z = EXCLUDED.merchant_z,
			flagged_at_ms = EXCLUDED.flagged_at_ms
	`

	_, err := s.pool.Exec(ctx, query,
		rec.TxnID, rec.AccountID, rec.Merchant, rec.Category, rec.Amount,
		rec.Score, rec.Severity, rec.AnomalyType, rec.Driver, rec.RemediationHint,
		rec.CategoryZ, rec.MerchantZ, rec.FlaggedAtMs, rec.Acknowledged,
	)
	if err != nil {
		return fmt.Errorf("upsert anomaly: %w", err)
	}
	return nil
}

// GetByTxnID retrieves the anomaly for a transaction. Returns ErrNotFound if not exists.
func (s *AnomalyStore) GetByTxnID(ctx context.Context, txnID string) (*domain.AnomalyRecord, error) {
	query := `SELECT ` + selectAnomalyColumns + ` FROM anomalies WHERE txn_id = $1`

	var rec domain.AnomalyRecord
	err := s.pool.QueryRow(ctx, query, txnID).Scan(
		&rec.TxnID, &rec.AccountID, &rec.Merchant, &rec.Category, &rec.Amount,
		&rec.Score, &rec.Severity, &rec.AnomalyType, &rec.Driver, &rec.RemediationHint,
		&rec.CategoryZ, &rec.MerchantZ, &rec.FlaggedAtMs, &rec.Acknowledged,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get anomaly by txn id: %w", err)
	}
	return &rec, nil
}

// GetAll retrieves all anomalies, ordered by flagged_at ASC, txn_id ASC.
func (s *AnomalyStore) GetAll(ctx context.Context) ([]*domain.AnomalyRecord, error) {
	query := `
		SELECT ` + selectAnomalyColumns + `
		FROM anomalies
		ORDER BY flagged_at_ms ASC, txn_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all anomalies: %w", err)
	}
	defer rows.Close()

	return scanAnomalies(rows)
}

// Acknowledge sets the acknowledged flag. Returns ErrNotFound if not exists.
func (s *AnomalyStore) Acknowledge(ctx context.Context, txnID string, acknowledged bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE anomalies SET acknowledged = $2 WHERE txn_id = $1`,
		txnID, acknowledged,
	)
	if err != nil {
		return fmt.Errorf("acknowledge anomaly: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanAnomalies scans multiple rows into a slice of AnomalyRecord.
func scanAnomalies(rows pgx.Rows) ([]*domain.AnomalyRecord, error) {
	var records []*domain.AnomalyRecord

	for rows.Next() {
		var rec domain.AnomalyRecord
		err := rows.Scan(
			&rec.TxnID, &rec.AccountID, &rec.Merchant, &rec.Category, &rec.Amount,
			&rec.Score, &rec.Severity, &rec.AnomalyType, &rec.Driver, &rec.RemediationHint,
			&rec.CategoryZ, &rec.MerchantZ, &rec.FlaggedAtMs, &rec.Acknowledged,
		)
		if err != nil {
			return nil, fmt.Errorf("scan anomaly row: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate anomaly rows: %w", err)
	}
	return records, nil
}
