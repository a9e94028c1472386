package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// TransactionStore implements storage.TransactionStore using PostgreSQL.
type TransactionStore struct {
	pool *Pool
}

// NewTransactionStore creates a new TransactionStore.
func NewTransactionStore(pool *Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

const insertTransactionQuery = `
	INSERT INTO transactions (
		txn_id, account_id, posted_at, amount, currency, merchant, category, ingest_batch_id
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

const selectTransactionColumns = `
	txn_id, account_id, posted_at, amount, currency, merchant, category, ingest_batch_id
`

// Insert adds a new transaction. Returns ErrDuplicateKey if txn_id exists.
func (s *TransactionStore) Insert(ctx context.Context, t *domain.Transaction) error {
	if t == nil || t.TxnID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertTransactionQuery,
		t.TxnID, t.AccountID, t.PostedAt, t.Amount, t.Currency, t.Merchant, t.Category, t.IngestBatchID,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// InsertBulk adds multiple transactions atomically. Fails entire batch on any duplicate.
func (s *TransactionStore) InsertBulk(ctx context.Context, txns []*domain.Transaction) error {
	if len(txns) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range txns {
		if t == nil || t.TxnID == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, insertTransactionQuery,
			t.TxnID, t.AccountID, t.PostedAt, t.Amount, t.Currency, t.Merchant, t.Category, t.IngestBatchID,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert transaction in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves every transaction, ordered by posted_at ASC, txn_id ASC.
func (s *TransactionStore) GetAll(ctx context.Context) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + selectTransactionColumns + `
		FROM transactions
		ORDER BY posted_at ASC, txn_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetByAccountID retrieves all transactions for an account, ordered by posted_at ASC, txn_id ASC.
func (s *TransactionStore) GetByAccountID(ctx context.Context, accountID string) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + selectTransactionColumns + `
		FROM transactions
		WHERE account_id = $1
		ORDER BY posted_at ASC, txn_id ASC
	`

	rows, err := s.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("get transactions by account id: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetByTimeRange retrieves transactions posted within [start, end] (inclusive).
func (s *TransactionStore) GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + selectTransactionColumns + `
		FROM transactions
		WHERE posted_at >= $1 AND posted_at <= $2
		ORDER BY posted_at ASC, txn_id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get transactions by time range: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// scanTransactions scans multiple rows into a slice of Transaction.
func scanTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var txns []*domain.Transaction

	for rows.Next() {
		var t domain.Transaction
		err := rows.Scan(
			&t.TxnID,
			&t.AccountID,
			&t.PostedAt,
			&t.Amount,
			&t.Currency,
			&t.Merchant,
			&t.Category,
			&t.IngestBatchID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}
