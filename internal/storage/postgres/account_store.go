package postgres

import (
	"context"
	"fmt"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// AccountStore implements storage.AccountStore using PostgreSQL.
type AccountStore struct {
	pool *Pool
}

// NewAccountStore creates a new AccountStore.
func NewAccountStore(pool *Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AccountStore = (*AccountStore)(nil)

// Insert adds a new account. Returns ErrDuplicateKey if account_id exists.
func (s *AccountStore) Insert(ctx context.Context, a *domain.Account) error {
	if a == nil || a.AccountID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO accounts (account_id, institution, type, currency, opening_balance)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.pool.Exec(ctx, query, a.AccountID, a.Institution, a.Type, a.Currency, a.OpeningBalance)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by its ID. Returns ErrNotFound if not exists.
func (s *AccountStore) GetByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `
		SELECT account_id, institution, type, currency, opening_balance
		FROM accounts
		WHERE account_id = $1
	`

	var a domain.Account
	err := s.pool.QueryRow(ctx, query, accountID).Scan(
		&a.AccountID, &a.Institution, &a.Type, &a.Currency, &a.OpeningBalance,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return &a, nil
}

// GetAll retrieves all accounts, ordered by account_id ASC.
func (s *AccountStore) GetAll(ctx context.Context) ([]*domain.Account, error) {
	query := `
		SELECT account_id, institution, type, currency, opening_balance
		FROM accounts
		ORDER BY account_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.AccountID, &a.Institution, &a.Type, &a.Currency, &a.OpeningBalance); err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		accounts = append(accounts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account rows: %w", err)
	}
	return accounts, nil
}
