package clickhouse

import (
	"context"
	"fmt"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// MonthlyCashflowStore implements storage.MonthlyCashflowStore using ClickHouse.
type MonthlyCashflowStore struct {
	conn *Conn
}

// NewMonthlyCashflowStore creates a new MonthlyCashflowStore.
func NewMonthlyCashflowStore(conn *Conn) *MonthlyCashflowStore {
	return &MonthlyCashflowStore{conn: conn}
}

// Compile-time interface check.
var _ storage.MonthlyCashflowStore = (*MonthlyCashflowStore)(nil)

// ReplaceAll replaces the mart with a fresh rebuild.
func (s *MonthlyCashflowStore) ReplaceAll(ctx context.Context, rows []*domain.MonthlyCashflow) error {
	for _, r := range rows {
		if r == nil || r.Month == "" {
			return storage.ErrInvalidInput
		}
	}

	if err := s.conn.Exec(ctx, `TRUNCATE TABLE monthly_cashflow`); err != nil {
		return fmt.Errorf("truncate monthly_cashflow: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO monthly_cashflow (
			month, income, expenses, net, savings_rate, transaction_count
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(r.Month, r.Income, r.Expenses, r.Net, r.SavingsRate, uint32(r.TransactionCount))
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetAll retrieves all rows, ordered by month ASC.
func (s *MonthlyCashflowStore) GetAll(ctx context.Context) ([]*domain.MonthlyCashflow, error) {
	query := `
		SELECT month, income, expenses, net, savings_rate, transaction_count
		FROM monthly_cashflow
		ORDER BY month ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query monthly cashflow: %w", err)
	}
	defer rows.Close()

	var result []*domain.MonthlyCashflow
	for rows.Next() {
		var r domain.MonthlyCashflow
		var count uint32
		if err := rows.Scan(&r.Month, &r.Income, &r.Expenses, &r.Net, &r.SavingsRate, &count); err != nil {
			return nil, fmt.Errorf("scan monthly cashflow row: %w", err)
		}
		r.TransactionCount = int(count)
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly cashflow rows: %w", err)
	}
	return result, nil
}

// CategoryMonthlyStore implements storage.CategoryMonthlyStore using ClickHouse.
type CategoryMonthlyStore struct {
	conn *Conn
}

// NewCategoryMonthlyStore creates a new CategoryMonthlyStore.
func NewCategoryMonthlyStore(conn *Conn) *CategoryMonthlyStore {
	return &CategoryMonthlyStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CategoryMonthlyStore = (*CategoryMonthlyStore)(nil)

// ReplaceAll replaces the mart with a fresh rebuild.
func (s *CategoryMonthlyStore) ReplaceAll(ctx context.Context, rows []*domain.CategoryMonthly) error {
	for _, r := range rows {
		if r == nil || r.Month == "" || r.Category == "" {
			return storage.ErrInvalidInput
		}
	}

	if err := s.conn.Exec(ctx, `TRUNCATE TABLE category_monthly`); err != nil {
		return fmt.Errorf("truncate category_monthly: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO category_monthly (month, category, expenses, transaction_count)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		if err := batch.Append(r.Month, r.Category, r.Expenses, uint32(r.TransactionCount)); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetAll retrieves all rows, ordered by month ASC, category ASC.
func (s *CategoryMonthlyStore) GetAll(ctx context.Context) ([]*domain.CategoryMonthly, error) {
	query := `
		SELECT month, category, expenses, transaction_count
		FROM category_monthly
		ORDER BY month ASC, category ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query category monthly: %w", err)
	}
	defer rows.Close()

	var result []*domain.CategoryMonthly
	for rows.Next() {
		var r domain.CategoryMonthly
		var count uint32
		if err := rows.Scan(&r.Month, &r.Category, &r.Expenses, &count); err != nil {
			return nil, fmt.Errorf("scan category monthly row: %w", err)
		}
		r.TransactionCount = int(count)
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category monthly rows: %w", err)
	}
	return result, nil
}
