package clickhouse

import (
	"context"
	"fmt"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// NetWorthStore implements storage.NetWorthStore using ClickHouse.
type NetWorthStore struct {
	conn *Conn
}

// NewNetWorthStore creates a new NetWorthStore.
func NewNetWorthStore(conn *Conn) *NetWorthStore {
	return &NetWorthStore{conn: conn}
}

// Compile-time interface check.
var _ storage.NetWorthStore = (*NetWorthStore)(nil)

const selectNetWorthColumns = `
	date, net_worth, total_assets, total_liabilities,
	change_day, change_week, change_month, change_year
`

// ReplaceAll replaces the mart with a fresh rebuild.
func (s *NetWorthStore) ReplaceAll(ctx context.Context, snaps []*domain.NetWorthSnapshot) error {
	for _, snap := range snaps {
		if snap == nil || snap.Date == "" {
			return storage.ErrInvalidInput
		}
	}

	if err := s.conn.Exec(ctx, `TRUNCATE TABLE net_worth_daily`); err != nil {
		return fmt.Errorf("truncate net_worth_daily: %w", err)
	}
	if len(snaps) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO net_worth_daily (
			date, net_worth, total_assets, total_liabilities,
			change_day, change_week, change_month, change_year
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snaps {
		err = batch.Append(
			snap.Date, snap.NetWorth, snap.TotalAssets, snap.TotalLiabilities,
			snap.ChangeDay, snap.ChangeWeek, snap.ChangeMonth, snap.ChangeYear,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetAll retrieves all snapshots, ordered by date ASC.
func (s *NetWorthStore) GetAll(ctx context.Context) ([]*domain.NetWorthSnapshot, error) {
	query := `
		SELECT ` + selectNetWorthColumns + `
		FROM net_worth_daily
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query net worth daily: %w", err)
	}
	defer rows.Close()

	return scanNetWorth(rows)
}

// GetLatest retrieves the most recent snapshot. Returns ErrNotFound when empty.
func (s *NetWorthStore) GetLatest(ctx context.Context) (*domain.NetWorthSnapshot, error) {
	query := `
		SELECT ` + selectNetWorthColumns + `
		FROM net_worth_daily
		ORDER BY date DESC
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query latest net worth: %w", err)
	}
	defer rows.Close()

	snaps, err := scanNetWorth(rows)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, storage.ErrNotFound
	}
	return snaps[0], nil
}

// scanNetWorth scans multiple rows into a slice of NetWorthSnapshot.
func scanNetWorth(rows chRows) ([]*domain.NetWorthSnapshot, error) {
	var snaps []*domain.NetWorthSnapshot

	for rows.Next() {
		var snap domain.NetWorthSnapshot
		err := rows.Scan(
			&snap.Date, &snap.NetWorth, &snap.TotalAssets, &snap.TotalLiabilities,
			&snap.ChangeDay, &snap.ChangeWeek, &snap.ChangeMonth, &snap.ChangeYear,
		)
		if err != nil {
			return nil, fmt.Errorf("scan net worth row: %w", err)
		}
		snaps = append(snaps, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate net worth rows: %w", err)
	}
	return snaps, nil
}
