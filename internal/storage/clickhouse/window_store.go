package clickhouse

import (
	"context"
	"fmt"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

// WindowPointStore implements storage.WindowPointStore using ClickHouse.
type WindowPointStore struct {
	conn *Conn
}

// NewWindowPointStore creates a new WindowPointStore.
func NewWindowPointStore(conn *Conn) *WindowPointStore {
	return &WindowPointStore{conn: conn}
}

// Compile-time interface check.
var _ storage.WindowPointStore = (*WindowPointStore)(nil)

// ReplaceAll replaces the mart with a fresh rebuild.
func (s *WindowPointStore) ReplaceAll(ctx context.Context, points []*domain.WindowPoint) error {
	for _, p := range points {
		if p == nil || p.TxnID == "" || p.PartitionValue == "" {
			return storage.ErrInvalidInput
		}
	}

	if err := s.conn.Exec(ctx, `TRUNCATE TABLE partition_windows`); err != nil {
		return fmt.Errorf("truncate partition_windows: %w", err)
	}
	if len(points) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO partition_windows (
			partition_type, partition_value, txn_id, posted_at_ms,
			window_count, window_mean, window_stddev
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			string(p.PartitionType), p.PartitionValue, p.TxnID, p.PostedAtMs,
			uint32(p.Count), p.Mean, p.Stddev,
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

// GetByPartition retrieves points for one partition, ordered by posted_at ASC, txn_id ASC.
func (s *WindowPointStore) GetByPartition(ctx context.Context, ptype domain.PartitionType, value string) ([]*domain.WindowPoint, error) {
	query := `
		SELECT partition_type, partition_value, txn_id, posted_at_ms,
		       window_count, window_mean, window_stddev
		FROM partition_windows
		WHERE partition_type = ? AND partition_value = ?
		ORDER BY posted_at_ms ASC, txn_id ASC
	`

	rows, err := s.conn.Query(ctx, query, string(ptype), value)
	if err != nil {
		return nil, fmt.Errorf("query partition windows: %w", err)
	}
	defer rows.Close()

	var points []*domain.WindowPoint
	for rows.Next() {
		var p domain.WindowPoint
		var ptypeStr string
		var count uint32
		err := rows.Scan(&ptypeStr, &p.PartitionValue, &p.TxnID, &p.PostedAtMs, &count, &p.Mean, &p.Stddev)
		if err != nil {
			return nil, fmt.Errorf("scan partition window row: %w", err)
		}
		p.PartitionType = domain.PartitionType(ptypeStr)
		p.Count = int(count)
		points = append(points, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate partition window rows: %w", err)
	}
	return points, nil
}
