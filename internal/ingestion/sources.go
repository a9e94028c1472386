// Package ingestion consumes the normalized transaction feed and writes
// batches into the transaction store.
package ingestion

import (
	"context"

	"findataops/internal/domain"
)

// TransactionSource provides normalized transactions from an external feed.
type TransactionSource interface {
	// Subscribe returns a channel of transactions. The channel stays open
	// until Close is called or the context is cancelled; the source handles
	// reconnection internally.
	Subscribe(ctx context.Context) (<-chan *domain.Transaction, error)

	// Close terminates the source and closes the subscription channel.
	Close() error
}
