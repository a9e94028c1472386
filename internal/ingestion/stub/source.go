// Package stub provides an in-memory transaction source for tests and
// one-shot backfills.
package stub

import (
	"context"

	"findataops/internal/domain"
)

// Source replays a fixed set of transactions. The subscription channel is
// closed once every transaction has been emitted, so consumers observe the
// same end-of-feed signal a dropped connection would produce.
type Source struct {
	txns []*domain.Transaction
	done chan struct{}
}

// NewSource creates a stub source over the given transactions.
func NewSource(txns []*domain.Transaction) *Source {
	return &Source{
		txns: txns,
		done: make(chan struct{}),
	}
}

// Subscribe emits every transaction in order, then closes the channel.
func (s *Source) Subscribe(ctx context.Context) (<-chan *domain.Transaction, error) {
	out := make(chan *domain.Transaction)
	go func() {
		defer close(out)
		for _, txn := range s.txns {
			select {
			case out <- txn:
			case <-ctx.Done():
				return
			case <-s.done:
				return
			}
		}
	}()
	return out, nil
}

// Close stops emission.
func (s *Source) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return nil
}
