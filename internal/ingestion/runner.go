package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"findataops/internal/domain"
	"findataops/internal/observability"
	"findataops/internal/storage"
)

// Runner consumes a transaction source, buffers rows, and flushes them into
// the transaction store in batches.
type Runner struct {
	source        TransactionSource
	store         storage.TransactionStore
	flushSize     int
	flushInterval time.Duration
	log           zerolog.Logger
	metrics       *observability.Metrics

	buffer []*domain.Transaction
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Source TransactionSource
	Store  storage.TransactionStore

	// FlushSize triggers a flush once this many rows are buffered. Default 100.
	FlushSize int
	// FlushInterval forces a flush of a partial buffer. Default 5s.
	FlushInterval time.Duration

	Logger  zerolog.Logger
	Metrics *observability.Metrics // optional
}

// NewRunner creates a new ingestion runner.
func NewRunner(opts RunnerOptions) *Runner {
	flushSize := opts.FlushSize
	if flushSize == 0 {
		flushSize = 100
	}

	flushInterval := opts.FlushInterval
	if flushInterval == 0 {
		flushInterval = 5 * time.Second
	}

	return &Runner{
		source:        opts.Source,
		store:         opts.Store,
		flushSize:     flushSize,
		flushInterval: flushInterval,
		log:           opts.Logger,
		metrics:       opts.Metrics,
	}
}

// Run consumes the source until the context is cancelled. The remaining
// buffer is flushed on shutdown.
func (r *Runner) Run(ctx context.Context) error {
	txns, err := r.source.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to transaction feed: %w", err)
	}
	r.log.Info().Int("flush_size", r.flushSize).Dur("flush_interval", r.flushInterval).Msg("ingestion runner started")

	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.flush(context.Background())
			r.log.Info().Msg("ingestion runner stopping")
			return ctx.Err()

		case txn, ok := <-txns:
			if !ok {
				r.flush(ctx)
				return errors.New("transaction feed channel closed")
			}
			r.ingest(ctx, txn)

		case <-ticker.C:
			r.flush(ctx)
		}
	}
}

func (r *Runner) ingest(ctx context.Context, txn *domain.Transaction) {
	if err := ValidateTransaction(txn); err != nil {
		r.log.Warn().Err(err).Msg("dropping invalid feed row")
		if r.metrics != nil {
			r.metrics.IngestErrors.WithLabelValues("validation").Inc()
		}
		return
	}

	r.buffer = append(r.buffer, txn)
	if r.metrics != nil {
		r.metrics.IngestBufferSize.Set(float64(len(r.buffer)))
	}

	if len(r.buffer) >= r.flushSize {
		r.flush(ctx)
	}
}

// flush writes the buffer to the store. Bulk insert is all-or-nothing, so a
// duplicate anywhere in the batch falls back to row-by-row inserts that skip
// the redelivered rows.
func (r *Runner) flush(ctx context.Context) {
	if len(r.buffer) == 0 {
		return
	}
	batch := r.buffer
	r.buffer = nil

	stored := len(batch)
	err := r.store.InsertBulk(ctx, batch)
	if errors.Is(err, storage.ErrDuplicateKey) {
		stored = r.insertIndividually(ctx, batch)
	} else if err != nil {
		r.log.Error().Err(err).Int("rows", len(batch)).Msg("batch insert failed, rows dropped")
		if r.metrics != nil {
			r.metrics.IngestErrors.WithLabelValues("storage").Inc()
		}
		return
	}

	if r.metrics != nil {
		r.metrics.TransactionsIngested.Add(float64(stored))
		r.metrics.IngestBatchSize.Observe(float64(len(batch)))
		r.metrics.IngestBufferSize.Set(0)
		r.metrics.LastSuccessfulIngestion.SetToCurrentTime()
	}
	r.log.Debug().Int("rows", len(batch)).Int("stored", stored).Msg("batch flushed")
}

// insertIndividually stores rows one by one, tolerating duplicates.
// Returns the number of rows actually stored.
func (r *Runner) insertIndividually(ctx context.Context, batch []*domain.Transaction) int {
	stored := 0
	for _, txn := range batch {
		err := r.store.Insert(ctx, txn)
		switch {
		case err == nil:
			stored++
		case errors.Is(err, storage.ErrDuplicateKey):
			// Redelivery is expected, not an error.
		default:
			r.log.Error().Err(err).Str("txn_id", txn.TxnID).Msg("insert failed, row dropped")
			if r.metrics != nil {
				r.metrics.IngestErrors.WithLabelValues("storage").Inc()
			}
		}
	}
	return stored
}
