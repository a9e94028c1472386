package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"findataops/internal/domain"
	"findataops/internal/observability"
)

// FeedConfig configures websocket feed behavior.
type FeedConfig struct {
	// Endpoint is the websocket URL of the transaction feed.
	Endpoint string
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the exponential backoff between attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultFeedConfig returns default feed configuration.
func DefaultFeedConfig(endpoint string) FeedConfig {
	return FeedConfig{
		Endpoint:          endpoint,
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// Feed is a TransactionSource backed by a websocket connection. The feed
// delivers JSON batch frames; each frame carries an ingest batch ID and a
// list of normalized transactions. Frames without a batch ID get one
// assigned so every stored row is traceable to a delivery.
type Feed struct {
	config  FeedConfig
	log     zerolog.Logger
	metrics *observability.Metrics

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	out  chan *domain.Transaction
	done chan struct{}
	wg   sync.WaitGroup
}

var _ TransactionSource = (*Feed)(nil)

// NewFeed creates a feed client. No connection is made until Subscribe.
func NewFeed(config FeedConfig, logger zerolog.Logger, metrics *observability.Metrics) *Feed {
	return &Feed{
		config:  config,
		log:     logger,
		metrics: metrics,
		out:     make(chan *domain.Transaction, 10000),
		done:    make(chan struct{}),
	}
}

// Subscribe connects to the feed endpoint and starts delivering transactions.
func (f *Feed) Subscribe(ctx context.Context) (<-chan *domain.Transaction, error) {
	if f.closed.Load() {
		return nil, fmt.Errorf("feed closed")
	}

	if err := f.connect(ctx); err != nil {
		return nil, err
	}

	f.wg.Add(1)
	go f.readLoop()

	f.wg.Add(1)
	go f.pingLoop()

	return f.out, nil
}

// Close terminates the feed and closes the subscription channel.
func (f *Feed) Close() error {
	if f.closed.Swap(true) {
		return nil
	}

	close(f.done)

	f.connMu.Lock()
	if f.conn != nil {
		f.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		f.conn.Close()
	}
	f.connMu.Unlock()

	f.wg.Wait()
	close(f.out)
	return nil
}

func (f *Feed) connect(ctx context.Context) error {
	f.connMu.Lock()
	defer f.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, f.config.Endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial %s: %w", f.config.Endpoint, err)
	}

	f.conn = conn
	return nil
}

// readLoop reads batch frames and emits transactions. Connection errors
// trigger reconnection with exponential backoff.
func (f *Feed) readLoop() {
	defer f.wg.Done()

	reconnectDelay := f.config.ReconnectDelay

	for !f.closed.Load() {
		f.connMu.Lock()
		conn := f.conn
		f.connMu.Unlock()

		if conn == nil {
			if !f.reconnect(reconnectDelay) {
				return
			}
			reconnectDelay = nextDelay(reconnectDelay, f.config.MaxReconnectDelay)
			continue
		}

		conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if f.closed.Load() {
				return
			}
			f.log.Warn().Err(err).Msg("feed read failed, reconnecting")

			f.connMu.Lock()
			if f.conn != nil {
				f.conn.Close()
				f.conn = nil
			}
			f.connMu.Unlock()
			continue
		}

		// Reset backoff after a successful read.
		reconnectDelay = f.config.ReconnectDelay

		txns, err := decodeBatch(message)
		if err != nil {
			f.log.Warn().Err(err).Msg("dropping undecodable feed frame")
			if f.metrics != nil {
				f.metrics.IngestErrors.WithLabelValues("decode").Inc()
			}
			continue
		}

		for _, txn := range txns {
			// Blocking send, the buffer absorbs bursts but nothing is dropped.
			select {
			case f.out <- txn:
			case <-f.done:
				return
			}
		}
	}
}

// reconnect waits for the backoff delay and dials again. Returns false when
// the feed is shutting down.
func (f *Feed) reconnect(delay time.Duration) bool {
	select {
	case <-f.done:
		return false
	case <-time.After(delay):
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := f.connect(ctx); err != nil {
		f.log.Warn().Err(err).Dur("retry_in", delay).Msg("feed reconnect failed")
		return true
	}

	if f.metrics != nil {
		f.metrics.FeedReconnects.Inc()
	}
	f.log.Info().Str("endpoint", f.config.Endpoint).Msg("feed reconnected")
	return true
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (f *Feed) pingLoop() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			f.connMu.Lock()
			if f.conn != nil {
				f.conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
				if err := f.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Reader notices the dead connection and reconnects.
				}
			}
			f.connMu.Unlock()
		}
	}
}

func nextDelay(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}

// Wire format of one feed frame.

type feedBatch struct {
	IngestBatchID string            `json:"ingest_batch_id"`
	Transactions  []feedTransaction `json:"transactions"`
}

type feedTransaction struct {
	TxnID     string    `json:"txn_id"`
	AccountID string    `json:"account_id"`
	PostedAt  time.Time `json:"posted_at"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Merchant  string    `json:"merchant"`
	Category  string    `json:"category"`
}

// decodeBatch parses a feed frame into domain transactions, assigning a
// fresh batch ID when the frame carries none.
func decodeBatch(message []byte) ([]*domain.Transaction, error) {
	var batch feedBatch
	if err := json.Unmarshal(message, &batch); err != nil {
		return nil, fmt.Errorf("decode feed frame: %w", err)
	}

	batchID := batch.IngestBatchID
	if batchID == "" {
		batchID = uuid.NewString()
	}

	txns := make([]*domain.Transaction, 0, len(batch.Transactions))
	for _, ft := range batch.Transactions {
		txns = append(txns, &domain.Transaction{
			TxnID:         ft.TxnID,
			AccountID:     ft.AccountID,
			PostedAt:      ft.PostedAt.UTC(),
			Amount:        ft.Amount,
			Currency:      ft.Currency,
			Merchant:      ft.Merchant,
			Category:      ft.Category,
			IngestBatchID: batchID,
		})
	}
	return txns, nil
}
