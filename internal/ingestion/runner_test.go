package ingestion

import (
	"context"
	"testing"
	"time"

	"findataops/internal/domain"
	"findataops/internal/ingestion/stub"
	"findataops/internal/logger"
	"findataops/internal/storage/memory"
)

func feedTxn(id string, amount float64) *domain.Transaction {
	return &domain.Transaction{
		TxnID:         id,
		AccountID:     "acc-1",
		PostedAt:      time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		Amount:        amount,
		Currency:      "USD",
		Merchant:      "Acme",
		Category:      "shopping",
		IngestBatchID: "batch-1",
	}
}

func TestRunner_StoresFeedRows(t *testing.T) {
	store := memory.NewTransactionStore()
	source := stub.NewSource([]*domain.Transaction{
		feedTxn("t1", -10),
		feedTxn("t2", -20),
		feedTxn("t3", 500),
	})

	runner := NewRunner(RunnerOptions{
		Source: source,
		Store:  store,
		Logger: logger.NewWithWriter(testWriter{t}),
	})

	err := runner.Run(context.Background())
	if err == nil {
		t.Fatal("expected end-of-feed error, got nil")
	}

	txns, err := store.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("expected 3 stored transactions, got %d", len(txns))
	}
}

func TestRunner_ToleratesRedelivery(t *testing.T) {
	store := memory.NewTransactionStore()
	if err := store.Insert(context.Background(), feedTxn("t1", -10)); err != nil {
		t.Fatalf("seed insert: %v", err)
	}

	// t1 is redelivered; t2 is new. The batch hits the duplicate, falls back
	// to row-by-row, and still stores t2.
	source := stub.NewSource([]*domain.Transaction{
		feedTxn("t1", -10),
		feedTxn("t2", -20),
	})

	runner := NewRunner(RunnerOptions{
		Source: source,
		Store:  store,
		Logger: logger.NewWithWriter(testWriter{t}),
	})
	_ = runner.Run(context.Background())

	txns, err := store.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 stored transactions, got %d", len(txns))
	}
}

func TestRunner_DropsInvalidRows(t *testing.T) {
	invalid := feedTxn("", -10) // missing txn_id
	badCurrency := feedTxn("t9", -10)
	badCurrency.Currency = "US"

	source := stub.NewSource([]*domain.Transaction{
		invalid,
		badCurrency,
		feedTxn("t1", -10),
	})

	store := memory.NewTransactionStore()
	runner := NewRunner(RunnerOptions{
		Source: source,
		Store:  store,
		Logger: logger.NewWithWriter(testWriter{t}),
	})
	_ = runner.Run(context.Background())

	txns, err := store.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected only the valid row stored, got %d", len(txns))
	}
	if txns[0].TxnID != "t1" {
		t.Fatalf("expected t1 stored, got %s", txns[0].TxnID)
	}
}

func TestRunner_FlushesOnSizeThreshold(t *testing.T) {
	var txns []*domain.Transaction
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		txns = append(txns, feedTxn(id, -5))
	}

	store := memory.NewTransactionStore()
	runner := NewRunner(RunnerOptions{
		Source:        stub.NewSource(txns),
		Store:         store,
		FlushSize:     2,
		FlushInterval: time.Hour, // only size-based flushes plus the final one
		Logger:        logger.NewWithWriter(testWriter{t}),
	})
	_ = runner.Run(context.Background())

	stored, err := store.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(stored) != 5 {
		t.Fatalf("expected all 5 rows stored, got %d", len(stored))
	}
}

// testWriter routes runner logs through the test log.
type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}
