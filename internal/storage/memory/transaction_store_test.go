package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

func txn(id, account string, posted time.Time, amount float64) *domain.Transaction {
	return &domain.Transaction{
		TxnID:     id,
		AccountID: account,
		PostedAt:  posted,
		Amount:    amount,
		Currency:  "USD",
		Merchant:  "Test Merchant",
		Category:  "Other",
	}
}

func TestTransactionStore_InsertAndGet(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()
	posted := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	if err := store.Insert(ctx, txn("t1", "a1", posted, -42.50)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 1 || all[0].Amount != -42.50 {
		t.Errorf("unexpected result: %+v", all)
	}
}

func TestTransactionStore_DuplicateKey(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()
	posted := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	if err := store.Insert(ctx, txn("t1", "a1", posted, -1)); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	err := store.Insert(ctx, txn("t1", "a1", posted, -2))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestTransactionStore_InsertBulkPartialDuplicate(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()
	posted := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	if err := store.Insert(ctx, txn("t1", "a1", posted, -1)); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.InsertBulk(ctx, []*domain.Transaction{
		txn("t2", "a1", posted, -2),
		txn("t1", "a1", posted, -3), // duplicate
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Verify all-or-nothing
	all, _ := store.GetAll(ctx)
	if len(all) != 1 {
		t.Errorf("Expected 1 transaction (no partial insert), got %d", len(all))
	}
}

func TestTransactionStore_GetAllOrdering(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()
	posted := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	err := store.InsertBulk(ctx, []*domain.Transaction{
		txn("t3", "a1", posted.Add(time.Hour), -1),
		txn("t2", "a1", posted, -1), // same instant as t1, ties break on id
		txn("t1", "a1", posted, -1),
	})
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	all, _ := store.GetAll(ctx)
	want := []string{"t1", "t2", "t3"}
	for i, w := range want {
		if all[i].TxnID != w {
			t.Errorf("position %d: expected %s, got %s", i, w, all[i].TxnID)
		}
	}
}

func TestTransactionStore_GetByAccountID(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()
	posted := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	err := store.InsertBulk(ctx, []*domain.Transaction{
		txn("t1", "a1", posted, -1),
		txn("t2", "a2", posted, -2),
		txn("t3", "a1", posted.Add(time.Hour), -3),
	})
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByAccountID(ctx, "a1")
	if err != nil {
		t.Fatalf("GetByAccountID failed: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("Expected 2 transactions for a1, got %d", len(result))
	}
}

func TestTransactionStore_GetByTimeRange(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	err := store.InsertBulk(ctx, []*domain.Transaction{
		txn("t1", "a1", base, -1),
		txn("t2", "a1", base.AddDate(0, 0, 5), -2),
		txn("t3", "a1", base.AddDate(0, 0, 10), -3),
	})
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	// Inclusive bounds
	result, _ := store.GetByTimeRange(ctx, base, base.AddDate(0, 0, 5))
	if len(result) != 2 {
		t.Errorf("Expected 2 transactions in range, got %d", len(result))
	}
}

func TestTransactionStore_InvalidInput(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, &domain.Transaction{TxnID: ""}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty ID, got %v", err)
	}
}
