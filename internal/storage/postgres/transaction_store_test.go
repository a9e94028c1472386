package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findataops/internal/domain"
	"findataops/internal/storage"
)

func testTxn(id, account string, posted time.Time, amount float64) *domain.Transaction {
	return &domain.Transaction{
		TxnID:         id,
		AccountID:     account,
		PostedAt:      posted,
		Amount:        amount,
		Currency:      "USD",
		Merchant:      "Corner Store",
		Category:      "Food & Dining",
		IngestBatchID: "batch-1",
	}
}

func TestTransactionStore_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransactionStore(pool)
	ctx := context.Background()
	posted := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	t.Run("insert and get all ordered", func(t *testing.T) {
		err := store.InsertBulk(ctx, []*domain.Transaction{
			testTxn("t2", "a1", posted, -20),
			testTxn("t1", "a1", posted, -10), // same instant, id breaks the tie
			testTxn("t3", "a2", posted.Add(time.Hour), -30),
		})
		require.NoError(t, err)

		all, err := store.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "t1", all[0].TxnID)
		assert.Equal(t, "t2", all[1].TxnID)
		assert.Equal(t, "t3", all[2].TxnID)
		assert.Equal(t, -10.0, all[0].Amount)
		assert.True(t, all[0].PostedAt.Equal(posted))
	})

	t.Run("duplicate insert rejected", func(t *testing.T) {
		err := store.Insert(ctx, testTxn("t1", "a1", posted, -99))
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	})

	t.Run("bulk rolls back on duplicate", func(t *testing.T) {
		err := store.InsertBulk(ctx, []*domain.Transaction{
			testTxn("t4", "a1", posted, -40),
			testTxn("t1", "a1", posted, -10), // duplicate
		})
		require.ErrorIs(t, err, storage.ErrDuplicateKey)

		all, err := store.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3, "partial insert must not survive")
	})

	t.Run("get by account", func(t *testing.T) {
		result, err := store.GetByAccountID(ctx, "a1")
		require.NoError(t, err)
		assert.Len(t, result, 2)
	})

	t.Run("time range is inclusive", func(t *testing.T) {
		result, err := store.GetByTimeRange(ctx, posted, posted.Add(time.Hour))
		require.NoError(t, err)
		assert.Len(t, result, 3)

		result, err = store.GetByTimeRange(ctx, posted.Add(time.Minute), posted.Add(time.Hour))
		require.NoError(t, err)
		assert.Len(t, result, 1)
	})
}
