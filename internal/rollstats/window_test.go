package rollstats

import (
	"fmt"
	"math"
	"testing"
	"time"

	"findataops/internal/domain"
)

func TestWindow_EmptyAndSingle(t *testing.T) {
	w := &Window{}

	if w.Count() != 0 || w.Mean() != 0 || w.Stddev() != 0 {
		t.Errorf("empty window: got count=%d mean=%f stddev=%f", w.Count(), w.Mean(), w.Stddev())
	}

	w.Push(50)
	if w.Count() != 1 {
		t.Errorf("expected count 1, got %d", w.Count())
	}
	if w.Mean() != 50 {
		t.Errorf("expected mean 50, got %f", w.Mean())
	}
	// Sample stddev is undefined below two values and reported as 0
	if w.Stddev() != 0 {
		t.Errorf("expected stddev 0 for single value, got %f", w.Stddev())
	}
}

func TestWindow_SampleStddev(t *testing.T) {
	w := &Window{}
	for _, v := range []float64{10, 20, 30} {
		w.Push(v)
	}

	if w.Mean() != 20 {
		t.Errorf("expected mean 20, got %f", w.Mean())
	}
	// Sample variance = ((10-20)^2 + 0 + (30-20)^2) / 2 = 100
	if math.Abs(w.Stddev()-10) > 1e-9 {
		t.Errorf("expected stddev 10, got %f", w.Stddev())
	}
}

func TestWindow_ConstantInputHasZeroStddev(t *testing.T) {
	// Incremental sum-of-squares must not drift negative on constant input
	w := &Window{}
	for i := 0; i < 100; i++ {
		w.Push(9.99)
	}
	if w.Stddev() != 0 {
		t.Errorf("expected stddev 0 on constant input, got %g", w.Stddev())
	}
}

func TestWindow_EvictsOldestAtCapacity(t *testing.T) {
	w := &Window{}
	// First value is 1000, then 30 values of 10: the 31st push must evict it
	w.Push(1000)
	for i := 0; i < WindowSize; i++ {
		w.Push(10)
	}

	if w.Count() != WindowSize {
		t.Errorf("expected count %d, got %d", WindowSize, w.Count())
	}
	if w.Mean() != 10 {
		t.Errorf("expected mean 10 after eviction, got %f", w.Mean())
	}
	if w.Stddev() != 0 {
		t.Errorf("expected stddev 0 after eviction, got %f", w.Stddev())
	}
}

func TestWindow_MatchesDirectComputation(t *testing.T) {
	// Incremental maintenance must agree with an O(W) rescan
	w := &Window{}
	var values []float64
	for i := 1; i <= 75; i++ {
		v := float64(i*i%97) + 0.5
		w.Push(v)
		values = append(values, v)
	}
	tail := values[len(values)-WindowSize:]

	if math.Abs(w.Mean()-Mean(tail)) > 1e-9 {
		t.Errorf("mean mismatch: incremental %f direct %f", w.Mean(), Mean(tail))
	}
	if math.Abs(w.Stddev()-Stddev(tail)) > 1e-9 {
		t.Errorf("stddev mismatch: incremental %f direct %f", w.Stddev(), Stddev(tail))
	}
}

func makeTxn(id, account, merchant, category string, amount float64, postedAt time.Time) *domain.Transaction {
	return &domain.Transaction{
		TxnID:     id,
		AccountID: account,
		PostedAt:  postedAt,
		Amount:    amount,
		Currency:  "USD",
		Merchant:  merchant,
		Category:  category,
	}
}

func TestTracker_SnapshotExcludesCurrentTransaction(t *testing.T) {
	tr := NewTracker(domain.PartitionMerchant)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first := makeTxn("t1", "acc1", "Netflix", "Entertainment", -15.99, base)
	snap := tr.Observe(first)
	if snap.Count != 0 {
		t.Errorf("first occurrence: expected prior count 0, got %d", snap.Count)
	}

	second := makeTxn("t2", "acc1", "Netflix", "Entertainment", -15.99, base.AddDate(0, 1, 0))
	snap = tr.Observe(second)
	if snap.Count != 1 {
		t.Errorf("second occurrence: expected prior count 1, got %d", snap.Count)
	}
	if snap.Mean != 15.99 {
		t.Errorf("expected prior mean 15.99, got %f", snap.Mean)
	}
}

func TestTracker_PartitionsDoNotInterfere(t *testing.T) {
	catTracker := NewTracker(domain.PartitionCategory)
	merchTracker := NewTracker(domain.PartitionMerchant)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// Two merchants in one category
	a := makeTxn("t1", "acc1", "Shell", "Transportation", -40, base)
	b := makeTxn("t2", "acc1", "Chevron", "Transportation", -60, base.AddDate(0, 0, 1))

	catTracker.Observe(a)
	merchTracker.Observe(a)
	catSnap := catTracker.Observe(b)
	merchSnap := merchTracker.Observe(b)

	if catSnap.Count != 1 {
		t.Errorf("category window should see prior Shell txn, got count %d", catSnap.Count)
	}
	if merchSnap.Count != 0 {
		t.Errorf("merchant window for Chevron should be empty, got count %d", merchSnap.Count)
	}
}

func TestTracker_ThirtyFirstTransactionDropsFirst(t *testing.T) {
	tr := NewTracker(domain.PartitionMerchant)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// First transaction has a distinctive amount
	tr.Observe(makeTxn("t0", "acc1", "Costco", "Food & Dining", -500, base))
	for i := 1; i <= WindowSize; i++ {
		txn := makeTxn(fmt.Sprintf("t%02d", i), "acc1", "Costco", "Food & Dining", -100, base.AddDate(0, 0, i))
		snap := tr.Observe(txn)
		if i == WindowSize {
			// Window for the 31st transaction holds t0..t29; the next push evicts t0
			if snap.Count != WindowSize {
				t.Fatalf("expected full window, got %d", snap.Count)
			}
		}
	}

	// One more observation: its prior window must no longer include t0's 500
	snap := tr.Observe(makeTxn("t99", "acc1", "Costco", "Food & Dining", -100, base.AddDate(0, 2, 0)))
	if snap.Mean != 100 {
		t.Errorf("expected mean 100 once t0 evicted, got %f", snap.Mean)
	}
}
