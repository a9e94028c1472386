package rollstats

import "findataops/internal/domain"

// Tracker maintains an independent rolling Window per partition value for a
// single partition type. Category and merchant tracking use two separate
// Trackers so the partitions cannot interfere.
type Tracker struct {
	partition domain.PartitionType
	windows   map[string]*Window
}

// NewTracker creates a Tracker for one partition type.
func NewTracker(partition domain.PartitionType) *Tracker {
	return &Tracker{
		partition: partition,
		windows:   make(map[string]*Window),
	}
}

// Observe returns the window snapshot for value as it stood before txn, then
// pushes |txn.Amount| into the window. Transactions must arrive in
// non-decreasing PostedAt order per partition value; SortTransactions and
// ValidateOrdering enforce that upstream.
//
// The returned snapshot therefore covers up to the 30 prior transactions
// sharing the partition value, excluding the current one.
func (t *Tracker) Observe(txn *domain.Transaction) domain.WindowSnapshot {
	value := t.partitionValue(txn)
	w, ok := t.windows[value]
	if !ok {
		w = &Window{}
		t.windows[value] = w
	}
	snap := w.Snapshot()
	w.Push(txn.AbsAmount())
	return snap
}

// Point materializes the post-observation window state for txn as a
// storable WindowPoint.
func (t *Tracker) Point(txn *domain.Transaction) *domain.WindowPoint {
	value := t.partitionValue(txn)
	w, ok := t.windows[value]
	if !ok {
		return nil
	}
	snap := w.Snapshot()
	return &domain.WindowPoint{
		PartitionType:  t.partition,
		PartitionValue: value,
		TxnID:          txn.TxnID,
		PostedAtMs:     txn.PostedAt.UnixMilli(),
		Count:          snap.Count,
		Mean:           snap.Mean,
		Stddev:         snap.Stddev,
	}
}

func (t *Tracker) partitionValue(txn *domain.Transaction) string {
	if t.partition == domain.PartitionMerchant {
		return txn.Merchant
	}
	return txn.Category
}
