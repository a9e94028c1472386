package rollstats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"findataops/internal/domain"
)

// ErrNonMonotonicInput is returned when a partition's transactions are not in
// non-decreasing time order. Rolling statistics and interval computations are
// order-dependent, so this is an upstream data-quality bug and aborts the run.
var ErrNonMonotonicInput = errors.New("transactions are not in non-decreasing time order")

// SortTransactions orders transactions by (posted_at ASC, txn_id ASC).
// Equal timestamps are broken by txn_id so recomputation is deterministic.
func SortTransactions(txns []*domain.Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].PostedAt.Equal(txns[j].PostedAt) {
			return txns[i].PostedAt.Before(txns[j].PostedAt)
		}
		return txns[i].TxnID < txns[j].TxnID
	})
}

// ValidateOrdering verifies that transactions are in non-decreasing
// posted_at order per account partition, and that every row satisfies the
// feed preconditions (non-empty txn_id/account_id, a real timestamp, a
// finite amount). Violations identify the offending partition key.
func ValidateOrdering(txns []*domain.Transaction) error {
	lastByAccount := make(map[string]*domain.Transaction)
	for _, txn := range txns {
		if txn.TxnID == "" || txn.AccountID == "" || txn.PostedAt.IsZero() {
			return fmt.Errorf("%w: transaction %q account %q has missing identity fields",
				ErrNonMonotonicInput, txn.TxnID, txn.AccountID)
		}
		if math.IsNaN(txn.Amount) || math.IsInf(txn.Amount, 0) {
			return fmt.Errorf("%w: transaction %q account %q has non-finite amount",
				ErrNonMonotonicInput, txn.TxnID, txn.AccountID)
		}
		if prev, ok := lastByAccount[txn.AccountID]; ok && txn.PostedAt.Before(prev.PostedAt) {
			return fmt.Errorf("%w: account %q transaction %q posted before %q",
				ErrNonMonotonicInput, txn.AccountID, txn.TxnID, prev.TxnID)
		}
		lastByAccount[txn.AccountID] = txn
	}
	return nil
}
