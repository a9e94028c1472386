package ingestion

import (
	"fmt"
	"math"

	"findataops/internal/domain"
)

// ValidateTransaction checks the data-quality preconditions a feed row must
// satisfy before it may be stored. Rows that fail are dropped and counted,
// never silently repaired.
func ValidateTransaction(txn *domain.Transaction) error {
	if txn == nil {
		return fmt.Errorf("nil transaction")
	}
	if txn.TxnID == "" {
		return fmt.Errorf("missing txn_id")
	}
	if txn.AccountID == "" {
		return fmt.Errorf("missing account_id for txn %s", txn.TxnID)
	}
	if txn.PostedAt.IsZero() {
		return fmt.Errorf("missing posted_at for txn %s", txn.TxnID)
	}
	if math.IsNaN(txn.Amount) || math.IsInf(txn.Amount, 0) {
		return fmt.Errorf("non-finite amount for txn %s", txn.TxnID)
	}
	if len(txn.Currency) != 3 {
		return fmt.Errorf("invalid currency %q for txn %s", txn.Currency, txn.TxnID)
	}
	return nil
}
