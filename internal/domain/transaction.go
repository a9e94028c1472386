package domain

import "time"

// Transaction represents one normalized transaction from the ingestion feed.
// Corresponds to the transactions table in PostgreSQL. The analytics engine
// never mutates transactions; they arrive deduplicated, currency-normalized
// and merchant/category-normalized.
type Transaction struct {
	TxnID         string    // PRIMARY KEY, stable feed identifier
	AccountID     string    // owning account
	PostedAt      time.Time // posting time, UTC
	Amount        float64   // signed, base currency: expenses < 0, income > 0
	Currency      string    // ISO 4217 code
	Merchant      string    // normalized merchant name, empty if unknown
	Category      string    // normalized category name, empty if unenriched
	IngestBatchID string    // feed batch that delivered this row
}

// IsExpense reports whether the transaction is an outflow.
// Detectors must use this instead of re-testing the sign convention.
func (t *Transaction) IsExpense() bool {
	return t.Amount < 0
}

// AbsAmount returns the unsigned magnitude of the amount.
func (t *Transaction) AbsAmount() float64 {
	if t.Amount < 0 {
		return -t.Amount
	}
	return t.Amount
}

// Month returns the calendar month of PostedAt in YYYY-MM form.
func (t *Transaction) Month() string {
	return t.PostedAt.UTC().Format("2006-01")
}
