package domain

// PartitionType identifies the grouping dimension of a rolling window.
type PartitionType string

const (
	PartitionCategory PartitionType = "category"
	PartitionMerchant PartitionType = "merchant"
)

// WindowSnapshot is the rolling-window state for one partition value as of
// one transaction, computed over up to the 30 prior transactions sharing the
// partition value. The current transaction is excluded.
type WindowSnapshot struct {
	Count  int     // prior transactions inside the window
	Mean   float64 // trailing mean of |amount|, 0 if Count == 0
	Stddev float64 // sample stddev of |amount|, 0 if Count < 2
}

// WindowPoint is a materialized WindowSnapshot keyed by the transaction it
// was computed for. Corresponds to the partition_windows table in ClickHouse.
type WindowPoint struct {
	PartitionType  PartitionType
	PartitionValue string
	TxnID          string
	PostedAtMs     int64 // PostedAt as Unix milliseconds for ordering
	Count          int
	Mean           float64
	Stddev         float64
}
