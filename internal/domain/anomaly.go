package domain

// Severity bands an anomaly score for downstream triage.
type Severity string

const (
	SeverityHigh    Severity = "high"
	SeverityMedium  Severity = "medium"
	SeverityLow     Severity = "low"
	SeverityMinimal Severity = "minimal"
)

// AnomalyFlags are the boolean signals evaluated for every expense
// transaction. Each set flag contributes its configured weight to the
// composite score.
type AnomalyFlags struct {
	StatisticalOutlier bool // |z| > 2 on the category or merchant axis
	AmountSpike        bool // amount ratio > 3 on either axis
	NovelMerchant      bool // first occurrence inside the merchant window
	UnusualTiming      bool // day-of-week conflicts with the category profile
	HighFrequency      bool // merchant window count > 10
	CategoryMismatch   bool // merchant name conflicts with assigned category
}

// AnomalyRecord is a derived fact flagged for one transaction.
// Corresponds to the anomalies table in PostgreSQL, keyed by txn_id.
// Acknowledged is owned by the human-review workflow: the engine preserves it
// on re-runs and never feeds it back into scoring.
type AnomalyRecord struct {
	TxnID           string
	AccountID       string
	Merchant        string
	Category        string
	Amount          float64 // signed source amount
	Score           float64 // composite score, uncapped (see anomaly package)
	Severity        Severity
	AnomalyType     string // stable label from the priority rule table
	Driver          string // human-readable explanation
	RemediationHint string
	CategoryZ       float64
	MerchantZ       float64
	FlaggedAtMs     int64 // run time, Unix milliseconds
	Acknowledged    bool
}
