package domain

// RecurringType classifies the periodicity of a merchant/account pattern.
type RecurringType string

const (
	RecurringWeekly       RecurringType = "weekly"
	RecurringMonthly      RecurringType = "monthly"
	RecurringQuarterly    RecurringType = "quarterly"
	RecurringYearly       RecurringType = "yearly"
	RecurringLikelyWeekly RecurringType = "likely_weekly"
	RecurringLikelyMonthly RecurringType = "likely_monthly"
	RecurringIrregular    RecurringType = "irregular"
)

// RecurringStatus is derived from days remaining until the next expected
// occurrence at computation time.
type RecurringStatus string

const (
	StatusOverdue  RecurringStatus = "overdue"
	StatusDueSoon  RecurringStatus = "due_soon"
	StatusUpcoming RecurringStatus = "upcoming"
	StatusFuture   RecurringStatus = "future"
)

// RecurringPattern is a derived fact summarizing observed occurrences of a
// (merchant, account) expense group. Recomputed wholesale whenever new
// transactions arrive for the key (replace-by-key, never appended).
// Corresponds to the recurring_patterns table in PostgreSQL.
type RecurringPattern struct {
	PatternID       string // deterministic hash of (merchant, account_id)
	Merchant        string
	AccountID       string
	Category        string // most common category across occurrences
	OccurrenceCount int
	AvgIntervalDays float64
	IntervalCV      *float64 // nil when mean interval is 0
	AvgAmount       float64  // mean of |amount|
	AmountCV        *float64 // nil when mean amount is 0
	Type            RecurringType
	ConfidenceScore float64
	FirstSeen       string // YYYY-MM-DD
	LastSeen        string // YYYY-MM-DD
	NextExpected    string // YYYY-MM-DD, empty for irregular
	DaysUntilNext   int
	Status          RecurringStatus
}
