// Package anomaly scores expense transactions against their trailing
// category and merchant windows and materializes anomaly facts.
package anomaly

import (
	"strings"

	"findataops/internal/domain"
)

// Flag weights for the composite score. These are literal business rules
// kept as a table so they stay testable and swappable.
const (
	WeightStatisticalOutlier = 25.0
	WeightAmountSpike        = 20.0
	WeightNovelMerchant      = 15.0
	WeightUnusualTiming      = 10.0
	WeightHighFrequency      = 15.0
	WeightCategoryMismatch   = 10.0

	// Each z axis adds min(|z| * ZContributionScale, ZContributionCap).
	ZContributionScale = 5.0
	ZContributionCap   = 15.0
)

// Detection thresholds.
const (
	OutlierZThreshold     = 2.0  // |z| above this on either axis
	SpikeRatioThreshold   = 3.0  // amount / trailing mean above this
	HighFrequencyCount    = 10   // merchant window count above this
	PublicationThreshold  = 20.0 // records below this score are not materialized
)

// Severity bands on the composite score. The score is intentionally left
// uncapped (flag weights plus z contributions can exceed 100); the bands
// tolerate that.
const (
	SeverityHighThreshold   = 70.0
	SeverityMediumThreshold = 40.0
	SeverityLowThreshold    = 20.0
)

// BandSeverity maps a composite score onto a severity label.
func BandSeverity(score float64) domain.Severity {
	switch {
	case score >= SeverityHighThreshold:
		return domain.SeverityHigh
	case score >= SeverityMediumThreshold:
		return domain.SeverityMedium
	case score >= SeverityLowThreshold:
		return domain.SeverityLow
	default:
		return domain.SeverityMinimal
	}
}

// typeRule selects the anomaly type, driver and remediation hint for a flag
// combination. Rules are evaluated in order; the first match wins regardless
// of score magnitude.
type typeRule struct {
	match       func(f domain.AnomalyFlags) bool
	anomalyType string
	driver      string
	remediation string
}

var typeRules = []typeRule{
	{
		match:       func(f domain.AnomalyFlags) bool { return f.StatisticalOutlier && f.AmountSpike },
		anomalyType: "extreme_outlier",
		driver:      "amount is both a statistical outlier and a multiple of the trailing mean",
		remediation: "verify the charge with the merchant and check for duplicated or miskeyed amounts",
	},
	{
		match:       func(f domain.AnomalyFlags) bool { return f.StatisticalOutlier },
		anomalyType: "statistical_outlier",
		driver:      "amount deviates more than 2 standard deviations from recent history",
		remediation: "review the transaction against typical spend for this category or merchant",
	},
	{
		match:       func(f domain.AnomalyFlags) bool { return f.AmountSpike },
		anomalyType: "amount_spike",
		driver:      "amount exceeds 3x the trailing average",
		remediation: "confirm this was an intentional large purchase",
	},
	{
		match:       func(f domain.AnomalyFlags) bool { return f.NovelMerchant },
		anomalyType: "novel_merchant",
		driver:      "first observed transaction with this merchant",
		remediation: "confirm you recognize the merchant; watch for card testing",
	},
	{
		match:       func(f domain.AnomalyFlags) bool { return f.UnusualTiming },
		anomalyType: "unusual_timing",
		driver:      "transaction day conflicts with the usual pattern for its category",
		remediation: "check whether the posting date matches the actual purchase date",
	},
	{
		match:       func(f domain.AnomalyFlags) bool { return f.HighFrequency },
		anomalyType: "high_frequency",
		driver:      "unusually many recent transactions with this merchant",
		remediation: "look for duplicate charges or a runaway subscription",
	},
	{
		match:       func(f domain.AnomalyFlags) bool { return f.CategoryMismatch },
		anomalyType: "category_mismatch",
		driver:      "merchant name suggests a different category than the one assigned",
		remediation: "re-categorize the transaction or correct the merchant mapping",
	},
	{
		match:       func(domain.AnomalyFlags) bool { return true },
		anomalyType: "multiple_factors",
		driver:      "several weak signals combined into an elevated score",
		remediation: "review the transaction details",
	},
}

// ClassifyFlags returns (type, driver, remediation) via the priority table.
func ClassifyFlags(f domain.AnomalyFlags) (string, string, string) {
	for _, r := range typeRules {
		if r.match(f) {
			return r.anomalyType, r.driver, r.remediation
		}
	}
	// Unreachable: the last rule always matches.
	return "multiple_factors", "", ""
}

// weekdayOnlyCategories lists categories whose merchants post on business
// days; a weekend posting there is flagged as unusual timing.
var weekdayOnlyCategories = map[string]bool{
	"Utilities":  true,
	"Healthcare": true,
	"Insurance":  true,
}

// merchantCategoryHints maps merchant-name substrings to the category the
// merchant is expected to carry. A hit with a different assigned category
// raises the category_mismatch flag.
var merchantCategoryHints = []struct {
	substring string
	category  string
}{
	{"starbucks", "Food & Dining"},
	{"mcdonald", "Food & Dining"},
	{"chipotle", "Food & Dining"},
	{"whole foods", "Food & Dining"},
	{"doordash", "Food & Dining"},
	{"netflix", "Entertainment"},
	{"spotify", "Entertainment"},
	{"hulu", "Entertainment"},
	{"disney+", "Entertainment"},
	{"shell", "Transportation"},
	{"chevron", "Transportation"},
	{"exxon", "Transportation"},
	{"uber", "Transportation"},
	{"lyft", "Transportation"},
	{"cvs", "Healthcare"},
	{"walgreens", "Healthcare"},
	{"comcast", "Utilities"},
	{"verizon", "Utilities"},
	{"at&t", "Utilities"},
}

// expectedCategory returns the hinted category for a merchant name, or ""
// when no hint matches.
func expectedCategory(merchant string) string {
	m := strings.ToLower(merchant)
	for _, h := range merchantCategoryHints {
		if strings.Contains(m, h.substring) {
			return h.category
		}
	}
	return ""
}
