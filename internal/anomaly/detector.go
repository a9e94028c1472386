package anomaly

import (
	"math"
	"time"

	"findataops/internal/domain"
)

// Detect scores one expense transaction against its category and merchant
// window snapshots and returns the materialized anomaly record, or nil when
// the transaction is out of scope or below the publication threshold.
//
// It is a pure function of (txn, catWindow, merchWindow, flaggedAt): no state
// is carried between calls, so re-scoring the same inputs is byte-identical.
// Missing or zero statistics degrade to zero contribution rather than
// erroring (z = 0 on zero stddev, ratio = 1 on zero mean).
func Detect(txn *domain.Transaction, catWindow, merchWindow domain.WindowSnapshot, flaggedAt time.Time) *domain.AnomalyRecord {
	// Only expenses are scored, and only when upstream enrichment assigned
	// both dimensions.
	if !txn.IsExpense() || txn.Category == "" || txn.Merchant == "" {
		return nil
	}

	amount := txn.AbsAmount()
	categoryZ := zScore(amount, catWindow)
	merchantZ := zScore(amount, merchWindow)
	categoryRatio := ratio(amount, catWindow)
	merchantRatio := ratio(amount, merchWindow)

	// Window counts include the current transaction: a prior count of 0
	// means this is the merchant's first appearance in the window.
	merchantWindowCount := merchWindow.Count + 1

	flags := domain.AnomalyFlags{
		StatisticalOutlier: math.Abs(categoryZ) > OutlierZThreshold || math.Abs(merchantZ) > OutlierZThreshold,
		AmountSpike:        categoryRatio > SpikeRatioThreshold || merchantRatio > SpikeRatioThreshold,
		NovelMerchant:      merchantWindowCount == 1,
		UnusualTiming:      isUnusualTiming(txn),
		HighFrequency:      merchantWindowCount > HighFrequencyCount,
		CategoryMismatch:   isCategoryMismatch(txn),
	}

	score := Score(flags, categoryZ, merchantZ)
	if score < PublicationThreshold {
		return nil
	}

	anomalyType, driver, remediation := ClassifyFlags(flags)

	return &domain.AnomalyRecord{
		TxnID:           txn.TxnID,
		AccountID:       txn.AccountID,
		Merchant:        txn.Merchant,
		Category:        txn.Category,
		Amount:          txn.Amount,
		Score:           score,
		Severity:        BandSeverity(score),
		AnomalyType:     anomalyType,
		Driver:          driver,
		RemediationHint: remediation,
		CategoryZ:       categoryZ,
		MerchantZ:       merchantZ,
		FlaggedAtMs:     flaggedAt.UnixMilli(),
	}
}

// Score combines the flag weights with the capped z contributions.
// The result is monotonically non-decreasing in |categoryZ| and |merchantZ|
// for fixed flags, and is not normalized to 100.
func Score(flags domain.AnomalyFlags, categoryZ, merchantZ float64) float64 {
	score := 0.0
	if flags.StatisticalOutlier {
		score += WeightStatisticalOutlier
	}
	if flags.AmountSpike {
		score += WeightAmountSpike
	}
	if flags.NovelMerchant {
		score += WeightNovelMerchant
	}
	if flags.UnusualTiming {
		score += WeightUnusualTiming
	}
	if flags.HighFrequency {
		score += WeightHighFrequency
	}
	if flags.CategoryMismatch {
		score += WeightCategoryMismatch
	}
	score += math.Min(math.Abs(categoryZ)*ZContributionScale, ZContributionCap)
	score += math.Min(math.Abs(merchantZ)*ZContributionScale, ZContributionCap)
	return score
}

// zScore returns (amount - mean) / stddev, 0 when stddev is 0 (fewer than
// two prior observations, or constant history).
func zScore(amount float64, w domain.WindowSnapshot) float64 {
	if w.Stddev == 0 {
		return 0
	}
	return (amount - w.Mean) / w.Stddev
}

// ratio returns amount / trailing mean, 1 when the mean is 0.
func ratio(amount float64, w domain.WindowSnapshot) float64 {
	if w.Mean == 0 {
		return 1
	}
	return amount / w.Mean
}

// isUnusualTiming flags weekend postings in categories whose merchants bill
// on business days.
func isUnusualTiming(txn *domain.Transaction) bool {
	if !weekdayOnlyCategories[txn.Category] {
		return false
	}
	wd := txn.PostedAt.UTC().Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// isCategoryMismatch flags merchants whose name hints at a category other
// than the one assigned.
func isCategoryMismatch(txn *domain.Transaction) bool {
	hinted := expectedCategory(txn.Merchant)
	return hinted != "" && hinted != txn.Category
}
