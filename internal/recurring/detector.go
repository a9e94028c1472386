package recurring

import (
	"sort"
	"time"

	"findataops/internal/domain"
	"findataops/internal/idhash"
	"findataops/internal/rollstats"
)

const dateLayout = "2006-01-02"

// Detect groups expense transactions by (merchant, account), computes
// interval and amount dispersion per group, classifies periodicity and
// returns the publishable patterns sorted by (merchant, account).
//
// Irregular groups and groups with fewer than two occurrences are silently
// excluded. Transactions without a merchant cannot form a pattern and are
// skipped. asOf anchors the days-until-next status banding.
func Detect(txns []*domain.Transaction, asOf time.Time) []*domain.RecurringPattern {
	type groupKey struct {
		merchant  string
		accountID string
	}
	groups := make(map[groupKey][]*domain.Transaction)
	for _, txn := range txns {
		if !txn.IsExpense() || txn.Merchant == "" {
			continue
		}
		key := groupKey{merchant: txn.Merchant, accountID: txn.AccountID}
		groups[key] = append(groups[key], txn)
	}

	var patterns []*domain.RecurringPattern
	for key, group := range groups {
		p := analyzeGroup(key.merchant, key.accountID, group, asOf)
		if p == nil {
			continue
		}
		patterns = append(patterns, p)
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Merchant != patterns[j].Merchant {
			return patterns[i].Merchant < patterns[j].Merchant
		}
		return patterns[i].AccountID < patterns[j].AccountID
	})
	return patterns
}

// analyzeGroup computes one group's pattern, or nil when the group has too
// little history or classifies as irregular.
func analyzeGroup(merchant, accountID string, group []*domain.Transaction, asOf time.Time) *domain.RecurringPattern {
	if len(group) < 2 {
		return nil
	}

	rollstats.SortTransactions(group)

	intervals := make([]float64, 0, len(group)-1)
	amounts := make([]float64, 0, len(group))
	for i, txn := range group {
		amounts = append(amounts, txn.AbsAmount())
		if i == 0 {
			continue
		}
		days := group[i].PostedAt.Sub(group[i-1].PostedAt).Hours() / 24
		intervals = append(intervals, days)
	}

	avgInterval := rollstats.Mean(intervals)
	intervalCV := rollstats.CV(intervals)
	amountCV := rollstats.CV(amounts)

	count := len(group)
	rtype := Classify(count, avgInterval, intervalCV, amountCV)
	if rtype == domain.RecurringIrregular {
		return nil
	}

	last := group[len(group)-1].PostedAt
	next := last.AddDate(0, 0, canonicalPeriodDays[rtype])
	daysUntil := int(next.Sub(asOf).Hours() / 24)

	return &domain.RecurringPattern{
		PatternID:       idhash.PatternID(merchant, accountID),
		Merchant:        merchant,
		AccountID:       accountID,
		Category:        mostCommonCategory(group),
		OccurrenceCount: count,
		AvgIntervalDays: avgInterval,
		IntervalCV:      intervalCV,
		AvgAmount:       rollstats.Mean(amounts),
		AmountCV:        amountCV,
		Type:            rtype,
		ConfidenceScore: Confidence(count, intervalCV, amountCV),
		FirstSeen:       group[0].PostedAt.UTC().Format(dateLayout),
		LastSeen:        last.UTC().Format(dateLayout),
		NextExpected:    next.UTC().Format(dateLayout),
		DaysUntilNext:   daysUntil,
		Status:          bandStatus(daysUntil),
	}
}

// bandStatus derives the review status from days remaining.
func bandStatus(daysUntilNext int) domain.RecurringStatus {
	switch {
	case daysUntilNext < 0:
		return domain.StatusOverdue
	case daysUntilNext <= 7:
		return domain.StatusDueSoon
	case daysUntilNext <= 30:
		return domain.StatusUpcoming
	default:
		return domain.StatusFuture
	}
}

// mostCommonCategory picks the modal category across occurrences, breaking
// ties alphabetically for determinism.
func mostCommonCategory(group []*domain.Transaction) string {
	counts := make(map[string]int)
	for _, txn := range group {
		if txn.Category != "" {
			counts[txn.Category]++
		}
	}
	best := ""
	bestCount := 0
	for cat, n := range counts {
		if n > bestCount || (n == bestCount && (best == "" || cat < best)) {
			best = cat
			bestCount = n
		}
	}
	return best
}
