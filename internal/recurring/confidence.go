package recurring

// Confidence is a stepped function of (count, interval_cv, amount_cv),
// deliberately independent of the classification table: a pattern can
// classify as monthly yet carry low confidence near the table boundaries.
// Nil CVs fall through to the lowest band.
func Confidence(count int, intervalCV, amountCV *float64) float64 {
	if intervalCV == nil || amountCV == nil {
		return 0.20
	}
	switch {
	case count >= 6 && *intervalCV < 0.2 && *amountCV < 0.15:
		return 0.95
	case count >= 4 && *intervalCV < 0.3 && *amountCV < 0.2:
		return 0.80
	case count >= 3 && *intervalCV < 0.5:
		return 0.50
	default:
		return 0.20
	}
}
