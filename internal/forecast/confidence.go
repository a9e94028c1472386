package forecast

import (
	"math"

	"findataops/internal/domain"
)

// confidenceBand steps confidence on trend magnitude and trend volatility.
// Band edges are inclusive so a trend of exactly 0.10 still lands in the top
// band.
func confidenceBand(trend, volatility float64) float64 {
	abs := math.Abs(trend)
	switch {
	case abs <= 0.10 && volatility <= 0.05:
		return 0.85
	case abs <= 0.20 && volatility <= 0.10:
		return 0.70
	case abs <= 0.30 && volatility <= 0.20:
		return 0.55
	default:
		return 0.40
	}
}

// horizonDecay scales confidence down for further horizons.
//
// Note the decayed confidence feeds the band formula amount*(1 +- confidence),
// so longer horizons get numerically narrower bands while being labeled lower
// quality.
// TODO: confirm with stakeholders whether the decay should instead widen the
// bounds as the horizon grows; keeping the historical behavior for now.
func horizonDecay(horizon int) float64 {
	switch horizon {
	case 1:
		return 1.0
	case 2:
		return 0.9
	default:
		return 0.8
	}
}

// QualityLabel bands a confidence level into a forecast quality label.
func QualityLabel(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return domain.QualityHigh
	case confidence >= 0.6:
		return domain.QualityMedium
	case confidence >= 0.4:
		return domain.QualityLow
	default:
		return domain.QualityVeryLow
	}
}

// RiskLabel bands trend volatility into a risk label.
func RiskLabel(volatility float64) string {
	switch {
	case volatility < 0.1:
		return domain.RiskLow
	case volatility < 0.2:
		return domain.RiskMedium
	case volatility < 0.3:
		return domain.RiskHigh
	default:
		return domain.RiskVeryHigh
	}
}
