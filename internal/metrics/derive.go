// Package metrics derives the ratio metrics of the canonical model. All
// formulas guard their denominator: a zero denominator yields 0, never
// NaN or a panic. Ratios must always be derived from summed counts, not
// averaged across already-computed per-row ratios.
package metrics

import "github.com/shopspring/decimal"

// CTR is clicks over impressions, as a percentage.
func CTR(clicks, impressions int64) float64 {
	if impressions == 0 {
		return 0
	}
	return float64(clicks) / float64(impressions) * 100
}

// VTR is completed views (Q100) over video starts, as a percentage.
func VTR(completions, starts int64) float64 {
	if starts == 0 {
		return 0
	}
	return float64(completions) / float64(starts) * 100
}

// CPV is spend per completed view.
func CPV(spend decimal.Decimal, completions int64) float64 {
	if completions == 0 {
		return 0
	}
	return spend.InexactFloat64() / float64(completions)
}

// CPM is spend per thousand impressions.
func CPM(spend decimal.Decimal, impressions int64) float64 {
	if impressions == 0 {
		return 0
	}
	return spend.InexactFloat64() / float64(impressions) * 1000
}

// Pacing is spend over contracted budget, as a percentage.
func Pacing(spend, contracted decimal.Decimal) float64 {
	if contracted.IsZero() {
		return 0
	}
	ratio, _ := spend.Div(contracted).Float64()
	return ratio * 100
}
