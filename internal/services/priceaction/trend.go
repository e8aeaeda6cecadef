package priceaction

import (
	"math"

	"SignalDesk/internal/domain/models"
)

const (
	trendWindow     = 8
	trendShare      = 0.65
	phaseWindow     = 20
	phaseRecentBars = 10
	compressionMult = 0.75
	flatRangePct    = 2.0
)

// classifyTrend weighs the last trendWindow labels by recency (oldest 1,
// newest trendWindow). A side holding more than trendShare of the weight
// sets the trend.
func classifyTrend(structure []models.MarketStructurePoint) (models.Trend, float64) {
	from := max(0, len(structure)-trendWindow)
	pts := structure[from:]
	if len(pts) == 0 {
		return models.TrendRanging, 0
	}
	var bull, bear, total float64
	for i, p := range pts {
		w := float64(i + 1)
		total += w
		if p.Label.Bullish() {
			bull += w
		} else {
			bear += w
		}
	}
	strength := math.Abs(bull-bear) / total * 100
	switch {
	case bull/total > trendShare:
		return models.TrendBullish, strength
	case bear/total > trendShare:
		return models.TrendBearish, strength
	default:
		return models.TrendRanging, strength
	}
}

// classifyPhase places the market in a Wyckoff-style phase:
//
//	compressed, bearish trend or bullish impulse   accumulation
//	compressed, bullish trend or bearish impulse   distribution
//	compressed otherwise                           by close position in range
//	expanding with a bullish impulse or trend      markup
//	expanding with a bearish impulse or trend      markdown
//
// The range is compressed when the last phaseWindow bars span less than
// compressionMult of the window before them.
func classifyPhase(candles []models.Candle, trend models.Trend, displacements []models.Displacement) models.Phase {
	n := len(candles)
	if n < phaseWindow {
		return models.PhaseUnknown
	}
	current := candles[n-phaseWindow:]
	width, lo, hi := rangePct(current)
	compressed := width < flatRangePct
	if n >= 2*phaseWindow {
		prior, _, _ := rangePct(candles[n-2*phaseWindow : n-phaseWindow])
		compressed = prior > 0 && width < compressionMult*prior
	}

	var impulse models.Direction
	if k := len(displacements); k > 0 && displacements[k-1].EndIndex >= n-phaseRecentBars {
		impulse = displacements[k-1].Direction
	}

	switch {
	case compressed && (trend == models.TrendBearish || impulse == models.DirectionBullish):
		return models.PhaseAccumulation
	case compressed && (trend == models.TrendBullish || impulse == models.DirectionBearish):
		return models.PhaseDistribution
	case compressed:
		if hi > lo && (candles[n-1].Close-lo)/(hi-lo) < 0.5 {
			return models.PhaseAccumulation
		}
		return models.PhaseDistribution
	case impulse == models.DirectionBullish:
		return models.PhaseMarkup
	case impulse == models.DirectionBearish:
		return models.PhaseMarkdown
	case trend == models.TrendBullish:
		return models.PhaseMarkup
	case trend == models.TrendBearish:
		return models.PhaseMarkdown
	default:
		return models.PhaseUnknown
	}
}

// rangePct returns the high-low span of candles as a percent of the last
// close, with the extremes.
func rangePct(candles []models.Candle) (pct, lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, c := range candles {
		lo = math.Min(lo, c.Low)
		hi = math.Max(hi, c.High)
	}
	ref := candles[len(candles)-1].Close
	if ref <= 0 {
		return 0, lo, hi
	}
	return (hi - lo) / ref * 100, lo, hi
}
