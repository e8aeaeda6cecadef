package priceaction

import (
	"cmp"
	"slices"

	"SignalDesk/internal/domain/models"
)

const (
	biasWindow     = 6
	bodyAvgWindow  = 10
	strongBodyMult = 2.0
	mediumBodyMult = 1.3
)

// prevailingBias is the majority of bullish (HH, HL) against bearish
// (LH, LL) labels over the last biasWindow structure points.
func prevailingBias(structure []models.MarketStructurePoint) models.Trend {
	from := max(0, len(structure)-biasWindow)
	bull, bear := 0, 0
	for _, p := range structure[from:] {
		if p.Label.Bullish() {
			bull++
		} else {
			bear++
		}
	}
	switch {
	case bull > bear:
		return models.TrendBullish
	case bear > bull:
		return models.TrendBearish
	default:
		return models.TrendRanging
	}
}

// detectBreaks finds, for every swing, the first close beyond it within
// lookahead bars. A break against the prevailing bias is a CHoCH, anything
// else a BOS. At most one break survives per candle.
func detectBreaks(candles []models.Candle, highs, lows []models.SwingPoint, structure []models.MarketStructurePoint, lookahead int) []models.StructureBreak {
	bias := prevailingBias(structure)
	last := len(candles) - 1
	candidates := make([]models.StructureBreak, 0)

	for _, sh := range highs {
		end := min(sh.Index+lookahead, last)
		for j := sh.Index + 1; j <= end; j++ {
			if candles[j].Close > sh.Price {
				typ := models.BreakBOS
				if bias == models.TrendBearish {
					typ = models.BreakCHoCH
				}
				candidates = append(candidates, newBreak(candles, j, sh, typ, models.DirectionBullish))
				break
			}
		}
	}
	for _, sl := range lows {
		end := min(sl.Index+lookahead, last)
		for j := sl.Index + 1; j <= end; j++ {
			if candles[j].Close < sl.Price {
				typ := models.BreakBOS
				if bias == models.TrendBullish {
					typ = models.BreakCHoCH
				}
				candidates = append(candidates, newBreak(candles, j, sl, typ, models.DirectionBearish))
				break
			}
		}
	}
	return dedupBreaks(candidates)
}

func newBreak(candles []models.Candle, j int, swing models.SwingPoint, typ models.BreakType, dir models.Direction) models.StructureBreak {
	return models.StructureBreak{
		Index:       j,
		Time:        candles[j].Time,
		Type:        typ,
		Direction:   dir,
		BrokenLevel: swing.Price,
		SwingIndex:  swing.Index,
		Strength:    breakStrength(candles, j),
	}
}

// breakStrength compares the breaking candle's body with the mean body of
// the bodyAvgWindow bars before it.
func breakStrength(candles []models.Candle, j int) models.Strength {
	body := candles[j].Body()
	from := max(0, j-bodyAvgWindow)
	if from == j {
		return models.StrengthWeak
	}
	var sum float64
	for k := from; k < j; k++ {
		sum += candles[k].Body()
	}
	avg := sum / float64(j-from)
	if avg == 0 {
		if body > 0 {
			return models.StrengthStrong
		}
		return models.StrengthWeak
	}
	switch ratio := body / avg; {
	case ratio > strongBodyMult:
		return models.StrengthStrong
	case ratio > mediumBodyMult:
		return models.StrengthMedium
	default:
		return models.StrengthWeak
	}
}

// dedupBreaks keeps the strongest break per candle index, the earliest
// generated one on ties, and orders the result by index.
func dedupBreaks(candidates []models.StructureBreak) []models.StructureBreak {
	pos := make(map[int]int, len(candidates))
	out := make([]models.StructureBreak, 0, len(candidates))
	for _, b := range candidates {
		if at, ok := pos[b.Index]; ok {
			if b.Strength.Rank() > out[at].Strength.Rank() {
				out[at] = b
			}
			continue
		}
		pos[b.Index] = len(out)
		out = append(out, b)
	}
	slices.SortStableFunc(out, func(a, b models.StructureBreak) int { return cmp.Compare(a.Index, b.Index) })
	return out
}
