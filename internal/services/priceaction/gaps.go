package priceaction

import "SignalDesk/internal/domain/models"

// detectFVGs scans three-candle windows for gaps between the first candle's
// range and the third's, at least minGapPct of the middle close wide.
func detectFVGs(candles []models.Candle, minGapPct float64) []models.FairValueGap {
	out := make([]models.FairValueGap, 0)
	for i := 2; i < len(candles); i++ {
		first, mid, third := candles[i-2], candles[i-1], candles[i]
		if mid.Close <= 0 {
			continue
		}
		var gap models.FairValueGap
		switch {
		case third.Low > first.High && (third.Low-first.High)/mid.Close*100 >= minGapPct:
			gap = newGap(i, first.High, third.Low, models.DirectionBullish)
		case third.High < first.Low && (first.Low-third.High)/mid.Close*100 >= minGapPct:
			gap = newGap(i, third.High, first.Low, models.DirectionBearish)
		default:
			continue
		}
		trackFill(&gap, candles)
		out = append(out, gap)
	}
	return out
}

func newGap(end int, low, high float64, dir models.Direction) models.FairValueGap {
	return models.FairValueGap{
		StartIndex:  end - 2,
		EndIndex:    end,
		High:        high,
		Low:         low,
		Midpoint:    (high + low) / 2,
		Type:        dir,
		FilledIndex: -1,
	}
}

// trackFill walks forward from the gap. FillPercentage is the deepest
// retrace into the gap so far; a full traversal fills it.
func trackFill(g *models.FairValueGap, candles []models.Candle) {
	size := g.High - g.Low
	for k := g.EndIndex + 1; k < len(candles); k++ {
		c := candles[k]
		var depth float64
		if g.Type == models.DirectionBullish {
			if c.Low >= g.High {
				continue
			}
			depth = (g.High - c.Low) / size * 100
		} else {
			if c.High <= g.Low {
				continue
			}
			depth = (c.High - g.Low) / size * 100
		}
		if depth >= 100 {
			g.FillPercentage = 100
			g.Filled = true
			g.FilledIndex = k
			return
		}
		if depth > g.FillPercentage {
			g.FillPercentage = depth
		}
	}
}
