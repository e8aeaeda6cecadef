package priceaction

import (
	"cmp"
	"math"
	"slices"

	"SignalDesk/internal/domain/models"
)

// detectSweeps records, per swing level, the first candle that wicks
// through it by at least wickPct and closes back on the original side. A
// close through the level first means the level was taken, not swept.
func detectSweeps(candles []models.Candle, highs, lows []models.SwingPoint, wickPct float64, lookahead int) []models.LiquiditySweep {
	out := make([]models.LiquiditySweep, 0)
	for _, sh := range highs {
		if s, ok := sweepOf(candles, sh, wickPct, lookahead); ok {
			out = append(out, s)
		}
	}
	for _, sl := range lows {
		if s, ok := sweepOf(candles, sl, wickPct, lookahead); ok {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b models.LiquiditySweep) int { return cmp.Compare(a.Index, b.Index) })
	return out
}

func sweepOf(candles []models.Candle, swing models.SwingPoint, wickPct float64, lookahead int) (models.LiquiditySweep, bool) {
	level := swing.Price
	end := min(swing.Index+lookahead, len(candles)-1)
	for j := swing.Index + 1; j <= end; j++ {
		c := candles[j]
		var pierce float64
		typ := models.SweepBuySide
		if swing.Type == models.SwingHigh {
			if c.Close > level {
				return models.LiquiditySweep{}, false
			}
			if c.High <= level || c.Close == level {
				continue
			}
			pierce = c.High - level
		} else {
			typ = models.SweepSellSide
			if c.Close < level {
				return models.LiquiditySweep{}, false
			}
			if c.Low >= level || c.Close == level {
				continue
			}
			pierce = level - c.Low
		}
		pct := pierce / level * 100
		if pct < wickPct {
			continue
		}

		s := models.LiquiditySweep{
			Index:      j,
			Time:       c.Time,
			SwingIndex: swing.Index,
			SweptLevel: level,
			Type:       typ,
			WickPct:    pct,
		}
		if j+1 < len(candles) {
			next := candles[j+1].Close
			if typ == models.SweepBuySide {
				s.Recovered = next < c.Close
			} else {
				s.Recovered = next > c.Close
			}
		}
		return s, true
	}
	return models.LiquiditySweep{}, false
}

// findEqualLevels clusters swing highs and swing lows whose prices sit
// within tolPct of the cluster's first price.
func findEqualLevels(highs, lows []models.SwingPoint, tolPct float64) []models.EqualLevel {
	out := make([]models.EqualLevel, 0)
	out = append(out, clusterLevels(highs, tolPct, models.EqualHighs)...)
	out = append(out, clusterLevels(lows, tolPct, models.EqualLows)...)
	return out
}

func clusterLevels(points []models.SwingPoint, tolPct float64, typ models.EqualLevelType) []models.EqualLevel {
	var out []models.EqualLevel
	used := make([]bool, len(points))
	for i := range points {
		if used[i] {
			continue
		}
		used[i] = true
		anchor := points[i].Price
		prices := []float64{anchor}
		indices := []int{points[i].Index}
		for j := i + 1; j < len(points); j++ {
			if used[j] || anchor == 0 {
				continue
			}
			if math.Abs(points[j].Price-anchor)/anchor*100 <= tolPct {
				used[j] = true
				prices = append(prices, points[j].Price)
				indices = append(indices, points[j].Index)
			}
		}
		if len(prices) < 2 {
			continue
		}
		var sum float64
		for _, p := range prices {
			sum += p
		}
		out = append(out, models.EqualLevel{
			Type:          typ,
			Prices:        prices,
			Indices:       indices,
			AvgPrice:      sum / float64(len(prices)),
			Count:         len(prices),
			LiquidityPool: len(prices) >= 3,
		})
	}
	return out
}
