package priceaction

import (
	"cmp"
	"math"
	"slices"

	"SignalDesk/internal/domain/models"
)

const (
	maxDisplacementBars = 3
	counterBodyMax      = 0.5
)

// detectDisplacements finds impulsive moves of up to maxDisplacementBars
// candles. Candidates are taken greedily by size and may not overlap.
func detectDisplacements(candles []models.Candle, minPct float64) []models.Displacement {
	var candidates []models.Displacement
	for s := range candles {
		for length := 1; length <= maxDisplacementBars && s+length <= len(candles); length++ {
			if d, ok := evaluateMove(candles[s:s+length], s, minPct); ok {
				candidates = append(candidates, d)
			}
		}
	}
	slices.SortStableFunc(candidates, func(a, b models.Displacement) int { return cmp.Compare(b.SizePct, a.SizePct) })

	taken := make([]bool, len(candles))
	out := make([]models.Displacement, 0)
	for _, d := range candidates {
		free := true
		for k := d.StartIndex; k <= d.EndIndex; k++ {
			if taken[k] {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		for k := d.StartIndex; k <= d.EndIndex; k++ {
			taken[k] = true
		}
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b models.Displacement) int { return cmp.Compare(a.StartIndex, b.StartIndex) })
	return out
}

// evaluateMove accepts a window whose first and last candles move with the
// net direction and which holds at most one counter candle, smaller than
// half the mean body of the candles moving with it.
func evaluateMove(window []models.Candle, start int, minPct float64) (models.Displacement, bool) {
	first, end := window[0], window[len(window)-1]
	if first.Open <= 0 {
		return models.Displacement{}, false
	}
	net := end.Close - first.Open
	size := math.Abs(net) / first.Open * 100
	if net == 0 || size < minPct {
		return models.Displacement{}, false
	}

	bullish := net > 0
	with := func(c models.Candle) bool {
		if bullish {
			return c.Bullish()
		}
		return c.Bearish()
	}
	if !with(first) || !with(end) {
		return models.Displacement{}, false
	}

	var withBody, counterBody float64
	withCount, counters := 0, 0
	for _, c := range window {
		if with(c) {
			withBody += c.Body()
			withCount++
		} else {
			counters++
			counterBody = c.Body()
		}
	}
	if counters > 1 {
		return models.Displacement{}, false
	}
	if counters == 1 && counterBody >= counterBodyMax*withBody/float64(withCount) {
		return models.Displacement{}, false
	}

	d := models.Displacement{
		StartIndex: start,
		EndIndex:   start + len(window) - 1,
		Direction:  models.DirectionBearish,
		SizePct:    size,
		Strength:   models.StrengthWeak,
	}
	if bullish {
		d.Direction = models.DirectionBullish
	}
	switch ratio := size / minPct; {
	case ratio >= 3:
		d.Strength = models.StrengthStrong
	case ratio >= 2:
		d.Strength = models.StrengthMedium
	}
	return d, true
}
