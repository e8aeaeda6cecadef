package priceaction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"SignalDesk/internal/domain/models"
)

// band appends n bars centred on mid with the given half range.
func band(out []models.Candle, n int, mid, half float64) []models.Candle {
	for i := 0; i < n; i++ {
		out = append(out, candle(len(out), mid, mid+half, mid-half, mid))
	}
	return out
}

// squeeze is a 4% range followed by a 1% range: the last window is compressed.
func squeeze() []models.Candle {
	return band(band(nil, phaseWindow, 100, 2), phaseWindow, 100, 0.5)
}

// expansion is a 1% range followed by a 4% range.
func expansion() []models.Candle {
	return band(band(nil, phaseWindow, 100, 0.5), phaseWindow, 100, 2)
}

// withLastClose replaces the final bar with a tight bar closing at c.
func withLastClose(candles []models.Candle, c float64) []models.Candle {
	out := append([]models.Candle(nil), candles...)
	n := len(out) - 1
	out[n] = candle(n, c, c+0.1, c-0.1, c)
	return out
}

func impulse(end int, d models.Direction) []models.Displacement {
	return []models.Displacement{{StartIndex: end - 2, EndIndex: end, Direction: d, Strength: models.StrengthMedium}}
}

func TestClassifyPhase(t *testing.T) {
	last := 2*phaseWindow - 1
	tests := []struct {
		name    string
		candles []models.Candle
		trend   models.Trend
		disp    []models.Displacement
		want    models.Phase
	}{
		{"too short", band(nil, phaseWindow-1, 100, 0.5), models.TrendBullish, nil, models.PhaseUnknown},
		{"compressed bearish trend", squeeze(), models.TrendBearish, nil, models.PhaseAccumulation},
		{"compressed bullish trend", squeeze(), models.TrendBullish, nil, models.PhaseDistribution},
		{"compressed bullish impulse", squeeze(), models.TrendRanging, impulse(last, models.DirectionBullish), models.PhaseAccumulation},
		{"compressed bearish impulse", squeeze(), models.TrendRanging, impulse(last, models.DirectionBearish), models.PhaseDistribution},
		{"compressed close near low", withLastClose(squeeze(), 99.6), models.TrendRanging, nil, models.PhaseAccumulation},
		{"compressed close near high", withLastClose(squeeze(), 100.4), models.TrendRanging, nil, models.PhaseDistribution},
		{"flat short history", band(nil, phaseWindow, 100, 0.5), models.TrendBearish, nil, models.PhaseAccumulation},
		{"expanding bullish impulse", expansion(), models.TrendBearish, impulse(last, models.DirectionBullish), models.PhaseMarkup},
		{"expanding bearish impulse", expansion(), models.TrendBullish, impulse(last, models.DirectionBearish), models.PhaseMarkdown},
		{"expanding bullish trend", expansion(), models.TrendBullish, nil, models.PhaseMarkup},
		{"expanding bearish trend", expansion(), models.TrendBearish, nil, models.PhaseMarkdown},
		{"expanding no direction", expansion(), models.TrendRanging, nil, models.PhaseUnknown},
		{"stale impulse ignored", expansion(), models.TrendRanging, impulse(last-phaseRecentBars, models.DirectionBullish), models.PhaseUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyPhase(tt.candles, tt.trend, tt.disp))
		})
	}
}
