package priceaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalDesk/internal/domain/models"
)

func TestDetectDisplacements_ToleratesOneSmallCounterCandle(t *testing.T) {
	c := make([]models.Candle, 0, 13)
	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			c = append(c, candle(i, 100, 100.1, 99.95, 100.05))
		} else {
			c = append(c, candle(i, 100.05, 100.1, 99.95, 100))
		}
	}
	c = append(c,
		candle(10, 100, 101.05, 99.95, 101),
		candle(11, 101, 101.05, 100.85, 100.9),
		candle(12, 100.9, 102.2, 100.85, 102.1),
	)

	ds := detectDisplacements(c, 0.5)
	var hit *models.Displacement
	for i := range ds {
		if ds[i].StartIndex == 10 {
			hit = &ds[i]
		}
	}
	require.NotNil(t, hit)
	assert.Equal(t, 12, hit.EndIndex)
	assert.Equal(t, models.DirectionBullish, hit.Direction)
	assert.Equal(t, models.StrengthStrong, hit.Strength)
	assert.InDelta(t, 2.1, hit.SizePct, 1e-9)
}

func TestDetectDisplacements_RejectsLargeCounterCandle(t *testing.T) {
	c := []models.Candle{
		candle(0, 100, 101.05, 99.95, 101),
		candle(1, 101, 101.05, 100.2, 100.3),
		candle(2, 100.3, 101.3, 100.25, 101.2),
	}
	ds := detectDisplacements(c, 0.5)
	for _, d := range ds {
		assert.False(t, d.StartIndex == 0 && d.EndIndex == 2, "a 0.7 counter body is too large")
	}
}

func TestDetectDisplacements_NonOverlapping(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		ds := detectDisplacements(randomWalk(seed, 150), 0.5)
		for i := 1; i < len(ds); i++ {
			assert.Greater(t, ds[i].StartIndex, ds[i-1].EndIndex)
		}
		for _, d := range ds {
			assert.LessOrEqual(t, d.EndIndex-d.StartIndex, maxDisplacementBars-1)
			assert.GreaterOrEqual(t, d.SizePct, 0.5)
		}
	}
}

func TestFibonacciLevels(t *testing.T) {
	highs := []models.SwingPoint{{Index: 10, Price: 110, Type: models.SwingHigh}}
	lows := []models.SwingPoint{{Index: 5, Price: 90, Type: models.SwingLow}}

	fib := fibonacciLevels(highs, lows)
	require.NotNil(t, fib)
	assert.Equal(t, models.DirectionBullish, fib.Direction)
	require.Len(t, fib.Levels, 7)
	assert.Equal(t, "0.0%", fib.Levels[0].Label)
	assert.InDelta(t, 110.0, fib.Levels[0].Price, 1e-9)
	assert.InDelta(t, 100.0, fib.Levels[3].Price, 1e-9)
	assert.Equal(t, "61.8%", fib.Levels[4].Label)
	assert.InDelta(t, 97.64, fib.Levels[4].Price, 1e-9)

	lows[0].Index = 12
	fib = fibonacciLevels(highs, lows)
	assert.Equal(t, models.DirectionBearish, fib.Direction)
	assert.InDelta(t, 102.36, fib.Levels[4].Price, 1e-9)

	assert.Nil(t, fibonacciLevels(nil, lows))
}
