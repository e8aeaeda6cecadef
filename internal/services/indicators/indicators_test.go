package indicators

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalDesk/internal/domain/models"
)

func candlesFromCloses(closes []float64) []models.Candle {
	out := make([]models.Candle, len(closes))
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		out[i] = models.Candle{
			Symbol: "TEST",
			Time:   t0.Add(time.Duration(i) * time.Minute),
			Open:   open,
			High:   math.Max(open, c) + 0.5,
			Low:    math.Min(open, c) - 0.5,
			Close:  c,
			Volume: 100,
		}
	}
	return out
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestSMAAndEMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	sma := SMA(values, 3)
	assert.True(t, math.IsNaN(sma[1]))
	assert.InDelta(t, 2.0, sma[2], 1e-12)
	assert.InDelta(t, 4.0, sma[4], 1e-12)

	ema := EMA(values, 3)
	assert.True(t, math.IsNaN(ema[1]))
	assert.InDelta(t, 2.0, ema[2], 1e-12) // seeded with SMA
	assert.InDelta(t, 3.0, ema[3], 1e-12) // 4*0.5 + 2*0.5
	assert.InDelta(t, 4.0, ema[4], 1e-12)
}

func TestEMASkipsLeadingNaN(t *testing.T) {
	values := []float64{math.NaN(), math.NaN(), 2, 2, 2, 2}
	ema := EMA(values, 3)
	assert.True(t, math.IsNaN(ema[3]))
	assert.InDelta(t, 2.0, ema[4], 1e-12)
	assert.InDelta(t, 2.0, ema[5], 1e-12)
}

func TestRSI(t *testing.T) {
	up := RSI(linear(30, 100, 1), 14)
	assert.True(t, math.IsNaN(up[13]))
	assert.InDelta(t, 100.0, up[29], 1e-9)

	down := RSI(linear(30, 100, -1), 14)
	assert.InDelta(t, 0.0, down[29], 1e-9)

	flat := RSI(linear(30, 100, 0), 14)
	assert.InDelta(t, 50.0, flat[29], 1e-9)

	zigzag := make([]float64, 40)
	for i := range zigzag {
		zigzag[i] = 100 + float64(i%2)
	}
	assert.InDelta(t, 50.0, RSI(zigzag, 14)[39], 5)
}

func TestBollingerFlatSeries(t *testing.T) {
	b := Bollinger(linear(25, 10, 0), 20, 2)
	assert.InDelta(t, 10.0, b.Middle[24], 1e-12)
	assert.InDelta(t, 0.0, b.Bandwidth[24], 1e-12)
	assert.InDelta(t, 0.5, b.PercentB[24], 1e-12)
}

func TestATRConstantRange(t *testing.T) {
	n := 30
	high, low, closes := make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		high[i], low[i], closes[i] = 101, 99, 100
	}
	atr := ATR(high, low, closes, 14)
	assert.True(t, math.IsNaN(atr[12]))
	assert.InDelta(t, 2.0, atr[13], 1e-12)
	assert.InDelta(t, 2.0, atr[29], 1e-12)
}

func TestADXRisingSeries(t *testing.T) {
	c := candlesFromCloses(linear(60, 100, 1))
	high, low, closes := make([]float64, 60), make([]float64, 60), make([]float64, 60)
	for i, x := range c {
		high[i], low[i], closes[i] = x.High, x.Low, x.Close
	}
	adx, plus, minus := ADX(high, low, closes, 14)
	assert.Greater(t, plus[59], minus[59])
	assert.Greater(t, adx[59], 50.0)
}

func TestOBVAndROC(t *testing.T) {
	closes := []float64{10, 11, 11, 10, 12}
	volume := []float64{5, 5, 5, 5, 5}
	assert.Equal(t, []float64{0, 5, 5, 0, 5}, OBV(closes, volume))

	roc := ROC(closes, 2)
	assert.InDelta(t, 10.0, roc[2], 1e-12)
	assert.InDelta(t, (12.0-11.0)/11.0*100, roc[4], 1e-12)
}

func TestCompute(t *testing.T) {
	_, err := Compute(candlesFromCloses(linear(49, 100, 1)))
	assert.True(t, errors.Is(err, ErrInsufficientData))

	snap, err := Compute(candlesFromCloses(linear(80, 100, 0.5)))
	require.NoError(t, err)

	assert.Greater(t, snap.EMA9, snap.EMA21)
	assert.Greater(t, snap.EMA21, snap.EMA50)
	assert.True(t, math.IsNaN(snap.EMA200), "EMA200 needs 200 bars")
	assert.InDelta(t, 100.0, snap.RSI, 1e-9)
	assert.Greater(t, snap.ROC, 0.0)
	assert.Greater(t, snap.OBV, 0.0)
	assert.Greater(t, snap.PlusDI, snap.MinusDI)
	assert.False(t, math.IsNaN(snap.StochRSIK))
	assert.False(t, math.IsNaN(snap.CCI))
	assert.InDelta(t, 139.5, snap.Close, 1e-9)
}
