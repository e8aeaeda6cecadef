package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"SignalDesk/internal/domain/models"
)

func nanSnapshot() models.IndicatorSnapshot {
	nan := math.NaN()
	return models.IndicatorSnapshot{
		Close: 100,
		EMA9:  nan, EMA21: nan, EMA50: nan, EMA200: nan,
		RSI:  nan,
		MACD: nan, MACDSignal: nan, MACDHistogram: nan, PrevMACDHistogram: nan,
		BBUpper: nan, BBMiddle: nan, BBLower: nan, BBPercentB: nan, BBBandwidth: nan,
		ATR: nan, ADX: nan, PlusDI: nan, MinusDI: nan,
		StochRSIK: nan, StochRSID: nan,
		VWAP: nan, OBV: nan, ROC: nan, CCI: nan,
	}
}

func TestRules_NaNNeverFires(t *testing.T) {
	in := input{ind: nanSnapshot(), close: 100, pa: models.PriceActionAnalysis{Trend: models.TrendRanging}}
	for _, d := range detectors {
		res, _, ok := d.evaluate(in)
		assert.False(t, ok, d.strategy)
		assert.Equal(t, 0.0, res.Score, d.strategy)
		assert.Empty(t, res.Reasons, d.strategy)
	}

	b := breakdown(in)
	assert.Equal(t, models.ScoreBreakdown{}, b)
}

func TestDetector_SignalLevels(t *testing.T) {
	ind := nanSnapshot()
	ind.RSI = 20
	ind.BBPercentB = -0.1
	ind.ATR = 2
	in := input{ind: ind, close: 100}

	var mr detector
	for _, d := range detectors {
		if d.strategy == models.StrategyMeanReversion {
			mr = d
		}
	}
	res, sig, ok := mr.evaluate(in)
	assert.True(t, ok)
	assert.Equal(t, 60.0, res.Score)
	assert.Len(t, res.Reasons, 2)
	assert.Equal(t, models.SideBuy, sig.Direction)
	assert.Equal(t, 60.0, sig.Strength)
	assert.Equal(t, 97.0, sig.StopLoss)
	assert.Equal(t, 104.0, sig.TakeProfit)
	assert.InDelta(t, 2.0/1.5, sig.RiskReward, 1e-12)

	ind.RSI, ind.BBPercentB = 80, 1.2
	ind.ATR = math.NaN() // falls back to 1% of price
	res, sig, ok = mr.evaluate(input{ind: ind, close: 100})
	assert.True(t, ok)
	assert.Equal(t, -60.0, res.Score)
	assert.Equal(t, models.SideSell, sig.Direction)
	assert.Equal(t, 101.5, sig.StopLoss)
	assert.Equal(t, 98.0, sig.TakeProfit)
}

func TestDetector_BelowThresholdIsSilent(t *testing.T) {
	ind := nanSnapshot()
	ind.ROC = 1 // +8
	var mom detector
	for _, d := range detectors {
		if d.strategy == models.StrategyMomentum {
			mom = d
		}
	}
	res, _, ok := mom.evaluate(input{ind: ind, close: 100})
	assert.False(t, ok)
	assert.False(t, res.Fired)
	assert.Equal(t, 8.0, res.Score)
}
