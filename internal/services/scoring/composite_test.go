package scoring

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalDesk/internal/domain/models"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func candle(i int, o, h, l, c, v float64) models.Candle {
	return models.Candle{Symbol: "TEST", Time: t0.Add(time.Duration(i) * time.Minute), Open: o, High: h, Low: l, Close: c, Volume: v}
}

func randomWalk(seed int64, n int) []models.Candle {
	rng := rand.New(rand.NewSource(seed))
	out := make([]models.Candle, n)
	price := 100.0
	for i := range out {
		open := price
		price *= 1 + (rng.Float64()-0.5)*0.03
		hi := math.Max(open, price) * (1 + rng.Float64()*0.005)
		lo := math.Min(open, price) * (1 - rng.Float64()*0.005)
		out[i] = candle(i, open, hi, lo, price, 50+rng.Float64()*100)
	}
	return out
}

// breakoutSeries drifts sideways-up for 57 bars, then prints three
// expanding bullish candles to new highs.
func breakoutSeries() []models.Candle {
	closes := make([]float64, 0, 60)
	for i := 0; i < 57; i++ {
		closes = append(closes, 100+0.02*float64(i)+0.5*math.Sin(2*math.Pi*float64(i)/8))
	}
	c := closes[56]
	for _, step := range []float64{1.0, 1.6, 2.4} {
		c += step
		closes = append(closes, c)
	}
	out := make([]models.Candle, len(closes))
	for i, cl := range closes {
		var open float64
		vol := 100.0
		switch {
		case i >= 57:
			open = closes[i-1]
			vol = 300
		case i == 0 || cl > closes[i-1]:
			open = cl - 0.1
		default:
			open = cl + 0.1
		}
		out[i] = candle(i, open, math.Max(open, cl)+0.05, math.Min(open, cl)-0.05, cl, vol)
	}
	return out
}

func TestScore_InsufficientCandles(t *testing.T) {
	_, ok := NewScorer().Score("X", randomWalk(1, MinCandles-1), nil)
	assert.False(t, ok)

	_, ok = NewScorer().Score("X", nil, nil)
	assert.False(t, ok)
}

func TestScore_Bounds(t *testing.T) {
	s := NewScorer()
	for seed := int64(1); seed <= 40; seed++ {
		res, ok := s.Score("X", randomWalk(seed, 60+int(seed)*5), DefaultWeights())
		require.True(t, ok, "seed %d", seed)

		assert.GreaterOrEqual(t, res.Score, -100.0)
		assert.LessOrEqual(t, res.Score, 100.0)
		assert.Equal(t, math.Min(100, math.Abs(res.Score)), res.Confidence)

		for _, v := range []float64{res.Breakdown.Indicators, res.Breakdown.PriceAction, res.Breakdown.Momentum, res.Breakdown.Volatility, res.Breakdown.Trend} {
			assert.GreaterOrEqual(t, v, -100.0)
			assert.LessOrEqual(t, v, 100.0)
		}

		assert.GreaterOrEqual(t, res.Risk.PositionSizePct, 0.5)
		assert.LessOrEqual(t, res.Risk.PositionSizePct, 10.0)
		assert.GreaterOrEqual(t, res.Risk.KellyFraction, 0.0)
		assert.LessOrEqual(t, res.Risk.KellyFraction, 0.25)
		assert.InDelta(t, res.Risk.PositionSizePct*0.02, res.Risk.MaxLossPct, 1e-12)

		assert.Len(t, res.Detectors, 5)
		for _, sig := range res.Signals {
			assert.GreaterOrEqual(t, math.Abs(sig.Score), float64(FireThreshold))
			assert.LessOrEqual(t, sig.Strength, 100.0)
		}
		assert.False(t, math.IsNaN(res.Score))
	}
}

func TestScore_CleanBreakoutFiresMomentumOrBreakout(t *testing.T) {
	res, ok := NewScorer().Score("X", breakoutSeries(), nil)
	require.True(t, ok)

	var fired []string
	for _, sig := range res.Signals {
		if sig.Strategy == models.StrategyMomentum || sig.Strategy == models.StrategyBreakout {
			assert.Equal(t, models.SideBuy, sig.Direction, sig.Strategy)
			assert.Less(t, sig.StopLoss, sig.Entry)
			assert.Greater(t, sig.TakeProfit, sig.Entry)
			fired = append(fired, sig.Strategy)
		}
	}
	assert.NotEmpty(t, fired, "momentum or breakout should fire on a clean breakout")
	assert.Equal(t, t0.Add(59*time.Minute), res.Timestamp)
}

func TestEnsemble(t *testing.T) {
	signals := []models.StrategySignal{
		{Strategy: models.StrategyTrendFollowing, Direction: models.SideBuy, Strength: 80},
	}
	// 80*0.3 / (0.3 + 0.3*(0.25+0.20+0.15+0.10))
	assert.InDelta(t, 24/0.51, Ensemble(signals, DefaultWeights()), 1e-9)

	signals = append(signals, models.StrategySignal{Strategy: models.StrategyMomentum, Direction: models.SideSell, Strength: 100})
	assert.InDelta(t, (24-25)/(0.55+0.3*0.45), Ensemble(signals, DefaultWeights()), 1e-9)

	assert.Equal(t, 0.0, Ensemble(nil, nil))

	disabled := DefaultWeights()
	for i := range disabled {
		disabled[i].Enabled = false
	}
	assert.Equal(t, 0.0, Ensemble(signals, disabled))
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		score float64
		want  models.Recommendation
	}{
		{75, models.RecommendStrongBuy},
		{60, models.RecommendStrongBuy},
		{25, models.RecommendBuy},
		{0, models.RecommendNeutral},
		{-19.9, models.RecommendNeutral},
		{-20, models.RecommendSell},
		{-60, models.RecommendStrongSell},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Recommend(tt.score), "score %v", tt.score)
	}
}
