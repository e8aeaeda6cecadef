package scoring

import (
	"fmt"
	"math"

	"SignalDesk/internal/domain/models"
)

// FireThreshold is the absolute detector score at which it emits a signal.
const FireThreshold = 20

// input is everything a rule may read.
type input struct {
	candles []models.Candle
	ind     models.IndicatorSnapshot
	pa      models.PriceActionAnalysis
	close   float64
}

// rule returns a signed score delta and a reason. A zero delta means the
// rule did not apply.
type rule struct {
	name string
	eval func(in input) (float64, string)
}

type detector struct {
	strategy  string
	stopATR   float64
	targetATR float64
	rules     []rule
}

// evaluate folds the detector's rules in order.
func (d detector) evaluate(in input) (models.DetectorResult, models.StrategySignal, bool) {
	res := models.DetectorResult{Strategy: d.strategy, Reasons: []string{}}
	for _, r := range d.rules {
		delta, reason := r.eval(in)
		if delta == 0 || !finite(delta) {
			continue
		}
		res.Score += delta
		res.Reasons = append(res.Reasons, fmt.Sprintf("%s: %s", r.name, reason))
	}
	if math.Abs(res.Score) < FireThreshold {
		return res, models.StrategySignal{}, false
	}
	res.Fired = true
	return res, d.signal(in, res), true
}

func (d detector) signal(in input, res models.DetectorResult) models.StrategySignal {
	atr := in.ind.ATR
	if !finite(atr) || atr <= 0 {
		atr = in.close * 0.01
	}
	sig := models.StrategySignal{
		Strategy:   d.strategy,
		Direction:  models.SideBuy,
		Strength:   math.Min(100, math.Abs(res.Score)),
		Score:      res.Score,
		Entry:      in.close,
		StopLoss:   in.close - atr*d.stopATR,
		TakeProfit: in.close + atr*d.targetATR,
		RiskReward: d.targetATR / d.stopATR,
		Reasons:    res.Reasons,
	}
	if res.Score < 0 {
		sig.Direction = models.SideSell
		sig.StopLoss = in.close + atr*d.stopATR
		sig.TakeProfit = in.close - atr*d.targetATR
	}
	return sig
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func dirSign(d models.Direction) float64 {
	if d == models.DirectionBullish {
		return 1
	}
	return -1
}
