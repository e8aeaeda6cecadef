// Package scoring fuses rule-based strategy detectors, indicator sub-scores
// and the price-action read into one bounded directional score with a
// risk-sized position.
package scoring

import (
	"math"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/services/indicators"
	"SignalDesk/internal/services/priceaction"
)

const (
	// MinCandles is the shortest series Score accepts.
	MinCandles = 50
	// partialCredit is the share of a silent detector's weight that still
	// counts toward the denominator.
	partialCredit = 0.3
)

type Scorer struct {
	analyzer *priceaction.Analyzer
}

type Option func(*Scorer)

// WithAnalyzerConfig sets the price-action thresholds used by Score.
func WithAnalyzerConfig(cfg priceaction.Config) Option {
	return func(s *Scorer) { s.analyzer = priceaction.NewAnalyzer(cfg) }
}

func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{analyzer: priceaction.NewAnalyzer(priceaction.DefaultConfig())}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes indicators and price action for candles and combines them.
// ok is false when the series is shorter than MinCandles or the indicators
// fail to warm up.
func (s *Scorer) Score(symbol string, candles []models.Candle, weights []models.StrategyWeight) (models.CompositeScore, bool) {
	if len(candles) < MinCandles {
		return models.CompositeScore{}, false
	}
	snap, err := indicators.Compute(candles)
	if err != nil {
		return models.CompositeScore{}, false
	}
	return s.Combine(symbol, candles, snap, s.analyzer.Analyze(candles), weights), true
}

// Combine scores already computed inputs. Empty weights mean DefaultWeights.
func (s *Scorer) Combine(symbol string, candles []models.Candle, snap models.IndicatorSnapshot, pa models.PriceActionAnalysis, weights []models.StrategyWeight) models.CompositeScore {
	if len(weights) == 0 {
		weights = DefaultWeights()
	}
	in := input{candles: candles, ind: snap, pa: pa, close: snap.Close}

	results := make([]models.DetectorResult, 0, len(detectors))
	signals := make([]models.StrategySignal, 0, len(detectors))
	for _, d := range detectors {
		res, sig, ok := d.evaluate(in)
		results = append(results, res)
		if ok {
			signals = append(signals, sig)
		}
	}

	score := Ensemble(signals, weights)
	confidence := math.Min(100, math.Abs(score))

	out := models.CompositeScore{
		Symbol:         symbol,
		Score:          score,
		Confidence:     confidence,
		Recommendation: Recommend(score),
		Breakdown:      breakdown(in),
		Risk:           AssessRisk(snap, confidence, signals),
		Signals:        signals,
		Detectors:      results,
	}
	if len(candles) > 0 {
		out.Timestamp = candles[len(candles)-1].Time
	}
	return out
}

// Ensemble weighs fired signals by strategy. Enabled strategies that did not
// fire add partialCredit of their weight to the denominator only.
func Ensemble(signals []models.StrategySignal, weights []models.StrategyWeight) float64 {
	fired := make(map[string]models.StrategySignal, len(signals))
	for _, s := range signals {
		fired[s.Strategy] = s
	}

	var sum, total float64
	for _, w := range weights {
		if !w.Enabled || w.Weight <= 0 {
			continue
		}
		sig, ok := fired[w.ID]
		if !ok {
			total += partialCredit * w.Weight
			continue
		}
		dir := 1.0
		if sig.Direction == models.SideSell {
			dir = -1
		}
		sum += dir * sig.Strength * w.Weight
		total += w.Weight
	}
	if total == 0 {
		return 0
	}
	return clamp(sum/total, -100, 100)
}

// Recommend labels a composite score.
func Recommend(score float64) models.Recommendation {
	switch {
	case score >= 60:
		return models.RecommendStrongBuy
	case score >= 20:
		return models.RecommendBuy
	case score <= -60:
		return models.RecommendStrongSell
	case score <= -20:
		return models.RecommendSell
	default:
		return models.RecommendNeutral
	}
}
