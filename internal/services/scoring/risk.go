package scoring

import "SignalDesk/internal/domain/models"

const (
	defaultRiskReward = 1.5
	maxKelly          = 0.25
	minPositionPct    = 0.5
	maxPositionPct    = 10
	maxLossFraction   = 0.02
)

// VolatilityRegimeOf buckets ATR as a percent of price.
func VolatilityRegimeOf(atrPct float64) models.VolatilityRegime {
	switch {
	case atrPct < 0.5:
		return models.VolatilityLow
	case atrPct < 1.5:
		return models.VolatilityNormal
	case atrPct < 3:
		return models.VolatilityHigh
	default:
		return models.VolatilityExtreme
	}
}

func regimeMultiplier(r models.VolatilityRegime) float64 {
	switch r {
	case models.VolatilityLow:
		return 1.2
	case models.VolatilityHigh:
		return 0.6
	case models.VolatilityExtreme:
		return 0.3
	default:
		return 1.0
	}
}

// KellyFraction sizes a bet from confidence (0..100) and average reward to
// risk, capped at a quarter of capital.
func KellyFraction(confidence, avgRR float64) float64 {
	if avgRR <= 0 {
		avgRR = defaultRiskReward
	}
	p := 0.5 + confidence/200
	return clamp((avgRR*p-(1-p))/avgRR, 0, maxKelly)
}

// AssessRisk derives position sizing for the composite score. Position size
// is half-Kelly scaled by the volatility regime, as a percent of capital.
func AssessRisk(ind models.IndicatorSnapshot, confidence float64, signals []models.StrategySignal) models.RiskMetrics {
	var atrPct float64
	if finite(ind.ATR, ind.Close) && ind.Close > 0 {
		atrPct = ind.ATR / ind.Close * 100
	}
	regime := VolatilityRegimeOf(atrPct)

	avgRR := defaultRiskReward
	if len(signals) > 0 {
		var sum float64
		for _, s := range signals {
			sum += s.RiskReward
		}
		avgRR = sum / float64(len(signals))
	}

	kelly := KellyFraction(confidence, avgRR)
	pos := clamp(kelly/2*100*regimeMultiplier(regime), minPositionPct, maxPositionPct)

	return models.RiskMetrics{
		ATRPercent:       atrPct,
		VolatilityRegime: regime,
		WinProbability:   0.5 + confidence/200,
		AvgRiskReward:    avgRR,
		KellyFraction:    kelly,
		PositionSizePct:  pos,
		MaxLossPct:       pos * maxLossFraction,
	}
}
