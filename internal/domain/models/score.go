package models

import "time"

const (
	StrategyTrendFollowing = "trend-following"
	StrategyMomentum       = "momentum"
	StrategyMeanReversion  = "mean-reversion"
	StrategyBreakout       = "breakout"
	StrategyScalp          = "scalp"
)

// StrategyWeight sets how much one detector contributes to the ensemble.
type StrategyWeight struct {
	ID      string  `json:"id" yaml:"id" validate:"required"`
	Name    string  `json:"name" yaml:"name"`
	Weight  float64 `json:"weight" yaml:"weight" validate:"gte=0"`
	Enabled bool    `json:"enabled" yaml:"enabled"`
}

// StrategySignal is the output of a detector that fired.
type StrategySignal struct {
	Strategy   string   `json:"strategy"`
	Direction  Side     `json:"direction"`
	Strength   float64  `json:"strength"`
	Score      float64  `json:"score"`
	Entry      float64  `json:"entry"`
	StopLoss   float64  `json:"stopLoss"`
	TakeProfit float64  `json:"takeProfit"`
	RiskReward float64  `json:"riskReward"`
	Reasons    []string `json:"reasons"`
}

// DetectorResult records how one detector evaluated, fired or not.
type DetectorResult struct {
	Strategy string   `json:"strategy"`
	Score    float64  `json:"score"`
	Fired    bool     `json:"fired"`
	Reasons  []string `json:"reasons"`
}

type ScoreBreakdown struct {
	Indicators  float64 `json:"indicators"`
	PriceAction float64 `json:"priceAction"`
	Momentum    float64 `json:"momentum"`
	Volatility  float64 `json:"volatility"`
	Trend       float64 `json:"trend"`
}

type VolatilityRegime string

const (
	VolatilityLow     VolatilityRegime = "low"
	VolatilityNormal  VolatilityRegime = "normal"
	VolatilityHigh    VolatilityRegime = "high"
	VolatilityExtreme VolatilityRegime = "extreme"
)

type RiskMetrics struct {
	ATRPercent       float64          `json:"atrPercent"`
	VolatilityRegime VolatilityRegime `json:"volatilityRegime"`
	WinProbability   float64          `json:"winProbability"`
	AvgRiskReward    float64          `json:"avgRiskReward"`
	KellyFraction    float64          `json:"kellyFraction"`
	PositionSizePct  float64          `json:"positionSizePct"`
	MaxLossPct       float64          `json:"maxLossPct"`
}

type Recommendation string

const (
	RecommendStrongBuy  Recommendation = "STRONG_BUY"
	RecommendBuy        Recommendation = "BUY"
	RecommendNeutral    Recommendation = "NEUTRAL"
	RecommendSell       Recommendation = "SELL"
	RecommendStrongSell Recommendation = "STRONG_SELL"
)

// CompositeScore fuses detector signals and indicator sub-scores. Score and
// every breakdown field lie in [-100, 100].
type CompositeScore struct {
	Symbol         string           `json:"symbol,omitempty"`
	Timestamp      time.Time        `json:"timestamp"`
	Score          float64          `json:"score"`
	Confidence     float64          `json:"confidence"`
	Recommendation Recommendation   `json:"recommendation"`
	Breakdown      ScoreBreakdown   `json:"breakdown"`
	Risk           RiskMetrics      `json:"risk"`
	Signals        []StrategySignal `json:"signals"`
	Detectors      []DetectorResult `json:"detectors"`
}
