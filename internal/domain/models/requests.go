package models

// Requests for the HTTP API. Defined in domain for consistency and reuse.

type AnalysisRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"300" validate:"gte=15,lte=5000"`
	TF     string `query:"tf" json:"tf" default:"1m" validate:"oneof=1m 5m 15m 1h"`
}

type AnalyzerConfigRequest struct {
	SwingLeftBars          int     `json:"swingLeftBars" validate:"gte=0,lte=20"`
	SwingRightBars         int     `json:"swingRightBars" validate:"gte=0,lte=20"`
	FVGMinGapPct           float64 `json:"fvgMinGapPct" validate:"gte=0"`
	EqualLevelTolerancePct float64 `json:"equalLevelTolerancePct" validate:"gte=0"`
	DisplacementMinPct     float64 `json:"displacementMinPct" validate:"gte=0"`
	SweepWickThresholdPct  float64 `json:"sweepWickThresholdPct" validate:"gte=0"`
}

type PriceActionRequest struct {
	Candles []Candle              `json:"candles" validate:"required,min=1,dive"`
	Config  AnalyzerConfigRequest `json:"config"`
}

type ScoreRequest struct {
	Symbol  string           `json:"symbol"`
	Candles []Candle         `json:"candles" validate:"required,min=1,dive"`
	Weights []StrategyWeight `json:"weights" validate:"dive"`
}

type OrderBookRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Depth  int    `query:"depth" json:"depth" default:"20" validate:"gte=1,lte=1000"`
}

// CandlesRequest times accept RFC3339 or unix seconds/milliseconds.
type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	TF     string `query:"tf" json:"tf" default:"1m" validate:"oneof=1m 5m 15m 1h"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"1000" validate:"gte=1,lte=5000"`
}
