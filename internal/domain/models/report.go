package models

import "time"

// RegimeFeatures summarizes per-bar return, range and volume-change features.
type RegimeFeatures struct {
	Rows        int     `json:"rows"`
	MeanReturn  float64 `json:"meanReturn"`
	MeanRange   float64 `json:"meanRange"`
	MeanVolChg  float64 `json:"meanVolChange"`
	RealizedVol float64 `json:"realizedVol"`
}

// AnalysisReport is what one recomputation produces for a symbol.
type AnalysisReport struct {
	ID          string              `json:"id"`
	Symbol      string              `json:"symbol"`
	Timeframe   string              `json:"tf"`
	GeneratedAt time.Time           `json:"generatedAt"`
	LastClose   float64             `json:"lastClose"`
	CandleCount int                 `json:"candleCount"`
	PriceAction PriceActionAnalysis `json:"priceAction"`
	Indicators  *IndicatorSnapshot  `json:"indicators,omitempty"`
	Composite   *CompositeScore     `json:"composite,omitempty"`
	Regime      *RegimeFeatures     `json:"regime,omitempty"`
	Errors      map[string]string   `json:"errors,omitempty"`
}
