package service

import "SignalDesk/internal/domain/models"

// StructureAnalyzer reads swing structure, breaks and liquidity events from candles.
type StructureAnalyzer interface {
	Analyze(candles []models.Candle) models.PriceActionAnalysis
}

// CompositeScorer fuses strategy detectors into one bounded score. ok is
// false when the series is too short to score. Combine scores inputs the
// caller has already computed for the same candles.
type CompositeScorer interface {
	Score(symbol string, candles []models.Candle, weights []models.StrategyWeight) (score models.CompositeScore, ok bool)
	Combine(symbol string, candles []models.Candle, snap models.IndicatorSnapshot, pa models.PriceActionAnalysis, weights []models.StrategyWeight) models.CompositeScore
}

// IndicatorCalculator computes latest-bar indicator values.
type IndicatorCalculator interface {
	Compute(candles []models.Candle) (models.IndicatorSnapshot, error)
}

// BookSource serves the live order book of a symbol. ok is false until the
// book is synchronized.
type BookSource interface {
	Book(symbol string) (book models.OrderBook, ok bool)
}
