package repository

import (
	"context"
	"time"

	"SignalDesk/internal/domain/models"
)

// CandleStore provides read-only access to candles for analysis.
type CandleStore interface {
	GetCandles(ctx context.Context, symbol string, from, to time.Time, tf Timeframe) ([]models.Candle, error)
	GetLatestNCandles(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.Candle, error)
}

// CandleWriter persists closed candles.
type CandleWriter interface {
	StoreCandles(ctx context.Context, tf Timeframe, candles []models.Candle) error
	Health(ctx context.Context) error
}
