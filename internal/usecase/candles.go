package usecase

import (
	"context"
	"fmt"
	"time"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/services/features"
)

// CandlesUseCase reads stored candle ranges.
type CandlesUseCase struct {
	store domrepo.CandleStore
}

func NewCandlesUseCase(store domrepo.CandleStore) *CandlesUseCase {
	return &CandlesUseCase{store: store}
}

type GetCandlesParams struct {
	Symbol    string
	From      time.Time
	To        time.Time
	Timeframe domrepo.Timeframe
	Limit     int
}

type GetCandlesResult struct {
	Symbol    string          `json:"symbol"`
	Timeframe string          `json:"tf"`
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Count     int             `json:"count"`
	Candles   []models.Candle `json:"candles"`
}

// GetCandles aligns [From, To] to bar boundaries and returns at most Limit
// candles from the start of the range.
func (uc *CandlesUseCase) GetCandles(ctx context.Context, p GetCandlesParams) (*GetCandlesResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if !domrepo.IsValidTimeframe(p.Timeframe) {
		p.Timeframe = domrepo.DefaultTimeframe()
	}
	if p.Limit <= 0 {
		p.Limit = 1000
	}
	if p.Limit > 5000 {
		p.Limit = 5000
	}
	p.From, p.To = features.AlignFromTo(p.From, p.To, p.Timeframe)

	candles, err := uc.store.GetCandles(ctx, p.Symbol, p.From, p.To, p.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("get candles: %w", err)
	}
	if len(candles) > p.Limit {
		candles = candles[:p.Limit]
	}

	return &GetCandlesResult{
		Symbol:    p.Symbol,
		Timeframe: string(p.Timeframe),
		From:      p.From,
		To:        p.To,
		Count:     len(candles),
		Candles:   candles,
	}, nil
}
