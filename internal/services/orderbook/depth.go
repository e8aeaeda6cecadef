package orderbook

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"SignalDesk/internal/domain/models"
)

var (
	ErrEmptyBook   = errors.New("orderbook: empty side")
	ErrCrossedBook = errors.New("orderbook: crossed")
)

var (
	two       = decimal.NewFromInt(2)
	tenThousd = decimal.NewFromInt(10000)
)

// Summarize computes top-of-book metrics over the first topN levels of each
// side. Imbalance is (bid - ask) / (bid + ask) in [-1, 1].
func Summarize(book models.OrderBook, topN int) (models.DepthSummary, error) {
	if topN <= 0 {
		return models.DepthSummary{}, fmt.Errorf("summarize: topN must be positive, got %d", topN)
	}
	if len(book.Bids) == 0 || len(book.Asks) == 0 {
		return models.DepthSummary{}, fmt.Errorf("summarize %s: bids=%d asks=%d: %w",
			book.Symbol, len(book.Bids), len(book.Asks), ErrEmptyBook)
	}

	bestBid, bestAsk := book.Bids[0], book.Asks[0]
	if bestBid.Price.GreaterThanOrEqual(bestAsk.Price) {
		return models.DepthSummary{}, fmt.Errorf("summarize %s: bid=%s ask=%s: %w",
			book.Symbol, bestBid.Price, bestAsk.Price, ErrCrossedBook)
	}

	bidDepth := sumSizes(book.Bids, topN)
	askDepth := sumSizes(book.Asks, topN)
	total := bidDepth.Add(askDepth)
	imbalance := bidDepth.Sub(askDepth).Div(total).InexactFloat64()

	mid := bestBid.Price.Add(bestAsk.Price).Div(two)
	micro := bestAsk.Price.Mul(bestBid.Size).
		Add(bestBid.Price.Mul(bestAsk.Size)).
		Div(bestBid.Size.Add(bestAsk.Size))
	spread := bestAsk.Price.Sub(bestBid.Price).Div(bestBid.Price).Mul(tenThousd)

	levels := topN
	if n := min(len(book.Bids), len(book.Asks)); n < levels {
		levels = n
	}

	return models.DepthSummary{
		Symbol:       book.Symbol,
		BestBid:      bestBid.Price,
		BestAsk:      bestAsk.Price,
		Mid:          mid,
		MicroPrice:   micro.Round(8),
		SpreadBps:    spread.Round(4).InexactFloat64(),
		BidDepth:     bidDepth,
		AskDepth:     askDepth,
		Imbalance:    imbalance,
		Levels:       levels,
		LastUpdateID: book.LastUpdateID,
	}, nil
}

func sumSizes(levels []models.PriceLevel, n int) decimal.Decimal {
	total := decimal.Zero
	for i := 0; i < n && i < len(levels); i++ {
		total = total.Add(levels[i].Size)
	}
	return total
}
