// Package orderbook reconstructs a gapless bid/ask ladder from a REST depth
// snapshot followed by incremental diff events.
//
// Every function is pure: inputs are never mutated and every returned book
// owns fresh slices, so a caller may hand the previous value to readers on
// other goroutines while applying the next diff.
package orderbook

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"SignalDesk/internal/domain/models"
)

// Outcome classifies what TryApplyDiff did with a diff.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeStale
	OutcomeDesync
	OutcomeInvalid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeStale:
		return "stale"
	case OutcomeDesync:
		return "desync"
	case OutcomeInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// DiffResult is the non-failing form of ApplyDiff. Book is the updated book
// when Outcome is OutcomeApplied and a copy of the input otherwise.
type DiffResult struct {
	Book    models.OrderBook
	Outcome Outcome
	Err     error
}

type side int

const (
	bidSide side = iota
	askSide
)

// FromSnapshot builds a book from a depth snapshot. Zero-size levels are
// dropped, duplicate prices keep the last size seen.
func FromSnapshot(symbol string, snap models.DepthSnapshot) (models.OrderBook, error) {
	bids, err := mergeSide(nil, snap.Bids, bidSide)
	if err != nil {
		return models.OrderBook{}, fmt.Errorf("snapshot bids: %w", err)
	}
	asks, err := mergeSide(nil, snap.Asks, askSide)
	if err != nil {
		return models.OrderBook{}, fmt.Errorf("snapshot asks: %w", err)
	}
	return models.OrderBook{
		Symbol:       symbol,
		LastUpdateID: snap.LastUpdateID,
		Bids:         bids,
		Asks:         asks,
	}, nil
}

// ApplyDiff applies one diff. A stale diff (final id not past the book)
// returns the book unchanged and a nil error. A diff that neither bridges
// last+1 nor chains on pu returns a *DesyncError.
func ApplyDiff(book models.OrderBook, diff models.DepthDiff) (models.OrderBook, error) {
	res := TryApplyDiff(book, diff)
	return res.Book, res.Err
}

// TryApplyDiff runs the same acceptance rules as ApplyDiff and reports the
// outcome as a value.
func TryApplyDiff(book models.OrderBook, diff models.DepthDiff) DiffResult {
	last := book.LastUpdateID
	final := diff.FinalUpdateID
	first := final
	if diff.FirstUpdateID != nil {
		first = *diff.FirstUpdateID
	}

	if final <= last {
		return DiffResult{Book: Clone(book), Outcome: OutcomeStale}
	}

	bridges := first <= last+1 && final >= last+1
	chained := diff.PrevFinalUpdateID != nil && *diff.PrevFinalUpdateID == last
	if !bridges && !chained {
		return DiffResult{
			Book:    Clone(book),
			Outcome: OutcomeDesync,
			Err: &DesyncError{
				Symbol:            book.Symbol,
				LastUpdateID:      last,
				FirstUpdateID:     first,
				FinalUpdateID:     final,
				PrevFinalUpdateID: diff.PrevFinalUpdateID,
			},
		}
	}

	bids, err := mergeSide(book.Bids, diff.Bids, bidSide)
	if err != nil {
		return DiffResult{Book: Clone(book), Outcome: OutcomeInvalid, Err: fmt.Errorf("diff %d bids: %w", final, err)}
	}
	asks, err := mergeSide(book.Asks, diff.Asks, askSide)
	if err != nil {
		return DiffResult{Book: Clone(book), Outcome: OutcomeInvalid, Err: fmt.Errorf("diff %d asks: %w", final, err)}
	}

	return DiffResult{
		Book: models.OrderBook{
			Symbol:       book.Symbol,
			LastUpdateID: final,
			Bids:         bids,
			Asks:         asks,
		},
		Outcome: OutcomeApplied,
	}
}

// Clone returns a copy of book that shares no slices with it.
func Clone(book models.OrderBook) models.OrderBook {
	book.Bids = slices.Clone(book.Bids)
	book.Asks = slices.Clone(book.Asks)
	return book
}

// Top returns a copy of book truncated to n levels per side.
func Top(book models.OrderBook, n int) models.OrderBook {
	out := Clone(book)
	if n >= 0 && len(out.Bids) > n {
		out.Bids = out.Bids[:n]
	}
	if n >= 0 && len(out.Asks) > n {
		out.Asks = out.Asks[:n]
	}
	return out
}

func mergeSide(current []models.PriceLevel, updates []models.RawLevel, s side) ([]models.PriceLevel, error) {
	levels := make(map[string]models.PriceLevel, len(current)+len(updates))
	for _, lvl := range current {
		levels[priceKey(lvl.Price)] = lvl
	}
	for _, raw := range updates {
		lvl, err := parseLevel(raw)
		if err != nil {
			return nil, err
		}
		key := priceKey(lvl.Price)
		if lvl.Size.IsZero() {
			delete(levels, key)
			continue
		}
		levels[key] = lvl
	}

	out := make([]models.PriceLevel, 0, len(levels))
	for _, lvl := range levels {
		out = append(out, lvl)
	}
	if s == bidSide {
		slices.SortFunc(out, func(a, b models.PriceLevel) int { return b.Price.Cmp(a.Price) })
	} else {
		slices.SortFunc(out, func(a, b models.PriceLevel) int { return a.Price.Cmp(b.Price) })
	}
	return out, nil
}

func parseLevel(raw models.RawLevel) (models.PriceLevel, error) {
	price, err := decimal.NewFromString(raw[0].String())
	if err != nil {
		return models.PriceLevel{}, &LevelError{Price: raw[0].String(), Size: raw[1].String(), Err: err}
	}
	size, err := decimal.NewFromString(raw[1].String())
	if err != nil {
		return models.PriceLevel{}, &LevelError{Price: raw[0].String(), Size: raw[1].String(), Err: err}
	}
	if price.Sign() <= 0 {
		return models.PriceLevel{}, &LevelError{Price: raw[0].String(), Size: raw[1].String(), Err: errNonPositivePrice}
	}
	if size.IsNegative() {
		return models.PriceLevel{}, &LevelError{Price: raw[0].String(), Size: raw[1].String(), Err: errNegativeSize}
	}
	return models.PriceLevel{Price: price, Size: size}, nil
}

// priceKey canonicalizes a price so "1.50" and "1.5" address one level.
func priceKey(p decimal.Decimal) string { return p.String() }
