package orderbook

import (
	"errors"
	"fmt"
)

// ErrDesync reports that a diff does not continue the book's update sequence.
var ErrDesync = errors.New("orderbook: update sequence gap")

// DesyncError carries the ids involved in a rejected diff. The book it was
// applied to cannot be recovered; a fresh snapshot is required.
type DesyncError struct {
	Symbol            string
	LastUpdateID      uint64
	FirstUpdateID     uint64
	FinalUpdateID     uint64
	PrevFinalUpdateID *uint64
}

func (e *DesyncError) Error() string {
	pu := "none"
	if e.PrevFinalUpdateID != nil {
		pu = fmt.Sprintf("%d", *e.PrevFinalUpdateID)
	}
	return fmt.Sprintf("orderbook %s: desync: last=%d U=%d u=%d pu=%s",
		e.Symbol, e.LastUpdateID, e.FirstUpdateID, e.FinalUpdateID, pu)
}

func (e *DesyncError) Is(target error) bool { return target == ErrDesync }

// LevelError reports a price level that could not be parsed.
type LevelError struct {
	Price string
	Size  string
	Err   error
}

func (e *LevelError) Error() string {
	return fmt.Sprintf("invalid level [%q, %q]: %v", e.Price, e.Size, e.Err)
}

func (e *LevelError) Unwrap() error { return e.Err }

var (
	errNonPositivePrice = errors.New("price must be positive")
	errNegativeSize     = errors.New("size must not be negative")
)
