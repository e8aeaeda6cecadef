package priceaction

import (
	"fmt"

	"SignalDesk/internal/domain/models"
)

var fibRatios = []float64{0, 0.236, 0.382, 0.5, 0.618, 0.786, 1}

// fibonacciLevels measures retracements between the latest swing high and
// latest swing low. When the low came first the move is up and levels hang
// down from the high; otherwise they rise from the low.
func fibonacciLevels(highs, lows []models.SwingPoint) *models.FibonacciLevels {
	if len(highs) == 0 || len(lows) == 0 {
		return nil
	}
	hi, lo := highs[len(highs)-1], lows[len(lows)-1]
	span := hi.Price - lo.Price
	if span <= 0 {
		return nil
	}

	up := lo.Index < hi.Index
	fib := &models.FibonacciLevels{
		Direction: models.DirectionBearish,
		SwingHigh: hi,
		SwingLow:  lo,
		Levels:    make([]models.FibLevel, 0, len(fibRatios)),
	}
	if up {
		fib.Direction = models.DirectionBullish
	}
	for _, r := range fibRatios {
		price := lo.Price + span*r
		if up {
			price = hi.Price - span*r
		}
		fib.Levels = append(fib.Levels, models.FibLevel{
			Ratio: r,
			Label: fmt.Sprintf("%.1f%%", r*100),
			Price: price,
		})
	}
	return fib
}
