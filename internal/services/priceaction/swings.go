package priceaction

import (
	"cmp"
	"slices"

	"SignalDesk/internal/domain/models"
)

// findSwings marks bar i as a swing high when every bar in
// [i-left, i+right] other than i has a strictly lower high; swing lows
// mirror this on lows. Bars without a full window on both sides never
// qualify.
func findSwings(candles []models.Candle, left, right int) (highs, lows []models.SwingPoint) {
	highs = []models.SwingPoint{}
	lows = []models.SwingPoint{}
	for i := left; i < len(candles)-right; i++ {
		if isSwingHigh(candles, i, left, right) {
			highs = append(highs, models.SwingPoint{Index: i, Time: candles[i].Time, Price: candles[i].High, Type: models.SwingHigh})
		}
		if isSwingLow(candles, i, left, right) {
			lows = append(lows, models.SwingPoint{Index: i, Time: candles[i].Time, Price: candles[i].Low, Type: models.SwingLow})
		}
	}
	return highs, lows
}

func isSwingHigh(candles []models.Candle, i, left, right int) bool {
	for j := i - left; j <= i+right; j++ {
		if j != i && candles[j].High >= candles[i].High {
			return false
		}
	}
	return true
}

func isSwingLow(candles []models.Candle, i, left, right int) bool {
	for j := i - left; j <= i+right; j++ {
		if j != i && candles[j].Low <= candles[i].Low {
			return false
		}
	}
	return true
}

// labelStructure labels each swing against the previous swing of the same
// type. The first high and first low have nothing to compare with and are
// left out. Output is ordered by bar index.
func labelStructure(highs, lows []models.SwingPoint) []models.MarketStructurePoint {
	points := make([]models.MarketStructurePoint, 0, len(highs)+len(lows))
	for k := 1; k < len(highs); k++ {
		label := models.LabelLH
		if highs[k].Price > highs[k-1].Price {
			label = models.LabelHH
		}
		points = append(points, structurePoint(highs[k], label))
	}
	for k := 1; k < len(lows); k++ {
		label := models.LabelLL
		if lows[k].Price > lows[k-1].Price {
			label = models.LabelHL
		}
		points = append(points, structurePoint(lows[k], label))
	}
	slices.SortStableFunc(points, func(a, b models.MarketStructurePoint) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return points
}

func structurePoint(s models.SwingPoint, label models.StructureLabel) models.MarketStructurePoint {
	return models.MarketStructurePoint{Index: s.Index, Time: s.Time, Price: s.Price, Type: s.Type, Label: label}
}
