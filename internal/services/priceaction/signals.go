package priceaction

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"SignalDesk/internal/domain/models"
)

const (
	maxSignals             = 8
	signalRecentBars       = 10
	displacementRecentBars = 5
	fvgProximityPct        = 2.0
	equalProximityPct      = 0.5

	confCHoCH          = 80
	confBOSAligned     = 75
	confBOSCounter     = 55
	confFVG            = 60
	confSweep          = 70
	confEqualLevel     = 55
	confDisplaceWeak   = 45
	confDisplaceMedium = 60
	confDisplaceStrong = 75
)

func generateSignals(candles []models.Candle, a models.PriceActionAnalysis) []models.PriceActionSignal {
	n := len(candles)
	price := candles[n-1].Close
	out := make([]models.PriceActionSignal, 0)

	for _, b := range a.Breaks {
		if b.Index < n-signalRecentBars {
			continue
		}
		s := models.PriceActionSignal{
			Type:      models.SignalBOS,
			Direction: sideOf(b.Direction),
			Price:     b.BrokenLevel,
			Index:     b.Index,
		}
		switch {
		case b.Type == models.BreakCHoCH:
			s.Type = models.SignalCHoCH
			s.Confidence = confCHoCH
		case aligned(b.Direction, a.Trend):
			s.Confidence = confBOSAligned
		default:
			s.Confidence = confBOSCounter
		}
		s.Description = fmt.Sprintf("%s %s through %.4f (%s)", b.Direction, b.Type, b.BrokenLevel, b.Strength)
		out = append(out, s)
	}

	for _, g := range a.FVGs {
		if g.Filled || price <= 0 || math.Abs(g.Midpoint-price)/price*100 > fvgProximityPct {
			continue
		}
		out = append(out, models.PriceActionSignal{
			Type:        models.SignalFVG,
			Direction:   sideOf(g.Type),
			Confidence:  confFVG,
			Price:       g.Midpoint,
			Index:       g.EndIndex,
			Description: fmt.Sprintf("unfilled %s FVG %.4f-%.4f, %.0f%% filled", g.Type, g.Low, g.High, g.FillPercentage),
		})
	}

	for _, s := range a.Sweeps {
		if !s.Recovered || s.Index < n-signalRecentBars {
			continue
		}
		side := models.SideSell
		if s.Type == models.SweepSellSide {
			side = models.SideBuy
		}
		out = append(out, models.PriceActionSignal{
			Type:        models.SignalSweep,
			Direction:   side,
			Confidence:  confSweep,
			Price:       s.SweptLevel,
			Index:       s.Index,
			Description: fmt.Sprintf("%s liquidity swept at %.4f and recovered", s.Type, s.SweptLevel),
		})
	}

	for _, lvl := range a.EqualLevels {
		if price <= 0 || math.Abs(lvl.AvgPrice-price)/price*100 > equalProximityPct {
			continue
		}
		out = append(out, models.PriceActionSignal{
			Type:        models.SignalEqualLevels,
			Direction:   models.SideNeutral,
			Confidence:  confEqualLevel,
			Price:       lvl.AvgPrice,
			Index:       lvl.Indices[len(lvl.Indices)-1],
			Description: fmt.Sprintf("%d %s near %.4f", lvl.Count, lvl.Type, lvl.AvgPrice),
		})
	}

	for _, d := range a.Displacements {
		if d.EndIndex < n-displacementRecentBars {
			continue
		}
		conf := confDisplaceWeak
		switch d.Strength {
		case models.StrengthStrong:
			conf = confDisplaceStrong
		case models.StrengthMedium:
			conf = confDisplaceMedium
		}
		out = append(out, models.PriceActionSignal{
			Type:        models.SignalDisplacement,
			Direction:   sideOf(d.Direction),
			Confidence:  float64(conf),
			Price:       candles[d.EndIndex].Close,
			Index:       d.EndIndex,
			Description: fmt.Sprintf("%s %s displacement of %.2f%%", d.Strength, d.Direction, d.SizePct),
		})
	}

	slices.SortStableFunc(out, func(x, y models.PriceActionSignal) int { return cmp.Compare(y.Confidence, x.Confidence) })
	if len(out) > maxSignals {
		out = out[:maxSignals]
	}
	return out
}

func sideOf(d models.Direction) models.Side {
	if d == models.DirectionBullish {
		return models.SideBuy
	}
	return models.SideSell
}

func aligned(d models.Direction, t models.Trend) bool {
	return (d == models.DirectionBullish && t == models.TrendBullish) ||
		(d == models.DirectionBearish && t == models.TrendBearish)
}
