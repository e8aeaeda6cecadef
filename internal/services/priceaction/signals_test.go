package priceaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalDesk/internal/domain/models"
)

type wantSignal struct {
	typ  models.PriceActionSignalType
	side models.Side
	conf float64
}

func TestGenerateSignals_Rules(t *testing.T) {
	c := flat(30) // last close 100, recent window starts at bar 20
	tests := []struct {
		name string
		a    models.PriceActionAnalysis
		want []wantSignal
	}{
		{
			name: "choch",
			a:    models.PriceActionAnalysis{Breaks: []models.StructureBreak{{Index: 25, Type: models.BreakCHoCH, Direction: models.DirectionBullish, BrokenLevel: 99}}},
			want: []wantSignal{{models.SignalCHoCH, models.SideBuy, 80}},
		},
		{
			name: "bos with trend",
			a: models.PriceActionAnalysis{Trend: models.TrendBearish,
				Breaks: []models.StructureBreak{{Index: 25, Type: models.BreakBOS, Direction: models.DirectionBearish, BrokenLevel: 101}}},
			want: []wantSignal{{models.SignalBOS, models.SideSell, 75}},
		},
		{
			name: "bos against trend",
			a: models.PriceActionAnalysis{Trend: models.TrendBullish,
				Breaks: []models.StructureBreak{{Index: 28, Type: models.BreakBOS, Direction: models.DirectionBearish, BrokenLevel: 101}}},
			want: []wantSignal{{models.SignalBOS, models.SideSell, 55}},
		},
		{
			name: "old break ignored",
			a:    models.PriceActionAnalysis{Breaks: []models.StructureBreak{{Index: 19, Type: models.BreakCHoCH, Direction: models.DirectionBullish}}},
		},
		{
			name: "unfilled fvg near price",
			a:    models.PriceActionAnalysis{FVGs: []models.FairValueGap{{EndIndex: 12, Low: 100.5, High: 101.5, Midpoint: 101, Type: models.DirectionBullish, FilledIndex: -1}}},
			want: []wantSignal{{models.SignalFVG, models.SideBuy, 60}},
		},
		{
			name: "fvg too far or filled",
			a: models.PriceActionAnalysis{FVGs: []models.FairValueGap{
				{EndIndex: 12, Midpoint: 102.5, Type: models.DirectionBearish, FilledIndex: -1},
				{EndIndex: 14, Midpoint: 100.2, Type: models.DirectionBearish, Filled: true, FillPercentage: 100, FilledIndex: 20},
			}},
		},
		{
			name: "recovered sell-side sweep",
			a:    models.PriceActionAnalysis{Sweeps: []models.LiquiditySweep{{Index: 24, SweptLevel: 99, Type: models.SweepSellSide, Recovered: true}}},
			want: []wantSignal{{models.SignalSweep, models.SideBuy, 70}},
		},
		{
			name: "recovered buy-side sweep",
			a:    models.PriceActionAnalysis{Sweeps: []models.LiquiditySweep{{Index: 24, SweptLevel: 101, Type: models.SweepBuySide, Recovered: true}}},
			want: []wantSignal{{models.SignalSweep, models.SideSell, 70}},
		},
		{
			name: "unrecovered sweep ignored",
			a:    models.PriceActionAnalysis{Sweeps: []models.LiquiditySweep{{Index: 24, SweptLevel: 99, Type: models.SweepSellSide}}},
		},
		{
			name: "equal level near price",
			a: models.PriceActionAnalysis{EqualLevels: []models.EqualLevel{
				{Type: models.EqualHighs, Indices: []int{3, 9}, AvgPrice: 100.4, Count: 2},
				{Type: models.EqualLows, Indices: []int{4, 11}, AvgPrice: 99.2, Count: 2},
			}},
			want: []wantSignal{{models.SignalEqualLevels, models.SideNeutral, 55}},
		},
		{
			name: "displacement strengths",
			a: models.PriceActionAnalysis{Displacements: []models.Displacement{
				{StartIndex: 24, EndIndex: 25, Direction: models.DirectionBearish, Strength: models.StrengthWeak},
				{StartIndex: 26, EndIndex: 27, Direction: models.DirectionBullish, Strength: models.StrengthMedium},
				{StartIndex: 28, EndIndex: 29, Direction: models.DirectionBullish, Strength: models.StrengthStrong},
				{StartIndex: 20, EndIndex: 24, Direction: models.DirectionBullish, Strength: models.StrengthStrong},
			}},
			want: []wantSignal{
				{models.SignalDisplacement, models.SideBuy, 75},
				{models.SignalDisplacement, models.SideBuy, 60},
				{models.SignalDisplacement, models.SideSell, 45},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generateSignals(c, tt.a)
			require.Len(t, got, len(tt.want))
			for i, w := range tt.want {
				assert.Equal(t, w.typ, got[i].Type)
				assert.Equal(t, w.side, got[i].Direction)
				assert.InDelta(t, w.conf, got[i].Confidence, 1e-9)
			}
		})
	}
}

func TestGenerateSignals_SortedByConfidence(t *testing.T) {
	a := models.PriceActionAnalysis{
		Trend:       models.TrendBullish,
		Breaks:      []models.StructureBreak{{Index: 28, Type: models.BreakBOS, Direction: models.DirectionBearish}},
		EqualLevels: []models.EqualLevel{{Type: models.EqualHighs, Indices: []int{3, 9}, AvgPrice: 100.1, Count: 2}},
		Sweeps:      []models.LiquiditySweep{{Index: 24, Type: models.SweepSellSide, Recovered: true}},
	}
	got := generateSignals(flat(30), a)
	require.Len(t, got, 3)
	assert.Equal(t, models.SignalSweep, got[0].Type)
	// equal confidence keeps generation order: breaks before equal levels
	assert.Equal(t, models.SignalBOS, got[1].Type)
	assert.Equal(t, models.SignalEqualLevels, got[2].Type)
}
