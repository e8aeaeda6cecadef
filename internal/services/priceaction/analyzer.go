// Package priceaction reads market structure from a candle series: swing
// points and their HH/HL/LH/LL labels, structure breaks, fair value gaps,
// liquidity sweeps, equal highs and lows, displacement moves, Fibonacci
// retracements, trend and market phase, and the signals derived from them.
package priceaction

import "SignalDesk/internal/domain/models"

// Analyzer binds a Config to Analyze.
type Analyzer struct {
	cfg Config
}

func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg.withDefaults()}
}

func (a *Analyzer) Config() Config { return a.cfg }

func (a *Analyzer) Analyze(candles []models.Candle) models.PriceActionAnalysis {
	return Analyze(candles, a.cfg)
}

// Analyze runs every stage over candles. Series shorter than MinCandles
// produce EmptyAnalysis.
func Analyze(candles []models.Candle, cfg Config) models.PriceActionAnalysis {
	if len(candles) < MinCandles {
		return EmptyAnalysis(len(candles))
	}
	cfg = cfg.withDefaults()

	highs, lows := findSwings(candles, cfg.SwingLeftBars, cfg.SwingRightBars)
	structure := labelStructure(highs, lows)
	displacements := detectDisplacements(candles, cfg.DisplacementMinPct)
	trend, strength := classifyTrend(structure)

	a := models.PriceActionAnalysis{
		CandleCount:   len(candles),
		SwingHighs:    highs,
		SwingLows:     lows,
		Structure:     structure,
		Breaks:        detectBreaks(candles, highs, lows, structure, cfg.BreakLookahead),
		FVGs:          detectFVGs(candles, cfg.FVGMinGapPct),
		Sweeps:        detectSweeps(candles, highs, lows, cfg.SweepWickThresholdPct, cfg.SweepLookahead),
		EqualLevels:   findEqualLevels(highs, lows, cfg.EqualLevelTolerancePct),
		Displacements: displacements,
		Fibonacci:     fibonacciLevels(highs, lows),
		Trend:         trend,
		TrendStrength: strength,
		Phase:         classifyPhase(candles, trend, displacements),
	}
	a.Signals = generateSignals(candles, a)
	return a
}

// EmptyAnalysis is the result for a series too short to read.
func EmptyAnalysis(n int) models.PriceActionAnalysis {
	return models.PriceActionAnalysis{
		CandleCount:   n,
		SwingHighs:    []models.SwingPoint{},
		SwingLows:     []models.SwingPoint{},
		Structure:     []models.MarketStructurePoint{},
		Breaks:        []models.StructureBreak{},
		FVGs:          []models.FairValueGap{},
		Sweeps:        []models.LiquiditySweep{},
		EqualLevels:   []models.EqualLevel{},
		Displacements: []models.Displacement{},
		Trend:         models.TrendRanging,
		Phase:         models.PhaseUnknown,
		Signals:       []models.PriceActionSignal{},
	}
}
