package priceaction

// MinCandles is the shortest series Analyze reads structure from.
const MinCandles = 15

// Config tunes the analyzer. Percent fields are percent of price. Zero or
// negative fields take the DefaultConfig value.
type Config struct {
	SwingLeftBars          int     `yaml:"swing_left_bars" json:"swingLeftBars"`
	SwingRightBars         int     `yaml:"swing_right_bars" json:"swingRightBars"`
	FVGMinGapPct           float64 `yaml:"fvg_min_gap_pct" json:"fvgMinGapPct"`
	EqualLevelTolerancePct float64 `yaml:"equal_level_tolerance_pct" json:"equalLevelTolerancePct"`
	DisplacementMinPct     float64 `yaml:"displacement_min_pct" json:"displacementMinPct"`
	SweepWickThresholdPct  float64 `yaml:"sweep_wick_threshold_pct" json:"sweepWickThresholdPct"`
	BreakLookahead         int     `yaml:"break_lookahead" json:"breakLookahead"`
	SweepLookahead         int     `yaml:"sweep_lookahead" json:"sweepLookahead"`
}

func DefaultConfig() Config {
	return Config{
		SwingLeftBars:          3,
		SwingRightBars:         3,
		FVGMinGapPct:           0.05,
		EqualLevelTolerancePct: 0.1,
		DisplacementMinPct:     0.5,
		SweepWickThresholdPct:  0.05,
		BreakLookahead:         20,
		SweepLookahead:         20,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SwingLeftBars <= 0 {
		c.SwingLeftBars = d.SwingLeftBars
	}
	if c.SwingRightBars <= 0 {
		c.SwingRightBars = d.SwingRightBars
	}
	if c.FVGMinGapPct <= 0 {
		c.FVGMinGapPct = d.FVGMinGapPct
	}
	if c.EqualLevelTolerancePct <= 0 {
		c.EqualLevelTolerancePct = d.EqualLevelTolerancePct
	}
	if c.DisplacementMinPct <= 0 {
		c.DisplacementMinPct = d.DisplacementMinPct
	}
	if c.SweepWickThresholdPct <= 0 {
		c.SweepWickThresholdPct = d.SweepWickThresholdPct
	}
	if c.BreakLookahead <= 0 {
		c.BreakLookahead = d.BreakLookahead
	}
	if c.SweepLookahead <= 0 {
		c.SweepLookahead = d.SweepLookahead
	}
	return c
}
