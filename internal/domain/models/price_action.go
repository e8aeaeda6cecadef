package models

import "time"

type SwingType string

const (
	SwingHigh SwingType = "high"
	SwingLow  SwingType = "low"
)

type StructureLabel string

const (
	LabelHH StructureLabel = "HH"
	LabelHL StructureLabel = "HL"
	LabelLH StructureLabel = "LH"
	LabelLL StructureLabel = "LL"
)

// Bullish reports whether the label belongs to an advancing structure.
func (l StructureLabel) Bullish() bool { return l == LabelHH || l == LabelHL }

type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
)

type BreakType string

const (
	BreakBOS   BreakType = "BOS"
	BreakCHoCH BreakType = "CHoCH"
)

type Strength string

const (
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

// Rank orders strengths: weak < medium < strong.
func (s Strength) Rank() int {
	switch s {
	case StrengthStrong:
		return 3
	case StrengthMedium:
		return 2
	case StrengthWeak:
		return 1
	default:
		return 0
	}
}

type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendRanging Trend = "ranging"
)

type Phase string

const (
	PhaseAccumulation Phase = "accumulation"
	PhaseMarkup       Phase = "markup"
	PhaseDistribution Phase = "distribution"
	PhaseMarkdown     Phase = "markdown"
	PhaseUnknown      Phase = "unknown"
)

type Side string

const (
	SideBuy     Side = "BUY"
	SideSell    Side = "SELL"
	SideNeutral Side = "NEUTRAL"
)

type SwingPoint struct {
	Index int       `json:"index"`
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
	Type  SwingType `json:"type"`
}

type MarketStructurePoint struct {
	Index int            `json:"index"`
	Time  time.Time      `json:"time"`
	Price float64        `json:"price"`
	Type  SwingType      `json:"type"`
	Label StructureLabel `json:"label"`
}

type StructureBreak struct {
	Index       int       `json:"index"`
	Time        time.Time `json:"time"`
	Type        BreakType `json:"type"`
	Direction   Direction `json:"direction"`
	BrokenLevel float64   `json:"brokenLevel"`
	SwingIndex  int       `json:"swingIndex"`
	Strength    Strength  `json:"strength"`
}

type FairValueGap struct {
	StartIndex     int       `json:"startIndex"`
	EndIndex       int       `json:"endIndex"`
	High           float64   `json:"high"`
	Low            float64   `json:"low"`
	Midpoint       float64   `json:"midpoint"`
	Type           Direction `json:"type"`
	Filled         bool      `json:"filled"`
	FillPercentage float64   `json:"fillPercentage"`
	FilledIndex    int       `json:"filledIndex"` // -1 while open
}

type SweepType string

const (
	SweepBuySide  SweepType = "buy-side"
	SweepSellSide SweepType = "sell-side"
)

type LiquiditySweep struct {
	Index      int       `json:"index"`
	Time       time.Time `json:"time"`
	SwingIndex int       `json:"swingIndex"`
	SweptLevel float64   `json:"sweptLevel"`
	Type       SweepType `json:"type"`
	WickPct    float64   `json:"wickPct"`
	Recovered  bool      `json:"recovered"`
}

type EqualLevelType string

const (
	EqualHighs EqualLevelType = "equal-highs"
	EqualLows  EqualLevelType = "equal-lows"
)

type EqualLevel struct {
	Type          EqualLevelType `json:"type"`
	Prices        []float64      `json:"prices"`
	Indices       []int          `json:"indices"`
	AvgPrice      float64        `json:"avgPrice"`
	Count         int            `json:"count"`
	LiquidityPool bool           `json:"liquidityPool"`
}

type Displacement struct {
	StartIndex int       `json:"startIndex"`
	EndIndex   int       `json:"endIndex"`
	Direction  Direction `json:"direction"`
	SizePct    float64   `json:"sizePct"`
	Strength   Strength  `json:"strength"`
}

type FibLevel struct {
	Ratio float64 `json:"ratio"`
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

type FibonacciLevels struct {
	Direction Direction  `json:"direction"` // bullish: low came first
	SwingHigh SwingPoint `json:"swingHigh"`
	SwingLow  SwingPoint `json:"swingLow"`
	Levels    []FibLevel `json:"levels"`
}

type PriceActionSignalType string

const (
	SignalCHoCH        PriceActionSignalType = "choch"
	SignalBOS          PriceActionSignalType = "bos"
	SignalFVG          PriceActionSignalType = "fvg"
	SignalSweep        PriceActionSignalType = "liquidity_sweep"
	SignalEqualLevels  PriceActionSignalType = "equal_levels"
	SignalDisplacement PriceActionSignalType = "displacement"
)

type PriceActionSignal struct {
	Type        PriceActionSignalType `json:"type"`
	Direction   Side                  `json:"direction"`
	Confidence  float64               `json:"confidence"`
	Price       float64               `json:"price"`
	Index       int                   `json:"index"`
	Description string                `json:"description"`
}

// PriceActionAnalysis is the full structural read of one candle series.
type PriceActionAnalysis struct {
	CandleCount   int                    `json:"candleCount"`
	SwingHighs    []SwingPoint           `json:"swingHighs"`
	SwingLows     []SwingPoint           `json:"swingLows"`
	Structure     []MarketStructurePoint `json:"structure"`
	Breaks        []StructureBreak       `json:"breaks"`
	FVGs          []FairValueGap         `json:"fvgs"`
	Sweeps        []LiquiditySweep       `json:"sweeps"`
	EqualLevels   []EqualLevel           `json:"equalLevels"`
	Displacements []Displacement         `json:"displacements"`
	Fibonacci     *FibonacciLevels       `json:"fibonacci,omitempty"`
	Trend         Trend                  `json:"trend"`
	TrendStrength float64                `json:"trendStrength"`
	Phase         Phase                  `json:"phase"`
	Signals       []PriceActionSignal    `json:"signals"`
}
