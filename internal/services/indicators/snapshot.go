package indicators

import (
	"errors"
	"fmt"
	"math"

	"SignalDesk/internal/domain/models"
)

// MinCandles is the shortest series Compute accepts.
const MinCandles = 50

var (
	ErrInsufficientData = errors.New("indicators: insufficient candles")
	ErrNotWarm          = errors.New("indicators: core indicators did not warm up")
)

// Calculator adapts Compute to service.IndicatorCalculator.
type Calculator struct{}

func NewCalculator() *Calculator { return &Calculator{} }

func (Calculator) Compute(candles []models.Candle) (models.IndicatorSnapshot, error) {
	return Compute(candles)
}

// Compute evaluates every indicator on the series and returns the values of
// the latest bar.
func Compute(candles []models.Candle) (models.IndicatorSnapshot, error) {
	n := len(candles)
	if n < MinCandles {
		return models.IndicatorSnapshot{}, fmt.Errorf("compute on %d candles (need %d): %w", n, MinCandles, ErrInsufficientData)
	}

	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	volume := make([]float64, n)
	for i, c := range candles {
		high[i], low[i], closes[i], volume[i] = c.High, c.Low, c.Close, c.Volume
	}

	macd, macdSig, hist := MACD(closes, 12, 26, 9)
	bands := Bollinger(closes, 20, 2)
	adx, plusDI, minusDI := ADX(high, low, closes, 14)
	stochK, stochD := StochRSI(closes, 14, 14, 3, 3)

	snap := models.IndicatorSnapshot{
		Close:             closes[n-1],
		EMA9:              last(EMA(closes, 9)),
		EMA21:             last(EMA(closes, 21)),
		EMA50:             last(EMA(closes, 50)),
		EMA200:            last(EMA(closes, 200)),
		RSI:               last(RSI(closes, 14)),
		MACD:              last(macd),
		MACDSignal:        last(macdSig),
		MACDHistogram:     last(hist),
		PrevMACDHistogram: hist[n-2],
		BBUpper:           last(bands.Upper),
		BBMiddle:          last(bands.Middle),
		BBLower:           last(bands.Lower),
		BBPercentB:        last(bands.PercentB),
		BBBandwidth:       last(bands.Bandwidth),
		ATR:               last(ATR(high, low, closes, 14)),
		ADX:               last(adx),
		PlusDI:            last(plusDI),
		MinusDI:           last(minusDI),
		StochRSIK:         last(stochK),
		StochRSID:         last(stochD),
		VWAP:              last(VWAP(high, low, closes, volume)),
		OBV:               last(OBV(closes, volume)),
		ROC:               last(ROC(closes, 10)),
		CCI:               last(CCI(high, low, closes, 20)),
	}

	for _, v := range []float64{snap.RSI, snap.ATR, snap.MACDHistogram, snap.BBMiddle} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return snap, ErrNotWarm
		}
	}
	return snap, nil
}
