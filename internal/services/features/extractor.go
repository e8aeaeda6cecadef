package features

import (
	"math"
	"time"

	"SignalDesk/internal/domain/models"
	domrepo "SignalDesk/internal/domain/repository"
)

// volWindow is the rolling window for realized volatility.
const volWindow = 60

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(candles)-1, or nil if insufficient data.
func ComputeLogReturns(candles []models.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	out := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		cur := candles[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// RealizedVolatility computes annualized realized volatility over a rolling window
// using the provided number of bars per year. Returns the latest window sigma.
func RealizedVolatility(logReturns []float64, window int, barsPerYear float64) float64 {
	if window <= 1 || len(logReturns) < window {
		return 0
	}
	sum := 0.0
	sum2 := 0.0
	for i := len(logReturns) - window; i < len(logReturns); i++ {
		r := logReturns[i]
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	// annualize
	return math.Sqrt(variance * barsPerYear)
}

// RegimeRow is one bar of regime features: close-to-close return, high-low
// range over close, and volume change, all as fractions.
type RegimeRow struct {
	Time      time.Time
	Return    float64
	Range     float64
	VolChange float64
}

// ComputeRegimeRows builds a row for every bar after the first. Rows with a
// NaN or infinite feature (zero volume, zero close) are dropped.
func ComputeRegimeRows(candles []models.Candle) []RegimeRow {
	if len(candles) < 2 {
		return nil
	}
	rows := make([]RegimeRow, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev, cur := candles[i-1], candles[i]
		row := RegimeRow{
			Time:      cur.Time,
			Return:    pctChange(prev.Close, cur.Close),
			Range:     (cur.High - cur.Low) / cur.Close,
			VolChange: pctChange(prev.Volume, cur.Volume),
		}
		if !usable(row.Return, row.Range, row.VolChange) {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// Summarize reduces candles to the report-level regime features. It returns
// nil when no usable row exists.
func Summarize(candles []models.Candle, tf domrepo.Timeframe) *models.RegimeFeatures {
	rows := ComputeRegimeRows(candles)
	if len(rows) == 0 {
		return nil
	}
	var ret, rng, vol float64
	for _, r := range rows {
		ret += r.Return
		rng += r.Range
		vol += r.VolChange
	}
	n := float64(len(rows))
	window := min(volWindow, len(candles)-1)
	return &models.RegimeFeatures{
		Rows:        len(rows),
		MeanReturn:  ret / n,
		MeanRange:   rng / n,
		MeanVolChg:  vol / n,
		RealizedVol: RealizedVolatility(ComputeLogReturns(candles), window, tf.BarsPerYear()),
	}
}

// AlignFromTo rounds a time range down to candle boundaries.
func AlignFromTo(from, to time.Time, tf domrepo.Timeframe) (time.Time, time.Time) {
	d := tf.Duration()
	return from.Truncate(d), to.Truncate(d)
}

func pctChange(prev, cur float64) float64 {
	return (cur - prev) / prev
}

func usable(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
