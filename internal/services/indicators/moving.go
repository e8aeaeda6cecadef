// Package indicators implements the technical indicators used by the
// scorer. Series functions return a slice the length of their input with NaN
// in the warm-up positions.
package indicators

import "math"

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func firstFinite(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return i
		}
	}
	return len(values)
}

// SMA is the simple moving average. Any NaN inside a window yields NaN.
func SMA(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}
	var sum float64
	bad := 0
	for i, v := range values {
		if math.IsNaN(v) {
			bad++
		} else {
			sum += v
		}
		if i >= period {
			old := values[i-period]
			if math.IsNaN(old) {
				bad--
			} else {
				sum -= old
			}
		}
		if i >= period-1 && bad == 0 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA is the exponential moving average seeded with the SMA of the first
// period finite values. Leading NaNs are skipped.
func EMA(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}
	start := firstFinite(values)
	seedAt := start + period - 1
	if seedAt >= len(values) {
		return out
	}
	var sum float64
	for i := start; i <= seedAt; i++ {
		sum += values[i]
	}
	prev := sum / float64(period)
	out[seedAt] = prev
	k := 2.0 / float64(period+1)
	for i := seedAt + 1; i < len(values); i++ {
		prev = values[i]*k + prev*(1-k)
		out[i] = prev
	}
	return out
}

// StdDev is the rolling population standard deviation.
func StdDev(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	mean := SMA(values, period)
	for i := period - 1; i < len(values); i++ {
		if i < 0 || math.IsNaN(mean[i]) {
			continue
		}
		var ss float64
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - mean[i]
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(period))
	}
	return out
}

// wilder smooths values with Wilder's method, seeding with the mean of
// values[from : from+period].
func wilder(values []float64, period, from int) []float64 {
	out := nanSeries(len(values))
	seedAt := from + period - 1
	if period <= 0 || from < 0 || seedAt >= len(values) {
		return out
	}
	var sum float64
	for i := from; i <= seedAt; i++ {
		sum += values[i]
	}
	prev := sum / float64(period)
	out[seedAt] = prev
	for i := seedAt + 1; i < len(values); i++ {
		prev = (prev*float64(period-1) + values[i]) / float64(period)
		out[i] = prev
	}
	return out
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}
