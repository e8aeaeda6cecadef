package indicators

// VWAP is the cumulative volume-weighted typical price from the first bar.
func VWAP(high, low, closes, volume []float64) []float64 {
	out := nanSeries(len(closes))
	var pv, vol float64
	for i := range closes {
		tp := (high[i] + low[i] + closes[i]) / 3
		pv += tp * volume[i]
		vol += volume[i]
		if vol > 0 {
			out[i] = pv / vol
		}
	}
	return out
}

// OBV is on-balance volume starting at zero.
func OBV(closes, volume []float64) []float64 {
	out := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volume[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volume[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}
