package indicators

import "math"

// TrueRange uses high-low for the first bar.
func TrueRange(high, low, closes []float64) []float64 {
	tr := make([]float64, len(closes))
	for i := range closes {
		tr[i] = high[i] - low[i]
		if i > 0 {
			tr[i] = math.Max(tr[i], math.Max(math.Abs(high[i]-closes[i-1]), math.Abs(low[i]-closes[i-1])))
		}
	}
	return tr
}

// ATR is Wilder's average true range.
func ATR(high, low, closes []float64, period int) []float64 {
	return wilder(TrueRange(high, low, closes), period, 0)
}

// Bands holds Bollinger band series. PercentB is 0 at the lower band and 1
// at the upper; Bandwidth is the band width as a percent of the middle.
type Bands struct {
	Upper, Middle, Lower, PercentB, Bandwidth []float64
}

func Bollinger(closes []float64, period int, mult float64) Bands {
	n := len(closes)
	b := Bands{
		Upper:     nanSeries(n),
		Middle:    SMA(closes, period),
		Lower:     nanSeries(n),
		PercentB:  nanSeries(n),
		Bandwidth: nanSeries(n),
	}
	sd := StdDev(closes, period)
	for i := range closes {
		if math.IsNaN(b.Middle[i]) || math.IsNaN(sd[i]) {
			continue
		}
		b.Upper[i] = b.Middle[i] + mult*sd[i]
		b.Lower[i] = b.Middle[i] - mult*sd[i]
		width := b.Upper[i] - b.Lower[i]
		if width > 0 {
			b.PercentB[i] = (closes[i] - b.Lower[i]) / width
		} else {
			b.PercentB[i] = 0.5
		}
		if b.Middle[i] != 0 {
			b.Bandwidth[i] = width / b.Middle[i] * 100
		}
	}
	return b
}

// ADX returns the average directional index with the +DI and -DI lines.
func ADX(high, low, closes []float64, period int) (adx, plusDI, minusDI []float64) {
	n := len(closes)
	adx, plusDI, minusDI = nanSeries(n), nanSeries(n), nanSeries(n)
	if period <= 0 || n < 2*period {
		return adx, plusDI, minusDI
	}

	tr := TrueRange(high, low, closes)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	var smTR, smPlus, smMinus float64
	for i := 1; i <= period; i++ {
		smTR += tr[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}
	dx := nanSeries(n)
	for i := period; i < n; i++ {
		if i > period {
			smTR = smTR - smTR/float64(period) + tr[i]
			smPlus = smPlus - smPlus/float64(period) + plusDM[i]
			smMinus = smMinus - smMinus/float64(period) + minusDM[i]
		}
		if smTR == 0 {
			plusDI[i], minusDI[i], dx[i] = 0, 0, 0
			continue
		}
		plusDI[i] = 100 * smPlus / smTR
		minusDI[i] = 100 * smMinus / smTR
		if sum := plusDI[i] + minusDI[i]; sum > 0 {
			dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / sum
		} else {
			dx[i] = 0
		}
	}
	adx = wilder(dx, period, period)
	return adx, plusDI, minusDI
}
