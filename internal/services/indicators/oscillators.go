package indicators

import "math"

// RSI is Wilder's relative strength index. The first value is at index period.
func RSI(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

// MACD returns the MACD line, its signal line and the histogram.
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist []float64) {
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	line = nanSeries(len(closes))
	for i := range closes {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	sig = EMA(line, signal)
	hist = nanSeries(len(closes))
	for i := range closes {
		hist[i] = line[i] - sig[i]
	}
	return line, sig, hist
}

// StochRSI applies the stochastic oscillator to RSI and smooths it into %K
// and %D, both on a 0..100 scale.
func StochRSI(closes []float64, rsiPeriod, stochPeriod, kPeriod, dPeriod int) (k, d []float64) {
	rsi := RSI(closes, rsiPeriod)
	stoch := nanSeries(len(closes))
	for i := range rsi {
		if i < stochPeriod-1 {
			continue
		}
		lo, hi := math.Inf(1), math.Inf(-1)
		ok := true
		for j := i - stochPeriod + 1; j <= i; j++ {
			if math.IsNaN(rsi[j]) {
				ok = false
				break
			}
			lo = math.Min(lo, rsi[j])
			hi = math.Max(hi, rsi[j])
		}
		if !ok {
			continue
		}
		if hi == lo {
			stoch[i] = 50
			continue
		}
		stoch[i] = (rsi[i] - lo) / (hi - lo) * 100
	}
	k = SMA(stoch, kPeriod)
	d = SMA(k, dPeriod)
	return k, d
}

// ROC is the percent rate of change over period bars.
func ROC(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	for i := period; i < len(closes); i++ {
		if prev := closes[i-period]; prev != 0 {
			out[i] = (closes[i] - prev) / prev * 100
		}
	}
	return out
}

// CCI is the commodity channel index over typical prices.
func CCI(high, low, closes []float64, period int) []float64 {
	tp := typicalPrices(high, low, closes)
	mean := SMA(tp, period)
	out := nanSeries(len(closes))
	for i := range tp {
		if math.IsNaN(mean[i]) {
			continue
		}
		var dev float64
		for j := i - period + 1; j <= i; j++ {
			dev += math.Abs(tp[j] - mean[i])
		}
		dev /= float64(period)
		if dev == 0 {
			out[i] = 0
			continue
		}
		out[i] = (tp[i] - mean[i]) / (0.015 * dev)
	}
	return out
}

func typicalPrices(high, low, closes []float64) []float64 {
	tp := make([]float64, len(closes))
	for i := range closes {
		tp[i] = (high[i] + low[i] + closes[i]) / 3
	}
	return tp
}
