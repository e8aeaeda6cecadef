package scoring

import "SignalDesk/internal/domain/models"

func breakdown(in input) models.ScoreBreakdown {
	ind := in.ind
	var b models.ScoreBreakdown

	if finite(ind.RSI) {
		b.Indicators += ind.RSI - 50
	}
	if finite(ind.MACDHistogram) {
		b.Indicators += 20 * sign(ind.MACDHistogram)
	}
	if finite(ind.CCI) {
		b.Indicators += clamp(ind.CCI/5, -30, 30)
	}

	switch in.pa.Trend {
	case models.TrendBullish:
		b.PriceAction += in.pa.TrendStrength * 0.5
	case models.TrendBearish:
		b.PriceAction -= in.pa.TrendStrength * 0.5
	}
	for _, s := range in.pa.Signals {
		switch s.Direction {
		case models.SideBuy:
			b.PriceAction += 0.25 * s.Confidence
		case models.SideSell:
			b.PriceAction -= 0.25 * s.Confidence
		}
	}

	if finite(ind.ROC) {
		b.Momentum += ind.ROC * 2
	}
	if finite(ind.MACDHistogram) {
		b.Momentum += 10 * sign(ind.MACDHistogram)
	}

	if finite(ind.BBBandwidth) {
		switch bw := ind.BBBandwidth; {
		case bw < 2:
			b.Volatility = -30
		case bw < 4:
			b.Volatility = 0
		case bw < 8:
			b.Volatility = 30
		default:
			b.Volatility = 60
		}
	}

	if finite(ind.EMA50) && in.close != ind.EMA50 {
		b.Trend += 50 * sign(in.close-ind.EMA50)
	}
	if finite(ind.EMA9, ind.EMA21) && ind.EMA9 != ind.EMA21 {
		b.Trend += 50 * sign(ind.EMA9-ind.EMA21)
	}

	b.Indicators = clamp(b.Indicators, -100, 100)
	b.PriceAction = clamp(b.PriceAction, -100, 100)
	b.Momentum = clamp(b.Momentum, -100, 100)
	b.Volatility = clamp(b.Volatility, -100, 100)
	b.Trend = clamp(b.Trend, -100, 100)
	return b
}
