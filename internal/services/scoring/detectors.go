package scoring

import (
	"fmt"
	"math"

	"SignalDesk/internal/domain/models"
)

// detectors in ensemble order.
var detectors = []detector{
	{
		strategy: models.StrategyTrendFollowing, stopATR: 2.0, targetATR: 4.0,
		rules: []rule{
			{"ema_stack", emaStack},
			{"price_vs_ema50", priceVsEMA50},
			{"adx_direction", adxDirection},
			{"structure_trend", structureTrend},
			{"ema200_filter", ema200Filter},
		},
	},
	{
		strategy: models.StrategyMomentum, stopATR: 1.5, targetATR: 3.0,
		rules: []rule{
			{"macd_histogram", macdHistogram},
			{"macd_cross", macdCross},
			{"roc_thrust", rocThrust},
			{"rsi_momentum", rsiMomentum},
			{"recent_displacement", recentDisplacement},
		},
	},
	{
		strategy: models.StrategyMeanReversion, stopATR: 1.5, targetATR: 2.0,
		rules: []rule{
			{"rsi_extreme", rsiExtreme},
			{"bollinger_percent_b", bollingerPercentB},
			{"stoch_rsi_extreme", stochRSIExtreme},
			{"cci_extreme", cciExtreme},
			{"range_regime", rangeRegime},
		},
	},
	{
		strategy: models.StrategyBreakout, stopATR: 2.0, targetATR: 4.0,
		rules: []rule{
			{"structure_break", structureBreak},
			{"bollinger_breakout", bollingerBreakout},
			{"range_break", rangeBreak},
			{"volume_surge", volumeSurge},
		},
	},
	{
		strategy: models.StrategyScalp, stopATR: 1.0, targetATR: 1.5,
		rules: []rule{
			{"stoch_rsi_cross", stochRSICross},
			{"vwap_side", vwapSide},
			{"nearby_fvg", nearbyFVG},
			{"candle_impulse", candleImpulse},
		},
	},
}

const (
	recentBars      = 5
	rangeLookback   = 20
	bodyLookback    = 10
	fvgNearPct      = 0.5
	volumeSurgeMult = 1.5
	impulseMult     = 1.5
)

// trend following

func emaStack(in input) (float64, string) {
	e9, e21, e50 := in.ind.EMA9, in.ind.EMA21, in.ind.EMA50
	if !finite(e9, e21, e50) {
		return 0, ""
	}
	switch {
	case e9 > e21 && e21 > e50:
		return 25, "EMA 9 > 21 > 50"
	case e9 < e21 && e21 < e50:
		return -25, "EMA 9 < 21 < 50"
	}
	return 0, ""
}

func priceVsEMA50(in input) (float64, string) {
	if !finite(in.ind.EMA50) || in.close == in.ind.EMA50 {
		return 0, ""
	}
	if in.close > in.ind.EMA50 {
		return 10, "close above EMA50"
	}
	return -10, "close below EMA50"
}

func adxDirection(in input) (float64, string) {
	if !finite(in.ind.ADX, in.ind.PlusDI, in.ind.MinusDI) || in.ind.ADX <= 25 {
		return 0, ""
	}
	s := sign(in.ind.PlusDI - in.ind.MinusDI)
	return 15 * s, fmt.Sprintf("ADX %.1f, +DI %.1f / -DI %.1f", in.ind.ADX, in.ind.PlusDI, in.ind.MinusDI)
}

func structureTrend(in input) (float64, string) {
	switch in.pa.Trend {
	case models.TrendBullish:
		return 20, "bullish market structure"
	case models.TrendBearish:
		return -20, "bearish market structure"
	}
	return 0, ""
}

func ema200Filter(in input) (float64, string) {
	if !finite(in.ind.EMA200) || in.close == in.ind.EMA200 {
		return 0, ""
	}
	if in.close > in.ind.EMA200 {
		return 5, "above EMA200"
	}
	return -5, "below EMA200"
}

// momentum

func macdHistogram(in input) (float64, string) {
	h := in.ind.MACDHistogram
	if !finite(h) || h == 0 {
		return 0, ""
	}
	return 20 * sign(h), fmt.Sprintf("MACD histogram %.4f", h)
}

func macdCross(in input) (float64, string) {
	h, prev := in.ind.MACDHistogram, in.ind.PrevMACDHistogram
	if !finite(h, prev) {
		return 0, ""
	}
	switch {
	case prev <= 0 && h > 0:
		return 15, "MACD crossed above signal"
	case prev >= 0 && h < 0:
		return -15, "MACD crossed below signal"
	}
	return 0, ""
}

func rocThrust(in input) (float64, string) {
	r := in.ind.ROC
	if !finite(r) {
		return 0, ""
	}
	reason := fmt.Sprintf("ROC %.2f%%", r)
	switch {
	case r > 2:
		return 15, reason
	case r > 0.5:
		return 8, reason
	case r < -2:
		return -15, reason
	case r < -0.5:
		return -8, reason
	}
	return 0, ""
}

func rsiMomentum(in input) (float64, string) {
	r := in.ind.RSI
	if !finite(r) {
		return 0, ""
	}
	switch {
	case r > 55 && r <= 70:
		return 10, fmt.Sprintf("RSI %.1f in bullish zone", r)
	case r >= 30 && r < 45:
		return -10, fmt.Sprintf("RSI %.1f in bearish zone", r)
	}
	return 0, ""
}

func recentDisplacement(in input) (float64, string) {
	ds := in.pa.Displacements
	if len(ds) == 0 {
		return 0, ""
	}
	d := ds[len(ds)-1]
	if d.EndIndex < len(in.candles)-recentBars {
		return 0, ""
	}
	return 15 * dirSign(d.Direction), fmt.Sprintf("%s %s displacement %.2f%%", d.Strength, d.Direction, d.SizePct)
}

// mean reversion

func rsiExtreme(in input) (float64, string) {
	r := in.ind.RSI
	if !finite(r) {
		return 0, ""
	}
	switch {
	case r < 25:
		return 35, fmt.Sprintf("RSI %.1f deeply oversold", r)
	case r < 30:
		return 25, fmt.Sprintf("RSI %.1f oversold", r)
	case r > 75:
		return -35, fmt.Sprintf("RSI %.1f deeply overbought", r)
	case r > 70:
		return -25, fmt.Sprintf("RSI %.1f overbought", r)
	}
	return 0, ""
}

func bollingerPercentB(in input) (float64, string) {
	b := in.ind.BBPercentB
	if !finite(b) {
		return 0, ""
	}
	reason := fmt.Sprintf("%%B %.2f", b)
	switch {
	case b < 0:
		return 25, reason
	case b < 0.1:
		return 15, reason
	case b > 1:
		return -25, reason
	case b > 0.9:
		return -15, reason
	}
	return 0, ""
}

func stochRSIExtreme(in input) (float64, string) {
	k := in.ind.StochRSIK
	if !finite(k) {
		return 0, ""
	}
	switch {
	case k < 20:
		return 15, fmt.Sprintf("StochRSI %.1f oversold", k)
	case k > 80:
		return -15, fmt.Sprintf("StochRSI %.1f overbought", k)
	}
	return 0, ""
}

func cciExtreme(in input) (float64, string) {
	c := in.ind.CCI
	if !finite(c) {
		return 0, ""
	}
	switch {
	case c < -100:
		return 10, fmt.Sprintf("CCI %.0f", c)
	case c > 100:
		return -10, fmt.Sprintf("CCI %.0f", c)
	}
	return 0, ""
}

func rangeRegime(in input) (float64, string) {
	if !finite(in.ind.ADX, in.ind.RSI) || in.ind.ADX >= 20 || in.ind.RSI == 50 {
		return 0, ""
	}
	return -5 * sign(in.ind.RSI-50), fmt.Sprintf("ADX %.1f, range-bound", in.ind.ADX)
}

// breakout

func structureBreak(in input) (float64, string) {
	bs := in.pa.Breaks
	if len(bs) == 0 {
		return 0, ""
	}
	b := bs[len(bs)-1]
	if b.Index < len(in.candles)-recentBars {
		return 0, ""
	}
	pts := 30.0
	if b.Type == models.BreakCHoCH {
		pts = 25
	}
	return pts * dirSign(b.Direction), fmt.Sprintf("%s %s at %.4f", b.Direction, b.Type, b.BrokenLevel)
}

func bollingerBreakout(in input) (float64, string) {
	if !finite(in.ind.BBUpper, in.ind.BBLower) {
		return 0, ""
	}
	switch {
	case in.close > in.ind.BBUpper:
		return 20, "close above upper band"
	case in.close < in.ind.BBLower:
		return -20, "close below lower band"
	}
	return 0, ""
}

func rangeBreak(in input) (float64, string) {
	n := len(in.candles)
	if n < rangeLookback+1 {
		return 0, ""
	}
	hi, lo := math.Inf(-1), math.Inf(1)
	for _, c := range in.candles[n-1-rangeLookback : n-1] {
		hi = math.Max(hi, c.High)
		lo = math.Min(lo, c.Low)
	}
	switch {
	case in.close > hi:
		return 20, fmt.Sprintf("close above %d-bar high %.4f", rangeLookback, hi)
	case in.close < lo:
		return -20, fmt.Sprintf("close below %d-bar low %.4f", rangeLookback, lo)
	}
	return 0, ""
}

func volumeSurge(in input) (float64, string) {
	n := len(in.candles)
	if n < rangeLookback+1 {
		return 0, ""
	}
	var sum float64
	for _, c := range in.candles[n-1-rangeLookback : n-1] {
		sum += c.Volume
	}
	avg := sum / rangeLookback
	lastC := in.candles[n-1]
	if avg <= 0 || lastC.Volume <= volumeSurgeMult*avg {
		return 0, ""
	}
	return 10 * sign(lastC.Close-lastC.Open), fmt.Sprintf("volume %.1fx average", lastC.Volume/avg)
}

// scalp

func stochRSICross(in input) (float64, string) {
	k, d := in.ind.StochRSIK, in.ind.StochRSID
	if !finite(k, d) {
		return 0, ""
	}
	switch {
	case k > d && k < 30:
		return 20, fmt.Sprintf("StochRSI %%K %.1f over %%D in oversold zone", k)
	case k < d && k > 70:
		return -20, fmt.Sprintf("StochRSI %%K %.1f under %%D in overbought zone", k)
	}
	return 0, ""
}

func vwapSide(in input) (float64, string) {
	v := in.ind.VWAP
	if !finite(v) || in.close == v {
		return 0, ""
	}
	if in.close > v {
		return 10, "close above VWAP"
	}
	return -10, "close below VWAP"
}

func nearbyFVG(in input) (float64, string) {
	if in.close <= 0 {
		return 0, ""
	}
	best := -1
	bestDist := math.Inf(1)
	for i, g := range in.pa.FVGs {
		if g.Filled {
			continue
		}
		dist := math.Abs(g.Midpoint-in.close) / in.close * 100
		if dist <= fvgNearPct && dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return 0, ""
	}
	g := in.pa.FVGs[best]
	return 15 * dirSign(g.Type), fmt.Sprintf("%s FVG %.2f%% away", g.Type, bestDist)
}

func candleImpulse(in input) (float64, string) {
	n := len(in.candles)
	if n < bodyLookback+1 {
		return 0, ""
	}
	var sum float64
	for _, c := range in.candles[n-1-bodyLookback : n-1] {
		sum += c.Body()
	}
	avg := sum / bodyLookback
	lastC := in.candles[n-1]
	if avg <= 0 || lastC.Body() <= impulseMult*avg {
		return 0, ""
	}
	return 10 * sign(lastC.Close-lastC.Open), fmt.Sprintf("body %.1fx average", lastC.Body()/avg)
}
