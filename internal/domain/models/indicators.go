package models

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// IndicatorSnapshot holds indicator values for the latest bar. A NaN field
// has not warmed up yet.
type IndicatorSnapshot struct {
	Close float64 `json:"close"`

	EMA9   float64 `json:"ema9"`
	EMA21  float64 `json:"ema21"`
	EMA50  float64 `json:"ema50"`
	EMA200 float64 `json:"ema200"`

	RSI float64 `json:"rsi"`

	MACD              float64 `json:"macd"`
	MACDSignal        float64 `json:"macdSignal"`
	MACDHistogram     float64 `json:"macdHistogram"`
	PrevMACDHistogram float64 `json:"prevMacdHistogram"`

	BBUpper     float64 `json:"bbUpper"`
	BBMiddle    float64 `json:"bbMiddle"`
	BBLower     float64 `json:"bbLower"`
	BBPercentB  float64 `json:"bbPercentB"`
	BBBandwidth float64 `json:"bbBandwidth"` // percent of middle band

	ATR     float64 `json:"atr"`
	ADX     float64 `json:"adx"`
	PlusDI  float64 `json:"plusDi"`
	MinusDI float64 `json:"minusDi"`

	StochRSIK float64 `json:"stochRsiK"`
	StochRSID float64 `json:"stochRsiD"`

	VWAP float64 `json:"vwap"`
	OBV  float64 `json:"obv"`
	ROC  float64 `json:"roc"`
	CCI  float64 `json:"cci"`
}

// MarshalJSON writes NaN and infinite values as null.
func (s IndicatorSnapshot) MarshalJSON() ([]byte, error) {
	v := reflect.ValueOf(s)
	t := v.Type()
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < t.NumField(); i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(jsonName(t.Field(i))))
		buf.WriteByte(':')
		f := v.Field(i).Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			buf.WriteString("null")
			continue
		}
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads null and missing values back as NaN.
func (s *IndicatorSnapshot) UnmarshalJSON(b []byte) error {
	var raw map[string]*float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v := reflect.ValueOf(s).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := math.NaN()
		if p := raw[jsonName(t.Field(i))]; p != nil {
			f = *p
		}
		v.Field(i).SetFloat(f)
	}
	return nil
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" {
		return f.Name
	}
	return name
}
