package models

import "time"

// Candle is one OHLCV bar. Series are ordered by Time, oldest first.
type Candle struct {
	Symbol string    `json:"symbol,omitempty"`
	Time   time.Time `json:"time"`
	Open   float64   `json:"open" validate:"gt=0"`
	High   float64   `json:"high" validate:"gt=0"`
	Low    float64   `json:"low" validate:"gt=0"`
	Close  float64   `json:"close" validate:"gt=0"`
	Volume float64   `json:"volume" validate:"gte=0"`
}

// Body is the absolute open-to-close distance.
func (c Candle) Body() float64 {
	if c.Close >= c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

func (c Candle) Bullish() bool { return c.Close > c.Open }
func (c Candle) Bearish() bool { return c.Close < c.Open }

// CandleEvent is the wire format of candles flowing through Kafka.
type CandleEvent struct {
	Symbol string  `json:"symbol"`
	TF     string  `json:"tf"`
	T      int64   `json:"t"` // open time, unix ms
	O      float64 `json:"o"`
	H      float64 `json:"h"`
	L      float64 `json:"l"`
	C      float64 `json:"c"`
	V      float64 `json:"v"`
	Closed bool    `json:"closed"`
}

func (e CandleEvent) Candle() Candle {
	return Candle{
		Symbol: e.Symbol,
		Time:   time.UnixMilli(e.T).UTC(),
		Open:   e.O,
		High:   e.H,
		Low:    e.L,
		Close:  e.C,
		Volume: e.V,
	}
}
