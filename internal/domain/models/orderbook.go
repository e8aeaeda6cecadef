package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// RawLevel is a [price, size] pair as sent by the exchange. Both elements
// may be JSON strings or JSON numbers.
type RawLevel [2]json.Number

// DepthSnapshot is the REST depth response.
type DepthSnapshot struct {
	LastUpdateID uint64     `json:"lastUpdateId"`
	Bids         []RawLevel `json:"bids"`
	Asks         []RawLevel `json:"asks"`
}

// DepthDiff is one incremental depth event. FirstUpdateID and
// PrevFinalUpdateID are optional on the wire.
type DepthDiff struct {
	EventType         string     `json:"e,omitempty"`
	EventTime         int64      `json:"E,omitempty"`
	Symbol            string     `json:"s,omitempty"`
	FirstUpdateID     *uint64    `json:"U,omitempty"`
	FinalUpdateID     uint64     `json:"u"`
	PrevFinalUpdateID *uint64    `json:"pu,omitempty"`
	Bids              []RawLevel `json:"b"`
	Asks              []RawLevel `json:"a"`
}

type PriceLevel struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// OrderBook is an immutable ladder: bids strictly descending, asks strictly
// ascending, no zero sizes.
type OrderBook struct {
	Symbol       string       `json:"symbol"`
	LastUpdateID uint64       `json:"lastUpdateId"`
	Bids         []PriceLevel `json:"bids"`
	Asks         []PriceLevel `json:"asks"`
}

// DepthSummary describes the top of an order book.
type DepthSummary struct {
	Symbol       string          `json:"symbol"`
	BestBid      decimal.Decimal `json:"bestBid"`
	BestAsk      decimal.Decimal `json:"bestAsk"`
	Mid          decimal.Decimal `json:"mid"`
	MicroPrice   decimal.Decimal `json:"microPrice"`
	SpreadBps    float64         `json:"spreadBps"`
	BidDepth     decimal.Decimal `json:"bidDepth"`
	AskDepth     decimal.Decimal `json:"askDepth"`
	Imbalance    float64         `json:"imbalance"`
	Levels       int             `json:"levels"`
	LastUpdateID uint64          `json:"lastUpdateId"`
}
