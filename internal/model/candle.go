package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Candle struct {
	Date  time.Time       `json:"date"`
	Open  decimal.Decimal `json:"open"`
	High  decimal.Decimal `json:"high"`
	Low   decimal.Decimal `json:"low"`
	Close decimal.Decimal `json:"close"`
}

// PriceSeries is one asset's daily OHLC history over a requested
// window, ordered by date ascending without duplicates.
type PriceSeries struct {
	AssetID string     `json:"assetId"`
	Class   AssetClass `json:"class"`
	Candles []Candle   `json:"candles"`
}
