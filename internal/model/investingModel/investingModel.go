package investingModel

import "github.com/shopspring/decimal"

// RawHistory mirrors the JSON shape of the market data API's
// historical endpoint. Dates arrive as ISO yyyy-mm-dd strings.
type RawHistory struct {
	Symbol string      `json:"symbol"`
	Data   []RawCandle `json:"data"`
}

type RawCandle struct {
	Date  string          `json:"date"`
	Open  decimal.Decimal `json:"open"`
	High  decimal.Decimal `json:"high"`
	Low   decimal.Decimal `json:"low"`
	Close decimal.Decimal `json:"close"`
}
