package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRecord is one untyped row of the remote wallet spreadsheet,
// exactly as the ledger source returned it.
type LedgerRecord struct {
	Date       string
	AssetName  string
	AssetClass string
	Amount     string
}

// Transaction is a validated buy: Amount is the money spent on
// AssetID at the close of TradeDate.
type Transaction struct {
	TradeDate time.Time
	AssetID   string
	Class     AssetClass
	Amount    decimal.Decimal
}
