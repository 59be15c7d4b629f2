package engine

import (
	"fmt"
	"time"

	"github.com/investbi/portfolio_tracker_bot/internal/model"
	"github.com/shopspring/decimal"
)

// HoldingsEntry is the cumulative unit count of one asset after all
// buys up to and including Date.
type HoldingsEntry struct {
	Date  time.Time
	Units decimal.Decimal
}

// HoldingsLedger holds the sparse cumulative unit series per asset,
// indexed by trade date only (not yet projected on a calendar).
type HoldingsLedger struct {
	assets  []string
	entries map[string][]HoldingsEntry
}

// BuildHoldings converts each transaction's amount into units at its
// trade date's closing price and accumulates per asset. Buys sharing
// a trade date collapse into a single entry. Transactions must come in
// trade-date order (NormalizeLedger output).
func BuildHoldings(txs []model.Transaction, prices *PriceMatrix) (*HoldingsLedger, error) {
	h := &HoldingsLedger{entries: make(map[string][]HoldingsEntry)}

	for _, tx := range txs {
		closePx, ok := prices.CloseAt(tx.AssetID, tx.TradeDate)
		if !ok {
			return nil, &PriceNotFoundError{AssetID: tx.AssetID, Date: tx.TradeDate}
		}
		if !closePx.IsPositive() {
			return nil, fmt.Errorf("non-positive closing price %s for %s on %s",
				closePx, tx.AssetID, tx.TradeDate.Format("2006-01-02"))
		}

		units := tx.Amount.Div(closePx)

		list := h.entries[tx.AssetID]
		if list == nil {
			h.assets = append(h.assets, tx.AssetID)
		}

		if n := len(list); n > 0 {
			cum := list[n-1].Units.Add(units)
			if list[n-1].Date.Equal(tx.TradeDate) {
				list[n-1].Units = cum
			} else {
				list = append(list, HoldingsEntry{Date: tx.TradeDate, Units: cum})
			}
		} else {
			list = append(list, HoldingsEntry{Date: tx.TradeDate, Units: units})
		}
		h.entries[tx.AssetID] = list
	}

	return h, nil
}

// Assets in first-transaction order.
func (h *HoldingsLedger) Assets() []string { return h.assets }

func (h *HoldingsLedger) Entries(asset string) []HoldingsEntry { return h.entries[asset] }

func (h *HoldingsLedger) FirstDate(asset string) (time.Time, bool) {
	list := h.entries[asset]
	if len(list) == 0 {
		return time.Time{}, false
	}
	return list[0].Date, true
}

// EarliestDate is the first trade date across all assets, i.e. the
// portfolio inception.
func (h *HoldingsLedger) EarliestDate() time.Time {
	first, _ := h.FirstDate(h.assets[0])
	return first
}
