package engine

import (
	"github.com/investbi/portfolio_tracker_bot/internal/timeseries"
	"github.com/shopspring/decimal"
)

// Valuate prices the allocation: market value per asset and day
// (closing price × units held) plus total patrimony per day.
//
// A held position whose price is temporarily missing on some date
// keeps its previous value (forward-fill absorbs calendar mismatches
// between price availability and allocation availability). A zero
// allocation is worth exactly zero regardless of price availability.
func Valuate(alloc *timeseries.Frame, prices *PriceMatrix) (*timeseries.Frame, timeseries.Series) {
	closes := prices.Close().Reindex(alloc.Index())

	value := timeseries.NewFrame(alloc.Index(), alloc.Columns())
	for _, asset := range alloc.Columns() {
		for i, d := range alloc.Index() {
			units, _ := alloc.AtIndex(asset, i)
			if units.IsZero() {
				value.Set(asset, d, decimal.Zero)
				continue
			}
			px, ok := closes.AtIndex(asset, i)
			if !ok {
				continue
			}
			value.Set(asset, d, px.Mul(units))
		}
	}

	value = value.ForwardFill()
	return value, value.RowSumZero()
}
