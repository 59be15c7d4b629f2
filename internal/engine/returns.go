package engine

import (
	"github.com/investbi/portfolio_tracker_bot/internal/timeseries"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// PortfolioReturns derives the daily portfolio return: each asset's
// closing-price percentage change weighted by that asset's share of
// patrimony at the start of the day, i.e. the previous entry of the
// valuation calendar. Two equally weighted assets moving +10% and
// -10% on the same day therefore cancel out exactly.
//
// The first day has no prior day and earns zero by convention, as
// does any day whose starting patrimony is zero; that zero-weight
// rule is how the weight division avoids dividing by zero.
func PortfolioReturns(value *timeseries.Frame, patrimony timeseries.Series, prices *PriceMatrix) timeseries.Series {
	changes := prices.Close().ForwardFill().PctChange().Reindex(value.Index())

	vals := make([]decimal.Decimal, value.Len())
	for i := 1; i < value.Len(); i++ {
		total := patrimony.Value(i - 1)
		if total.IsZero() {
			continue
		}

		var ret decimal.Decimal
		for _, asset := range value.Columns() {
			v, ok := value.AtIndex(asset, i-1)
			if !ok || v.IsZero() {
				continue
			}
			chg, ok := changes.AtIndex(asset, i)
			if !ok {
				continue
			}
			ret = ret.Add(v.Div(total).Mul(chg))
		}
		vals[i] = ret
	}

	return timeseries.NewSeries(value.Index(), vals)
}

// CumulativeReturns compounds daily returns into the running product
// of (1 + r), seeded at 1 immediately before the series starts.
func CumulativeReturns(returns timeseries.Series) timeseries.Series {
	acc := one
	vals := make([]decimal.Decimal, returns.Len())
	for i := 0; i < returns.Len(); i++ {
		acc = acc.Mul(one.Add(returns.Value(i)))
		vals[i] = acc
	}
	return timeseries.NewSeries(returns.Dates(), vals)
}
