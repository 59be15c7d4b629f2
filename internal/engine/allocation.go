package engine

import (
	"time"

	"github.com/investbi/portfolio_tracker_bot/internal/timeseries"
	"github.com/shopspring/decimal"
)

// BuildAllocation projects the sparse cumulative holdings onto the
// full business-day calendar spanning [first trade date, asOf].
//
// The fill rule is explicit and load-bearing: an asset holds exactly
// zero on every date before its first transaction, and from that date
// on the last cumulative unit count carries forward through asOf. The
// result is dense: no missing dates, no missing cells.
func BuildAllocation(h *HoldingsLedger, asOf time.Time) *timeseries.Frame {
	start := h.EarliestDate()
	end := timeseries.Normalize(asOf)
	if end.Before(start) {
		end = start
	}

	calendar := timeseries.BusinessDays(start, end)
	alloc := timeseries.NewFrame(calendar, h.Assets())

	for _, asset := range h.Assets() {
		entries := h.Entries(asset)
		next := 0
		units := decimal.Zero
		for _, d := range calendar {
			for next < len(entries) && !entries[next].Date.After(d) {
				units = entries[next].Units
				next++
			}
			alloc.Set(asset, d, units)
		}
	}

	return alloc
}
