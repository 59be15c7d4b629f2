package engine

import (
	"fmt"
	"time"
)

// MalformedLedgerRowError aborts normalization of the whole ledger:
// holdings must be exact, so there is no partial-ledger tolerance.
type MalformedLedgerRowError struct {
	Row    int
	Reason string
}

func (e *MalformedLedgerRowError) Error() string {
	return fmt.Sprintf("malformed ledger row %d: %s", e.Row, e.Reason)
}

// PriceNotFoundError means a transaction's trade date has no closing
// price for its asset. There is no nearest-date fallback: trades are
// assumed to happen on trading days, so a missing price is a data
// problem, not a calendar one.
type PriceNotFoundError struct {
	AssetID string
	Date    time.Time
}

func (e *PriceNotFoundError) Error() string {
	return fmt.Sprintf("no closing price for %s on %s", e.AssetID, e.Date.Format("2006-01-02"))
}
