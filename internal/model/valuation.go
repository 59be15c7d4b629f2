package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type SeriesPoint struct {
	Date  time.Time
	Value decimal.Decimal
}

type AllocationRow struct {
	Date  time.Time
	Units []decimal.Decimal // aligned with AllocationTable.Assets
}

type AllocationTable struct {
	Assets []string
	Rows   []AllocationRow
}

// Valuation is the reported output of one full pipeline run: the
// patrimony, returns and allocation series truncated to the
// portfolio's inception date.
type Valuation struct {
	AsOf              time.Time
	Inception         time.Time
	Patrimony         []SeriesPoint
	Returns           []SeriesPoint
	CumulativeReturns []SeriesPoint
	Allocation        AllocationTable
}
