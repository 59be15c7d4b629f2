package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type ValuationRun struct {
	RunID     int64     `db:"run_id"`
	AsOf      time.Time `db:"as_of"`
	Inception time.Time `db:"inception"`
	DtCreate  time.Time `db:"dt_create"`
}

type ValuationPoint struct {
	RunID            int64           `db:"run_id"`
	Date             time.Time       `db:"dt"`
	Patrimony        decimal.Decimal `db:"patrimony"`
	DailyReturn      decimal.Decimal `db:"daily_return"`
	CumulativeReturn decimal.Decimal `db:"cumulative_return"`
}

type AllocationPoint struct {
	RunID int64           `db:"run_id"`
	Date  time.Time       `db:"dt"`
	Asset string          `db:"asset"`
	Units decimal.Decimal `db:"units"`
}
