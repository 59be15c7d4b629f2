package dbConverter

import (
	"sort"
	"time"

	"github.com/investbi/portfolio_tracker_bot/internal/model"
	"github.com/investbi/portfolio_tracker_bot/internal/model/dbModel"
	"github.com/shopspring/decimal"
)

// ConvertValuation rebuilds a model.Valuation from its stored rows.
// Valuation points must come ordered by date, allocation points by
// date then asset.
func ConvertValuation(run dbModel.ValuationRun, points []dbModel.ValuationPoint, alloc []dbModel.AllocationPoint) model.Valuation {
	v := model.Valuation{
		AsOf:      run.AsOf,
		Inception: run.Inception,
	}

	for _, p := range points {
		v.Patrimony = append(v.Patrimony, model.SeriesPoint{Date: p.Date, Value: p.Patrimony})
		v.Returns = append(v.Returns, model.SeriesPoint{Date: p.Date, Value: p.DailyReturn})
		v.CumulativeReturns = append(v.CumulativeReturns, model.SeriesPoint{Date: p.Date, Value: p.CumulativeReturn})
	}

	v.Allocation = convertAllocation(alloc)

	return v
}

func convertAllocation(alloc []dbModel.AllocationPoint) model.AllocationTable {
	table := model.AllocationTable{}
	if len(alloc) == 0 {
		return table
	}

	assetSet := make(map[string]int)
	for _, a := range alloc {
		if _, ok := assetSet[a.Asset]; !ok {
			assetSet[a.Asset] = len(table.Assets)
			table.Assets = append(table.Assets, a.Asset)
		}
	}
	sort.Strings(table.Assets)
	for i, a := range table.Assets {
		assetSet[a] = i
	}

	rowByDate := make(map[time.Time]int)
	for _, a := range alloc {
		i, ok := rowByDate[a.Date]
		if !ok {
			i = len(table.Rows)
			rowByDate[a.Date] = i
			table.Rows = append(table.Rows, model.AllocationRow{
				Date:  a.Date,
				Units: make([]decimal.Decimal, len(table.Assets)),
			})
		}
		table.Rows[i].Units[assetSet[a.Asset]] = a.Units
	}

	return table
}
