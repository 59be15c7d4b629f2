package telebotConverter

import (
	"testing"
	"time"

	"github.com/investbi/portfolio_tracker_bot/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func point(dd int, v string) model.SeriesPoint {
	return model.SeriesPoint{
		Date:  time.Date(2021, time.January, dd, 0, 0, 0, 0, time.UTC),
		Value: decimal.RequireFromString(v),
	}
}

func TestFormatSummary(t *testing.T) {
	v := model.Valuation{
		AsOf:              time.Date(2021, time.January, 6, 0, 0, 0, 0, time.UTC),
		Inception:         time.Date(2021, time.January, 4, 0, 0, 0, 0, time.UTC),
		Patrimony:         []model.SeriesPoint{point(4, "2000"), point(5, "2200"), point(6, "2310")},
		Returns:           []model.SeriesPoint{point(4, "0"), point(5, "0.1"), point(6, "0.05")},
		CumulativeReturns: []model.SeriesPoint{point(4, "1"), point(5, "1.1"), point(6, "1.155")},
	}

	got := FormatSummary(v)

	assert.Equal(t,
		"Portfolio as of 06/01/2021\n"+
			"Patrimony: 2310.00\n"+
			"Last daily return: 5.00%\n"+
			"Return since 04/01/2021: 15.50%",
		got)
}

func TestFormatSummary_Empty(t *testing.T) {
	assert.Equal(t, "portfolio is empty", FormatSummary(model.Valuation{}))
}

func TestFormatReturns(t *testing.T) {
	v := model.Valuation{
		Returns: []model.SeriesPoint{point(4, "0"), point(5, "0.1"), point(6, "-0.025")},
	}

	got := FormatReturns(v, 2)

	assert.Equal(t,
		"Daily returns:\n"+
			"05/01/2021  10.00%\n"+
			"06/01/2021  -2.50%",
		got)
}

func TestFormatReturns_TailLongerThanSeries(t *testing.T) {
	v := model.Valuation{Returns: []model.SeriesPoint{point(4, "0")}}

	got := FormatReturns(v, 10)
	assert.Equal(t, "Daily returns:\n04/01/2021  0.00%", got)
}

func TestFormatReturns_Empty(t *testing.T) {
	assert.Equal(t, "no returns yet", FormatReturns(model.Valuation{}, 5))
}
