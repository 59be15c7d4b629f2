package timeseries

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Series is a dense date-indexed sequence of decimals. The index is
// ascending and every date holds a value.
type Series struct {
	dates []time.Time
	vals  []decimal.Decimal
}

func NewSeries(dates []time.Time, vals []decimal.Decimal) Series {
	if len(dates) != len(vals) {
		panic("timeseries: series dates and values length mismatch")
	}
	return Series{dates: dates, vals: vals}
}

func (s Series) Len() int { return len(s.dates) }

func (s Series) Date(i int) time.Time { return s.dates[i] }

func (s Series) Value(i int) decimal.Decimal { return s.vals[i] }

func (s Series) Dates() []time.Time { return s.dates }

func (s Series) Values() []decimal.Decimal { return s.vals }

func (s Series) At(date time.Time) (decimal.Decimal, bool) {
	date = Normalize(date)
	i := sort.Search(len(s.dates), func(i int) bool { return !s.dates[i].Before(date) })
	if i < len(s.dates) && s.dates[i].Equal(date) {
		return s.vals[i], true
	}
	return decimal.Decimal{}, false
}

// TruncateBefore drops every entry dated strictly before from.
func (s Series) TruncateBefore(from time.Time) Series {
	from = Normalize(from)
	i := sort.Search(len(s.dates), func(i int) bool { return !s.dates[i].Before(from) })
	return Series{dates: s.dates[i:], vals: s.vals[i:]}
}

func (s Series) Last() (time.Time, decimal.Decimal, bool) {
	if len(s.dates) == 0 {
		return time.Time{}, decimal.Decimal{}, false
	}
	return s.dates[len(s.dates)-1], s.vals[len(s.vals)-1], true
}
