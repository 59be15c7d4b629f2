package timeseries

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frame is a date-indexed table with one decimal column per name.
// Cells may be missing (NullDecimal with Valid=false); what happens to
// missing cells is always an explicit operation (ForwardFill,
// RowSumZero), never an implicit default.
//
// Frames are immutable from the outside once built: every derived
// frame is a fresh value.
type Frame struct {
	index   []time.Time
	columns []string
	pos     map[time.Time]int
	cells   map[string][]decimal.NullDecimal
}

// NewFrame builds an empty frame over the given index. The index must
// be ascending and normalized (see BusinessDays). Column order is
// preserved in iteration and output.
func NewFrame(index []time.Time, columns []string) *Frame {
	f := &Frame{
		index:   index,
		columns: columns,
		pos:     make(map[time.Time]int, len(index)),
		cells:   make(map[string][]decimal.NullDecimal, len(columns)),
	}
	for i, d := range index {
		f.pos[d] = i
	}
	for _, c := range columns {
		f.cells[c] = make([]decimal.NullDecimal, len(index))
	}
	return f
}

func (f *Frame) Index() []time.Time { return f.index }

func (f *Frame) Columns() []string { return f.columns }

func (f *Frame) Len() int { return len(f.index) }

// Set stores v at (col, date). Returns false when the date is outside
// the index or the column is unknown.
func (f *Frame) Set(col string, date time.Time, v decimal.Decimal) bool {
	i, ok := f.pos[Normalize(date)]
	if !ok {
		return false
	}
	vals, ok := f.cells[col]
	if !ok {
		return false
	}
	vals[i] = decimal.NullDecimal{Decimal: v, Valid: true}
	return true
}

func (f *Frame) At(col string, date time.Time) (decimal.Decimal, bool) {
	i, ok := f.pos[Normalize(date)]
	if !ok {
		return decimal.Decimal{}, false
	}
	return f.AtIndex(col, i)
}

func (f *Frame) AtIndex(col string, i int) (decimal.Decimal, bool) {
	vals, ok := f.cells[col]
	if !ok || i < 0 || i >= len(vals) {
		return decimal.Decimal{}, false
	}
	if !vals[i].Valid {
		return decimal.Decimal{}, false
	}
	return vals[i].Decimal, true
}

// ForwardFill carries each column's last seen value across missing
// cells. Cells before a column's first value stay missing.
func (f *Frame) ForwardFill() *Frame {
	out := NewFrame(f.index, f.columns)
	for _, c := range f.columns {
		src, dst := f.cells[c], out.cells[c]
		last := decimal.NullDecimal{}
		for i := range src {
			if src[i].Valid {
				last = src[i]
			}
			dst[i] = last
		}
	}
	return out
}

// FillZero replaces every missing cell with zero.
func (f *Frame) FillZero() *Frame {
	out := NewFrame(f.index, f.columns)
	for _, c := range f.columns {
		src, dst := f.cells[c], out.cells[c]
		for i := range src {
			if src[i].Valid {
				dst[i] = src[i]
			} else {
				dst[i] = decimal.NullDecimal{Valid: true}
			}
		}
	}
	return out
}

// PctChange computes each column's day-over-day relative change:
// (v[i] - v[i-1]) / v[i-1]. A cell is missing when either operand is
// missing or the previous value is zero; the first row is always
// missing since there is no prior day.
func (f *Frame) PctChange() *Frame {
	out := NewFrame(f.index, f.columns)
	for _, c := range f.columns {
		src, dst := f.cells[c], out.cells[c]
		for i := 1; i < len(src); i++ {
			if !src[i].Valid || !src[i-1].Valid || src[i-1].Decimal.IsZero() {
				continue
			}
			chg := src[i].Decimal.Sub(src[i-1].Decimal).Div(src[i-1].Decimal)
			dst[i] = decimal.NullDecimal{Decimal: chg, Valid: true}
		}
	}
	return out
}

// Reindex projects the frame onto a new index. Dates absent from the
// source frame come out missing.
func (f *Frame) Reindex(index []time.Time) *Frame {
	out := NewFrame(index, f.columns)
	for _, c := range f.columns {
		src, dst := f.cells[c], out.cells[c]
		for i, d := range index {
			if j, ok := f.pos[d]; ok {
				dst[i] = src[j]
			}
		}
	}
	return out
}

// TruncateBefore drops every row dated strictly before from.
func (f *Frame) TruncateBefore(from time.Time) *Frame {
	from = Normalize(from)
	cut := len(f.index)
	for i, d := range f.index {
		if !d.Before(from) {
			cut = i
			break
		}
	}
	out := NewFrame(f.index[cut:], f.columns)
	for _, c := range f.columns {
		copy(out.cells[c], f.cells[c][cut:])
	}
	return out
}

// RowSumZero sums each row across columns, counting missing cells as
// zero, and returns the dense result.
func (f *Frame) RowSumZero() Series {
	vals := make([]decimal.Decimal, len(f.index))
	for _, c := range f.columns {
		src := f.cells[c]
		for i := range src {
			if src[i].Valid {
				vals[i] = vals[i].Add(src[i].Decimal)
			}
		}
	}
	return NewSeries(f.index, vals)
}
