package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/investbi/portfolio_tracker_bot/internal/model"
	"github.com/investbi/portfolio_tracker_bot/internal/timeseries"
	"github.com/shopspring/decimal"
)

type Field string

const (
	FieldClose Field = "Close"
	FieldOpen  Field = "Open"
	FieldHigh  Field = "High"
	FieldLow   Field = "Low"
)

// Fields is the fixed column order of the matrix, Close first since
// downstream consumers key off it.
var Fields = []Field{FieldClose, FieldOpen, FieldHigh, FieldLow}

// PriceMatrix merges per-asset OHLC series into one table keyed by
// (field, asset), indexed on the union of all assets' trading dates.
// An asset missing a date simply has no cell there; nothing is
// zero-filled at this stage.
type PriceMatrix struct {
	index  []time.Time
	assets []string
	frames map[Field]*timeseries.Frame
}

// NewPriceMatrix builds the matrix from already fetched series. Asset
// column order follows the input slice order. Each series must carry
// at least one candle with strictly increasing dates.
func NewPriceMatrix(series []model.PriceSeries) (*PriceMatrix, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no price series to merge")
	}

	assets := make([]string, 0, len(series))
	seen := make(map[string]struct{}, len(series))
	dateSet := make(map[time.Time]struct{})

	for _, s := range series {
		if len(s.Candles) == 0 {
			return nil, fmt.Errorf("empty price series for asset %s", s.AssetID)
		}
		if _, ok := seen[s.AssetID]; ok {
			return nil, fmt.Errorf("duplicate price series for asset %s", s.AssetID)
		}
		seen[s.AssetID] = struct{}{}
		assets = append(assets, s.AssetID)

		var prev time.Time
		for _, c := range s.Candles {
			d := timeseries.Normalize(c.Date)
			if !d.After(prev) {
				return nil, fmt.Errorf("price series for asset %s is not strictly increasing at %s", s.AssetID, d.Format("2006-01-02"))
			}
			prev = d
			dateSet[d] = struct{}{}
		}
	}

	index := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		index = append(index, d)
	}
	sort.Slice(index, func(i, j int) bool { return index[i].Before(index[j]) })

	frames := make(map[Field]*timeseries.Frame, len(Fields))
	for _, f := range Fields {
		frames[f] = timeseries.NewFrame(index, assets)
	}

	for _, s := range series {
		for _, c := range s.Candles {
			frames[FieldClose].Set(s.AssetID, c.Date, c.Close)
			frames[FieldOpen].Set(s.AssetID, c.Date, c.Open)
			frames[FieldHigh].Set(s.AssetID, c.Date, c.High)
			frames[FieldLow].Set(s.AssetID, c.Date, c.Low)
		}
	}

	return &PriceMatrix{index: index, assets: assets, frames: frames}, nil
}

func (m *PriceMatrix) Index() []time.Time { return m.index }

func (m *PriceMatrix) Assets() []string { return m.assets }

func (m *PriceMatrix) Frame(f Field) *timeseries.Frame { return m.frames[f] }

func (m *PriceMatrix) Close() *timeseries.Frame { return m.frames[FieldClose] }

func (m *PriceMatrix) CloseAt(asset string, date time.Time) (decimal.Decimal, bool) {
	return m.frames[FieldClose].At(asset, date)
}
