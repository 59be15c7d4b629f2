package engine

import (
	"testing"

	"github.com/investbi/portfolio_tracker_bot/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuate_ValueIsUnitsTimesClose(t *testing.T) {
	prices, err := NewPriceMatrix([]model.PriceSeries{
		{AssetID: "ITSA4", Class: model.AssetClassStock, Candles: []model.Candle{
			flatCandle(4, 10), flatCandle(5, 11), flatCandle(6, 12),
		}},
	})
	require.NoError(t, err)

	h, err := BuildHoldings([]model.Transaction{buy(4, "ITSA4", 2000)}, prices)
	require.NoError(t, err)

	alloc := BuildAllocation(h, day(6))
	value, patrimony := Valuate(alloc, prices)

	// At purchase the position is worth exactly the invested amount.
	v, ok := value.At("ITSA4", day(4))
	require.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromInt(2000)), "got %s", v)

	v, ok = value.At("ITSA4", day(6))
	require.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromInt(2400)), "200 units x 12, got %s", v)

	require.Equal(t, 3, patrimony.Len())
	assert.True(t, patrimony.Value(0).Equal(decimal.NewFromInt(2000)))
	assert.True(t, patrimony.Value(2).Equal(decimal.NewFromInt(2400)))
}

func TestValuate_PatrimonyIsRowSum(t *testing.T) {
	prices, err := NewPriceMatrix([]model.PriceSeries{
		{AssetID: "ITSA4", Class: model.AssetClassStock, Candles: []model.Candle{flatCandle(4, 10), flatCandle(5, 10)}},
		{AssetID: "BOVA11", Class: model.AssetClassETF, Candles: []model.Candle{flatCandle(4, 100), flatCandle(5, 110)}},
	})
	require.NoError(t, err)

	h, err := BuildHoldings([]model.Transaction{
		buy(4, "ITSA4", 1000),
		buy(4, "BOVA11", 1000),
	}, prices)
	require.NoError(t, err)

	alloc := BuildAllocation(h, day(5))
	_, patrimony := Valuate(alloc, prices)

	require.Equal(t, 2, patrimony.Len())
	assert.True(t, patrimony.Value(0).Equal(decimal.NewFromInt(2000)))
	// ITSA4 flat, BOVA11 +10%.
	assert.True(t, patrimony.Value(1).Equal(decimal.NewFromInt(2100)), "got %s", patrimony.Value(1))
}

func TestValuate_MissingPriceCarriesPreviousValue(t *testing.T) {
	// No candle on Jan 5 while the position is held.
	prices, err := NewPriceMatrix([]model.PriceSeries{
		{AssetID: "ITSA4", Class: model.AssetClassStock, Candles: []model.Candle{flatCandle(4, 10), flatCandle(6, 12)}},
	})
	require.NoError(t, err)

	h, err := BuildHoldings([]model.Transaction{buy(4, "ITSA4", 2000)}, prices)
	require.NoError(t, err)

	alloc := BuildAllocation(h, day(6))
	value, patrimony := Valuate(alloc, prices)

	v, ok := value.At("ITSA4", day(5))
	require.True(t, ok, "gap filled from the last known value")
	assert.True(t, v.Equal(decimal.NewFromInt(2000)))
	assert.True(t, patrimony.Value(1).Equal(decimal.NewFromInt(2000)))

	v, ok = value.At("ITSA4", day(6))
	require.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromInt(2400)))
}

func TestValuate_ZeroAllocationWorthZeroWithoutPrices(t *testing.T) {
	// BOVA11 has no candles before its buy date at all.
	prices, err := NewPriceMatrix([]model.PriceSeries{
		{AssetID: "ITSA4", Class: model.AssetClassStock, Candles: []model.Candle{flatCandle(4, 10), flatCandle(5, 10), flatCandle(6, 10)}},
		{AssetID: "BOVA11", Class: model.AssetClassETF, Candles: []model.Candle{flatCandle(6, 100)}},
	})
	require.NoError(t, err)

	h, err := BuildHoldings([]model.Transaction{
		buy(4, "ITSA4", 1000),
		buy(6, "BOVA11", 1000),
	}, prices)
	require.NoError(t, err)

	alloc := BuildAllocation(h, day(6))
	value, patrimony := Valuate(alloc, prices)

	v, ok := value.At("BOVA11", day(4))
	require.True(t, ok)
	assert.True(t, v.IsZero())

	assert.True(t, patrimony.Value(0).Equal(decimal.NewFromInt(1000)))
	assert.True(t, patrimony.Value(2).Equal(decimal.NewFromInt(2000)))

	for i := 0; i < patrimony.Len(); i++ {
		assert.False(t, patrimony.Value(i).IsNegative(), "patrimony never negative")
	}
}
