package engine

import (
	"errors"
	"testing"

	"github.com/investbi/portfolio_tracker_bot/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buy(dd int, asset string, amount int64) model.Transaction {
	return model.Transaction{
		TradeDate: day(dd),
		AssetID:   asset,
		Class:     model.AssetClassStock,
		Amount:    decimal.NewFromInt(amount),
	}
}

func TestBuildHoldings_UnitsFromClosingPrice(t *testing.T) {
	prices, err := NewPriceMatrix([]model.PriceSeries{
		{AssetID: "ITSA4", Class: model.AssetClassStock, Candles: []model.Candle{
			flatCandle(4, 10), flatCandle(5, 11),
		}},
	})
	require.NoError(t, err)

	h, err := BuildHoldings([]model.Transaction{buy(4, "ITSA4", 2000)}, prices)
	require.NoError(t, err)

	entries := h.Entries("ITSA4")
	require.Len(t, entries, 1)
	assert.Equal(t, day(4), entries[0].Date)
	assert.True(t, entries[0].Units.Equal(decimal.NewFromInt(200)), "2000 / 10 = 200 units, got %s", entries[0].Units)
}

func TestBuildHoldings_UnitsAccumulate(t *testing.T) {
	prices, err := NewPriceMatrix([]model.PriceSeries{
		{AssetID: "ITSA4", Class: model.AssetClassStock, Candles: []model.Candle{
			flatCandle(4, 10), flatCandle(5, 20),
		}},
	})
	require.NoError(t, err)

	h, err := BuildHoldings([]model.Transaction{
		buy(4, "ITSA4", 2000),
		buy(5, "ITSA4", 1000),
	}, prices)
	require.NoError(t, err)

	entries := h.Entries("ITSA4")
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Units.Equal(decimal.NewFromInt(200)))
	assert.True(t, entries[1].Units.Equal(decimal.NewFromInt(250)), "200 + 1000/20, got %s", entries[1].Units)
	assert.True(t, entries[1].Units.GreaterThan(entries[0].Units), "buys only, units never shrink")
}

func TestBuildHoldings_SameDayBuysCollapse(t *testing.T) {
	prices, err := NewPriceMatrix([]model.PriceSeries{
		{AssetID: "ITSA4", Class: model.AssetClassStock, Candles: []model.Candle{flatCandle(4, 10)}},
	})
	require.NoError(t, err)

	h, err := BuildHoldings([]model.Transaction{
		buy(4, "ITSA4", 1000),
		buy(4, "ITSA4", 500),
	}, prices)
	require.NoError(t, err)

	entries := h.Entries("ITSA4")
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Units.Equal(decimal.NewFromInt(150)))
}

func TestBuildHoldings_PriceMissingOnTradeDate(t *testing.T) {
	prices, err := NewPriceMatrix([]model.PriceSeries{
		{AssetID: "ITSA4", Class: model.AssetClassStock, Candles: []model.Candle{flatCandle(5, 10)}},
	})
	require.NoError(t, err)

	_, err = BuildHoldings([]model.Transaction{buy(4, "ITSA4", 2000)}, prices)
	require.Error(t, err)

	var notFound *PriceNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "ITSA4", notFound.AssetID)
	assert.Equal(t, day(4), notFound.Date)
}

func TestBuildHoldings_NonPositiveClose(t *testing.T) {
	prices, err := NewPriceMatrix([]model.PriceSeries{
		{AssetID: "OIBR3", Class: model.AssetClassStock, Candles: []model.Candle{flatCandle(4, 0)}},
	})
	require.NoError(t, err)

	_, err = BuildHoldings([]model.Transaction{buy(4, "OIBR3", 100)}, prices)
	assert.Error(t, err)
}

func TestHoldingsLedger_EarliestDate(t *testing.T) {
	prices, err := NewPriceMatrix([]model.PriceSeries{
		{AssetID: "ITSA4", Class: model.AssetClassStock, Candles: []model.Candle{flatCandle(4, 10), flatCandle(6, 10)}},
		{AssetID: "BOVA11", Class: model.AssetClassETF, Candles: []model.Candle{flatCandle(4, 100), flatCandle(6, 100)}},
	})
	require.NoError(t, err)

	h, err := BuildHoldings([]model.Transaction{
		buy(4, "ITSA4", 1000),
		buy(6, "BOVA11", 1000),
	}, prices)
	require.NoError(t, err)

	assert.Equal(t, []string{"ITSA4", "BOVA11"}, h.Assets())
	assert.Equal(t, day(4), h.EarliestDate())

	first, ok := h.FirstDate("BOVA11")
	require.True(t, ok)
	assert.Equal(t, day(6), first)

	_, ok = h.FirstDate("PETR4")
	assert.False(t, ok)
}
