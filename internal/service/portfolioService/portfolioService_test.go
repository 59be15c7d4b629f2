package portfolioService

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/investbi/portfolio_tracker_bot/config"
	"github.com/investbi/portfolio_tracker_bot/data/repository"
	"github.com/investbi/portfolio_tracker_bot/internal/model"
	"github.com/investbi/portfolio_tracker_bot/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(dd int) time.Time {
	return time.Date(2021, time.January, dd, 0, 0, 0, 0, time.UTC)
}

type stubLedger struct {
	rows []model.LedgerRecord
	err  error
}

func (s *stubLedger) GetLedger(_ context.Context) ([]model.LedgerRecord, error) {
	return s.rows, s.err
}

// fetchPrices calls the price source from concurrent goroutines.
type stubPrices struct {
	mu     sync.Mutex
	series map[string]model.PriceSeries
	calls  []string
	err    error
}

func (s *stubPrices) GetPriceHistory(_ context.Context, asset string, _ model.AssetClass, _, _ time.Time) (model.PriceSeries, error) {
	s.mu.Lock()
	s.calls = append(s.calls, asset)
	s.mu.Unlock()
	if s.err != nil {
		return model.PriceSeries{}, s.err
	}
	series, ok := s.series[asset]
	if !ok {
		return model.PriceSeries{}, fmt.Errorf("no fixture for asset %s", asset)
	}
	return series, nil
}

type stubCache struct {
	mu     sync.Mutex
	stored map[string]model.PriceSeries
	sets   int
}

func (s *stubCache) GetPriceSeries(_ context.Context, asset string, _ model.AssetClass, _, _ time.Time) (model.PriceSeries, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if series, ok := s.stored[asset]; ok {
		return series, nil
	}
	return model.PriceSeries{}, errors.New("cache miss")
}

func (s *stubCache) SetPriceSeries(_ context.Context, _, _ time.Time, series model.PriceSeries) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stored == nil {
		s.stored = make(map[string]model.PriceSeries)
	}
	s.stored[series.AssetID] = series
	s.sets++
	return nil
}

type stubRepo struct {
	inserted  []model.Valuation
	latest    model.Valuation
	latestErr error
	insertErr error
}

func (s *stubRepo) InsertValuation(_ context.Context, v model.Valuation) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, v)
	return nil
}

func (s *stubRepo) GetLatestValuation(_ context.Context) (model.Valuation, error) {
	return s.latest, s.latestErr
}

type stubReport struct{ err error }

func (s *stubReport) Generate(_ context.Context, _ model.Valuation) ([]byte, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return []byte("xlsx"), ".xlsx", nil
}

type stubStorage struct {
	uploads []string
	deletes int
}

func (s *stubStorage) UploadFile(_ context.Context, _ io.Reader, filename string) (string, error) {
	s.uploads = append(s.uploads, filename)
	return "https://drive.example/" + filename, nil
}

func (s *stubStorage) DeleteOldFiles(_ context.Context) error {
	s.deletes++
	return nil
}

func testConfig() *config.Config {
	return &config.Config{Portfolio: config.Portfolio{HistoryStart: "01/01/2021"}}
}

func flatSeries(asset string, class model.AssetClass, px float64, days ...int) model.PriceSeries {
	p := decimal.NewFromFloat(px)
	candles := make([]model.Candle, 0, len(days))
	for _, dd := range days {
		candles = append(candles, model.Candle{Date: date(dd), Open: p, High: p, Low: p, Close: p})
	}
	return model.PriceSeries{AssetID: asset, Class: class, Candles: candles}
}

func TestValuateAt_FullPipeline(t *testing.T) {
	ledger := &stubLedger{rows: []model.LedgerRecord{
		{Date: "04/01/2021", AssetName: "ITSA4", AssetClass: "stock", Amount: "2000"},
		{Date: "05/01/2021", AssetName: "BOVA11", AssetClass: "etf", Amount: "1000"},
	}}
	prices := &stubPrices{series: map[string]model.PriceSeries{
		"ITSA4":  flatSeries("ITSA4", model.AssetClassStock, 10, 4, 5, 6),
		"BOVA11": flatSeries("BOVA11", model.AssetClassETF, 100, 4, 5, 6),
	}}
	repo := &stubRepo{}

	svc := New(testConfig(), repo, nil, ledger, prices, &stubReport{}, &stubStorage{})

	v, err := svc.ValuateAt(context.Background(), date(6))
	require.NoError(t, err)

	assert.Equal(t, date(6), v.AsOf)
	assert.Equal(t, date(4), v.Inception)

	require.Len(t, v.Patrimony, 3)
	assert.Equal(t, date(4), v.Patrimony[0].Date)
	assert.True(t, v.Patrimony[0].Value.Equal(decimal.NewFromInt(2000)))
	assert.True(t, v.Patrimony[2].Value.Equal(decimal.NewFromInt(3000)), "got %s", v.Patrimony[2].Value)

	// Flat prices, flat returns.
	require.Len(t, v.Returns, 3)
	for _, p := range v.Returns {
		assert.True(t, p.Value.IsZero())
	}
	require.Len(t, v.CumulativeReturns, 3)
	assert.True(t, v.CumulativeReturns[2].Value.Equal(decimal.NewFromInt(1)))

	assert.Equal(t, []string{"ITSA4", "BOVA11"}, v.Allocation.Assets)
	require.Len(t, v.Allocation.Rows, 3)
	assert.True(t, v.Allocation.Rows[0].Units[1].IsZero(), "BOVA11 held nothing before its buy")
	assert.True(t, v.Allocation.Rows[2].Units[0].Equal(decimal.NewFromInt(200)))
	assert.True(t, v.Allocation.Rows[2].Units[1].Equal(decimal.NewFromInt(10)))

	require.Len(t, repo.inserted, 1, "successful run is persisted")
	assert.Equal(t, v.AsOf, repo.inserted[0].AsOf)
}

func TestValuateAt_LedgerFailureAborts(t *testing.T) {
	ledger := &stubLedger{err: errors.New("sheet unavailable")}
	repo := &stubRepo{}

	svc := New(testConfig(), repo, nil, ledger, &stubPrices{}, &stubReport{}, &stubStorage{})

	_, err := svc.ValuateAt(context.Background(), date(6))
	require.Error(t, err)
	assert.Empty(t, repo.inserted)
}

func TestValuateAt_PriceFetchFailureAborts(t *testing.T) {
	ledger := &stubLedger{rows: []model.LedgerRecord{
		{Date: "04/01/2021", AssetName: "ITSA4", AssetClass: "stock", Amount: "2000"},
	}}
	prices := &stubPrices{err: errors.New("api down")}
	repo := &stubRepo{}

	svc := New(testConfig(), repo, nil, ledger, prices, &stubReport{}, &stubStorage{})

	_, err := svc.ValuateAt(context.Background(), date(6))
	require.Error(t, err)
	assert.Empty(t, repo.inserted)
}

func TestValuateAt_InsertFailureAborts(t *testing.T) {
	ledger := &stubLedger{rows: []model.LedgerRecord{
		{Date: "04/01/2021", AssetName: "ITSA4", AssetClass: "stock", Amount: "2000"},
	}}
	prices := &stubPrices{series: map[string]model.PriceSeries{
		"ITSA4": flatSeries("ITSA4", model.AssetClassStock, 10, 4, 5),
	}}
	repo := &stubRepo{insertErr: errors.New("db down")}

	svc := New(testConfig(), repo, nil, ledger, prices, &stubReport{}, &stubStorage{})

	_, err := svc.ValuateAt(context.Background(), date(5))
	require.Error(t, err)
}

func TestValuateAt_CachePopulatedAndReused(t *testing.T) {
	ledger := &stubLedger{rows: []model.LedgerRecord{
		{Date: "04/01/2021", AssetName: "ITSA4", AssetClass: "stock", Amount: "2000"},
	}}
	prices := &stubPrices{series: map[string]model.PriceSeries{
		"ITSA4": flatSeries("ITSA4", model.AssetClassStock, 10, 4, 5),
	}}
	cache := &stubCache{}
	repo := &stubRepo{}

	svc := New(testConfig(), repo, cache, ledger, prices, &stubReport{}, &stubStorage{})

	_, err := svc.ValuateAt(context.Background(), date(5))
	require.NoError(t, err)
	assert.Len(t, prices.calls, 1)
	assert.Equal(t, 1, cache.sets)

	_, err = svc.ValuateAt(context.Background(), date(5))
	require.NoError(t, err)
	assert.Len(t, prices.calls, 1, "second run served from cache")
}

func TestGetLatestValuation_MapsNotFound(t *testing.T) {
	repo := &stubRepo{latestErr: repository.ErrNotFound}

	svc := New(testConfig(), repo, nil, &stubLedger{}, &stubPrices{}, &stubReport{}, &stubStorage{})

	_, err := svc.GetLatestValuation(context.Background())
	assert.ErrorIs(t, err, service.ErrNoValuation)
}

func TestGenerateReport_UsesStoredValuation(t *testing.T) {
	repo := &stubRepo{latest: model.Valuation{AsOf: date(6)}}
	storage := &stubStorage{}

	svc := New(testConfig(), repo, nil, &stubLedger{}, &stubPrices{}, &stubReport{}, storage)

	link, err := svc.GenerateReport(context.Background())
	require.NoError(t, err)

	require.Len(t, storage.uploads, 1)
	assert.Equal(t, "portfolio_report_2021-01-06.xlsx", storage.uploads[0])
	assert.Equal(t, "https://drive.example/portfolio_report_2021-01-06.xlsx", link)
}

func TestGenerateReport_RefreshesWhenNothingStored(t *testing.T) {
	ledger := &stubLedger{rows: []model.LedgerRecord{
		{Date: "04/01/2021", AssetName: "ITSA4", AssetClass: "stock", Amount: "2000"},
	}}
	prices := &stubPrices{series: map[string]model.PriceSeries{
		"ITSA4": flatSeries("ITSA4", model.AssetClassStock, 10, 4, 5),
	}}
	repo := &stubRepo{latestErr: repository.ErrNotFound}
	storage := &stubStorage{}

	svc := New(testConfig(), repo, nil, ledger, prices, &stubReport{}, storage)

	_, err := svc.GenerateReport(context.Background())
	require.NoError(t, err)
	require.Len(t, repo.inserted, 1, "report triggered a fresh valuation")
	require.Len(t, storage.uploads, 1)
}

func TestCleanupReports(t *testing.T) {
	storage := &stubStorage{}

	svc := New(testConfig(), &stubRepo{}, nil, &stubLedger{}, &stubPrices{}, &stubReport{}, storage)

	require.NoError(t, svc.CleanupReports(context.Background()))
	assert.Equal(t, 1, storage.deletes)
}
