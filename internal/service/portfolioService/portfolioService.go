package portfolioService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/investbi/portfolio_tracker_bot/config"
	"github.com/investbi/portfolio_tracker_bot/data/repository"
	"github.com/investbi/portfolio_tracker_bot/internal/engine"
	"github.com/investbi/portfolio_tracker_bot/internal/model"
	"github.com/investbi/portfolio_tracker_bot/internal/service"
	"github.com/investbi/portfolio_tracker_bot/internal/timeseries"
	"github.com/investbi/portfolio_tracker_bot/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type LedgerSource interface {
	GetLedger(ctx context.Context) ([]model.LedgerRecord, error)
}

type PriceSource interface {
	GetPriceHistory(ctx context.Context, asset string, class model.AssetClass, from, to time.Time) (model.PriceSeries, error)
}

type Cache interface {
	GetPriceSeries(ctx context.Context, asset string, class model.AssetClass, from, to time.Time) (model.PriceSeries, error)
	SetPriceSeries(ctx context.Context, from, to time.Time, series model.PriceSeries) error
}

type Repository interface {
	InsertValuation(ctx context.Context, v model.Valuation) error
	GetLatestValuation(ctx context.Context) (model.Valuation, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, v model.Valuation) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
	DeleteOldFiles(ctx context.Context) error
}

type PortfolioService struct {
	repo            Repository
	cache           Cache
	ledger          LedgerSource
	prices          PriceSource
	reportGenerator ReportGenerator
	cloudStorage    CloudStorage
	historyStart    time.Time
}

func New(
	cfg *config.Config,
	repo Repository,
	cache Cache,
	ledger LedgerSource,
	prices PriceSource,
	reportGenerator ReportGenerator,
	cloudStorage CloudStorage,
) *PortfolioService {
	historyStart, err := time.Parse("02/01/2006", cfg.Portfolio.HistoryStart)
	if err != nil {
		slog.Error("bad PORTFOLIO_HISTORY_START", slog.String("value", cfg.Portfolio.HistoryStart))
		panic(err)
	}

	return &PortfolioService{
		repo:            repo,
		cache:           cache,
		ledger:          ledger,
		prices:          prices,
		reportGenerator: reportGenerator,
		cloudStorage:    cloudStorage,
		historyStart:    timeseries.Normalize(historyStart),
	}
}

// RefreshValuation runs the whole pipeline against the current date
// and stores the result, discarding nothing until the new run has
// fully succeeded.
func (s *PortfolioService) RefreshValuation(ctx context.Context) (model.Valuation, error) {
	return s.ValuateAt(ctx, time.Now().UTC())
}

// ValuateAt runs the full pipeline with an explicit evaluation cutoff:
// ledger -> holdings -> allocation joined with the price matrix ->
// valuation -> returns. Any failure aborts the run; there is no
// partial result.
func (s *PortfolioService) ValuateAt(ctx context.Context, asOf time.Time) (model.Valuation, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ValuateAt"

	slog.Debug("ValuateAt start", slog.String("rqID", rqID), slog.String("op", op), slog.Time("asOf", asOf))
	defer func() {
		slog.Debug("ValuateAt finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	rows, err := s.ledger.GetLedger(ctx)
	if err != nil {
		slog.Error("got error from ledger.GetLedger", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Valuation{}, err
	}

	txs, err := engine.NormalizeLedger(rows)
	if err != nil {
		slog.Error("got error from engine.NormalizeLedger", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Valuation{}, err
	}

	series, err := s.fetchPrices(ctx, engine.PartitionByClass(txs), asOf)
	if err != nil {
		return model.Valuation{}, err
	}

	matrix, err := engine.NewPriceMatrix(series)
	if err != nil {
		slog.Error("got error from engine.NewPriceMatrix", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Valuation{}, err
	}

	holdings, err := engine.BuildHoldings(txs, matrix)
	if err != nil {
		slog.Error("got error from engine.BuildHoldings", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Valuation{}, err
	}

	alloc := engine.BuildAllocation(holdings, asOf)
	value, patrimony := engine.Valuate(alloc, matrix)
	returns := engine.PortfolioReturns(value, patrimony, matrix)
	cumulative := engine.CumulativeReturns(returns)

	inception := engine.Inception(txs)
	valuation := model.Valuation{
		AsOf:              timeseries.Normalize(asOf),
		Inception:         inception,
		Patrimony:         toPoints(patrimony.TruncateBefore(inception)),
		Returns:           toPoints(returns.TruncateBefore(inception)),
		CumulativeReturns: toPoints(cumulative.TruncateBefore(inception)),
		Allocation:        toAllocationTable(alloc.TruncateBefore(inception)),
	}

	if err := s.repo.InsertValuation(ctx, valuation); err != nil {
		slog.Error("got error from repo.InsertValuation", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Valuation{}, err
	}

	return valuation, nil
}

// GetLatestValuation serves the most recent stored run between
// refreshes.
func (s *PortfolioService) GetLatestValuation(ctx context.Context) (model.Valuation, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetLatestValuation"

	v, err := s.repo.GetLatestValuation(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Valuation{}, service.ErrNoValuation
		}
		slog.Error("got error from repo.GetLatestValuation", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Valuation{}, err
	}

	return v, nil
}

// GenerateReport renders the latest valuation (computing one first if
// none is stored) and uploads it, returning the download link.
func (s *PortfolioService) GenerateReport(ctx context.Context) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GenerateReport"

	slog.Debug("GenerateReport start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GenerateReport finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	v, err := s.GetLatestValuation(ctx)
	if errors.Is(err, service.ErrNoValuation) {
		v, err = s.RefreshValuation(ctx)
	}
	if err != nil {
		return "", err
	}

	fileBytes, ext, err := s.reportGenerator.Generate(ctx, v)
	if err != nil {
		slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	filename := fmt.Sprintf("portfolio_report_%s%s", v.AsOf.Format("2006-01-02"), ext)
	link, err := s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	return link, nil
}

// CleanupReports prunes expired report files from cloud storage.
func (s *PortfolioService) CleanupReports(ctx context.Context) error {
	return s.cloudStorage.DeleteOldFiles(ctx)
}

// fetchPrices loads each asset's OHLC window, cache first, remaining
// misses concurrently from the price source. A single fetch failure
// aborts the whole batch; results keep deterministic class order so
// the matrix columns come out stable.
func (s *PortfolioService) fetchPrices(ctx context.Context, assetsByClass map[model.AssetClass][]string, asOf time.Time) ([]model.PriceSeries, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.fetchPrices"

	from := s.historyStart
	to := timeseries.Normalize(asOf)

	type request struct {
		asset string
		class model.AssetClass
	}

	requests := make([]request, 0)
	for _, class := range model.AssetClasses {
		for _, asset := range assetsByClass[class] {
			requests = append(requests, request{asset: asset, class: class})
		}
	}

	results := make([]model.PriceSeries, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			if s.cache != nil {
				if series, err := s.cache.GetPriceSeries(gctx, req.asset, req.class, from, to); err == nil {
					results[i] = series
					return nil
				}
			}

			series, err := s.prices.GetPriceHistory(gctx, req.asset, req.class, from, to)
			if err != nil {
				slog.Error(
					"got error from prices.GetPriceHistory",
					slog.String("rqID", rqID),
					slog.String("op", op),
					slog.String("asset", req.asset),
					slog.String("err", err.Error()),
				)
				return err
			}
			results[i] = series

			if s.cache != nil {
				if err := s.cache.SetPriceSeries(gctx, from, to, series); err != nil {
					slog.Debug("price series cache write failed", slog.String("rqID", rqID), slog.String("asset", req.asset))
				}
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func toPoints(s timeseries.Series) []model.SeriesPoint {
	points := make([]model.SeriesPoint, s.Len())
	for i := 0; i < s.Len(); i++ {
		points[i] = model.SeriesPoint{Date: s.Date(i), Value: s.Value(i)}
	}
	return points
}

func toAllocationTable(f *timeseries.Frame) model.AllocationTable {
	table := model.AllocationTable{Assets: f.Columns()}
	for i, d := range f.Index() {
		units := make([]decimal.Decimal, len(f.Columns()))
		for j, asset := range f.Columns() {
			v, _ := f.AtIndex(asset, i) // allocation frames are dense
			units[j] = v
		}
		table.Rows = append(table.Rows, model.AllocationRow{Date: d, Units: units})
	}
	return table
}
