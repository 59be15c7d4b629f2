package investingApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/investbi/portfolio_tracker_bot/config"
	"github.com/investbi/portfolio_tracker_bot/internal/externalApi"
	"github.com/investbi/portfolio_tracker_bot/internal/model"
	"github.com/investbi/portfolio_tracker_bot/internal/model/investingModel"
	"github.com/investbi/portfolio_tracker_bot/internal/timeseries"
	"github.com/investbi/portfolio_tracker_bot/utils"
)

const dateParamLayout = "02/01/2006"

// historyPathByClass maps each asset class to its fetch endpoint.
// Dispatch happens here, once, instead of branching on class strings
// at every call site.
var historyPathByClass = map[model.AssetClass]string{
	model.AssetClassStock: "/history/stocks",
	model.AssetClassFund:  "/history/funds",
	model.AssetClassETF:   "/history/etfs",
}

type InvestingApi struct {
	client  *resty.Client
	country string
}

func New(cfg *config.Config) *InvestingApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.InvestingApi.Url)
	return &InvestingApi{client: client, country: cfg.API.InvestingApi.Country}
}

// GetPriceHistory loads one asset's daily OHLC series for [from, to]
// in the configured market jurisdiction. An empty result surfaces as
// externalApi.ErrDataUnavailable.
func (a *InvestingApi) GetPriceHistory(ctx context.Context, asset string, class model.AssetClass, from, to time.Time) (model.PriceSeries, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "InvestingApi.GetPriceHistory"

	path, ok := historyPathByClass[class]
	if !ok {
		return model.PriceSeries{}, fmt.Errorf("no history endpoint for asset class %q", class)
	}

	params := map[string]string{
		"symbol":    asset,
		"country":   a.country,
		"from_date": from.Format(dateParamLayout),
		"to_date":   to.Format(dateParamLayout),
	}

	slog.Debug("GetPriceHistory start", slog.String("rqID", rqID), slog.String("op", op), slog.String("asset", asset))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(path)

	if err != nil {
		slog.Error("error while dialing InvestingApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PriceSeries{}, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return model.PriceSeries{}, externalApi.ErrDataUnavailable
	}

	if resp.IsError() {
		slog.Error("InvestingApi returned error status", slog.String("rqID", rqID), slog.String("op", op), slog.Int("status", resp.StatusCode()))
		return model.PriceSeries{}, fmt.Errorf("investing api status %d for asset %s", resp.StatusCode(), asset)
	}

	rawHistory := investingModel.RawHistory{}
	err = json.Unmarshal(resp.Body(), &rawHistory)
	if err != nil {
		slog.Error("can't unmarshall response into investingModel.RawHistory", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PriceSeries{}, err
	}

	if len(rawHistory.Data) == 0 {
		return model.PriceSeries{}, externalApi.ErrDataUnavailable
	}

	series, err := a.parseRawHistory(asset, class, rawHistory)
	if err != nil {
		slog.Error("can't parse raw history", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PriceSeries{}, err
	}

	slog.Debug("GetPriceHistory request complete", slog.String("rqID", rqID), slog.String("op", op), slog.String("asset", asset))

	return series, nil
}

func (a *InvestingApi) parseRawHistory(asset string, class model.AssetClass, raw investingModel.RawHistory) (model.PriceSeries, error) {
	candles := make([]model.Candle, 0, len(raw.Data))
	for _, r := range raw.Data {
		date, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			return model.PriceSeries{}, fmt.Errorf("bad date %q in history for %s: %w", r.Date, asset, err)
		}
		candles = append(candles, model.Candle{
			Date:  timeseries.Normalize(date),
			Open:  r.Open,
			High:  r.High,
			Low:   r.Low,
			Close: r.Close,
		})
	}
	return model.PriceSeries{AssetID: asset, Class: class, Candles: candles}, nil
}
