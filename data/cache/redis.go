package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/investbi/portfolio_tracker_bot/config"
	"github.com/investbi/portfolio_tracker_bot/internal/model"
	"github.com/investbi/portfolio_tracker_bot/utils"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps fetched per-asset OHLC windows so a refresh that
// asks for an identical window skips the remote call.
type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func priceSeriesKey(asset string, class model.AssetClass, from, to time.Time) string {
	return fmt.Sprintf("prices:%s:%s:%s:%s", asset, class, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

func (r *RedisCache) GetPriceSeries(ctx context.Context, asset string, class model.AssetClass, from, to time.Time) (model.PriceSeries, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	key := priceSeriesKey(asset, class, from, to)

	res, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		}
		return model.PriceSeries{}, err
	}

	series := model.PriceSeries{}
	err = json.Unmarshal([]byte(res), &series)
	if err != nil {
		slog.Error(
			"can't unmarshall price series in GetPriceSeries",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("key", key),
		)
		return model.PriceSeries{}, errors.New("can't unmarshall price series")
	}

	return series, nil
}

func (r *RedisCache) SetPriceSeries(ctx context.Context, from, to time.Time, series model.PriceSeries) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	key := priceSeriesKey(series.AssetID, series.Class, from, to)

	seriesJson, err := json.Marshal(series)
	if err != nil {
		slog.Error(
			"can't marshall price series in SetPriceSeries",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("key", key),
		)
		return errors.New("can't marshall price series")
	}

	_, err = r.redis.Set(ctx, key, seriesJson, r.cfg.Cache.PricesExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		return err
	}

	return nil
}
