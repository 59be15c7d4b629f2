package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/investbi/portfolio_tracker_bot/config"
	"github.com/investbi/portfolio_tracker_bot/data"
	"github.com/investbi/portfolio_tracker_bot/data/cache"
	"github.com/investbi/portfolio_tracker_bot/data/repository/postgres"
	"github.com/investbi/portfolio_tracker_bot/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/investbi/portfolio_tracker_bot/internal/externalApi/investingApi"
	"github.com/investbi/portfolio_tracker_bot/internal/externalApi/sheetsApi"
	"github.com/investbi/portfolio_tracker_bot/internal/reportGenerator/xlsxGenerator"
	"github.com/investbi/portfolio_tracker_bot/internal/scheduler"
	"github.com/investbi/portfolio_tracker_bot/internal/service/portfolioService"
	"github.com/investbi/portfolio_tracker_bot/internal/tgbot"
	"github.com/investbi/portfolio_tracker_bot/internal/transport/telegram"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)

	investingApiClient := investingApi.New(cfg)
	sheetsApiClient := sheetsApi.New(cfg)

	reportGenerator := xlsxGenerator.New()

	googleCloudStorage := googleDriveApi.New(ctx, cfg)

	portfolioSrv := portfolioService.New(cfg, pgRepo, redisCache, sheetsApiClient, investingApiClient, reportGenerator, googleCloudStorage)

	sched := scheduler.New()
	sched.NewIntervalJob("refresh valuation", func(ctx context.Context) error {
		_, err := portfolioSrv.RefreshValuation(ctx)
		return err
	}, cfg.Jobs.RefreshValuationInterval, true)
	sched.NewIntervalJob("cleanup reports", portfolioSrv.CleanupReports, cfg.Jobs.CleanupReportsInterval, false)
	sched.Start()
	defer sched.Stop()

	tgController := telegram.NewController(cfg, portfolioSrv)

	tgBot := tgbot.New(cfg, tgController)
	tgBot.Start()
	defer tgBot.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
