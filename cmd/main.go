// Command buydip runs a scheduled dip-buying bot. Once per day it
// evaluates the Fear and Greed index and the deviation of the current
// price from a long moving average, then places a tiered market buy on
// the configured exchange (CoinEx, Binance or Bybit).
//
// Usage:
//
//	buydip --config config.yaml
//
// Required environment variables (per platform):
//
//	For CoinEx: COINEX_API_KEY, COINEX_API_SECRET
//	For Binance: BINANCE_API_KEY, BINANCE_API_SECRET
//	For Bybit: BYBIT_API_KEY, BYBIT_API_SECRET
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/vadiminshakov/buydip/config"
	"github.com/vadiminshakov/buydip/internal"
	"github.com/vadiminshakov/buydip/internal/scheduler"
	"github.com/vadiminshakov/buydip/internal/services/history"
	"github.com/vadiminshakov/buydip/internal/services/recorder"
	"github.com/vadiminshakov/buydip/internal/services/sentiment"
	"github.com/vadiminshakov/buydip/internal/services/strategy"
	"github.com/vadiminshakov/buydip/internal/services/telemetry"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// .env is optional, real environment always wins
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logStartup(logger, cfg)

	reporter, err := telemetry.NewReporter(cfg.SentryDSN, logger)
	if err != nil {
		logger.Fatal("failed to init telemetry", zap.Error(err))
	}
	defer reporter.Close()

	var rec recorder.Recorder = recorder.Noop{}
	if cfg.SQLitePath != "" {
		sqliteRec, err := recorder.NewSQLite(cfg.SQLitePath)
		if err != nil {
			logger.Fatal("failed to open cycle database", zap.Error(err))
		}
		defer sqliteRec.Close()
		rec = sqliteRec
	}

	platform, err := internal.NewPlatform(cfg, logger)
	if err != nil {
		logger.Fatal("failed to init platform services", zap.Error(err))
	}
	defer platform.Submitter.Close()

	runner := strategy.NewRunner(
		logger,
		cfg.Pair,
		cfg.MAPeriodDays,
		strategy.Tiers{
			FNGThreshold:  cfg.FNGThresholdPercent,
			MAThreshold:   cfg.MAThresholdPercent,
			OverlapAmount: cfg.BuyOverlapAmount,
			FNGAmount:     cfg.BuyFNGAmount,
			MAAmount:      cfg.BuyMAAmount,
		},
		cfg.BuyDailyAmount,
		sentiment.NewFNGClient(cfg.RequestTimeout),
		history.NewSeriesCache(cfg.CacheFile, platform.Market, logger),
		platform.Market,
		platform.Submitter,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(logger, runner, rec, reporter)
	hour, minute, err := config.ParseTriggerTime(cfg.TriggerTime)
	if err != nil {
		logger.Fatal("invalid trigger time", zap.Error(err))
	}
	if err := sched.Start(ctx, hour, minute); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}

	if cfg.RunOnStart {
		logger.Info("running evaluation cycle on start")
		sched.RunNow(ctx)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	cancel()
	sched.Stop()
}

// logStartup prints the effective configuration with secrets masked.
func logStartup(l *zap.Logger, cfg config.Config) {
	l.Info("starting buydip",
		zap.String("platform", cfg.Platform),
		zap.String("pair", cfg.Pair.String()),
		zap.String("trigger_time", cfg.TriggerTime),
		zap.Int("ma_period_days", cfg.MAPeriodDays),
		zap.String("fng_threshold", cfg.FNGThresholdPercent.String()),
		zap.String("ma_threshold", cfg.MAThresholdPercent.String()),
		zap.String("buy_overlap_amount", cfg.BuyOverlapAmount.String()),
		zap.String("buy_fng_amount", cfg.BuyFNGAmount.String()),
		zap.String("buy_ma_amount", cfg.BuyMAAmount.String()),
		zap.String("buy_daily_amount", cfg.BuyDailyAmount.String()),
		zap.String("cache_file", cfg.CacheFile),
		zap.Bool("run_on_start", cfg.RunOnStart),
		zap.String("api_key", maskSecret(cfg.APIKey)),
		zap.String("api_secret", maskSecret(cfg.APISecret)),
		zap.String("sentry_dsn", maskSecret(cfg.SentryDSN)),
	)
}

func maskSecret(s string) string {
	if s == "" {
		return "Not set"
	}
	return "Set"
}
