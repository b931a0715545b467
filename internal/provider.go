package internal

import (
	"github.com/pkg/errors"
	"github.com/vadiminshakov/buydip/config"
	"github.com/vadiminshakov/buydip/internal/clients"
	"github.com/vadiminshakov/buydip/internal/entity"
	"github.com/vadiminshakov/buydip/internal/services/marketdata"
	"github.com/vadiminshakov/buydip/internal/services/trader"
	"github.com/vadiminshakov/buydip/pkg/retrier"
	"go.uber.org/zap"
)

// Platform bundles the venue-specific services for one exchange: price
// and kline access plus order submission. This is the single dispatch
// point for platform-specific implementations.
type Platform struct {
	Market    marketdata.Provider
	Submitter *trader.Submitter
}

// NewPlatform wires up the services for the configured exchange.
func NewPlatform(cfg config.Config, l *zap.Logger) (*Platform, error) {
	r := retrier.New(
		retrier.WithAttempts(cfg.RetryAttempts),
		retrier.WithDelay(cfg.RetryDelay),
	)

	var (
		market marketdata.Provider
		venue  trader.VenueAPI
	)

	switch cfg.Platform {
	case "coinex":
		market = marketdata.NewCoinexProvider(cfg.RequestTimeout, r)
		venue = trader.NewCoinexOrderAPI(cfg.APIKey, cfg.APISecret, cfg.Pair, cfg.RequestTimeout)

	case "binance":
		client := clients.NewBinanceClient(cfg.APIKey, cfg.APISecret)
		market = marketdata.NewBinanceProvider(client, r)
		venue = trader.NewBinanceOrderAPI(client, cfg.Pair)

	case "bybit":
		client := clients.NewBybitClient(cfg.APIKey, cfg.APISecret)
		market = marketdata.NewBybitProvider(client, r)
		venue = trader.NewBybitOrderAPI(client, cfg.Pair)

	default:
		return nil, errors.Wrapf(entity.ErrInvalidConfiguration, "unsupported platform %q", cfg.Platform)
	}

	submitter, err := trader.NewSubmitter(l, venue, r, cfg.WALDir)
	if err != nil {
		return nil, err
	}

	return &Platform{Market: market, Submitter: submitter}, nil
}
