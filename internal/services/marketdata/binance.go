package marketdata

import (
	"context"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/buydip/internal/entity"
	"github.com/vadiminshakov/buydip/pkg/retrier"
)

// BinanceProvider reads Binance spot market data through the official SDK.
type BinanceProvider struct {
	client  *binance.Client
	retrier *retrier.Retrier
}

func NewBinanceProvider(client *binance.Client, r *retrier.Retrier) *BinanceProvider {
	return &BinanceProvider{client: client, retrier: r}
}

func (p *BinanceProvider) GetPrice(ctx context.Context, pair entity.Pair) (decimal.Decimal, error) {
	return fetchPrice(ctx, p.retrier, func(ctx context.Context) (decimal.Decimal, error) {
		prices, err := p.client.NewListPricesService().Symbol(pair.Symbol()).Do(ctx)
		if err != nil {
			return decimal.Decimal{}, err
		}
		if len(prices) == 0 {
			return decimal.Decimal{}, errors.Errorf("binance API returned empty prices for %s", pair.String())
		}
		return decimal.NewFromString(prices[0].Price)
	})
}

func (p *BinanceProvider) GetDailyHistory(ctx context.Context, pair entity.Pair, days int) ([]entity.PricePoint, error) {
	return fetchHistory(ctx, p.retrier, func(ctx context.Context) ([]entity.PricePoint, error) {
		klines, err := p.client.NewKlinesService().
			Symbol(pair.Symbol()).
			Interval("1d").
			Limit(days).
			Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fetch klines from binance for %s", pair.String())
		}

		points := make([]entity.PricePoint, 0, len(klines))
		for i, k := range klines {
			close, err := decimal.NewFromString(k.Close)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to parse close price at index %d", i)
			}
			points = append(points, entity.PricePoint{
				Day:   time.Unix(0, k.OpenTime*int64(time.Millisecond)),
				Close: close,
			})
		}
		return points, nil
	})
}
