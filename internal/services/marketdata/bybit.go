package marketdata

import (
	"context"
	"strconv"
	"time"

	bybit "github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/buydip/internal/entity"
	"github.com/vadiminshakov/buydip/pkg/retrier"
)

// BybitProvider reads Bybit spot market data through the V5 API client.
type BybitProvider struct {
	client  *bybit.Client
	retrier *retrier.Retrier
}

func NewBybitProvider(client *bybit.Client, r *retrier.Retrier) *BybitProvider {
	return &BybitProvider{client: client, retrier: r}
}

func (p *BybitProvider) GetPrice(ctx context.Context, pair entity.Pair) (decimal.Decimal, error) {
	return fetchPrice(ctx, p.retrier, func(ctx context.Context) (decimal.Decimal, error) {
		symbol := bybit.SymbolV5(pair.Symbol())

		result, err := p.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
			Category: bybit.CategoryV5Spot,
			Symbol:   &symbol,
		})
		if err != nil {
			return decimal.Decimal{}, err
		}
		if len(result.Result.Spot.List) == 0 {
			return decimal.Decimal{}, errors.Errorf("bybit API returned empty prices for %s", pair.String())
		}
		return decimal.NewFromString(result.Result.Spot.List[0].LastPrice)
	})
}

func (p *BybitProvider) GetDailyHistory(ctx context.Context, pair entity.Pair, days int) ([]entity.PricePoint, error) {
	return fetchHistory(ctx, p.retrier, func(ctx context.Context) ([]entity.PricePoint, error) {
		limit := days

		result, err := p.client.V5().Market().GetKline(bybit.V5GetKlineParam{
			Category: bybit.CategoryV5Spot,
			Symbol:   bybit.SymbolV5(pair.Symbol()),
			Interval: bybit.IntervalD,
			Limit:    &limit,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fetch klines from bybit for %s", pair.String())
		}

		points := make([]entity.PricePoint, 0, len(result.Result.List))
		for i, k := range result.Result.List {
			startMs, err := strconv.ParseInt(k.StartTime, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to parse kline start time at index %d", i)
			}
			close, err := decimal.NewFromString(k.Close)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to parse close price at index %d", i)
			}
			points = append(points, entity.PricePoint{
				Day:   time.UnixMilli(startMs),
				Close: close,
			})
		}
		return points, nil
	})
}
