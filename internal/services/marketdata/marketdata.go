// Package marketdata fetches spot prices and daily close history from
// one venue's public API. Every provider shares one retry policy and
// normalizes history to deduplicated, ascending daily points.
package marketdata

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/buydip/internal/entity"
	"github.com/vadiminshakov/buydip/pkg/retrier"
)

// Provider is the venue-facing market data contract consumed by the
// cache and the strategy runner.
type Provider interface {
	GetPrice(ctx context.Context, pair entity.Pair) (decimal.Decimal, error)
	GetDailyHistory(ctx context.Context, pair entity.Pair, days int) ([]entity.PricePoint, error)
}

// fetchPrice runs a single price attempt through the retry budget and
// maps exhaustion to ErrUpstreamUnavailable.
func fetchPrice(ctx context.Context, r *retrier.Retrier, fn func(ctx context.Context) (decimal.Decimal, error)) (decimal.Decimal, error) {
	price, err := retrier.DoWithData(r, ctx, fn)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(entity.ErrUpstreamUnavailable,
			"price fetch failed after %d attempts: %v", r.Attempts(), err)
	}
	return price, nil
}

// fetchHistory runs a single history attempt through the retry budget.
// An upstream answer with zero records counts as an attempt failure, not
// an empty success.
func fetchHistory(ctx context.Context, r *retrier.Retrier, fn func(ctx context.Context) ([]entity.PricePoint, error)) ([]entity.PricePoint, error) {
	points, err := retrier.DoWithData(r, ctx, func(ctx context.Context) ([]entity.PricePoint, error) {
		pts, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if len(pts) == 0 {
			return nil, errors.New("no historical data returned")
		}
		return pts, nil
	})
	if err != nil {
		return nil, errors.Wrapf(entity.ErrUpstreamUnavailable,
			"history fetch failed after %d attempts: %v", r.Attempts(), err)
	}
	return entity.NormalizePoints(points), nil
}
