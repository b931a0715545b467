package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/buydip/internal/entity"
	"go.uber.org/zap"
)

type countingProvider struct {
	calls  int
	points []entity.PricePoint
	err    error
}

func (p *countingProvider) GetDailyHistory(context.Context, entity.Pair, int) ([]entity.PricePoint, error) {
	p.calls++
	return p.points, p.err
}

func dailyPoints(now time.Time, days int) []entity.PricePoint {
	points := make([]entity.PricePoint, days)
	for i := 0; i < days; i++ {
		points[i] = entity.PricePoint{
			Day:   entity.Day(now.AddDate(0, 0, i-days+1)),
			Close: decimal.NewFromInt(int64(40000 + i)),
		}
	}
	return points
}

var testPair = entity.Pair{From: "BTC", To: "USDT"}

func TestGetFetchesThenReusesCache(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "btc_usdt_historical.csv")
	provider := &countingProvider{points: dailyPoints(now, 5)}

	cache := NewSeriesCache(path, provider, zap.NewNop())
	cache.now = func() time.Time { return now }

	series, short, err := cache.Get(context.Background(), testPair, 5)
	require.NoError(t, err)
	require.False(t, short)
	require.Equal(t, 5, series.Len())
	require.Equal(t, 1, provider.calls)

	// second read comes from disk without touching the provider
	series2, short, err := cache.Get(context.Background(), testPair, 5)
	require.NoError(t, err)
	require.False(t, short)
	require.Equal(t, 1, provider.calls)
	require.Equal(t, series.Len(), series2.Len())
	require.True(t, series.Last().Close.Equal(series2.Last().Close))
	require.True(t, series.Last().Day.Equal(series2.Last().Day))
}

func TestGetRefetchesStaleCache(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "cache.csv")
	provider := &countingProvider{points: dailyPoints(now, 5)}

	cache := NewSeriesCache(path, provider, zap.NewNop())
	cache.now = func() time.Time { return now }

	_, _, err := cache.Get(context.Background(), testPair, 5)
	require.NoError(t, err)
	require.Equal(t, 1, provider.calls)

	// two days later the newest cached point is too old
	later := now.AddDate(0, 0, 2)
	cache.now = func() time.Time { return later }
	provider.points = dailyPoints(later, 5)

	_, _, err = cache.Get(context.Background(), testPair, 5)
	require.NoError(t, err)
	require.Equal(t, 2, provider.calls)
}

func TestGetRefetchesShortCache(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "cache.csv")
	provider := &countingProvider{points: dailyPoints(now, 3)}

	cache := NewSeriesCache(path, provider, zap.NewNop())
	cache.now = func() time.Time { return now }

	_, short, err := cache.Get(context.Background(), testPair, 3)
	require.NoError(t, err)
	require.False(t, short)

	// a larger window invalidates the 3-point cache
	provider.points = dailyPoints(now, 5)
	_, short, err = cache.Get(context.Background(), testPair, 5)
	require.NoError(t, err)
	require.False(t, short)
	require.Equal(t, 2, provider.calls)
}

func TestGetShortFetchIsDegradedNotFatal(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "cache.csv")
	provider := &countingProvider{points: dailyPoints(now, 3)}

	cache := NewSeriesCache(path, provider, zap.NewNop())
	cache.now = func() time.Time { return now }

	series, short, err := cache.Get(context.Background(), testPair, 730)
	require.NoError(t, err)
	require.True(t, short)
	require.Equal(t, 3, series.Len())
}

func TestGetMalformedCacheIsAMiss(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "cache.csv")
	require.NoError(t, os.WriteFile(path, []byte("day,close\nnot-a-date,nan\n"), 0o644))

	provider := &countingProvider{points: dailyPoints(now, 5)}
	cache := NewSeriesCache(path, provider, zap.NewNop())
	cache.now = func() time.Time { return now }

	series, _, err := cache.Get(context.Background(), testPair, 5)
	require.NoError(t, err)
	require.Equal(t, 5, series.Len())
	require.Equal(t, 1, provider.calls)
}

func TestGetFetchFailureIsDataUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.csv")
	provider := &countingProvider{err: errors.New("exchange down")}

	cache := NewSeriesCache(path, provider, zap.NewNop())

	_, _, err := cache.Get(context.Background(), testPair, 5)
	require.ErrorIs(t, err, entity.ErrDataUnavailable)
}

func TestGetEmptyFetchIsDataUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.csv")
	provider := &countingProvider{}

	cache := NewSeriesCache(path, provider, zap.NewNop())

	_, _, err := cache.Get(context.Background(), testPair, 5)
	require.ErrorIs(t, err, entity.ErrDataUnavailable)
}
