// Package history owns the on-disk daily close series: a delimited text
// file an operator can inspect, replaced wholesale whenever it goes
// stale or short.
package history

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/buydip/internal/entity"
	"go.uber.org/zap"
)

const (
	dayLayout = "2006-01-02"
	// maxCacheAge is how far behind "now" the newest cached point may be
	// before the whole series is refetched.
	maxCacheAge = 24 * time.Hour
)

type marketProvider interface {
	GetDailyHistory(ctx context.Context, pair entity.Pair, days int) ([]entity.PricePoint, error)
}

// SeriesCache decides between reusing the persisted series and
// refetching the full window from the market data provider.
type SeriesCache struct {
	path   string
	market marketProvider
	l      *zap.Logger

	// now is injected so staleness tests do not sleep.
	now func() time.Time
}

func NewSeriesCache(path string, market marketProvider, l *zap.Logger) *SeriesCache {
	return &SeriesCache{
		path:   path,
		market: market,
		l:      l,
		now:    time.Now,
	}
}

// Get returns a usable series for the pair, preferring the cached file.
// The cached series is valid iff it holds at least windowDays points and
// its newest point is within a day of now. A refetched series shorter
// than windowDays is returned with short=true rather than failing; only
// an empty result is an error (ErrDataUnavailable).
func (c *SeriesCache) Get(ctx context.Context, pair entity.Pair, windowDays int) (entity.Series, bool, error) {
	if cached, ok := c.load(); ok {
		if len(cached) >= windowDays && c.fresh(cached) {
			c.l.Info("using cached historical data",
				zap.String("file", c.path),
				zap.Int("points", len(cached)))
			return entity.Series{Symbol: pair.Symbol(), RetrievedAt: c.now(), Points: cached}, false, nil
		}
		c.l.Info("cache outdated or insufficient, fetching new data",
			zap.Int("points", len(cached)),
			zap.Int("needed", windowDays))
	}

	points, err := c.market.GetDailyHistory(ctx, pair, windowDays)
	if err != nil {
		return entity.Series{}, false, errors.Wrapf(entity.ErrDataUnavailable,
			"cache invalid and fetch failed: %v", err)
	}
	if len(points) == 0 {
		return entity.Series{}, false, errors.Wrap(entity.ErrDataUnavailable, "fetch returned no points")
	}

	series := entity.Series{Symbol: pair.Symbol(), RetrievedAt: c.now(), Points: points}

	// persistence failure must not fail the cycle
	if err := c.persist(points); err != nil {
		c.l.Warn("failed to save historical data cache", zap.Error(err), zap.String("file", c.path))
	} else {
		c.l.Info("saved historical data", zap.String("file", c.path), zap.Int("points", len(points)))
	}

	short := len(points) < windowDays
	if short {
		c.l.Warn("short historical series",
			zap.Int("points", len(points)),
			zap.Int("needed", windowDays))
	}

	return series, short, nil
}

// fresh reports whether the newest point is within maxCacheAge of now.
func (c *SeriesCache) fresh(points []entity.PricePoint) bool {
	newest := points[len(points)-1].Day
	return c.now().Sub(newest) < maxCacheAge
}

// load reads the cached series; any malformed file is treated as a miss.
func (c *SeriesCache) load() ([]entity.PricePoint, bool) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		c.l.Warn("failed to load cache", zap.Error(err), zap.String("file", c.path))
		return nil, false
	}

	var points []entity.PricePoint
	for i, row := range rows {
		if i == 0 && len(row) > 0 && row[0] == "day" {
			continue // header
		}
		if len(row) != 2 {
			c.l.Warn("malformed cache row, discarding cache", zap.Int("row", i))
			return nil, false
		}
		day, err := time.Parse(dayLayout, row[0])
		if err != nil {
			c.l.Warn("malformed cache day, discarding cache", zap.Error(err), zap.Int("row", i))
			return nil, false
		}
		close, err := decimal.NewFromString(row[1])
		if err != nil {
			c.l.Warn("malformed cache close, discarding cache", zap.Error(err), zap.Int("row", i))
			return nil, false
		}
		points = append(points, entity.PricePoint{Day: day.UTC(), Close: close})
	}
	if len(points) == 0 {
		return nil, false
	}

	return entity.NormalizePoints(points), true
}

// persist writes the series to a temp file and renames it into place so
// a concurrent reader never sees a partial table.
func (c *SeriesCache) persist(points []entity.PricePoint) error {
	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temp cache file")
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write([]string{"day", "close"}); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write cache header")
	}
	for _, p := range points {
		if err := w.Write([]string{p.Day.UTC().Format(dayLayout), p.Close.String()}); err != nil {
			tmp.Close()
			return errors.Wrap(err, "failed to write cache row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to flush cache")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close temp cache file")
	}

	return errors.Wrap(os.Rename(tmp.Name(), c.path), "failed to replace cache file")
}
