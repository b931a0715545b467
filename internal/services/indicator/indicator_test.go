package indicator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/buydip/internal/entity"
)

func seriesOf(closes ...float64) entity.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]entity.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = entity.PricePoint{Day: start.AddDate(0, 0, i), Close: decimal.NewFromFloat(c)}
	}
	return entity.Series{Symbol: "BTCUSDT", Points: points}
}

func TestMovingAverageFullWindow(t *testing.T) {
	series := seriesOf(100, 200, 300, 400)

	ma, effective, err := MovingAverage(series, 4)
	require.NoError(t, err)
	require.Equal(t, 4, effective)
	require.True(t, ma.Equal(decimal.NewFromInt(250)), "got %s", ma.String())
}

func TestMovingAverageUsesMostRecentWindow(t *testing.T) {
	// only the newest two closes participate
	series := seriesOf(1000, 1000, 100, 300)

	ma, effective, err := MovingAverage(series, 2)
	require.NoError(t, err)
	require.Equal(t, 2, effective)
	require.True(t, ma.Equal(decimal.NewFromInt(200)), "got %s", ma.String())
}

func TestMovingAverageShortSeriesShrinksWindow(t *testing.T) {
	series := seriesOf(100, 300)

	ma, effective, err := MovingAverage(series, 730)
	require.NoError(t, err)
	require.Equal(t, 2, effective)
	require.True(t, ma.Equal(decimal.NewFromInt(200)), "got %s", ma.String())
}

func TestMovingAverageEmptySeries(t *testing.T) {
	_, _, err := MovingAverage(entity.Series{}, 730)
	require.ErrorIs(t, err, entity.ErrInsufficientData)
}

func TestMovingAverageInvalidWindow(t *testing.T) {
	_, _, err := MovingAverage(seriesOf(100), 0)
	require.ErrorIs(t, err, entity.ErrInsufficientData)
}
