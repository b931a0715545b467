// Package indicator computes the moving-average signal input. It uses
// the cinar/indicator library for the SMA itself and keeps decimal
// precision at the boundaries.
package indicator

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/buydip/internal/entity"
)

// MovingAverage computes the simple moving average over the most recent
// effective window of the series, where effective = min(configured,
// series length). An empty series fails with ErrInsufficientData; a
// shortened window is a degraded-but-valid condition the caller surfaces
// as a warning via Indicators.Degraded.
func MovingAverage(series entity.Series, configuredWindow int) (ma decimal.Decimal, effectiveWindow int, err error) {
	if series.IsEmpty() {
		return decimal.Decimal{}, 0, errors.Wrap(entity.ErrInsufficientData, "historical series is empty")
	}
	if configuredWindow < 1 {
		return decimal.Decimal{}, 0, errors.Wrapf(entity.ErrInsufficientData,
			"moving average window must be positive, got %d", configuredWindow)
	}

	effectiveWindow = configuredWindow
	if series.Len() < effectiveWindow {
		effectiveWindow = series.Len()
	}

	closes := decimalsToFloat64(series.Closes())
	closes = closes[len(closes)-effectiveWindow:]

	sma := trend.NewSmaWithPeriod[float64](effectiveWindow)
	out := helper.ChanToSlice(sma.Compute(helper.SliceToChan(closes)))
	if len(out) == 0 {
		return decimal.Decimal{}, 0, errors.Wrapf(entity.ErrInsufficientData,
			"moving average undefined for %d points", series.Len())
	}

	return decimal.NewFromFloat(out[len(out)-1]), effectiveWindow, nil
}

func decimalsToFloat64(decimals []decimal.Decimal) []float64 {
	result := make([]float64, len(decimals))
	for i, d := range decimals {
		result[i], _ = d.Float64()
	}
	return result
}
