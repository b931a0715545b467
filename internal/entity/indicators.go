package entity

import "github.com/shopspring/decimal"

// Indicators carries everything the decision step needs for one cycle.
// Recomputed every cycle, never persisted.
type Indicators struct {
	// Price is the current last-trade price.
	Price decimal.Decimal
	// MA is the simple moving average over EffectiveWindow closes.
	// Valid only when HasMA is true.
	MA    decimal.Decimal
	HasMA bool
	// FNG is the Fear & Greed index, 0..100. Valid only when HasFNG is
	// true; a failed sentiment fetch leaves it unknown.
	FNG    int
	HasFNG bool
	// EffectiveWindow is min(ConfiguredWindow, series length).
	EffectiveWindow  int
	ConfiguredWindow int
}

// Degraded reports that the moving average was computed over fewer days
// than configured. Still a valid signal, but worth a warning.
func (i Indicators) Degraded() bool {
	return i.HasMA && i.EffectiveWindow < i.ConfiguredWindow
}
