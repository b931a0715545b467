package entity

import "github.com/pkg/errors"

// Error kinds for the decision pipeline. Callers match with errors.Is
// to tell retriable, cycle-fatal and config-fatal conditions apart
// instead of inspecting message strings.
var (
	// ErrInvalidConfiguration is fatal for the process.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrUpstreamUnavailable means the retry budget against a venue or
	// data source is exhausted. Fatal for the cycle only.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrInsufficientData means indicators cannot be computed from the
	// series at hand.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDataUnavailable means neither the cache nor a fetch produced a
	// usable historical series.
	ErrDataUnavailable = errors.New("historical data unavailable")
	// ErrOrderRejected means the venue declined the order.
	ErrOrderRejected = errors.New("order rejected")
)
