// Package recorder persists per-cycle outcomes for later inspection.
package recorder

import "github.com/vadiminshakov/buydip/internal/entity"

// Recorder stores the result of each completed cycle.
type Recorder interface {
	RecordCycle(outcome entity.Outcome) error
	Close() error
}

// Noop discards outcomes. Used when no database path is configured.
type Noop struct{}

func (Noop) RecordCycle(entity.Outcome) error { return nil }
func (Noop) Close() error                     { return nil }
