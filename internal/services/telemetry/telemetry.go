// Package telemetry forwards warnings, errors and cycle outcomes to an
// external error-tracking service. Reporting is strictly observational:
// its absence or failure never changes decision behavior.
package telemetry

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/buydip/internal/entity"
	"go.uber.org/zap"
)

const flushTimeout = 2 * time.Second

// Reporter mirrors selected events to an external tracker.
type Reporter interface {
	Message(msg string)
	Warn(msg string)
	CaptureError(err error)
	Outcome(outcome entity.Outcome)
	Close()
}

// NewReporter returns a Sentry-backed reporter when dsn is set and a
// no-op reporter otherwise.
func NewReporter(dsn string, l *zap.Logger) (Reporter, error) {
	if dsn == "" {
		l.Info("SENTRY_DSN not set, logging to console only")
		return noopReporter{}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
		return nil, errors.Wrap(err, "failed to init sentry")
	}

	return &sentryReporter{}, nil
}

type sentryReporter struct{}

func (r *sentryReporter) Message(msg string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelInfo)
		sentry.CaptureMessage(msg)
	})
}

func (r *sentryReporter) Warn(msg string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelWarning)
		sentry.CaptureMessage(msg)
	})
}

func (r *sentryReporter) CaptureError(err error) {
	sentry.CaptureException(err)
}

func (r *sentryReporter) Outcome(outcome entity.Outcome) {
	if outcome.Err != nil {
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetLevel(sentry.LevelError)
			scope.SetExtra("outcome", outcome.String())
			sentry.CaptureException(outcome.Err)
		})
		return
	}
	r.Message(outcome.String())
}

func (r *sentryReporter) Close() {
	sentry.Flush(flushTimeout)
}

type noopReporter struct{}

func (noopReporter) Message(string)         {}
func (noopReporter) Warn(string)            {}
func (noopReporter) CaptureError(error)     {}
func (noopReporter) Outcome(entity.Outcome) {}
func (noopReporter) Close()                 {}
