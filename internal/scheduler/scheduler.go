// Package scheduler fires the evaluation cycle once per day at a
// configured wall-clock time.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/vadiminshakov/buydip/internal/entity"
	"github.com/vadiminshakov/buydip/internal/services/recorder"
	"github.com/vadiminshakov/buydip/internal/services/telemetry"
	"go.uber.org/zap"
)

type cycler interface {
	Run(ctx context.Context) entity.Outcome
	RunDailyPurchase(ctx context.Context) entity.Outcome
}

// Scheduler wraps a cron instance that triggers one signal cycle and
// one daily fixed purchase per tick. Ticks never overlap: if a cycle
// is still running when the next fires, the new tick is skipped.
type Scheduler struct {
	cron     *cron.Cron
	runner   cycler
	recorder recorder.Recorder
	reporter telemetry.Reporter
	l        *zap.Logger

	mu      sync.Mutex
	running bool
}

func New(l *zap.Logger, runner cycler, rec recorder.Recorder, rep telemetry.Reporter) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		runner:   runner,
		recorder: rec,
		reporter: rep,
		l:        l,
	}
}

// Start registers the daily trigger and starts the cron loop.
// hour and minute are interpreted in UTC.
func (s *Scheduler) Start(ctx context.Context, hour, minute int) error {
	spec := fmt.Sprintf("0 %d %d * * *", minute, hour)
	if _, err := s.cron.AddFunc(spec, func() { s.RunNow(ctx) }); err != nil {
		return errors.Wrapf(err, "failed to schedule trigger %02d:%02d", hour, minute)
	}

	s.cron.Start()
	s.l.Info("scheduler started",
		zap.String("trigger", fmt.Sprintf("%02d:%02d", hour, minute)),
		zap.Time("next run", s.cron.Entries()[0].Next))
	return nil
}

// RunNow executes one full tick immediately. Used for the on-start run
// and by the cron trigger itself.
func (s *Scheduler) RunNow(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.l.Warn("previous cycle still running, skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.record(s.runner.Run(ctx))
	s.record(s.runner.RunDailyPurchase(ctx))
}

func (s *Scheduler) record(outcome entity.Outcome) {
	s.l.Info("cycle finished", zap.String("outcome", outcome.String()))
	s.reporter.Outcome(outcome)

	if err := s.recorder.RecordCycle(outcome); err != nil {
		s.l.Error("failed to record cycle", zap.Error(err))
		s.reporter.CaptureError(err)
	}
}

// Stop halts the cron loop and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		s.l.Warn("timed out waiting for running cycle to stop")
	}
}
