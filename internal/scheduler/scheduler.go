// Package scheduler fires the message pipeline once per day at a
// configured local time.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// runTimeout bounds a single scheduled pipeline run.
const runTimeout = 5 * time.Minute

// RunFunc is called when the daily trigger fires.
type RunFunc func(ctx context.Context) error

// Scheduler triggers a RunFunc every day at hour:minute. A failed run is
// logged and forgotten; the next day's run is unaffected.
type Scheduler struct {
	logger *slog.Logger
	hour   int
	minute int
	loc    *time.Location
	run    RunFunc

	mu      sync.Mutex
	timer   *time.Timer
	running bool
	wg      sync.WaitGroup

	// now is the clock, injectable for tests.
	now func() time.Time
}

// New creates a scheduler that fires daily at hour:minute in loc.
func New(logger *slog.Logger, hour, minute int, loc *time.Location, run RunFunc) *Scheduler {
	return &Scheduler{
		logger: logger,
		hour:   hour,
		minute: minute,
		loc:    loc,
		run:    run,
		now:    time.Now,
	}
}

// Start arms the timer for the next firing. Calling Start on a running
// scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	next := s.nextRun(s.now())
	s.armLocked(next)
	s.logger.Info("scheduler started",
		"at", next,
		"schedule", time.Date(0, 1, 1, s.hour, s.minute, 0, 0, time.UTC).Format("15:04"),
	)
}

// Stop halts the scheduler and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// nextRun returns the next hour:minute occurrence strictly after now.
func (s *Scheduler) nextRun(now time.Time) time.Time {
	now = now.In(s.loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, s.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// armLocked sets the timer for the given firing time. Caller holds mu.
func (s *Scheduler) armLocked(next time.Time) {
	delay := time.Until(next)
	if delay < 0 {
		delay = 0
	}
	s.timer = time.AfterFunc(delay, s.onFire)
}

// onFire executes the run and reschedules for the next day.
func (s *Scheduler) onFire() {
	s.wg.Add(1)
	defer s.wg.Done()

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	start := s.now()
	if err := s.run(ctx); err != nil {
		// The day's message is simply not produced. No retry, no
		// accumulated failure state.
		s.logger.Error("scheduled generation failed", "error", err)
	} else {
		s.logger.Info("scheduled generation completed", "duration", s.now().Sub(start))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	next := s.nextRun(s.now())
	s.armLocked(next)
	s.logger.Debug("scheduler rearmed", "at", next)
}
