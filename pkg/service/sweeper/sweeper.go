package sweeper

import (
	"context"
	"errors"
	"time"

	"github.com/harmonix-lab/taskbeat/pkg/domain/model"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
	"github.com/harmonix-lab/taskbeat/pkg/utils/logging"
)

// Engine is the part of the usecase layer the sweeper drives
type Engine interface {
	RunSweepOnce(ctx context.Context, now time.Time) (*model.SweepResult, error)
}

// Sweeper runs the lifecycle sweep on a fixed wall-clock interval, with
// one catch-up run at startup.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - Overlap protection lives in the engine; a tick that lands mid-sweep
//   is skipped, never queued
type Sweeper struct {
	engine   Engine
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

type Option func(*Sweeper)

// WithClock injects the time source passed to each sweep
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		s.now = now
	}
}

// New creates a sweeper driving the engine at the given interval
func New(engine Engine, interval time.Duration, opts ...Option) *Sweeper {
	s := &Sweeper{
		engine:   engine,
		interval: interval,
		now: func() time.Time {
			return time.Now().UTC()
		},
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the sweep loop. The catch-up run and the periodic ticks
// both run in a background goroutine; startup is not blocked.
func (s *Sweeper) Start(ctx context.Context) error {
	logging.Default().Info("sweeper starting", "interval", s.interval.String())
	go s.run(ctx)
	return nil
}

// Stop signals the sweeper to stop and waits for the loop to exit
func (s *Sweeper) Stop() {
	logging.Default().Info("sweeper stopping")
	close(s.stopCh)
	<-s.doneCh
	logging.Default().Info("sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.doneCh)

	// Catch-up sweep: reminders and overdue transitions missed while the
	// process was down are handled immediately.
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)

		case <-s.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("sweeper context cancelled")
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	result, err := s.engine.RunSweepOnce(ctx, s.now())
	if err != nil {
		if errors.Is(err, types.ErrSweepInProgress) {
			logging.Default().Warn("previous sweep still running, tick skipped")
			return
		}
		logging.Default().Error("sweep failed (will retry next interval)",
			"error", err.Error())
		return
	}

	logging.Default().Info("sweep tick completed",
		"reminders_sent", result.RemindersSent,
		"overdue_processed", result.OverdueProcessed,
	)
}
