package usecase

import (
	"sync"
	"time"

	"github.com/harmonix-lab/taskbeat/pkg/domain/interfaces"
	"github.com/harmonix-lab/taskbeat/pkg/domain/model/policy"
	"github.com/harmonix-lab/taskbeat/pkg/service/deadline"
	"github.com/harmonix-lab/taskbeat/pkg/service/notify"
)

// UseCases bundles the deadline engine operations exposed to the command
// layer and the sweeper.
type UseCases struct {
	repo       interfaces.Repository
	calc       *deadline.Calculator
	classifier *deadline.Classifier
	notifier   notify.Service
	demoter    notify.DemotionSink
	now        func() time.Time

	// sweepMu serializes sweeps. A tick that fires while a sweep is
	// running is skipped, never queued.
	sweepMu sync.Mutex
}

type Option func(*UseCases)

// WithNotifier replaces the default log-only notification sink
func WithNotifier(s notify.Service) Option {
	return func(uc *UseCases) {
		uc.notifier = s
	}
}

// WithDemotionSink sets the platform action invoked at the strike ceiling
func WithDemotionSink(s notify.DemotionSink) Option {
	return func(uc *UseCases) {
		uc.demoter = s
	}
}

// WithClock injects the time source, used by tests to drive the engine
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, table *policy.Table, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:       repo,
		calc:       deadline.NewCalculator(table),
		classifier: deadline.NewClassifier(table.Thresholds()),
		notifier:   notify.NewLogger(),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Calculator exposes the policy-backed calculator for read-only callers
func (uc *UseCases) Calculator() *deadline.Calculator {
	return uc.calc
}
