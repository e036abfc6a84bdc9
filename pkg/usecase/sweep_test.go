package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
	"github.com/harmonix-lab/taskbeat/pkg/service/notify"
	"github.com/harmonix-lab/taskbeat/pkg/usecase"
)

func TestSweepReminderWalk(t *testing.T) {
	// A 7 day skit: first reminder due 2 days out, final 1 day out,
	// strike on the sweep after the deadline passes.
	ctx := context.Background()
	env := newTestEnv(t)
	env.assignSkit(t, "M100")

	// Day 3: quiet
	env.clock.Advance(3 * day)
	result, err := env.uc.Sweep(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, result.RemindersSent).Equal(0)
	gt.Value(t, result.OverdueProcessed).Equal(0)

	// Day 5: two days remaining, first reminder
	env.clock.Advance(2 * day)
	result, err = env.uc.Sweep(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, result.RemindersSent).Equal(1)
	gt.Value(t, env.notifier.CountKind(notify.KindFirstReminder)).Equal(1)

	// Same instant again: flag already set, nothing re-sent
	result, err = env.uc.Sweep(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, result.RemindersSent).Equal(0)

	// Day 6: one day remaining, final reminder
	env.clock.Advance(1 * day)
	result, err = env.uc.Sweep(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, result.RemindersSent).Equal(1)
	gt.Value(t, env.notifier.CountKind(notify.KindFinalReminder)).Equal(1)

	// Day 7 + 1s: overdue, LATE plus one strike, no further reminders
	env.clock.Advance(1*day + time.Second)
	result, err = env.uc.Sweep(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, result.RemindersSent).Equal(0)
	gt.Value(t, result.OverdueProcessed).Equal(1)
	gt.Value(t, env.notifier.CountKind(notify.KindOverdue)).Equal(1)

	user, err := env.repo.User().GetByMemberID(ctx, "M100")
	gt.NoError(t, err).Required()
	gt.Value(t, user.Strikes).Equal(1)

	// Next sweep: assignment is LATE already, no double strike
	env.clock.Advance(1 * day)
	result, err = env.uc.Sweep(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, result.OverdueProcessed).Equal(0)

	user, err = env.repo.User().GetByMemberID(ctx, "M100")
	gt.NoError(t, err).Required()
	gt.Value(t, user.Strikes).Equal(1)
}

func TestSweepSkipsStraightToFinal(t *testing.T) {
	// A sweep gap that jumps past the first-reminder window still delivers
	// exactly one reminder, the final one.
	ctx := context.Background()
	env := newTestEnv(t)
	env.assignSkit(t, "M100")

	env.clock.Advance(6*day + time.Hour)
	result, err := env.uc.Sweep(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, result.RemindersSent).Equal(1)
	gt.Value(t, env.notifier.CountKind(notify.KindFinalReminder)).Equal(1)
	gt.Value(t, env.notifier.CountKind(notify.KindFirstReminder)).Equal(0)
}

func TestSweepReminderRetryOnDeliveryFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	id := env.assignSkit(t, "M100")

	env.notifier.FailKind(notify.KindFirstReminder, true)
	env.clock.Advance(5 * day)

	result, err := env.uc.Sweep(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, result.RemindersSent).Equal(0)
	gt.Value(t, result.RemindersSkipped).Equal(1)

	// Flag was not committed, so the next sweep retries
	stored, err := env.repo.Assignment().Get(ctx, id)
	gt.NoError(t, err).Required()
	gt.Bool(t, stored.FirstReminderSent).False()

	env.notifier.FailKind(notify.KindFirstReminder, false)
	result, err = env.uc.Sweep(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, result.RemindersSent).Equal(1)

	stored, err = env.repo.Assignment().Get(ctx, id)
	gt.NoError(t, err).Required()
	gt.Bool(t, stored.FirstReminderSent).True()
}

func TestSweepOverdueCommitsBeforeNotify(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	id := env.assignSkit(t, "M100")

	env.notifier.FailKind(notify.KindOverdue, true)
	env.clock.Advance(8 * day)

	result, err := env.uc.Sweep(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, result.OverdueProcessed).Equal(1)

	// LATE and the strike are committed despite the failed notice
	stored, err := env.repo.Assignment().Get(ctx, id)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.Status).Equal(types.AssignmentStatusLate)

	user, err := env.repo.User().GetByMemberID(ctx, "M100")
	gt.NoError(t, err).Required()
	gt.Value(t, user.Strikes).Equal(1)

	// And the next sweep does not re-process it
	env.notifier.FailKind(notify.KindOverdue, false)
	result, err = env.uc.Sweep(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, result.OverdueProcessed).Equal(0)
	gt.Value(t, env.notifier.CountKind(notify.KindOverdue)).Equal(0)
}

func TestSweepMultipleOverdueAccrueSeparateStrikes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.assignSkit(t, "M100")
	env.assignSkit(t, "M100")

	env.clock.Advance(8 * day)
	result, err := env.uc.Sweep(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, result.OverdueProcessed).Equal(2)

	user, err := env.repo.User().GetByMemberID(ctx, "M100")
	gt.NoError(t, err).Required()
	gt.Value(t, user.Strikes).Equal(2)
}

// blockingNotifier parks the first delivery until released, holding the
// sweep lock open for the serialization test
type blockingNotifier struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (b *blockingNotifier) Notify(ctx context.Context, kind notify.Kind, p notify.Payload) error {
	b.once.Do(func() {
		close(b.entered)
		<-b.release
	})
	return nil
}

func rebuildWithNotifier(t *testing.T, env *testEnv, s notify.Service) *usecase.UseCases {
	t.Helper()
	return usecase.New(env.repo, testTable(t),
		usecase.WithNotifier(s),
		usecase.WithDemotionSink(env.demoter),
		usecase.WithClock(env.clock.Now),
	)
}

func TestSweepSerialization(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.assignSkit(t, "M100")
	env.clock.Advance(5 * day)

	release := make(chan struct{})
	entered := make(chan struct{})
	blocking := &blockingNotifier{entered: entered, release: release}
	env.uc = rebuildWithNotifier(t, env, blocking)

	done := make(chan error, 1)
	go func() {
		_, err := env.uc.Sweep(ctx)
		done <- err
	}()

	<-entered
	_, err := env.uc.Sweep(ctx)
	gt.Error(t, err).Is(types.ErrSweepInProgress)

	close(release)
	gt.NoError(t, <-done).Required()
}
