package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/harmonix-lab/taskbeat/pkg/domain/interfaces"
	"github.com/harmonix-lab/taskbeat/pkg/domain/model"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
	"github.com/harmonix-lab/taskbeat/pkg/service/notify"
	"github.com/harmonix-lab/taskbeat/pkg/utils/errutil"
	"github.com/harmonix-lab/taskbeat/pkg/utils/logging"
)

// Sweep runs one sweep at the injected clock's current time
func (uc *UseCases) Sweep(ctx context.Context) (*model.SweepResult, error) {
	return uc.RunSweepOnce(ctx, uc.now())
}

// RunSweepOnce evaluates every pending assignment at the given instant:
// sends due reminders, transitions overdue assignments to LATE and accrues
// strikes. Sweeps never overlap; a call while one is running returns
// types.ErrSweepInProgress and does nothing.
//
// Commit ordering is deliberate and asymmetric. Reminder flags are
// persisted only after the notification succeeds, so a delivery failure
// retries next sweep (duplicate-send is the accepted failure direction).
// The LATE transition and strike are committed before the overdue
// notification, so a delivery failure never leaves an assignment stuck
// pending past its deadline.
func (uc *UseCases) RunSweepOnce(ctx context.Context, now time.Time) (*model.SweepResult, error) {
	if !uc.sweepMu.TryLock() {
		return nil, goerr.Wrap(types.ErrSweepInProgress, "skipping sweep")
	}
	defer uc.sweepMu.Unlock()

	result := &model.SweepResult{}
	hiatus := newHiatusCache(uc.repo)

	if err := uc.sweepReminders(ctx, now, hiatus, result); err != nil {
		return nil, err
	}
	if err := uc.sweepOverdue(ctx, now, hiatus, result); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("sweep finished",
		"at", now,
		"reminders_sent", result.RemindersSent,
		"reminders_skipped", result.RemindersSkipped,
		"overdue_processed", result.OverdueProcessed,
		"overdue_skipped", result.OverdueSkipped,
	)
	return result, nil
}

func (uc *UseCases) sweepReminders(ctx context.Context, now time.Time, hiatus *hiatusCache, result *model.SweepResult) error {
	pending, err := uc.repo.Assignment().ListByStatus(ctx, types.AssignmentStatusPending)
	if err != nil {
		return goerr.Wrap(err, "failed to list pending assignments")
	}

	for _, a := range pending {
		on, err := hiatus.onHiatus(ctx, a.MemberID)
		if err != nil {
			errutil.Handle(ctx, err, "failed to check hiatus state")
			result.RemindersSkipped++
			continue
		}
		if on {
			continue
		}

		stage := uc.classifier.Classify(a, now)
		if stage == types.ReminderNone {
			continue
		}

		kind := notify.KindFirstReminder
		if stage == types.ReminderFinal {
			kind = notify.KindFinalReminder
		}

		if err := uc.notifier.Notify(ctx, kind, notify.Payload{
			MemberID:  a.MemberID,
			TaskName:  a.DisplayName(),
			RoleName:  a.RoleName,
			TaskType:  a.TaskType,
			Deadline:  a.Deadline,
			Remaining: a.TimeRemaining(now),
		}); err != nil {
			// Flag stays false, next sweep retries
			errutil.Handle(ctx, err, "failed to deliver reminder")
			result.RemindersSkipped++
			continue
		}

		if err := uc.repo.Assignment().MarkReminderSent(ctx, a.ID, stage); err != nil {
			errutil.Handle(ctx, err, "failed to mark reminder sent")
			result.RemindersSkipped++
			continue
		}
		result.RemindersSent++
	}
	return nil
}

func (uc *UseCases) sweepOverdue(ctx context.Context, now time.Time, hiatus *hiatusCache, result *model.SweepResult) error {
	overdue, err := uc.repo.Assignment().ListOverdue(ctx, now)
	if err != nil {
		return goerr.Wrap(err, "failed to list overdue assignments")
	}

	for _, a := range overdue {
		on, err := hiatus.onHiatus(ctx, a.MemberID)
		if err != nil {
			errutil.Handle(ctx, err, "failed to check hiatus state")
			result.OverdueSkipped++
			continue
		}
		if on {
			result.OverdueSkipped++
			continue
		}

		if _, err := uc.repo.Assignment().UpdateStatus(ctx, a.ID, types.AssignmentStatusLate); err != nil {
			errutil.Handle(ctx, err, "failed to mark assignment late")
			result.OverdueSkipped++
			continue
		}

		strikes, strikeErr := uc.repo.User().IncrementStrikes(ctx, a.MemberID, 1)
		if strikeErr != nil {
			errutil.Handle(ctx, strikeErr, "failed to add strike for overdue assignment")
		}

		if err := uc.notifier.Notify(ctx, notify.KindOverdue, notify.Payload{
			MemberID: a.MemberID,
			TaskName: a.DisplayName(),
			RoleName: a.RoleName,
			TaskType: a.TaskType,
			Deadline: a.Deadline,
			Strikes:  strikes,
		}); err != nil {
			// LATE and the strike are already committed; the assignment
			// will not be re-processed next sweep.
			errutil.Handle(ctx, err, "failed to deliver overdue notice")
		}

		if strikeErr == nil {
			uc.checkDemotion(ctx, a.MemberID, strikes)
		}
		result.OverdueProcessed++
	}
	return nil
}

// hiatusCache memoizes per-member hiatus lookups for the duration of one
// sweep. Unknown members are treated as not on hiatus.
type hiatusCache struct {
	users interfaces.UserRepository
	cache map[types.MemberID]bool
}

func newHiatusCache(repo interfaces.Repository) *hiatusCache {
	return &hiatusCache{users: repo.User(), cache: map[types.MemberID]bool{}}
}

func (c *hiatusCache) onHiatus(ctx context.Context, memberID types.MemberID) (bool, error) {
	if on, ok := c.cache[memberID]; ok {
		return on, nil
	}

	user, err := c.users.GetByMemberID(ctx, memberID)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			c.cache[memberID] = false
			return false, nil
		}
		return false, err
	}

	c.cache[memberID] = user.OnHiatus
	return user.OnHiatus, nil
}
