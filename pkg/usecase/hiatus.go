package usecase

import (
	"context"
	"time"

	"github.com/harmonix-lab/taskbeat/pkg/domain/model"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
	"github.com/harmonix-lab/taskbeat/pkg/service/notify"
	"github.com/harmonix-lab/taskbeat/pkg/utils/async"
	"github.com/harmonix-lab/taskbeat/pkg/utils/errutil"
	"github.com/harmonix-lab/taskbeat/pkg/utils/logging"
)

// frozenDeadline is written while an assignment is paused. The sweep and
// classifier branch on the Frozen flag; the far-future deadline is a
// second guard so even a path that ignores the flag never sees the task
// as reminder-due or overdue.
var frozenDeadline = time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC)

// PauseForHiatus marks the user as on hiatus and freezes every pending
// assignment they own. Frozen assignments get the far-future deadline and
// both reminder flags forced true.
func (uc *UseCases) PauseForHiatus(ctx context.Context, memberID types.MemberID) (*model.User, error) {
	user, err := uc.repo.User().SetHiatus(ctx, memberID, true)
	if err != nil {
		return nil, err
	}

	owned, err := uc.repo.Assignment().ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	frozen := 0
	for _, a := range owned {
		if a.Status != types.AssignmentStatusPending || a.Frozen {
			continue
		}

		a.Frozen = true
		a.Deadline = frozenDeadline
		a.FirstReminderSent = true
		a.FinalReminderSent = true
		if _, err := uc.repo.Assignment().Update(ctx, a); err != nil {
			errutil.Handle(ctx, err, "failed to freeze assignment")
			continue
		}
		frozen++
	}

	logging.From(ctx).Info("hiatus started",
		"member_id", memberID,
		"frozen", frozen,
	)

	// Outcome notice is informational only, no state depends on delivery.
	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.notifier.Notify(ctx, notify.KindHiatusOutcome, notify.Payload{
			MemberID: memberID,
			Message:  "hiatus started",
		})
	})

	return user, nil
}

// ResumeFromHiatus clears the hiatus flag and restarts every frozen
// pending assignment as if freshly assigned: new deadline from now, both
// reminder flags reset. Assignments whose role or task type no longer
// resolves against the policy table are left frozen rather than given a
// bogus deadline. The one-shot extension state is deliberately preserved
// across hiatus cycles.
func (uc *UseCases) ResumeFromHiatus(ctx context.Context, memberID types.MemberID) (*model.User, error) {
	user, err := uc.repo.User().SetHiatus(ctx, memberID, false)
	if err != nil {
		return nil, err
	}

	owned, err := uc.repo.Assignment().ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	resumed, skipped := 0, 0
	for _, a := range owned {
		if a.Status != types.AssignmentStatusPending || !a.Frozen {
			continue
		}

		if !uc.calc.Resolves(a.RoleID, a.TaskType) {
			logging.From(ctx).Warn("assignment policy no longer resolves, left frozen",
				"id", a.ID,
				"role_id", a.RoleID,
				"task_type", a.TaskType,
			)
			skipped++
			continue
		}

		due, err := uc.calc.Deadline(a.RoleID, a.TaskType, now, 0)
		if err != nil {
			errutil.Handle(ctx, err, "failed to recompute deadline on resume")
			skipped++
			continue
		}

		// Fresh-start semantics: the assignment behaves exactly like one
		// created at resume time, so the reminder tier is derived from the
		// new window.
		a.AssignedAt = now
		a.Deadline = due
		a.FirstReminderSent = false
		a.FinalReminderSent = false
		a.Frozen = false
		if _, err := uc.repo.Assignment().Update(ctx, a); err != nil {
			errutil.Handle(ctx, err, "failed to restart assignment")
			continue
		}
		resumed++
	}

	logging.From(ctx).Info("hiatus ended",
		"member_id", memberID,
		"resumed", resumed,
		"skipped", skipped,
	)

	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.notifier.Notify(ctx, notify.KindHiatusOutcome, notify.Payload{
			MemberID: memberID,
			Message:  "hiatus ended",
		})
	})

	return user, nil
}
