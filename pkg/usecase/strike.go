package usecase

import (
	"context"

	"github.com/harmonix-lab/taskbeat/pkg/domain/model"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
	"github.com/harmonix-lab/taskbeat/pkg/service/notify"
	"github.com/harmonix-lab/taskbeat/pkg/utils/errutil"
)

// AddStrike increments the user's strike count, capped at the ceiling,
// and runs the demotion check on the resulting count
func (uc *UseCases) AddStrike(ctx context.Context, memberID types.MemberID) (int, error) {
	count, err := uc.repo.User().IncrementStrikes(ctx, memberID, 1)
	if err != nil {
		return 0, err
	}
	uc.checkDemotion(ctx, memberID, count)
	return count, nil
}

// RemoveStrike decrements the user's strike count, floored at zero.
// Removing from zero is a no-op, not an error.
func (uc *UseCases) RemoveStrike(ctx context.Context, memberID types.MemberID) (int, error) {
	return uc.repo.User().IncrementStrikes(ctx, memberID, -1)
}

// checkDemotion fires the demotion action when the count reaches the
// ceiling. Re-invocation while already at the ceiling is safe; the action
// sink owns its own idempotence.
func (uc *UseCases) checkDemotion(ctx context.Context, memberID types.MemberID, count int) {
	if count < model.StrikeCeiling {
		return
	}

	if uc.demoter != nil {
		if err := uc.demoter.Demote(ctx, memberID); err != nil {
			errutil.Handle(ctx, err, "failed to demote user")
		}
	}

	if err := uc.notifier.Notify(ctx, notify.KindDemotion, notify.Payload{
		MemberID: memberID,
		Strikes:  count,
		Message:  "strike ceiling reached",
	}); err != nil {
		errutil.Handle(ctx, err, "failed to notify demotion")
	}
}
