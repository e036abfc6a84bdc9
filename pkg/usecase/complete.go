package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/harmonix-lab/taskbeat/pkg/domain/model"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
	"github.com/harmonix-lab/taskbeat/pkg/service/notify"
	"github.com/harmonix-lab/taskbeat/pkg/utils/errutil"
)

// CompleteTask transitions a pending assignment to COMPLETED, removes one
// strike from the owner and posts the approval outcome. The status commit
// happens before notification; a delivery failure never rolls it back.
func (uc *UseCases) CompleteTask(ctx context.Context, id types.AssignmentID) (*model.Assignment, error) {
	a, err := uc.repo.Assignment().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != types.AssignmentStatusPending {
		return nil, goerr.Wrap(types.ErrAssignmentNotPending, "only pending assignments can be completed",
			goerr.V("id", id), goerr.V("status", a.Status))
	}

	updated, err := uc.repo.Assignment().UpdateStatus(ctx, id, types.AssignmentStatusCompleted)
	if err != nil {
		return nil, err
	}

	strikes, err := uc.repo.User().IncrementStrikes(ctx, a.MemberID, -1)
	if err != nil {
		// The completion already committed; surface the ledger failure
		// without undoing the transition.
		errutil.Handle(ctx, err, "failed to remove strike on completion")
		strikes = -1
	}

	if err := uc.notifier.Notify(ctx, notify.KindApprovalOutcome, notify.Payload{
		MemberID:  updated.MemberID,
		TaskName:  updated.DisplayName(),
		RoleName:  updated.RoleName,
		TaskType:  updated.TaskType,
		Deadline:  updated.Deadline,
		Strikes:   strikes,
		Message:   "submission approved",
		ChannelID: updated.SubmissionChannelID,
	}); err != nil {
		errutil.Handle(ctx, err, "failed to notify completion")
	}

	return updated, nil
}

// ExcuseTask transitions a pending assignment to EXCUSED. Manual operation,
// never triggered by the sweep; no strike or notification side effects.
func (uc *UseCases) ExcuseTask(ctx context.Context, id types.AssignmentID) (*model.Assignment, error) {
	a, err := uc.repo.Assignment().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != types.AssignmentStatusPending {
		return nil, goerr.Wrap(types.ErrAssignmentNotPending, "only pending assignments can be excused",
			goerr.V("id", id), goerr.V("status", a.Status))
	}
	return uc.repo.Assignment().UpdateStatus(ctx, id, types.AssignmentStatusExcused)
}
