package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/harmonix-lab/taskbeat/pkg/domain/model"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
	"github.com/harmonix-lab/taskbeat/pkg/service/notify"
	"github.com/harmonix-lab/taskbeat/pkg/utils/errutil"
)

// RequestExtension validates that the one-shot extension is still
// available, records where the outcome should be posted and returns the
// amount an approval would grant. No deadline mutation happens here.
func (uc *UseCases) RequestExtension(ctx context.Context, id types.AssignmentID, channelID string) (*model.Assignment, time.Duration, error) {
	a, err := uc.repo.Assignment().Get(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if a.Status != types.AssignmentStatusPending {
		return nil, 0, goerr.Wrap(types.ErrAssignmentNotPending, "only pending assignments can be extended",
			goerr.V("id", id), goerr.V("status", a.Status))
	}
	if a.HasExtended {
		return nil, 0, goerr.Wrap(types.ErrAlreadyExtended, "extension already used", goerr.V("id", id))
	}

	amount, err := uc.calc.Extension(a.RoleID, a.TaskType, a.CustomExtension)
	if err != nil {
		return nil, 0, err
	}

	if channelID != "" {
		if err := uc.repo.Assignment().SetSubmissionChannel(ctx, id, channelID); err != nil {
			return nil, 0, err
		}
		a.SubmissionChannelID = channelID
	}

	return a, amount, nil
}

// ApproveExtension applies the one-shot extension atomically. Of two
// concurrent approvals exactly one succeeds; the other receives
// types.ErrAlreadyExtended and the deadline moves once.
func (uc *UseCases) ApproveExtension(ctx context.Context, id types.AssignmentID) (*model.Assignment, error) {
	a, err := uc.repo.Assignment().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != types.AssignmentStatusPending {
		return nil, goerr.Wrap(types.ErrAssignmentNotPending, "only pending assignments can be extended",
			goerr.V("id", id), goerr.V("status", a.Status))
	}

	amount, err := uc.calc.Extension(a.RoleID, a.TaskType, a.CustomExtension)
	if err != nil {
		return nil, err
	}

	extended, err := uc.repo.Assignment().Extend(ctx, id, amount)
	if err != nil {
		return nil, err
	}

	if err := uc.notifier.Notify(ctx, notify.KindApprovalOutcome, notify.Payload{
		MemberID:  extended.MemberID,
		TaskName:  extended.DisplayName(),
		RoleName:  extended.RoleName,
		TaskType:  extended.TaskType,
		Deadline:  extended.Deadline,
		Message:   "extension approved",
		ChannelID: extended.SubmissionChannelID,
	}); err != nil {
		errutil.Handle(ctx, err, "failed to notify extension approval")
	}

	return extended, nil
}

// DenyExtension posts the denial outcome. The assignment is not mutated;
// the extension stays available for a later request.
func (uc *UseCases) DenyExtension(ctx context.Context, id types.AssignmentID, reason string) error {
	a, err := uc.repo.Assignment().Get(ctx, id)
	if err != nil {
		return err
	}

	message := "extension denied"
	if reason != "" {
		message = "extension denied: " + reason
	}

	return uc.notifier.Notify(ctx, notify.KindApprovalOutcome, notify.Payload{
		MemberID:  a.MemberID,
		TaskName:  a.DisplayName(),
		RoleName:  a.RoleName,
		TaskType:  a.TaskType,
		Deadline:  a.Deadline,
		Message:   message,
		ChannelID: a.SubmissionChannelID,
	})
}
