package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/harmonix-lab/taskbeat/pkg/domain/model"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
	"github.com/harmonix-lab/taskbeat/pkg/utils/logging"
)

// Onboard returns the user record for the member, creating one on first
// contact
func (uc *UseCases) Onboard(ctx context.Context, memberID types.MemberID, username string) (*model.User, error) {
	return uc.repo.User().FindOrCreate(ctx, memberID, username)
}

// AssignTaskInput describes a new assignment request
type AssignTaskInput struct {
	MemberID    types.MemberID
	Username    string
	RoleID      types.RoleID
	RoleName    string
	TaskType    types.TaskType
	TaskName    string
	Description string

	// CustomDuration is required for the custom task type and forbidden
	// otherwise
	CustomDuration time.Duration

	// CustomExtension overrides the role's extension rule. Like
	// CustomDuration it is only accepted for custom-type tasks.
	CustomExtension time.Duration
}

// AssignTask creates a pending assignment with a policy-derived deadline
func (uc *UseCases) AssignTask(ctx context.Context, input AssignTaskInput) (*model.Assignment, error) {
	if err := input.RoleID.Validate(); err != nil {
		return nil, err
	}
	if err := input.TaskType.Validate(); err != nil {
		return nil, err
	}
	if !input.TaskType.IsCustom() {
		if input.CustomDuration != 0 {
			return nil, goerr.Wrap(types.ErrInvalidCustomDuration, "custom duration is only valid for custom tasks",
				goerr.V("taskType", input.TaskType))
		}
		// Same restriction for the extension override: standard tasks take
		// the role's extension rule, never a per-assignment amount.
		if input.CustomExtension != 0 {
			return nil, goerr.Wrap(types.ErrInvalidCustomDuration, "custom extension is only valid for custom tasks",
				goerr.V("taskType", input.TaskType))
		}
	}

	now := uc.now()
	due, err := uc.calc.Deadline(input.RoleID, input.TaskType, now, input.CustomDuration)
	if err != nil {
		return nil, err
	}

	user, err := uc.repo.User().FindOrCreate(ctx, input.MemberID, input.Username)
	if err != nil {
		return nil, err
	}

	created, err := uc.repo.Assignment().Create(ctx, &model.Assignment{
		UserID:          user.ID,
		MemberID:        user.MemberID,
		RoleID:          input.RoleID,
		RoleName:        input.RoleName,
		TaskType:        input.TaskType,
		TaskName:        input.TaskName,
		Description:     input.Description,
		AssignedAt:      now,
		Deadline:        due,
		CustomExtension: input.CustomExtension,
		Status:          types.AssignmentStatusPending,
	})
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("assignment created",
		"id", created.ID,
		"member_id", created.MemberID,
		"task", created.DisplayName(),
		"deadline", created.Deadline,
	)
	return created, nil
}
