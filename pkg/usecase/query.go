package usecase

import (
	"context"

	"github.com/harmonix-lab/taskbeat/pkg/domain/interfaces"
	"github.com/harmonix-lab/taskbeat/pkg/domain/model"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
)

// GetProfile returns the user together with their assignment statistics
func (uc *UseCases) GetProfile(ctx context.Context, memberID types.MemberID) (*model.Profile, error) {
	user, err := uc.repo.User().GetByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	owned, err := uc.repo.Assignment().ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	profile := &model.Profile{
		User:  user,
		Total: len(owned),
	}
	for _, a := range owned {
		switch a.Status {
		case types.AssignmentStatusPending:
			profile.Pending = append(profile.Pending, a)
		case types.AssignmentStatusCompleted:
			profile.Completed++
		case types.AssignmentStatusLate:
			profile.Late++
		}
	}
	return profile, nil
}

// GetAssignment retrieves a single assignment by ID
func (uc *UseCases) GetAssignment(ctx context.Context, id types.AssignmentID) (*model.Assignment, error) {
	return uc.repo.Assignment().Get(ctx, id)
}

// PendingAssignments returns the member's open assignments, deadline
// ascending
func (uc *UseCases) PendingAssignments(ctx context.Context, memberID types.MemberID) ([]*model.Assignment, error) {
	owned, err := uc.repo.Assignment().ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	var pending []*model.Assignment
	for _, a := range owned {
		if a.Status == types.AssignmentStatusPending {
			pending = append(pending, a)
		}
	}
	return pending, nil
}

// ListHistory returns assignments matching the filter, newest first
func (uc *UseCases) ListHistory(ctx context.Context, filter interfaces.AssignmentFilter) ([]*model.Assignment, error) {
	return uc.repo.Assignment().List(ctx, filter)
}

// ListOverdue returns non-frozen pending assignments past their deadline
// at the injected clock's current time
func (uc *UseCases) ListOverdue(ctx context.Context) ([]*model.Assignment, error) {
	return uc.repo.Assignment().ListOverdue(ctx, uc.now())
}

// StrikeBoard returns users carrying at least one strike, worst first
func (uc *UseCases) StrikeBoard(ctx context.Context) ([]*model.User, error) {
	return uc.repo.User().ListWithStrikes(ctx)
}
