package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/harmonix-lab/taskbeat/pkg/domain/interfaces"
	"github.com/harmonix-lab/taskbeat/pkg/domain/model"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
)

const defaultListLimit = 50

type assignmentRepository struct {
	mu          sync.RWMutex
	assignments map[types.AssignmentID]*model.Assignment
}

func newAssignmentRepository() *assignmentRepository {
	return &assignmentRepository{
		assignments: make(map[types.AssignmentID]*model.Assignment),
	}
}

func (r *assignmentRepository) Create(ctx context.Context, a *model.Assignment) (*model.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := a.Clone()
	if created.ID == "" {
		created.ID = model.NewAssignmentID()
	}
	if created.AssignedAt.IsZero() {
		created.AssignedAt = time.Now().UTC()
	}
	if created.Status == "" {
		created.Status = types.AssignmentStatusPending
	}

	r.assignments[created.ID] = created
	return created.Clone(), nil
}

func (r *assignmentRepository) Get(ctx context.Context, id types.AssignmentID) (*model.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.assignments[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrAssignmentNotFound, "assignment not found", goerr.V("id", id))
	}
	return a.Clone(), nil
}

func (r *assignmentRepository) ListByStatus(ctx context.Context, status types.AssignmentStatus) ([]*model.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Assignment
	for _, a := range r.assignments {
		if a.Status == status {
			result = append(result, a.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Deadline.Before(result[j].Deadline)
	})
	return result, nil
}

func (r *assignmentRepository) ListByMember(ctx context.Context, memberID types.MemberID) ([]*model.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Assignment
	for _, a := range r.assignments {
		if a.MemberID == memberID {
			result = append(result, a.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		iPending := result[i].Status == types.AssignmentStatusPending
		jPending := result[j].Status == types.AssignmentStatusPending
		if iPending != jPending {
			return iPending
		}
		return result[i].Deadline.Before(result[j].Deadline)
	})
	return result, nil
}

func (r *assignmentRepository) ListOverdue(ctx context.Context, now time.Time) ([]*model.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Assignment
	for _, a := range r.assignments {
		if a.Status == types.AssignmentStatusPending && !a.Frozen && a.Deadline.Before(now) {
			result = append(result, a.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Deadline.Before(result[j].Deadline)
	})
	return result, nil
}

func (r *assignmentRepository) List(ctx context.Context, filter interfaces.AssignmentFilter) ([]*model.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Assignment
	for _, a := range r.assignments {
		if !matchFilter(a, filter) {
			continue
		}
		result = append(result, a.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AssignedAt.After(result[j].AssignedAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func matchFilter(a *model.Assignment, filter interfaces.AssignmentFilter) bool {
	if filter.MemberID != "" && a.MemberID != filter.MemberID {
		return false
	}
	if filter.Status != "" && a.Status != filter.Status {
		return false
	}
	if filter.RoleName != "" && !strings.EqualFold(a.RoleName, filter.RoleName) {
		return false
	}
	if filter.Text != "" {
		text := strings.ToLower(filter.Text)
		name := strings.ToLower(a.TaskName)
		taskType := strings.ToLower(a.TaskType.String())
		if !strings.Contains(name, text) && !strings.Contains(taskType, text) {
			return false
		}
	}
	return true
}

func (r *assignmentRepository) Update(ctx context.Context, a *model.Assignment) (*model.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.assignments[a.ID]; !exists {
		return nil, goerr.Wrap(types.ErrAssignmentNotFound, "assignment not found", goerr.V("id", a.ID))
	}
	updated := a.Clone()
	r.assignments[updated.ID] = updated
	return updated.Clone(), nil
}

func (r *assignmentRepository) UpdateStatus(ctx context.Context, id types.AssignmentID, status types.AssignmentStatus) (*model.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, exists := r.assignments[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrAssignmentNotFound, "assignment not found", goerr.V("id", id))
	}
	a.Status = status
	return a.Clone(), nil
}

func (r *assignmentRepository) MarkReminderSent(ctx context.Context, id types.AssignmentID, stage types.ReminderStage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, exists := r.assignments[id]
	if !exists {
		return goerr.Wrap(types.ErrAssignmentNotFound, "assignment not found", goerr.V("id", id))
	}

	switch stage {
	case types.ReminderFirst:
		a.FirstReminderSent = true
	case types.ReminderFinal:
		a.FinalReminderSent = true
	default:
		return goerr.New("invalid reminder stage", goerr.V("stage", stage))
	}
	return nil
}

func (r *assignmentRepository) SetSubmissionChannel(ctx context.Context, id types.AssignmentID, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, exists := r.assignments[id]
	if !exists {
		return goerr.Wrap(types.ErrAssignmentNotFound, "assignment not found", goerr.V("id", id))
	}
	a.SubmissionChannelID = channelID
	return nil
}

func (r *assignmentRepository) Extend(ctx context.Context, id types.AssignmentID, by time.Duration) (*model.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, exists := r.assignments[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrAssignmentNotFound, "assignment not found", goerr.V("id", id))
	}
	if a.HasExtended {
		return nil, goerr.Wrap(types.ErrAlreadyExtended, "extension already used", goerr.V("id", id))
	}

	a.Deadline = a.Deadline.Add(by)
	a.HasExtended = true
	a.ExtensionCount++
	return a.Clone(), nil
}
