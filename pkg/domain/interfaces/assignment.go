package interfaces

import (
	"context"
	"time"

	"github.com/harmonix-lab/taskbeat/pkg/domain/model"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
)

// AssignmentFilter narrows history listings. Zero values mean "no filter".
type AssignmentFilter struct {
	MemberID types.MemberID
	Status   types.AssignmentStatus
	RoleName string
	// Text matches task name or task type, case-insensitive substring
	Text  string
	Limit int
}

// AssignmentRepository defines the interface for assignment persistence
type AssignmentRepository interface {
	// Create persists a new assignment with an auto-generated ID
	Create(ctx context.Context, a *model.Assignment) (*model.Assignment, error)

	// Get retrieves an assignment by ID
	Get(ctx context.Context, id types.AssignmentID) (*model.Assignment, error)

	// ListByStatus retrieves all assignments with the given status
	ListByStatus(ctx context.Context, status types.AssignmentStatus) ([]*model.Assignment, error)

	// ListByMember retrieves all assignments owned by the given member,
	// pending first, sorted by deadline ascending within status
	ListByMember(ctx context.Context, memberID types.MemberID) ([]*model.Assignment, error)

	// ListOverdue retrieves non-frozen PENDING assignments whose deadline
	// is strictly before now
	ListOverdue(ctx context.Context, now time.Time) ([]*model.Assignment, error)

	// List retrieves assignments matching the filter, newest first
	List(ctx context.Context, filter AssignmentFilter) ([]*model.Assignment, error)

	// Update replaces the mutable fields of an existing assignment
	Update(ctx context.Context, a *model.Assignment) (*model.Assignment, error)

	// UpdateStatus transitions the assignment status
	UpdateStatus(ctx context.Context, id types.AssignmentID, status types.AssignmentStatus) (*model.Assignment, error)

	// MarkReminderSent sets the reminder flag for the given stage.
	// Flags are monotonic; they are only reset via hiatus resume.
	MarkReminderSent(ctx context.Context, id types.AssignmentID, stage types.ReminderStage) error

	// SetSubmissionChannel records where outcome notifications are routed
	SetSubmissionChannel(ctx context.Context, id types.AssignmentID, channelID string) error

	// Extend shifts the deadline by the given amount and marks the
	// one-shot extension as used. The check-and-set is atomic: of two
	// concurrent calls exactly one succeeds, the other fails with
	// types.ErrAlreadyExtended and leaves the assignment unchanged.
	Extend(ctx context.Context, id types.AssignmentID, by time.Duration) (*model.Assignment, error)
}
