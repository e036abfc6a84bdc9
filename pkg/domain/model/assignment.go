package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
)

// NewAssignmentID generates a new UUID v4 AssignmentID
func NewAssignmentID() types.AssignmentID {
	return types.AssignmentID(uuid.New().String())
}

// Assignment is one unit of deadline-bound work owned by a single user for
// its whole lifetime. It is never deleted; it only transitions status.
type Assignment struct {
	ID       types.AssignmentID `firestore:"id"`
	UserID   types.UserID       `firestore:"user_id"`
	MemberID types.MemberID     `firestore:"member_id"`

	RoleID      types.RoleID   `firestore:"role_id"`
	RoleName    string         `firestore:"role_name"`
	TaskType    types.TaskType `firestore:"task_type"`
	TaskName    string         `firestore:"task_name"`
	Description string         `firestore:"description"`

	AssignedAt time.Time `firestore:"assigned_at"`
	Deadline   time.Time `firestore:"deadline"`

	HasExtended     bool          `firestore:"has_extended"`
	ExtensionCount  int           `firestore:"extension_count"`
	CustomExtension time.Duration `firestore:"custom_extension"`

	FirstReminderSent bool `firestore:"first_reminder_sent"`
	FinalReminderSent bool `firestore:"final_reminder_sent"`

	// Frozen marks the assignment as paused by a hiatus. The sweep and the
	// classifier branch on this flag, not on deadline magnitude.
	Frozen bool `firestore:"frozen"`

	SubmissionChannelID string `firestore:"submission_channel_id"`

	Status types.AssignmentStatus `firestore:"status"`
}

// DisplayName returns the task name, falling back to the task type
func (a *Assignment) DisplayName() string {
	if a.TaskName != "" {
		return a.TaskName
	}
	return a.TaskType.String()
}

// OriginalDuration is the task duration at creation. It is recomputed
// transiently, never stored; meaningless while the assignment is frozen.
func (a *Assignment) OriginalDuration() time.Duration {
	return a.Deadline.Sub(a.AssignedAt)
}

// TimeRemaining returns the time left until the deadline at the given instant
func (a *Assignment) TimeRemaining(now time.Time) time.Duration {
	return a.Deadline.Sub(now)
}

// Clone returns a deep copy of the assignment
func (a *Assignment) Clone() *Assignment {
	copied := *a
	return &copied
}
