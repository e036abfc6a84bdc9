package types

import "github.com/m-mizutani/goerr/v2"

// AssignmentStatus represents the lifecycle status of an assignment
type AssignmentStatus string

const (
	AssignmentStatusPending   AssignmentStatus = "PENDING"
	AssignmentStatusCompleted AssignmentStatus = "COMPLETED"
	AssignmentStatusLate      AssignmentStatus = "LATE"
	AssignmentStatusExcused   AssignmentStatus = "EXCUSED"
)

// AllAssignmentStatuses returns all valid assignment statuses
func AllAssignmentStatuses() []AssignmentStatus {
	return []AssignmentStatus{
		AssignmentStatusPending,
		AssignmentStatusCompleted,
		AssignmentStatusLate,
		AssignmentStatusExcused,
	}
}

// IsValid checks if the assignment status is valid
func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentStatusPending,
		AssignmentStatusCompleted,
		AssignmentStatusLate,
		AssignmentStatusExcused:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status admits no further transitions.
// Timer activity only applies to PENDING assignments.
func (s AssignmentStatus) IsTerminal() bool {
	switch s {
	case AssignmentStatusCompleted, AssignmentStatusLate, AssignmentStatusExcused:
		return true
	default:
		return false
	}
}

// String returns the string representation of the assignment status
func (s AssignmentStatus) String() string {
	return string(s)
}

// ParseAssignmentStatus parses a string into an AssignmentStatus
func ParseAssignmentStatus(s string) (AssignmentStatus, error) {
	status := AssignmentStatus(s)
	if !status.IsValid() {
		return "", goerr.New("invalid assignment status", goerr.V("value", s))
	}
	return status, nil
}
