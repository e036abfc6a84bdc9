package types

import "github.com/m-mizutani/goerr/v2"

// AssignmentID is a UUID-based identifier for an assignment
type AssignmentID string

// String returns the string representation of AssignmentID
func (a AssignmentID) String() string {
	return string(a)
}

// Validate checks if the AssignmentID is valid
func (a AssignmentID) Validate() error {
	if a == "" {
		return goerr.New("assignment ID cannot be empty")
	}
	return nil
}

// UserID is the internal identifier for a tracked user
type UserID string

// String returns the string representation of UserID
func (u UserID) String() string {
	return string(u)
}

// MemberID is the external chat-platform identifier for a user.
// It is unique per user and kept in sync with the internal UserID.
type MemberID string

// String returns the string representation of MemberID
func (m MemberID) String() string {
	return string(m)
}

// Validate checks if the MemberID is valid
func (m MemberID) Validate() error {
	if m == "" {
		return goerr.New("member ID cannot be empty")
	}
	return nil
}

// RoleID is the identifier of a role category in the policy table
type RoleID string

// String returns the string representation of RoleID
func (r RoleID) String() string {
	return string(r)
}

// Validate checks if the RoleID is valid
func (r RoleID) Validate() error {
	if r == "" {
		return goerr.New("role ID cannot be empty")
	}
	return nil
}

// TaskType identifies a kind of work within a role's policy entry
type TaskType string

// TaskTypeCustom is the distinguished task type whose duration and
// extension are supplied per assignment rather than by the policy table.
const TaskTypeCustom TaskType = "custom"

// String returns the string representation of TaskType
func (t TaskType) String() string {
	return string(t)
}

// Validate checks if the TaskType is valid
func (t TaskType) Validate() error {
	if t == "" {
		return goerr.New("task type cannot be empty")
	}
	return nil
}

// IsCustom reports whether the task type is the custom variant
func (t TaskType) IsCustom() bool {
	return t == TaskTypeCustom
}
