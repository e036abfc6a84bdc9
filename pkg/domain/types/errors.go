package types

import "errors"

// Error taxonomy shared across the deadline engine. Callers match with
// errors.Is; layers add context via goerr.Wrap.
var (
	// ErrInvalidTaskForRole is returned when a task type is not defined
	// for the given role in the policy table.
	ErrInvalidTaskForRole = errors.New("task type is not valid for role")

	// ErrInvalidCustomDuration is returned when a custom task is created
	// without a positive duration.
	ErrInvalidCustomDuration = errors.New("custom task requires a positive duration")

	// ErrAlreadyExtended is returned when an extension is attempted on an
	// assignment whose one-shot extension has been used.
	ErrAlreadyExtended = errors.New("assignment has already been extended")

	// ErrUserNotFound is returned when no user exists for the given ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrAssignmentNotFound is returned when no assignment exists for the
	// given ID.
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrAssignmentNotPending is returned when a lifecycle operation is
	// attempted on an assignment in a terminal status.
	ErrAssignmentNotPending = errors.New("assignment is not pending")

	// ErrInvalidConfig is returned for policy table configuration errors.
	// These are fatal at startup validation, never a runtime condition.
	ErrInvalidConfig = errors.New("invalid policy configuration")

	// ErrNotificationFailed wraps delivery failures from the notification
	// sink. Non-fatal; reminders are retried on the next sweep.
	ErrNotificationFailed = errors.New("notification delivery failed")

	// ErrSweepInProgress is returned when a sweep is requested while the
	// previous one is still running. The caller skips the tick.
	ErrSweepInProgress = errors.New("sweep already in progress")
)
