package deadline

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/harmonix-lab/taskbeat/pkg/domain/model/policy"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
)

// Calculator derives due timestamps and extension amounts from the policy
// table. It holds an immutable table and is safe for concurrent use.
type Calculator struct {
	table *policy.Table
}

// NewCalculator creates a calculator over a validated policy table
func NewCalculator(table *policy.Table) *Calculator {
	return &Calculator{table: table}
}

// Table returns the underlying policy table
func (c *Calculator) Table() *policy.Table {
	return c.table
}

// Deadline computes the due timestamp for a task assigned at now.
// For standard task types the duration comes from the policy table; for
// the custom type a positive customDuration must be supplied.
func (c *Calculator) Deadline(roleID types.RoleID, taskType types.TaskType, now time.Time, customDuration time.Duration) (time.Time, error) {
	if taskType.IsCustom() {
		if customDuration <= 0 {
			return time.Time{}, goerr.Wrap(types.ErrInvalidCustomDuration, "custom duration must be positive",
				goerr.V("roleID", roleID), goerr.V("duration", customDuration))
		}
		return now.Add(customDuration), nil
	}

	duration, err := c.standardDuration(roleID, taskType)
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(duration), nil
}

// Extension resolves the extension amount for a task. Resolution order:
// an explicit per-assignment override, then the role's extension rule
// (flat or split by task-type family).
func (c *Calculator) Extension(roleID types.RoleID, taskType types.TaskType, customExtension time.Duration) (time.Duration, error) {
	if customExtension > 0 {
		return customExtension, nil
	}

	rule, ok := c.table.Rule(roleID)
	if !ok {
		return 0, goerr.Wrap(types.ErrInvalidTaskForRole, "unknown role category",
			goerr.V("roleID", roleID), goerr.V("taskType", taskType))
	}

	// Table validation guarantees every role carries an extension rule.
	return rule.Extension.Amount(taskType), nil
}

// Resolves reports whether the role and task type still resolve against
// the policy table. Used by hiatus resume to detect configuration drift.
func (c *Calculator) Resolves(roleID types.RoleID, taskType types.TaskType) bool {
	rule, ok := c.table.Rule(roleID)
	if !ok {
		return false
	}
	_, ok = rule.Duration(taskType)
	return ok
}

func (c *Calculator) standardDuration(roleID types.RoleID, taskType types.TaskType) (time.Duration, error) {
	rule, ok := c.table.Rule(roleID)
	if !ok {
		return 0, goerr.Wrap(types.ErrInvalidTaskForRole, "unknown role category",
			goerr.V("roleID", roleID), goerr.V("taskType", taskType))
	}
	duration, ok := rule.Duration(taskType)
	if !ok {
		return 0, goerr.Wrap(types.ErrInvalidTaskForRole, "task type not defined for role",
			goerr.V("roleID", roleID), goerr.V("role", rule.Name), goerr.V("taskType", taskType))
	}
	return duration, nil
}
