package deadline

import (
	"time"

	"github.com/harmonix-lab/taskbeat/pkg/domain/model"
	"github.com/harmonix-lab/taskbeat/pkg/domain/model/policy"
	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
)

// Classifier decides whether an assignment is due a first or final
// reminder. Classify is a pure function: no side effects, deterministic
// for fixed inputs.
type Classifier struct {
	thresholds policy.Thresholds
}

// NewClassifier creates a classifier with the given reminder thresholds
func NewClassifier(thresholds policy.Thresholds) *Classifier {
	return &Classifier{thresholds: thresholds}
}

// Classify returns the reminder stage due for the assignment at the given
// instant. The final reminder takes priority over the first: a task that
// skipped past the first-reminder window still gets exactly one reminder
// before going overdue. Overdue assignments classify none; lateness is
// handled by a separate pass, not a reminder.
func (c *Classifier) Classify(a *model.Assignment, now time.Time) types.ReminderStage {
	if a.Status != types.AssignmentStatusPending || a.Frozen {
		return types.ReminderNone
	}

	remaining := a.TimeRemaining(now)
	if remaining <= 0 {
		return types.ReminderNone
	}

	tier := c.thresholds.ForDuration(a.OriginalDuration())

	if remaining <= tier.FinalLead && !a.FinalReminderSent {
		return types.ReminderFinal
	}
	if remaining <= tier.FirstLead && !a.FirstReminderSent {
		return types.ReminderFirst
	}
	return types.ReminderNone
}
