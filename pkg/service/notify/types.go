package notify

import (
	"context"
	"time"

	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
)

// Kind identifies the notification being delivered
type Kind string

const (
	KindFirstReminder   Kind = "first-reminder"
	KindFinalReminder   Kind = "final-reminder"
	KindOverdue         Kind = "overdue"
	KindDemotion        Kind = "demotion"
	KindApprovalOutcome Kind = "approval-outcome"
	KindHiatusOutcome   Kind = "hiatus-outcome"
)

// Payload carries everything a sink needs to render a notification.
// ChannelID overrides the sink's default routing when set (used for
// submission/extension outcome messages).
type Payload struct {
	MemberID  types.MemberID
	TaskName  string
	RoleName  string
	TaskType  types.TaskType
	Deadline  time.Time
	Remaining time.Duration
	Strikes   int
	Message   string
	ChannelID string
}

// Service delivers notifications to the chat platform. Delivery is
// best-effort: the engine does not retry within a sweep and relies on the
// next sweep's re-evaluation for reminders.
type Service interface {
	Notify(ctx context.Context, kind Kind, p Payload) error
}

// DemotionSink performs the platform-side demotion action (role removal).
// Its own idempotence is its responsibility; the ledger may invoke it
// again while the user is already at the strike ceiling.
type DemotionSink interface {
	Demote(ctx context.Context, memberID types.MemberID) error
}
