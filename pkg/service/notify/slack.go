package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/harmonix-lab/taskbeat/pkg/domain/types"
)

// Channels configures where each notification kind is routed by default
type Channels struct {
	Reminder string
	Log      string
	Approval string
}

type slackService struct {
	api      *slack.Client
	channels Channels
}

// NewSlack creates a notification service posting to Slack channels
func NewSlack(token string, channels Channels) (Service, error) {
	if token == "" {
		return nil, goerr.New("slack bot token is required")
	}
	if channels.Reminder == "" || channels.Log == "" {
		return nil, goerr.New("reminder and log channel IDs are required")
	}

	return &slackService{
		api:      slack.New(token),
		channels: channels,
	}, nil
}

func (s *slackService) Notify(ctx context.Context, kind Kind, p Payload) error {
	channelID := s.route(kind, p)
	if channelID == "" {
		return goerr.Wrap(types.ErrNotificationFailed, "no channel configured", goerr.V("kind", kind))
	}

	text := render(kind, p)
	if _, _, err := s.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false)); err != nil {
		return goerr.Wrap(types.ErrNotificationFailed, "failed to post message",
			goerr.V("kind", kind), goerr.V("channelID", channelID), goerr.V("cause", err.Error()))
	}
	return nil
}

func (s *slackService) route(kind Kind, p Payload) string {
	if p.ChannelID != "" {
		return p.ChannelID
	}
	switch kind {
	case KindFirstReminder, KindFinalReminder:
		return s.channels.Reminder
	case KindApprovalOutcome, KindHiatusOutcome:
		return s.channels.Approval
	default:
		return s.channels.Log
	}
}

func render(kind Kind, p Payload) string {
	mention := fmt.Sprintf("<@%s>", p.MemberID)

	switch kind {
	case KindFirstReminder:
		return fmt.Sprintf(":alarm_clock: Reminder: %s your task *%s* (%s) is due in %s, deadline %s.",
			mention, p.TaskName, p.RoleName, humanize(p.Remaining), p.Deadline.Format(time.RFC1123))
	case KindFinalReminder:
		return fmt.Sprintf(":rotating_light: *Final reminder*: %s your task *%s* (%s) is due in %s, deadline %s.",
			mention, p.TaskName, p.RoleName, humanize(p.Remaining), p.Deadline.Format(time.RFC1123))
	case KindOverdue:
		return fmt.Sprintf(":broken_heart: Deadline missed: %s the deadline for *%s* has passed. Strike added, total %d/3.",
			mention, p.TaskName, p.Strikes)
	case KindDemotion:
		return fmt.Sprintf(":rotating_light: %s has reached %d strikes and crew roles were removed.",
			mention, p.Strikes)
	default:
		if p.Message != "" {
			return fmt.Sprintf("%s %s", mention, p.Message)
		}
		return fmt.Sprintf("%s update on *%s*.", mention, p.TaskName)
	}
}

func humanize(d time.Duration) string {
	if d >= 24*time.Hour {
		days := int((d + 24*time.Hour - 1) / (24 * time.Hour))
		return fmt.Sprintf("%d day(s)", days)
	}
	hours := int((d + time.Hour - 1) / time.Hour)
	return fmt.Sprintf("%d hour(s)", hours)
}
