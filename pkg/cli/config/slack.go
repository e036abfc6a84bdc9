package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/harmonix-lab/taskbeat/pkg/service/notify"
)

// Slack holds CLI flags for the Slack notification sink
type Slack struct {
	botToken        string
	reminderChannel string
	logChannel      string
	approvalChannel string
}

// Flags returns CLI flags for Slack configuration
func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack bot token (xoxb-...)",
			Category:    "Slack",
			Sources:     cli.EnvVars("TASKBEAT_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-reminder-channel",
			Usage:       "Channel ID for reminder and overdue notices",
			Category:    "Slack",
			Sources:     cli.EnvVars("TASKBEAT_SLACK_REMINDER_CHANNEL"),
			Destination: &x.reminderChannel,
		},
		&cli.StringFlag{
			Name:        "slack-log-channel",
			Usage:       "Channel ID for strike and demotion logs",
			Category:    "Slack",
			Sources:     cli.EnvVars("TASKBEAT_SLACK_LOG_CHANNEL"),
			Destination: &x.logChannel,
		},
		&cli.StringFlag{
			Name:        "slack-approval-channel",
			Usage:       "Channel ID for extension and hiatus outcomes",
			Category:    "Slack",
			Sources:     cli.EnvVars("TASKBEAT_SLACK_APPROVAL_CHANNEL"),
			Destination: &x.approvalChannel,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("enabled", x.botToken != ""),
		slog.String("reminderChannel", x.reminderChannel),
		slog.String("logChannel", x.logChannel),
		slog.String("approvalChannel", x.approvalChannel),
	)
}

// Enabled reports whether a bot token is configured
func (x *Slack) Enabled() bool {
	return x.botToken != ""
}

// Configure builds the notification sink. Without a bot token the sink
// degrades to structured log output, which keeps local runs quiet.
func (x *Slack) Configure() (notify.Service, error) {
	if x.botToken == "" {
		return notify.NewLogger(), nil
	}
	return notify.NewSlack(x.botToken, notify.Channels{
		Reminder: x.reminderChannel,
		Log:      x.logChannel,
		Approval: x.approvalChannel,
	})
}
