package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/harmonix-lab/taskbeat/pkg/cli/config"
	"github.com/harmonix-lab/taskbeat/pkg/usecase"
	"github.com/harmonix-lab/taskbeat/pkg/utils/logging"
	"github.com/harmonix-lab/taskbeat/pkg/utils/safe"
)

func cmdSweep() *cli.Command {
	var policyCfg config.Policy
	var repoCfg config.Repository
	var slackCfg config.Slack

	var flags []cli.Flag
	flags = append(flags, policyCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:  "sweep",
		Usage: "Run one lifecycle sweep and exit",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			table, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load policy table")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure notification sink")
			}

			uc := usecase.New(repo, table, usecase.WithNotifier(notifier))

			result, err := uc.Sweep(ctx)
			if err != nil {
				return goerr.Wrap(err, "sweep failed")
			}

			logging.Default().Info("sweep completed",
				"reminders_sent", result.RemindersSent,
				"reminders_skipped", result.RemindersSkipped,
				"overdue_processed", result.OverdueProcessed,
				"overdue_skipped", result.OverdueSkipped,
			)
			return nil
		},
	}
}
