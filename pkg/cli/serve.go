package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/harmonix-lab/taskbeat/pkg/cli/config"
	httpctrl "github.com/harmonix-lab/taskbeat/pkg/controller/http"
	"github.com/harmonix-lab/taskbeat/pkg/service/sweeper"
	"github.com/harmonix-lab/taskbeat/pkg/usecase"
	"github.com/harmonix-lab/taskbeat/pkg/utils/logging"
	"github.com/harmonix-lab/taskbeat/pkg/utils/safe"
)

func cmdServe() *cli.Command {
	var addr string
	var sweepInterval time.Duration
	var policyCfg config.Policy
	var repoCfg config.Repository
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("TASKBEAT_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "sweep-interval",
			Usage:       "Interval between lifecycle sweeps",
			Value:       time.Hour,
			Sources:     cli.EnvVars("TASKBEAT_SWEEP_INTERVAL"),
			Destination: &sweepInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, policyCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the sweep loop and HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			table, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load policy table")
			}
			logging.Default().Info("policy table loaded",
				"path", policyCfg.Path(),
				"roles", len(table.RoleIDs()),
			)

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure notification sink")
			}
			if slackCfg.Enabled() {
				logging.Default().Info("Slack notifications enabled", "slack", slackCfg)
			} else {
				logging.Default().Warn("Slack bot token not configured, notifications go to the log")
			}

			uc := usecase.New(repo, table, usecase.WithNotifier(notifier))

			sw := sweeper.New(uc, sweepInterval)
			if err := sw.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start sweeper")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return goerr.Wrap(err, "failed to start server")
				}
				return nil
			})

			g.Go(func() error {
				select {
				case sig := <-sigCh:
					logging.Default().Info("Received shutdown signal", "signal", sig.String())
				case <-gctx.Done():
				}

				// Sweeper first so no sweep is cut off mid-flight by the
				// process exiting.
				sw.Stop()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				return nil
			})

			if err := g.Wait(); err != nil {
				return err
			}

			logging.Default().Info("Server shutdown completed")
			return nil
		},
	}
}
