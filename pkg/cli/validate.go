package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/harmonix-lab/taskbeat/pkg/cli/config"
)

func cmdValidate() *cli.Command {
	var policyCfg config.Policy

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the policy table file and print a summary",
		Flags:   policyCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			table, err := policyCfg.Configure()
			if err != nil {
				color.Red("✗ %s: invalid", policyCfg.Path())
				return goerr.Wrap(err, "policy validation failed")
			}

			color.Green("✓ %s: valid", policyCfg.Path())

			bold := color.New(color.Bold)
			faint := color.New(color.Faint)

			bold.Println("\nReminder tiers")
			for i, tier := range table.Thresholds() {
				bucket := "unbounded"
				if tier.MaxDuration > 0 {
					bucket = fmt.Sprintf("<= %s", formatDays(tier.MaxDuration))
				}
				fmt.Printf("  %d. %-12s first %s before, final %s before\n",
					i+1, bucket, formatDays(tier.FirstLead), formatDays(tier.FinalLead))
			}

			ids := table.RoleIDs()
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

			bold.Println("\nRoles")
			for _, id := range ids {
				rule, _ := table.Rule(id)
				fmt.Printf("  %s ", rule.Name)
				faint.Printf("(%s)\n", id)
				for taskType, d := range rule.Tasks {
					fmt.Printf("    %-16s %s, extension %s\n",
						taskType, formatDays(d), formatDays(rule.Extension.Amount(taskType)))
				}
			}

			return nil
		},
	}
}

func formatDays(d time.Duration) string {
	days := float64(d) / float64(24*time.Hour)
	if days == float64(int(days)) {
		return fmt.Sprintf("%dd", int(days))
	}
	return fmt.Sprintf("%.1fd", days)
}
