package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/mentor-backend/internal/jobs/pipeline/missed_habits"
	"github.com/yungbote/mentor-backend/internal/jobs/pipeline/reminder_tick"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/ui"
)

func newSeedCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-catalog",
		Short: "Insert missing achievement catalog entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			n, err := a.Services.Achievements.SeedCatalog(dbctx.Background(ctx))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconTrophy, "Achievement catalog"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Inserted", n))
			return nil
		},
	}
}

func runJobCmd(use, short, jobType string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			counters, err := a.Jobs.Scheduler.RunOnce(ctx, jobType, nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconBolt, jobType))
			fmt.Fprintln(cmd.OutOrStdout(), ui.Counters(counters))
			return nil
		},
	}
}

func newTickCmd() *cobra.Command {
	return runJobCmd("tick", "Run one reminder tick now", reminder_tick.JobType)
}

func newMissedHabitsCmd() *cobra.Command {
	return runJobCmd("missed-habits", "Run the daily missed-habit check for users that are due", missed_habits.JobType)
}
