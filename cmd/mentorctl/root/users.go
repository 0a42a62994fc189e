package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/ui"
)

func newRecomputeScoresCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "recompute-scores",
		Short: "Recalculate discipline and growth scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			dbc := dbctx.Background(ctx)
			users, err := targetUsers(dbc, a, user)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Scores"))
			for _, u := range users {
				s, err := a.Services.Score.Recalculate(dbc, u.ID)
				if err != nil {
					fmt.Fprintf(out, "- %s %s\n", u.Name(), ui.Bad.Render(err.Error()))
					continue
				}
				fmt.Fprintf(out, "- %s discipline %.1f growth %.1f\n", ui.Key.Render(u.Name()), s.Discipline, s.Growth)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id or chat id (default: all active users)")
	return cmd
}

func newEvaluateCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Unlock any achievements whose conditions now hold",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			dbc := dbctx.Background(ctx)
			users, err := targetUsers(dbc, a, user)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, "Achievements"))
			for _, u := range users {
				unlocked, err := a.Services.Achievements.Evaluate(dbc, u.ID)
				if err != nil {
					fmt.Fprintf(out, "- %s %s\n", u.Name(), ui.Bad.Render(err.Error()))
					continue
				}
				if len(unlocked) == 0 {
					continue
				}
				for _, ua := range unlocked {
					fmt.Fprintf(out, "- %s %s %s %s\n", ui.Key.Render(u.Name()), ua.Emoji, ua.Name, ui.Gold.Render(fmt.Sprintf("+%d XP", ua.XPReward)))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id or chat id (default: all active users)")
	return cmd
}

func newProgressCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show a user's level, XP and scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			dbc := dbctx.Background(ctx)
			u, err := resolveUser(dbc, a, user)
			if err != nil {
				return err
			}
			p, err := a.Services.User.Progress(dbc, u.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, u.Name()))
			fmt.Fprintln(out, ui.LabelValue("Level", p.Level))
			fmt.Fprintf(out, "%s %s\n", ui.LevelBar(p.Fraction, 24), ui.Muted.Render(fmt.Sprintf("%d to next level", p.ToNext)))
			fmt.Fprintln(out, ui.LabelValue("Total XP", p.TotalXP))
			fmt.Fprintln(out, ui.LabelValue("Discipline", fmt.Sprintf("%.1f", p.Discipline)))
			fmt.Fprintln(out, ui.LabelValue("Growth", fmt.Sprintf("%.1f", p.Growth)))
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id or chat id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newCleanupCmd() *cobra.Command {
	var user, period string
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete a user's history for a period (day, week, month, year, all)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			dbc := dbctx.Background(ctx)
			u, err := resolveUser(dbc, a, user)
			if err != nil {
				return err
			}
			res, err := a.Services.Cleanup.CleanupHistory(dbc, u.ID, period)
			if err != nil {
				return err
			}
			if res.Failed() {
				return fmt.Errorf("%s", res.Error)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconBroom, "Cleanup "+res.Period))
			fmt.Fprintln(out, ui.LabelValue("Mentor messages", res.DeletedAI))
			fmt.Fprintln(out, ui.LabelValue("Memory summaries", res.DeletedSummaries))
			fmt.Fprintln(out, ui.LabelValue("Journal entries", res.DeletedJournal))
			fmt.Fprintln(out, ui.LabelValue("XP events", res.DeletedXPEvents))
			fmt.Fprintln(out, ui.LabelValue("Achievements", res.DeletedAchievements))
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id or chat id")
	cmd.Flags().StringVar(&period, "period", "", "day, week, month, year or all")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for a user (local testing)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			u, err := resolveUser(dbctx.Background(ctx), a, user)
			if err != nil {
				return err
			}
			token, err := a.Services.Auth.IssueToken(u.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Muted.Render(fmt.Sprintf("%s token for %s, valid %s", ui.IconKey, u.Name(), a.Services.Auth.GetAccessTTL())))
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id or chat id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
