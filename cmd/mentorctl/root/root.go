package root

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/mentor-backend/internal/app"
	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/ui"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "mentorctl",
	Short:         "Operate the mentor backend from a shell",
	Long:          "mentorctl runs maintenance jobs and inspects users against the configured database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newSeedCatalogCmd(),
		newTickCmd(),
		newMissedHabitsCmd(),
		newRecomputeScoresCmd(),
		newEvaluateCmd(),
		newProgressCmd(),
		newCleanupCmd(),
		newTokenCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}

func openApp(ctx context.Context) (*app.App, func(), error) {
	log, err := app.NewLogger()
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(ctx, log)
	if err != nil {
		log.Sync()
		return nil, nil, err
	}
	return a, a.Close, nil
}

// resolveUser accepts a user id or a chat id.
func resolveUser(dbc dbctx.Context, a *app.App, raw string) (*types.User, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("--user is required")
	}
	if id, err := uuid.Parse(raw); err == nil {
		u, err := a.Repos.Users.GetByID(dbc, id)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, fmt.Errorf("no user with id %s", id)
		}
		return u, nil
	}
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("--user must be a user id or a chat id")
	}
	u, err := a.Repos.Users.GetByChatID(dbc, chatID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("no user with chat id %d", chatID)
	}
	return u, nil
}

// targetUsers is the single --user when given, otherwise every active user.
func targetUsers(dbc dbctx.Context, a *app.App, raw string) ([]*types.User, error) {
	if strings.TrimSpace(raw) != "" {
		u, err := resolveUser(dbc, a, raw)
		if err != nil {
			return nil, err
		}
		return []*types.User{u}, nil
	}
	return a.Repos.Users.ListActive(dbc)
}
