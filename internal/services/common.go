package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/mentor-backend/internal/data/repos"
	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/mentor-backend/internal/pkg/errors"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
)

func requireUser(dbc dbctx.Context, users repos.UserRepo, userID uuid.UUID) (*types.User, error) {
	u, err := users.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, pkgerrors.NotFoundf("user %s", userID)
	}
	return u, nil
}

// localToday is the user's current calendar date as a UTC midnight.
func localToday(clk clock.Clock, zone string) time.Time {
	d, _ := clock.ParseDate(clock.LocalDate(clk.Now(), zone))
	return d
}

// resolveDate parses an optional YYYY-MM-DD, defaulting to fallback.
func resolveDate(raw *string, fallback time.Time) (time.Time, error) {
	if raw == nil || *raw == "" {
		return fallback, nil
	}
	d, err := clock.ParseDate(*raw)
	if err != nil {
		return time.Time{}, pkgerrors.Invalidf("date %q", *raw)
	}
	return d, nil
}

func dateString(t time.Time) string { return t.Format(clock.DateLayout) }

// weekStart is the Monday of the week containing day.
func weekStart(day time.Time) time.Time {
	return day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
}
