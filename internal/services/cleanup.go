package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/data/db"
	"github.com/yungbote/mentor-backend/internal/data/repos"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

var cleanupPeriods = map[string]time.Duration{
	"day":   24 * time.Hour,
	"week":  7 * 24 * time.Hour,
	"month": 30 * 24 * time.Hour,
	"year":  365 * 24 * time.Hour,
}

type CleanupResult struct {
	Failure
	Period              string `json:"period,omitempty"`
	DeletedAI           int64  `json:"deleted_ai"`
	DeletedSummaries    int64  `json:"deleted_summaries"`
	DeletedJournal      int64  `json:"deleted_journal"`
	DeletedXPEvents     int64  `json:"deleted_xp_events"`
	DeletedAchievements int64  `json:"deleted_achievements"`
}

// CleanupService removes a user's history. It is the only path that deletes ledger rows.
type CleanupService interface {
	CleanupHistory(dbc dbctx.Context, userID uuid.UUID, period string) (*CleanupResult, error)
	DeleteProfile(dbc dbctx.Context, userID uuid.UUID) (*DeleteResult, error)
}

type cleanupService struct {
	db    *gorm.DB
	log   *logger.Logger
	clock clock.Clock
	tx    db.TxRunner
	repos repos.Set
}

func NewCleanupService(gdb *gorm.DB, log *logger.Logger, clk clock.Clock, rs repos.Set) CleanupService {
	return &cleanupService{
		db:    gdb,
		log:   log.With("service", "CleanupService"),
		clock: clk,
		tx:    db.NewTxRunner(gdb),
		repos: rs,
	}
}

func (cs *cleanupService) CleanupHistory(dbc dbctx.Context, userID uuid.UUID, period string) (*CleanupResult, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	var cutoff *time.Time
	if period != "all" {
		d, ok := cleanupPeriods[period]
		if !ok {
			return &CleanupResult{Failure: invalid("Invalid period")}, nil
		}
		c := cs.clock.Now().UTC().Add(-d)
		cutoff = &c
	}

	out := &CleanupResult{Period: period}
	err := cs.tx.InTx(dbc, func(dbc dbctx.Context) error {
		steps := []struct {
			name string
			dst  *int64
			fn   func(dbctx.Context, uuid.UUID, *time.Time) (int64, error)
		}{
			{"ai interactions", &out.DeletedAI, cs.repos.AIInteractions.DeleteByUserSince},
			{"memory summaries", &out.DeletedSummaries, cs.repos.MemorySummaries.DeleteByUserSince},
			{"journal entries", &out.DeletedJournal, cs.repos.Journal.DeleteByUserSince},
			{"xp events", &out.DeletedXPEvents, cs.repos.XPEvents.DeleteByUserSince},
			{"achievements", &out.DeletedAchievements, cs.repos.UserAchievements.DeleteByUserSince},
		}
		for _, s := range steps {
			n, err := s.fn(dbc, userID, cutoff)
			if err != nil {
				return fmt.Errorf("delete %s: %w", s.name, err)
			}
			*s.dst = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	cs.log.Info("history cleaned", "user_id", userID, "period", period,
		"xp_events", out.DeletedXPEvents, "journal", out.DeletedJournal)
	return out, nil
}

func (cs *cleanupService) DeleteProfile(dbc dbctx.Context, userID uuid.UUID) (*DeleteResult, error) {
	out := &DeleteResult{}
	err := cs.tx.InTx(dbc, func(dbc dbctx.Context) error {
		u, err := cs.repos.Users.GetByID(dbc, userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if u == nil {
			out.Failure = notFound("Profile not found")
			return nil
		}
		if _, err := cs.repos.AIInteractions.DeleteByUserSince(dbc, userID, nil); err != nil {
			return err
		}
		if _, err := cs.repos.MemorySummaries.DeleteByUserSince(dbc, userID, nil); err != nil {
			return err
		}
		if _, err := cs.repos.Journal.DeleteByUserSince(dbc, userID, nil); err != nil {
			return err
		}
		if _, err := cs.repos.XPEvents.DeleteByUserSince(dbc, userID, nil); err != nil {
			return err
		}
		if _, err := cs.repos.UserAchievements.DeleteByUserSince(dbc, userID, nil); err != nil {
			return err
		}
		for _, del := range []func(dbctx.Context, uuid.UUID) error{
			cs.repos.HabitLogs.DeleteByUser,
			cs.repos.Habits.DeleteByUser,
			cs.repos.Tasks.DeleteByUser,
			cs.repos.Learning.DeleteByUser,
			cs.repos.Playlists.DeleteByUser,
			cs.repos.WeeklyReports.DeleteByUser,
		} {
			if err := del(dbc, userID); err != nil {
				return fmt.Errorf("delete user data: %w", err)
			}
		}
		if err := cs.repos.Users.Delete(dbc, userID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		out.Deleted, out.Title = true, u.Name()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
