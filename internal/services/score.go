package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/data/repos"
	"github.com/yungbote/mentor-backend/internal/gamification"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

type Scores struct {
	Discipline float64 `json:"discipline_score"`
	Growth     float64 `json:"growth_score"`
}

// ScoreService recomputes the smoothed discipline and growth scores over a
// trailing window and stores them on the user.
type ScoreService interface {
	CalculateDiscipline(dbc dbctx.Context, userID uuid.UUID) (float64, error)
	CalculateGrowth(dbc dbctx.Context, userID uuid.UUID) (float64, error)
	Recalculate(dbc dbctx.Context, userID uuid.UUID) (*Scores, error)
	Inputs(dbc dbctx.Context, userID uuid.UUID) (gamification.ScoreInputs, error)
}

type scoreService struct {
	db         *gorm.DB
	log        *logger.Logger
	clock      clock.Clock
	repos      repos.Set
	windowDays int
}

func NewScoreService(db *gorm.DB, log *logger.Logger, clk clock.Clock, rs repos.Set, windowDays int) ScoreService {
	if windowDays <= 0 {
		windowDays = 7
	}
	return &scoreService{
		db:         db,
		log:        log.With("service", "ScoreService"),
		clock:      clk,
		repos:      rs,
		windowDays: windowDays,
	}
}

func (ss *scoreService) Inputs(dbc dbctx.Context, userID uuid.UUID) (gamification.ScoreInputs, error) {
	in := gamification.ScoreInputs{WindowDays: ss.windowDays}
	u, err := requireUser(dbc, ss.repos.Users, userID)
	if err != nil {
		return in, err
	}
	now := ss.clock.Now()
	since := now.Add(-time.Duration(ss.windowDays) * 24 * time.Hour)
	sinceDate := clock.LocalDate(since, u.Timezone)

	logs, err := ss.repos.HabitLogs.CountsByUserSince(dbc, userID, sinceDate)
	if err != nil {
		return in, fmt.Errorf("habit log counts: %w", err)
	}
	in.HabitLogsDone, in.HabitLogsTotal = logs.Completed, logs.Total

	if in.TasksCreated, err = ss.repos.Tasks.CountCreatedSince(dbc, userID, since); err != nil {
		return in, fmt.Errorf("tasks created: %w", err)
	}
	if in.TasksCompleted, err = ss.repos.Tasks.CountCompletedSince(dbc, userID, since); err != nil {
		return in, fmt.Errorf("tasks completed: %w", err)
	}
	if in.JournalEntries, err = ss.repos.Journal.CountSince(dbc, userID, since); err != nil {
		return in, fmt.Errorf("journal entries: %w", err)
	}
	if in.AISessionEvents, err = ss.repos.XPEvents.CountByTypeSince(dbc, userID, gamification.EventAISession, since); err != nil {
		return in, fmt.Errorf("ai sessions: %w", err)
	}
	stamps, err := ss.repos.XPEvents.TimestampsSince(dbc, userID, since)
	if err != nil {
		return in, fmt.Errorf("ledger activity: %w", err)
	}
	in.ActiveDays = distinctDays(stamps, u.Timezone)
	return in, nil
}

func (ss *scoreService) CalculateDiscipline(dbc dbctx.Context, userID uuid.UUID) (float64, error) {
	return ss.calculate(dbc, userID, "discipline_score", gamification.Discipline)
}

func (ss *scoreService) CalculateGrowth(dbc dbctx.Context, userID uuid.UUID) (float64, error) {
	return ss.calculate(dbc, userID, "growth_score", gamification.Growth)
}

func (ss *scoreService) calculate(dbc dbctx.Context, userID uuid.UUID, column string, score func(gamification.ScoreInputs) float64) (float64, error) {
	in, err := ss.Inputs(dbc, userID)
	if err != nil {
		return 0, err
	}
	u, err := requireUser(dbc, ss.repos.Users, userID)
	if err != nil {
		return 0, err
	}
	old := u.DisciplineScore
	if column == "growth_score" {
		old = u.GrowthScore
	}
	smoothed := gamification.Round1(gamification.Smooth(old, score(in)))
	if err := ss.repos.Users.UpdateFields(dbc, userID, map[string]any{column: smoothed}); err != nil {
		return 0, fmt.Errorf("store %s: %w", column, err)
	}
	return smoothed, nil
}

func (ss *scoreService) Recalculate(dbc dbctx.Context, userID uuid.UUID) (*Scores, error) {
	d, err := ss.CalculateDiscipline(dbc, userID)
	if err != nil {
		return nil, err
	}
	g, err := ss.CalculateGrowth(dbc, userID)
	if err != nil {
		return nil, err
	}
	ss.log.Debug("scores recalculated", "user_id", userID, "discipline", d, "growth", g)
	return &Scores{Discipline: d, Growth: g}, nil
}
