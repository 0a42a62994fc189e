package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/data/repos"
	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/gamification"
	"github.com/yungbote/mentor-backend/internal/observability"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

// UnlockedAchievement is returned to callers so they can announce the unlock.
type UnlockedAchievement struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
	XPReward    int    `json:"xp_reward"`
}

type AchievementService interface {
	// SeedCatalog inserts catalog entries missing by code and reports how many were added.
	SeedCatalog(dbc dbctx.Context) (int64, error)
	Evaluate(dbc dbctx.Context, userID uuid.UUID) ([]UnlockedAchievement, error)
	CollectStats(dbc dbctx.Context, userID uuid.UUID) (gamification.Stats, error)
	ListUserAchievements(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAchievement, error)
	ListCatalog(dbc dbctx.Context) ([]*types.Achievement, error)
}

type achievementService struct {
	db     *gorm.DB
	log    *logger.Logger
	clock  clock.Clock
	repos  repos.Set
	ledger LedgerService
}

func NewAchievementService(db *gorm.DB, log *logger.Logger, clk clock.Clock, rs repos.Set, ledger LedgerService) AchievementService {
	return &achievementService{
		db:     db,
		log:    log.With("service", "AchievementService"),
		clock:  clk,
		repos:  rs,
		ledger: ledger,
	}
}

func (as *achievementService) SeedCatalog(dbc dbctx.Context) (int64, error) {
	defs, err := gamification.Catalog()
	if err != nil {
		return 0, err
	}
	rows := make([]*types.Achievement, 0, len(defs))
	for _, d := range defs {
		rows = append(rows, &types.Achievement{
			Code:           d.Code,
			Name:           d.Name,
			Description:    d.Description,
			Emoji:          d.Emoji,
			XPReward:       d.XPReward,
			Category:       d.Category,
			ConditionType:  d.ConditionType,
			ConditionValue: d.ConditionValue,
		})
	}
	n, err := as.repos.Achievements.Seed(dbc, rows)
	if err != nil {
		return 0, fmt.Errorf("seed achievements: %w", err)
	}
	if n > 0 {
		as.log.Info("achievement catalog seeded", "inserted", n)
	}
	return n, nil
}

// Evaluate unlocks every catalog entry whose condition now holds and pays its
// reward. The unlock row is written before the reward; an unlock that exists
// is never re-checked or re-paid.
func (as *achievementService) Evaluate(dbc dbctx.Context, userID uuid.UUID) ([]UnlockedAchievement, error) {
	catalog, err := as.repos.Achievements.ListAll(dbc)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	unlocked, err := as.repos.UserAchievements.UnlockedIDs(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list unlocked: %w", err)
	}
	pending := make([]*types.Achievement, 0, len(catalog))
	for _, a := range catalog {
		if !unlocked[a.ID] {
			pending = append(pending, a)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	stats, err := as.CollectStats(dbc, userID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, nil
	}

	var out []UnlockedAchievement
	now := as.clock.Now().UTC()
	for _, a := range pending {
		if !gamification.Satisfied(a.ConditionType, a.ConditionValue, stats) {
			continue
		}
		inserted, err := as.repos.UserAchievements.Unlock(dbc, userID, a.ID, now)
		if err != nil {
			return out, fmt.Errorf("unlock %s: %w", a.Code, err)
		}
		if !inserted {
			continue
		}
		sourceID := a.ID
		if _, err := as.ledger.Award(dbc, AwardInput{
			UserID:      userID,
			EventType:   gamification.AchievementEvent(a.Code),
			Amount:      &a.XPReward,
			SourceType:  "achievement",
			SourceID:    &sourceID,
			Description: "🏆 " + a.Name,
		}); err != nil {
			// The unlock stays; a later Evaluate will not pay it again.
			as.log.Error("achievement reward failed", "user_id", userID, "code", a.Code, "error", err)
			return out, fmt.Errorf("reward %s: %w", a.Code, err)
		}
		observability.Current().IncAchievement(a.Code)
		out = append(out, UnlockedAchievement{
			Code:        a.Code,
			Name:        a.Name,
			Description: a.Description,
			Emoji:       a.Emoji,
			XPReward:    a.XPReward,
		})
	}
	return out, nil
}

func (as *achievementService) CollectStats(dbc dbctx.Context, userID uuid.UUID) (gamification.Stats, error) {
	u, err := as.repos.Users.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, nil
	}

	var (
		tasksCreated, tasksCompleted, activeTasks int64
		habitsCreated, habitLogs                  int64
		journalEntries, aiSessions                int64
		resourcesDone, playlists, tracks          int64
	)
	counters := []struct {
		name string
		dst  *int64
		fn   func() (int64, error)
	}{
		{"tasks created", &tasksCreated, func() (int64, error) { return as.repos.Tasks.CountByUser(dbc, userID) }},
		{"tasks completed", &tasksCompleted, func() (int64, error) {
			return as.repos.Tasks.CountByStatus(dbc, userID, types.TaskStatusDone)
		}},
		{"active tasks", &activeTasks, func() (int64, error) {
			return as.repos.Tasks.CountByStatus(dbc, userID, types.TaskStatusTodo, types.TaskStatusInProgress)
		}},
		{"habits", &habitsCreated, func() (int64, error) { return as.repos.Habits.CountByUser(dbc, userID) }},
		{"habit logs", &habitLogs, func() (int64, error) { return as.repos.HabitLogs.CountCompletedByUser(dbc, userID) }},
		{"journal entries", &journalEntries, func() (int64, error) { return as.repos.Journal.CountByUser(dbc, userID) }},
		{"ai sessions", &aiSessions, func() (int64, error) { return as.repos.AIInteractions.CountByUser(dbc, userID) }},
		{"resources", &resourcesDone, func() (int64, error) { return as.repos.Learning.CountCompleted(dbc, userID) }},
		{"playlists", &playlists, func() (int64, error) { return as.repos.Playlists.CountByUser(dbc, userID) }},
		{"tracks", &tracks, func() (int64, error) { return as.repos.PlaylistTracks.CountByUser(dbc, userID) }},
	}
	for _, c := range counters {
		n, err := c.fn()
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", c.name, err)
		}
		*c.dst = n
	}

	now := as.clock.Now()
	stamps, err := as.repos.AIInteractions.TimestampsSince(dbc, userID, now.Add(-7*24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("ai activity: %w", err)
	}

	return gamification.Stats{
		gamification.StatTasksCreated:           tasksCreated,
		gamification.StatTasksCompleted:         tasksCompleted,
		gamification.StatAllActiveTasksDone:     gamification.BoolStat(activeTasks == 0 && tasksCompleted > 0),
		gamification.StatHabitsCreated:          habitsCreated,
		gamification.StatHabitLogsCompleted:     habitLogs,
		gamification.StatJournalEntries:         journalEntries,
		gamification.StatAISessions:             aiSessions,
		gamification.StatLevel:                  int64(u.Level),
		gamification.StatResourcesCompleted:     resourcesDone,
		gamification.StatPlaylistsCreated:       playlists,
		gamification.StatPlaylistTracks:         tracks,
		gamification.StatActiveDays7:            int64(distinctDays(stamps, u.Timezone)),
		gamification.StatProfileFilled:          gamification.BoolStat(u.ProfileFilled()),
		gamification.StatTotalProductiveActions: tasksCompleted + habitLogs,
	}, nil
}

func (as *achievementService) ListUserAchievements(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAchievement, error) {
	return as.repos.UserAchievements.ListByUser(dbc, userID)
}

func (as *achievementService) ListCatalog(dbc dbctx.Context) ([]*types.Achievement, error) {
	return as.repos.Achievements.ListAll(dbc)
}

// evaluateAfter runs the evaluator once an action has committed. A failure is
// logged and leaves the action itself intact.
func evaluateAfter(svc AchievementService, log *logger.Logger, dbc dbctx.Context, userID uuid.UUID) []UnlockedAchievement {
	if svc == nil {
		return nil
	}
	unlocked, err := svc.Evaluate(dbc, userID)
	if err != nil {
		log.Warn("achievement evaluation failed", "user_id", userID, "error", err)
	}
	return unlocked
}

// distinctDays counts the calendar days (in zone) the timestamps fall on.
func distinctDays(stamps []time.Time, zone string) int {
	days := make(map[string]struct{}, len(stamps))
	for _, t := range stamps {
		days[clock.LocalDate(t, zone)] = struct{}{}
	}
	return len(days)
}
