package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/data/db"
	"github.com/yungbote/mentor-backend/internal/data/repos"
	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/domain/user"
	"github.com/yungbote/mentor-backend/internal/gamification"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/mentor-backend/internal/pkg/errors"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

const defaultHabitRemindTime = "21:00"

type CreateHabitInput struct {
	Name            string `json:"name"`
	Emoji           string `json:"emoji"`
	Description     string `json:"description"`
	ScheduleMask    *int   `json:"schedule_mask"`
	XPPerCompletion *int   `json:"xp_per_completion"`
	RemindEnabled   *bool  `json:"remind_enabled"`
	RemindTime      string `json:"remind_time"`
	RemindText      string `json:"remind_text"`
}

type HabitLogResult struct {
	Failure
	AlreadyLogged    bool                  `json:"already_logged,omitempty"`
	Streak           int                   `json:"streak"`
	BestStreak       int                   `json:"best_streak,omitempty"`
	XPEarned         int                   `json:"xp_earned,omitempty"`
	Milestone        *int                  `json:"streak_milestone,omitempty"`
	TotalCompletions int                   `json:"total_completions,omitempty"`
	LeveledUp        bool                  `json:"leveled_up,omitempty"`
	Achievements     []UnlockedAchievement `json:"achievements,omitempty"`
}

type FreezeResult struct {
	Failure
	Date        string `json:"date,omitempty"`
	FreezesLeft int    `json:"freezes_left"`
	Streak      int    `json:"streak"`
}

type MissedHabitsResult struct {
	Date   string   `json:"date"`
	Missed []string `json:"missed"`
	XPLost int      `json:"xp_lost"`
}

type HabitWeek struct {
	HabitID    uuid.UUID `json:"habit_id"`
	Name       string    `json:"name"`
	Emoji      string    `json:"emoji"`
	Completed  int       `json:"completed"`
	Possible   int       `json:"possible"`
	Rate       float64   `json:"rate"`
	Streak     int       `json:"streak"`
	BestStreak int       `json:"best_streak"`
}

type WeeklyPerformance struct {
	WeekStart      string      `json:"week_start"`
	OverallRate    float64     `json:"overall_rate"`
	TotalCompleted int         `json:"total_completed"`
	TotalPossible  int         `json:"total_possible"`
	Habits         []HabitWeek `json:"habits"`
	BestStreak     int         `json:"best_streak"`
}

type HabitService interface {
	CreateHabit(dbc dbctx.Context, userID uuid.UUID, in CreateHabitInput) (*types.Habit, error)
	ListHabits(dbc dbctx.Context, userID uuid.UUID) ([]*types.Habit, error)
	// LogCompletion records a completion for date (user-local today when nil).
	LogCompletion(dbc dbctx.Context, userID, habitID uuid.UUID, date *string) (*HabitLogResult, error)
	UseStreakFreeze(dbc dbctx.Context, userID, habitID uuid.UUID, date *string) (*FreezeResult, error)
	// CheckMissedHabits resets habits scheduled yesterday (user-local) that have no log.
	CheckMissedHabits(dbc dbctx.Context, userID uuid.UUID) (*MissedHabitsResult, error)
	WeeklyPerformance(dbc dbctx.Context, userID uuid.UUID) (*WeeklyPerformance, error)
}

type habitService struct {
	db           *gorm.DB
	log          *logger.Logger
	clock        clock.Clock
	tx           db.TxRunner
	users        repos.UserRepo
	habits       repos.HabitRepo
	logs         repos.HabitLogRepo
	ledger       LedgerService
	achievements AchievementService
}

func NewHabitService(
	gdb *gorm.DB,
	log *logger.Logger,
	clk clock.Clock,
	users repos.UserRepo,
	habits repos.HabitRepo,
	logs repos.HabitLogRepo,
	ledger LedgerService,
	achievements AchievementService,
) HabitService {
	return &habitService{
		db:           gdb,
		log:          log.With("service", "HabitService"),
		clock:        clk,
		tx:           db.NewTxRunner(gdb),
		users:        users,
		habits:       habits,
		logs:         logs,
		ledger:       ledger,
		achievements: achievements,
	}
}

func (hs *habitService) CreateHabit(dbc dbctx.Context, userID uuid.UUID, in CreateHabitInput) (*types.Habit, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, pkgerrors.Invalidf("habit name")
	}
	u, err := requireUser(dbc, hs.users, userID)
	if err != nil {
		return nil, err
	}
	settings := u.ParsedSettings()

	h := &types.Habit{
		UserID:                 userID,
		Name:                   truncateRunes(name, 255),
		Emoji:                  strings.TrimSpace(in.Emoji),
		Description:            truncateRunes(strings.TrimSpace(in.Description), 500),
		ScheduleMask:           types.EveryDay,
		XPPerCompletion:        gamification.AwardFor(gamification.EventHabitCompleted),
		StreakFreezesAvailable: 1,
		IsActive:               true,
		RemindEnabled:          settings.Notifications.HabitRemindDefault,
		RemindTime:             defaultHabitRemindTime,
		RemindText:             strings.TrimSpace(in.RemindText),
	}
	if in.ScheduleMask != nil {
		if *in.ScheduleMask <= 0 || *in.ScheduleMask > types.EveryDay {
			return nil, pkgerrors.Invalidf("schedule mask %d", *in.ScheduleMask)
		}
		h.ScheduleMask = *in.ScheduleMask
	}
	if in.XPPerCompletion != nil && *in.XPPerCompletion > 0 {
		h.XPPerCompletion = *in.XPPerCompletion
	}
	if in.RemindEnabled != nil {
		h.RemindEnabled = *in.RemindEnabled
	}
	if t := strings.TrimSpace(in.RemindTime); t != "" {
		if !user.ValidHHMM(t) {
			return nil, pkgerrors.Invalidf("remind time %q", t)
		}
		h.RemindTime = t
	}
	created, err := hs.habits.Create(dbc, h)
	if err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return created, nil
}

func (hs *habitService) ListHabits(dbc dbctx.Context, userID uuid.UUID) ([]*types.Habit, error) {
	return hs.habits.ListActive(dbc, userID)
}

func (hs *habitService) LogCompletion(dbc dbctx.Context, userID, habitID uuid.UUID, date *string) (*HabitLogResult, error) {
	u, err := requireUser(dbc, hs.users, userID)
	if err != nil {
		return nil, err
	}
	logDate, err := resolveDate(date, localToday(hs.clock, u.Timezone))
	if err != nil {
		return nil, err
	}
	day := dateString(logDate)

	res := &HabitLogResult{}
	err = hs.tx.InTx(dbc, func(dbc dbctx.Context) error {
		h, err := hs.habits.GetByID(dbc, habitID)
		if err != nil {
			return fmt.Errorf("load habit: %w", err)
		}
		if h == nil || !h.IsActive {
			res.Failure = notFound("Habit not found")
			return nil
		}
		if h.UserID != userID {
			res.Failure = forbidden("Not your habit")
			return nil
		}

		existing, err := hs.logs.GetByHabitDate(dbc, habitID, day)
		if err != nil {
			return fmt.Errorf("load habit log: %w", err)
		}
		switch {
		case existing != nil && existing.Completed:
			res.AlreadyLogged = true
			res.Streak = h.CurrentStreak
			return nil
		case existing != nil:
			// A frozen day becomes a real completion.
			if err := hs.logs.UpdateFields(dbc, existing.ID, map[string]any{
				"completed": true,
				"logged_at": hs.clock.Now().UTC(),
			}); err != nil {
				return fmt.Errorf("upgrade habit log: %w", err)
			}
		default:
			inserted, err := hs.logs.Insert(dbc, &types.HabitLog{
				HabitID:   habitID,
				UserID:    userID,
				LogDate:   day,
				Completed: true,
				LoggedAt:  hs.clock.Now().UTC(),
			})
			if err != nil {
				return fmt.Errorf("create habit log: %w", err)
			}
			if !inserted {
				res.AlreadyLogged = true
				res.Streak = h.CurrentStreak
				return nil
			}
		}

		// A completion on an unscheduled weekday earns XP but neither extends
		// nor re-derives the streak.
		scheduled := gamification.Scheduled(h.ScheduleMask, logDate)
		streak, runStart := h.CurrentStreak, time.Time{}
		if scheduled {
			if streak, runStart, err = hs.streakAt(dbc, h, logDate); err != nil {
				return err
			}
		}
		res.Streak = streak
		res.BestStreak = max(h.BestStreak, streak)
		res.TotalCompletions = h.TotalCompletions + 1
		updates := map[string]any{
			"current_streak":    res.Streak,
			"best_streak":       res.BestStreak,
			"total_completions": res.TotalCompletions,
		}

		bonus, milestone := gamification.MilestoneBonus(streak)
		run := dateString(runStart)
		// A later run pays again; the same run, or one merged backwards by a
		// backfill, pays only a milestone above the last one reached.
		if milestone && scheduled && (run > h.MilestoneRunStart || streak > h.MilestoneReached) {
			updates["milestone_run_start"] = run
			updates["milestone_reached"] = streak
		} else {
			milestone = false
		}
		if err := hs.habits.UpdateFields(dbc, habitID, updates); err != nil {
			return fmt.Errorf("update habit: %w", err)
		}

		sourceID := habitID
		award, err := hs.ledger.Award(dbc, AwardInput{
			UserID:     userID,
			EventType:  gamification.EventHabitCompleted,
			Amount:     &h.XPPerCompletion,
			SourceType: "habit",
			SourceID:   &sourceID,
		})
		if err != nil {
			return err
		}
		res.XPEarned = award.Amount
		res.LeveledUp = award.LeveledUp

		if milestone {
			award, err := hs.ledger.Award(dbc, AwardInput{
				UserID:      userID,
				EventType:   gamification.StreakEvent(streak),
				Amount:      &bonus,
				SourceType:  "habit",
				SourceID:    &sourceID,
				Description: fmt.Sprintf("🔥 %d-day streak on %s!", streak, h.Name),
			})
			if err != nil {
				return err
			}
			reached := streak
			res.Milestone = &reached
			res.XPEarned += award.Amount
			res.LeveledUp = res.LeveledUp || award.LeveledUp
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !res.Failed() && !res.AlreadyLogged {
		res.Achievements = evaluateAfter(hs.achievements, hs.log, dbc, userID)
	}
	return res, nil
}

func (hs *habitService) streakAt(dbc dbctx.Context, h *types.Habit, logDate time.Time) (int, time.Time, error) {
	logs, err := hs.logs.ByHabitInRange(dbc, h.ID, dateString(gamification.StreakWindowStart(logDate)), dateString(logDate))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("load streak window: %w", err)
	}
	streak, start := gamification.StreakRun(h.ScheduleMask, logDate, func(day time.Time) bool {
		return logs[dateString(day)].Counts()
	})
	return streak, start, nil
}

func (hs *habitService) UseStreakFreeze(dbc dbctx.Context, userID, habitID uuid.UUID, date *string) (*FreezeResult, error) {
	u, err := requireUser(dbc, hs.users, userID)
	if err != nil {
		return nil, err
	}
	day, err := resolveDate(date, localToday(hs.clock, u.Timezone))
	if err != nil {
		return nil, err
	}

	res := &FreezeResult{Date: dateString(day)}
	err = hs.tx.InTx(dbc, func(dbc dbctx.Context) error {
		h, err := hs.habits.GetByID(dbc, habitID)
		if err != nil {
			return fmt.Errorf("load habit: %w", err)
		}
		if h == nil || !h.IsActive {
			res.Failure = notFound("Habit not found")
			return nil
		}
		if h.UserID != userID {
			res.Failure = forbidden("Not your habit")
			return nil
		}
		res.Streak = h.CurrentStreak
		res.FreezesLeft = h.StreakFreezesAvailable
		if h.StreakFreezesAvailable <= 0 {
			res.Failure = invalid("No freezes left")
			return nil
		}
		existing, err := hs.logs.GetByHabitDate(dbc, habitID, res.Date)
		if err != nil {
			return fmt.Errorf("load habit log: %w", err)
		}
		if existing != nil {
			res.Failure = alreadyDone("Day already logged")
			return nil
		}
		inserted, err := hs.logs.Insert(dbc, &types.HabitLog{
			HabitID:  habitID,
			UserID:   userID,
			LogDate:  res.Date,
			IsFreeze: true,
			LoggedAt: hs.clock.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("create freeze log: %w", err)
		}
		if !inserted {
			res.Failure = alreadyDone("Day already logged")
			return nil
		}
		res.FreezesLeft = h.StreakFreezesAvailable - 1
		return hs.habits.UpdateFields(dbc, habitID, map[string]any{
			"streak_freezes_available": res.FreezesLeft,
			"streak_freezes_used":      h.StreakFreezesUsed + 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (hs *habitService) CheckMissedHabits(dbc dbctx.Context, userID uuid.UUID) (*MissedHabitsResult, error) {
	u, err := requireUser(dbc, hs.users, userID)
	if err != nil {
		return nil, err
	}
	yesterday := localToday(hs.clock, u.Timezone).AddDate(0, 0, -1)
	res := &MissedHabitsResult{Date: dateString(yesterday), Missed: []string{}}

	err = hs.tx.InTx(dbc, func(dbc dbctx.Context) error {
		habits, err := hs.habits.ListActive(dbc, userID)
		if err != nil {
			return fmt.Errorf("list habits: %w", err)
		}
		for _, h := range habits {
			if !gamification.Scheduled(h.ScheduleMask, yesterday) {
				continue
			}
			existing, err := hs.logs.GetByHabitDate(dbc, h.ID, res.Date)
			if err != nil {
				return fmt.Errorf("load habit log: %w", err)
			}
			if existing != nil {
				continue
			}
			if err := hs.habits.UpdateFields(dbc, h.ID, map[string]any{"current_streak": 0}); err != nil {
				return fmt.Errorf("reset streak: %w", err)
			}
			pen, err := hs.ledger.Penalize(dbc, userID, gamification.PenaltyHabitMissed, "Missed habit: "+h.Name)
			if err != nil {
				return err
			}
			res.Missed = append(res.Missed, h.Name)
			res.XPLost -= pen.Amount
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(res.Missed) > 0 {
		hs.log.Info("missed habits", "user_id", userID, "date", res.Date, "count", len(res.Missed))
	}
	return res, nil
}

func (hs *habitService) WeeklyPerformance(dbc dbctx.Context, userID uuid.UUID) (*WeeklyPerformance, error) {
	u, err := requireUser(dbc, hs.users, userID)
	if err != nil {
		return nil, err
	}
	today := localToday(hs.clock, u.Timezone)
	start := weekStart(today)
	return hs.performance(dbc, userID, start, today)
}

// performance tallies scheduled versus completed days per habit in [from, to].
func (hs *habitService) performance(dbc dbctx.Context, userID uuid.UUID, from, to time.Time) (*WeeklyPerformance, error) {
	habits, err := hs.habits.ListActive(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	out := &WeeklyPerformance{WeekStart: dateString(from), Habits: make([]HabitWeek, 0, len(habits))}
	for _, h := range habits {
		logs, err := hs.logs.ByHabitInRange(dbc, h.ID, dateString(from), dateString(to))
		if err != nil {
			return nil, fmt.Errorf("load habit logs: %w", err)
		}
		hw := HabitWeek{HabitID: h.ID, Name: h.Name, Emoji: h.Emoji, Streak: h.CurrentStreak, BestStreak: h.BestStreak}
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			if !gamification.Scheduled(h.ScheduleMask, d) {
				continue
			}
			hw.Possible++
			if l := logs[dateString(d)]; l != nil && l.Completed {
				hw.Completed++
			}
		}
		if hw.Possible > 0 {
			hw.Rate = float64(hw.Completed) / float64(hw.Possible)
		}
		out.TotalPossible += hw.Possible
		out.TotalCompleted += hw.Completed
		out.BestStreak = max(out.BestStreak, hw.Streak)
		out.Habits = append(out.Habits, hw)
	}
	if out.TotalPossible > 0 {
		out.OverallRate = float64(out.TotalCompleted) / float64(out.TotalPossible)
	}
	return out, nil
}

