package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mentor-backend/internal/data/repos/testutil"
	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/gamification"
	"github.com/yungbote/mentor-backend/internal/pkg/pointers"
)

func TestCreateHabitDefaults(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("habits")

	habit, err := h.habits.CreateHabit(h.dbc, u.ID, CreateHabitInput{Name: "Read docs"})
	require.NoError(t, err)
	assert.Equal(t, types.EveryDay, habit.ScheduleMask)
	assert.Equal(t, 15, habit.XPPerCompletion)
	assert.Equal(t, "21:00", habit.RemindTime)
	assert.True(t, habit.RemindEnabled)
	assert.Equal(t, 1, habit.StreakFreezesAvailable)

	_, err = h.habits.CreateHabit(h.dbc, u.ID, CreateHabitInput{Name: "Bad", RemindTime: "25:00"})
	assert.Error(t, err)
	_, err = h.habits.CreateHabit(h.dbc, u.ID, CreateHabitInput{Name: "Bad", ScheduleMask: pointers.Int(0)})
	assert.Error(t, err)
}

func TestLogCompletionIsIdempotentPerDay(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("logger")
	habit := testutil.SeedHabit(t, h.dbc.Ctx, h.tx, u.ID, "Run", 127)

	first, err := h.habits.LogCompletion(h.dbc, u.ID, habit.ID, nil)
	require.NoError(t, err)
	require.False(t, first.Failed())
	assert.Equal(t, 1, first.Streak)
	assert.Equal(t, 15, first.XPEarned)
	assert.Equal(t, 1, first.TotalCompletions)

	second, err := h.habits.LogCompletion(h.dbc, u.ID, habit.ID, nil)
	require.NoError(t, err)
	assert.True(t, second.AlreadyLogged)
	assert.Zero(t, second.XPEarned)

	assert.Equal(t, 15, h.reload(u.ID).XP)
}

func TestLogCompletionBuildsStreakAcrossDays(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("streaker")
	habit := testutil.SeedHabit(t, h.dbc.Ctx, h.tx, u.ID, "Code", 127)

	for _, day := range []string{"2026-03-08", "2026-03-09"} {
		_, err := h.habits.LogCompletion(h.dbc, u.ID, habit.ID, pointers.String(day))
		require.NoError(t, err)
	}
	res, err := h.habits.LogCompletion(h.dbc, u.ID, habit.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Streak)
	assert.Equal(t, 3, res.BestStreak)

	stored, err := h.repos.Habits.GetByID(h.dbc, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.CurrentStreak)
	assert.Equal(t, 3, stored.TotalCompletions)
}

func TestLogCompletionOwnership(t *testing.T) {
	h := newHarness(t)
	owner := h.seedUser("owner")
	other := h.seedUser("other")
	habit := testutil.SeedHabit(t, h.dbc.Ctx, h.tx, owner.ID, "Stretch", 127)

	res, err := h.habits.LogCompletion(h.dbc, other.ID, habit.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Not your habit", res.Error)
	assert.Equal(t, FailForbidden, res.FailureKind())

	res, err = h.habits.LogCompletion(h.dbc, owner.ID, uuid.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Habit not found", res.Error)
	assert.Equal(t, FailNotFound, res.FailureKind())
}

func TestStreakFreezeBridgesGap(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("freezer")
	habit := testutil.SeedHabit(t, h.dbc.Ctx, h.tx, u.ID, "Write", 127)

	_, err := h.habits.LogCompletion(h.dbc, u.ID, habit.ID, pointers.String("2026-03-08"))
	require.NoError(t, err)

	freeze, err := h.habits.UseStreakFreeze(h.dbc, u.ID, habit.ID, pointers.String("2026-03-09"))
	require.NoError(t, err)
	require.False(t, freeze.Failed(), freeze.Error)
	assert.Equal(t, 0, freeze.FreezesLeft)

	res, err := h.habits.LogCompletion(h.dbc, u.ID, habit.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Streak)

	again, err := h.habits.UseStreakFreeze(h.dbc, u.ID, habit.ID, pointers.String("2026-03-07"))
	require.NoError(t, err)
	assert.Equal(t, "No freezes left", again.Error)
}

func TestStreakFreezeRejectsLoggedDay(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("logged")
	habit := testutil.SeedHabit(t, h.dbc.Ctx, h.tx, u.ID, "Walk", 127)

	_, err := h.habits.LogCompletion(h.dbc, u.ID, habit.ID, nil)
	require.NoError(t, err)

	res, err := h.habits.UseStreakFreeze(h.dbc, u.ID, habit.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Day already logged", res.Error)
	assert.Equal(t, FailAlreadyDone, res.FailureKind())
}

func TestCheckMissedHabitsResetsAndPenalizes(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("misser")
	missed := testutil.SeedHabit(t, h.dbc.Ctx, h.tx, u.ID, "Missed", 127)
	kept := testutil.SeedHabit(t, h.dbc.Ctx, h.tx, u.ID, "Kept", 127)
	// Monday is bit 0; this habit only runs on Sundays.
	sundays := testutil.SeedHabit(t, h.dbc.Ctx, h.tx, u.ID, "Sunday", 1<<6)

	require.NoError(t, h.repos.Habits.UpdateFields(h.dbc, missed.ID, map[string]any{"current_streak": 4}))
	_, err := h.habits.LogCompletion(h.dbc, u.ID, kept.ID, pointers.String("2026-03-09"))
	require.NoError(t, err)

	res, err := h.habits.CheckMissedHabits(h.dbc, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", res.Date)
	assert.Equal(t, []string{"Missed"}, res.Missed)
	assert.Equal(t, 10, res.XPLost)

	stored, err := h.repos.Habits.GetByID(h.dbc, missed.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CurrentStreak)

	untouched, err := h.repos.Habits.GetByID(h.dbc, sundays.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, untouched.CurrentStreak)

	// 15 earned for the kept habit, 10 lost for the missed one.
	after := h.reload(u.ID)
	assert.Equal(t, 5, after.XP)
	assert.Equal(t, 15, after.TotalXPEarned)
}

func TestWeeklyPerformance(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("weekly")
	habit := testutil.SeedHabit(t, h.dbc.Ctx, h.tx, u.ID, "Daily", 127)

	_, err := h.habits.LogCompletion(h.dbc, u.ID, habit.ID, pointers.String("2026-03-09"))
	require.NoError(t, err)

	perf, err := h.habits.WeeklyPerformance(h.dbc, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", perf.WeekStart)
	assert.Equal(t, 2, perf.TotalPossible)
	assert.Equal(t, 1, perf.TotalCompleted)
	assert.InDelta(t, 0.5, perf.OverallRate, 1e-9)
	require.Len(t, perf.Habits, 1)
	assert.Equal(t, 1, perf.BestStreak)
}

func (h *harness) countEvents(userID uuid.UUID, eventType string) int64 {
	h.t.Helper()
	n, err := h.repos.XPEvents.CountByTypeSince(h.dbc, userID, eventType, time.Time{})
	require.NoError(h.t, err)
	return n
}

func TestStreakMilestonePaysOncePerRun(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("milestone")
	habit := testutil.SeedHabit(t, h.dbc.Ctx, h.tx, u.ID, "Meditate", 127)

	days := []string{
		"2026-03-04", "2026-03-05", "2026-03-06", "2026-03-07",
		"2026-03-08", "2026-03-09", "2026-03-10", "2026-03-11",
	}
	var paid []int
	for _, d := range days {
		res, err := h.habits.LogCompletion(h.dbc, u.ID, habit.ID, pointers.String(d))
		require.NoError(t, err)
		require.False(t, res.AlreadyLogged, d)
		if res.Milestone != nil {
			paid = append(paid, *res.Milestone)
			assert.Equal(t, "2026-03-10", d)
			assert.Equal(t, 15+50, res.XPEarned)
		}
	}
	assert.Equal(t, []int{7}, paid)
	assert.Equal(t, int64(1), h.countEvents(u.ID, gamification.StreakEvent(7)))
	assert.Equal(t, 8*15+50, h.reload(u.ID).TotalXPEarned)
}

func TestOffScheduleCompletionDoesNotRepayMilestone(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("offday")
	// Every day except Wednesday (bit 2).
	habit := testutil.SeedHabit(t, h.dbc.Ctx, h.tx, u.ID, "Gym", 127&^4)

	for _, d := range []string{"2026-03-03", "2026-03-05", "2026-03-06", "2026-03-07", "2026-03-08", "2026-03-09", "2026-03-10"} {
		_, err := h.habits.LogCompletion(h.dbc, u.ID, habit.ID, pointers.String(d))
		require.NoError(t, err)
	}
	require.Equal(t, int64(1), h.countEvents(u.ID, gamification.StreakEvent(7)))

	wed, err := h.habits.LogCompletion(h.dbc, u.ID, habit.ID, pointers.String("2026-03-11"))
	require.NoError(t, err)
	assert.Nil(t, wed.Milestone)
	assert.Equal(t, 7, wed.Streak)
	assert.Equal(t, 15, wed.XPEarned)
	assert.Equal(t, int64(1), h.countEvents(u.ID, gamification.StreakEvent(7)))
}

func TestBackfillMergingRunsDoesNotRepayMilestone(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("backfill")
	habit := testutil.SeedHabit(t, h.dbc.Ctx, h.tx, u.ID, "Read", 127)

	log := func(d string) *HabitLogResult {
		t.Helper()
		res, err := h.habits.LogCompletion(h.dbc, u.ID, habit.ID, pointers.String(d))
		require.NoError(t, err)
		return res
	}
	for _, d := range []string{"2026-03-01", "2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05", "2026-03-06"} {
		log(d)
	}
	var last *HabitLogResult
	for _, d := range []string{"2026-03-08", "2026-03-09", "2026-03-10", "2026-03-11", "2026-03-12", "2026-03-13", "2026-03-14"} {
		last = log(d)
	}
	require.NotNil(t, last.Milestone)
	require.Equal(t, int64(1), h.countEvents(u.ID, gamification.StreakEvent(7)))

	// Filling the gap on the 7th re-derives a 7-day streak for the merged run.
	gap := log("2026-03-07")
	assert.Equal(t, 7, gap.Streak)
	assert.Nil(t, gap.Milestone)
	assert.Equal(t, int64(1), h.countEvents(u.ID, gamification.StreakEvent(7)))
}
