package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/mentor-backend/internal/domain"
)

func TestGenerateWeeklyReport(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("reporter")

	created, err := h.tasks.CreateTask(h.dbc, u.ID, CreateTaskInput{Title: "Finish chapter"})
	require.NoError(t, err)
	_, err = h.tasks.CompleteTask(h.dbc, u.ID, created.Task.ID)
	require.NoError(t, err)
	h.primary.reply = "Solid week."

	view, err := h.reports.GenerateWeeklyReport(h.dbc, u.ID)
	require.NoError(t, err)
	rep := view.Report
	assert.Equal(t, "2026-03-04", rep.WeekStart)
	assert.Equal(t, "2026-03-10", rep.WeekEnd)
	assert.EqualValues(t, 1, rep.TasksCreated)
	assert.EqualValues(t, 1, rep.TasksCompleted)
	assert.EqualValues(t, 0, rep.TasksOverdue)
	assert.EqualValues(t, 25, rep.XPEarned)
	assert.Equal(t, "Solid week.", rep.AIReview)
	assert.Zero(t, view.XPEarned)

	assert.Contains(t, view.Text, "📊 *WEEKLY REVIEW*")
	assert.Contains(t, view.Text, "Completed: 1")
	assert.Contains(t, view.Text, "Overdue: 0 ✅")
	assert.Contains(t, view.Text, "⭐ *XP*: +25 / -0")
	assert.Contains(t, view.Text, "Solid week.")

	stored, err := h.repos.WeeklyReports.LatestByUser(h.dbc, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, rep.ID, stored.ID)
}

func TestGenerateWeeklyReportFallsBackWithoutLLM(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("offline")
	h.primary.err = errors.New("down")
	h.fallback.err = errors.New("down too")

	view, err := h.reports.GenerateWeeklyReport(h.dbc, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "No tasks were closed this week. Habits slipped, so pick one and protect it every day. "+
		"Next week, schedule your hardest task for the morning.", view.Report.AIReview)
}

func TestReadWeeklyReportPaysBonus(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("reader")

	view, err := h.reports.ReadWeeklyReport(h.dbc, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, view.XPEarned)
	assert.Equal(t, 10, h.reload(u.ID).TotalXPEarned)
}

func TestFormatWeeklyReportHabitBars(t *testing.T) {
	text := FormatWeeklyReport(&WeeklyReportView{
		Report: &types.WeeklyReport{
			TasksOverdue:        2,
			HabitCompletionRate: 0.5,
			DisciplineScore:     75,
			GrowthScore:         10,
			AIReview:            "ok",
		},
		Habits: []HabitWeek{{Name: "Read", Emoji: "📚", Rate: 0.5, Streak: 3}},
	})
	assert.Contains(t, text, "📚 Read: [▓▓▓▓▓░░░░░] 50% (🔥3d)")
	assert.Contains(t, text, "Overdue: 2 ⚠️")
	assert.Contains(t, text, "🟢 *Discipline*: 75/100")
	assert.Contains(t, text, "🔴 *Growth*: 10/100")

	empty := FormatWeeklyReport(&WeeklyReportView{Report: &types.WeeklyReport{}})
	assert.Contains(t, empty, "  No habits")
}
