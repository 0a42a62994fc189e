package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mentor-backend/internal/data/repos/testutil"
)

func TestCleanupHistory(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("cleaner")

	_, err := h.mentor.Chat(h.dbc, u.ID, "hi")
	require.NoError(t, err)
	_, err = h.journal.CreateEntry(h.dbc, u.ID, CreateEntryInput{Content: "note"})
	require.NoError(t, err)

	bad, err := h.cleanup.CleanupHistory(h.dbc, u.ID, "fortnight")
	require.NoError(t, err)
	assert.Equal(t, FailInvalid, bad.FailureKind())

	res, err := h.cleanup.CleanupHistory(h.dbc, u.ID, "ALL")
	require.NoError(t, err)
	require.False(t, res.Failed())
	assert.Equal(t, "all", res.Period)
	assert.EqualValues(t, 1, res.DeletedAI)
	assert.EqualValues(t, 1, res.DeletedJournal)
	assert.EqualValues(t, 2, res.DeletedXPEvents)

	n, err := h.repos.AIInteractions.CountByUser(h.dbc, u.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Balances survive a history wipe.
	assert.Equal(t, 15, h.reload(u.ID).TotalXPEarned)
}

func TestDeleteProfile(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("leaver")
	task := testutil.SeedTask(t, h.dbc.Ctx, h.tx, u.ID, "Task", "low")
	_, err := h.tasks.CompleteTask(h.dbc, u.ID, task.ID)
	require.NoError(t, err)
	habit := testutil.SeedHabit(t, h.dbc.Ctx, h.tx, u.ID, "Habit", 127)
	_, err = h.habits.LogCompletion(h.dbc, u.ID, habit.ID, nil)
	require.NoError(t, err)

	res, err := h.cleanup.DeleteProfile(h.dbc, u.ID)
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Equal(t, "leaver", res.Title)

	gone, err := h.repos.Users.GetByID(h.dbc, u.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	tasks, err := h.repos.Tasks.CountByUser(h.dbc, u.ID)
	require.NoError(t, err)
	assert.Zero(t, tasks)
	logs, err := h.repos.TaskLogs.ListByTask(h.dbc, task.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)

	missing, err := h.cleanup.DeleteProfile(h.dbc, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "Profile not found", missing.Error)
}
