package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mentor-backend/internal/data/repos"
	"github.com/yungbote/mentor-backend/internal/data/repos/testutil"
	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/mentor-backend/internal/pkg/errors"
	"github.com/yungbote/mentor-backend/internal/pkg/pointers"
)

func TestCreateTaskAwardsAndDefaultsReminderText(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("creator")

	out, err := h.tasks.CreateTask(h.dbc, u.ID, CreateTaskInput{
		Title:    "Ship the parser",
		Priority: "high",
		Tags:     []string{"#Go", "go", "backend"},
		Reminder: &ReminderInput{Time: "18:30"},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, out.XPEarned)
	assert.Equal(t, "high", out.Task.Priority)
	assert.Equal(t, []string{"go", "backend"}, out.Task.TagList())
	assert.True(t, out.Task.RemindEnabled)
	assert.Equal(t, "🔔 Time: Ship the parser", out.Task.RemindText)
	assert.Equal(t, 5, h.reload(u.ID).TotalXPEarned)
}

func TestCreateTaskValidation(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("validator")

	cases := []CreateTaskInput{
		{Title: "  "},
		{Title: "x", Priority: "urgent"},
		{Title: "x", Deadline: pointers.String("10/03/2026")},
		{Title: "x", Recurrence: &RecurrenceInput{Enabled: true, Type: "hourly"}},
		{Title: "x", Recurrence: &RecurrenceInput{Enabled: true, Type: "on_date"}},
		{Title: "x", Reminder: &ReminderInput{Time: "7pm"}},
	}
	for _, in := range cases {
		_, err := h.tasks.CreateTask(h.dbc, u.ID, in)
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument), "input %+v: %v", in, err)
	}
}

func TestCompleteTaskPaysPriorityAndDeadlineBonus(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("finisher")

	created, err := h.tasks.CreateTask(h.dbc, u.ID, CreateTaskInput{
		Title:    "Review PR",
		Priority: "medium",
		Deadline: pointers.String("2026-03-10"),
	})
	require.NoError(t, err)

	res, err := h.tasks.CompleteTask(h.dbc, u.ID, created.Task.ID)
	require.NoError(t, err)
	require.False(t, res.Failed(), res.Error)
	assert.Equal(t, 35, res.XPEarned)
	assert.Equal(t, "Review PR", res.Title)

	again, err := h.tasks.CompleteTask(h.dbc, u.ID, created.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Task already completed", again.Error)
	assert.Equal(t, FailAlreadyDone, again.FailureKind())

	stored, err := h.repos.Tasks.GetByID(h.dbc, created.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusDone, stored.Status)
	require.NotNil(t, stored.CompletedAt)

	logs, err := h.repos.TaskLogs.ListByTask(h.dbc, created.Task.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, types.TaskStatusTodo, logs[0].OldStatus)

	assert.Equal(t, 40, h.reload(u.ID).TotalXPEarned)
}

func TestCompleteTaskPastDeadlineHasNoBonus(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("late")

	created, err := h.tasks.CreateTask(h.dbc, u.ID, CreateTaskInput{
		Title:    "Late one",
		Priority: "low",
		Deadline: pointers.String("2026-03-01"),
	})
	require.NoError(t, err)

	res, err := h.tasks.CompleteTask(h.dbc, u.ID, created.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, res.XPEarned)
}

func TestCompleteRecurringTaskSpawnsNext(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("recurring")

	created, err := h.tasks.CreateTask(h.dbc, u.ID, CreateTaskInput{
		Title:      "Standup notes",
		Deadline:   pointers.String("2026-03-10"),
		Recurrence: &RecurrenceInput{Enabled: true, Type: "weekly"},
	})
	require.NoError(t, err)

	res, err := h.tasks.CompleteTask(h.dbc, u.ID, created.Task.ID)
	require.NoError(t, err)
	require.NotNil(t, res.NextTaskID)
	assert.Equal(t, "2026-03-17", res.NextDeadline)

	next, err := h.repos.Tasks.GetByID(h.dbc, *res.NextTaskID)
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusTodo, next.Status)
	assert.True(t, next.IsRecurring)
	assert.Equal(t, "Standup notes", next.Title)
}

func TestCompleteTaskOwnership(t *testing.T) {
	h := newHarness(t)
	owner := h.seedUser("owner")
	other := h.seedUser("intruder")
	task := testutil.SeedTask(t, h.dbc.Ctx, h.tx, owner.ID, "Mine", "high")

	res, err := h.tasks.CompleteTask(h.dbc, other.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Not your task", res.Error)

	res, err = h.tasks.CompleteTask(h.dbc, owner.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "Task not found", res.Error)

	del, err := h.tasks.DeleteTask(h.dbc, other.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, FailForbidden, del.FailureKind())

	del, err = h.tasks.DeleteTask(h.dbc, owner.ID, task.ID)
	require.NoError(t, err)
	assert.True(t, del.Deleted)
	assert.Equal(t, "Mine", del.Title)
}

func TestCreateQuickTask(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("quick")

	res, err := h.tasks.CreateQuickTask(h.dbc, u.ID, "Fixed flaky test", "hard")
	require.NoError(t, err)
	require.False(t, res.Failed())
	assert.Equal(t, 35, res.XPEarned)
	assert.Equal(t, types.TaskStatusDone, res.Task.Status)

	bad, err := h.tasks.CreateQuickTask(h.dbc, u.ID, "Something", "legendary")
	require.NoError(t, err)
	assert.Equal(t, "Unknown difficulty: legendary", bad.Error)
}

func TestCountOverdueAndListByTag(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("lister")

	_, err := h.tasks.CreateTask(h.dbc, u.ID, CreateTaskInput{Title: "Old", Deadline: pointers.String("2026-03-01"), Tags: []string{"ops"}})
	require.NoError(t, err)
	_, err = h.tasks.CreateTask(h.dbc, u.ID, CreateTaskInput{Title: "Fresh", Deadline: pointers.String("2026-03-20")})
	require.NoError(t, err)

	n, err := h.tasks.CountOverdue(h.dbc, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	tagged, err := h.tasks.ListTasks(h.dbc, u.ID, "", "#OPS")
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "Old", tagged[0].Title)
}

// staleTasks serves the snapshot taken before the task was completed, the
// view a second concurrent request has under READ COMMITTED.
type staleTasks struct {
	repos.TaskRepo
	snapshot *types.Task
}

func (s staleTasks) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Task, error) {
	if s.snapshot != nil && s.snapshot.ID == id {
		cp := *s.snapshot
		return &cp, nil
	}
	return s.TaskRepo.GetByID(dbc, id)
}

func TestCompleteTaskRacingCompletionPaysOnce(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("double-tap")

	created, err := h.tasks.CreateTask(h.dbc, u.ID, CreateTaskInput{
		Title:      "Water plants",
		Deadline:   pointers.String("2026-03-10"),
		Recurrence: &RecurrenceInput{Enabled: true, Type: "daily"},
	})
	require.NoError(t, err)
	snapshot, err := h.repos.Tasks.GetByID(h.dbc, created.Task.ID)
	require.NoError(t, err)

	first, err := h.tasks.CompleteTask(h.dbc, u.ID, created.Task.ID)
	require.NoError(t, err)
	require.False(t, first.Failed())
	xpAfterFirst := h.reload(u.ID).TotalXPEarned

	late := NewTaskService(h.db, testutil.Logger(t), h.clock, h.repos.Users,
		staleTasks{TaskRepo: h.repos.Tasks, snapshot: snapshot}, h.repos.TaskLogs, h.ledger, h.achievements)
	second, err := late.CompleteTask(h.dbc, u.ID, created.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Task already completed", second.Error)
	assert.Equal(t, FailAlreadyDone, second.FailureKind())
	assert.Nil(t, second.NextTaskID)

	assert.Equal(t, xpAfterFirst, h.reload(u.ID).TotalXPEarned)
	active, err := h.tasks.ListActive(h.dbc, u.ID)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
