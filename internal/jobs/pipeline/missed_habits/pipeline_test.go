package missed_habits

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mentor-backend/internal/data/repos/testutil"
	"github.com/yungbote/mentor-backend/internal/jobs/pipeline/pipelinetest"
)

// 09:00 UTC: noon in Moscow, 02:00 in Los Angeles.
var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestRunChecksEachUserOncePerLocalDay(t *testing.T) {
	env := pipelinetest.New(t, now)
	moscow := env.User("moscow")
	habit := testutil.SeedHabit(t, env.DBC.Ctx, env.Tx, moscow.ID, "Read", 127)
	require.NoError(t, env.Repos.Habits.UpdateFields(env.DBC, habit.ID, map[string]any{"current_streak": 3}))

	early := env.User("early")
	require.NoError(t, env.Repos.Users.UpdateFields(env.DBC, early.ID, map[string]any{"timezone": "America/Los_Angeles"}))
	testutil.SeedHabit(t, env.DBC.Ctx, env.Tx, early.ID, "Run", 127)

	p := New(env.Log, env.Clock, env.Repos.Users, env.Habits, 3)
	jc := env.Job(JobType)
	require.NoError(t, p.Run(jc))
	assert.Equal(t, 1, jc.Count("checked"))
	assert.Equal(t, 1, jc.Count("missed"))
	assert.Equal(t, 1, jc.Count("skipped"))

	stored, err := env.Repos.Habits.GetByID(env.DBC, habit.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.CurrentStreak)
	assert.Equal(t, "2026-03-10", env.Reload(moscow).MissedCheckedOn)
	assert.Empty(t, env.Reload(early).MissedCheckedOn)

	// Same local day: nobody is penalised twice.
	jc = env.Job(JobType)
	require.NoError(t, p.Run(jc))
	assert.Zero(t, jc.Count("checked"))
	assert.Equal(t, 2, jc.Count("skipped"))

	// Los Angeles passes 03:00 two hours later.
	env.Clock.Advance(2 * time.Hour)
	jc = env.Job(JobType)
	require.NoError(t, p.Run(jc))
	assert.Equal(t, 1, jc.Count("checked"))
	assert.Equal(t, "2026-03-10", env.Reload(early).MissedCheckedOn)
}

func TestNewClampsHour(t *testing.T) {
	env := pipelinetest.New(t, now)
	assert.Equal(t, 3, New(env.Log, env.Clock, env.Repos.Users, env.Habits, 42).hour)
	assert.Equal(t, 0, New(env.Log, env.Clock, env.Repos.Users, env.Habits, 0).hour)
}
