package reminder_tick

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mentor-backend/internal/data/repos/testutil"
	"github.com/yungbote/mentor-backend/internal/jobs/pipeline/pipelinetest"
	"github.com/yungbote/mentor-backend/internal/reminders"
)

func TestRunReportsDispatcherStats(t *testing.T) {
	env := pipelinetest.New(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	u := env.User("ticker")
	task := testutil.SeedTask(t, env.DBC.Ctx, env.Tx, u.ID, "Standup", "high")
	require.NoError(t, env.Repos.Tasks.UpdateFields(env.DBC, task.ID, map[string]any{
		"remind_enabled": true,
		"remind_time":    "12:00",
	}))

	disp := reminders.NewDispatcher(env.Log, env.Clock, env.Repos, env.Sender, reminders.NewMemoryDedup(0))
	p := New(env.Log, disp)
	assert.Equal(t, JobType, p.Type())

	jc := env.Job(JobType)
	require.NoError(t, p.Run(jc))
	assert.Equal(t, 1, jc.Count("sent"))
	assert.Equal(t, 1, jc.Count("users"))

	jc = env.Job(JobType)
	require.NoError(t, p.Run(jc))
	assert.Zero(t, jc.Count("sent"))
	assert.Equal(t, 1, jc.Count("deduped"))
	assert.Len(t, env.Sender.Sent(), 1)
}
