package achievement_sweep

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mentor-backend/internal/data/repos/testutil"
	"github.com/yungbote/mentor-backend/internal/jobs/pipeline/pipelinetest"
)

func TestSweepUnlocksMissedAchievementsOnce(t *testing.T) {
	env := pipelinetest.New(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	u := env.User("sweeper")
	env.User("idle")
	// Seeded directly, so no request path has evaluated it yet.
	testutil.SeedTask(t, env.DBC.Ctx, env.Tx, u.ID, "First", "low")

	p := New(env.Log, env.Repos.Users, env.Achievements)
	jc := env.Job(JobType)
	require.NoError(t, p.Run(jc))
	assert.Equal(t, 2, jc.Count("users"))
	assert.Equal(t, 1, jc.Count("unlocked"))
	assert.Equal(t, 25, env.Reload(u).TotalXPEarned)

	jc = env.Job(JobType)
	require.NoError(t, p.Run(jc))
	assert.Zero(t, jc.Count("unlocked"))
}
