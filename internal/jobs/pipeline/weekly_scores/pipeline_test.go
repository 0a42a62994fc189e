package weekly_scores

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mentor-backend/internal/jobs/pipeline/pipelinetest"
)

// A Sunday; noon in Moscow, 02:00 in Los Angeles.
var sunday = time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

func TestRunGeneratesAndDeliversReportOnReportDay(t *testing.T) {
	env := pipelinetest.New(t, sunday)
	u := env.User("weekly")
	late := env.User("late")
	require.NoError(t, env.Repos.Users.UpdateFields(env.DBC, late.ID, map[string]any{"timezone": "America/Los_Angeles"}))

	p := New(env.Log, env.Clock, env.Repos, env.Reports, env.Mentor, env.Sender, 3)
	jc := env.Job(JobType)
	require.NoError(t, p.Run(jc))
	assert.Equal(t, 1, jc.Count("reports"))
	assert.Equal(t, 1, jc.Count("delivered"))
	assert.Equal(t, 1, jc.Count("skipped"))

	rep, err := env.Repos.WeeklyReports.LatestByUser(env.DBC, u.ID)
	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.Equal(t, "2026-03-15", rep.WeekEnd)
	assert.Equal(t, "Steady week.", rep.AIReview)

	sent := env.Sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, u.ChatID, sent[0].ChatID)
	assert.True(t, strings.Contains(sent[0].Text, "Steady week."))

	jc = env.Job(JobType)
	require.NoError(t, p.Run(jc))
	assert.Zero(t, jc.Count("reports"))
}

func TestRunSkipsOtherDaysAndCountsUndelivered(t *testing.T) {
	env := pipelinetest.New(t, sunday.AddDate(0, 0, -1))
	u := env.User("saturday")
	p := New(env.Log, env.Clock, env.Repos, env.Reports, env.Mentor, env.Sender, 3)

	jc := env.Job(JobType)
	require.NoError(t, p.Run(jc))
	assert.Zero(t, jc.Count("reports"))

	env.Clock.Advance(24 * time.Hour)
	env.Sender.FailTo[u.ChatID] = true
	jc = env.Job(JobType)
	require.NoError(t, p.Run(jc))
	assert.Equal(t, 1, jc.Count("reports"))
	assert.Equal(t, 1, jc.Count("undelivered"))
}
