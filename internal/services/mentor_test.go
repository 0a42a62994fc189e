package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mentor-backend/internal/clients/llm"
	"github.com/yungbote/mentor-backend/internal/data/repos/testutil"
	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/domain/user"
)

func TestChatRecordsInteractionAndAwardsSession(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("chatter")
	testutil.SeedTask(t, h.dbc.Ctx, h.tx, u.ID, "Write tests", "high")

	reply, err := h.mentor.Chat(h.dbc, u.ID, "How should I learn generics?")
	require.NoError(t, err)
	assert.Equal(t, "Keep going.", reply.Reply)
	assert.Equal(t, MentorModeChat, reply.Mode)
	assert.False(t, reply.Degraded)
	assert.Equal(t, 5, reply.XPEarned)

	require.Equal(t, 1, h.primary.Calls())
	assert.Zero(t, h.fallback.Calls())
	msgs := h.primary.calls[0]
	require.Len(t, msgs, 4)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Your mentor name is: Iron Mentor.")
	assert.Contains(t, msgs[0].Content, "Discipline intensity preference: 85/100.")
	assert.True(t, strings.HasPrefix(msgs[1].Content, "Context:\n=== USER PROFILE ==="))
	assert.Contains(t, msgs[1].Content, "- [high] Write tests")
	assert.Equal(t, "Understood. I have the context.", msgs[2].Content)
	assert.Equal(t, "How should I learn generics?", msgs[3].Content)

	recent, err := h.repos.AIInteractions.Recent(h.dbc, u.ID, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Keep going.", recent[0].AIResponse)
	assert.Equal(t, user.PersonaAdaptive, recent[0].AIMode)
	assert.Equal(t, 5, h.reload(u.ID).TotalXPEarned)
}

func TestChatFallsBackToSecondBackend(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("fallback")
	h.primary.err = &llm.HTTPError{StatusCode: 502}

	reply, err := h.mentor.Chat(h.dbc, u.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Fallback says hi.", reply.Reply)
	assert.False(t, reply.Degraded)
	assert.Equal(t, 1, h.fallback.Calls())
}

func TestChatDegradesWhenAllBackendsFail(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("degraded")
	h.primary.err = context.DeadlineExceeded
	h.fallback.err = &llm.HTTPError{StatusCode: 429}

	reply, err := h.mentor.Chat(h.dbc, u.ID, "hello")
	require.NoError(t, err)
	assert.True(t, reply.Degraded)
	assert.Equal(t, degradedRateLimited, reply.Reply)

	recent, err := h.repos.AIInteractions.Recent(h.dbc, u.ID, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.True(t, recent[0].Degraded)
	assert.Equal(t, degradedRateLimited, recent[0].AIResponse)
	// The session still counts.
	assert.Equal(t, 5, reply.XPEarned)
}

func TestDegradedText(t *testing.T) {
	assert.Equal(t, degradedTimeout, degradedText(context.DeadlineExceeded))
	assert.Equal(t, degradedRateLimited, degradedText(&llm.HTTPError{StatusCode: 429}))
	assert.Equal(t, degradedUnavailable, degradedText(errors.New("boom")))
	assert.Equal(t, degradedUnavailable, degradedText(errNoBackend))
}

func TestChatWithoutReadPermissionsSendsNoContext(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("private")
	_, err := h.users.PatchSettings(h.dbc, u.ID, []byte(`{"ai_permissions":{"read_tasks":false,"read_habits":false,"read_journal":false}}`))
	require.NoError(t, err)

	_, err = h.mentor.Chat(h.dbc, u.ID, "hi")
	require.NoError(t, err)
	require.Equal(t, 1, h.primary.Calls())
	assert.Len(t, h.primary.calls[0], 2)
}

func TestBuildContextHonoursPermissionsAndTruncates(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("context")
	_, err := h.users.PatchSettings(h.dbc, u.ID, []byte(`{"ai_permissions":{"read_tasks":false}}`))
	require.NoError(t, err)
	testutil.SeedTask(t, h.dbc.Ctx, h.tx, u.ID, "Secret task", "low")
	testutil.SeedHabit(t, h.dbc.Ctx, h.tx, u.ID, "Meditate", 127)

	out, err := h.mentor.BuildContext(h.dbc, h.reload(u.ID))
	require.NoError(t, err)
	assert.NotContains(t, out, "Secret task")
	assert.Contains(t, out, "Meditate: streak 0d")
	assert.Contains(t, out, "No journal entries")
	assert.Contains(t, out, "No previous messages in this session.")

	long := strings.Repeat("x", 5000)
	for i := 0; i < 3; i++ {
		_, err := h.mentor.Chat(h.dbc, u.ID, long)
		require.NoError(t, err)
	}
	require.NoError(t, h.repos.Users.UpdateFields(h.dbc, u.ID, map[string]any{"display_name": long}))
	out, err = h.mentor.BuildContext(h.dbc, h.reload(u.ID))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "\n[...context truncated...]"))
	assert.LessOrEqual(t, len([]rune(out)), maxContextChars+len("\n[...context truncated...]"))
}

func TestTodayPlanRanksTasksLocally(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("planner")

	testutil.SeedTask(t, h.dbc.Ctx, h.tx, u.ID, "Tidy notes", "low")
	overdue := testutil.SeedTask(t, h.dbc.Ctx, h.tx, u.ID, "Fix CI", "medium")
	urgent := testutil.SeedTask(t, h.dbc.Ctx, h.tx, u.ID, "Hotfix", "critical")
	later := testutil.SeedTask(t, h.dbc.Ctx, h.tx, u.ID, "Design doc", "high")
	require.NoError(t, h.repos.Tasks.UpdateFields(h.dbc, overdue.ID, map[string]any{"deadline": "2026-03-01"}))
	require.NoError(t, h.repos.Tasks.UpdateFields(h.dbc, urgent.ID, map[string]any{"deadline": "2026-03-10"}))
	require.NoError(t, h.repos.Tasks.UpdateFields(h.dbc, later.ID, map[string]any{"deadline": "2026-03-20"}))
	testutil.SeedHabit(t, h.dbc.Ctx, h.tx, u.ID, "Read", 127)
	_, err := h.tasks.CreateQuickTask(h.dbc, u.ID, "Answered email", "easy")
	require.NoError(t, err)

	reply, err := h.mentor.Chat(h.dbc, u.ID, "What to do today?")
	require.NoError(t, err)
	assert.Equal(t, MentorModeTodayPlan, reply.Mode)
	assert.Zero(t, h.primary.Calls())

	text := reply.Reply
	assert.Contains(t, text, "🤖 Iron Mentor, plan for today (12:00)")
	assert.Contains(t, text, "1. Hotfix (today) ~90m")
	assert.Contains(t, text, "2. Fix CI (overdue) ~40m")
	assert.Contains(t, text, "3. Design doc (until 2026-03-20) ~60m")
	assert.Contains(t, text, "4. Tidy notes ~25m")
	assert.Contains(t, text, "• ✅ Read (🔥0)")
	assert.Contains(t, text, "• ✅ Answered email")
	assert.Equal(t, 5, reply.XPEarned)
}

func TestPlanScore(t *testing.T) {
	today := "2026-03-10"
	past, same := "2026-03-09", "2026-03-10"
	assert.Equal(t, 4, PlanScore(&types.Task{Priority: "critical"}, today))
	assert.Equal(t, 4, PlanScore(&types.Task{Priority: "medium", Deadline: &past}, today))
	assert.Equal(t, 2, PlanScore(&types.Task{Priority: "low", Deadline: &same}, today))
	assert.Equal(t, 2, PlanScore(&types.Task{Priority: "weird"}, today))
}

func TestAddTaskCommand(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("commander")

	reply, err := h.mentor.Chat(h.dbc, u.ID, "Add task: deploy staging 19:30")
	require.NoError(t, err)
	assert.Equal(t, MentorModeCommand, reply.Mode)
	require.NotNil(t, reply.TaskID)
	assert.Equal(t, "✅ Task created: deploy staging (reminder at 19:30)", reply.Reply)
	assert.Equal(t, 5, reply.XPEarned)
	assert.Zero(t, h.primary.Calls())

	task, err := h.repos.Tasks.GetByID(h.dbc, *reply.TaskID)
	require.NoError(t, err)
	assert.True(t, task.RemindEnabled)
	assert.Equal(t, "19:30", task.RemindTime)
	assert.Equal(t, "🔔 Time to do: deploy staging", task.RemindText)

	usage, err := h.mentor.Chat(h.dbc, u.ID, "add task")
	require.NoError(t, err)
	assert.Contains(t, usage.Reply, "add task <title> [HH:MM]")
	assert.Nil(t, usage.TaskID)
}

func TestAddTaskCommandNeedsPermission(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("nocreate")
	_, err := h.users.PatchSettings(h.dbc, u.ID, []byte(`{"ai_permissions":{"create_tasks":false}}`))
	require.NoError(t, err)

	reply, err := h.mentor.Chat(h.dbc, u.ID, "add task something")
	require.NoError(t, err)
	assert.Equal(t, MentorModeChat, reply.Mode)
	assert.Equal(t, 1, h.primary.Calls())
}

func TestSplitRemindTime(t *testing.T) {
	title, at := splitRemindTime("call mom 09:15 please")
	assert.Equal(t, "call mom please", title)
	assert.Equal(t, "09:15", at)

	title, at = splitRemindTime("no time here 25:99")
	assert.Equal(t, "no time here 25:99", title)
	assert.Empty(t, at)
}

func TestCompressMemory(t *testing.T) {
	h := newHarness(t)
	u := h.seedUser("memory")

	done, err := h.mentor.CompressMemory(h.dbc, u.ID)
	require.NoError(t, err)
	assert.False(t, done)

	_, err = h.mentor.Chat(h.dbc, u.ID, "I finished the course")
	require.NoError(t, err)
	h.primary.reply = "- finished a course"

	done, err = h.mentor.CompressMemory(h.dbc, u.ID)
	require.NoError(t, err)
	assert.True(t, done)

	summary, err := h.repos.MemorySummaries.LatestActive(h.dbc, u.ID, "weekly_summary")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "- finished a course", summary.Content)
	assert.Equal(t, "2026-03-03", summary.PeriodStart)
	assert.Equal(t, "2026-03-10", summary.PeriodEnd)

	ctxText, err := h.mentor.BuildContext(h.dbc, h.reload(u.ID))
	require.NoError(t, err)
	assert.Contains(t, ctxText, "Last Week Summary: - finished a course")
}
