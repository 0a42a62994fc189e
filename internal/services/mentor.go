package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/clients/llm"
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

const (
	MentorModeChat      = "chat"
	MentorModeTodayPlan = "today_plan"
	MentorModeCommand   = "command"

	summaryWeekly  = "weekly_summary"
	summaryProfile = "profile_summary"

	maxStoredMessage  = 2000
	maxContextChars   = 3600
	chatMaxTokens     = 650
	reviewMaxTokens   = 320
	summaryMaxTokens  = 300
	defaultLLMTimeout = 35 * time.Second
)

var personaPrompts = map[string]string{
	user.PersonaStrict: "You are a strict, no-nonsense programming mentor. " +
		"You speak directly, challenge excuses, and push for results. " +
		"You don't sugarcoat. If the user is slacking, you call it out. " +
		"You focus on discipline, consistency, and measurable progress. " +
		"Be concise, max 3-4 paragraphs. " +
		"Use specific actionable advice, not vague encouragement.",
	user.PersonaSoft: "You are a supportive and empathetic programming mentor. " +
		"You encourage, celebrate small wins, and understand that learning is hard. " +
		"You're patient and kind, but still guide toward growth. " +
		"You help break down overwhelming tasks into manageable steps. " +
		"Be warm but practical. Max 3-4 paragraphs.",
	user.PersonaAdaptive: "You are an adaptive programming mentor. " +
		"Analyze the user's current state from their metrics: " +
		"- If discipline_score < 40: be more supportive and encouraging. " +
		"- If discipline_score > 70: challenge them with harder goals. " +
		"- If streak is broken: be understanding but firm. " +
		"- If streak is high: celebrate and raise the bar. " +
		"Adjust your tone based on context. Max 3-4 paragraphs. Be specific and actionable.",
	user.PersonaGoggins: "You are a relentless discipline mentor inspired by David Goggins style. " +
		"No excuses, direct action, accountability, and mental toughness. " +
		"Push the user toward measurable execution. Keep it concise and practical. " +
		"Use short punchy sentences and clear next actions.",
}

const (
	degradedTimeout     = "⏳ The mentor is taking too long to think. Try again later."
	degradedRateLimited = "⚠️ Too many requests to the AI. Wait a minute."
	degradedUnavailable = "⚠️ The AI mentor is temporarily unavailable."
)

var errNoBackend = errors.New("no llm backend configured")

type MentorReply struct {
	Reply          string     `json:"reply"`
	Mode           string     `json:"mode"`
	Degraded       bool       `json:"degraded,omitempty"`
	ResponseTimeMS int64      `json:"response_time_ms"`
	XPEarned       int        `json:"xp_earned,omitempty"`
	TaskID         *uuid.UUID `json:"task_id,omitempty"`
}

// ReviewMetrics feeds the weekly review prompt.
type ReviewMetrics struct {
	TasksCreated   int64
	TasksCompleted int64
	TasksOverdue   int64
	HabitRate      float64
	BestStreak     int
	JournalCount   int64
	XPEarned       int64
	XPLost         int64
	Discipline     float64
	Growth         float64
}

type MentorBackends struct {
	Primary  llm.Client
	Fallback llm.Client
	Timeout  time.Duration
}

type MentorService interface {
	Chat(dbc dbctx.Context, userID uuid.UUID, message string) (*MentorReply, error)
	TodayPlan(dbc dbctx.Context, userID uuid.UUID) (string, error)
	BuildContext(dbc dbctx.Context, u *types.User) (string, error)
	Summarize(ctx context.Context, text string) (string, error)
	WeeklyReview(ctx context.Context, m ReviewMetrics) (string, error)
	// CompressMemory folds the last week of interactions into a weekly summary.
	CompressMemory(dbc dbctx.Context, userID uuid.UUID) (bool, error)
}

type mentorService struct {
	db       *gorm.DB
	log      *logger.Logger
	clock    clock.Clock
	tx       db.TxRunner
	repos    repos.Set
	tasks    TaskService
	ledger   LedgerService
	backends []llm.Client
	timeout  time.Duration
}

func NewMentorService(
	gdb *gorm.DB,
	log *logger.Logger,
	clk clock.Clock,
	rs repos.Set,
	tasks TaskService,
	ledger LedgerService,
	b MentorBackends,
) MentorService {
	var backends []llm.Client
	for _, c := range []llm.Client{b.Primary, b.Fallback} {
		if c != nil {
			backends = append(backends, c)
		}
	}
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	return &mentorService{
		db:       gdb,
		log:      log.With("service", "MentorService"),
		clock:    clk,
		tx:       db.NewTxRunner(gdb),
		repos:    rs,
		tasks:    tasks,
		ledger:   ledger,
		backends: backends,
		timeout:  timeout,
	}
}

func (ms *mentorService) Chat(dbc dbctx.Context, userID uuid.UUID, message string) (*MentorReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, pkgerrors.Invalidf("mentor message")
	}
	u, err := requireUser(dbc, ms.repos.Users, userID)
	if err != nil {
		return nil, err
	}
	settings := u.ParsedSettings()

	if title, ok := parseAddTaskCommand(message); ok && settings.AIPermissions.CreateTasks {
		return ms.addTaskCommand(dbc, u, message, title)
	}

	start := time.Now()
	reply := &MentorReply{Mode: MentorModeChat}
	if looksLikeTodayPlan(message) {
		reply.Mode = MentorModeTodayPlan
		if reply.Reply, err = ms.todayPlan(dbc, u); err != nil {
			return nil, err
		}
	} else {
		var mentorCtx string
		perms := settings.AIPermissions
		if perms.ReadTasks || perms.ReadHabits || perms.ReadJournal {
			if mentorCtx, err = ms.BuildContext(dbc, u); err != nil {
				return nil, err
			}
		}
		text, callErr := ms.complete(dbc.Ctx, chatMessages(systemPrompt(settings), mentorCtx, message), llm.WithMaxTokens(chatMaxTokens))
		if callErr != nil {
			ms.log.Warn("mentor degraded", "user_id", userID, "error", callErr)
			text = degradedText(callErr)
			reply.Degraded = true
		}
		reply.Reply = text
	}
	reply.ResponseTimeMS = time.Since(start).Milliseconds()

	err = ms.tx.InTx(dbc, func(dbc dbctx.Context) error {
		rec, err := ms.repos.AIInteractions.Create(dbc, &types.AIInteraction{
			UserID:         userID,
			UserMessage:    truncateRunes(message, maxStoredMessage),
			AIResponse:     truncateRunes(reply.Reply, maxStoredMessage),
			AIMode:         settings.MentorPersona,
			ResponseTimeMS: reply.ResponseTimeMS,
			Degraded:       reply.Degraded,
			CreatedAt:      ms.clock.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("record interaction: %w", err)
		}
		sourceID := rec.ID
		award, err := ms.ledger.Award(dbc, AwardInput{
			UserID:     userID,
			EventType:  gamification.EventAISession,
			SourceType: "ai_interaction",
			SourceID:   &sourceID,
		})
		if err != nil {
			return err
		}
		reply.XPEarned = award.Amount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

func (ms *mentorService) addTaskCommand(dbc dbctx.Context, u *types.User, message, rest string) (*MentorReply, error) {
	start := time.Now()
	reply := &MentorReply{Mode: MentorModeCommand}
	title, remindAt := splitRemindTime(rest)
	if title == "" {
		reply.Reply = "Write it like this: `add task <title> [HH:MM]`"
		return reply, nil
	}

	in := CreateTaskInput{Title: title, Priority: "medium"}
	if remindAt != "" {
		on := true
		in.Reminder = &ReminderInput{Enabled: &on, Time: remindAt, Text: "🔔 Time to do: " + title}
	}

	err := ms.tx.InTx(dbc, func(dbc dbctx.Context) error {
		created, err := ms.tasks.CreateTask(dbc, u.ID, in)
		if err != nil {
			return err
		}
		id := created.Task.ID
		reply.TaskID = &id
		reply.XPEarned = created.XPEarned
		reply.Reply = "✅ Task created: " + created.Task.Title
		if remindAt != "" {
			reply.Reply += " (reminder at " + remindAt + ")"
		}
		reply.ResponseTimeMS = time.Since(start).Milliseconds()
		if _, err := ms.repos.AIInteractions.Create(dbc, &types.AIInteraction{
			UserID:         u.ID,
			UserMessage:    truncateRunes(message, maxStoredMessage),
			AIResponse:     reply.Reply,
			AIMode:         MentorModeCommand,
			ResponseTimeMS: reply.ResponseTimeMS,
			CreatedAt:      ms.clock.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("record interaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

func systemPrompt(s user.Settings) string {
	base, ok := personaPrompts[s.MentorPersona]
	if !ok {
		base = personaPrompts[user.PersonaAdaptive]
	}
	return fmt.Sprintf("%s\n\nYour mentor name is: %s.\nDiscipline intensity preference: %d/100.\n"+
		"Address the user as a teammate and focus on execution.",
		base, s.MentorName, s.MentorDisciplineBias)
}

func chatMessages(system, mentorCtx, message string) []llm.Message {
	msgs := []llm.Message{{Role: llm.RoleSystem, Content: system}}
	if mentorCtx != "" {
		msgs = append(msgs,
			llm.Message{Role: llm.RoleUser, Content: "Context:\n" + mentorCtx},
			llm.Message{Role: llm.RoleAssistant, Content: "Understood. I have the context."},
		)
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: message})
}

// BuildContext renders profile, week and recent conversation blocks. Task,
// habit and journal lines appear only when the matching permission is on.
func (ms *mentorService) BuildContext(dbc dbctx.Context, u *types.User) (string, error) {
	perms := u.ParsedSettings().AIPermissions

	profile, err := ms.profileBlock(dbc, u)
	if err != nil {
		return "", err
	}
	week, err := ms.weekBlock(dbc, u, perms)
	if err != nil {
		return "", err
	}
	session, err := ms.sessionBlock(dbc, u.ID)
	if err != nil {
		return "", err
	}

	out := "=== USER PROFILE ===\n" + profile +
		"\n\n=== CURRENT WEEK ===\n" + week +
		"\n\n=== RECENT CONVERSATION ===\n" + session
	if len([]rune(out)) > maxContextChars {
		out = string([]rune(out)[:maxContextChars]) + "\n[...context truncated...]"
	}
	return out, nil
}

func (ms *mentorService) profileBlock(dbc dbctx.Context, u *types.User) (string, error) {
	summary, err := ms.repos.MemorySummaries.LatestActive(dbc, u.ID, summaryProfile)
	if err != nil {
		return "", fmt.Errorf("profile summary: %w", err)
	}
	if summary != nil {
		return summary.Content, nil
	}
	return fmt.Sprintf("Name: %s\nLevel: %d (XP: %d)\nTech Stack: %s\nGoals: %s\n"+
		"Discipline Score: %.0f/100\nGrowth Score: %.0f/100\nMentor Persona: %s",
		orNotSet(u.Name()),
		u.Level, u.XP,
		orNotSet(strings.Join(u.TechStackList(), ", ")),
		orNotSet(strings.Join(u.GoalList(), ", ")),
		u.DisciplineScore, u.GrowthScore,
		u.ParsedSettings().MentorPersona,
	), nil
}

func (ms *mentorService) weekBlock(dbc dbctx.Context, u *types.User, perms user.AIPermissions) (string, error) {
	var b strings.Builder

	if perms.ReadTasks {
		tasks, err := ms.repos.Tasks.ListByUser(dbc, u.ID, []string{types.TaskStatusTodo, types.TaskStatusInProgress}, 5)
		if err != nil {
			return "", fmt.Errorf("context tasks: %w", err)
		}
		b.WriteString("Active Tasks:\n")
		if len(tasks) == 0 {
			b.WriteString("No active tasks")
		}
		for i, t := range tasks {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "- [%s] %s", t.Priority, t.Title)
			if t.Deadline != nil && *t.Deadline != "" {
				fmt.Fprintf(&b, " (due: %s)", *t.Deadline)
			}
		}
		b.WriteString("\n\n")
	}

	if perms.ReadHabits {
		habits, err := ms.repos.Habits.ListActive(dbc, u.ID)
		if err != nil {
			return "", fmt.Errorf("context habits: %w", err)
		}
		b.WriteString("Habits:\n")
		if len(habits) == 0 {
			b.WriteString("No habits tracked")
		}
		for i, h := range habits {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "- %s %s: streak %dd", h.Emoji, h.Name, h.CurrentStreak)
		}
		b.WriteString("\n\n")
	}

	if perms.ReadJournal {
		entries, err := ms.repos.Journal.List(dbc, u.ID, repos.JournalEntryFilter{Limit: 3})
		if err != nil {
			return "", fmt.Errorf("context journal: %w", err)
		}
		b.WriteString("Recent Journal:\n")
		if len(entries) == 0 {
			b.WriteString("No journal entries")
		}
		for i, e := range entries {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "- %s", truncateRunes(e.Title, 100))
		}
		b.WriteString("\n\n")
	}

	weekly, err := ms.repos.MemorySummaries.LatestActive(dbc, u.ID, summaryWeekly)
	if err != nil {
		return "", fmt.Errorf("weekly summary: %w", err)
	}
	b.WriteString("Last Week Summary: ")
	if weekly != nil {
		b.WriteString(weekly.Content)
	} else {
		b.WriteString("No weekly summary yet")
	}
	return b.String(), nil
}

func (ms *mentorService) sessionBlock(dbc dbctx.Context, userID uuid.UUID) (string, error) {
	recent, err := ms.repos.AIInteractions.Recent(dbc, userID, 3)
	if err != nil {
		return "", fmt.Errorf("recent interactions: %w", err)
	}
	if len(recent) == 0 {
		return "No previous messages in this session.", nil
	}
	lines := make([]string, 0, len(recent)*2)
	for i := len(recent) - 1; i >= 0; i-- {
		lines = append(lines,
			"User: "+truncateRunes(recent[i].UserMessage, 150),
			"AI: "+truncateRunes(recent[i].AIResponse, 150),
		)
	}
	return strings.Join(lines, "\n"), nil
}

func (ms *mentorService) Summarize(ctx context.Context, text string) (string, error) {
	return ms.complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: "You are a concise summarizer. Use bullet points."},
		{Role: llm.RoleUser, Content: "Summarize this in 3-5 bullet points:\n" + text},
	}, llm.WithMaxTokens(summaryMaxTokens))
}

func (ms *mentorService) WeeklyReview(ctx context.Context, m ReviewMetrics) (string, error) {
	prompt := fmt.Sprintf("Generate a weekly review for a developer based on these metrics:\n"+
		"- Tasks completed: %d/%d\n"+
		"- Tasks overdue: %d\n"+
		"- Habit completion rate: %.0f%%\n"+
		"- Best streak: %d days\n"+
		"- Journal entries: %d\n"+
		"- XP earned: %d, XP lost: %d\n"+
		"- Discipline score: %.0f/100\n"+
		"- Growth score: %.0f/100\n\n"+
		"Write 3-5 sentences: what went well, what needs improvement, "+
		"and one specific actionable recommendation for next week.",
		m.TasksCompleted, m.TasksCreated, m.TasksOverdue, m.HabitRate*100, m.BestStreak,
		m.JournalCount, m.XPEarned, m.XPLost, m.Discipline, m.Growth)
	return ms.complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: "You are a data-driven programming mentor analyzing weekly metrics."},
		{Role: llm.RoleUser, Content: prompt},
	}, llm.WithMaxTokens(reviewMaxTokens))
}

func (ms *mentorService) CompressMemory(dbc dbctx.Context, userID uuid.UUID) (bool, error) {
	now := ms.clock.Now().UTC()
	weekAgo := now.AddDate(0, 0, -7)
	interactions, err := ms.repos.AIInteractions.Since(dbc, userID, weekAgo)
	if err != nil {
		return false, fmt.Errorf("load interactions: %w", err)
	}
	if len(interactions) == 0 {
		return false, nil
	}
	if len(interactions) > 20 {
		interactions = interactions[len(interactions)-20:]
	}
	lines := make([]string, 0, len(interactions))
	for _, i := range interactions {
		lines = append(lines, "User: "+truncateRunes(i.UserMessage, 100)+"\nAI: "+truncateRunes(i.AIResponse, 100))
	}
	summary, err := ms.Summarize(dbc.Ctx, "Summarize these mentoring interactions in 3-5 bullet points:\n"+strings.Join(lines, "\n"))
	if err != nil {
		return false, fmt.Errorf("summarize interactions: %w", err)
	}

	err = ms.tx.InTx(dbc, func(dbc dbctx.Context) error {
		if _, err := ms.repos.MemorySummaries.Create(dbc, &types.AIMemorySummary{
			UserID:      userID,
			SummaryType: summaryWeekly,
			Content:     summary,
			PeriodStart: dateString(weekAgo),
			PeriodEnd:   dateString(now),
			IsActive:    true,
			CreatedAt:   now,
		}); err != nil {
			return fmt.Errorf("store summary: %w", err)
		}
		if _, err := ms.repos.MemorySummaries.DeactivateOld(dbc, userID, summaryWeekly, 4); err != nil {
			return fmt.Errorf("deactivate summaries: %w", err)
		}
		if _, err := ms.repos.AIInteractions.DeleteBefore(dbc, userID, now.AddDate(0, 0, -14)); err != nil {
			return fmt.Errorf("prune interactions: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// complete tries each backend in order, each under its own timeout.
func (ms *mentorService) complete(ctx context.Context, msgs []llm.Message, opts ...llm.Option) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	lastErr := errNoBackend
	for _, b := range ms.backends {
		cctx, cancel := context.WithTimeout(ctx, ms.timeout)
		out, err := b.Chat(cctx, msgs, opts...)
		cancel()
		if err == nil && strings.TrimSpace(out) == "" {
			err = llm.ErrEmptyResponse
		}
		if err == nil {
			return out, nil
		}
		ms.log.Warn("mentor backend failed", "backend", b.Name(), "error", err)
		lastErr = err
	}
	return "", lastErr
}

func degradedText(err error) string {
	if llm.IsRateLimited(err) {
		return degradedRateLimited
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return degradedTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return degradedTimeout
	}
	return degradedUnavailable
}

func orNotSet(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not set"
	}
	return s
}
