package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/domain/planner"
	"github.com/yungbote/mentor-backend/internal/gamification"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
)

var todayPlanTriggers = []string{
	"plan for today",
	"what to do today",
	"where to start",
	"plan my day",
	"today",
}

var (
	addTaskRe  = regexp.MustCompile(`(?i)^add task\b`)
	remindAtRe = regexp.MustCompile(`\b([01]\d|2[0-3]):([0-5]\d)\b`)
)

var priorityWeight = map[string]int{
	planner.PriorityCritical: 4,
	planner.PriorityHigh:     3,
	planner.PriorityMedium:   2,
	planner.PriorityLow:      1,
}

var estimateMinutes = map[string]int{
	planner.PriorityCritical: 90,
	planner.PriorityHigh:     60,
	planner.PriorityMedium:   40,
	planner.PriorityLow:      25,
}

const (
	planMaxTasks    = 8
	planMaxHabits   = 8
	planMaxDone     = 6
	defaultEstimate = 35
)

func looksLikeTodayPlan(message string) bool {
	text := strings.ToLower(message)
	for _, k := range todayPlanTriggers {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// parseAddTaskCommand returns the text after "add task" when message is that command.
func parseAddTaskCommand(message string) (string, bool) {
	loc := addTaskRe.FindStringIndex(message)
	if loc == nil {
		return "", false
	}
	return strings.Trim(message[loc[1]:], " :.-"), true
}

// splitRemindTime pulls the first HH:MM out of text.
func splitRemindTime(text string) (string, string) {
	at := remindAtRe.FindString(text)
	title := strings.Join(strings.Fields(remindAtRe.ReplaceAllString(text, "")), " ")
	return title, at
}

// PlanScore ranks a task for the day: priority weight, +2 overdue, +1 due today.
func PlanScore(t *types.Task, today string) int {
	w, ok := priorityWeight[t.Priority]
	if !ok {
		w = 2
	}
	if t.Deadline != nil && *t.Deadline != "" {
		switch {
		case *t.Deadline < today:
			w += 2
		case *t.Deadline == today:
			w++
		}
	}
	return w
}

func (ms *mentorService) TodayPlan(dbc dbctx.Context, userID uuid.UUID) (string, error) {
	u, err := requireUser(dbc, ms.repos.Users, userID)
	if err != nil {
		return "", err
	}
	return ms.todayPlan(dbc, u)
}

func (ms *mentorService) todayPlan(dbc dbctx.Context, u *types.User) (string, error) {
	now := ms.clock.Now()
	loc := clock.Location(u.Timezone)
	todayStr := clock.LocalDate(now, u.Timezone)
	today, _ := clock.ParseDate(todayStr)

	tasks, err := ms.repos.Tasks.ListByUser(dbc, u.ID, nil, 100)
	if err != nil {
		return "", fmt.Errorf("plan tasks: %w", err)
	}
	habits, err := ms.repos.Habits.ListActive(dbc, u.ID)
	if err != nil {
		return "", fmt.Errorf("plan habits: %w", err)
	}

	var active, doneToday []*types.Task
	for _, t := range tasks {
		switch {
		case t.IsActive():
			active = append(active, t)
		case t.Status == types.TaskStatusDone && t.CompletedAt != nil &&
			clock.LocalDate(*t.CompletedAt, u.Timezone) == todayStr:
			doneToday = append(doneToday, t)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return PlanScore(active[i], todayStr) > PlanScore(active[j], todayStr)
	})
	if len(active) > planMaxTasks {
		active = active[:planMaxTasks]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🤖 %s, plan for today (%s)\n\n", u.ParsedSettings().MentorName, now.In(loc).Format("15:04"))

	b.WriteString("📌 *Order of work:*\n")
	if len(active) == 0 {
		b.WriteString("1. No open tasks. Start with your most important learning goal.\n")
	}
	for i, t := range active {
		est, ok := estimateMinutes[t.Priority]
		if !ok {
			est = defaultEstimate
		}
		fmt.Fprintf(&b, "%d. %s%s ~%dm\n", i+1, t.Title, deadlineLabel(t.Deadline, todayStr), est)
	}

	b.WriteString("\n🔄 *Habits for today:*\n")
	due := 0
	for _, h := range habits {
		if !gamification.Scheduled(h.ScheduleMask, today) || due == planMaxHabits {
			continue
		}
		due++
		fmt.Fprintf(&b, "• %s %s (🔥%d)\n", h.Emoji, h.Name, h.CurrentStreak)
	}
	if due == 0 {
		b.WriteString("• No habits scheduled for today.\n")
	}

	b.WriteString("\n✅ *Already done today:*\n")
	if len(doneToday) == 0 {
		b.WriteString("• Nothing checked off yet.\n")
	}
	for i, t := range doneToday {
		if i == planMaxDone {
			break
		}
		fmt.Fprintf(&b, "• ✅ %s\n", t.Title)
	}

	b.WriteString("\nTip: start with task 1, take a 5 minute break, then task 2. " +
		"If you get stuck, break the task into a 15 minute step.\n\n" +
		"How is it going? I can put together a micro-plan for the next 2 hours.")
	return b.String(), nil
}

func deadlineLabel(deadline *string, today string) string {
	if deadline == nil || *deadline == "" {
		return ""
	}
	switch {
	case *deadline < today:
		return " (overdue)"
	case *deadline == today:
		return " (today)"
	default:
		return " (until " + *deadline + ")"
	}
}
