package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/data/db"
	"github.com/yungbote/mentor-backend/internal/data/repos"
	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/gamification"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

type WeeklyReportView struct {
	Report   *types.WeeklyReport `json:"report"`
	Habits   []HabitWeek         `json:"habits"`
	Text     string              `json:"text"`
	XPEarned int                 `json:"xp_earned,omitempty"`
}

type ReportService interface {
	GenerateWeeklyReport(dbc dbctx.Context, userID uuid.UUID) (*WeeklyReportView, error)
	// ReadWeeklyReport generates a fresh report for the user and pays the reading bonus.
	ReadWeeklyReport(dbc dbctx.Context, userID uuid.UUID) (*WeeklyReportView, error)
}

type reportService struct {
	db     *gorm.DB
	log    *logger.Logger
	clock  clock.Clock
	tx     db.TxRunner
	repos  repos.Set
	habits HabitService
	scores ScoreService
	mentor MentorService
	ledger LedgerService
}

func NewReportService(
	gdb *gorm.DB,
	log *logger.Logger,
	clk clock.Clock,
	rs repos.Set,
	habits HabitService,
	scores ScoreService,
	mentor MentorService,
	ledger LedgerService,
) ReportService {
	return &reportService{
		db:     gdb,
		log:    log.With("service", "ReportService"),
		clock:  clk,
		tx:     db.NewTxRunner(gdb),
		repos:  rs,
		habits: habits,
		scores: scores,
		mentor: mentor,
		ledger: ledger,
	}
}

func (rs *reportService) GenerateWeeklyReport(dbc dbctx.Context, userID uuid.UUID) (*WeeklyReportView, error) {
	u, err := requireUser(dbc, rs.repos.Users, userID)
	if err != nil {
		return nil, err
	}
	today := localToday(rs.clock, u.Timezone)
	start := today.AddDate(0, 0, -6)
	since := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, clock.Location(u.Timezone)).UTC()

	rep := &types.WeeklyReport{
		UserID:    userID,
		WeekStart: dateString(start),
		WeekEnd:   dateString(today),
	}
	if rep.TasksCreated, err = rs.repos.Tasks.CountCreatedSince(dbc, userID, since); err != nil {
		return nil, fmt.Errorf("tasks created: %w", err)
	}
	if rep.TasksCompleted, err = rs.repos.Tasks.CountCompletedSince(dbc, userID, since); err != nil {
		return nil, fmt.Errorf("tasks completed: %w", err)
	}
	if rep.TasksOverdue, err = rs.repos.Tasks.CountOverdue(dbc, userID, dateString(today)); err != nil {
		return nil, fmt.Errorf("tasks overdue: %w", err)
	}
	perf, err := rs.habits.WeeklyPerformance(dbc, userID)
	if err != nil {
		return nil, err
	}
	rep.HabitsTotalPossible = perf.TotalPossible
	rep.HabitsCompleted = perf.TotalCompleted
	rep.HabitCompletionRate = perf.OverallRate
	rep.BestStreak = perf.BestStreak
	if rep.JournalEntries, err = rs.repos.Journal.CountSince(dbc, userID, since); err != nil {
		return nil, fmt.Errorf("journal entries: %w", err)
	}
	totals, err := rs.repos.XPEvents.TotalsSince(dbc, userID, since)
	if err != nil {
		return nil, fmt.Errorf("xp totals: %w", err)
	}
	rep.XPEarned, rep.XPLost = totals.Earned, totals.Lost

	scores, err := rs.scores.Recalculate(dbc, userID)
	if err != nil {
		return nil, err
	}
	rep.DisciplineScore, rep.GrowthScore = scores.Discipline, scores.Growth

	metrics := ReviewMetrics{
		TasksCreated:   rep.TasksCreated,
		TasksCompleted: rep.TasksCompleted,
		TasksOverdue:   rep.TasksOverdue,
		HabitRate:      rep.HabitCompletionRate,
		BestStreak:     rep.BestStreak,
		JournalCount:   rep.JournalEntries,
		XPEarned:       rep.XPEarned,
		XPLost:         rep.XPLost,
		Discipline:     rep.DisciplineScore,
		Growth:         rep.GrowthScore,
	}
	review, err := rs.mentor.WeeklyReview(dbc.Ctx, metrics)
	if err != nil {
		rs.log.Warn("weekly review degraded", "user_id", userID, "error", err)
		review = fallbackReview(metrics)
	}
	rep.AIReview = review

	if _, err := rs.repos.WeeklyReports.Create(dbc, rep); err != nil {
		return nil, fmt.Errorf("store weekly report: %w", err)
	}
	view := &WeeklyReportView{Report: rep, Habits: perf.Habits}
	view.Text = FormatWeeklyReport(view)
	return view, nil
}

func (rs *reportService) ReadWeeklyReport(dbc dbctx.Context, userID uuid.UUID) (*WeeklyReportView, error) {
	var view *WeeklyReportView
	err := rs.tx.InTx(dbc, func(dbc dbctx.Context) error {
		v, err := rs.GenerateWeeklyReport(dbc, userID)
		if err != nil {
			return err
		}
		sourceID := v.Report.ID
		award, err := rs.ledger.Award(dbc, AwardInput{
			UserID:     userID,
			EventType:  gamification.EventWeeklyReviewRead,
			SourceType: "weekly_report",
			SourceID:   &sourceID,
		})
		if err != nil {
			return err
		}
		v.XPEarned = award.Amount
		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// fallbackReview is used when no LLM backend answers.
func fallbackReview(m ReviewMetrics) string {
	var parts []string
	if m.TasksCompleted > 0 {
		parts = append(parts, fmt.Sprintf("You closed %d tasks this week.", m.TasksCompleted))
	} else {
		parts = append(parts, "No tasks were closed this week.")
	}
	if m.HabitRate >= 0.7 {
		parts = append(parts, "Habits held steady.")
	} else {
		parts = append(parts, "Habits slipped, so pick one and protect it every day.")
	}
	if m.TasksOverdue > 0 {
		parts = append(parts, fmt.Sprintf("Clear the %d overdue tasks first next week.", m.TasksOverdue))
	} else {
		parts = append(parts, "Next week, schedule your hardest task for the morning.")
	}
	return strings.Join(parts, " ")
}

func scoreDot(v float64) string {
	switch {
	case v >= 70:
		return "🟢"
	case v >= 40:
		return "🟡"
	default:
		return "🔴"
	}
}

func FormatWeeklyReport(v *WeeklyReportView) string {
	r := v.Report
	rule := strings.Repeat("═", 30)

	var habits strings.Builder
	if len(v.Habits) == 0 {
		habits.WriteString("  No habits")
	}
	for i, h := range v.Habits {
		if i > 0 {
			habits.WriteString("\n")
		}
		filled := min(10, max(0, int(h.Rate*10)))
		bar := strings.Repeat("▓", filled) + strings.Repeat("░", 10-filled)
		fmt.Fprintf(&habits, "  %s %s: [%s] %.0f%% (🔥%dd)", h.Emoji, h.Name, bar, h.Rate*100, h.Streak)
	}

	overdueMark := "✅"
	if r.TasksOverdue > 0 {
		overdueMark = "⚠️"
	}

	return fmt.Sprintf("📊 *WEEKLY REVIEW*\n%s\n\n"+
		"📋 *Tasks*\n  Created: %d\n  Completed: %d\n  Overdue: %d %s\n\n"+
		"🔄 *Habits* (%.0f%% overall)\n%s\n\n"+
		"📝 *Journal*: %d entries\n\n"+
		"⭐ *XP*: +%d / -%d\n\n"+
		"%s *Discipline*: %.0f/100\n%s *Growth*: %.0f/100\n\n"+
		"%s\n🤖 *AI Review:*\n%s",
		rule,
		r.TasksCreated, r.TasksCompleted, r.TasksOverdue, overdueMark,
		r.HabitCompletionRate*100, habits.String(),
		r.JournalEntries,
		r.XPEarned, r.XPLost,
		scoreDot(r.DisciplineScore), r.DisciplineScore, scoreDot(r.GrowthScore), r.GrowthScore,
		rule, r.AIReview,
	)
}
