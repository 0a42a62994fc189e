package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/data/db"
	"github.com/yungbote/mentor-backend/internal/data/repos"
	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/domain/planner"
	"github.com/yungbote/mentor-backend/internal/domain/user"
	"github.com/yungbote/mentor-backend/internal/gamification"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/mentor-backend/internal/pkg/errors"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

type RecurrenceInput struct {
	Enabled   bool    `json:"enabled"`
	Type      string  `json:"type"`
	FixedDate *string `json:"fixed_date"`
}

type ReminderInput struct {
	Enabled *bool  `json:"enabled"`
	Time    string `json:"time"`
	Text    string `json:"text"`
}

type CreateTaskInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Priority    string           `json:"priority"`
	Difficulty  string           `json:"difficulty"`
	Tags        []string         `json:"tags"`
	Project     string           `json:"project"`
	Deadline    *string          `json:"deadline"`
	Recurrence  *RecurrenceInput `json:"recurrence"`
	Reminder    *ReminderInput   `json:"reminder"`
}

type TaskCreated struct {
	Task     *types.Task `json:"task"`
	XPEarned int         `json:"xp_earned"`
}

type TaskCompletion struct {
	Failure
	TaskID       uuid.UUID             `json:"task_id,omitempty"`
	Title        string                `json:"title,omitempty"`
	XPEarned     int                   `json:"xp_earned,omitempty"`
	LeveledUp    bool                  `json:"leveled_up,omitempty"`
	NewLevel     int                   `json:"new_level,omitempty"`
	NextTaskID   *uuid.UUID            `json:"next_task_id,omitempty"`
	NextDeadline string                `json:"next_deadline,omitempty"`
	Achievements []UnlockedAchievement `json:"achievements,omitempty"`
}

type QuickTaskResult struct {
	Failure
	Task         *types.Task           `json:"task,omitempty"`
	XPEarned     int                   `json:"xp_earned,omitempty"`
	LeveledUp    bool                  `json:"leveled_up,omitempty"`
	Achievements []UnlockedAchievement `json:"achievements,omitempty"`
}

type DeleteResult struct {
	Failure
	Deleted bool   `json:"deleted,omitempty"`
	Title   string `json:"title,omitempty"`
}

type TaskService interface {
	CreateTask(dbc dbctx.Context, userID uuid.UUID, in CreateTaskInput) (*TaskCreated, error)
	// CreateQuickTask records an already finished task, rewarded by difficulty.
	CreateQuickTask(dbc dbctx.Context, userID uuid.UUID, title, difficulty string) (*QuickTaskResult, error)
	CompleteTask(dbc dbctx.Context, userID, taskID uuid.UUID) (*TaskCompletion, error)
	ListTasks(dbc dbctx.Context, userID uuid.UUID, status, tag string) ([]*types.Task, error)
	ListActive(dbc dbctx.Context, userID uuid.UUID) ([]*types.Task, error)
	DeleteTask(dbc dbctx.Context, userID, taskID uuid.UUID) (*DeleteResult, error)
	CountOverdue(dbc dbctx.Context, userID uuid.UUID) (int64, error)
}

type taskService struct {
	db           *gorm.DB
	log          *logger.Logger
	clock        clock.Clock
	tx           db.TxRunner
	users        repos.UserRepo
	tasks        repos.TaskRepo
	taskLogs     repos.TaskLogRepo
	ledger       LedgerService
	achievements AchievementService
}

func NewTaskService(
	gdb *gorm.DB,
	log *logger.Logger,
	clk clock.Clock,
	users repos.UserRepo,
	tasks repos.TaskRepo,
	taskLogs repos.TaskLogRepo,
	ledger LedgerService,
	achievements AchievementService,
) TaskService {
	return &taskService{
		db:           gdb,
		log:          log.With("service", "TaskService"),
		clock:        clk,
		tx:           db.NewTxRunner(gdb),
		users:        users,
		tasks:        tasks,
		taskLogs:     taskLogs,
		ledger:       ledger,
		achievements: achievements,
	}
}

var validPriorities = map[string]bool{
	planner.PriorityLow:      true,
	planner.PriorityMedium:   true,
	planner.PriorityHigh:     true,
	planner.PriorityCritical: true,
}

var validRecurrence = map[string]bool{
	planner.RecurrenceDaily:   true,
	planner.RecurrenceWeekly:  true,
	planner.RecurrenceMonthly: true,
	planner.RecurrenceOnDate:  true,
}

func (ts *taskService) CreateTask(dbc dbctx.Context, userID uuid.UUID, in CreateTaskInput) (*TaskCreated, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, pkgerrors.Invalidf("task title")
	}
	priority := strings.ToLower(strings.TrimSpace(in.Priority))
	if priority == "" {
		priority = planner.PriorityMedium
	}
	if !validPriorities[priority] {
		return nil, pkgerrors.Invalidf("priority %q", in.Priority)
	}
	deadline, err := optionalDate(in.Deadline)
	if err != nil {
		return nil, err
	}
	u, err := requireUser(dbc, ts.users, userID)
	if err != nil {
		return nil, err
	}

	t := &types.Task{
		UserID:      userID,
		Title:       truncateRunes(title, 500),
		Description: strings.TrimSpace(in.Description),
		Status:      types.TaskStatusTodo,
		Priority:    priority,
		Difficulty:  strings.TrimSpace(in.Difficulty),
		Tags:        encodeTags(in.Tags),
		Project:     strings.TrimSpace(in.Project),
		Deadline:    deadline,
	}
	if rec := in.Recurrence; rec != nil && rec.Enabled {
		if !validRecurrence[rec.Type] {
			return nil, pkgerrors.Invalidf("recurrence %q", rec.Type)
		}
		fixed, err := optionalDate(rec.FixedDate)
		if err != nil {
			return nil, err
		}
		if rec.Type == planner.RecurrenceOnDate && fixed == nil {
			return nil, pkgerrors.Invalidf("on_date recurrence needs fixed_date")
		}
		t.IsRecurring = true
		t.RecurrenceType = rec.Type
		t.RecurrenceDate = fixed
	}
	if rem := in.Reminder; rem != nil && strings.TrimSpace(rem.Time) != "" {
		at := strings.TrimSpace(rem.Time)
		if !user.ValidHHMM(at) {
			return nil, pkgerrors.Invalidf("remind time %q", at)
		}
		notif := u.ParsedSettings().Notifications
		t.RemindEnabled = notif.TaskRemindDefault
		if rem.Enabled != nil {
			t.RemindEnabled = *rem.Enabled
		}
		t.RemindTime = at
		t.RemindText = strings.TrimSpace(rem.Text)
		if t.RemindText == "" {
			t.RemindText = notif.RenderTemplate(t.Title)
		}
	}

	out := &TaskCreated{}
	err = ts.tx.InTx(dbc, func(dbc dbctx.Context) error {
		created, err := ts.tasks.Create(dbc, t)
		if err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		out.Task = created
		sourceID := created.ID
		award, err := ts.ledger.Award(dbc, AwardInput{
			UserID:     userID,
			EventType:  gamification.EventTaskCreated,
			SourceType: "task",
			SourceID:   &sourceID,
		})
		if err != nil {
			return err
		}
		out.XPEarned = award.Amount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ts *taskService) CreateQuickTask(dbc dbctx.Context, userID uuid.UUID, title, difficulty string) (*QuickTaskResult, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, pkgerrors.Invalidf("task title")
	}
	difficulty = strings.ToLower(strings.TrimSpace(difficulty))
	if difficulty == "" {
		difficulty = "medium"
	}
	if !gamification.ValidDifficulty(difficulty) {
		return &QuickTaskResult{Failure: invalid("Unknown difficulty: " + difficulty)}, nil
	}

	res := &QuickTaskResult{}
	err := ts.tx.InTx(dbc, func(dbc dbctx.Context) error {
		now := ts.clock.Now().UTC()
		created, err := ts.tasks.Create(dbc, &types.Task{
			UserID:      userID,
			Title:       truncateRunes(title, 500),
			Status:      types.TaskStatusDone,
			Priority:    planner.PriorityMedium,
			Difficulty:  difficulty,
			CompletedAt: &now,
		})
		if err != nil {
			return fmt.Errorf("create quick task: %w", err)
		}
		res.Task = created
		event := gamification.QuickTaskEvent(difficulty)
		amount := gamification.AwardFor(event)
		sourceID := created.ID
		award, err := ts.ledger.Award(dbc, AwardInput{
			UserID:      userID,
			EventType:   event,
			Amount:      &amount,
			SourceType:  "task",
			SourceID:    &sourceID,
			Description: "Useful task: " + created.Title,
		})
		if err != nil {
			return err
		}
		res.XPEarned = award.Amount
		res.LeveledUp = award.LeveledUp
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Achievements = evaluateAfter(ts.achievements, ts.log, dbc, userID)
	return res, nil
}

// CompleteTask marks the task done, pays the priority reward plus the
// before-deadline bonus, and spawns the next occurrence of a recurring task.
func (ts *taskService) CompleteTask(dbc dbctx.Context, userID, taskID uuid.UUID) (*TaskCompletion, error) {
	u, err := requireUser(dbc, ts.users, userID)
	if err != nil {
		return nil, err
	}
	today := localToday(ts.clock, u.Timezone)

	res := &TaskCompletion{TaskID: taskID}
	err = ts.tx.InTx(dbc, func(dbc dbctx.Context) error {
		t, err := ts.tasks.GetByID(dbc, taskID)
		if err != nil {
			return fmt.Errorf("load task: %w", err)
		}
		if t == nil {
			res.Failure = notFound("Task not found")
			return nil
		}
		if t.UserID != userID {
			res.Failure = forbidden("Not your task")
			return nil
		}
		if t.Status == types.TaskStatusDone {
			res.Failure = alreadyDone("Task already completed")
			return nil
		}

		now := ts.clock.Now().UTC()
		flipped, err := ts.tasks.MarkDone(dbc, t.ID, now)
		if err != nil {
			return fmt.Errorf("complete task: %w", err)
		}
		if !flipped {
			// Lost a race with a concurrent completion of the same task.
			res.Failure = alreadyDone("Task already completed")
			return nil
		}
		if err := ts.taskLogs.Create(dbc, &types.TaskLog{
			TaskID:    t.ID,
			OldStatus: t.Status,
			NewStatus: types.TaskStatusDone,
			ChangedAt: now,
		}); err != nil {
			return fmt.Errorf("log task status: %w", err)
		}
		res.Title = t.Title

		sourceID := t.ID
		in := AwardInput{
			UserID:     userID,
			EventType:  gamification.TaskCompletedEvent(t.Priority),
			SourceType: "task",
			SourceID:   &sourceID,
		}
		if t.XPReward > 0 {
			in.Amount = &t.XPReward
		}
		award, err := ts.ledger.Award(dbc, in)
		if err != nil {
			return err
		}
		res.XPEarned = award.Amount
		res.LeveledUp = award.LeveledUp
		res.NewLevel = award.Level

		if t.Deadline != nil && *t.Deadline != "" && *t.Deadline >= dateString(today) {
			bonus, err := ts.ledger.Award(dbc, AwardInput{
				UserID:     userID,
				EventType:  gamification.EventTaskBeforeDeadline,
				SourceType: "task",
				SourceID:   &sourceID,
			})
			if err != nil {
				return err
			}
			res.XPEarned += bonus.Amount
			res.LeveledUp = res.LeveledUp || bonus.LeveledUp
			res.NewLevel = bonus.Level
		}

		if t.IsRecurring {
			next, err := ts.spawnNext(dbc, t, today)
			if err != nil {
				return err
			}
			if next != nil {
				res.NextTaskID = &next.ID
				if next.Deadline != nil {
					res.NextDeadline = *next.Deadline
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Failed() {
		return res, nil
	}
	res.Achievements = evaluateAfter(ts.achievements, ts.log, dbc, userID)
	return res, nil
}

// spawnNext clones a completed recurring task with the next deadline.
func (ts *taskService) spawnNext(dbc dbctx.Context, t *types.Task, today time.Time) (*types.Task, error) {
	base := today
	if t.Deadline != nil && *t.Deadline != "" {
		if d, err := clock.ParseDate(*t.Deadline); err == nil {
			base = d
		}
	}
	var fixed *time.Time
	if t.RecurrenceDate != nil && *t.RecurrenceDate != "" {
		if d, err := clock.ParseDate(*t.RecurrenceDate); err == nil {
			fixed = &d
		}
	}
	next, ok := gamification.NextDeadline(t.RecurrenceType, base, fixed)
	if !ok {
		ts.log.Warn("recurring task without a usable rule", "task_id", t.ID, "type", t.RecurrenceType)
		return nil, nil
	}
	deadline := dateString(next.Deadline)
	clone := &types.Task{
		UserID:         t.UserID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         types.TaskStatusTodo,
		Priority:       t.Priority,
		Difficulty:     t.Difficulty,
		Tags:           t.Tags,
		Project:        t.Project,
		Deadline:       &deadline,
		XPReward:       t.XPReward,
		IsRecurring:    next.Recurring,
		RecurrenceType: t.RecurrenceType,
		RecurrenceDate: t.RecurrenceDate,
		RemindEnabled:  t.RemindEnabled,
		RemindTime:     t.RemindTime,
		RemindText:     t.RemindText,
	}
	created, err := ts.tasks.Create(dbc, clone)
	if err != nil {
		return nil, fmt.Errorf("spawn next occurrence: %w", err)
	}
	return created, nil
}

func (ts *taskService) ListTasks(dbc dbctx.Context, userID uuid.UUID, status, tag string) ([]*types.Task, error) {
	var statuses []string
	if s := strings.TrimSpace(status); s != "" {
		statuses = []string{s}
	}
	tasks, err := ts.tasks.ListByUser(dbc, userID, statuses, 50)
	if err != nil {
		return nil, err
	}
	tag = normalizeTag(tag)
	if tag == "" {
		return tasks, nil
	}
	out := tasks[:0]
	for _, t := range tasks {
		if containsTag(t.TagList(), tag) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (ts *taskService) ListActive(dbc dbctx.Context, userID uuid.UUID) ([]*types.Task, error) {
	return ts.tasks.ListActive(dbc, userID)
}

func (ts *taskService) DeleteTask(dbc dbctx.Context, userID, taskID uuid.UUID) (*DeleteResult, error) {
	t, err := ts.tasks.GetByID(dbc, taskID)
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	if t == nil {
		return &DeleteResult{Failure: notFound("Task not found")}, nil
	}
	if t.UserID != userID {
		return &DeleteResult{Failure: forbidden("Not your task")}, nil
	}
	if err := ts.tasks.Delete(dbc, taskID); err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}
	return &DeleteResult{Deleted: true, Title: t.Title}, nil
}

func (ts *taskService) CountOverdue(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	u, err := requireUser(dbc, ts.users, userID)
	if err != nil {
		return 0, err
	}
	return ts.tasks.CountOverdue(dbc, userID, dateString(localToday(ts.clock, u.Timezone)))
}

func optionalDate(raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	d, err := clock.ParseDate(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Invalidf("date %q", *raw)
	}
	s := dateString(d)
	return &s, nil
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}

func encodeTags(tags []string) datatypes.JSON {
	clean := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		if n := normalizeTag(t); n != "" && !seen[n] {
			seen[n] = true
			clean = append(clean, n)
		}
	}
	b, _ := json.Marshal(clean)
	return datatypes.JSON(b)
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if normalizeTag(t) == tag {
			return true
		}
	}
	return false
}
