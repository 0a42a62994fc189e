package planner

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
	TaskStatusCancelled  = "cancelled"
)

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

const (
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
	RecurrenceOnDate  = "on_date"
)

type Task struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_task_user_status,priority:1" json:"user_id"`
	Title       string         `gorm:"column:title;not null;size:500" json:"title"`
	Description string         `gorm:"column:description" json:"description,omitempty"`
	Status      string         `gorm:"column:status;not null;size:20;default:'todo';index:idx_task_user_status,priority:2" json:"status"`
	Priority    string         `gorm:"column:priority;not null;size:20;default:'medium'" json:"priority"`
	Difficulty  string         `gorm:"column:difficulty;size:20" json:"difficulty,omitempty"`
	Tags        datatypes.JSON `gorm:"column:tags" json:"tags"`
	Project     string         `gorm:"column:project;size:255" json:"project,omitempty"`
	Deadline    *string        `gorm:"column:deadline;type:varchar(10);index" json:"deadline,omitempty"`
	CompletedAt *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	XPReward    int            `gorm:"column:xp_reward;not null;default:0" json:"xp_reward"`

	IsRecurring    bool    `gorm:"column:is_recurring;not null" json:"is_recurring"`
	RecurrenceType string  `gorm:"column:recurrence_type;size:20" json:"recurrence_type,omitempty"`
	RecurrenceDate *string `gorm:"column:recurrence_date;type:varchar(10)" json:"recurrence_date,omitempty"`

	RemindEnabled bool   `gorm:"column:remind_enabled;not null;index:idx_task_remind,priority:1" json:"remind_enabled"`
	RemindTime    string `gorm:"column:remind_time;size:5;index:idx_task_remind,priority:2" json:"remind_time,omitempty"`
	RemindText    string `gorm:"column:remind_text" json:"remind_text,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Task) TableName() string { return "task" }

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if len(t.Tags) == 0 {
		t.Tags = datatypes.JSON("[]")
	}
	return nil
}

func (t *Task) IsActive() bool {
	return t.Status == TaskStatusTodo || t.Status == TaskStatusInProgress
}

func (t *Task) TagList() []string {
	var out []string
	if len(t.Tags) == 0 {
		return out
	}
	_ = json.Unmarshal(t.Tags, &out)
	return out
}

type TaskLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID    uuid.UUID `gorm:"type:uuid;not null;index" json:"task_id"`
	OldStatus string    `gorm:"column:old_status;size:50" json:"old_status"`
	NewStatus string    `gorm:"column:new_status;not null;size:50" json:"new_status"`
	ChangedAt time.Time `gorm:"column:changed_at;not null" json:"changed_at"`
}

func (TaskLog) TableName() string { return "task_log" }

func (l *TaskLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.ChangedAt.IsZero() {
		l.ChangedAt = time.Now().UTC()
	}
	return nil
}
