package planner

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EveryDay is the schedule mask with all seven weekday bits set (bit 0 = Monday).
const EveryDay = 127

type Habit struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_habit_user_active,priority:1" json:"user_id"`
	Name        string    `gorm:"column:name;not null;size:255" json:"name"`
	Description string    `gorm:"column:description;size:500" json:"description,omitempty"`
	Emoji       string    `gorm:"column:emoji;size:16" json:"emoji"`

	CurrentStreak          int `gorm:"column:current_streak;not null;default:0" json:"current_streak"`
	BestStreak             int `gorm:"column:best_streak;not null;default:0" json:"best_streak"`
	TotalCompletions       int `gorm:"column:total_completions;not null;default:0" json:"total_completions"`
	StreakFreezesAvailable int `gorm:"column:streak_freezes_available;not null;default:1" json:"streak_freezes_available"`
	StreakFreezesUsed      int `gorm:"column:streak_freezes_used;not null;default:0" json:"streak_freezes_used"`
	ScheduleMask           int `gorm:"column:schedule_mask;not null;default:127" json:"schedule_mask"`
	XPPerCompletion        int `gorm:"column:xp_per_completion;not null;default:15" json:"xp_per_completion"`

	// The last streak milestone paid and the first day of its run.
	MilestoneRunStart string `gorm:"column:milestone_run_start;type:varchar(10)" json:"-"`
	MilestoneReached  int    `gorm:"column:milestone_reached;not null;default:0" json:"-"`

	IsActive bool `gorm:"column:is_active;not null;default:true;index:idx_habit_user_active,priority:2" json:"is_active"`

	RemindEnabled bool   `gorm:"column:remind_enabled;not null" json:"remind_enabled"`
	RemindTime    string `gorm:"column:remind_time;size:5;index" json:"remind_time,omitempty"`
	RemindText    string `gorm:"column:remind_text" json:"remind_text,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Habit) TableName() string { return "habit" }

func (h *Habit) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.Emoji == "" {
		h.Emoji = "✅"
	}
	return nil
}

type HabitLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	HabitID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_habit_log_habit_date,priority:1" json:"habit_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_habit_log_user_date,priority:1" json:"user_id"`
	LogDate   string    `gorm:"column:log_date;type:varchar(10);not null;uniqueIndex:idx_habit_log_habit_date,priority:2;index:idx_habit_log_user_date,priority:2" json:"log_date"`
	Completed bool      `gorm:"column:completed;not null" json:"completed"`
	IsFreeze  bool      `gorm:"column:is_freeze;not null" json:"is_freeze"`
	LoggedAt  time.Time `gorm:"column:logged_at;not null" json:"logged_at"`
}

func (HabitLog) TableName() string { return "habit_log" }

func (l *HabitLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.LoggedAt.IsZero() {
		l.LoggedAt = time.Now().UTC()
	}
	return nil
}

// Counts reports whether the log keeps a streak alive.
func (l *HabitLog) Counts() bool {
	return l != nil && (l.Completed || l.IsFreeze)
}
