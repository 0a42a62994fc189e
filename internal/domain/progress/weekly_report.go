package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WeeklyReport struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	WeekStart string    `gorm:"column:week_start;type:varchar(10);not null" json:"week_start"`
	WeekEnd   string    `gorm:"column:week_end;type:varchar(10);not null" json:"week_end"`

	TasksCreated        int64   `gorm:"column:tasks_created" json:"tasks_created"`
	TasksCompleted      int64   `gorm:"column:tasks_completed" json:"tasks_completed"`
	TasksOverdue        int64   `gorm:"column:tasks_overdue" json:"tasks_overdue"`
	HabitsTotalPossible int     `gorm:"column:habits_total_possible" json:"habits_total_possible"`
	HabitsCompleted     int     `gorm:"column:habits_completed" json:"habits_completed"`
	HabitCompletionRate float64 `gorm:"column:habit_completion_rate" json:"habit_completion_rate"`
	JournalEntries      int64   `gorm:"column:journal_entries_count" json:"journal_entries_count"`
	XPEarned            int64   `gorm:"column:xp_earned" json:"xp_earned"`
	XPLost              int64   `gorm:"column:xp_lost" json:"xp_lost"`
	DisciplineScore     float64 `gorm:"column:discipline_score" json:"discipline_score"`
	GrowthScore         float64 `gorm:"column:growth_score" json:"growth_score"`
	BestStreak          int     `gorm:"column:best_streak" json:"best_streak"`
	AIReview            string  `gorm:"column:ai_review" json:"ai_review"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (WeeklyReport) TableName() string { return "weekly_report" }

func (r *WeeklyReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
