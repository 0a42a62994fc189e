package mentor

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AIInteraction struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index:idx_ai_interaction_user_created,priority:1" json:"user_id"`
	UserMessage    string    `gorm:"column:user_message" json:"user_message"`
	AIResponse     string    `gorm:"column:ai_response" json:"ai_response"`
	AIMode         string    `gorm:"column:ai_mode;size:50" json:"ai_mode"`
	ResponseTimeMS int64     `gorm:"column:response_time_ms" json:"response_time_ms"`
	Degraded       bool      `gorm:"column:degraded;not null" json:"degraded"`

	CreatedAt time.Time `gorm:"not null;index:idx_ai_interaction_user_created,priority:2" json:"created_at"`
}

func (AIInteraction) TableName() string { return "ai_interaction" }

func (i *AIInteraction) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// MemorySummary is a condensed slice of past conversations fed back as context.
type MemorySummary struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	SummaryType string    `gorm:"column:summary_type;size:50" json:"summary_type"`
	Content     string    `gorm:"column:content;not null" json:"content"`
	PeriodStart string    `gorm:"column:period_start;type:varchar(10)" json:"period_start,omitempty"`
	PeriodEnd   string    `gorm:"column:period_end;type:varchar(10)" json:"period_end,omitempty"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (MemorySummary) TableName() string { return "ai_memory_summary" }

func (s *MemorySummary) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
