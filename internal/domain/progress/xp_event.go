package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// XPEvent is one immutable ledger row.
type XPEvent struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_xp_event_user_created,priority:1" json:"user_id"`

	EventType string `gorm:"column:event_type;not null;size:100" json:"event_type"`
	XPAmount  int    `gorm:"column:xp_amount;not null" json:"xp_amount"`
	// CountsTowardTotal marks entries that raise total_xp_earned. Penalties only touch the spendable balance.
	CountsTowardTotal bool       `gorm:"column:counts_toward_total;not null" json:"counts_toward_total"`
	SourceType        string     `gorm:"column:source_type;size:50" json:"source_type,omitempty"`
	SourceID          *uuid.UUID `gorm:"type:uuid;column:source_id" json:"source_id,omitempty"`
	Description       string     `gorm:"column:description;size:500" json:"description,omitempty"`

	CreatedAt time.Time `gorm:"not null;index:idx_xp_event_user_created,priority:2" json:"created_at"`
}

func (XPEvent) TableName() string { return "xp_event" }

func (e *XPEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
