package journal

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Entry struct {
	ID      uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_journal_user_created,priority:1" json:"user_id"`
	Title   string         `gorm:"column:title;not null;size:500" json:"title"`
	Content string         `gorm:"column:content;not null" json:"content"`
	Tags    datatypes.JSON `gorm:"column:tags" json:"tags"`

	CreatedAt time.Time `gorm:"not null;index:idx_journal_user_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Entry) TableName() string { return "journal_entry" }

func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if len(e.Tags) == 0 {
		e.Tags = datatypes.JSON("[]")
	}
	return nil
}

func (e *Entry) TagList() []string {
	var out []string
	if len(e.Tags) > 0 {
		_ = json.Unmarshal(e.Tags, &out)
	}
	return out
}
