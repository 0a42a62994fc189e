package library

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LearningResource struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ResourceType string     `gorm:"column:resource_type;size:50" json:"resource_type"`
	Title        string     `gorm:"column:title;not null;size:500" json:"title"`
	URL          string     `gorm:"column:url;size:1000" json:"url,omitempty"`
	Description  string     `gorm:"column:description" json:"description,omitempty"`
	Topic        string     `gorm:"column:topic;size:255" json:"topic,omitempty"`
	IsCompleted  bool       `gorm:"column:is_completed;not null" json:"is_completed"`
	CompletedAt  *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LearningResource) TableName() string { return "learning_resource" }

func (r *LearningResource) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type Playlist struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string    `gorm:"column:name;not null;size:255" json:"name"`
	Emoji  string    `gorm:"column:emoji;size:16" json:"emoji"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Playlist) TableName() string { return "playlist" }

func (p *Playlist) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Emoji == "" {
		p.Emoji = "🎵"
	}
	return nil
}

type PlaylistTrack struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlaylistID   uuid.UUID `gorm:"type:uuid;not null;index" json:"playlist_id"`
	FileID       string    `gorm:"column:file_id;not null;size:500" json:"file_id"`
	FileUniqueID string    `gorm:"column:file_unique_id;size:255" json:"file_unique_id"`
	Title        string    `gorm:"column:title;size:500" json:"title,omitempty"`
	Performer    string    `gorm:"column:performer;size:255" json:"performer,omitempty"`
	Duration     int       `gorm:"column:duration" json:"duration,omitempty"`
	Position     int       `gorm:"column:position;not null" json:"position"`
	AddedAt      time.Time `gorm:"column:added_at;not null" json:"added_at"`
}

func (PlaylistTrack) TableName() string { return "playlist_track" }

func (t *PlaylistTrack) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.AddedAt.IsZero() {
		t.AddedAt = time.Now().UTC()
	}
	return nil
}
