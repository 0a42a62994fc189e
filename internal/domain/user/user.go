package user

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID          int64          `gorm:"uniqueIndex;not null;column:chat_id" json:"chat_id"`
	Username        string         `gorm:"column:username" json:"username"`
	FirstName       string         `gorm:"column:first_name" json:"first_name"`
	DisplayName     string         `gorm:"column:display_name" json:"display_name"`
	Timezone        string         `gorm:"column:timezone;not null;default:'Europe/Moscow'" json:"timezone"`
	XP              int            `gorm:"column:xp;not null;default:0" json:"xp"`
	TotalXPEarned   int            `gorm:"column:total_xp_earned;not null;default:0" json:"total_xp_earned"`
	Level           int            `gorm:"column:level;not null;default:1" json:"level"`
	DisciplineScore float64        `gorm:"column:discipline_score;not null;default:50" json:"discipline_score"`
	GrowthScore     float64        `gorm:"column:growth_score;not null;default:50" json:"growth_score"`
	TechStack       datatypes.JSON `gorm:"column:tech_stack" json:"tech_stack"`
	Goals           datatypes.JSON `gorm:"column:goals" json:"goals"`
	KnowledgeLevel  string         `gorm:"column:knowledge_level" json:"knowledge_level"`
	Settings        datatypes.JSON `gorm:"column:settings" json:"-"`
	IsActive        bool           `gorm:"column:is_active;not null;default:true;index" json:"is_active"`

	// Local date of the last missed-habits sweep for this user.
	MissedCheckedOn string `gorm:"column:missed_checked_on;type:varchar(10)" json:"-"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Level == 0 {
		u.Level = 1
	}
	if strings.TrimSpace(u.Timezone) == "" {
		u.Timezone = "Europe/Moscow"
	}
	return nil
}

// Name prefers the chosen display name over the messenger first name.
func (u *User) Name() string {
	if u == nil {
		return ""
	}
	if n := strings.TrimSpace(u.DisplayName); n != "" {
		return n
	}
	return strings.TrimSpace(u.FirstName)
}

func (u *User) TechStackList() []string { return decodeList(u.TechStack) }
func (u *User) GoalList() []string      { return decodeList(u.Goals) }

// ProfileFilled reports whether name, stack and goals are all present.
func (u *User) ProfileFilled() bool {
	return u.Name() != "" && len(u.TechStackList()) > 0 && len(u.GoalList()) > 0
}

// ParsedSettings decodes the stored settings over the defaults.
func (u *User) ParsedSettings() Settings {
	if u == nil {
		return DefaultSettings()
	}
	return DecodeSettings(u.Settings)
}

func EncodeList(items []string) datatypes.JSON {
	clean := make([]string, 0, len(items))
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			clean = append(clean, s)
		}
	}
	b, _ := json.Marshal(clean)
	return datatypes.JSON(b)
}

func decodeList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
