package user

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/datatypes"
)

type NotificationSettings struct {
	TaskRemindDefault  bool   `json:"task_remind_default"`
	HabitRemindDefault bool   `json:"habit_remind_default"`
	Morning            bool   `json:"morning"`
	MorningTime        string `json:"morning_time"`
	Evening            bool   `json:"evening"`
	EveningTime        string `json:"evening_time"`
	RemindTextTemplate string `json:"remind_text_template"`
}

type AIPermissions struct {
	CreateTasks bool `json:"create_tasks"`
	ReadTasks   bool `json:"read_tasks"`
	ReadHabits  bool `json:"read_habits"`
	ReadJournal bool `json:"read_journal"`
}

// Settings replaces the free-form settings blob with named fields.
type Settings struct {
	Notifications        NotificationSettings `json:"notifications"`
	AIPermissions        AIPermissions        `json:"ai_permissions"`
	MentorName           string               `json:"mentor_name"`
	MentorPersona        string               `json:"mentor_persona"`
	MentorDisciplineBias int                  `json:"mentor_discipline_bias"`
}

const (
	PersonaStrict   = "strict"
	PersonaSoft     = "soft"
	PersonaAdaptive = "adaptive"
	PersonaGoggins  = "goggins"
)

var hhmmRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func DefaultSettings() Settings {
	return Settings{
		Notifications: NotificationSettings{
			TaskRemindDefault:  true,
			HabitRemindDefault: true,
			Morning:            true,
			MorningTime:        "08:00",
			Evening:            true,
			EveningTime:        "21:00",
			RemindTextTemplate: "🔔 Time: {name}",
		},
		AIPermissions: AIPermissions{
			CreateTasks: true,
			ReadTasks:   true,
			ReadHabits:  true,
			ReadJournal: true,
		},
		MentorName:           "Iron Mentor",
		MentorPersona:        PersonaAdaptive,
		MentorDisciplineBias: 85,
	}
}

// DecodeSettings unmarshals raw over DefaultSettings, so absent keys keep their defaults.
func DecodeSettings(raw datatypes.JSON) Settings {
	s := DefaultSettings()
	if len(raw) == 0 {
		return s
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return DefaultSettings()
	}
	return s.normalized()
}

func (s Settings) Encode() (datatypes.JSON, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// Patch applies a partial JSON document. Nested objects merge key by key
// because json.Unmarshal only touches the fields present in the patch.
func (s Settings) Patch(patch []byte) (Settings, error) {
	if len(strings.TrimSpace(string(patch))) == 0 {
		return s, nil
	}
	next := s
	if err := json.Unmarshal(patch, &next); err != nil {
		return s, fmt.Errorf("decode settings patch: %w", err)
	}
	if err := next.Validate(); err != nil {
		return s, err
	}
	return next.normalized(), nil
}

func (s Settings) Validate() error {
	switch s.MentorPersona {
	case PersonaStrict, PersonaSoft, PersonaAdaptive, PersonaGoggins:
	default:
		return fmt.Errorf("unknown mentor persona %q", s.MentorPersona)
	}
	for _, t := range []string{s.Notifications.MorningTime, s.Notifications.EveningTime} {
		if t != "" && !ValidHHMM(t) {
			return fmt.Errorf("invalid time %q, expected HH:MM", t)
		}
	}
	return nil
}

// RenderTemplate substitutes {name} in the reminder template.
func (n NotificationSettings) RenderTemplate(name string) string {
	tmpl := n.RemindTextTemplate
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultSettings().Notifications.RemindTextTemplate
	}
	return strings.ReplaceAll(tmpl, "{name}", name)
}

func ValidHHMM(s string) bool { return hhmmRe.MatchString(s) }

func (s Settings) normalized() Settings {
	if s.MentorDisciplineBias < 0 {
		s.MentorDisciplineBias = 0
	}
	if s.MentorDisciplineBias > 100 {
		s.MentorDisciplineBias = 100
	}
	if len([]rune(s.MentorName)) > 50 {
		s.MentorName = string([]rune(s.MentorName)[:50])
	}
	if s.MentorPersona == "" {
		s.MentorPersona = PersonaAdaptive
	}
	return s
}
