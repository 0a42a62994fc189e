package gamification

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// Statistic names an achievement condition can test.
const (
	StatTasksCreated           = "tasks_created"
	StatTasksCompleted         = "tasks_completed"
	StatAllActiveTasksDone     = "all_active_tasks_done"
	StatHabitsCreated          = "habits_created"
	StatHabitLogsCompleted     = "habit_logs_completed"
	StatJournalEntries         = "journal_entries"
	StatAISessions             = "ai_sessions"
	StatLevel                  = "level"
	StatResourcesCompleted     = "resources_completed"
	StatPlaylistsCreated       = "playlists_created"
	StatPlaylistTracks         = "playlist_tracks"
	StatActiveDays7            = "active_days_7"
	StatProfileFilled          = "profile_filled"
	StatTotalProductiveActions = "total_productive_actions"
)

type AchievementDef struct {
	Code           string `yaml:"code"`
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	Emoji          string `yaml:"emoji"`
	XPReward       int    `yaml:"xp_reward"`
	Category       string `yaml:"category"`
	ConditionType  string `yaml:"condition_type"`
	ConditionValue int    `yaml:"condition_value"`
}

//go:embed achievements.yaml
var achievementsYAML []byte

var (
	catalogOnce sync.Once
	catalog     []AchievementDef
	catalogErr  error
)

// Catalog returns the built-in achievement table, parsed once.
func Catalog() ([]AchievementDef, error) {
	catalogOnce.Do(func() {
		catalog, catalogErr = ParseCatalog(achievementsYAML)
	})
	if catalogErr != nil {
		return nil, catalogErr
	}
	out := make([]AchievementDef, len(catalog))
	copy(out, catalog)
	return out, nil
}

func ParseCatalog(raw []byte) ([]AchievementDef, error) {
	var defs []AchievementDef
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("parse achievement catalog: %w", err)
	}
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d.Code == "" || d.ConditionType == "" {
			return nil, fmt.Errorf("achievement catalog: entry missing code or condition_type")
		}
		if seen[d.Code] {
			return nil, fmt.Errorf("achievement catalog: duplicate code %q", d.Code)
		}
		seen[d.Code] = true
	}
	return defs, nil
}

// Stats is one snapshot of a user's counters, keyed by statistic name.
type Stats map[string]int64

// Satisfied reports whether stats meet the condition; unknown statistics read as 0.
func Satisfied(conditionType string, conditionValue int, stats Stats) bool {
	return stats[conditionType] >= int64(conditionValue)
}

func BoolStat(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
