package gamification

import "fmt"

const (
	EventTaskCreated         = "task_created"
	EventTaskBeforeDeadline  = "task_completed_before_deadline"
	EventHabitCompleted      = "habit_completed"
	EventJournalEntry        = "journal_entry"
	EventJournalEntryLong    = "journal_entry_long"
	EventAISession           = "ai_session"
	EventWeeklyReviewRead    = "weekly_review_read"
	EventProfileSetup        = "profile_setup"
	EventLearningAdded       = "learning_resource_added"
	EventLearningCompleted   = "learning_resource_completed"
	EventPlaylistCreated     = "playlist_created"
	EventPlaylistTrackAdded  = "playlist_track_added"
	PenaltyHabitMissed       = "habit_missed"
	PenaltyTaskOverdue       = "task_overdue"
	PenaltyInactivityDay     = "inactivity_day"
	defaultPenalty           = -5
	achievementEventPrefix   = "achievement:"
	taskCompletedEventPrefix = "task_completed_"
	quickTaskEventPrefix     = "quick_task_"
	habitStreakEventPrefix   = "habit_streak_"
)

var xpAwards = map[string]int{
	"task_created":                   5,
	"task_completed_low":             10,
	"task_completed_medium":          20,
	"task_completed_high":            35,
	"task_completed_critical":        50,
	"task_completed_before_deadline": 15,
	"habit_completed":                15,
	"habit_streak_7":                 50,
	"habit_streak_14":                100,
	"habit_streak_30":                250,
	"habit_streak_60":                500,
	"habit_streak_100":               1000,
	"journal_entry":                  10,
	"journal_entry_long":             20,
	"ai_session":                     5,
	"weekly_review_read":             10,
	"profile_setup":                  25,
	"learning_resource_added":        8,
	"learning_resource_completed":    25,
	"playlist_created":               10,
	"playlist_track_added":           4,
	"quick_task_easy":                10,
	"quick_task_medium":              20,
	"quick_task_hard":                35,
}

var xpPenalties = map[string]int{
	"habit_missed":   -10,
	"task_overdue":   -5,
	"inactivity_day": -3,
}

// streakMilestones pays a one-time bonus on reaching an exact streak length.
var streakMilestones = map[int]int{7: 50, 14: 100, 30: 250, 60: 500, 100: 1000}

// AwardFor returns the catalog amount for eventType; unknown events are worth 0.
func AwardFor(eventType string) int {
	return xpAwards[eventType]
}

// PenaltyFor returns the (negative) amount for penaltyType, -5 when unlisted.
func PenaltyFor(penaltyType string) int {
	if v, ok := xpPenalties[penaltyType]; ok {
		return v
	}
	return defaultPenalty
}

func TaskCompletedEvent(priority string) string { return taskCompletedEventPrefix + priority }
func QuickTaskEvent(difficulty string) string   { return quickTaskEventPrefix + difficulty }
func AchievementEvent(code string) string       { return achievementEventPrefix + code }
func StreakEvent(streak int) string             { return fmt.Sprintf("%s%d", habitStreakEventPrefix, streak) }

// MilestoneBonus reports the bonus for reaching streak exactly, if any.
func MilestoneBonus(streak int) (int, bool) {
	b, ok := streakMilestones[streak]
	return b, ok
}

// ValidDifficulty reports whether d names a quick-task difficulty.
func ValidDifficulty(d string) bool {
	_, ok := xpAwards[QuickTaskEvent(d)]
	return ok
}
