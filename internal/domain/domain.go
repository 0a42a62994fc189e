package domain

import (
	"github.com/yungbote/mentor-backend/internal/domain/journal"
	"github.com/yungbote/mentor-backend/internal/domain/library"
	"github.com/yungbote/mentor-backend/internal/domain/mentor"
	"github.com/yungbote/mentor-backend/internal/domain/planner"
	"github.com/yungbote/mentor-backend/internal/domain/progress"
	"github.com/yungbote/mentor-backend/internal/domain/user"
)

type User = user.User
type UserSettings = user.Settings
type NotificationSettings = user.NotificationSettings
type AIPermissions = user.AIPermissions

type XPEvent = progress.XPEvent
type Achievement = progress.Achievement
type UserAchievement = progress.UserAchievement
type WeeklyReport = progress.WeeklyReport

type Task = planner.Task
type TaskLog = planner.TaskLog
type Habit = planner.Habit
type HabitLog = planner.HabitLog

type JournalEntry = journal.Entry

type AIInteraction = mentor.AIInteraction
type AIMemorySummary = mentor.MemorySummary

type LearningResource = library.LearningResource
type Playlist = library.Playlist
type PlaylistTrack = library.PlaylistTrack

const (
	TaskStatusTodo       = planner.TaskStatusTodo
	TaskStatusInProgress = planner.TaskStatusInProgress
	TaskStatusDone       = planner.TaskStatusDone
	TaskStatusCancelled  = planner.TaskStatusCancelled

	EveryDay = planner.EveryDay
)

// AllModels lists every persisted model in migration order.
func AllModels() []any {
	return []any{
		&User{},
		&XPEvent{},
		&Achievement{},
		&UserAchievement{},
		&WeeklyReport{},
		&Task{},
		&TaskLog{},
		&Habit{},
		&HabitLog{},
		&JournalEntry{},
		&AIInteraction{},
		&AIMemorySummary{},
		&LearningResource{},
		&Playlist{},
		&PlaylistTrack{},
	}
}
