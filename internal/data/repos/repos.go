package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/data/repos/journal"
	"github.com/yungbote/mentor-backend/internal/data/repos/library"
	"github.com/yungbote/mentor-backend/internal/data/repos/mentor"
	"github.com/yungbote/mentor-backend/internal/data/repos/planner"
	"github.com/yungbote/mentor-backend/internal/data/repos/progress"
	"github.com/yungbote/mentor-backend/internal/data/repos/user"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type XPEventRepo = progress.XPEventRepo
type XPTotals = progress.XPTotals
type AchievementRepo = progress.AchievementRepo
type UserAchievementRepo = progress.UserAchievementRepo
type WeeklyReportRepo = progress.WeeklyReportRepo

type TaskRepo = planner.TaskRepo
type TaskLogRepo = planner.TaskLogRepo
type HabitRepo = planner.HabitRepo
type HabitLogRepo = planner.HabitLogRepo
type HabitLogCounts = planner.HabitLogCounts

type JournalEntryRepo = journal.EntryRepo
type JournalEntryFilter = journal.EntryFilter

type AIInteractionRepo = mentor.AIInteractionRepo
type MemorySummaryRepo = mentor.MemorySummaryRepo

type LearningResourceRepo = library.LearningResourceRepo
type PlaylistRepo = library.PlaylistRepo
type PlaylistTrackRepo = library.PlaylistTrackRepo

// Set bundles every repository over one database handle.
type Set struct {
	Users            UserRepo
	XPEvents         XPEventRepo
	Achievements     AchievementRepo
	UserAchievements UserAchievementRepo
	WeeklyReports    WeeklyReportRepo
	Tasks            TaskRepo
	TaskLogs         TaskLogRepo
	Habits           HabitRepo
	HabitLogs        HabitLogRepo
	Journal          JournalEntryRepo
	AIInteractions   AIInteractionRepo
	MemorySummaries  MemorySummaryRepo
	Learning         LearningResourceRepo
	Playlists        PlaylistRepo
	PlaylistTracks   PlaylistTrackRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		Users:            user.NewUserRepo(db, log),
		XPEvents:         progress.NewXPEventRepo(db, log),
		Achievements:     progress.NewAchievementRepo(db, log),
		UserAchievements: progress.NewUserAchievementRepo(db, log),
		WeeklyReports:    progress.NewWeeklyReportRepo(db, log),
		Tasks:            planner.NewTaskRepo(db, log),
		TaskLogs:         planner.NewTaskLogRepo(db, log),
		Habits:           planner.NewHabitRepo(db, log),
		HabitLogs:        planner.NewHabitLogRepo(db, log),
		Journal:          journal.NewEntryRepo(db, log),
		AIInteractions:   mentor.NewAIInteractionRepo(db, log),
		MemorySummaries:  mentor.NewMemorySummaryRepo(db, log),
		Learning:         library.NewLearningResourceRepo(db, log),
		Playlists:        library.NewPlaylistRepo(db, log),
		PlaylistTracks:   library.NewPlaylistTrackRepo(db, log),
	}
}
