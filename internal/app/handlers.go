package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/mentor-backend/internal/http/handlers"
	httpMW "github.com/yungbote/mentor-backend/internal/http/middleware"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	User        *httpH.UserHandler
	Task        *httpH.TaskHandler
	Habit       *httpH.HabitHandler
	Journal     *httpH.JournalHandler
	Achievement *httpH.AchievementHandler
	Mentor      *httpH.MentorHandler
	Library     *httpH.LibraryHandler
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	var pinger httpH.Pinger
	if sqlDB, err := db.DB(); err == nil {
		pinger = sqlDB
	}
	return Handlers{
		Health: httpH.NewHealthHandler(pinger),
		Auth:   httpH.NewAuthHandler(log, services.User, services.Auth),
		User: httpH.NewUserHandler(httpH.UserHandlerDeps{
			Log:     log,
			Users:   services.User,
			Scores:  services.Score,
			Reports: services.Report,
			Cards:   services.ProgressCard,
			Cleanup: services.Cleanup,
		}),
		Task:        httpH.NewTaskHandler(log, services.Task),
		Habit:       httpH.NewHabitHandler(log, services.Habit),
		Journal:     httpH.NewJournalHandler(log, services.Journal),
		Achievement: httpH.NewAchievementHandler(log, services.Achievements),
		Mentor:      httpH.NewMentorHandler(log, services.Mentor),
		Library:     httpH.NewLibraryHandler(log, services.Library),
	}
}
