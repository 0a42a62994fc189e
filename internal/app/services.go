package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/data/repos"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
	"github.com/yungbote/mentor-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	Ledger       services.LedgerService
	Achievements services.AchievementService
	User         services.UserService
	Task         services.TaskService
	Habit        services.HabitService
	Score        services.ScoreService
	Journal      services.JournalService
	Library      services.LibraryService
	Cleanup      services.CleanupService
	Mentor       services.MentorService
	Report       services.ReportService
	ProgressCard services.ProgressCardService
}

func wireServices(db *gorm.DB, log *logger.Logger, clk clock.Clock, cfg Config, rs repos.Set, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	authService := services.NewAuthService(log, clk, cfg.JWTSecretKey, cfg.BotAPISecret, cfg.AccessTokenTTL)

	ledger := services.NewLedgerService(db, log, rs.Users, rs.XPEvents)
	achievements := services.NewAchievementService(db, log, clk, rs, ledger)

	userService := services.NewUserService(db, log, clk, rs.Users, rs.XPEvents, ledger, achievements)
	taskService := services.NewTaskService(db, log, clk, rs.Users, rs.Tasks, rs.TaskLogs, ledger, achievements)
	habitService := services.NewHabitService(db, log, clk, rs.Users, rs.Habits, rs.HabitLogs, ledger, achievements)
	scoreService := services.NewScoreService(db, log, clk, rs, cfg.ScoreWindowDays)
	journalService := services.NewJournalService(db, log, rs.Journal, ledger, achievements)
	libraryService := services.NewLibraryService(db, log, clk, rs, ledger, achievements)
	cleanupService := services.NewCleanupService(db, log, clk, rs)

	mentorService := services.NewMentorService(db, log, clk, rs, taskService, ledger, services.MentorBackends{
		Primary:  clients.LLMPrimary,
		Fallback: clients.LLMFallback,
		Timeout:  cfg.LLMTimeout,
	})
	reportService := services.NewReportService(db, log, clk, rs, habitService, scoreService, mentorService, ledger)

	cards, err := services.NewProgressCardService(log, rs.Users, cfg.ProgressCardFont)
	if err != nil {
		return Services{}, fmt.Errorf("init progress card service: %w", err)
	}

	return Services{
		Auth:         authService,
		Ledger:       ledger,
		Achievements: achievements,
		User:         userService,
		Task:         taskService,
		Habit:        habitService,
		Score:        scoreService,
		Journal:      journalService,
		Library:      libraryService,
		Cleanup:      cleanupService,
		Mentor:       mentorService,
		Report:       reportService,
		ProgressCard: cards,
	}, nil
}
