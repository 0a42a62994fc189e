package app

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/data/db"
	"github.com/yungbote/mentor-backend/internal/data/repos"
	mentorhttp "github.com/yungbote/mentor-backend/internal/http"
	"github.com/yungbote/mentor-backend/internal/observability"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
	"github.com/yungbote/mentor-backend/internal/temporalx"
	"github.com/yungbote/mentor-backend/internal/temporalx/temporalworker"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Clock    clock.Clock
	Repos    repos.Set
	Clients  Clients
	Services Services
	Jobs     Jobs
	Metrics  *observability.Metrics

	otelShutdown func(context.Context) error
}

// NewLogger builds the process logger from LOG_MODE.
func NewLogger() (*logger.Logger, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// New opens the database and wires repos, clients, services and jobs. It does
// not start anything; see Run.
func New(ctx context.Context, log *logger.Logger) (*App, error) {
	LoadEnvFile(log)
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	if err := clock.SetDefaultZone(cfg.DefaultTimezone); err != nil {
		log.Warn("DEFAULT_TIMEZONE ignored", "error", err, "using", clock.DefaultZone)
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)
	metrics := observability.Init()

	theDB, err := openDB(log, cfg)
	if err != nil {
		return nil, err
	}

	clk := clock.Real{}
	reposet := repos.NewSet(theDB, log)

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		return nil, err
	}

	serviceset, err := wireServices(theDB, log, clk, cfg, reposet, clients)
	if err != nil {
		clients.Close()
		return nil, err
	}

	jobs, err := wireJobs(log, clk, cfg, reposet, serviceset, clients)
	if err != nil {
		clients.Close()
		return nil, err
	}

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Clock:        clk,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		Jobs:         jobs,
		Metrics:      metrics,
		otelShutdown: otelShutdown,
	}, nil
}

func openDB(log *logger.Logger, cfg Config) (*gorm.DB, error) {
	var theDB *gorm.DB
	switch cfg.DBDriver {
	case "sqlite":
		s, err := db.NewSQLiteService(log, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		theDB = s.DB()
	case "postgres", "":
		pg, err := db.NewPostgresService(log)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		theDB = pg.DB()
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if err := db.AutoMigrateAll(theDB); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	if err := db.EnsureIndexes(theDB); err != nil {
		return nil, err
	}
	return theDB, nil
}

// HTTPServer builds the HTTP server over the wired services.
func (a *App) HTTPServer() *mentorhttp.Server {
	handlers := wireHandlers(a.DB, a.Log, a.Services)
	middleware := wireMiddleware(a.Log, a.Services)
	return mentorhttp.NewServer(mentorhttp.RouterConfig{
		Log:                a.Log,
		ServiceName:        routerServiceName(a.Cfg),
		CORSOrigins:        a.Cfg.CORSOrigins,
		Metrics:            a.Metrics,
		AuthMiddleware:     middleware.Auth,
		HealthHandler:      handlers.Health,
		AuthHandler:        handlers.Auth,
		UserHandler:        handlers.User,
		TaskHandler:        handlers.Task,
		HabitHandler:       handlers.Habit,
		JournalHandler:     handlers.Journal,
		AchievementHandler: handlers.Achievement,
		MentorHandler:      handlers.Mentor,
		LibraryHandler:     handlers.Library,
	})
}

func routerServiceName(cfg Config) string {
	if !cfg.Otel.Enabled {
		return ""
	}
	return cfg.Otel.ServiceName
}

// Run serves HTTP, drives the job scheduler and, when configured, hosts the
// Temporal maintenance worker. It returns when ctx is cancelled or any part fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil {
		return fmt.Errorf("app not initialized")
	}
	if _, err := a.Services.Achievements.SeedCatalog(dbctx.Background(ctx)); err != nil {
		return fmt.Errorf("seed achievement catalog: %w", err)
	}

	var runner *temporalworker.Runner
	if a.Cfg.Temporal.Enabled() {
		tc, err := temporalx.NewClient(a.Log, a.Cfg.Temporal)
		if err != nil {
			return err
		}
		defer tc.Close()
		runner, err = temporalworker.NewRunner(a.Log, tc, a.Cfg.Temporal, a.Jobs.Scheduler)
		if err != nil {
			return fmt.Errorf("init temporal worker: %w", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)

	server := a.HTTPServer()
	g.Go(func() error { return server.Run(ctx, a.Cfg.HTTPAddr) })
	g.Go(func() error { return a.Jobs.Scheduler.Run(ctx) })
	if runner != nil {
		g.Go(func() error { return runner.Run(ctx) })
	}

	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
