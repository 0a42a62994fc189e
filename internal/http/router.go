package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/mentor-backend/internal/http/handlers"
	httpMW "github.com/yungbote/mentor-backend/internal/http/middleware"
	"github.com/yungbote/mentor-backend/internal/observability"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	Metrics        *observability.Metrics
	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler        *httpH.AuthHandler
	UserHandler        *httpH.UserHandler
	TaskHandler        *httpH.TaskHandler
	HabitHandler       *httpH.HabitHandler
	JournalHandler     *httpH.JournalHandler
	AchievementHandler *httpH.AchievementHandler
	MentorHandler      *httpH.MentorHandler
	LibraryHandler     *httpH.LibraryHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	// Bot bootstrap (shared secret)
	if cfg.AuthHandler != nil && cfg.AuthMiddleware != nil {
		api.POST("/bootstrap", cfg.AuthMiddleware.RequireBotSecret(), cfg.AuthHandler.Bootstrap)
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// User (Me)
	if h := cfg.UserHandler; h != nil {
		protected.GET("/me", h.GetMe)
		protected.DELETE("/me", h.DeleteMe)
		protected.PATCH("/me/profile", h.UpdateProfile)
		protected.GET("/me/settings", h.GetSettings)
		protected.PATCH("/me/settings", h.PatchSettings)
		protected.GET("/me/progress", h.Progress)
		protected.GET("/me/progress/card.png", h.ProgressCard)
		protected.POST("/me/scores/recalculate", h.RecalculateScores)
		protected.GET("/me/weekly-report", h.WeeklyReport)
		protected.POST("/cleanup/history", h.CleanupHistory)
	}

	// Tasks
	if h := cfg.TaskHandler; h != nil {
		protected.POST("/tasks", h.Create)
		protected.GET("/tasks", h.List)
		protected.POST("/tasks/quick", h.Quick)
		protected.POST("/tasks/:id/complete", h.Complete)
		protected.DELETE("/tasks/:id", h.Delete)
	}

	// Habits
	if h := cfg.HabitHandler; h != nil {
		protected.POST("/habits", h.Create)
		protected.GET("/habits", h.List)
		protected.GET("/habits/weekly", h.Weekly)
		protected.POST("/habits/:id/check", h.Check)
		protected.POST("/habits/:id/freeze", h.Freeze)
	}

	// Journal
	if h := cfg.JournalHandler; h != nil {
		protected.POST("/journal", h.Create)
		protected.GET("/journal", h.List)
		protected.GET("/journal/:id/related", h.Related)
		protected.DELETE("/journal/:id", h.Delete)
	}

	// Achievements
	if h := cfg.AchievementHandler; h != nil {
		protected.GET("/achievements", h.Mine)
		protected.GET("/achievements/catalog", h.Catalog)
	}

	// Mentor
	if h := cfg.MentorHandler; h != nil {
		protected.POST("/mentor/chat", h.Chat)
		protected.GET("/mentor/today-plan", h.TodayPlan)
	}

	// Learning + playlists
	if h := cfg.LibraryHandler; h != nil {
		protected.GET("/learning", h.ListResources)
		protected.POST("/learning", h.AddResource)
		protected.GET("/learning/suggest", h.Suggest)
		protected.POST("/learning/:id/done", h.MarkDone)
		protected.GET("/playlists", h.ListPlaylists)
		protected.POST("/playlists", h.CreatePlaylist)
		protected.GET("/playlists/:id/tracks", h.ListTracks)
		protected.POST("/playlists/:id/tracks", h.AddTrack)
		protected.DELETE("/playlists/:id", h.DeletePlaylist)
	}

	return r
}
