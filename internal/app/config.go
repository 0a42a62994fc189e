package app

import (
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/mentor-backend/internal/clients/llm"
	"github.com/yungbote/mentor-backend/internal/observability"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
	"github.com/yungbote/mentor-backend/internal/reminders"
	"github.com/yungbote/mentor-backend/internal/temporalx"
	"github.com/yungbote/mentor-backend/internal/utils"
)

type Config struct {
	HTTPAddr    string
	CORSOrigins []string

	DBDriver   string
	SQLitePath string

	JWTSecretKey   string
	AccessTokenTTL time.Duration
	BotAPISecret   string

	DefaultTimezone string

	ReminderTick     time.Duration
	ReminderDedupMax int
	RedisAddr        string
	RedisPassword    string
	RedisDB          int

	ScoreWindowDays int
	MaintenanceHour int
	MaintenanceTick time.Duration

	MaxBotToken      string
	ProgressCardFont string

	LLMPrimary  llm.Config
	LLMFallback llm.Config
	LLMTimeout  time.Duration

	MetricsAddr string
	Otel        observability.OtelConfig
	Temporal    temporalx.Config
}

// LoadEnvFile loads .env when present. A missing file is not an error.
func LoadEnvFile(log *logger.Logger) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded", "error", err)
	}
}

func LoadConfig(log *logger.Logger) Config {
	llmTimeout := time.Duration(utils.GetEnvAsInt("LLM_TIMEOUT_SECONDS", 35, log)) * time.Second
	llmRetries := utils.GetEnvAsInt("LLM_MAX_RETRIES", 1, log)

	return Config{
		HTTPAddr:    utils.GetEnv("HTTP_ADDR", ":8080", log),
		CORSOrigins: splitList(utils.GetEnv("CORS_ORIGINS", "", log)),

		DBDriver:   strings.ToLower(utils.GetEnv("DB_DRIVER", "postgres", log)),
		SQLitePath: utils.GetEnv("SQLITE_PATH", "mentor.db", log),

		JWTSecretKey:   utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL: time.Duration(utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 30*24*3600, log)) * time.Second,
		BotAPISecret:   utils.GetEnv("BOT_API_SECRET", "", log),

		DefaultTimezone: utils.GetEnv("DEFAULT_TIMEZONE", "Europe/Moscow", log),

		ReminderTick:     time.Duration(max(1, utils.GetEnvAsInt("REMINDER_TICK_SECONDS", 60, log))) * time.Second,
		ReminderDedupMax: utils.GetEnvAsInt("REMINDER_DEDUP_MAX", reminders.DefaultDedupMax, log),
		RedisAddr:        utils.GetEnv("REDIS_ADDR", "", log),
		RedisPassword:    utils.GetEnv("REDIS_PASSWORD", "", log),
		RedisDB:          utils.GetEnvAsInt("REDIS_DB", 0, log),

		ScoreWindowDays: utils.GetEnvAsInt("SCORE_WINDOW_DAYS", 7, log),
		MaintenanceHour: utils.GetEnvAsInt("MAINTENANCE_HOUR", 3, log),
		MaintenanceTick: time.Duration(max(60, utils.GetEnvAsInt("MAINTENANCE_TICK_SECONDS", 900, log))) * time.Second,

		MaxBotToken:      utils.GetEnv("MAX_BOT_TOKEN", "", log),
		ProgressCardFont: utils.GetEnv("PROGRESS_CARD_FONT", "", log),

		LLMPrimary:  loadLLMConfig(log, "LLM_PRIMARY", "primary", llmTimeout, llmRetries),
		LLMFallback: loadLLMConfig(log, "LLM_FALLBACK", "fallback", llmTimeout, llmRetries),
		LLMTimeout:  llmTimeout,

		MetricsAddr: utils.GetEnv("METRICS_ADDR", ":9090", log),
		Otel: observability.OtelConfig{
			Enabled:     utils.GetEnvAsBool("OTEL_ENABLED", false, log),
			ServiceName: utils.GetEnv("OTEL_SERVICE_NAME", "mentor-backend", log),
			Environment: utils.GetEnv("OTEL_ENVIRONMENT", "development", log),
			Version:     utils.GetEnv("OTEL_SERVICE_VERSION", "", log),
			Endpoint:    utils.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     observability.ParseHeaders(utils.GetEnv("OTEL_EXPORTER_OTLP_HEADERS", "", log)),
			Insecure:    utils.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			SampleRatio: parseRatio(utils.GetEnv("OTEL_SAMPLE_RATIO", "1", log)),
		},
		Temporal: temporalx.LoadConfig(log),
	}
}

func loadLLMConfig(log *logger.Logger, prefix, name string, timeout time.Duration, retries int) llm.Config {
	return llm.Config{
		Name:       name,
		BaseURL:    utils.GetEnv(prefix+"_BASE_URL", "", log),
		APIKey:     utils.GetEnv(prefix+"_API_KEY", "", log),
		Model:      utils.GetEnv(prefix+"_MODEL", "", log),
		Referer:    utils.GetEnv("LLM_REFERER", "", log),
		Timeout:    timeout,
		MaxRetries: retries,
	}
}

func parseRatio(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 1
	}
	return observability.ClampRatio(v)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
