package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/mentor-backend/internal/clients/llm"
	"github.com/yungbote/mentor-backend/internal/clients/maxbot"
	"github.com/yungbote/mentor-backend/internal/clients/redis"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
	"github.com/yungbote/mentor-backend/internal/reminders"
)

type Clients struct {
	Redis       *goredis.Client
	Sender      reminders.Sender
	LLMPrimary  llm.Client
	LLMFallback llm.Client
}

// wireClients connects the optional outbound clients. Anything left
// unconfigured degrades to an in-process fallback instead of failing startup.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		rdb, err := redis.NewClient(log, redis.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
	}

	// MAX bot
	if strings.TrimSpace(cfg.MaxBotToken) != "" {
		bot, err := maxbot.New(log, cfg.MaxBotToken)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init max bot: %w", err)
		}
		if name, err := bot.BotName(ctx); err != nil {
			log.Warn("MAX bot token not verified (continuing)", "error", err)
		} else {
			log.Info("MAX bot ready", "bot", name)
		}
		out.Sender = bot
	} else {
		log.Warn("MAX_BOT_TOKEN not set; reminders are logged instead of delivered")
		out.Sender = reminders.NewLogSender(log)
	}

	// LLM backends
	if cfg.LLMPrimary.Enabled() {
		c, err := llm.New(log, cfg.LLMPrimary)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init primary llm: %w", err)
		}
		out.LLMPrimary = c
	}
	if cfg.LLMFallback.Enabled() {
		c, err := llm.New(log, cfg.LLMFallback)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init fallback llm: %w", err)
		}
		out.LLMFallback = c
	}
	if out.LLMPrimary == nil && out.LLMFallback == nil {
		log.Warn("No LLM backend configured; mentor replies run in degraded mode")
	}

	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

func (c *Clients) dedupStore(cfg Config) reminders.DedupStore {
	if c.Redis != nil {
		return reminders.NewRedisDedup(c.Redis, "", 0)
	}
	return reminders.NewMemoryDedup(cfg.ReminderDedupMax)
}
