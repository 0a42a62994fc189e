package reminders

import (
	"context"

	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

// LogSender writes reminders to the log. Used when no bot token is configured.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log.With("component", "LogSender")}
}

func (s *LogSender) Send(_ context.Context, chatID int64, text string) error {
	s.log.Info("reminder", "chat_id", chatID, "text", text)
	return nil
}
