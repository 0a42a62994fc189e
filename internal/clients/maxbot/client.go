package maxbot

import (
	"context"
	"fmt"
	"strings"

	maxbot "github.com/max-messenger/max-bot-api-client-go"

	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

// Client delivers plain text messages through the MAX bot API.
type Client struct {
	log *logger.Logger
	api *maxbot.Api
}

func New(log *logger.Logger, token string) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("missing MAX_BOT_TOKEN")
	}
	api, err := maxbot.New(token)
	if err != nil {
		return nil, fmt.Errorf("init max bot api: %w", err)
	}
	return &Client{log: log.With("client", "MaxBot"), api: api}, nil
}

// BotName asks the API who we are; used once at startup to validate the token.
func (c *Client) BotName(ctx context.Context) (string, error) {
	info, err := c.api.Bots.GetBot(ctx)
	if err != nil {
		return "", fmt.Errorf("get bot info: %w", err)
	}
	return info.Name, nil
}

func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	if chatID == 0 {
		return fmt.Errorf("empty chat id")
	}
	if _, err := c.api.Messages.Send(ctx, maxbot.NewMessage().SetChat(chatID).SetText(text)); err != nil {
		return fmt.Errorf("send to chat %d: %w", chatID, err)
	}
	return nil
}
