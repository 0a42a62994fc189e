package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/mentor-backend/internal/observability"
	"github.com/yungbote/mentor-backend/internal/pkg/httpx"
	"github.com/yungbote/mentor-backend/internal/platform/ctxutil"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client talks to an OpenAI-compatible chat completions backend.
type Client interface {
	Name() string
	Chat(ctx context.Context, messages []Message, opts ...Option) (string, error)
}

type Config struct {
	Name        string
	BaseURL     string
	APIKey      string
	Model       string
	Referer     string
	Timeout     time.Duration
	MaxRetries  int
	MaxTokens   int
	Temperature float64
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.BaseURL) != "" && strings.TrimSpace(c.Model) != ""
}

type callOptions struct {
	maxTokens   int
	temperature *float64
}

type Option func(*callOptions)

func WithMaxTokens(n int) Option {
	return func(o *callOptions) { o.maxTokens = n }
}

func WithTemperature(t float64) Option {
	return func(o *callOptions) { o.temperature = &t }
}

// HTTPError carries a non-2xx backend response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300]
	}
	return fmt.Sprintf("llm http %d: %s", e.StatusCode, body)
}

func (e *HTTPError) HTTPStatusCode() int { return e.StatusCode }

var ErrEmptyResponse = errors.New("llm returned no choices")

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("llm %q: base url and model are required", cfg.Name)
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Name == "" {
		cfg.Name = "llm"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 35 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 650
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.45
	}
	return &client{
		log:        log.With("client", "LLM", "backend", cfg.Name),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *client) Name() string { return c.cfg.Name }

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

func (c *client) Chat(ctx context.Context, messages []Message, opts ...Option) (string, error) {
	ctx = ctxutil.Default(ctx)
	o := callOptions{maxTokens: c.cfg.MaxTokens}
	for _, opt := range opts {
		opt(&o)
	}
	temp := c.cfg.Temperature
	if o.temperature != nil {
		temp = *o.temperature
	}
	req := chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   o.maxTokens,
		Temperature: temp,
	}

	start := time.Now()
	var out chatResponse
	err := c.do(ctx, req, &out)
	if err != nil {
		observability.Current().ObserveLLM(c.cfg.Name, statusLabel(err), time.Since(start))
		return "", err
	}
	if len(out.Choices) == 0 {
		observability.Current().ObserveLLM(c.cfg.Name, "empty", time.Since(start))
		return "", ErrEmptyResponse
	}
	observability.Current().ObserveLLM(c.cfg.Name, "ok", time.Since(start))
	c.log.Debug("LLM response", "elapsed_ms", time.Since(start).Milliseconds())
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func (c *client) doOnce(ctx context.Context, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *client) do(ctx context.Context, body any, out any) error {
	backoff := httpx.DefaultBackoff()
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		resp, raw, err := c.doOnce(ctx, body)
		if err == nil {
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("llm decode error: %w", uErr)
			}
			return nil
		}
		if !httpx.Retryable(err) || attempt == c.cfg.MaxRetries || ctx.Err() != nil {
			return err
		}

		sleepFor := backoff.Delay(attempt, resp)
		c.log.Warn("LLM request retrying",
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleepFor):
		}
	}
	return fmt.Errorf("unreachable retry loop")
}

func statusLabel(err error) string {
	var he *HTTPError
	if errors.As(err, &he) {
		return fmt.Sprintf("%d", he.StatusCode)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "error"
}

// IsRateLimited reports a 429 from the backend.
func IsRateLimited(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.StatusCode == http.StatusTooManyRequests
}
