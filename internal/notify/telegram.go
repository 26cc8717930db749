// Package notify delivers report payloads to the external notification
// channel. Delivery is fire-and-forget: failures are reported to the
// caller for logging but never retried, and a send never blocks the
// session loop beyond a short timeout.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Sink is the notification boundary the session writes to.
type Sink interface {
	Send(ctx context.Context, text string) error
}

// TelegramConfig configures the bot API client.
type TelegramConfig struct {
	BotToken string
	ChatID   string
	BaseURL  string        // default https://api.telegram.org, overridable in tests
	Timeout  time.Duration // per-send budget, default 1s
	Burst    int           // limiter burst, default 5
	PerSec   float64       // sustained sends per second, default 1
}

// Telegram sends HTML-formatted messages via the bot sendMessage endpoint.
type Telegram struct {
	cfg        TelegramConfig
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewTelegram builds the sink. The rate limiter keeps report bursts under
// the bot API's per-chat ceiling.
func NewTelegram(cfg TelegramConfig) *Telegram {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.telegram.org"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.PerSec <= 0 {
		cfg.PerSec = 1
	}
	return &Telegram{
		cfg:        cfg,
		url:        fmt.Sprintf("%s/bot%s/sendMessage", cfg.BaseURL, cfg.BotToken),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.PerSec), cfg.Burst),
	}
}

type sendMessageBody struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Send posts one message. A non-200 status or transport error is returned
// for the caller to log; there is no retry and no queueing.
func (t *Telegram) Send(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram rate limit: %w", err)
	}

	payload, err := json.Marshal(sendMessageBody{
		ChatID:    t.cfg.ChatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return fmt.Errorf("marshal telegram message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram status %d: %s", resp.StatusCode, body)
	}
	return nil
}
