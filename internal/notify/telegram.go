package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramSender delivers notifications via the Telegram Bot API.
type TelegramSender struct {
	token   string
	chatID  string
	apiBase string // swapped in tests
	client  *http.Client
}

// NewTelegramSender creates a TelegramSender for the given bot token and chat
// ID. It uses a default HTTP client with a 10-second timeout.
func NewTelegramSender(token, chatID string) *TelegramSender {
	return &TelegramSender{
		token:   token,
		chatID:  chatID,
		apiBase: telegramAPIBase,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts a message to the configured chat via sendMessage. The title is
// rendered bold. Link previews are disabled: opportunity alerts carry listing
// URLs, and a marketplace page preview would swamp the alert text.
func (t *TelegramSender) Send(ctx context.Context, title, message string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)

	payload := map[string]any{
		"chat_id":                  t.chatID,
		"text":                     fmt.Sprintf("*%s*\n%s", title, message),
		"parse_mode":               "Markdown",
		"disable_web_page_preview": true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Name returns the sender identifier.
func (t *TelegramSender) Name() string {
	return "telegram"
}
