package notifications

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/tradeoracle/signal-bot/internal/errors"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramNotifier posts alerts and signals to a Telegram chat through the
// plain HTTP API. It is used by the webhook server and health monitor; the
// interactive bot has its own long-polling client.
type TelegramNotifier struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
}

func NewTelegramNotifier(token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		token:   token,
		chatID:  chatID,
		baseURL: telegramAPIBase,
		client:  http.DefaultClient,
	}
}

// Configured reports whether both token and chat are set.
func (t *TelegramNotifier) Configured() bool {
	return t.token != "" && t.chatID != ""
}

// SendAlert posts an operational alert with a level emoji prefix.
func (t *TelegramNotifier) SendAlert(level, message string) error {
	emoji := "ℹ️"
	switch level {
	case "warning":
		emoji = "⚠️"
	case "error":
		emoji = "🚨"
	case "success":
		emoji = "✅"
	}

	text := fmt.Sprintf("%s *Signal Bot Alert*\n\n%s", emoji, message)
	return t.send(text)
}

// SendSignal posts a rendered signal message as-is.
func (t *TelegramNotifier) SendSignal(message string) error {
	return t.send(message)
}

func (t *TelegramNotifier) send(text string) error {
	if !t.Configured() {
		return apperrors.NewCredentialsError("telegram", "send",
			"bot token or chat id not configured")
	}

	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)

	data := url.Values{}
	data.Set("chat_id", t.chatID)
	data.Set("text", text)
	data.Set("parse_mode", "Markdown")

	resp, err := t.client.Post(apiURL, "application/x-www-form-urlencoded",
		strings.NewReader(data.Encode()))
	if err != nil {
		return apperrors.NewNetworkError("telegram", "send", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewNotificationError("telegram", "send",
			fmt.Errorf("telegram API returned status %d", resp.StatusCode))
	}

	return nil
}
