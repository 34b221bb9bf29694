package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	apperrors "github.com/tradeoracle/signal-bot/internal/errors"
	"github.com/tradeoracle/signal-bot/internal/format"
)

// WebhookNotifier forwards signal payloads to an external consumer as JSON.
// A notifier with an empty URL is a no-op, so callers never branch on
// configuration.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether a target URL is set.
func (w *WebhookNotifier) Configured() bool {
	return w.url != ""
}

// SendPayload posts the payload as a JSON body.
func (w *WebhookNotifier) SendPayload(payload format.WebhookPayload) error {
	if !w.Configured() {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.NewNotificationError("webhook", "marshal", err)
	}

	resp, err := w.client.Post(w.url, "application/json", bytes.NewReader(body))
	if err != nil {
		if os.IsTimeout(err) {
			return apperrors.NewTimeoutError("webhook", "send", err)
		}
		return apperrors.NewNetworkError("webhook", "send", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.NewNotificationError("webhook", "send",
			fmt.Errorf("webhook returned status %d", resp.StatusCode))
	}

	return nil
}
