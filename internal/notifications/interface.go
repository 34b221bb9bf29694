package notifications

import "github.com/tradeoracle/signal-bot/internal/format"

// Notifier defines the interface for operational alert services
type Notifier interface {
	// SendAlert sends an alert with the specified level and message
	SendAlert(level, message string) error
}

// SignalSender delivers a rendered trading signal to a channel
type SignalSender interface {
	// SendSignal posts a Markdown-formatted signal message
	SendSignal(message string) error
}

// PayloadSender forwards the machine-readable payload of a signal
type PayloadSender interface {
	// SendPayload posts the webhook body for one signal
	SendPayload(payload format.WebhookPayload) error
}
