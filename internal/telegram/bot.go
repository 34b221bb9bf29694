// Package telegram runs the interactive bot: it receives free-text
// instructions over long polling, pushes them through the signal pipeline
// and delivers the formatted result back to the sender, the broadcast
// channel and the outbound webhook.
package telegram

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	apperrors "github.com/tradeoracle/signal-bot/internal/errors"
	"github.com/tradeoracle/signal-bot/internal/format"
	"github.com/tradeoracle/signal-bot/internal/journal"
	"github.com/tradeoracle/signal-bot/internal/logger"
	"github.com/tradeoracle/signal-bot/internal/monitoring"
	"github.com/tradeoracle/signal-bot/internal/notifications"
	"github.com/tradeoracle/signal-bot/pkg/parser"
	"github.com/tradeoracle/signal-bot/pkg/signal"
)

const pollTimeoutSeconds = 30

// Stats are the runtime counters reported by /stats.
type Stats struct {
	SignalsSent int       `json:"signals_sent"`
	Errors      int       `json:"errors"`
	LastSignal  time.Time `json:"last_signal"`
}

// Options carries the collaborators a Bot delivers through. Journal,
// Webhook, ChannelID and Health are optional.
type Options struct {
	Pipeline  *signal.Pipeline
	Formatter *format.Formatter
	Journal   *journal.Journal
	Webhook   notifications.PayloadSender
	ChannelID string
	Health    *monitoring.HealthChecker
	Logger    *zap.Logger
}

// Bot wraps the Telegram API client with the signal pipeline.
type Bot struct {
	api       *tgbotapi.BotAPI
	pipeline  *signal.Pipeline
	formatter *format.Formatter
	journal   *journal.Journal
	webhook   notifications.PayloadSender
	channelID string
	health    *monitoring.HealthChecker
	log       *zap.Logger

	mu       sync.Mutex
	stats    Stats
	errStats *apperrors.ErrorStats
}

// New connects to the Telegram API and builds the bot.
func New(token string, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return newBot(api, opts), nil
}

func newBot(api *tgbotapi.BotAPI, opts Options) *Bot {
	log := opts.Logger
	if log == nil {
		log = logger.Component("telegram")
	}
	return &Bot{
		api:       api,
		pipeline:  opts.Pipeline,
		formatter: opts.Formatter,
		journal:   opts.Journal,
		webhook:   opts.Webhook,
		channelID: opts.ChannelID,
		health:    opts.Health,
		log:       log,
		errStats:  apperrors.NewErrorStats(10),
	}
}

// Stats returns a snapshot of the runtime counters.
func (b *Bot) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// statsSnapshot copies the counters and the per-category error tally for
// the /stats reply.
func (b *Bot) statsSnapshot() (Stats, map[apperrors.ErrorCategory]int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	byCategory := make(map[apperrors.ErrorCategory]int, len(b.errStats.ErrorsByCategory))
	for category, count := range b.errStats.ErrorsByCategory {
		byCategory[category] = count
	}
	return b.stats, byCategory
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("bot started", zap.String("username", b.api.Self.UserName))
	if b.health != nil {
		b.health.SetConnected(true)
	}

	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Welcome and quick format reference"},
		tgbotapi.BotCommand{Command: "help", Description: "Detailed usage guide"},
		tgbotapi.BotCommand{Command: "assets", Description: "Available assets and timeframes"},
		tgbotapi.BotCommand{Command: "stats", Description: "Runtime statistics"},
	)); err != nil {
		b.log.Warn("could not register command list", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			if b.health != nil {
				b.health.SetConnected(false)
			}
			b.log.Info("bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}
	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}
	b.handleSignal(msg)
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.reply(msg.Chat.ID, welcomeMessage, true)
	case "help":
		b.reply(msg.Chat.ID, helpMessage, true)
	case "assets":
		b.reply(msg.Chat.ID, assetsMessage(b.pipeline.Table()), true)
	case "stats":
		var js *journal.Stats
		if b.journal != nil {
			js, _ = b.journal.ReadStats()
		}
		stats, errsByCategory := b.statsSnapshot()
		b.reply(msg.Chat.ID, statsMessage(stats, errsByCategory, js), true)
	default:
		b.log.Debug("ignoring unknown command", zap.String("command", msg.Command()))
	}
}

// handleSignal runs one instruction through the pipeline and fans the
// outcome out to the sender, the channel, the webhook and the journal.
func (b *Bot) handleSignal(msg *tgbotapi.Message) {
	started := time.Now()

	res, err := b.pipeline.Process(msg.Text)
	if err != nil {
		b.recordProcessFailure(err)
		var perr *parser.Error
		if errors.As(err, &perr) {
			monitoring.RecordParseFailure("telegram", perr.Kind.String())
		}
		b.log.Warn("could not process instruction",
			zap.String("text", msg.Text), zap.Error(err))
		b.reply(msg.Chat.ID, "❌ "+err.Error(), false)
		return
	}

	formatted := b.formatter.Format(res)
	b.recordSignal()
	monitoring.RecordSignal("telegram", res.Asset, res.Direction, time.Since(started).Seconds())
	monitoring.RecordLevels(res.Unit.String())
	monitoring.UpdateReferencePrice(res.Asset, res.Entry)
	if b.health != nil {
		b.health.RecordSignal()
	}

	b.reply(msg.Chat.ID, formatted.Message, true)

	if b.channelID != "" && b.channelID != strconv.FormatInt(msg.Chat.ID, 10) {
		if err := b.sendToChannel(formatted.Message); err != nil {
			b.recordFailure()
			monitoring.RecordDeliveryFailure("channel")
			if b.health != nil {
				b.health.AddError("channel delivery failed: " + err.Error())
			}
			b.log.Error("channel delivery failed", zap.Error(err))
		} else {
			monitoring.RecordDelivery("channel")
		}
	}

	if b.webhook != nil {
		if err := b.webhook.SendPayload(formatted.Payload); err != nil {
			b.recordFailure()
			monitoring.RecordDeliveryFailure("webhook")
			b.log.Error("webhook delivery failed", zap.Error(err))
		} else {
			monitoring.RecordDelivery("webhook")
		}
	}

	if b.journal != nil {
		if err := b.journal.Append(res); err != nil {
			b.log.Warn("could not journal signal", zap.Error(err))
		}
	}

	b.log.Info("signal delivered",
		zap.String("asset", res.Asset),
		zap.String("direction", res.Direction),
		zap.String("timeframe", res.Timeframe),
		zap.Float64("entry", res.Entry))
}

// reply answers in the chat the message came from. Error texts go out as
// plain text so Markdown-significant characters in user input cannot break
// the reply.
func (b *Bot) reply(chatID int64, text string, markdown bool) {
	m := tgbotapi.NewMessage(chatID, text)
	if markdown {
		m.ParseMode = tgbotapi.ModeMarkdown
	}
	if _, err := b.api.Send(m); err != nil {
		b.recordFailure()
		b.log.Error("reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// sendToChannel broadcasts to the configured channel, which may be a
// @username or a numeric chat ID.
func (b *Bot) sendToChannel(text string) error {
	var m tgbotapi.MessageConfig
	if id, err := strconv.ParseInt(b.channelID, 10, 64); err == nil {
		m = tgbotapi.NewMessage(id, text)
	} else {
		m = tgbotapi.NewMessageToChannel(b.channelID, text)
	}
	m.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(m)
	return err
}

func (b *Bot) recordSignal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.SignalsSent++
	b.stats.LastSignal = time.Now().UTC()
}

func (b *Bot) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Errors++
}

// recordProcessFailure counts a rejected instruction and categorizes it
// for the /stats breakdown.
func (b *Bot) recordProcessFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Errors++
	b.errStats.RecordError(apperrors.Categorize(err, "telegram", "process"))
}
