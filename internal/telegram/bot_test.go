package telegram

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/tradeoracle/signal-bot/internal/format"
	"github.com/tradeoracle/signal-bot/internal/journal"
	"github.com/tradeoracle/signal-bot/internal/monitoring"
	"github.com/tradeoracle/signal-bot/internal/pricing"
	"github.com/tradeoracle/signal-bot/pkg/rules"
	"github.com/tradeoracle/signal-bot/pkg/signal"
)

// apiCall records one request the bot made against the fake Bot API.
type apiCall struct {
	method string
	values url.Values
}

// apiRecorder fakes the Telegram Bot API over httptest and records every
// call for assertions.
type apiRecorder struct {
	mu    sync.Mutex
	calls []apiCall
}

func (r *apiRecorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	_ = req.ParseForm()

	method := path.Base(req.URL.Path)
	values := url.Values{}
	for k, vs := range req.PostForm {
		values[k] = append([]string(nil), vs...)
	}

	r.mu.Lock()
	r.calls = append(r.calls, apiCall{method: method, values: values})
	r.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch method {
	case "getMe":
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Test","username":"testbot"}}`)
	default:
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":1}}`)
	}
}

// sent returns the recorded sendMessage calls.
func (r *apiRecorder) sent() []apiCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []apiCall
	for _, c := range r.calls {
		if c.method == "sendMessage" {
			out = append(out, c)
		}
	}
	return out
}

// stubPayloadSender captures webhook payloads instead of posting them.
type stubPayloadSender struct {
	mu       sync.Mutex
	payloads []format.WebhookPayload
	err      error
}

func (s *stubPayloadSender) SendPayload(p format.WebhookPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.payloads = append(s.payloads, p)
	return nil
}

func newTestBot(t *testing.T, opts Options) (*Bot, *apiRecorder) {
	t.Helper()

	rec := &apiRecorder{}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint("test-token", srv.URL+"/bot%s/%s")
	require.NoError(t, err)

	if opts.Pipeline == nil {
		opts.Pipeline = signal.NewPipeline(rules.Default(), pricing.NewStatic(nil))
	}
	if opts.Formatter == nil {
		opts.Formatter = format.New(format.StyleStandard, "")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return newBot(api, opts), rec
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}}
}

func commandUpdate(chatID int64, command string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      command,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(command)},
		},
	}}
}

// TestBot_StartCommand tests the /start welcome reply
func TestBot_StartCommand(t *testing.T) {
	bot, rec := newTestBot(t, Options{})

	bot.handleUpdate(commandUpdate(42, "/start"))

	sent := rec.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "42", sent[0].values.Get("chat_id"))
	assert.Equal(t, "Markdown", sent[0].values.Get("parse_mode"))
	assert.Contains(t, sent[0].values.Get("text"), "TradeOracle Signal Bot")
	assert.Contains(t, sent[0].values.Get("text"), "/assets")
}

// TestBot_HelpCommand tests the /help guide reply
func TestBot_HelpCommand(t *testing.T) {
	bot, rec := newTestBot(t, Options{})

	bot.handleUpdate(commandUpdate(42, "/help"))

	sent := rec.sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].values.Get("text"), "LONG, SHORT, BUY, SELL")
	assert.Contains(t, sent[0].values.Get("text"), "@65000")
}

// TestBot_AssetsCommand tests that /assets lists the rule table contents
func TestBot_AssetsCommand(t *testing.T) {
	bot, rec := newTestBot(t, Options{})

	bot.handleUpdate(commandUpdate(42, "/assets"))

	sent := rec.sent()
	require.Len(t, sent, 1)
	text := sent[0].values.Get("text")
	assert.Contains(t, text, "Available assets")
	assert.Contains(t, text, "`BTCUSD`")
	assert.Contains(t, text, "`XAUUSD`")
	assert.Contains(t, text, "M1, M5, M15, H1, H4")
}

// TestBot_StatsCommand tests the /stats counters before and after a signal
func TestBot_StatsCommand(t *testing.T) {
	bot, rec := newTestBot(t, Options{})

	bot.handleUpdate(commandUpdate(42, "/stats"))
	sent := rec.sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].values.Get("text"), "Signals sent: 0")
	assert.Contains(t, sent[0].values.Get("text"), "Last signal: None")

	bot.handleUpdate(textUpdate(42, "LONG BTCUSD M5"))
	bot.handleUpdate(commandUpdate(42, "/stats"))

	sent = rec.sent()
	statsText := sent[len(sent)-1].values.Get("text")
	assert.Contains(t, statsText, "Signals sent: 1")
	assert.NotContains(t, statsText, "Last signal: None")
}

// TestBot_StatsCommandWinRate tests the journal win-rate line in /stats
func TestBot_StatsCommandWinRate(t *testing.T) {
	j := journal.New(filepath.Join(t.TempDir(), "signals.xlsx"))
	bot, rec := newTestBot(t, Options{Journal: j})

	bot.handleUpdate(textUpdate(42, "LONG BTCUSD M5"))
	bot.handleUpdate(textUpdate(42, "SHORT GOLD M1"))

	fx, err := excelize.OpenFile(j.Path())
	require.NoError(t, err)
	require.NoError(t, fx.SetCellValue("Signals", "O2", "WIN"))
	require.NoError(t, fx.SetCellValue("Signals", "O3", "LOSS"))
	require.NoError(t, fx.SaveAs(j.Path()))
	require.NoError(t, fx.Close())

	bot.handleUpdate(commandUpdate(42, "/stats"))

	sent := rec.sent()
	statsText := sent[len(sent)-1].values.Get("text")
	assert.Contains(t, statsText, "Recorded: 2")
	assert.Contains(t, statsText, "Win rate: 50.0% (1W/1L, 0 pending)")
}

// TestBot_SignalReply tests the full text-to-signal reply flow
func TestBot_SignalReply(t *testing.T) {
	bot, rec := newTestBot(t, Options{})

	bot.handleUpdate(textUpdate(42, "LONG BTCUSD M5"))

	sent := rec.sent()
	require.Len(t, sent, 1)
	text := sent[0].values.Get("text")
	assert.Contains(t, text, "🟢 LONG BTCUSD")
	assert.Contains(t, text, "65650.00")
	assert.Contains(t, text, "64025.00")

	stats := bot.Stats()
	assert.Equal(t, 1, stats.SignalsSent)
	assert.Equal(t, 0, stats.Errors)
	assert.WithinDuration(t, time.Now().UTC(), stats.LastSignal, 5*time.Second)
}

// TestBot_ChannelBroadcast tests forwarding to a configured channel
func TestBot_ChannelBroadcast(t *testing.T) {
	bot, rec := newTestBot(t, Options{ChannelID: "@signals"})

	bot.handleUpdate(textUpdate(42, "SHORT XAUUSD M1"))

	sent := rec.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "42", sent[0].values.Get("chat_id"))
	assert.Equal(t, "@signals", sent[1].values.Get("chat_id"))
	assert.Equal(t, sent[0].values.Get("text"), sent[1].values.Get("text"))
}

// TestBot_ChannelSkippedForSameChat tests that the origin chat is not
// broadcast to twice
func TestBot_ChannelSkippedForSameChat(t *testing.T) {
	bot, rec := newTestBot(t, Options{ChannelID: "42"})

	bot.handleUpdate(textUpdate(42, "LONG BTCUSD M5"))

	require.Len(t, rec.sent(), 1)
}

// TestBot_WebhookForwarding tests that successful signals reach the
// payload sender
func TestBot_WebhookForwarding(t *testing.T) {
	hook := &stubPayloadSender{}
	bot, _ := newTestBot(t, Options{Webhook: hook})

	bot.handleUpdate(textUpdate(42, "BUY ETH H1 @2450"))

	require.Len(t, hook.payloads, 1)
	assert.Equal(t, "long", hook.payloads[0].Action)
	assert.Equal(t, "ETHUSDT", hook.payloads[0].Symbol)
	assert.Equal(t, 2450.0, hook.payloads[0].Price)
}

// TestBot_JournalRecording tests that processed signals land in the journal
func TestBot_JournalRecording(t *testing.T) {
	j := journal.New(filepath.Join(t.TempDir(), "signals.xlsx"))
	bot, _ := newTestBot(t, Options{Journal: j})

	bot.handleUpdate(textUpdate(42, "LONG BTCUSD M5"))
	bot.handleUpdate(textUpdate(42, "SHORT GOLD M1"))

	stats, err := j.ReadStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Long)
	assert.Equal(t, 1, stats.Short)
}

// TestBot_ParseErrorReply tests the plain-text error reply path
func TestBot_ParseErrorReply(t *testing.T) {
	bot, rec := newTestBot(t, Options{})

	bot.handleUpdate(textUpdate(42, "hello there"))

	sent := rec.sent()
	require.Len(t, sent, 1)
	assert.True(t, strings.HasPrefix(sent[0].values.Get("text"), "❌ "))
	assert.Empty(t, sent[0].values.Get("parse_mode"))

	stats := bot.Stats()
	assert.Equal(t, 0, stats.SignalsSent)
	assert.Equal(t, 1, stats.Errors)
}

// TestBot_HealthIntegration tests that processed signals mark the health
// checker
func TestBot_HealthIntegration(t *testing.T) {
	health := monitoring.NewHealthChecker()
	health.SetConnected(true)
	bot, _ := newTestBot(t, Options{Health: health})

	bot.handleUpdate(textUpdate(42, "LONG BTCUSD M5"))

	rr := httptest.NewRecorder()
	health.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "last_signal")
}

// TestBot_IgnoresNonText tests that updates without usable text are dropped
func TestBot_IgnoresNonText(t *testing.T) {
	bot, rec := newTestBot(t, Options{})

	bot.handleUpdate(tgbotapi.Update{})
	bot.handleUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: 42},
	}})

	assert.Empty(t, rec.sent())
}
