// Package format renders signal results into Telegram Markdown, plain text
// and the outgoing webhook payload. Rendering is presentation only; all
// numbers arrive pre-calculated on the Result.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tradeoracle/signal-bot/pkg/rules"
	"github.com/tradeoracle/signal-bot/pkg/signal"
)

// Message style names accepted by New.
const (
	StyleStandard = "standard"
	StyleCompact  = "compact"
	StylePremium  = "premium"
	StyleMinimal  = "minimal"
)

// DefaultSignature is appended to standard and premium messages unless the
// formatter is configured with its own.
const DefaultSignature = "🤖 TradeOracle Signal Bot"

const timestampLayout = "02/01/2006 15:04:05"

// Display decimals per asset; unknown assets render with two.
var priceDecimals = map[string]int{
	"BTCUSD":  2,
	"ETHUSDT": 2,
	"XAUUSD":  2,
	"EURUSD":  5,
	"GBPUSD":  5,
	"AUDUSD":  5,
	"USDCAD":  5,
	"USDCHF":  5,
	"USDJPY":  3,
	"US30":    1,
	"NAS100":  1,
	"SPX500":  1,
}

// Targets carries the three take-profit prices of a webhook payload.
type Targets struct {
	TP1 float64 `json:"tp1"`
	TP2 float64 `json:"tp2"`
	TP3 float64 `json:"tp3"`
}

// WebhookPayload is the JSON body posted to downstream webhook consumers.
type WebhookPayload struct {
	Action     string  `json:"action"`
	Symbol     string  `json:"symbol"`
	Timeframe  string  `json:"timeframe"`
	Price      float64 `json:"price"`
	Targets    Targets `json:"targets"`
	StopLoss   float64 `json:"stoploss"`
	RiskReward float64 `json:"risk_reward"`
	Timestamp  string  `json:"timestamp"`
}

// Formatted bundles every rendering of one result.
type Formatted struct {
	Message   string
	PlainText string
	Payload   WebhookPayload
}

// Formatter renders results in one configured style. It is stateless after
// construction and safe for concurrent use.
type Formatter struct {
	style     string
	signature string
}

// New builds a formatter. Unknown style names fall back to standard; an
// empty signature falls back to the default.
func New(style, signature string) *Formatter {
	switch style {
	case StyleStandard, StyleCompact, StylePremium, StyleMinimal:
	default:
		style = StyleStandard
	}
	if signature == "" {
		signature = DefaultSignature
	}
	return &Formatter{style: style, signature: signature}
}

// Styles lists the accepted style names.
func Styles() []string {
	return []string{StyleStandard, StyleCompact, StylePremium, StyleMinimal}
}

// Style returns the formatter's configured style name.
func (f *Formatter) Style() string { return f.style }

// Format renders one result into all delivery shapes.
func (f *Formatter) Format(res *signal.Result) *Formatted {
	message := f.render(res)
	return &Formatted{
		Message:   message,
		PlainText: stripMarkdown(message),
		Payload:   Payload(res),
	}
}

func (f *Formatter) render(res *signal.Result) string {
	emoji := directionEmoji(res.Direction)
	entry := FormatPrice(res.Entry, res.Asset)
	tp1 := FormatPrice(res.TP1, res.Asset)
	tp2 := FormatPrice(res.TP2, res.Asset)
	tp3 := FormatPrice(res.TP3, res.Asset)
	sl := FormatPrice(res.SL, res.Asset)
	tp1Dist := FormatDistance(res.TP1Distance, res.Unit, false)
	tp2Dist := FormatDistance(res.TP2Distance, res.Unit, false)
	tp3Dist := FormatDistance(res.TP3Distance, res.Unit, false)
	slDist := FormatDistance(res.SLDistance, res.Unit, true)
	rr := formatFloat(res.RiskReward)
	timestamp := res.GeneratedAt.Format(timestampLayout)

	var message string
	switch f.style {
	case StyleCompact:
		message = fmt.Sprintf(compactTemplate,
			emoji, res.Direction, res.Asset, res.Timeframe,
			entry, tp1, tp2, tp3, sl, rr)
	case StylePremium:
		message = fmt.Sprintf(premiumTemplate,
			emoji, res.Direction, emoji,
			res.Asset, res.Timeframe,
			entry,
			tp1, tp1Dist, tp2, tp2Dist, tp3, tp3Dist,
			sl, slDist,
			rr, timestamp, f.signature)
	case StyleMinimal:
		message = fmt.Sprintf(minimalTemplate,
			emoji, res.Asset, res.Timeframe,
			entry, tp1, tp2, tp3, sl)
	default:
		message = fmt.Sprintf(standardTemplate,
			emoji, res.Direction, res.Asset,
			res.Timeframe, entry,
			tp1, tp1Dist, tp2, tp2Dist, tp3, tp3Dist,
			sl, slDist,
			rr, timestamp, f.signature)
	}
	return strings.TrimSpace(message)
}

const standardTemplate = `
🚀 *%s %s %s*
━━━━━━━━━━━━━━━━━━━━
⏱️ Timeframe: ` + "`%s`" + `
💵 Entry: ` + "`%s`" + `

🎯 *Targets:*
├─ TP1: ` + "`%s`" + ` (%s)
├─ TP2: ` + "`%s`" + ` (%s)
└─ TP3: ` + "`%s`" + ` (%s)

🛡️ Stop Loss: ` + "`%s`" + ` (%s)
📊 Risk/Reward: ` + "`1:%s`" + `

⏰ %s
%s
`

const compactTemplate = `
%s *%s %s* | %s
Entry: ` + "`%s`" + `
TP: ` + "`%s`" + ` → ` + "`%s`" + ` → ` + "`%s`" + `
SL: ` + "`%s`" + ` | R:R ` + "`1:%s`" + `
`

const premiumTemplate = `
╔═══════════════════════════════════╗
║  %s *SIGNAL %s* %s
╠═══════════════════════════════════╣
║  📈 *%s* | ⏱ *%s*
╠═══════════════════════════════════╣
║  💰 Entry Zone
║  └─ ` + "`%s`" + `
╠═══════════════════════════════════╣
║  🎯 Take Profits
║  ├─ TP1: ` + "`%s`" + ` ➜ %s
║  ├─ TP2: ` + "`%s`" + ` ➜ %s
║  └─ TP3: ` + "`%s`" + ` ➜ %s
╠═══════════════════════════════════╣
║  🛡️ Stop Loss
║  └─ ` + "`%s`" + ` ➜ %s
╠═══════════════════════════════════╣
║  📊 R:R Ratio: *1:%s*
╚═══════════════════════════════════╝

⏰ _%s_
%s
`

const minimalTemplate = `%s %s %s
E: %s | TP: %s/%s/%s | SL: %s`

// Payload builds the outgoing webhook body for a result.
func Payload(res *signal.Result) WebhookPayload {
	return WebhookPayload{
		Action:    strings.ToLower(res.Direction),
		Symbol:    res.Asset,
		Timeframe: res.Timeframe,
		Price:     res.Entry,
		Targets: Targets{
			TP1: res.TP1,
			TP2: res.TP2,
			TP3: res.TP3,
		},
		StopLoss:   res.SL,
		RiskReward: res.RiskReward,
		Timestamp:  res.GeneratedAt.Format(time.RFC3339),
	}
}

// FormatPrice renders a price with the asset's display decimals.
func FormatPrice(value float64, asset string) string {
	decimals, ok := priceDecimals[asset]
	if !ok {
		decimals = 2
	}
	return strconv.FormatFloat(value, 'f', decimals, 64)
}

// FormatDistance renders a signed rule-unit distance, e.g. "+3.5%",
// "-15 pips".
func FormatDistance(value float64, unit rules.Unit, negative bool) string {
	sign := "+"
	if negative {
		sign = "-"
	}
	return sign + formatFloat(value) + unitSuffix(unit)
}

func unitSuffix(unit rules.Unit) string {
	switch unit {
	case rules.UnitPips:
		return " pips"
	case rules.UnitPoints:
		return " pts"
	default:
		return "%"
	}
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func directionEmoji(direction string) string {
	if direction == rules.DirectionLong {
		return "🟢"
	}
	return "🔴"
}

func stripMarkdown(message string) string {
	return strings.NewReplacer("*", "", "`", "", "_", "").Replace(message)
}
