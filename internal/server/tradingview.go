package server

import (
	"strconv"
	"strings"
	"time"
)

// TradingViewAlert is the normalized form of an inbound TradingView alert.
// Alert templates differ between indicator and strategy alerts, so the
// mapper accepts both key sets.
type TradingViewAlert struct {
	Action    string   `json:"action"`
	Symbol    string   `json:"symbol"`
	Price     float64  `json:"price"`
	Timeframe string   `json:"timeframe"`
	TP1       *float64 `json:"tp1,omitempty"`
	TP2       *float64 `json:"tp2,omitempty"`
	TP3       *float64 `json:"tp3,omitempty"`
	SL        *float64 `json:"sl,omitempty"`
	Comment   string   `json:"comment,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// AlertFromTradingView maps a raw alert body onto the normalized form.
// Strategy alerts carry "strategy.order.action" and "ticker"; manual
// templates use "action" and "symbol". Missing timeframes default to M5.
func AlertFromTradingView(data map[string]interface{}) TradingViewAlert {
	alert := TradingViewAlert{
		Action:    stringField(data, "action", "strategy.order.action"),
		Symbol:    stringField(data, "ticker", "symbol"),
		Price:     floatField(data, "close", "price"),
		Timeframe: stringField(data, "interval", "timeframe"),
		TP1:       optionalFloat(data, "tp1"),
		TP2:       optionalFloat(data, "tp2"),
		TP3:       optionalFloat(data, "tp3"),
		SL:        optionalFloat(data, "sl"),
		Comment:   stringField(data, "comment"),
		Timestamp: stringField(data, "time"),
	}
	if alert.Timeframe == "" {
		alert.Timeframe = "M5"
	}
	if alert.Timestamp == "" {
		alert.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return alert
}

// Direction maps the alert action onto LONG or SHORT. Anything that is
// not a buy reads as SHORT, matching how strategy alerts emit "sell" for
// both exits and short entries.
func (a TradingViewAlert) Direction() string {
	switch strings.ToLower(a.Action) {
	case "buy", "long":
		return "LONG"
	default:
		return "SHORT"
	}
}

// HasLevels reports whether the alert template computed its own targets.
func (a TradingViewAlert) HasLevels() bool {
	return a.TP1 != nil || a.SL != nil
}

// Instruction renders the alert as a text instruction for the pipeline,
// used when the alert carries no levels of its own.
func (a TradingViewAlert) Instruction() string {
	instruction := a.Direction() + " " + a.Symbol + " " + a.Timeframe
	if a.Price > 0 {
		instruction += " @" + trimFloat(a.Price)
	}
	return instruction
}

// Message renders the Telegram broadcast for a relayed alert.
func (a TradingViewAlert) Message(signature string) string {
	direction := a.Direction()
	emoji := "🟢"
	if direction == "SHORT" {
		emoji = "🔴"
	}

	var sb strings.Builder
	sb.WriteString(emoji + " *" + direction + " " + a.Symbol + "*\n")
	sb.WriteString("━━━━━━━━━━━━━━━━━━━━\n")
	sb.WriteString("⏱️ Timeframe: `" + a.Timeframe + "`\n")
	sb.WriteString("💵 Entry: `" + trimFloat(a.Price) + "`\n")

	if a.TP1 != nil {
		sb.WriteString("\n🎯 *Targets:*\n")
		sb.WriteString("├─ TP1: `" + trimFloat(*a.TP1) + "`\n")
		if a.TP2 != nil {
			sb.WriteString("├─ TP2: `" + trimFloat(*a.TP2) + "`\n")
		}
		if a.TP3 != nil {
			sb.WriteString("└─ TP3: `" + trimFloat(*a.TP3) + "`\n")
		}
	}
	if a.SL != nil {
		sb.WriteString("\n🛡️ Stop Loss: `" + trimFloat(*a.SL) + "`\n")
	}
	if a.Comment != "" {
		sb.WriteString("\n📝 " + a.Comment + "\n")
	}

	sb.WriteString("\n⏰ " + a.Timestamp + "\n")
	sb.WriteString(signature)
	return sb.String()
}

func stringField(data map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := data[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// floatField reads the first present key as a number. TradingView emits
// numbers, but hand-written templates sometimes quote them.
func floatField(data map[string]interface{}, keys ...string) float64 {
	for _, key := range keys {
		v, ok := data[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case string:
			if f, err := strconv.ParseFloat(strings.ReplaceAll(n, ",", ""), 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func optionalFloat(data map[string]interface{}, key string) *float64 {
	if _, ok := data[key]; !ok {
		return nil
	}
	f := floatField(data, key)
	return &f
}

func trimFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
