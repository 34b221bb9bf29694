package telegram

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/tradeoracle/signal-bot/internal/errors"
	"github.com/tradeoracle/signal-bot/internal/journal"
	"github.com/tradeoracle/signal-bot/pkg/rules"
)

const welcomeMessage = `🤖 *TradeOracle Signal Bot*

Welcome! Send a signal in the format:
` + "`LONG BTCUSD M5`" + `
` + "`SHORT GOLD M1`" + `
` + "`BUY ETH H1 @2450`" + `

*Commands:*
/help - Detailed help
/assets - Available assets
/stats - Statistics

🚀 Ready to trade!`

const helpMessage = `📚 *User Guide*

*Basic format:*
` + "`[DIRECTION] [ASSET] [TIMEFRAME]`" + `

*Directions:* LONG, SHORT, BUY, SELL
*Assets:* BTCUSD, GOLD, ETHUSDT, EURUSD...
*Timeframes:* M1, M5, M15, H1, H4

*Optional price:*
` + "`LONG BTCUSD M5 @65000`" + `

*Examples:*
• ` + "`LONG BTCUSD M5`" + `
• ` + "`SHORT GOLD M1`" + `
• ` + "`BUY ETH 15M @2450`" + `
• ` + "`sell nasdaq h1`"

// assetsMessage lists every configured asset with its timeframes.
func assetsMessage(table *rules.Table) string {
	var sb strings.Builder
	sb.WriteString("📊 *Available assets:*\n\n")
	for _, asset := range table.Assets() {
		sb.WriteString(fmt.Sprintf("• `%s` (%s)\n",
			asset, strings.Join(table.Timeframes(asset), ", ")))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// statsMessage renders the runtime counters, the error breakdown and, when
// available, the journal totals.
func statsMessage(s Stats, errsByCategory map[apperrors.ErrorCategory]int, js *journal.Stats) string {
	last := "None"
	if !s.LastSignal.IsZero() {
		last = s.LastSignal.UTC().Format("2006-01-02 15:04:05")
	}

	var sb strings.Builder
	sb.WriteString("📈 *Statistics*\n\n")
	sb.WriteString(fmt.Sprintf("Signals sent: %d\n", s.SignalsSent))
	sb.WriteString(fmt.Sprintf("Errors: %d\n", s.Errors))
	sb.WriteString(fmt.Sprintf("Last signal: %s", last))

	if len(errsByCategory) > 0 {
		categories := make([]string, 0, len(errsByCategory))
		for category := range errsByCategory {
			categories = append(categories, string(category))
		}
		sort.Strings(categories)
		sb.WriteString("\n\n*Errors by category:*")
		for _, category := range categories {
			sb.WriteString(fmt.Sprintf("\n• %s: %d",
				category, errsByCategory[apperrors.ErrorCategory(category)]))
		}
	}

	if js != nil && js.Total > 0 {
		sb.WriteString(fmt.Sprintf("\n\n*Journal:*\nRecorded: %d (🟢 %d / 🔴 %d)",
			js.Total, js.Long, js.Short))
		if js.Wins+js.Losses > 0 {
			sb.WriteString(fmt.Sprintf("\nWin rate: %.1f%% (%dW/%dL, %d pending)",
				js.WinRate, js.Wins, js.Losses, js.Pending))
		}
	}
	return sb.String()
}
