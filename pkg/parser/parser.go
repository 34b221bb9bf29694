// Package parser turns free-text trading instructions such as
// "LONG BTCUSD M5" or "🔴 GOLD 15M @2345.5" into normalized signals using a
// rule table's alias vocabulary. Parsing is a pure function of the input
// text and the table.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tradeoracle/signal-bot/pkg/rules"
)

// Signal is a normalized trading instruction. EntryPrice is nil unless the
// message carried an explicit @price. Original and ParsedAt exist for audit;
// two parses of the same text differ only in ParsedAt.
type Signal struct {
	Direction  string    `json:"direction"`
	Asset      string    `json:"asset"`
	Timeframe  string    `json:"timeframe"`
	EntryPrice *float64  `json:"entry_price,omitempty"`
	Original   string    `json:"original"`
	ParsedAt   time.Time `json:"parsed_at"`
}

var (
	// directionClean strips everything but word characters and the two
	// direction glyphs, so "LONG:" and "🟢" both survive cleaning.
	directionClean = regexp.MustCompile(`[^\w🟢🔴]`)
	tokenClean     = regexp.MustCompile(`[^\w]`)
	// timeframePattern matches letter-digit shapes (M5), digit-letter
	// shapes (5M, 15MIN) and bare minute counts (5).
	timeframePattern = regexp.MustCompile(`\b([MHD]\d+|\d+[MHD]|\d+MIN?|\d+)\b`)
	pricePattern     = regexp.MustCompile(`@\s*([\d.,]+)`)
)

// Parse extracts a normalized signal from a free-text instruction. It
// returns an *Error with a machine-readable Kind when any component cannot
// be resolved or the timeframe is not configured for the asset.
func Parse(text string, table *rules.Table) (*Signal, error) {
	normalized := strings.ToUpper(strings.TrimSpace(text))

	direction, ok := extractDirection(normalized, table)
	if !ok {
		return nil, NewError(KindNoDirection, "direction not found: use LONG/SHORT/BUY/SELL")
	}

	asset, ok := extractAsset(normalized, table)
	if !ok {
		return nil, NewError(KindNoAsset, "asset not recognized: available %s",
			strings.Join(table.Assets(), ", "))
	}

	timeframe, ok := extractTimeframe(normalized, table)
	if !ok {
		return nil, NewError(KindNoTimeframe, "timeframe not found: use M1/M5/M15/H1/H4")
	}

	if !table.HasTimeframe(asset, timeframe) {
		return nil, NewError(KindUnsupportedTimeframe,
			"timeframe %s not configured for %s: available %s",
			timeframe, asset, strings.Join(table.Timeframes(asset), ", "))
	}

	return &Signal{
		Direction:  direction,
		Asset:      asset,
		Timeframe:  timeframe,
		EntryPrice: extractPrice(normalized),
		Original:   text,
		ParsedAt:   time.Now().UTC(),
	}, nil
}

// extractDirection scans the first three tokens only: instructions lead with
// the direction, and later tokens may collide with direction aliases.
func extractDirection(message string, table *rules.Table) (string, bool) {
	words := strings.Fields(message)
	if len(words) > 3 {
		words = words[:3]
	}
	for _, word := range words {
		clean := directionClean.ReplaceAllString(word, "")
		if direction, ok := table.Direction(clean); ok {
			return direction, true
		}
	}
	return "", false
}

func extractAsset(message string, table *rules.Table) (string, bool) {
	// Token pass first. @ counts as a separator so "BTC@65000" still
	// yields a clean asset token.
	for _, word := range strings.Fields(strings.ReplaceAll(message, "@", " ")) {
		clean := tokenClean.ReplaceAllString(word, "")
		if asset, ok := table.Asset(clean); ok {
			return asset, true
		}
	}

	// Substring pass, longest alias first, so BTCUSD wins over BTC.
	for _, alias := range table.AssetAliasesByLength() {
		if strings.Contains(message, alias) {
			return table.Asset(alias)
		}
	}
	return "", false
}

func extractTimeframe(message string, table *rules.Table) (string, bool) {
	// Shaped matches are checked in order of appearance; the first one the
	// table knows wins.
	for _, match := range timeframePattern.FindAllString(message, -1) {
		if tf, ok := table.Timeframe(match); ok {
			return tf, true
		}
	}

	// Plain token pass catches aliases the shape pattern misses.
	for _, word := range strings.Fields(message) {
		clean := tokenClean.ReplaceAllString(word, "")
		if tf, ok := table.Timeframe(clean); ok {
			return tf, true
		}
	}
	return "", false
}

// extractPrice pulls an explicit @price out of the message. A malformed
// literal yields no price rather than an error; callers fall back to their
// price source.
func extractPrice(message string) *float64 {
	m := pricePattern.FindStringSubmatch(message)
	if m == nil {
		return nil
	}
	raw := strings.ReplaceAll(m[1], ",", "")
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &price
}
