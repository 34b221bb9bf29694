// Package rules holds the validated, immutable rule table that drives both
// signal parsing (alias vocabulary) and level calculation (distance rules).
package rules

import (
	"sort"
	"strings"
)

// Canonical direction values used throughout the pipeline.
const (
	DirectionLong  = "LONG"
	DirectionShort = "SHORT"
)

// LevelRule holds the configured TP/SL distances for one asset timeframe.
// Distances are expressed in the rule's unit, never as absolute prices.
type LevelRule struct {
	TP1  float64 `json:"tp1"`
	TP2  float64 `json:"tp2"`
	TP3  float64 `json:"tp3"`
	SL   float64 `json:"sl"`
	Unit Unit    `json:"unit"`
}

// AssetConfig describes one tradeable asset: its alternative spellings and
// the level rules per supported timeframe.
type AssetConfig struct {
	Aliases []string             `json:"aliases,omitempty"`
	Rules   map[string]LevelRule `json:"rules"`
}

// Config is the wire shape of a rule table: canonical direction → aliases,
// timeframe alias → canonical timeframe, and asset symbol → AssetConfig.
type Config struct {
	Directions map[string][]string    `json:"directions"`
	Timeframes map[string]string      `json:"timeframes"`
	Assets     map[string]AssetConfig `json:"assets"`
}

// Table is the validated rule set shared by the parser and the level
// calculator. Build one with New, Load, LoadWorkbook or Default; it is never
// mutated afterwards and is safe for concurrent readers.
type Table struct {
	assets map[string]AssetConfig

	directionIndex map[string]string
	assetIndex     map[string]string
	assetAliases   []string
	timeframeIndex map[string]string
}

// New validates a config and builds the lookup indexes. All alias keys are
// uppercased; matching is case-insensitive everywhere.
func New(cfg Config) (*Table, error) {
	if len(cfg.Assets) == 0 {
		return nil, newConfigError("assets", "at least one asset is required")
	}

	t := &Table{
		assets:         make(map[string]AssetConfig, len(cfg.Assets)),
		directionIndex: make(map[string]string),
		assetIndex:     make(map[string]string),
		timeframeIndex: make(map[string]string),
	}

	if err := t.indexDirections(cfg.Directions); err != nil {
		return nil, err
	}
	if err := t.indexAssets(cfg.Assets); err != nil {
		return nil, err
	}
	if err := t.indexTimeframes(cfg.Timeframes); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) indexDirections(directions map[string][]string) error {
	if len(directions) == 0 {
		return newConfigError("directions", "at least one direction is required")
	}
	seen := make(map[string]bool, 2)
	for canonical, aliases := range directions {
		canonical = strings.ToUpper(strings.TrimSpace(canonical))
		if canonical != DirectionLong && canonical != DirectionShort {
			return newConfigError("directions", "unknown canonical direction %q (expected %s or %s)",
				canonical, DirectionLong, DirectionShort)
		}
		for _, alias := range append([]string{canonical}, aliases...) {
			key := strings.ToUpper(strings.TrimSpace(alias))
			if key == "" {
				return newConfigError("directions", "empty alias for %s", canonical)
			}
			if existing, ok := t.directionIndex[key]; ok && existing != canonical {
				return newConfigError("directions", "alias %q maps to both %s and %s", key, existing, canonical)
			}
			t.directionIndex[key] = canonical
		}
		seen[canonical] = true
	}
	if !seen[DirectionLong] || !seen[DirectionShort] {
		return newConfigError("directions", "both %s and %s must be configured",
			DirectionLong, DirectionShort)
	}
	return nil
}

func (t *Table) indexAssets(assets map[string]AssetConfig) error {
	for symbol, cfg := range assets {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" {
			return newConfigError("assets", "empty asset symbol")
		}
		if len(cfg.Rules) == 0 {
			return newConfigError(symbol, "no timeframe rules configured")
		}

		normalized := make(map[string]LevelRule, len(cfg.Rules))
		for tf, rule := range cfg.Rules {
			tf = strings.ToUpper(strings.TrimSpace(tf))
			if tf == "" {
				return newConfigError(symbol, "empty timeframe key")
			}
			if err := validateRule(symbol, tf, rule); err != nil {
				return err
			}
			normalized[tf] = rule
		}

		aliases := make([]string, 0, len(cfg.Aliases))
		for _, a := range cfg.Aliases {
			aliases = append(aliases, strings.ToUpper(strings.TrimSpace(a)))
		}
		t.assets[symbol] = AssetConfig{Aliases: aliases, Rules: normalized}

		// The symbol itself always resolves, listed as an alias or not.
		for _, alias := range append([]string{symbol}, aliases...) {
			if alias == "" {
				return newConfigError(symbol, "empty alias")
			}
			if existing, ok := t.assetIndex[alias]; ok && existing != symbol {
				return newConfigError("assets", "alias %q maps to both %s and %s", alias, existing, symbol)
			}
			t.assetIndex[alias] = symbol
		}
	}

	t.assetAliases = make([]string, 0, len(t.assetIndex))
	for alias := range t.assetIndex {
		t.assetAliases = append(t.assetAliases, alias)
	}
	// Longest first so substring matching prefers BTCUSD over BTC; ties
	// break lexicographically to keep results deterministic.
	sort.Slice(t.assetAliases, func(i, j int) bool {
		if len(t.assetAliases[i]) != len(t.assetAliases[j]) {
			return len(t.assetAliases[i]) > len(t.assetAliases[j])
		}
		return t.assetAliases[i] < t.assetAliases[j]
	})
	return nil
}

func validateRule(symbol, tf string, rule LevelRule) error {
	if !rule.Unit.Valid() {
		return newConfigError(symbol, "%s: unknown unit %d", tf, int(rule.Unit))
	}
	distances := []struct {
		name  string
		value float64
	}{
		{"tp1", rule.TP1},
		{"tp2", rule.TP2},
		{"tp3", rule.TP3},
		{"sl", rule.SL},
	}
	for _, d := range distances {
		if d.value < 0 {
			return newConfigError(symbol, "%s: %s distance must not be negative (got %v)", tf, d.name, d.value)
		}
	}
	return nil
}

func (t *Table) indexTimeframes(aliases map[string]string) error {
	for alias, canonical := range aliases {
		key := strings.ToUpper(strings.TrimSpace(alias))
		canonical = strings.ToUpper(strings.TrimSpace(canonical))
		if key == "" || canonical == "" {
			return newConfigError("timeframes", "empty timeframe alias or target")
		}
		if existing, ok := t.timeframeIndex[key]; ok && existing != canonical {
			return newConfigError("timeframes", "alias %q maps to both %s and %s", key, existing, canonical)
		}
		t.timeframeIndex[key] = canonical
	}

	// Every timeframe an asset configures resolves to itself, so the
	// canonical spelling always parses even when the alias map omits it.
	for _, cfg := range t.assets {
		for tf := range cfg.Rules {
			if _, ok := t.timeframeIndex[tf]; !ok {
				t.timeframeIndex[tf] = tf
			}
		}
	}
	return nil
}

// Direction resolves a token to its canonical direction
func (t *Table) Direction(token string) (string, bool) {
	d, ok := t.directionIndex[strings.ToUpper(token)]
	return d, ok
}

// Asset resolves a token to its canonical symbol
func (t *Table) Asset(token string) (string, bool) {
	a, ok := t.assetIndex[strings.ToUpper(token)]
	return a, ok
}

// AssetAliasesByLength returns every known asset alias, longest first.
// The returned slice is shared; callers must not modify it.
func (t *Table) AssetAliasesByLength() []string {
	return t.assetAliases
}

// Timeframe resolves a token to its canonical timeframe
func (t *Table) Timeframe(token string) (string, bool) {
	tf, ok := t.timeframeIndex[strings.ToUpper(token)]
	return tf, ok
}

// Rule returns the level rule configured for an asset and timeframe
func (t *Table) Rule(asset, timeframe string) (LevelRule, bool) {
	cfg, ok := t.assets[strings.ToUpper(asset)]
	if !ok {
		return LevelRule{}, false
	}
	rule, ok := cfg.Rules[strings.ToUpper(timeframe)]
	return rule, ok
}

// HasTimeframe reports whether the asset configures the timeframe
func (t *Table) HasTimeframe(asset, timeframe string) bool {
	_, ok := t.Rule(asset, timeframe)
	return ok
}

// Timeframes returns the timeframes configured for an asset in natural
// duration order (M1 before M5 before H1).
func (t *Table) Timeframes(asset string) []string {
	cfg, ok := t.assets[strings.ToUpper(asset)]
	if !ok {
		return nil
	}
	tfs := make([]string, 0, len(cfg.Rules))
	for tf := range cfg.Rules {
		tfs = append(tfs, tf)
	}
	sortTimeframes(tfs)
	return tfs
}

// Assets returns every configured asset symbol, sorted
func (t *Table) Assets() []string {
	symbols := make([]string, 0, len(t.assets))
	for s := range t.assets {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// Aliases returns the configured aliases for an asset, not including the
// symbol itself. The returned slice is shared; callers must not modify it.
func (t *Table) Aliases(asset string) []string {
	cfg, ok := t.assets[strings.ToUpper(asset)]
	if !ok {
		return nil
	}
	return cfg.Aliases
}

var timeframeRank = map[string]int{
	"M1": 0, "M5": 1, "M15": 2, "M30": 3, "H1": 4, "H4": 5, "D1": 6,
}

// RuleCount returns the number of configured asset timeframe rules.
func (t *Table) RuleCount() int {
	n := 0
	for _, cfg := range t.assets {
		n += len(cfg.Rules)
	}
	return n
}

func sortTimeframes(tfs []string) {
	sort.Slice(tfs, func(i, j int) bool {
		ri, iok := timeframeRank[tfs[i]]
		rj, jok := timeframeRank[tfs[j]]
		if iok && jok {
			return ri < rj
		}
		if iok != jok {
			return iok
		}
		return tfs[i] < tfs[j]
	})
}
