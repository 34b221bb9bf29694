package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalConfig() Config {
	return Config{
		Directions: StandardDirections(),
		Timeframes: StandardTimeframes(),
		Assets: map[string]AssetConfig{
			"BTCUSD": {
				Aliases: []string{"BTC"},
				Rules: map[string]LevelRule{
					"M5": {TP1: 1.0, TP2: 2.0, TP3: 3.5, SL: 1.5, Unit: UnitPercent},
				},
			},
		},
	}
}

// TestNew_ValidConfig tests that a well-formed config builds a table
func TestNew_ValidConfig(t *testing.T) {
	table, err := New(minimalConfig())
	require.NoError(t, err)
	require.NotNil(t, table)

	rule, ok := table.Rule("BTCUSD", "M5")
	assert.True(t, ok)
	assert.Equal(t, 1.0, rule.TP1)
	assert.Equal(t, 3.5, rule.TP3)
	assert.Equal(t, UnitPercent, rule.Unit)
	assert.Equal(t, 1, table.RuleCount())
}

// TestNew_NoAssets tests that an empty asset map is rejected
func TestNew_NoAssets(t *testing.T) {
	cfg := minimalConfig()
	cfg.Assets = nil

	_, err := New(cfg)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

// TestNew_AssetWithoutRules tests that an asset with no timeframe rules is rejected
func TestNew_AssetWithoutRules(t *testing.T) {
	cfg := minimalConfig()
	cfg.Assets["EMPTY"] = AssetConfig{Aliases: []string{"E"}}

	_, err := New(cfg)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "no timeframe rules")
}

// TestNew_NegativeDistance tests that negative TP/SL distances fail fast
func TestNew_NegativeDistance(t *testing.T) {
	cfg := minimalConfig()
	cfg.Assets["BTCUSD"] = AssetConfig{
		Rules: map[string]LevelRule{
			"M5": {TP1: -1.0, TP2: 2.0, TP3: 3.0, SL: 1.0, Unit: UnitPercent},
		},
	}

	_, err := New(cfg)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "must not be negative")
}

// TestNew_UnknownUnit tests that an out-of-range unit value fails fast
func TestNew_UnknownUnit(t *testing.T) {
	cfg := minimalConfig()
	cfg.Assets["BTCUSD"] = AssetConfig{
		Rules: map[string]LevelRule{
			"M5": {TP1: 1.0, TP2: 2.0, TP3: 3.0, SL: 1.0, Unit: Unit(42)},
		},
	}

	_, err := New(cfg)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "unknown unit")
}

// TestNew_DuplicateAssetAlias tests that one alias cannot map to two symbols
func TestNew_DuplicateAssetAlias(t *testing.T) {
	cfg := minimalConfig()
	cfg.Assets["XBTUSD"] = AssetConfig{
		Aliases: []string{"BTC"}, // already claimed by BTCUSD
		Rules: map[string]LevelRule{
			"M5": {TP1: 1.0, TP2: 2.0, TP3: 3.0, SL: 1.0, Unit: UnitPercent},
		},
	}

	_, err := New(cfg)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "maps to both")
}

// TestNew_DuplicateDirectionAlias tests that one token cannot mean LONG and SHORT
func TestNew_DuplicateDirectionAlias(t *testing.T) {
	cfg := minimalConfig()
	cfg.Directions = map[string][]string{
		DirectionLong:  {"LONG", "BUY"},
		DirectionShort: {"SHORT", "BUY"},
	}

	_, err := New(cfg)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "maps to both")
}

// TestNew_UnknownCanonicalDirection tests that directions other than LONG/SHORT are rejected
func TestNew_UnknownCanonicalDirection(t *testing.T) {
	cfg := minimalConfig()
	cfg.Directions = map[string][]string{"HOLD": {"H"}}

	_, err := New(cfg)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

// TestNew_MissingDirection tests that both LONG and SHORT must be configured
func TestNew_MissingDirection(t *testing.T) {
	cfg := minimalConfig()
	cfg.Directions = map[string][]string{DirectionLong: {"BUY"}}

	_, err := New(cfg)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "both LONG and SHORT")
}

// TestNew_ConflictingTimeframeAlias tests that a timeframe alias cannot point two ways
func TestNew_ConflictingTimeframeAlias(t *testing.T) {
	cfg := minimalConfig()
	cfg.Timeframes = map[string]string{"5": "M5"}

	table, err := New(cfg)
	require.NoError(t, err)
	tf, ok := table.Timeframe("5")
	assert.True(t, ok)
	assert.Equal(t, "M5", tf)

	cfg.Timeframes = map[string]string{"5": "M5", "05": "M5"}
	_, err = New(cfg)
	require.NoError(t, err) // two aliases to one canonical is fine

	// the same alias key cannot appear twice in a Go map, so conflicts can
	// only come from normalization collapsing two keys into one
	cfg.Timeframes = map[string]string{"h1": "H1", "H1": "M5"}
	_, err = New(cfg)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "maps to both")
}

// TestTable_SameTextAcrossCategories tests that an alias may repeat across categories
func TestTable_SameTextAcrossCategories(t *testing.T) {
	cfg := minimalConfig()
	// "L" is a LONG alias; the same text as an asset alias must be legal.
	cfg.Assets["LTCUSD"] = AssetConfig{
		Aliases: []string{"L"},
		Rules: map[string]LevelRule{
			"M5": {TP1: 1.0, TP2: 2.0, TP3: 3.0, SL: 1.0, Unit: UnitPercent},
		},
	}

	table, err := New(cfg)
	require.NoError(t, err)

	direction, ok := table.Direction("L")
	assert.True(t, ok)
	assert.Equal(t, DirectionLong, direction)

	asset, ok := table.Asset("L")
	assert.True(t, ok)
	assert.Equal(t, "LTCUSD", asset)
}

// TestTable_CaseInsensitiveLookups tests that every index ignores case
func TestTable_CaseInsensitiveLookups(t *testing.T) {
	table := Default()

	direction, ok := table.Direction("buy")
	assert.True(t, ok)
	assert.Equal(t, DirectionLong, direction)

	asset, ok := table.Asset("gold")
	assert.True(t, ok)
	assert.Equal(t, "XAUUSD", asset)

	tf, ok := table.Timeframe("m15")
	assert.True(t, ok)
	assert.Equal(t, "M15", tf)
}

// TestTable_SymbolAlwaysResolves tests that the canonical symbol works without being listed as an alias
func TestTable_SymbolAlwaysResolves(t *testing.T) {
	cfg := minimalConfig()
	cfg.Assets["BTCUSD"] = AssetConfig{
		Rules: map[string]LevelRule{
			"M5": {TP1: 1.0, TP2: 2.0, TP3: 3.0, SL: 1.0, Unit: UnitPercent},
		},
	}

	table, err := New(cfg)
	require.NoError(t, err)

	asset, ok := table.Asset("BTCUSD")
	assert.True(t, ok)
	assert.Equal(t, "BTCUSD", asset)
}

// TestTable_AliasesByLength tests the longest-first ordering of the substring pass
func TestTable_AliasesByLength(t *testing.T) {
	table := Default()

	aliases := table.AssetAliasesByLength()
	require.NotEmpty(t, aliases)
	for i := 1; i < len(aliases); i++ {
		assert.GreaterOrEqual(t, len(aliases[i-1]), len(aliases[i]),
			"aliases must be sorted longest first: %q before %q", aliases[i-1], aliases[i])
	}

	// BTCUSD has to come before BTC so substring matching prefers it.
	positions := make(map[string]int, len(aliases))
	for i, a := range aliases {
		positions[a] = i
	}
	assert.Less(t, positions["BTCUSD"], positions["BTC"])
}

// TestTable_TimeframesNaturalOrder tests duration ordering of the configured list
func TestTable_TimeframesNaturalOrder(t *testing.T) {
	table := Default()

	assert.Equal(t, []string{"M1", "M5", "M15", "H1", "H4"}, table.Timeframes("BTCUSD"))
	assert.Equal(t, []string{"M5", "M15", "H1"}, table.Timeframes("EURUSD"))
	assert.Nil(t, table.Timeframes("UNKNOWN"))
}

// TestTable_CanonicalTimeframeSelfResolves tests the identity fallback for configured timeframes
func TestTable_CanonicalTimeframeSelfResolves(t *testing.T) {
	cfg := minimalConfig()
	cfg.Timeframes = map[string]string{"5": "M5"} // no "M5" key

	table, err := New(cfg)
	require.NoError(t, err)

	tf, ok := table.Timeframe("M5")
	assert.True(t, ok)
	assert.Equal(t, "M5", tf)
}

// TestDefault_Sanity tests shape and normative values of the built-in table
func TestDefault_Sanity(t *testing.T) {
	table := Default()

	assert.Equal(t,
		[]string{"BTCUSD", "ETHUSDT", "EURUSD", "GBPUSD", "NAS100", "US30", "USDJPY", "XAUUSD"},
		table.Assets())

	rule, ok := table.Rule("BTCUSD", "M5")
	require.True(t, ok)
	assert.Equal(t, LevelRule{TP1: 1.0, TP2: 2.0, TP3: 3.5, SL: 1.5, Unit: UnitPercent}, rule)

	direction, ok := table.Direction("🟢")
	assert.True(t, ok)
	assert.Equal(t, DirectionLong, direction)

	direction, ok = table.Direction("🔴")
	assert.True(t, ok)
	assert.Equal(t, DirectionShort, direction)

	assert.False(t, table.HasTimeframe("BTCUSD", "M30"))

	_, ok = table.Timeframe("M30")
	assert.True(t, ok, "M30 must resolve globally even though no asset configures it")
}

// TestParseUnit tests wire-form parsing including failures
func TestParseUnit(t *testing.T) {
	cases := []struct {
		in      string
		want    Unit
		wantErr bool
	}{
		{"%", UnitPercent, false},
		{"percent", UnitPercent, false},
		{"pips", UnitPips, false},
		{"Pips", UnitPips, false},
		{"points", UnitPoints, false},
		{" pts ", UnitPoints, false},
		{"furlongs", UnitPercent, true},
		{"", UnitPercent, true},
	}

	for _, tc := range cases {
		got, err := ParseUnit(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		assert.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

// TestUnit_JSONRoundTrip tests the wire forms survive marshal and unmarshal
func TestUnit_JSONRoundTrip(t *testing.T) {
	for _, u := range []Unit{UnitPercent, UnitPips, UnitPoints} {
		data, err := u.MarshalJSON()
		require.NoError(t, err)

		var back Unit
		require.NoError(t, back.UnmarshalJSON(data))
		assert.Equal(t, u, back)
	}

	var u Unit
	assert.Error(t, u.UnmarshalJSON([]byte(`"lightyears"`)))

	_, err := Unit(9).MarshalJSON()
	assert.Error(t, err)
}
