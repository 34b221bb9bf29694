package rules

import "fmt"

// StandardDirections returns the direction aliases of the stock deployment,
// including the 🟢/🔴 glyph shorthand used in channel messages.
func StandardDirections() map[string][]string {
	return map[string][]string{
		DirectionLong:  {"LONG", "BUY", "L", "🟢"},
		DirectionShort: {"SHORT", "SELL", "S", "🔴"},
	}
}

// StandardTimeframes returns the stock timeframe alias map. Bare numbers are
// minute counts; hour and day frames accept both orderings (H1 and 1H).
func StandardTimeframes() map[string]string {
	return map[string]string{
		"1": "M1", "1M": "M1", "M1": "M1", "1MIN": "M1",
		"5": "M5", "5M": "M5", "M5": "M5", "5MIN": "M5",
		"15": "M15", "15M": "M15", "M15": "M15", "15MIN": "M15",
		"30": "M30", "30M": "M30", "M30": "M30", "30MIN": "M30",
		"60": "H1", "1H": "H1", "H1": "H1",
		"240": "H4", "4H": "H4", "H4": "H4",
		"D1": "D1", "1D": "D1",
	}
}

// DefaultConfig returns the built-in rule set: crypto and gold in percent,
// forex majors in pips, index CFDs in points. Not every asset configures
// every timeframe; unsupported combinations fail parsing with the asset's
// available list.
func DefaultConfig() Config {
	return Config{
		Directions: StandardDirections(),
		Timeframes: StandardTimeframes(),
		Assets: map[string]AssetConfig{
			"BTCUSD": {
				Aliases: []string{"BTC", "BITCOIN", "BTCUSDT", "XBTUSD"},
				Rules: map[string]LevelRule{
					"M1":  pct(0.5, 1.0, 1.5, 0.7),
					"M5":  pct(1.0, 2.0, 3.5, 1.5),
					"M15": pct(1.5, 3.0, 5.0, 2.0),
					"H1":  pct(2.0, 4.0, 6.0, 2.5),
					"H4":  pct(3.0, 6.0, 10.0, 4.0),
				},
			},
			"ETHUSDT": {
				Aliases: []string{"ETH", "ETHEREUM", "ETHUSD"},
				Rules: map[string]LevelRule{
					"M1":  pct(0.6, 1.2, 2.0, 0.8),
					"M5":  pct(1.2, 2.4, 4.0, 1.8),
					"M15": pct(1.8, 3.5, 6.0, 2.5),
					"H1":  pct(2.5, 5.0, 8.0, 3.0),
				},
			},
			"XAUUSD": {
				Aliases: []string{"GOLD", "XAU"},
				Rules: map[string]LevelRule{
					"M1":  pct(0.3, 0.6, 1.0, 0.5),
					"M5":  pct(0.5, 1.0, 1.5, 0.8),
					"M15": pct(0.8, 1.6, 2.5, 1.2),
					"H1":  pct(1.2, 2.4, 4.0, 1.8),
				},
			},
			"EURUSD": {
				Aliases: []string{"EURO", "EU"},
				Rules: map[string]LevelRule{
					"M5":  pips(10, 20, 30, 15),
					"M15": pips(15, 30, 50, 25),
					"H1":  pips(25, 50, 80, 35),
				},
			},
			"GBPUSD": {
				Aliases: []string{"CABLE", "GU"},
				Rules: map[string]LevelRule{
					"M5":  pips(12, 25, 40, 18),
					"M15": pips(18, 35, 60, 28),
					"H1":  pips(30, 60, 100, 40),
				},
			},
			"USDJPY": {
				Aliases: []string{"UJ"},
				Rules: map[string]LevelRule{
					"M5": pips(12, 25, 40, 18),
					"H1": pips(30, 60, 90, 40),
				},
			},
			"US30": {
				Aliases: []string{"DOW", "DJ30", "DJI"},
				Rules: map[string]LevelRule{
					"M5":  points(30, 60, 100, 50),
					"M15": points(50, 100, 180, 80),
					"H1":  points(80, 160, 280, 120),
				},
			},
			"NAS100": {
				Aliases: []string{"NASDAQ", "NQ", "USTEC"},
				Rules: map[string]LevelRule{
					"M5":  points(25, 50, 90, 40),
					"M15": points(40, 80, 150, 60),
					"H1":  points(70, 140, 250, 100),
				},
			},
		},
	}
}

// Default returns the built-in rule table. It panics only if the built-in
// configuration is itself invalid, which the package tests guard against.
func Default() *Table {
	t, err := New(DefaultConfig())
	if err != nil {
		panic(fmt.Sprintf("rules: invalid default config: %v", err))
	}
	return t
}

func pct(tp1, tp2, tp3, sl float64) LevelRule {
	return LevelRule{TP1: tp1, TP2: tp2, TP3: tp3, SL: sl, Unit: UnitPercent}
}

func pips(tp1, tp2, tp3, sl float64) LevelRule {
	return LevelRule{TP1: tp1, TP2: tp2, TP3: tp3, SL: sl, Unit: UnitPips}
}

func points(tp1, tp2, tp3, sl float64) LevelRule {
	return LevelRule{TP1: tp1, TP2: tp2, TP3: tp3, SL: sl, Unit: UnitPoints}
}
