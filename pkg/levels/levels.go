// Package levels expands normalized signals into take-profit and stop-loss
// prices under the rule table's distance rules.
package levels

import (
	"fmt"
	"math"

	"github.com/tradeoracle/signal-bot/pkg/parser"
	"github.com/tradeoracle/signal-bot/pkg/rules"
)

// Pip sizes for forex pairs; JPY crosses quote to two decimals.
var pipSizes = map[string]float64{
	"EURUSD": 0.0001,
	"GBPUSD": 0.0001,
	"USDJPY": 0.01,
	"AUDUSD": 0.0001,
	"USDCAD": 0.0001,
	"USDCHF": 0.0001,
}

// Point sizes for index CFDs.
var pointSizes = map[string]float64{
	"US30":   1.0,
	"NAS100": 1.0,
	"SPX500": 0.1,
}

const (
	defaultPipSize   = 0.0001
	defaultPointSize = 1.0
)

// TradeLevels holds the expanded price levels for one signal. The distance
// fields stay in the rule's unit (1.0 means 1% or 1 pip, not a price delta).
type TradeLevels struct {
	Direction   string
	Asset       string
	Timeframe   string
	Entry       float64
	TP1         float64
	TP2         float64
	TP3         float64
	SL          float64
	TP1Distance float64
	TP2Distance float64
	TP3Distance float64
	SLDistance  float64
	Unit        rules.Unit
	RiskReward  float64
}

// PipSize returns the pip size used for an asset
func PipSize(asset string) float64 {
	if v, ok := pipSizes[asset]; ok {
		return v
	}
	return defaultPipSize
}

// PointSize returns the point size used for an asset
func PointSize(asset string) float64 {
	if v, ok := pointSizes[asset]; ok {
		return v
	}
	return defaultPointSize
}

// Calculate expands a signal into concrete price levels using the asset's
// rule for the timeframe. The (asset, timeframe) pair is re-validated even
// when the input came from a successful parse. LONG targets sit above the
// entry with the stop below; SHORT mirrors both.
func Calculate(direction, asset, timeframe string, entry float64, table *rules.Table) (*TradeLevels, error) {
	rule, ok := table.Rule(asset, timeframe)
	if !ok {
		return nil, parser.NewError(parser.KindUnknownRule, "no rule configured for %s %s", asset, timeframe)
	}

	scale := unitScale(rule.Unit, asset, entry)
	tp1Delta := rule.TP1 * scale
	tp2Delta := rule.TP2 * scale
	tp3Delta := rule.TP3 * scale
	slDelta := rule.SL * scale

	lv := &TradeLevels{
		Direction:   direction,
		Asset:       asset,
		Timeframe:   timeframe,
		Entry:       entry,
		TP1Distance: rule.TP1,
		TP2Distance: rule.TP2,
		TP3Distance: rule.TP3,
		SLDistance:  rule.SL,
		Unit:        rule.Unit,
		RiskReward:  riskReward(rule),
	}

	if direction == rules.DirectionLong {
		lv.TP1 = entry + tp1Delta
		lv.TP2 = entry + tp2Delta
		lv.TP3 = entry + tp3Delta
		lv.SL = entry - slDelta
	} else {
		lv.TP1 = entry - tp1Delta
		lv.TP2 = entry - tp2Delta
		lv.TP3 = entry - tp3Delta
		lv.SL = entry + slDelta
	}

	return lv, nil
}

// unitScale converts one rule-unit distance into a price delta.
func unitScale(unit rules.Unit, asset string, entry float64) float64 {
	switch unit {
	case rules.UnitPercent:
		return entry / 100
	case rules.UnitPips:
		return PipSize(asset)
	case rules.UnitPoints:
		return PointSize(asset)
	default:
		// Units are validated at table load; reaching this is a
		// programming error, not bad input.
		panic(fmt.Sprintf("levels: unknown unit %v", unit))
	}
}

// riskReward is the mean take-profit distance over the stop distance,
// rounded half away from zero to two decimals. A zero stop yields zero.
func riskReward(rule rules.LevelRule) float64 {
	if rule.SL <= 0 {
		return 0
	}
	avg := (rule.TP1 + rule.TP2 + rule.TP3) / 3
	return math.Round(avg/rule.SL*100) / 100
}
