// Package signal assembles parsed instructions and calculated levels into
// the neutral result record shared by every delivery channel, and wires the
// full parse → price → calculate flow into a reusable pipeline.
package signal

import (
	"time"

	"github.com/tradeoracle/signal-bot/pkg/levels"
	"github.com/tradeoracle/signal-bot/pkg/parser"
	"github.com/tradeoracle/signal-bot/pkg/rules"
)

// EntrySource records where the entry price came from.
type EntrySource string

const (
	// EntrySourceMessage means the instruction carried an explicit @price
	EntrySourceMessage EntrySource = "message"
	// EntrySourceTable means the price came from the reference price table
	EntrySourceTable EntrySource = "table"
)

// Result is the neutral, render-ready outcome of one processed instruction.
// It carries no formatting; renderers decide presentation.
type Result struct {
	Direction   string      `json:"direction"`
	Asset       string      `json:"asset"`
	Timeframe   string      `json:"timeframe"`
	Entry       float64     `json:"entry"`
	EntrySource EntrySource `json:"entry_source"`
	TP1         float64     `json:"tp1"`
	TP2         float64     `json:"tp2"`
	TP3         float64     `json:"tp3"`
	SL          float64     `json:"sl"`
	TP1Distance float64     `json:"tp1_distance"`
	TP2Distance float64     `json:"tp2_distance"`
	TP3Distance float64     `json:"tp3_distance"`
	SLDistance  float64     `json:"sl_distance"`
	Unit        rules.Unit  `json:"unit"`
	RiskReward  float64     `json:"risk_reward"`
	Original    string      `json:"original,omitempty"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// Assemble packages a parsed signal and its calculated levels into a Result
// stamped with the assembly time in UTC.
func Assemble(sig *parser.Signal, lv *levels.TradeLevels, source EntrySource) *Result {
	return &Result{
		Direction:   lv.Direction,
		Asset:       lv.Asset,
		Timeframe:   lv.Timeframe,
		Entry:       lv.Entry,
		EntrySource: source,
		TP1:         lv.TP1,
		TP2:         lv.TP2,
		TP3:         lv.TP3,
		SL:          lv.SL,
		TP1Distance: lv.TP1Distance,
		TP2Distance: lv.TP2Distance,
		TP3Distance: lv.TP3Distance,
		SLDistance:  lv.SLDistance,
		Unit:        lv.Unit,
		RiskReward:  lv.RiskReward,
		Original:    sig.Original,
		GeneratedAt: time.Now().UTC(),
	}
}
