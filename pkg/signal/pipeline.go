package signal

import (
	"fmt"

	"github.com/tradeoracle/signal-bot/pkg/levels"
	"github.com/tradeoracle/signal-bot/pkg/parser"
	"github.com/tradeoracle/signal-bot/pkg/rules"
)

// PriceSource supplies a reference price for instructions without an
// explicit @price.
type PriceSource interface {
	Price(asset string) (float64, error)
}

// Pipeline wires the parser, price source and level calculator into the
// parse → price → calculate → assemble flow. It holds only immutable
// collaborators and is safe for concurrent use.
type Pipeline struct {
	table  *rules.Table
	prices PriceSource
}

// NewPipeline builds a pipeline. prices may be nil when every instruction is
// expected to carry an explicit price.
func NewPipeline(table *rules.Table, prices PriceSource) *Pipeline {
	return &Pipeline{table: table, prices: prices}
}

// Table returns the rule table backing the pipeline.
func (p *Pipeline) Table() *rules.Table { return p.table }

// Process runs the full flow for one instruction. Parse and calculation
// errors pass through unwrapped so callers can branch on parser.Kind; price
// lookup failures are wrapped.
func (p *Pipeline) Process(text string) (*Result, error) {
	sig, err := parser.Parse(text, p.table)
	if err != nil {
		return nil, err
	}

	entry := 0.0
	source := EntrySourceMessage
	// An explicit @0 counts as no price: levels computed from a zero entry
	// are meaningless, so the reference table takes over.
	if sig.EntryPrice != nil && *sig.EntryPrice > 0 {
		entry = *sig.EntryPrice
	} else {
		if p.prices == nil {
			return nil, fmt.Errorf("no entry price in %q and no price source configured", text)
		}
		entry, err = p.prices.Price(sig.Asset)
		if err != nil {
			return nil, fmt.Errorf("failed to price %s: %w", sig.Asset, err)
		}
		source = EntrySourceTable
	}

	lv, err := levels.Calculate(sig.Direction, sig.Asset, sig.Timeframe, entry, p.table)
	if err != nil {
		return nil, err
	}

	return Assemble(sig, lv, source), nil
}
