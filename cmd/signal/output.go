package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/tradeoracle/signal-bot/internal/format"
	"github.com/tradeoracle/signal-bot/pkg/signal"
)

// renderResult prints one result as a rounded key/value table.
func renderResult(w io.Writer, res *signal.Result) {
	emoji := "🟢"
	if res.Direction == "SHORT" {
		emoji = "🔴"
	}

	entry := format.FormatPrice(res.Entry, res.Asset)
	if res.EntrySource == signal.EntrySourceTable {
		entry += " (reference)"
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%s %s %s", emoji, res.Direction, res.Asset))
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"⏱ Timeframe", res.Timeframe},
		{"💵 Entry", entry},
	})

	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"🎯 TP1", levelCell(res.TP1, res.TP1Distance, res, false)},
		{"🎯 TP2", levelCell(res.TP2, res.TP2Distance, res, false)},
		{"🎯 TP3", levelCell(res.TP3, res.TP3Distance, res, false)},
		{"🛡 Stop Loss", levelCell(res.SL, res.SLDistance, res, true)},
	})

	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"📊 Risk/Reward", fmt.Sprintf("1:%.2f", res.RiskReward)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 14, WidthMax: 14, Align: text.AlignLeft},
		{Number: 2, WidthMin: 24, WidthMax: 40, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Fprintln(w)
}

func levelCell(price, distance float64, res *signal.Result, negative bool) string {
	return fmt.Sprintf("%s (%s)",
		format.FormatPrice(price, res.Asset),
		format.FormatDistance(distance, res.Unit, negative))
}
