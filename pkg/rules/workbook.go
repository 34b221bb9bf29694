package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	rulesSheet   = "Rules"
	aliasesSheet = "Aliases"
)

// LoadWorkbook reads a rule table from an Excel workbook. The Rules sheet
// carries one row per asset timeframe (Asset | Timeframe | TP1 | TP2 | TP3 |
// SL | Unit, unit defaulting to percent); an optional Aliases sheet
// (Asset | Alias) adds alternative spellings. Directions and timeframe
// aliases come from the standard seeds.
func LoadWorkbook(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rules workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(rulesSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", rulesSheet, err)
	}

	assets := make(map[string]AssetConfig)
	for i, row := range rows {
		if i == 0 && isHeaderRow(row) {
			continue
		}
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) < 6 {
			return nil, newConfigError(rulesSheet, "row %d: expected at least 6 columns, got %d", i+1, len(row))
		}

		symbol := strings.ToUpper(strings.TrimSpace(row[0]))
		tf := strings.ToUpper(strings.TrimSpace(row[1]))

		var distances [4]float64
		for j, name := range []string{"tp1", "tp2", "tp3", "sl"} {
			value, err := strconv.ParseFloat(strings.TrimSpace(row[2+j]), 64)
			if err != nil {
				return nil, newConfigError(rulesSheet, "row %d: invalid %s value %q", i+1, name, row[2+j])
			}
			distances[j] = value
		}

		unit := UnitPercent
		if len(row) > 6 && strings.TrimSpace(row[6]) != "" {
			unit, err = ParseUnit(row[6])
			if err != nil {
				return nil, newConfigError(rulesSheet, "row %d: %v", i+1, err)
			}
		}

		cfg := assets[symbol]
		if cfg.Rules == nil {
			cfg.Rules = make(map[string]LevelRule)
		}
		cfg.Rules[tf] = LevelRule{
			TP1:  distances[0],
			TP2:  distances[1],
			TP3:  distances[2],
			SL:   distances[3],
			Unit: unit,
		}
		assets[symbol] = cfg
	}

	if err := readAliasSheet(f, assets); err != nil {
		return nil, err
	}

	return New(Config{
		Directions: StandardDirections(),
		Timeframes: StandardTimeframes(),
		Assets:     assets,
	})
}

func isHeaderRow(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "asset")
}

func readAliasSheet(f *excelize.File, assets map[string]AssetConfig) error {
	if !hasSheet(f, aliasesSheet) {
		return nil
	}

	rows, err := f.GetRows(aliasesSheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", aliasesSheet, err)
	}

	for i, row := range rows {
		if i == 0 && isHeaderRow(row) {
			continue
		}
		if len(row) < 2 {
			continue
		}
		symbol := strings.ToUpper(strings.TrimSpace(row[0]))
		alias := strings.TrimSpace(row[1])
		if symbol == "" || alias == "" {
			continue
		}
		cfg, ok := assets[symbol]
		if !ok {
			return newConfigError(aliasesSheet, "row %d: alias %q for unknown asset %s", i+1, alias, symbol)
		}
		cfg.Aliases = append(cfg.Aliases, alias)
		assets[symbol] = cfg
	}
	return nil
}

func hasSheet(f *excelize.File, name string) bool {
	for _, sheet := range f.GetSheetList() {
		if sheet == name {
			return true
		}
	}
	return false
}
