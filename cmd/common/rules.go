package common

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/tradeoracle/signal-bot/internal/pricing"
	"github.com/tradeoracle/signal-bot/pkg/rules"
	"github.com/tradeoracle/signal-bot/pkg/signal"
)

// LoadRules resolves the rule table for a binary. A missing file falls
// back to the built-in defaults so the binaries work out of the box;
// .xlsx paths load through the workbook reader, everything else through
// the JSON loader.
func LoadRules(path string, log *zap.Logger) (*rules.Table, error) {
	if path == "" {
		return rules.Default(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if log != nil {
			log.Info("rules file not found, using built-in defaults",
				zap.String("path", path))
		}
		return rules.Default(), nil
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return rules.LoadWorkbook(path)
	}
	return rules.Load(path)
}

// NewPipeline wires a rule table to the static reference prices.
func NewPipeline(table *rules.Table) *signal.Pipeline {
	return signal.NewPipeline(table, pricing.NewStatic(nil))
}
