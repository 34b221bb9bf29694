// Package pricing supplies reference entry prices for instructions that do
// not carry an explicit @price. The bot never reads live market data; prices
// come from a fixed table so level output stays reproducible.
package pricing

import (
	"fmt"
	"sort"

	apperrors "github.com/tradeoracle/signal-bot/internal/errors"
)

// Reference prices for the built-in assets.
var defaultPrices = map[string]float64{
	"BTCUSD":  65000,
	"ETHUSDT": 2450,
	"XAUUSD":  2350,
	"EURUSD":  1.0850,
	"GBPUSD":  1.2650,
	"USDJPY":  151.50,
	"US30":    39500,
	"NAS100":  17800,
}

// Static is an immutable reference price table. It satisfies
// signal.PriceSource and is safe for concurrent readers.
type Static struct {
	prices map[string]float64
}

// NewStatic builds a price table from the built-in defaults with overrides
// applied on top. An override for an unknown asset adds it.
func NewStatic(overrides map[string]float64) *Static {
	prices := make(map[string]float64, len(defaultPrices)+len(overrides))
	for asset, price := range defaultPrices {
		prices[asset] = price
	}
	for asset, price := range overrides {
		prices[asset] = price
	}
	return &Static{prices: prices}
}

// Price returns the reference price for an asset.
func (s *Static) Price(asset string) (float64, error) {
	price, ok := s.prices[asset]
	if !ok || price <= 0 {
		return 0, apperrors.NewPricingError("pricing", "lookup",
			fmt.Sprintf("no reference price for %s", asset))
	}
	return price, nil
}

// Assets returns the symbols with a reference price, sorted.
func (s *Static) Assets() []string {
	assets := make([]string, 0, len(s.prices))
	for asset := range s.prices {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	return assets
}

// Snapshot returns a copy of the full price table for display endpoints.
func (s *Static) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(s.prices))
	for asset, price := range s.prices {
		out[asset] = price
	}
	return out
}
