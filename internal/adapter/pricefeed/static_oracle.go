// Package pricefeed provides PriceOracle implementations: a static
// config-backed oracle for development, an HTTP feed client, and a
// Redis-caching decorator for either.
package pricefeed

import (
	"context"

	"wallet-ledger/internal/core/ports"

	"github.com/shopspring/decimal"
)

// StaticOracle serves quotes from a fixed in-memory price table. An
// asset missing from the table quotes zero, not an error.
type StaticOracle struct {
	prices map[string]decimal.Decimal
}

// NewStaticOracle creates an oracle over a fixed price table. Prices are
// given as decimal strings; unparseable entries are skipped.
func NewStaticOracle(prices map[string]string) *StaticOracle {
	table := make(map[string]decimal.Decimal, len(prices))
	for asset, raw := range prices {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			continue
		}
		table[asset] = p
	}
	return &StaticOracle{prices: table}
}

// Quote returns the configured price for asset, or zero if unknown.
func (o *StaticOracle) Quote(_ context.Context, asset string) (decimal.Decimal, error) {
	return o.prices[asset], nil
}

var _ ports.PriceOracle = (*StaticOracle)(nil)
