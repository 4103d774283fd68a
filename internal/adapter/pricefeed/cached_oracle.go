package pricefeed

import (
	"context"
	"time"

	"wallet-ledger/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CachedOracle decorates a PriceOracle with a quote cache. Cache
// failures are logged and fall through to the wrapped oracle; a broken
// cache must never make pricing unavailable.
type CachedOracle struct {
	next  ports.PriceOracle
	cache ports.QuoteCache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCachedOracle wraps next with a cache holding quotes for ttl.
func NewCachedOracle(next ports.PriceOracle, cache ports.QuoteCache, ttl time.Duration, log zerolog.Logger) *CachedOracle {
	return &CachedOracle{next: next, cache: cache, ttl: ttl, log: log}
}

// Quote returns the cached price when fresh, otherwise asks the wrapped
// oracle and caches the answer. Zero quotes are not cached so a feed
// gaining an asset is picked up immediately.
func (o *CachedOracle) Quote(ctx context.Context, asset string) (decimal.Decimal, error) {
	price, ok, err := o.cache.Get(ctx, asset)
	if err != nil {
		o.log.Warn().Err(err).Str("asset", asset).Msg("quote cache read failed, falling through")
	} else if ok {
		return price, nil
	}

	price, err = o.next.Quote(ctx, asset)
	if err != nil {
		return decimal.Zero, err
	}

	if price.IsPositive() {
		if err := o.cache.Set(ctx, asset, price, o.ttl); err != nil {
			o.log.Warn().Err(err).Str("asset", asset).Msg("quote cache write failed")
		}
	}
	return price, nil
}

var _ ports.PriceOracle = (*CachedOracle)(nil)
