package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// QuoteCache implements ports.QuoteCache using Redis. Prices are stored
// as decimal strings so no precision is lost round-tripping.
type QuoteCache struct {
	client *goredis.Client
	prefix string
}

// NewQuoteCache creates a new Redis-backed price quote cache.
func NewQuoteCache(client *goredis.Client) *QuoteCache {
	return &QuoteCache{
		client: client,
		prefix: "quote:",
	}
}

// Get retrieves a cached quote by asset.
// Returns ok=false if no quote is cached for the asset.
func (c *QuoteCache) Get(ctx context.Context, asset string) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+asset).Result()
	if err != nil {
		if err == goredis.Nil {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("redis quote get: %w", err)
	}

	price, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("redis quote parse %q: %w", val, err)
	}
	return price, true, nil
}

// Set stores a quote with TTL.
func (c *QuoteCache) Set(ctx context.Context, asset string, price decimal.Decimal, ttl time.Duration) error {
	err := c.client.Set(ctx, c.prefix+asset, price.String(), ttl).Err()
	if err != nil {
		return fmt.Errorf("redis quote set: %w", err)
	}
	return nil
}
