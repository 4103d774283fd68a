package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteCache_SetAndGet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewQuoteCache(client)
	ctx := context.Background()

	// Get before set => miss
	_, ok, err := cache.Get(ctx, "BTC")
	assert.NoError(t, err)
	assert.False(t, ok)

	price := decimal.RequireFromString("45123.57")
	err = cache.Set(ctx, "BTC", price, time.Minute)
	require.NoError(t, err)

	got, ok, err := cache.Get(ctx, "BTC")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(price), "expected %s, got %s", price, got)
}

func TestQuoteCache_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewQuoteCache(client)
	ctx := context.Background()

	err := cache.Set(ctx, "ETH", decimal.RequireFromString("2500"), 1*time.Second)
	require.NoError(t, err)

	// Fast-forward time in miniredis
	s.FastForward(2 * time.Second)

	_, ok, err := cache.Get(ctx, "ETH")
	assert.NoError(t, err)
	assert.False(t, ok, "expired quote should be a miss")
}

func TestQuoteCache_PrecisionRoundTrip(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewQuoteCache(client)
	ctx := context.Background()

	price := decimal.RequireFromString("0.000000123456789")
	err := cache.Set(ctx, "SHIB", price, time.Minute)
	require.NoError(t, err)

	got, ok, err := cache.Get(ctx, "SHIB")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(price))
}

func TestQuoteCache_CorruptValue(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewQuoteCache(client)
	ctx := context.Background()

	require.NoError(t, s.Set("quote:BTC", "not-a-number"))

	_, _, err := cache.Get(ctx, "BTC")
	assert.Error(t, err)
}
