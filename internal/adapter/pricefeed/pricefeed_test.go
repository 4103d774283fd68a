package pricefeed

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"wallet-ledger/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticOracle_Quote(t *testing.T) {
	oracle := NewStaticOracle(map[string]string{
		"BTC":  "45000",
		"ETH":  "2500.50",
		"junk": "not-a-price",
	})
	ctx := context.Background()

	price, err := oracle.Quote(ctx, "BTC")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("45000")))

	price, err = oracle.Quote(ctx, "ETH")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("2500.50")))

	// Unknown asset quotes zero, not an error.
	price, err = oracle.Quote(ctx, "DOGE")
	require.NoError(t, err)
	assert.True(t, price.IsZero())

	// Unparseable entries are skipped at construction.
	price, err = oracle.Quote(ctx, "junk")
	require.NoError(t, err)
	assert.True(t, price.IsZero())
}

type stubHTTPClient struct {
	status int
	body   string
	err    error
	lastReq *http.Request
}

func (c *stubHTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.lastReq = req
	if c.err != nil {
		return nil, c.err
	}
	return &http.Response{
		StatusCode: c.status,
		Body:       io.NopCloser(strings.NewReader(c.body)),
	}, nil
}

func TestHTTPOracle_Quote(t *testing.T) {
	client := &stubHTTPClient{status: http.StatusOK, body: `{"asset":"BTC","price":"45000"}`}
	oracle := NewHTTPOracle("http://feed.local", client)

	price, err := oracle.Quote(context.Background(), "BTC")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("45000")))
	assert.Equal(t, "http://feed.local/price?asset=BTC", client.lastReq.URL.String())
}

func TestHTTPOracle_UnknownAsset(t *testing.T) {
	client := &stubHTTPClient{status: http.StatusNotFound, body: ""}
	oracle := NewHTTPOracle("http://feed.local", client)

	price, err := oracle.Quote(context.Background(), "DOGE")
	require.NoError(t, err)
	assert.True(t, price.IsZero())
}

func TestHTTPOracle_FeedError(t *testing.T) {
	client := &stubHTTPClient{status: http.StatusInternalServerError, body: "boom"}
	oracle := NewHTTPOracle("http://feed.local", client)

	_, err := oracle.Quote(context.Background(), "BTC")
	assert.Error(t, err)
}

type countingOracle struct {
	price decimal.Decimal
	calls int
}

func (o *countingOracle) Quote(context.Context, string) (decimal.Decimal, error) {
	o.calls++
	return o.price, nil
}

func TestCachedOracle_CachesQuotes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cache := redis.NewQuoteCache(client)

	inner := &countingOracle{price: decimal.RequireFromString("45000")}
	oracle := NewCachedOracle(inner, cache, time.Minute, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		price, err := oracle.Quote(ctx, "BTC")
		require.NoError(t, err)
		assert.True(t, price.Equal(inner.price))
	}
	assert.Equal(t, 1, inner.calls, "repeat quotes should hit the cache")

	mr.FastForward(2 * time.Minute)

	_, err := oracle.Quote(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "expired cache should refetch")
}

func TestCachedOracle_ZeroQuoteNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cache := redis.NewQuoteCache(client)

	inner := &countingOracle{price: decimal.Zero}
	oracle := NewCachedOracle(inner, cache, time.Minute, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		price, err := oracle.Quote(ctx, "DOGE")
		require.NoError(t, err)
		assert.True(t, price.IsZero())
	}
	assert.Equal(t, 2, inner.calls, "zero quotes should not be cached")
}
