package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisEmbeddingCache_RoundTrip(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisEmbeddingCache(client, time.Hour, zaptest.NewLogger(t))
	ctx := context.Background()

	texts := []string{"alpha", "beta", "gamma"}
	cache.SetMany(ctx, "m1", texts, map[int][]float32{
		0: {0.25, -1.5, 3},
		2: {7},
	})

	hits := cache.GetMany(ctx, "m1", texts)
	assert.Equal(t, map[int][]float32{0: {0.25, -1.5, 3}, 2: {7}}, hits)

	assert.Equal(t, time.Hour, mr.TTL(embeddingKey("m1", "alpha")))
	assert.Empty(t, cache.GetMany(ctx, "m2", texts), "keys are scoped by model")
}

func TestRedisEmbeddingCache_UnavailableServer(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisEmbeddingCache(client, time.Hour, zaptest.NewLogger(t))
	mr.Close()

	assert.NotPanics(t, func() {
		cache.SetMany(context.Background(), "m", []string{"a"}, map[int][]float32{0: {1}})
	})
	assert.Empty(t, cache.GetMany(context.Background(), "m", []string{"a"}))
}

func TestRedisEmbeddingCache_IgnoresCorruptValues(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisEmbeddingCache(client, time.Hour, zaptest.NewLogger(t))
	require.NoError(t, mr.Set(embeddingKey("m", "a"), "xyz"))

	assert.Empty(t, cache.GetMany(context.Background(), "m", []string{"a"}))
}

func TestVectorEncoding(t *testing.T) {
	vec := []float32{1.5, -0.125, 0, 42}

	decoded, ok := decodeVector(encodeVector(vec))

	require.True(t, ok)
	assert.Equal(t, vec, decoded)

	_, ok = decodeVector([]byte{1, 2, 3})
	assert.False(t, ok)
}
