package services

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EmbeddingCache stores vectors keyed by model and text. Lookups return a map
// from input index to vector for the hits only. Implementations swallow errors.
type EmbeddingCache interface {
	GetMany(ctx context.Context, model string, texts []string) map[int][]float32
	SetMany(ctx context.Context, model string, texts []string, vectors map[int][]float32)
}

type redisEmbeddingCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisEmbeddingCache(client *redis.Client, ttl time.Duration, log *zap.Logger) EmbeddingCache {
	return &redisEmbeddingCache{
		client: client,
		ttl:    ttl,
		log:    log.With(zap.String("component", "embedding_cache")),
	}
}

func embeddingKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "emb:" + model + ":" + hex.EncodeToString(sum[:])
}

// GetMany implements EmbeddingCache.
func (c *redisEmbeddingCache) GetMany(ctx context.Context, model string, texts []string) map[int][]float32 {
	hits := make(map[int][]float32)
	if len(texts) == 0 {
		return hits
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = embeddingKey(model, t)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.log.Warn("embedding cache read failed", zap.Error(err))
		return hits
	}

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if vec, ok := decodeVector([]byte(s)); ok {
			hits[i] = vec
		}
	}
	return hits
}

// SetMany implements EmbeddingCache.
func (c *redisEmbeddingCache) SetMany(ctx context.Context, model string, texts []string, vectors map[int][]float32) {
	if len(vectors) == 0 {
		return
	}

	pipe := c.client.Pipeline()
	for i, vec := range vectors {
		if i < 0 || i >= len(texts) {
			continue
		}
		pipe.Set(ctx, embeddingKey(model, texts[i]), encodeVector(vec), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("embedding cache write failed", zap.Error(err))
	}
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) ([]float32, bool) {
	if len(buf) == 0 || len(buf)%4 != 0 {
		return nil, false
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec, true
}
