package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/metrics"
)

// EmbeddingClient embeds a batch of texts. A nil result means the provider
// could not be reached after all retries; callers must degrade.
type EmbeddingClient interface {
	Embed(ctx context.Context, texts []string) [][]float32
}

// RetryPolicy bounds retries of an idempotent call.
type RetryPolicy struct {
	MaxAttempts int
	// Backoff returns the wait after the given failed attempt (1-based).
	Backoff func(attempt int) time.Duration
	// Sleep waits for d or until ctx is done. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// LinearBackoff waits delay*attempt between attempts.
func LinearBackoff(delay time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return delay * time.Duration(attempt)
	}
}

func NewRetryPolicy(maxAttempts int, delay time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff:     LinearBackoff(delay),
		Sleep:       sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type embeddingClient struct {
	provider  EmbeddingProvider
	model     string
	batchSize int
	retry     RetryPolicy
	cache     EmbeddingCache
	log       *zap.Logger
}

type EmbeddingOption func(*embeddingClient)

func WithEmbeddingCache(cache EmbeddingCache) EmbeddingOption {
	return func(c *embeddingClient) { c.cache = cache }
}

func WithBatchSize(n int) EmbeddingOption {
	return func(c *embeddingClient) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

func NewEmbeddingClient(provider EmbeddingProvider, model string, retry RetryPolicy, log *zap.Logger, opts ...EmbeddingOption) EmbeddingClient {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	if retry.Backoff == nil {
		retry.Backoff = LinearBackoff(time.Second)
	}
	if retry.Sleep == nil {
		retry.Sleep = sleepContext
	}
	c := &embeddingClient{
		provider:  provider,
		model:     model,
		batchSize: 100,
		retry:     retry,
		log:       log.With(zap.String("component", "embedder")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Embed implements EmbeddingClient.
func (c *embeddingClient) Embed(ctx context.Context, texts []string) [][]float32 {
	if len(texts) == 0 {
		return nil
	}

	vectors := make([][]float32, len(texts))
	missing := make([]int, 0, len(texts))

	if c.cache != nil {
		cached := c.cache.GetMany(ctx, c.model, texts)
		for i := range texts {
			if v, ok := cached[i]; ok {
				vectors[i] = v
				continue
			}
			missing = append(missing, i)
		}
		metrics.EmbeddingCache.WithLabelValues("hit").Add(float64(len(texts) - len(missing)))
		metrics.EmbeddingCache.WithLabelValues("miss").Add(float64(len(missing)))
	} else {
		for i := range texts {
			missing = append(missing, i)
		}
	}

	if len(missing) == 0 {
		return vectors
	}

	fresh := make(map[int][]float32, len(missing))
	for start := 0; start < len(missing); start += c.batchSize {
		end := min(start+c.batchSize, len(missing))
		idx := missing[start:end]

		batch := make([]string, len(idx))
		for j, i := range idx {
			batch[j] = texts[i]
		}

		result, ok := c.embedWithRetry(ctx, batch)
		if !ok {
			// Cache what earlier sub-batches returned.
			if c.cache != nil && len(fresh) > 0 {
				c.cache.SetMany(ctx, c.model, texts, fresh)
			}
			return nil
		}
		for j, i := range idx {
			vectors[i] = result[j]
			fresh[i] = result[j]
		}
	}

	if c.cache != nil {
		c.cache.SetMany(ctx, c.model, texts, fresh)
	}
	return vectors
}

func (c *embeddingClient) embedWithRetry(ctx context.Context, batch []string) ([][]float32, bool) {
	var lastErr error

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		result, err := c.provider.EmbedBatch(ctx, c.model, batch)
		if err == nil && len(result) == len(batch) {
			metrics.EmbeddingAttempts.WithLabelValues("success").Inc()
			return result, true
		}
		if err == nil {
			err = ErrEmptyResponse
		}
		lastErr = err
		metrics.EmbeddingAttempts.WithLabelValues("failure").Inc()

		if attempt < c.retry.MaxAttempts {
			wait := c.retry.Backoff(attempt)
			c.log.Warn("embedding attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
			if sleepErr := c.retry.Sleep(ctx, wait); sleepErr != nil {
				lastErr = sleepErr
				break
			}
		}
	}

	c.log.Error("embedding failed after retries",
		zap.Int("attempts", c.retry.MaxAttempts),
		zap.Int("batch_size", len(batch)),
		zap.Error(lastErr),
	)
	return nil, false
}
