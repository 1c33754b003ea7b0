package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"alfredoptarigan/resume-screener/internal/models"
)

type fakeLLM struct {
	CompleteFunc func(ctx context.Context, messages []Message, opts CompletionOptions) (string, error)
	calls        atomic.Int32
}

func (f *fakeLLM) Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error) {
	f.calls.Add(1)
	return f.CompleteFunc(ctx, messages, opts)
}

// replyLLM answers every call with the same text.
func replyLLM(text string) *fakeLLM {
	return &fakeLLM{CompleteFunc: func(context.Context, []Message, CompletionOptions) (string, error) {
		return text, nil
	}}
}

func failingLLM(err error) *fakeLLM {
	return &fakeLLM{CompleteFunc: func(context.Context, []Message, CompletionOptions) (string, error) {
		return "", err
	}}
}

func userContent(messages []Message) string {
	for _, m := range messages {
		if m.Role == RoleUser {
			return m.Content
		}
	}
	return ""
}

type fakeProvider struct {
	EmbedBatchFunc func(ctx context.Context, model string, texts []string) ([][]float32, error)

	mu      sync.Mutex
	batches [][]string
}

func (f *fakeProvider) EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.batches = append(f.batches, append([]string(nil), texts...))
	f.mu.Unlock()
	return f.EmbedBatchFunc(ctx, model, texts)
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

type fakeEmbedder struct {
	EmbedFunc func(texts []string) [][]float32
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) [][]float32 {
	return f.EmbedFunc(texts)
}

// keywordEmbedder maps text onto a two-dimensional vector: [1,0] when it
// mentions golang, [0,1] otherwise.
func keywordEmbedder() *fakeEmbedder {
	return &fakeEmbedder{EmbedFunc: func(texts []string) [][]float32 {
		out := make([][]float32, len(texts))
		for i, t := range texts {
			if strings.Contains(strings.ToLower(t), "golang") {
				out[i] = []float32{1, 0}
			} else {
				out[i] = []float32{0, 1}
			}
		}
		return out
	}}
}

func unavailableEmbedder() *fakeEmbedder {
	return &fakeEmbedder{EmbedFunc: func([]string) [][]float32 { return nil }}
}

// fakeExtractor returns the document bytes as text; names listed in corrupt
// yield nothing.
type fakeExtractor struct {
	corrupt   map[string]bool
	jdFailure bool
}

func (f *fakeExtractor) ExtractJobDescription(_ context.Context, doc models.Document) (string, error) {
	if f.jdFailure || len(doc.Data) == 0 {
		return "", fmt.Errorf("%w: broken", ErrUnreadableJobDescription)
	}
	return string(doc.Data), nil
}

func (f *fakeExtractor) ExtractResume(_ context.Context, doc models.Document) string {
	if f.corrupt[doc.Name] {
		return ""
	}
	return string(doc.Data)
}

type fakeParser struct {
	name string
	text string
	err  error
}

func (p *fakeParser) Name() string { return p.name }

func (p *fakeParser) Parse(context.Context, []byte) (string, error) {
	return p.text, p.err
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]float32
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]float32)}
}

func (c *memoryCache) GetMany(_ context.Context, model string, texts []string) map[int][]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	hits := make(map[int][]float32)
	for i, t := range texts {
		if v, ok := c.entries[model+"|"+t]; ok {
			hits[i] = v
		}
	}
	return hits
}

func (c *memoryCache) SetMany(_ context.Context, model string, texts []string, vectors map[int][]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, v := range vectors {
		c.entries[model+"|"+texts[i]] = v
	}
}
