package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

type CompletionOptions struct {
	// JSON asks the provider for a JSON-only response body.
	JSON        bool
	Temperature float32
}

// LLMClient sends role-tagged messages to a chat model and returns its raw text.
// Callers own fence stripping and parse recovery.
type LLMClient interface {
	Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error)
}

// EmbeddingProvider returns one vector per input text, in input order.
type EmbeddingProvider interface {
	EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error)
}

type GeminiService interface {
	LLMClient
	EmbeddingProvider
}

type geminiService struct {
	client          *genai.Client
	modelName       string
	maxOutputTokens int32
	log             *zap.Logger
}

func NewGeminiService(ctx context.Context, apiKey, modelName string, log *zap.Logger) (GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:          client,
		modelName:       modelName,
		maxOutputTokens: 4096,
		log:             log.With(zap.String("component", "gemini")),
	}, nil
}

// Complete implements LLMClient.
func (g *geminiService) Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error) {
	temperature := opts.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: g.maxOutputTokens,
	}
	if opts.JSON {
		config.ResponseMIMEType = "application/json"
	}

	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	if len(contents) == 0 {
		return "", fmt.Errorf("no user content to send")
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, config)
	if err != nil {
		return "", &LLMCallError{Message: "generate content", Cause: err}
	}
	if resp == nil {
		return "", &LLMCallError{Message: "nil response", Cause: ErrEmptyResponse}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		g.log.Warn("gemini returned no text content", zap.Int("candidates", len(resp.Candidates)))
		return "", &LLMCallError{Message: "no text content", Cause: ErrEmptyResponse}
	}

	return text, nil
}

// EmbedBatch implements EmbeddingProvider.
func (g *geminiService) EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.NewContentFromText(truncateUTF8(text, maxEmbedInputBytes), genai.RoleUser))
	}

	result, err := g.client.Models.EmbedContent(ctx, model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		got := 0
		if result != nil {
			got = len(result.Embeddings)
		}
		return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", len(texts), got)
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, e := range result.Embeddings {
		if e == nil {
			return nil, fmt.Errorf("empty embedding at index %d", i)
		}
		vectors[i] = e.Values
	}
	return vectors, nil
}

// The embedding endpoint accepts roughly 10k tokens per input.
const maxEmbedInputBytes = 40000

// truncateUTF8 cuts text to at most limit bytes without splitting a rune.
func truncateUTF8(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
