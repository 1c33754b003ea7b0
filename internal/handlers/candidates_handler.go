package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

const maxSearchLimit = 50

// ChunkSearcher finds indexed résumé chunks close to a query vector.
type ChunkSearcher interface {
	SearchChunks(ctx context.Context, jobPostingID string, queryEmbedding []float32, limit int) ([]models.ChunkMatch, error)
}

type CandidatesHandler struct {
	candidateRepo repositories.CandidateRecordRepository
	embedder      services.EmbeddingClient
	searcher      ChunkSearcher
	log           *zap.Logger
}

// NewCandidatesHandler accepts a nil searcher when no vector index is
// configured; search requests then answer 503.
func NewCandidatesHandler(
	candidateRepo repositories.CandidateRecordRepository,
	embedder services.EmbeddingClient,
	searcher ChunkSearcher,
	log *zap.Logger,
) *CandidatesHandler {
	return &CandidatesHandler{
		candidateRepo: candidateRepo,
		embedder:      embedder,
		searcher:      searcher,
		log:           log.With(zap.String("component", "candidates_handler")),
	}
}

// HandleList handles GET /job-postings/:id/candidates
func (h *CandidatesHandler) HandleList(c *fiber.Ctx) error {
	jobPostingID := c.Params("id")
	limit := c.QueryInt("limit", 0)

	records, err := h.candidateRepo.ListByJobPosting(jobPostingID, limit)
	if err != nil {
		h.log.Error("failed to list candidates", zap.String("job_posting_id", jobPostingID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list candidates",
		})
	}

	return c.JSON(fiber.Map{
		"job_posting_id": jobPostingID,
		"candidates":     records,
	})
}

// HandleSearch handles GET /job-postings/:id/search?q=
func (h *CandidatesHandler) HandleSearch(c *fiber.Ctx) error {
	if h.searcher == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Semantic search is not enabled",
		})
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "q is required",
		})
	}

	limit := c.QueryInt("limit", 10)
	if limit < 1 {
		limit = 1
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	vectors := h.embedder.Embed(c.UserContext(), []string{query})
	if len(vectors) != 1 {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to embed query",
		})
	}

	matches, err := h.searcher.SearchChunks(c.UserContext(), c.Params("id"), vectors[0], limit)
	if err != nil {
		h.log.Error("chunk search failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Search failed",
		})
	}

	return c.JSON(fiber.Map{
		"query":   query,
		"matches": matches,
	})
}
