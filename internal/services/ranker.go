package services

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/metrics"
	"alfredoptarigan/resume-screener/internal/models"
)

// uniformScore replaces every weighted score when no similarity signal exists.
const uniformScore = 0.5

var sectionKeywords = []string{
	"experience",
	"education",
	"skills",
	"projects",
	"summary",
	"certifications",
	"achievements",
	"languages",
}

type RankerConfig struct {
	ChunkSize       int
	TopK            int
	TopN            int
	SectionWeight   float64
	DiversityWeight float64
	WordCountWeight float64
	WordCountCap    int
	DiversityScale  float64
}

func DefaultRankerConfig() RankerConfig {
	return RankerConfig{
		ChunkSize:       1000,
		TopK:            5,
		TopN:            8,
		SectionWeight:   0.35,
		DiversityWeight: 0.25,
		WordCountWeight: 0.40,
		WordCountCap:    600,
		DiversityScale:  0.5,
	}
}

// RankInput is a candidate that survived the experience filter.
type RankInput struct {
	Ref  string
	Text string
}

// RankedCandidate keeps the chunks and vectors a candidate was scored on so
// they can be indexed afterwards. Vectors is nil when embedding failed.
type RankedCandidate struct {
	Ref     string
	Text    string
	Score   models.SemanticScore
	Chunks  []string
	Vectors [][]float32
}

type RankResult struct {
	// Ranked holds every candidate that produced at least one chunk, best first.
	Ranked []RankedCandidate
	// Shortlist is the first TopN entries of Ranked.
	Shortlist []RankedCandidate
	// Uniform is set when the ranking fell back to uniformScore.
	Uniform bool
}

type SemanticRanker interface {
	Rank(ctx context.Context, jdText string, candidates []RankInput) RankResult
}

type semanticRanker struct {
	embedder EmbeddingClient
	chunker  TextChuncker
	cfg      RankerConfig
	log      *zap.Logger
}

func NewSemanticRanker(embedder EmbeddingClient, chunker TextChuncker, cfg RankerConfig, log *zap.Logger) SemanticRanker {
	defaults := DefaultRankerConfig()
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaults.ChunkSize
	}
	if cfg.TopK <= 0 {
		cfg.TopK = defaults.TopK
	}
	if cfg.TopN <= 0 {
		cfg.TopN = defaults.TopN
	}
	if cfg.WordCountCap <= 0 {
		cfg.WordCountCap = defaults.WordCountCap
	}
	if cfg.DiversityScale <= 0 {
		cfg.DiversityScale = defaults.DiversityScale
	}
	if chunker == nil {
		chunker = NewTextChunker()
	}
	return &semanticRanker{
		embedder: embedder,
		chunker:  chunker,
		cfg:      cfg,
		log:      log.With(zap.String("component", "ranker")),
	}
}

// Rank implements SemanticRanker.
func (r *semanticRanker) Rank(ctx context.Context, jdText string, candidates []RankInput) RankResult {
	ranked := make([]RankedCandidate, 0, len(candidates))
	offsets := make([]int, 0, len(candidates))
	var allChunks []string

	for _, c := range candidates {
		chunks := r.chunker.ChunkText(c.Text, r.cfg.ChunkSize, r.cfg.ChunkSize/4)
		if len(chunks) == 0 {
			r.log.Debug("candidate produced no chunks, skipping", zap.String("candidate", c.Ref))
			continue
		}
		offsets = append(offsets, len(allChunks))
		allChunks = append(allChunks, chunks...)
		ranked = append(ranked, RankedCandidate{Ref: c.Ref, Text: c.Text, Chunks: chunks})
	}

	if len(ranked) == 0 {
		return RankResult{}
	}

	chunkVectors := r.embedder.Embed(ctx, allChunks)
	if len(chunkVectors) != len(allChunks) {
		chunkVectors = nil
	}
	var jdVector []float32
	if v := r.embedder.Embed(ctx, []string{jdText}); len(v) == 1 {
		jdVector = v[0]
	}
	if chunkVectors == nil || jdVector == nil {
		metrics.SoftFailures.WithLabelValues("rank", string(KindEmbedding)).Inc()
		r.log.Warn("embedding unavailable, similarity will be zero",
			zap.Bool("chunks_embedded", chunkVectors != nil),
			zap.Bool("jd_embedded", jdVector != nil),
		)
	}

	allZero := true
	for i := range ranked {
		c := &ranked[i]
		if chunkVectors != nil {
			c.Vectors = chunkVectors[offsets[i] : offsets[i]+len(c.Chunks)]
		}

		raw := 0.0
		if jdVector != nil && c.Vectors != nil {
			sims := make([]float64, len(c.Vectors))
			for j, v := range c.Vectors {
				sims[j] = cosineSimilarity(jdVector, v)
			}
			raw = clamp01(meanTopK(sims, r.cfg.TopK))
		}
		if raw != 0 {
			allZero = false
		}

		weight := r.semanticWeight(c.Text, c.Vectors)
		c.Score = models.SemanticScore{
			CandidateRef:  c.Ref,
			RawSimilarity: raw,
			Weight:        weight,
			WeightedScore: raw * weight,
		}
	}

	if allZero {
		r.log.Warn("all similarities are zero, using uniform ranking", zap.Int("candidates", len(ranked)))
		for i := range ranked {
			ranked[i].Score.WeightedScore = uniformScore
		}
	} else {
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Score.WeightedScore > ranked[j].Score.WeightedScore
		})
	}

	n := min(r.cfg.TopN, len(ranked))
	r.log.Info("candidates ranked", zap.Int("ranked", len(ranked)), zap.Int("shortlisted", n))

	return RankResult{
		Ranked:    ranked,
		Shortlist: ranked[:n],
		Uniform:   allZero,
	}
}

// semanticWeight scores résumé richness independent of the job description.
func (r *semanticRanker) semanticWeight(text string, vectors [][]float32) float64 {
	section := sectionScore(text)
	diversity := clamp01(meanPairwiseDistance(vectors) / r.cfg.DiversityScale)
	words := clamp01(float64(wordCount(text)) / float64(r.cfg.WordCountCap))

	return clamp01(r.cfg.SectionWeight*section +
		r.cfg.DiversityWeight*diversity +
		r.cfg.WordCountWeight*words)
}

func sectionScore(text string) float64 {
	lower := strings.ToLower(text)
	found := 0
	for _, kw := range sectionKeywords {
		if strings.Contains(lower, kw) {
			found++
		}
	}
	return float64(found) / float64(len(sectionKeywords))
}
