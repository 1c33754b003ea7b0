package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
)

// chunkNamespace seeds deterministic point ids so re-screening a résumé
// overwrites its previous chunks.
var chunkNamespace = uuid.MustParse("6f1c3f2e-1b7a-4c1e-9a55-3d0c2b7e8a41")

// QdrantService stores résumé chunk vectors per job posting for semantic search.
type QdrantService interface {
	ChunkIndexer
	InitCollection(ctx context.Context) error
	SearchChunks(ctx context.Context, jobPostingID string, queryEmbedding []float32, limit int) ([]models.ChunkMatch, error)
	DeleteCandidateChunks(ctx context.Context, jobPostingID, resumeName string) error
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	log            *zap.Logger
}

func NewQdrantService(urlStr, apiKey, collectionName string, vectorSize uint64, log *zap.Logger) (QdrantService, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	if vectorSize == 0 {
		vectorSize = 768
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     vectorSize,
		log:            log.With(zap.String("component", "qdrant")),
	}, nil
}

// InitCollection implements QdrantService.
func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		q.log.Info("✅ Collection already exists", zap.String("collection", q.collectionName))
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.log.Info("✅ Qdrant collection created", zap.String("collection", q.collectionName))
	return nil
}

// IndexCandidateChunks implements ChunkIndexer. Candidates without vectors
// are skipped.
func (q *qdrantService) IndexCandidateChunks(ctx context.Context, jobPostingID string, candidates []RankedCandidate) error {
	points := chunkPoints(jobPostingID, candidates)
	if len(points) == 0 {
		return nil
	}

	for _, c := range candidates {
		if len(c.Vectors) == 0 {
			continue
		}
		if err := q.DeleteCandidateChunks(ctx, jobPostingID, c.Ref); err != nil {
			return err
		}
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert chunks: %w", err)
	}

	q.log.Debug("chunks indexed", zap.String("job_posting_id", jobPostingID), zap.Int("points", len(points)))
	return nil
}

func chunkPoints(jobPostingID string, candidates []RankedCandidate) []*qdrant.PointStruct {
	var points []*qdrant.PointStruct
	for _, c := range candidates {
		if len(c.Vectors) != len(c.Chunks) {
			continue
		}
		for i, vec := range c.Vectors {
			points = append(points, &qdrant.PointStruct{
				Id:      qdrant.NewID(chunkPointID(jobPostingID, c.Ref, i)),
				Vectors: qdrant.NewVectors(vec...),
				Payload: qdrant.NewValueMap(map[string]any{
					"job_posting_id": jobPostingID,
					"resume_name":    c.Ref,
					"chunk_index":    i,
					"text":           c.Chunks[i],
				}),
			})
		}
	}
	return points
}

func chunkPointID(jobPostingID, resumeName string, index int) string {
	key := jobPostingID + "\x00" + resumeName + "\x00" + strconv.Itoa(index)
	return uuid.NewSHA1(chunkNamespace, []byte(key)).String()
}

// SearchChunks implements QdrantService.
func (q *qdrantService) SearchChunks(ctx context.Context, jobPostingID string, queryEmbedding []float32, limit int) ([]models.ChunkMatch, error) {
	if limit <= 0 {
		limit = 10
	}

	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("job_posting_id", jobPostingID),
			},
		},
		Limit:       qdrant.PtrOf(uint64(limit)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]models.ChunkMatch, 0, len(searchResult))
	for _, point := range searchResult {
		payload := point.Payload
		match := models.ChunkMatch{Score: point.Score}

		if v, ok := payload["resume_name"]; ok {
			match.ResumeName = v.GetStringValue()
		}
		if v, ok := payload["text"]; ok {
			match.Text = v.GetStringValue()
		}
		if v, ok := payload["chunk_index"]; ok {
			match.ChunkIndex = int(v.GetIntegerValue())
		}

		results = append(results, match)
	}

	return results, nil
}

// DeleteCandidateChunks implements QdrantService.
func (q *qdrantService) DeleteCandidateChunks(ctx context.Context, jobPostingID, resumeName string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("job_posting_id", jobPostingID),
			qdrant.NewMatch("resume_name", resumeName),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete candidate chunks: %w", err)
	}

	return nil
}
