package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkPointID_Deterministic(t *testing.T) {
	a := chunkPointID("posting-1", "alice.pdf", 0)

	assert.Equal(t, a, chunkPointID("posting-1", "alice.pdf", 0))
	assert.NotEqual(t, a, chunkPointID("posting-1", "alice.pdf", 1))
	assert.NotEqual(t, a, chunkPointID("posting-2", "alice.pdf", 0))
	assert.NotEqual(t, a, chunkPointID("posting-1", "bob.pdf", 0))
}

func TestChunkPoints(t *testing.T) {
	candidates := []RankedCandidate{
		{
			Ref:     "alice.pdf",
			Chunks:  []string{"first chunk", "second chunk"},
			Vectors: [][]float32{{1, 0}, {0, 1}},
		},
		{
			// Vectors missing: nothing to index.
			Ref:    "bob.pdf",
			Chunks: []string{"only chunk"},
		},
	}

	points := chunkPoints("posting-1", candidates)

	require.Len(t, points, 2)
	second := points[1]
	assert.Equal(t, chunkPointID("posting-1", "alice.pdf", 1), second.GetId().GetUuid())
	assert.Equal(t, "alice.pdf", second.GetPayload()["resume_name"].GetStringValue())
	assert.Equal(t, "posting-1", second.GetPayload()["job_posting_id"].GetStringValue())
	assert.Equal(t, int64(1), second.GetPayload()["chunk_index"].GetIntegerValue())
	assert.Equal(t, "second chunk", second.GetPayload()["text"].GetStringValue())
}
