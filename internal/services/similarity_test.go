package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}

func TestMeanTopK(t *testing.T) {
	values := []float64{0.1, 0.9, 0.5, 0.7}

	assert.InDelta(t, 0.8, meanTopK(values, 2), 1e-9)
	assert.InDelta(t, 0.55, meanTopK(values, 10), 1e-9)
	assert.Equal(t, 0.0, meanTopK(nil, 3))
	assert.Equal(t, []float64{0.1, 0.9, 0.5, 0.7}, values, "input is not reordered")
}

func TestMeanPairwiseDistance(t *testing.T) {
	assert.Equal(t, 0.0, meanPairwiseDistance(nil))
	assert.Equal(t, 0.0, meanPairwiseDistance([][]float32{{1, 0}}))
	assert.InDelta(t, 1.0, meanPairwiseDistance([][]float32{{1, 0}, {0, 1}}), 1e-9)
	assert.InDelta(t, 0.0, meanPairwiseDistance([][]float32{{1, 1}, {2, 2}, {3, 3}}), 1e-9)
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.2))
	assert.Equal(t, 1.0, clamp01(1.7))
	assert.Equal(t, 0.4, clamp01(0.4))
	assert.Equal(t, 0.0, clamp01(math.NaN()))
}
