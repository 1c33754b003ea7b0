package services

import (
	"math"
	"sort"
)

// cosineSimilarity returns 0 for mismatched lengths or zero-norm vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// meanTopK averages the k largest values. k larger than len(values) averages
// all of them.
func meanTopK(values []float64, k int) float64 {
	if len(values) == 0 || k <= 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	if k > len(sorted) {
		k = len(sorted)
	}

	sum := 0.0
	for _, v := range sorted[:k] {
		sum += v
	}
	return sum / float64(k)
}

// meanPairwiseDistance is the mean cosine distance over all vector pairs.
func meanPairwiseDistance(vectors [][]float32) float64 {
	if len(vectors) < 2 {
		return 0
	}

	sum := 0.0
	pairs := 0
	for i := 0; i < len(vectors); i++ {
		for j := i + 1; j < len(vectors); j++ {
			sum += 1 - cosineSimilarity(vectors[i], vectors[j])
			pairs++
		}
	}
	return sum / float64(pairs)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
