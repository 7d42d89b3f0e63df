// Package search implements hybrid score fusion over dense and sparse
// retrieval results.
package search

import "sort"

// Fused pairs a chunk id with its combined score.
type Fused struct {
	ChunkID string
	Score   float64
}

const (
	// DefaultVectorWeight and DefaultTextWeight are the fusion defaults.
	DefaultVectorWeight = 0.7
	DefaultTextWeight   = 0.3

	// sparseRankScale normalizes a Postgres ts_rank value (typically a
	// small fraction) onto roughly the same [0, 1] scale as the dense
	// cosine-similarity score.
	sparseRankScale = 10.0
)

// NormalizeDense converts a pgvector cosine distance into a similarity
// score: 1 - distance, which lands in [-1, 1] and in practice [0, 1] for
// embeddings produced by the same model.
func NormalizeDense(cosineDistance float64) float64 {
	return 1 - cosineDistance
}

// NormalizeSparse scales a ts_rank value and clamps it to 1.0.
func NormalizeSparse(tsRank float64) float64 {
	s := tsRank * sparseRankScale
	if s > 1.0 {
		return 1.0
	}
	return s
}

// Fuse merges dense and sparse candidate sets keyed by chunk id, computing
// score = vectorWeight*dense + textWeight*sparse with missing contributions
// treated as zero, then returns the top-k by descending fused score.
func Fuse(dense, sparse map[string]float64, vectorWeight, textWeight float64, topK int) []Fused {
	merged := make(map[string]float64, len(dense)+len(sparse))
	order := make([]string, 0, len(dense)+len(sparse))

	for id, score := range dense {
		merged[id] = vectorWeight * score
		order = append(order, id)
	}
	for id, score := range sparse {
		if _, ok := merged[id]; ok {
			merged[id] += textWeight * score
		} else {
			merged[id] = textWeight * score
			order = append(order, id)
		}
	}

	results := make([]Fused, 0, len(order))
	for _, id := range order {
		results = append(results, Fused{ChunkID: id, Score: merged[id]})
	}

	// Sort is not used for the tie-break (left undefined); descending score
	// is the only ordering guarantee.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}
