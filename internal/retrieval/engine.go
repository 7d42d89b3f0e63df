// Package retrieval implements the hybrid dense + sparse query path:
// temporal extraction, parallel dense/sparse search, and score fusion.
package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/secondbrain/core/internal/core"
	"github.com/secondbrain/core/internal/store"
	"github.com/secondbrain/core/internal/temporal"
	"github.com/secondbrain/core/pkg/cache"
	"github.com/secondbrain/core/pkg/clients/embedding"
	"github.com/secondbrain/core/pkg/logger"
	"github.com/secondbrain/core/pkg/search"
)

const (
	// DefaultTopK is the engine-internal default; the HTTP surface's own
	// default (5) is an external collaborator concern.
	DefaultTopK = 10

	// denseFetchMultiplier widens the dense candidate set beyond top_k so
	// fusion has enough headroom to promote sparse-favored chunks.
	denseFetchMultiplier = 3

	// resultCacheTTL bounds how long a fused result set is served from
	// cache before a query re-runs against the store.
	resultCacheTTL = 30 * time.Minute
)

// Engine is the hybrid retrieval entry point.
type Engine struct {
	store          *store.Store
	embedder       embedding.Embedder
	cache          cache.Cache
	embeddingModel string
}

func New(s *store.Store, embedder embedding.Embedder, c cache.Cache, embeddingModel string) *Engine {
	return &Engine{store: s, embedder: embedder, cache: c, embeddingModel: embeddingModel}
}

// Query carries the parameters of one retrieval request.
type Query struct {
	UserID       string
	Text         string
	Timezone     string
	TopK         int
	VectorWeight float64
	TextWeight   float64
}

// Retrieve runs the full pipeline: temporal extraction, one embedding
// call on the residual, parallel dense/sparse search, score fusion, and
// truncation to top_k.
func (e *Engine) Retrieve(ctx context.Context, q Query) ([]core.Passage, error) {
	topK := q.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	vectorWeight := q.VectorWeight
	textWeight := q.TextWeight
	if vectorWeight == 0 && textWeight == 0 {
		vectorWeight, textWeight = search.DefaultVectorWeight, search.DefaultTextWeight
	}

	key := resultCacheKey(q.UserID, q.Text, vectorWeight, textWeight, topK)
	var cached []core.Passage
	if hit, err := e.cache.GetJSON(ctx, key, &cached); err != nil {
		logger.Get().Warn("retrieval cache read failed", "error", err)
	} else if hit {
		return cached, nil
	}

	residual, interval := temporal.Parse(q.Text, time.Now().UTC())

	embResp, err := e.embedder.CreateEmbeddingWithDefaults(ctx, e.embeddingModel, residual)
	if err != nil {
		return nil, core.NewError(core.KindEmbeddingFailed, "Retrieve", err)
	}
	queryVector := make([]float32, len(embResp.Data[0].Embedding))
	for i, f := range embResp.Data[0].Embedding {
		queryVector[i] = float32(f)
	}

	type denseResult struct {
		candidates []store.DenseCandidate
		err        error
	}
	type sparseResult struct {
		candidates []store.SparseCandidate
		err        error
	}
	denseCh := make(chan denseResult, 1)
	sparseCh := make(chan sparseResult, 1)

	go func() {
		cands, err := e.store.DenseSearch(ctx, q.UserID, queryVector, interval, topK*denseFetchMultiplier)
		denseCh <- denseResult{cands, err}
	}()
	go func() {
		cands, err := e.store.SparseSearch(ctx, q.UserID, residual, interval, topK*denseFetchMultiplier)
		sparseCh <- sparseResult{cands, err}
	}()

	dense := <-denseCh
	sparse := <-sparseCh
	if dense.err != nil {
		return nil, dense.err
	}
	if sparse.err != nil {
		// Sparse errors are swallowed: fall back to dense-only, matching
		// QUERY_REJECTED never being fatal to retrieval.
		logger.Get().Warn("sparse search failed, falling back to dense-only", "error", sparse.err)
		sparse.candidates = nil
	}

	passageByChunk := make(map[string]core.Passage, len(dense.candidates)+len(sparse.candidates))
	denseScores := make(map[string]float64, len(dense.candidates))
	for _, c := range dense.candidates {
		denseScores[c.Passage.ChunkID] = search.NormalizeDense(c.CosineDistance)
		passageByChunk[c.Passage.ChunkID] = c.Passage
	}
	sparseScores := make(map[string]float64, len(sparse.candidates))
	for _, c := range sparse.candidates {
		sparseScores[c.Passage.ChunkID] = search.NormalizeSparse(c.TSRank)
		if _, ok := passageByChunk[c.Passage.ChunkID]; !ok {
			passageByChunk[c.Passage.ChunkID] = c.Passage
		}
	}

	fused := search.Fuse(denseScores, sparseScores, vectorWeight, textWeight, topK)

	passages := make([]core.Passage, 0, len(fused))
	for _, f := range fused {
		p := passageByChunk[f.ChunkID]
		p.Score = f.Score
		passages = append(passages, p)
	}

	if err := e.cache.SetJSON(ctx, key, passages, resultCacheTTL); err != nil {
		logger.Get().Warn("retrieval cache write failed", "error", err)
	}

	return passages, nil
}

// resultCacheKey hashes the parameters that determine a retrieval result,
// so an identical query from the same user against the same weights and
// top_k reuses a cached fused passage list.
func resultCacheKey(userID, query string, vectorWeight, textWeight float64, topK int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%f|%f|%d", userID, query, vectorWeight, textWeight, topK))
	return "retrieve:" + hex.EncodeToString(sum[:])
}
