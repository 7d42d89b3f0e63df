package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/secondbrain/core/internal/core"
)

// WriteChunksAndEmbeddings writes every chunk and its embedding for a
// document within a single transaction, which also sets the document's
// terminal status. Either all rows commit and the document becomes
// COMPLETED, or nothing is written and the caller is responsible for
// marking the document FAILED.
func (s *Store) WriteChunksAndEmbeddings(ctx context.Context, documentID, userID string, chunks []*core.Chunk, embeddings []*core.ChunkEmbedding) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return core.NewError(core.KindStorageFailed, "WriteChunksAndEmbeddings", err)
	}
	defer tx.Rollback(ctx)

	embeddingByIndex := make(map[int]*core.ChunkEmbedding, len(embeddings))
	for i, e := range embeddings {
		embeddingByIndex[i] = e
	}

	for i, c := range chunks {
		metadataJSON, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("store: marshal chunk metadata: %w", err)
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO chunks
				(document_id, user_id, chunk_index, text, token_count, char_start, char_end,
				 page_start, page_end, time_start, time_end, time_start_ms, time_end_ms, metadata)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
			 RETURNING id`,
			documentID, userID, c.ChunkIndex, c.Text, c.TokenCount, c.CharStart, c.CharEnd,
			c.PageStart, c.PageEnd, c.TimeStart, c.TimeEnd,
			msOf(c.SourceOffsetMSStart), msOf(c.SourceOffsetMSEnd), metadataJSON,
		).Scan(&c.ID)
		if err != nil {
			return core.NewError(core.KindStorageFailed, "WriteChunksAndEmbeddings", err)
		}

		emb, ok := embeddingByIndex[i]
		if !ok {
			continue
		}
		emb.ChunkID = c.ID
		_, err = tx.Exec(ctx,
			`INSERT INTO chunk_embeddings (chunk_id, embedding, embedding_model) VALUES ($1, $2, $3)`,
			emb.ChunkID, pgvector.NewVector(emb.Embedding), emb.EmbeddingModel,
		)
		if err != nil {
			return core.NewError(core.KindStorageFailed, "WriteChunksAndEmbeddings", err)
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE documents SET status = $1, ingested_at = now() WHERE id = $2`,
		core.DocumentCompleted, documentID,
	); err != nil {
		return core.NewError(core.KindStorageFailed, "WriteChunksAndEmbeddings", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return core.NewError(core.KindStorageFailed, "WriteChunksAndEmbeddings", err)
	}
	return nil
}

func msOf(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// DenseCandidate is one row of the dense search result set.
type DenseCandidate struct {
	Passage        core.Passage
	CosineDistance float64
}

// SparseCandidate is one row of the sparse search result set.
type SparseCandidate struct {
	Passage core.Passage
	TSRank  float64
}

// temporalClause builds the shared time-anchor-or-document-date filter
// used by both dense and sparse search, returning the SQL fragment and its
// positional args starting at argOffset. A chunk with an absolute time
// anchor matches on interval overlap; a chunk without one (text, PDF,
// markdown) falls back to its parent document's created_at.
func temporalClause(interval *core.TemporalInterval, argOffset int) (string, []any) {
	if interval == nil {
		return "", nil
	}
	clause := fmt.Sprintf(`AND (
		(c.time_start IS NOT NULL AND c.time_end IS NOT NULL
			AND c.time_start < $%d AND c.time_end >= $%d)
		OR (c.time_start IS NULL AND d.created_at >= $%d AND d.created_at < $%d)
	)`, argOffset+1, argOffset, argOffset, argOffset+1)
	return clause, []any{interval.Start, interval.End}
}

// DenseSearch fetches up to limit chunks minimizing cosine distance to
// queryVector, restricted to userID and an optional temporal interval.
func (s *Store) DenseSearch(ctx context.Context, userID string, queryVector []float32, interval *core.TemporalInterval, limit int) ([]DenseCandidate, error) {
	clause, temporalArgs := temporalClause(interval, 3)

	query := fmt.Sprintf(`
		SELECT c.id, c.document_id, d.title, d.source_uri, d.source_type, c.text,
			c.page_start, c.page_end, c.time_start_ms, c.time_end_ms,
			(ce.embedding <=> $1) AS distance
		FROM chunks c
		JOIN chunk_embeddings ce ON ce.chunk_id = c.id
		JOIN documents d ON d.id = c.document_id
		WHERE c.user_id = $2 AND d.status = '%s'
		%s
		ORDER BY ce.embedding <=> $1
		LIMIT %d`, core.DocumentCompleted, clause, limit)

	args := append([]any{pgvector.NewVector(queryVector), userID}, temporalArgs...)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, core.NewError(core.KindStorageFailed, "DenseSearch", err)
	}
	defer rows.Close()

	var out []DenseCandidate
	for rows.Next() {
		var cand DenseCandidate
		var startMS, endMS *int
		if err := rows.Scan(&cand.Passage.ChunkID, &cand.Passage.DocumentID, &cand.Passage.Title,
			&cand.Passage.SourceURI, &cand.Passage.SourceType, &cand.Passage.Text,
			&cand.Passage.PageStart, &cand.Passage.PageEnd, &startMS, &endMS,
			&cand.CosineDistance,
		); err != nil {
			return nil, core.NewError(core.KindStorageFailed, "DenseSearch", err)
		}
		cand.Passage.TimeStart, cand.Passage.TimeEnd = msPairToDuration(startMS, endMS)
		out = append(out, cand)
	}
	return out, rows.Err()
}

func msPairToDuration(startMS, endMS *int) (*time.Duration, *time.Duration) {
	if startMS == nil || endMS == nil {
		return nil, nil
	}
	s := time.Duration(*startMS) * time.Millisecond
	e := time.Duration(*endMS) * time.Millisecond
	return &s, &e
}

// SparseSearch issues a full-text query over the chunk text index with
// residual-query tokens joined by AND semantics. Returns an empty result
// (not an error) when the residual has no usable tokens, consistent with
// QUERY_REJECTED never being fatal to retrieval.
func (s *Store) SparseSearch(ctx context.Context, userID, residual string, interval *core.TemporalInterval, limit int) ([]SparseCandidate, error) {
	tsQuery := toTSQuery(residual)
	if tsQuery == "" {
		return nil, nil
	}

	clause, temporalArgs := temporalClause(interval, 3)

	query := fmt.Sprintf(`
		SELECT c.id, c.document_id, d.title, d.source_uri, d.source_type, c.text,
			c.page_start, c.page_end,
			ts_rank(c.text_search, to_tsquery('english', $1)) AS rank
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.user_id = $2 AND d.status = '%s'
			AND c.text_search @@ to_tsquery('english', $1)
		%s
		ORDER BY rank DESC
		LIMIT %d`, core.DocumentCompleted, clause, limit)

	args := append([]any{tsQuery, userID}, temporalArgs...)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, core.NewError(core.KindQueryRejected, "SparseSearch", err)
	}
	defer rows.Close()

	var out []SparseCandidate
	for rows.Next() {
		var cand SparseCandidate
		if err := rows.Scan(&cand.Passage.ChunkID, &cand.Passage.DocumentID, &cand.Passage.Title,
			&cand.Passage.SourceURI, &cand.Passage.SourceType, &cand.Passage.Text,
			&cand.Passage.PageStart, &cand.Passage.PageEnd, &cand.TSRank,
		); err != nil {
			return nil, core.NewError(core.KindStorageFailed, "SparseSearch", err)
		}
		out = append(out, cand)
	}
	return out, rows.Err()
}

// toTSQuery builds an AND-joined to_tsquery expression from residual's
// word tokens, trimming non-alphanumeric characters from each token's edges.
// It returns "" when no token remains (e.g. only punctuation), so the caller
// can treat the sparse side as contributing nothing. Stop words are not
// filtered here; they are passed on to to_tsquery.
func toTSQuery(residual string) string {
	fields := strings.Fields(residual)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		cleaned := strings.TrimFunc(f, func(r rune) bool {
			return !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9')
		})
		if cleaned != "" {
			tokens = append(tokens, cleaned)
		}
	}
	if len(tokens) == 0 {
		return ""
	}
	return strings.Join(tokens, " & ")
}
