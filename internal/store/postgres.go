// Package store provides the typed persistence layer over PostgreSQL,
// with pgvector for dense search and a generated tsvector column for
// sparse full-text search.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a pooled Postgres connection and bootstraps the schema the
// ingestion pipeline and retrieval engine depend on.
type Store struct {
	pool                *pgxpool.Pool
	embeddingDimensions int
}

// New connects to Postgres using dsn and ensures the schema and indexes
// exist, creating them on first boot if absent.
func New(ctx context.Context, dsn string, embeddingDimensions int) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	s := &Store{pool: pool, embeddingDimensions: embeddingDimensions}
	if err := s.bootstrap(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: bootstrap: %w", err)
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() { s.pool.Close() }

// Pool exposes the underlying pool for callers that need direct access.
// The ingestion writer does not use it; its transaction lives inside
// WriteChunksAndEmbeddings.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) bootstrap(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS documents (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			source_type TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			source_uri TEXT NOT NULL DEFAULT '',
			original_filename TEXT NOT NULL DEFAULT '',
			content_text TEXT NOT NULL DEFAULT '',
			content_hash TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			status TEXT NOT NULL DEFAULT 'RUNNING',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			ingested_at TIMESTAMPTZ,
			fetched_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_user_id ON documents(user_id)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			document_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			user_id UUID NOT NULL,
			chunk_index INTEGER NOT NULL,
			text TEXT NOT NULL,
			token_count INTEGER NOT NULL DEFAULT 0,
			char_start INTEGER NOT NULL,
			char_end INTEGER NOT NULL,
			page_start INTEGER,
			page_end INTEGER,
			time_start TIMESTAMPTZ,
			time_end TIMESTAMPTZ,
			time_start_ms INTEGER,
			time_end_ms INTEGER,
			metadata JSONB NOT NULL DEFAULT '{}',
			text_search tsvector GENERATED ALWAYS AS (to_tsvector('english', text)) STORED,
			UNIQUE(document_id, chunk_index)
		)`),
		`CREATE INDEX IF NOT EXISTS idx_chunks_user_id ON chunks(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks(document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_text_search ON chunks USING GIN(text_search)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunk_embeddings (
			chunk_id UUID PRIMARY KEY REFERENCES chunks(id) ON DELETE CASCADE,
			embedding vector(%d) NOT NULL,
			embedding_model TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.embeddingDimensions),
		`CREATE INDEX IF NOT EXISTS idx_chunk_embeddings_ann ON chunk_embeddings USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,

		`CREATE TABLE IF NOT EXISTS ingestion_jobs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			document_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			status TEXT NOT NULL DEFAULT 'RUNNING',
			stage TEXT NOT NULL DEFAULT 'RECEIVED',
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ingestion_jobs_document_id ON ingestion_jobs(document_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstWords(stmt, 6), err)
		}
	}
	return nil
}

func firstWords(s string, n int) string {
	words := 0
	for i, r := range s {
		if r == ' ' {
			words++
			if words == n {
				return s[:i]
			}
		}
	}
	return s
}
