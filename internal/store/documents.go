package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/secondbrain/core/internal/core"
)

// CreateDocument inserts a new Document in RUNNING status and returns its
// assigned id and created_at. A caller-supplied doc.CreatedAt (non-zero,
// e.g. from a client-provided created_at or a web page's published_at)
// overrides the column default of now().
func (s *Store) CreateDocument(ctx context.Context, doc *core.Document) error {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("store: marshal document metadata: %w", err)
	}

	var createdAt any
	if !doc.CreatedAt.IsZero() {
		createdAt = doc.CreatedAt
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO documents
			(user_id, source_type, title, source_uri, original_filename, content_text, content_hash, metadata, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, now()))
		 RETURNING id, created_at`,
		doc.UserID, doc.SourceType, doc.Title, doc.SourceURI, doc.OriginalFilename,
		doc.ContentText, doc.ContentHash, metadataJSON, core.DocumentRunning, createdAt,
	).Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		return core.NewError(core.KindStorageFailed, "CreateDocument", err)
	}
	doc.Status = core.DocumentRunning
	return nil
}

// GetDocument fetches a document owned by userID, returning a NOT_FOUND
// core.Error if it does not exist or belongs to another user.
func (s *Store) GetDocument(ctx context.Context, userID, id string) (*core.Document, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, source_type, title, source_uri, original_filename,
			content_text, content_hash, metadata, status, created_at, ingested_at, fetched_at
		 FROM documents WHERE id = $1 AND user_id = $2`, id, userID)
	return scanDocument(row)
}

// ListDocuments returns all documents owned by userID, most recent first.
func (s *Store) ListDocuments(ctx context.Context, userID string) ([]*core.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, source_type, title, source_uri, original_filename,
			content_text, content_hash, metadata, status, created_at, ingested_at, fetched_at
		 FROM documents WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, core.NewError(core.KindStorageFailed, "ListDocuments", err)
	}
	defer rows.Close()

	var docs []*core.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document and, by foreign-key cascade, its
// chunks, chunk embeddings, and ingestion jobs.
func (s *Store) DeleteDocument(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return core.NewError(core.KindStorageFailed, "DeleteDocument", err)
	}
	if tag.RowsAffected() == 0 {
		return core.NewError(core.KindNotFound, "DeleteDocument", fmt.Errorf("document %s", id))
	}
	return nil
}

// UpdateDocumentStatus moves a document to its terminal status.
func (s *Store) UpdateDocumentStatus(ctx context.Context, id string, status core.DocumentStatus) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE documents SET status = $1, ingested_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return core.NewError(core.KindStorageFailed, "UpdateDocumentStatus", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*core.Document, error) {
	var doc core.Document
	var metadataJSON []byte
	err := row.Scan(&doc.ID, &doc.UserID, &doc.SourceType, &doc.Title, &doc.SourceURI,
		&doc.OriginalFilename, &doc.ContentText, &doc.ContentHash, &metadataJSON,
		&doc.Status, &doc.CreatedAt, &doc.IngestedAt, &doc.FetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.NewError(core.KindNotFound, "GetDocument", err)
		}
		return nil, core.NewError(core.KindStorageFailed, "GetDocument", err)
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("store: unmarshal document metadata: %w", err)
		}
	}
	return &doc, nil
}
