// Package ingest orchestrates extractor -> chunker -> embedder -> writer
// for every source variant, driving the IngestionJob through its staged
// state machine.
package ingest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/secondbrain/core/internal/chunking"
	"github.com/secondbrain/core/internal/core"
	"github.com/secondbrain/core/internal/extract"
	"github.com/secondbrain/core/internal/store"
	"github.com/secondbrain/core/internal/tokenizer"
	"github.com/secondbrain/core/pkg/clients/embedding"
	"github.com/secondbrain/core/pkg/logger"
	objectstore "github.com/secondbrain/core/pkg/storage"
)

const maxTitleChars = 100

// Pipeline wires the extractor, chunker, and embedder process-wide
// singletons to the storage adapter, so each ingestion request constructs
// nothing beyond its own Document and IngestionJob rows.
type Pipeline struct {
	store    *store.Store
	files    objectstore.ObjectStorage
	embedder embedding.Embedder

	textExtractor     *extract.TextExtractor
	markdownExtractor *extract.MarkdownExtractor
	pdfExtractor      *extract.PDFExtractor
	webExtractor      *extract.WebExtractor
	audioExtractor    *extract.AudioExtractor

	textualChunker  *chunking.TextualChunker
	temporalChunker *chunking.TemporalChunker

	embeddingModel string
}

// New builds a Pipeline from its configured collaborators.
func New(
	s *store.Store,
	files objectstore.ObjectStorage,
	embedder embedding.Embedder,
	audioExtractor *extract.AudioExtractor,
	tokens *tokenizer.Counter,
	chunkSizeTokens, chunkOverlapTokens, targetDurationMS int,
	embeddingModel string,
) *Pipeline {
	return &Pipeline{
		store:             s,
		files:             files,
		embedder:          embedder,
		textExtractor:     extract.NewTextExtractor(),
		markdownExtractor: extract.NewMarkdownExtractor(),
		pdfExtractor:      extract.NewPDFExtractor(),
		webExtractor:      extract.NewWebExtractor(),
		audioExtractor:    audioExtractor,
		textualChunker:    chunking.NewTextualChunker(tokens, chunkSizeTokens, chunkOverlapTokens),
		temporalChunker:   chunking.NewTemporalChunker(tokens, targetDurationMS),
		embeddingModel:    embeddingModel,
	}
}

// IngestText ingests plain-text content supplied directly in the request.
func (p *Pipeline) IngestText(ctx context.Context, userID, text, title string, createdAt *time.Time) (*core.Document, error) {
	doc := &core.Document{
		UserID:      userID,
		SourceType:  core.SourceText,
		Title:       deriveTitle(title, text),
		ContentText: text,
		ContentHash: hashText(text),
		Metadata:    map[string]any{},
	}
	if createdAt != nil {
		doc.CreatedAt = *createdAt
	}
	return p.run(ctx, doc, core.StageReceived, func(job *core.IngestionJob) error {
		return p.chunkEmbedWrite(ctx, doc, job, text, nil, nil)
	})
}

// IngestURL fetches and extracts a URL, then ingests it as a web document.
func (p *Pipeline) IngestURL(ctx context.Context, userID, url string) (*core.Document, error) {
	extracted, err := p.webExtractor.FetchAndExtract(ctx, url)
	if err != nil {
		return nil, core.NewError(core.KindExtractionFailed, "IngestURL", err)
	}

	title := extracted.Title
	if title == "" {
		title = url
	}
	createdAt := time.Now().UTC()
	if extracted.PublishedAt != nil {
		createdAt = *extracted.PublishedAt
	}
	fetchedAt := time.Now().UTC()

	doc := &core.Document{
		UserID:      userID,
		SourceType:  core.SourceURL,
		Title:       title,
		SourceURI:   url,
		ContentText: extracted.Text,
		ContentHash: hashText(extracted.Text),
		Metadata:    extracted.Metadata,
		CreatedAt:   createdAt,
		FetchedAt:   &fetchedAt,
	}
	return p.run(ctx, doc, core.StageExtracted, func(job *core.IngestionJob) error {
		return p.chunkEmbedWrite(ctx, doc, job, extracted.Text, extracted.PageBoundaries, nil)
	})
}

// IngestFile ingests raw file bytes according to sourceType. Audio, PDF and
// Markdown files are first staged in object storage under
// {user_id}/{audio|documents}/{uuid}{ext}; every other source type is
// ingested as plain text through IngestText and is not staged.
func (p *Pipeline) IngestFile(ctx context.Context, userID string, content []byte, originalFilename string, sourceType core.SourceType, createdAt *time.Time) (*core.Document, error) {
	switch sourceType {
	case core.SourceAudio:
		return p.ingestAudio(ctx, userID, content, originalFilename, createdAt)
	case core.SourcePDF, core.SourceMarkdown:
		return p.ingestDocumentFile(ctx, userID, content, originalFilename, sourceType, createdAt)
	default:
		return p.IngestText(ctx, userID, string(content), originalFilename, createdAt)
	}
}

func (p *Pipeline) ingestAudio(ctx context.Context, userID string, content []byte, originalFilename string, createdAt *time.Time) (*core.Document, error) {
	objectKey, err := p.stageFile(ctx, userID, "audio", originalFilename, content)
	if err != nil {
		return nil, core.NewError(core.KindStorageFailed, "ingestAudio", err)
	}

	fileURL, err := p.files.GeneratePresignedDownloadURL(ctx, objectKey, time.Hour)
	if err != nil {
		return nil, core.NewError(core.KindStorageFailed, "ingestAudio", err)
	}

	doc := &core.Document{
		UserID:           userID,
		SourceType:       core.SourceAudio,
		Title:            originalFilename,
		SourceURI:        objectKey,
		OriginalFilename: originalFilename,
		ContentHash:      hashBytes(content),
		Metadata:         map[string]any{},
	}
	if createdAt != nil {
		doc.CreatedAt = *createdAt
	}

	return p.run(ctx, doc, core.StageReceived, func(job *core.IngestionJob) error {
		extracted, err := p.audioExtractor.ExtractFromURL(ctx, fileURL)
		if err != nil {
			return core.NewError(core.KindTranscriptionFailed, "ingestAudio", err)
		}
		if err := p.store.AdvanceStage(ctx, job.ID, core.StageExtracted); err != nil {
			return err
		}
		doc.ContentText = extracted.Text
		doc.Metadata = extracted.Metadata

		return p.chunkEmbedWrite(ctx, doc, job, extracted.Text, nil, extracted.Segments)
	})
}

func (p *Pipeline) ingestDocumentFile(ctx context.Context, userID string, content []byte, originalFilename string, sourceType core.SourceType, createdAt *time.Time) (*core.Document, error) {
	objectKey, err := p.stageFile(ctx, userID, "documents", originalFilename, content)
	if err != nil {
		return nil, core.NewError(core.KindStorageFailed, "ingestDocumentFile", err)
	}

	var extracted *core.ExtractedContent
	switch sourceType {
	case core.SourcePDF:
		extracted, err = p.pdfExtractor.Extract(ctx, content)
	case core.SourceMarkdown:
		extracted, err = p.markdownExtractor.Extract(ctx, content)
	}
	if err != nil {
		return nil, core.NewError(core.KindExtractionFailed, "ingestDocumentFile", err)
	}

	title := extracted.Title
	if title == "" {
		title = originalFilename
	}

	doc := &core.Document{
		UserID:           userID,
		SourceType:       sourceType,
		Title:            title,
		SourceURI:        objectKey,
		OriginalFilename: originalFilename,
		ContentText:      extracted.Text,
		ContentHash:      hashBytes(content),
		Metadata:         extracted.Metadata,
	}
	if createdAt != nil {
		doc.CreatedAt = *createdAt
	}

	return p.run(ctx, doc, core.StageExtracted, func(job *core.IngestionJob) error {
		return p.chunkEmbedWrite(ctx, doc, job, extracted.Text, extracted.PageBoundaries, nil)
	})
}

// run creates the Document and its IngestionJob, invokes work, and
// commits the RUNNING -> COMPLETED / RUNNING -> FAILED transition on
// both together, matching the ingestion state machine's transition
// discipline.
func (p *Pipeline) run(ctx context.Context, doc *core.Document, initialStage core.Stage, work func(job *core.IngestionJob) error) (*core.Document, error) {
	if err := p.store.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	job, err := p.store.CreateJob(ctx, doc.UserID, doc.ID)
	if err != nil {
		return nil, err
	}
	if initialStage != core.StageReceived {
		if err := p.store.AdvanceStage(ctx, job.ID, initialStage); err != nil {
			return nil, err
		}
	}

	if err := work(job); err != nil {
		logger.Get().Error("ingestion failed", "document_id", doc.ID, "error", err)
		if failErr := p.store.FailJob(ctx, job.ID, err); failErr != nil {
			return nil, failErr
		}
		if failErr := p.store.UpdateDocumentStatus(ctx, doc.ID, core.DocumentFailed); failErr != nil {
			return nil, failErr
		}
		doc.Status = core.DocumentFailed
		return doc, err
	}

	if err := p.store.CompleteJob(ctx, job.ID); err != nil {
		return nil, err
	}
	doc.Status = core.DocumentCompleted
	return doc, nil
}

// chunkEmbedWrite runs the shared CHUNKED -> EMBEDDED -> INDEXED tail of
// every ingestion path: chunk the canonical text (or audio segments),
// batch-embed the chunks, and write them transactionally.
func (p *Pipeline) chunkEmbedWrite(ctx context.Context, doc *core.Document, job *core.IngestionJob, text string, pageBoundaries []core.PageBoundary, segments []core.Segment) error {
	var chunks []core.Chunk
	if segments != nil {
		chunks = p.temporalChunker.Chunk(segments)
		anchorTimeOffsets(chunks, doc.CreatedAt)
	} else {
		chunks = p.textualChunker.Chunk(text, pageBoundaries)
	}

	if err := p.store.AdvanceStage(ctx, job.ID, core.StageChunked); err != nil {
		return err
	}

	if len(chunks) == 0 {
		if err := p.store.AdvanceStage(ctx, job.ID, core.StageEmbedded); err != nil {
			return err
		}
		if err := p.store.WriteChunksAndEmbeddings(ctx, doc.ID, doc.UserID, nil, nil); err != nil {
			return err
		}
		return p.store.AdvanceStage(ctx, job.ID, core.StageIndexed)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	resp, err := p.embedder.CreateBatchEmbedding(ctx, p.embeddingModel, texts)
	if err != nil {
		return core.NewError(core.KindEmbeddingFailed, "chunkEmbedWrite", err)
	}
	if len(resp.Data) != len(chunks) {
		return core.NewError(core.KindEmbeddingFailed, "chunkEmbedWrite",
			fmt.Errorf("expected %d embeddings, got %d", len(chunks), len(resp.Data)))
	}

	chunkPtrs := make([]*core.Chunk, len(chunks))
	embeddings := make([]*core.ChunkEmbedding, len(chunks))
	for i := range chunks {
		chunkPtrs[i] = &chunks[i]
		vec := make([]float32, len(resp.Data[i].Embedding))
		for j, f := range resp.Data[i].Embedding {
			vec[j] = float32(f)
		}
		embeddings[i] = &core.ChunkEmbedding{
			Embedding:      vec,
			EmbeddingModel: p.embeddingModel,
		}
	}

	if err := p.store.AdvanceStage(ctx, job.ID, core.StageEmbedded); err != nil {
		return err
	}

	if err := p.store.WriteChunksAndEmbeddings(ctx, doc.ID, doc.UserID, chunkPtrs, embeddings); err != nil {
		return err
	}

	return p.store.AdvanceStage(ctx, job.ID, core.StageIndexed)
}

func (p *Pipeline) stageFile(ctx context.Context, userID, kind, originalFilename string, content []byte) (string, error) {
	ext := filepath.Ext(originalFilename)
	objectKey := objectstore.ObjectKey(userID, kind, uuid.NewString(), ext)
	if err := p.files.UploadFile(ctx, objectKey, bytes.NewReader(content), int64(len(content)), "application/octet-stream"); err != nil {
		return "", err
	}
	return objectKey, nil
}

// deriveTitle implements the Open Question's resolved title rule:
// provided title if any, else the first 100 characters with a trailing
// ellipsis if truncated.
func deriveTitle(title, text string) string {
	if strings.TrimSpace(title) != "" {
		return title
	}
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) <= maxTitleChars {
		return trimmed
	}
	return string(runes[:maxTitleChars]) + "..."
}

// anchorTimeOffsets resolves each audio chunk's source offset into an
// absolute TimeStart/TimeEnd anchored on the document's creation time, the
// value retrieval filters on when a query names a time range.
func anchorTimeOffsets(chunks []core.Chunk, baseTime time.Time) {
	for i := range chunks {
		c := &chunks[i]
		if c.SourceOffsetMSStart == nil || c.SourceOffsetMSEnd == nil {
			continue
		}
		start := baseTime.Add(time.Duration(*c.SourceOffsetMSStart) * time.Millisecond)
		end := baseTime.Add(time.Duration(*c.SourceOffsetMSEnd) * time.Millisecond)
		c.TimeStart = &start
		c.TimeEnd = &end
	}
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
