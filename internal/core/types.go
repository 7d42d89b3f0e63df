// Package core defines the domain types shared across the ingestion
// pipeline and the retrieval engine.
package core

import "time"

// SourceType identifies the origin variant of a Document.
type SourceType string

const (
	SourceText     SourceType = "text"
	SourceURL      SourceType = "url"
	SourceAudio    SourceType = "audio"
	SourcePDF      SourceType = "pdf"
	SourceMarkdown SourceType = "markdown"
	SourceImage    SourceType = "image"
)

// DocumentStatus tracks a Document's overall ingestion outcome.
type DocumentStatus string

const (
	DocumentRunning   DocumentStatus = "RUNNING"
	DocumentCompleted DocumentStatus = "COMPLETED"
	DocumentFailed    DocumentStatus = "FAILED"
)

// Stage is a discrete phase of the ingestion state machine.
type Stage string

const (
	StageReceived Stage = "RECEIVED"
	StageExtracted Stage = "EXTRACTED"
	StageChunked  Stage = "CHUNKED"
	StageEmbedded Stage = "EMBEDDED"
	StageIndexed  Stage = "INDEXED"
	StageFailed   Stage = "FAILED"
)

// JobStatus mirrors Document status at the job level.
type JobStatus string

const (
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
)

// User is the tenant namespace every Document and Chunk belongs to.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

// Document is one ingested source: a block of text, a fetched URL, or a
// staged file (PDF, Markdown, audio, image-with-text).
type Document struct {
	ID               string
	UserID           string
	SourceType       SourceType
	Title            string
	SourceURI        string
	OriginalFilename string
	ContentText      string
	ContentHash      string // SHA-256 of raw bytes for staged file sources (audio, PDF, Markdown); of the text for text and URL sources (for URLs, the extracted text, not the fetched bytes)
	Metadata         map[string]any
	Status           DocumentStatus
	CreatedAt        time.Time
	IngestedAt       *time.Time
	FetchedAt        *time.Time
}

// Chunk is a contiguous text passage extracted from a Document, carrying
// positional anchors used for citation.
type Chunk struct {
	ID         string
	DocumentID string
	UserID     string
	ChunkIndex int
	Text       string
	TokenCount int

	CharStart int
	CharEnd   int

	// Page anchors are present only for paginated sources (PDF).
	PageStart *int
	PageEnd   *int

	// Time anchors are absolute wall-clock instants (the parent Document's
	// CreatedAt plus the chunk's source offset), present only for
	// time-anchored sources (audio); both are set or both are nil. They
	// are what temporal filtering compares against a query interval.
	TimeStart *time.Time
	TimeEnd   *time.Time

	// SourceOffsetMS is the chunk's position in milliseconds into the
	// source audio file, the unit the transcription provider exchanges.
	// Unlike TimeStart/TimeEnd it is relative to the recording, not to
	// the calendar, and is used only for citation/playback seeking.
	SourceOffsetMSStart *int
	SourceOffsetMSEnd   *int

	Metadata map[string]any
}

// ChunkEmbedding is the 1:1 vector companion to a Chunk.
type ChunkEmbedding struct {
	ChunkID        string
	Embedding      []float32
	EmbeddingModel string
	CreatedAt      time.Time
}

// IngestionJob tracks a Document's progress through the ingestion state
// machine.
type IngestionJob struct {
	ID         string
	UserID     string
	DocumentID string
	Status     JobStatus
	Stage      Stage
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PageBoundary is a half-open, contiguous interval in canonical text
// belonging to one source page.
type PageBoundary struct {
	PageNumber int
	CharStart  int
	CharEnd    int
}

// Segment is one timestamped span of an audio transcript.
type Segment struct {
	Text    string
	StartMS int
	EndMS   int
}

// ExtractedContent is the canonical output every extractor variant
// produces, regardless of source type.
type ExtractedContent struct {
	Text           string
	Title          string
	PageBoundaries []PageBoundary
	Segments       []Segment
	Metadata       map[string]any
	PublishedAt    *time.Time
}

// Passage is one ranked retrieval result, carrying everything needed to
// render a citation.
type Passage struct {
	ChunkID    string
	DocumentID string
	Title      string
	SourceURI  string
	SourceType SourceType
	Text       string
	Score      float64

	PageStart *int
	PageEnd   *int

	// TimeStart/TimeEnd are the chunk's source-offset duration (position
	// into the original recording), used to seek audio playback when
	// rendering a citation. They are not the absolute anchor used for
	// temporal filtering.
	TimeStart *time.Duration
	TimeEnd   *time.Duration
}

// TemporalInterval is a half-open interval [Start, End) resolved from a
// natural-language time phrase.
type TemporalInterval struct {
	Start time.Time
	End   time.Time
}
