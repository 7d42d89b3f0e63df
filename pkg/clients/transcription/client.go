// Package transcription provides a client for audio transcription providers.
// It POSTs a JSON request naming an already-staged audio file by URL to
// /audio/transcriptions (not a multipart file upload) and decodes a
// verbose transcript with per-segment start/end times in seconds.
package transcription

import (
	"context"
	"time"

	"github.com/secondbrain/core/pkg/clients/base"
	"github.com/secondbrain/core/pkg/config"
)

const (
	DefaultTimeout = 120 * time.Second
	ServiceName    = "transcription"
)

// Transcriber is the interface the audio extractor depends on.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (*Response, error)
}

type Client struct {
	httpClient *base.HTTPClient
	config     config.ServiceConfig
}

var _ Transcriber = (*Client)(nil)

func NewClient(cfg config.ServiceConfig) *Client {
	httpClient := base.NewHTTPClient(ServiceName, cfg, DefaultTimeout)
	return &Client{httpClient: httpClient, config: cfg}
}

// Request carries a reference to an already-staged audio file rather than
// raw bytes; the provider fetches it from the given URL. Staging happens
// through the object store before transcription is requested.
type Request struct {
	Model       string `json:"model"`
	FileURL     string `json:"file_url"`
	Language    string `json:"language,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// Segment is one timestamped span of the transcript, used by the temporal
// chunker to group words into duration-bounded chunks.
type Segment struct {
	ID        int     `json:"id"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Text      string  `json:"text"`
}

type Response struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
	Segments []Segment `json:"segments"`
}

func (c *Client) Transcribe(ctx context.Context, req Request) (*Response, error) {
	var result Response
	if err := c.httpClient.Post(ctx, "/audio/transcriptions", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
