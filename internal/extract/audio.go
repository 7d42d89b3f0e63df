package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/secondbrain/core/internal/core"
	"github.com/secondbrain/core/pkg/clients/transcription"
)

// AudioExtractor transcribes a staged audio file via a remote
// speech-to-text provider and exposes per-segment timing.
type AudioExtractor struct {
	transcriber transcription.Transcriber
	model       string
}

func NewAudioExtractor(transcriber transcription.Transcriber, model string) *AudioExtractor {
	return &AudioExtractor{transcriber: transcriber, model: model}
}

// Extract is not used directly; ExtractFromURL consumes the staged file's
// object storage URL, since transcription providers fetch by reference
// rather than accepting an inline byte payload.
func (e *AudioExtractor) Extract(_ context.Context, _ []byte) (*core.ExtractedContent, error) {
	return nil, fmt.Errorf("audio: Extract requires a staged file URL, use ExtractFromURL")
}

// ExtractFromURL transcribes the audio file at fileURL.
func (e *AudioExtractor) ExtractFromURL(ctx context.Context, fileURL string) (*core.ExtractedContent, error) {
	resp, err := e.transcriber.Transcribe(ctx, transcription.Request{
		Model:   e.model,
		FileURL: fileURL,
	})
	if err != nil {
		return nil, fmt.Errorf("audio: transcribe: %w", err)
	}

	segments := make([]core.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, core.Segment{
			Text:    strings.TrimSpace(s.Text),
			StartMS: int(s.Start * 1000),
			EndMS:   int(s.End * 1000),
		})
	}

	return &core.ExtractedContent{
		Text:     resp.Text,
		Segments: segments,
		Metadata: map[string]any{
			"language": resp.Language,
			"duration": resp.Duration,
		},
	}, nil
}
