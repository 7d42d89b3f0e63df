package chunking

import (
	"strings"

	"github.com/secondbrain/core/internal/core"
	"github.com/secondbrain/core/internal/tokenizer"
)

// DefaultTargetDurationMS is the temporal chunker's default aggregation
// window when the caller does not override it.
const DefaultTargetDurationMS = 60_000

// TemporalChunker aggregates consecutive audio transcript segments into
// chunks whose duration reaches a target, emitting any residual segments
// as a final, possibly shorter, chunk.
type TemporalChunker struct {
	tokens           *tokenizer.Counter
	TargetDurationMS int
}

// NewTemporalChunker builds a chunker with the given target duration; zero
// falls back to DefaultTargetDurationMS.
func NewTemporalChunker(tokens *tokenizer.Counter, targetDurationMS int) *TemporalChunker {
	if targetDurationMS <= 0 {
		targetDurationMS = DefaultTargetDurationMS
	}
	return &TemporalChunker{tokens: tokens, TargetDurationMS: targetDurationMS}
}

// Chunk aggregates segments in order. Char offsets are synthetic (cumulative
// within the concatenated transcript) but monotone.
func (c *TemporalChunker) Chunk(segments []core.Segment) []core.Chunk {
	var chunks []core.Chunk
	var texts []string
	startMS, endMS := -1, -1
	chunkIndex := 0
	charOffset := 0

	flush := func() {
		if len(texts) == 0 {
			return
		}
		text := strings.Join(texts, " ")
		sOff, eOff := startMS, endMS
		// Absolute TimeStart/TimeEnd are filled in later, once the
		// document's CreatedAt (the anchor's base time) is known; the
		// chunker only sees offsets into the recording.
		chunks = append(chunks, core.Chunk{
			ChunkIndex:          chunkIndex,
			Text:                text,
			CharStart:           charOffset,
			CharEnd:             charOffset + len(text),
			TokenCount:          c.tokens.Count(text),
			SourceOffsetMSStart: &sOff,
			SourceOffsetMSEnd:   &eOff,
		})
		charOffset += len(text) + 1
		chunkIndex++
		texts = nil
		startMS, endMS = -1, -1
	}

	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if startMS == -1 {
			startMS = seg.StartMS
		}
		texts = append(texts, text)
		endMS = seg.EndMS

		if endMS-startMS >= c.TargetDurationMS {
			flush()
		}
	}
	flush()

	return chunks
}
