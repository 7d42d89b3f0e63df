package ingest

import (
	"testing"
	"time"

	"github.com/secondbrain/core/internal/core"
)

func TestAnchorTimeOffsets(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	startMS, endMS := 1000, 5000
	chunks := []core.Chunk{
		{ChunkIndex: 0, SourceOffsetMSStart: &startMS, SourceOffsetMSEnd: &endMS},
		{ChunkIndex: 1}, // no offsets, e.g. a text chunk interleaved by mistake
	}

	anchorTimeOffsets(chunks, base)

	if chunks[0].TimeStart == nil || !chunks[0].TimeStart.Equal(base.Add(time.Second)) {
		t.Errorf("TimeStart = %v, want %v", chunks[0].TimeStart, base.Add(time.Second))
	}
	if chunks[0].TimeEnd == nil || !chunks[0].TimeEnd.Equal(base.Add(5*time.Second)) {
		t.Errorf("TimeEnd = %v, want %v", chunks[0].TimeEnd, base.Add(5*time.Second))
	}
	if chunks[1].TimeStart != nil || chunks[1].TimeEnd != nil {
		t.Error("chunk without a source offset must not get a time anchor")
	}
}
