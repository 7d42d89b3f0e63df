package chunking_test

import (
	"strings"
	"testing"

	"github.com/secondbrain/core/internal/chunking"
	"github.com/secondbrain/core/internal/core"
	"github.com/secondbrain/core/internal/tokenizer"
)

func newTestTokenizer(t *testing.T) *tokenizer.Counter {
	t.Helper()
	tok, err := tokenizer.New()
	if err != nil {
		t.Fatalf("tokenizer.New() error = %v", err)
	}
	return tok
}

func TestTextualChunker_EmptyText(t *testing.T) {
	c := chunking.NewTextualChunker(newTestTokenizer(t), 50, 10)
	if got := c.Chunk("   ", nil); got != nil {
		t.Errorf("Chunk(whitespace-only) = %+v, want nil", got)
	}
}

func TestTextualChunker_SingleShortChunk(t *testing.T) {
	c := chunking.NewTextualChunker(newTestTokenizer(t), 500, 50)
	text := "This is a short document that fits in a single chunk."
	chunks := c.Chunk(text, nil)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("chunk text = %q, want %q", chunks[0].Text, text)
	}
	if chunks[0].ChunkIndex != 0 {
		t.Errorf("chunk index = %d, want 0", chunks[0].ChunkIndex)
	}
}

// TestTextualChunker_SubstringRoundTrip verifies every chunk's text is an
// exact substring of the original document at its recorded char offsets.
func TestTextualChunker_SubstringRoundTrip(t *testing.T) {
	c := chunking.NewTextualChunker(newTestTokenizer(t), 20, 5)
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20)

	chunks := c.Chunk(text, nil)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want multiple chunks for a long document", len(chunks))
	}
	for _, ch := range chunks {
		if ch.CharEnd > len(text) || ch.CharStart < 0 || ch.CharStart > ch.CharEnd {
			t.Fatalf("chunk %d has invalid offsets [%d,%d) for text of length %d",
				ch.ChunkIndex, ch.CharStart, ch.CharEnd, len(text))
		}
		sub := text[ch.CharStart:ch.CharEnd]
		if sub != ch.Text {
			t.Errorf("chunk %d text %q does not match text[%d:%d] = %q",
				ch.ChunkIndex, ch.Text, ch.CharStart, ch.CharEnd, sub)
		}
	}
}

func TestTextualChunker_ChunkIndicesAreSequential(t *testing.T) {
	c := chunking.NewTextualChunker(newTestTokenizer(t), 15, 3)
	text := strings.Repeat("paragraph one.\n\nparagraph two.\n\n", 10)
	chunks := c.Chunk(text, nil)
	for i, ch := range chunks {
		if ch.ChunkIndex != i {
			t.Errorf("chunk at position %d has ChunkIndex %d", i, ch.ChunkIndex)
		}
	}
}

func TestTextualChunker_PageBoundaryResolution(t *testing.T) {
	c := chunking.NewTextualChunker(newTestTokenizer(t), 500, 0)
	text := "page one content here. page two content follows after."
	boundaries := []core.PageBoundary{
		{PageNumber: 1, CharStart: 0, CharEnd: 23},
		{PageNumber: 2, CharStart: 23, CharEnd: len(text)},
	}
	chunks := c.Chunk(text, boundaries)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1 (text fits chunk size)", len(chunks))
	}
	ch := chunks[0]
	if ch.PageStart == nil || *ch.PageStart != 1 {
		t.Errorf("PageStart = %v, want 1", ch.PageStart)
	}
	if ch.PageEnd == nil || *ch.PageEnd != 2 {
		t.Errorf("PageEnd = %v, want 2", ch.PageEnd)
	}
}
