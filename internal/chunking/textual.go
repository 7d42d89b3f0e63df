// Package chunking implements the two pure, deterministic chunking
// strategies: textual (recursive boundary splitting with overlap) and
// temporal (audio segment aggregation by target duration).
package chunking

import (
	"strings"

	"github.com/secondbrain/core/internal/core"
	"github.com/secondbrain/core/internal/tokenizer"
)

// separators is the fixed priority order tried by the recursive splitter,
// from the widest structural boundary down to a hard character split.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// TextualChunker splits document text into chunks with a target character
// length and overlap, preserving page anchors when boundaries are known.
type TextualChunker struct {
	tokens *tokenizer.Counter

	// ChunkSize and ChunkOverlap are in characters (chunk_size/overlap
	// tokens * 4, per the configured chunking parameters).
	ChunkSize    int
	ChunkOverlap int
}

// NewTextualChunker builds a chunker with character targets derived from
// token-based chunkSize/chunkOverlap config values.
func NewTextualChunker(tokens *tokenizer.Counter, chunkSizeTokens, chunkOverlapTokens int) *TextualChunker {
	return &TextualChunker{
		tokens:       tokens,
		ChunkSize:    chunkSizeTokens * 4,
		ChunkOverlap: chunkOverlapTokens * 4,
	}
}

// Chunk splits text into document-ordered, zero-indexed chunks. When
// pageBoundaries is non-empty, each chunk's page_start/page_end are
// resolved from the interval containing its char_start/char_end-1.
func (c *TextualChunker) Chunk(text string, pageBoundaries []core.PageBoundary) []core.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	splits := splitRecursive(text, c.ChunkSize, c.ChunkOverlap, separators)

	chunks := make([]core.Chunk, 0, len(splits))
	searchFrom := 0
	for idx, piece := range splits {
		if piece == "" {
			continue
		}
		charStart := strings.Index(text[searchFrom:], piece)
		if charStart == -1 {
			charStart = searchFrom
		} else {
			charStart += searchFrom
		}
		charEnd := charStart + len(piece)
		searchFrom = charStart + 1
		if searchFrom > len(text) {
			searchFrom = len(text)
		}

		chunk := core.Chunk{
			ChunkIndex: idx,
			Text:       piece,
			CharStart:  charStart,
			CharEnd:    charEnd,
			TokenCount: c.tokens.Count(piece),
		}
		chunk.PageStart, chunk.PageEnd = resolvePages(pageBoundaries, charStart, charEnd)
		chunks = append(chunks, chunk)
	}
	return chunks
}

func resolvePages(boundaries []core.PageBoundary, charStart, charEnd int) (*int, *int) {
	if len(boundaries) == 0 {
		return nil, nil
	}
	var pageStart, pageEnd *int
	for _, b := range boundaries {
		if b.CharStart <= charStart && charStart < b.CharEnd {
			p := b.PageNumber
			pageStart = &p
		}
		if b.CharStart < charEnd && charEnd-1 < b.CharEnd {
			p := b.PageNumber
			pageEnd = &p
		}
	}
	if pageStart != nil && pageEnd == nil {
		p := *pageStart
		pageEnd = &p
	}
	return pageStart, pageEnd
}

// splitRecursive implements the RecursiveCharacterTextSplitter algorithm:
// split on the first separator that appears, merge adjacent pieces up to
// chunkSize with chunkOverlap retained between merged chunks, and recurse
// into any piece still over chunkSize with the remaining separators.
func splitRecursive(text string, chunkSize, chunkOverlap int, seps []string) []string {
	sep := seps[len(seps)-1]
	var nextSeps []string
	for i, s := range seps {
		if s == "" || strings.Contains(text, s) {
			sep = s
			nextSeps = seps[i+1:]
			break
		}
	}

	var splits []string
	if sep == "" {
		splits = splitEvery(text, 1)
	} else {
		splits = strings.SplitAfter(text, sep)
		// SplitAfter may leave a trailing empty string; drop it.
		if len(splits) > 0 && splits[len(splits)-1] == "" {
			splits = splits[:len(splits)-1]
		}
	}

	return mergeSplits(splits, chunkSize, chunkOverlap, nextSeps)
}

func splitEvery(text string, n int) []string {
	runes := []rune(text)
	out := make([]string, 0, len(runes)/n+1)
	for i := 0; i < len(runes); i += n {
		end := i + n
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
	}
	return out
}

// mergeSplits greedily merges consecutive pieces into chunks no longer
// than chunkSize, recursing into any single piece that already exceeds
// chunkSize with the next separator tier, and retaining chunkOverlap
// characters of trailing context between consecutive merged chunks.
func mergeSplits(splits []string, chunkSize, chunkOverlap int, nextSeps []string) []string {
	var result []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			result = append(result, current.String())
			current.Reset()
		}
	}

	for _, s := range splits {
		if len(s) > chunkSize {
			flush()
			if len(nextSeps) > 0 {
				result = append(result, splitRecursive(s, chunkSize, chunkOverlap, nextSeps)...)
			} else {
				result = append(result, s)
			}
			continue
		}

		if current.Len()+len(s) > chunkSize && current.Len() > 0 {
			piece := current.String()
			result = append(result, piece)
			current.Reset()
			overlap := chunkOverlap
			if overlap > chunkSize-len(s) {
				overlap = chunkSize - len(s)
			}
			if overlap > 0 && len(piece) > overlap {
				current.WriteString(piece[len(piece)-overlap:])
			}
		}
		current.WriteString(s)
	}
	flush()
	return result
}
