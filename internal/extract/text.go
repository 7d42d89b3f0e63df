package extract

import (
	"context"
	"strings"

	"github.com/secondbrain/core/internal/core"
	"github.com/secondbrain/core/pkg/textutil"
)

// maxTitleLen is the character cap applied when deriving a title from the
// first line of untitled content.
const maxTitleLen = 200

// TextExtractor handles plain-text sources: the content is already
// canonical, so extraction is limited to title derivation.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor { return &TextExtractor{} }

func (e *TextExtractor) Extract(_ context.Context, input []byte) (*core.ExtractedContent, error) {
	text := textutil.SanitizeUTF8(string(input))
	return &core.ExtractedContent{
		Text:  text,
		Title: firstLineTitle(text),
	}, nil
}

// firstLineTitle returns the first non-empty line, truncated to
// maxTitleLen with a trailing ellipsis if cut short.
func firstLineTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) <= maxTitleLen {
			return line
		}
		return textutil.SafeUTF8Truncate(line, maxTitleLen) + "…"
	}
	return ""
}
