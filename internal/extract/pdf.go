package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dslipak/pdf"

	"github.com/secondbrain/core/internal/core"
)

// PDFExtractor extracts text page by page, recording exact page
// boundaries in the concatenated output.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor { return &PDFExtractor{} }

func (e *PDFExtractor) Extract(_ context.Context, input []byte) (*core.ExtractedContent, error) {
	reader, err := pdf.NewReader(bytes.NewReader(input), int64(len(input)))
	if err != nil {
		return nil, fmt.Errorf("pdf: open: %w", err)
	}

	var text strings.Builder
	var boundaries []core.PageBoundary
	anyText := false

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, ok := extractPageText(page)
		if ok {
			anyText = true
		}

		charStart := text.Len()
		text.WriteString(pageText)
		if !strings.HasSuffix(pageText, "\n") {
			text.WriteString("\n")
		}
		charEnd := text.Len()

		boundaries = append(boundaries, core.PageBoundary{
			PageNumber: i,
			CharStart:  charStart,
			CharEnd:    charEnd,
		})
	}

	if !anyText {
		return nil, fmt.Errorf("pdf: no extractable text in %d pages", reader.NumPage())
	}

	return &core.ExtractedContent{
		Text:           text.String(),
		PageBoundaries: boundaries,
		Metadata:       pdfMetadata(reader),
	}, nil
}

// extractPageText tries the primary whole-page text extractor first; if it
// produces nothing, it falls back to reconstructing text from the page's
// raw positioned-glyph content stream.
func extractPageText(page pdf.Page) (string, bool) {
	primary, err := page.GetPlainText(nil)
	if err == nil && strings.TrimSpace(primary) != "" {
		return primary, true
	}

	fallback := reconstructFromContent(page)
	if strings.TrimSpace(fallback) != "" {
		return fallback, true
	}

	return "", false
}

// reconstructFromContent concatenates the page's raw glyph run strings in
// content-stream order, used when GetPlainText fails to recover any text
// (e.g. unusual font encodings).
func reconstructFromContent(page pdf.Page) string {
	content := page.Content()
	var buf strings.Builder
	for _, t := range content.Text {
		buf.WriteString(t.S)
	}
	return buf.String()
}

// pdfMetadata surfaces best-effort document info dictionary fields.
func pdfMetadata(reader *pdf.Reader) map[string]any {
	meta := map[string]any{
		"page_count": reader.NumPage(),
	}
	trailer := reader.Trailer()
	if trailer.IsNull() {
		return meta
	}
	info := trailer.Key("Info")
	if info.IsNull() {
		return meta
	}
	if author := info.Key("Author").Text(); author != "" {
		meta["author"] = author
	}
	if creator := info.Key("Creator").Text(); creator != "" {
		meta["creator"] = creator
	}
	return meta
}
