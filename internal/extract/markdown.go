package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"

	"github.com/secondbrain/core/internal/core"
	"github.com/secondbrain/core/pkg/textutil"
)

// MarkdownExtractor renders Markdown to HTML and strips it to plain text.
type MarkdownExtractor struct {
	md goldmark.Markdown
}

func NewMarkdownExtractor() *MarkdownExtractor {
	return &MarkdownExtractor{md: goldmark.New()}
}

func (e *MarkdownExtractor) Extract(_ context.Context, input []byte) (*core.ExtractedContent, error) {
	source := textutil.SanitizeUTF8(string(input))

	var rendered bytes.Buffer
	if err := e.md.Convert([]byte(source), &rendered); err != nil {
		return nil, fmt.Errorf("markdown: render: %w", err)
	}

	text, err := stripHTML(rendered.Bytes())
	if err != nil {
		return nil, fmt.Errorf("markdown: strip: %w", err)
	}

	title := firstHeading(source)
	if title == "" {
		title = firstLineTitle(text)
	}

	return &core.ExtractedContent{
		Text:  text,
		Title: title,
	}, nil
}

// firstHeading returns the text of the first top-level ("# ...") Markdown
// heading, if present.
func firstHeading(source string) string {
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
		}
	}
	return ""
}

// stripHTML walks the parsed DOM collecting text node content, normalizing
// whitespace the same way the web extractor does.
func stripHTML(rendered []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "br", "tr":
				buf.WriteString("\n")
			}
		}
	}
	walk(doc)
	return normalizeWhitespace(buf.String()), nil
}
