package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/secondbrain/core/internal/core"
)

const fetchTimeout = 30 * time.Second

// noiseTags are removed by tag name before content extraction.
var noiseTags = []string{"script", "style", "nav", "footer", "header", "aside", "form", "iframe"}

// noiseClassPattern matches class names that mark advertising or chrome
// elements regardless of tag.
var noiseClassPattern = regexp.MustCompile(`(?i)\b(ad|ads|advert|sidebar|promo|banner|cookie)\b`)

// contentSelectors is the ordered fallback chain for locating the main
// content region of a page.
var contentSelectors = []string{"article", "main", "[role=main]", ".content", "#content"}

// WebExtractor fetches a URL and extracts its main readable content.
type WebExtractor struct {
	client *http.Client
}

func NewWebExtractor() *WebExtractor {
	return &WebExtractor{client: &http.Client{Timeout: fetchTimeout}}
}

// Extract exists only to satisfy Extractor: it ignores its input and always
// returns an error, because the web variant needs a URL. FetchAndExtract is
// the operative entry point.
func (e *WebExtractor) Extract(ctx context.Context, _ []byte) (*core.ExtractedContent, error) {
	return nil, fmt.Errorf("web: Extract requires a URL, use FetchAndExtract")
}

// FetchAndExtract retrieves the given URL with a bounded timeout, following
// redirects, and extracts its main content.
func (e *WebExtractor) FetchAndExtract(ctx context.Context, url string) (*core.ExtractedContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("web: build request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("web: fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("web: read body: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("web: parse html: %w", err)
	}

	removeNoise(doc)

	region := selectMainContent(doc)
	text := normalizeWhitespace(region.Text())

	content := &core.ExtractedContent{
		Text:     text,
		Title:    extractTitle(doc),
		Metadata: extractMetadata(doc),
	}
	content.PublishedAt = extractPublishedAt(doc)

	return content, nil
}

func removeNoise(doc *goquery.Document) {
	doc.Find(strings.Join(noiseTags, ", ")).Remove()
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if class, ok := s.Attr("class"); ok && noiseClassPattern.MatchString(class) {
			s.Remove()
		}
	})
}

func selectMainContent(doc *goquery.Document) *goquery.Selection {
	for _, sel := range contentSelectors {
		if region := doc.Find(sel).First(); region.Length() > 0 {
			return region
		}
	}
	return doc.Find("body")
}

func extractTitle(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if t, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	if t := strings.TrimSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return ""
}

func extractMetadata(doc *goquery.Document) map[string]any {
	meta := map[string]any{}
	if v, ok := doc.Find(`meta[property="og:site_name"]`).First().Attr("content"); ok {
		meta["site_name"] = v
	}
	if v, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		meta["description"] = v
	}
	return meta
}

func extractPublishedAt(doc *goquery.Document) *time.Time {
	v, ok := doc.Find(`meta[property="article:published_time"]`).First().Attr("content")
	if !ok || v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil
	}
	return &t
}

var multiNewline = regexp.MustCompile(`\n{3,}`)

// normalizeWhitespace drops lines shorter than three characters and
// collapses runs of three or more newlines to two.
func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) < 3 {
			continue
		}
		kept = append(kept, trimmed)
	}
	joined := strings.Join(kept, "\n")
	return multiNewline.ReplaceAllString(joined, "\n\n")
}
