package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWebExtractor_Extract_RequiresFetchAndExtract(t *testing.T) {
	e := NewWebExtractor()
	if _, err := e.Extract(context.Background(), []byte("ignored")); err == nil {
		t.Error("Extract() error = nil, want an error directing callers to FetchAndExtract")
	}
}

func TestWebExtractor_FetchAndExtract_ArticleSelectorAndNoiseRemoval(t *testing.T) {
	html := `<html><head><title>Page Title</title>
<meta property="article:published_time" content="2026-01-15T10:00:00Z">
</head>
<body>
<nav>site navigation links</nav>
<div class="sidebar-promo">buy now advertisement banner</div>
<article>
<h1>Article Heading</h1>
<p>This is the real article content that matters to the reader.</p>
</article>
<footer>copyright footer text</footer>
</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))
	}))
	defer server.Close()

	e := NewWebExtractor()
	got, err := e.FetchAndExtract(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchAndExtract() error = %v", err)
	}

	if got.Title != "Page Title" {
		t.Errorf("Title = %q, want %q", got.Title, "Page Title")
	}
	if !strings.Contains(got.Text, "real article content") {
		t.Errorf("Text = %q, want article content", got.Text)
	}
	if strings.Contains(got.Text, "navigation") || strings.Contains(got.Text, "advertisement") || strings.Contains(got.Text, "copyright") {
		t.Errorf("Text = %q, want noise tags/classes removed", got.Text)
	}
	if got.PublishedAt == nil {
		t.Fatal("PublishedAt = nil, want parsed article:published_time")
	}
	if got.PublishedAt.Year() != 2026 {
		t.Errorf("PublishedAt year = %d, want 2026", got.PublishedAt.Year())
	}
}

func TestWebExtractor_FetchAndExtract_FallsBackToBody(t *testing.T) {
	html := `<html><head><title>No Article Here</title></head>
<body><p>Plain body content with no article or main wrapper element.</p></body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(html))
	}))
	defer server.Close()

	e := NewWebExtractor()
	got, err := e.FetchAndExtract(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchAndExtract() error = %v", err)
	}
	if !strings.Contains(got.Text, "Plain body content") {
		t.Errorf("Text = %q, want body content via fallback selector", got.Text)
	}
}

func TestWebExtractor_FetchAndExtract_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	e := NewWebExtractor()
	if _, err := e.FetchAndExtract(context.Background(), server.URL); err == nil {
		t.Error("FetchAndExtract() error = nil, want error on non-2xx status")
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	in := "Real line of content\n\n\n\nhi\nAnother real line here\n\n\n"
	got := normalizeWhitespace(in)
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("normalizeWhitespace() = %q, want no run of 3+ newlines", got)
	}
	if strings.Contains(got, "hi") {
		t.Errorf("normalizeWhitespace() = %q, want short line %q dropped", got, "hi")
	}
	if !strings.Contains(got, "Real line of content") {
		t.Errorf("normalizeWhitespace() = %q, want content preserved", got)
	}
}
