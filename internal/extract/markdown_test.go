package extract

import (
	"context"
	"strings"
	"testing"
)

func TestMarkdownExtractor_FirstHeadingAsTitle(t *testing.T) {
	e := NewMarkdownExtractor()
	source := "# My Great Post\n\nSome **bold** content in a paragraph.\n"
	got, err := e.Extract(context.Background(), []byte(source))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Title != "My Great Post" {
		t.Errorf("Title = %q, want %q", got.Title, "My Great Post")
	}
	if !strings.Contains(got.Text, "Some") || !strings.Contains(got.Text, "bold") {
		t.Errorf("Text = %q, want to contain paragraph content", got.Text)
	}
	if strings.Contains(got.Text, "**") || strings.Contains(got.Text, "#") {
		t.Errorf("Text = %q, want Markdown syntax stripped", got.Text)
	}
}

func TestMarkdownExtractor_FallsBackToFirstLineWithoutHeading(t *testing.T) {
	e := NewMarkdownExtractor()
	source := "Just a plain paragraph with no heading at all.\n"
	got, err := e.Extract(context.Background(), []byte(source))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Title == "" {
		t.Error("Title is empty, want fallback to first-line rule")
	}
}

func TestMarkdownExtractor_ListItemsNewlineSeparated(t *testing.T) {
	e := NewMarkdownExtractor()
	source := "# Title\n\n- first item\n- second item\n- third item\n"
	got, err := e.Extract(context.Background(), []byte(source))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	for _, want := range []string{"first item", "second item", "third item"} {
		if !strings.Contains(got.Text, want) {
			t.Errorf("Text = %q, want to contain %q", got.Text, want)
		}
	}
	if !strings.Contains(got.Text, "first item\nsecond item\nthird item") {
		t.Errorf("Text = %q, want list items on separate lines", got.Text)
	}
}
