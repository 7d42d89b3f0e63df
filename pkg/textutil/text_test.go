package textutil_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/secondbrain/core/pkg/textutil"
)

func TestSafeUTF8Truncate(t *testing.T) {
	tests := []struct {
		name string
		s    string
		n    int
		want string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"ascii exact cut", "hello world", 5, "hello"},
		{"multibyte boundary not split", "café au lait", 4, "caf"},
		{"empty string", "", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := textutil.SafeUTF8Truncate(tt.s, tt.n)
			if got != tt.want {
				t.Errorf("SafeUTF8Truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("SafeUTF8Truncate(%q, %d) produced invalid UTF-8: %q", tt.s, tt.n, got)
			}
		})
	}
}

func TestSafeUTF8Truncate_NeverSplitsRune(t *testing.T) {
	s := strings.Repeat("中文", 50) // multi-byte CJK text
	for n := 0; n <= len(s); n++ {
		got := textutil.SafeUTF8Truncate(s, n)
		if !utf8.ValidString(got) {
			t.Fatalf("SafeUTF8Truncate(s, %d) produced invalid UTF-8: %q", n, got)
		}
	}
}

func TestSanitizeUTF8(t *testing.T) {
	valid := "hello world"
	if got := textutil.SanitizeUTF8(valid); got != valid {
		t.Errorf("SanitizeUTF8(%q) = %q, want unchanged", valid, got)
	}

	invalid := "hello\xffworld"
	got := textutil.SanitizeUTF8(invalid)
	if !utf8.ValidString(got) {
		t.Errorf("SanitizeUTF8(%q) = %q, still invalid UTF-8", invalid, got)
	}
}
