package storage

import "testing"

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		kind   string
		uuid   string
		ext    string
		want   string
	}{
		{"audio file", "user-1", "audio", "abc-123", ".mp3", "user-1/audio/abc-123.mp3"},
		{"document file", "user-2", "documents", "def-456", ".pdf", "user-2/documents/def-456.pdf"},
		{"no extension", "user-3", "documents", "ghi-789", "", "user-3/documents/ghi-789"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ObjectKey(tt.userID, tt.kind, tt.uuid, tt.ext); got != tt.want {
				t.Errorf("ObjectKey(%q, %q, %q, %q) = %q, want %q",
					tt.userID, tt.kind, tt.uuid, tt.ext, got, tt.want)
			}
		})
	}
}
