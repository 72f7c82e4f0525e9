package core

import (
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCaptionFor(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		maxLength int
		want      string
	}{
		{
			name:      "Base name of nested path",
			path:      filepath.Join("home", "user", "Pictures", "holiday", "beach.png"),
			maxLength: 100,
			want:      "beach.png",
		},
		{
			name:      "Plain file name",
			path:      "b.jpg",
			maxLength: 100,
			want:      "b.jpg",
		},
		{
			name:      "Exactly at limit",
			path:      strings.Repeat("x", 96) + ".png",
			maxLength: 100,
			want:      strings.Repeat("x", 96) + ".png",
		},
		{
			name:      "Truncated over limit",
			path:      strings.Repeat("y", 120) + ".png",
			maxLength: 100,
			want:      strings.Repeat("y", 100),
		},
		{
			name:      "Truncation keeps whole runes",
			path:      "ääääää.png",
			maxLength: 3,
			want:      "äää",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := captionFor(tt.path, tt.maxLength)
			if got != tt.want {
				t.Errorf("captionFor(%q, %d) = %q, want %q", tt.path, tt.maxLength, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("captionFor returned invalid UTF-8: %q", got)
			}
		})
	}
}
