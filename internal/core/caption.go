package core

import (
	"log/slog"
	"path/filepath"
	"unicode/utf8"
)

// captionFor uses the base name of path, cut to maxLength runes so it always
// fits the caption column.
func captionFor(path string, maxLength int) string {
	caption := filepath.Base(path)
	if maxLength <= 0 || utf8.RuneCountInString(caption) <= maxLength {
		return caption
	}

	runes := []rune(caption)
	truncated := string(runes[:maxLength])
	slog.Warn("caption truncated",
		"path", path,
		"original_length", len(runes),
		"max_length", maxLength,
		"caption", truncated)
	return truncated
}
