package extract

import (
	"context"
	"os"
	"strings"
	"unicode/utf8"
)

// extractText reads a UTF-8 text or Markdown file. A leading byte order
// mark is dropped.
func extractText(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", ErrInvalidEncoding
	}
	return strings.TrimPrefix(string(data), "\uFEFF"), nil
}
