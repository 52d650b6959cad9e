package ingestion

import (
	"regexp"
	"strings"
)

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

// SplitParagraphs splits text on blank-line boundaries. Each paragraph is
// trimmed and empty paragraphs are dropped.
func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var paragraphs []string
	for _, candidate := range blankLine.Split(text, -1) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		paragraphs = append(paragraphs, candidate)
	}
	return paragraphs
}
