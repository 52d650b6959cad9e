package extract

import (
	"context"
	"os"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// extractHTML converts an HTML page to Markdown. Block elements become
// blank-line separated paragraphs.
func extractHTML(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return htmltomarkdown.ConvertString(string(data))
}
