package extract

import (
	"context"
	"fmt"
	"os"

	"code.sajari.com/docconv/v2"
)

// extractDOCX returns the text of a Word document: header, body, then footer.
// docconv indexes parts through [Content_Types].xml and can panic when that
// part is missing, so panics are reported as errors.
func extractDOCX(_ context.Context, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed docx: %v", r)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	text, _, err = docconv.ConvertDocx(f)
	if err != nil {
		return "", err
	}
	return text, nil
}
