package extract

import "errors"

var (
	// ErrUnsupportedFormat is returned for files no extractor is registered for.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrInvalidEncoding is returned for text files that are not valid UTF-8.
	ErrInvalidEncoding = errors.New("text is not valid UTF-8")
)
