package ingestion

import "errors"

var (
	// ErrRegistryRequired is returned when a nil extractor registry is supplied.
	ErrRegistryRequired = errors.New("extractor registry required")

	// ErrCorpusNotDirectory is returned when the corpus path is not a directory.
	ErrCorpusNotDirectory = errors.New("corpus path is not a directory")
)
