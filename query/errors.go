package query

import "errors"

var (
	// ErrSearcherRequired is returned when a document searcher is not provided.
	ErrSearcherRequired = errors.New("document searcher required")

	// ErrCatalogRequired is returned when a schema catalog is not provided.
	ErrCatalogRequired = errors.New("schema catalog required")

	// ErrGeneratorRequired is returned when a query generator is not provided.
	ErrGeneratorRequired = errors.New("query generator required")

	// ErrExecutorRequired is returned when a query executor is not provided.
	ErrExecutorRequired = errors.New("query executor required")

	// ErrEmptyStatement is returned for a blank generated statement.
	ErrEmptyStatement = errors.New("statement is empty")

	// ErrMultipleStatements is returned when more than one statement is generated.
	ErrMultipleStatements = errors.New("only a single statement is allowed")

	// ErrNotReadOnly is returned for statements that are not SELECT or WITH queries.
	ErrNotReadOnly = errors.New("only read-only SELECT statements are allowed")

	// ErrUnknownTable is returned when a statement reads a table missing from the schema.
	ErrUnknownTable = errors.New("statement references an unknown table")

	// ErrUnsupportedSource is returned for FROM sources that are neither tables
	// nor allowed table functions, such as file paths or pragma functions.
	ErrUnsupportedSource = errors.New("statement reads from an unsupported source")
)
