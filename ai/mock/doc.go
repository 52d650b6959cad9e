// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.QueryGenerator,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Bag-of-words vectors for ranking tests
//	embedder := mock.NewKeywordEmbedder("alice", "bob", "engineering", "sales")
//
//	// Canned SQL per question
//	generator := mock.NewMockQueryGenerator()
//	generator.Queries = map[string]string{
//	    "Who works in Engineering?": "SELECT * FROM employees WHERE department = 'Engineering'",
//	}
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockQueryGenerator: Selects every row of the lexically first table
//   - MockProvider: Aggregates mock embedder and generator
package mock
