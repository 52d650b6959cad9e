// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides abstractions for the AI services used by nlqengine.
//
// This package defines interfaces for text embeddings and for translating a
// natural-language question into SQL. The retrieval and orchestration
// packages depend on these abstractions rather than on concrete clients.
//
// # Interfaces
//
//   - Embedder: Generates vector embeddings from text
//   - QueryGenerator: Produces one SQL statement from a question and a schema snapshot
//   - AIProvider: Aggregates AI services for convenient initialization
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// INTERFACE types to prevent accidental coupling to concrete implementations.
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//
// Test utility constructors (mock.NewMockEmbedder, mock.NewMockQueryGenerator)
// return CONCRETE types so tests can inject behavior and check call counts.
//
//	mockGen := mock.NewMockQueryGenerator()
//	mockGen.GenerateQueryFunc = func(...) (string, error) { ... }
//	count := mockGen.CallCount()
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithDialect(core.DialectDuckDB))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "Who works in Engineering?")
//	sql, err := provider.QueryGenerator().GenerateQuery(ctx, "Who works in Engineering?", snapshot)
package ai
