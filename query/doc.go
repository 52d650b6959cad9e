// Package query answers natural-language questions against documents and
// a relational store.
//
// The Orchestrator runs document search concurrently with the structured
// path: describe the schema, refuse an empty schema, generate one SQL
// statement, validate it and execute it. Results are merged without
// reranking. Every external call is attempted exactly once.
package query
