// Package server exposes the query engine over HTTP.
//
// Routes:
//
//	GET  /            welcome message
//	GET  /api/health  store reachability
//	GET  /api/schema  schema snapshot of the relational store
//	POST /api/query   answer a natural-language question
//
// Failures carry the original "detail" text plus the error kind, so clients
// can tell an empty store from a generation or execution failure.
package server
