// Package ingestion turns a corpus directory into ordered paragraph chunks.
//
// The Pipeline lists the top level of a directory, decodes every supported
// document on a worker pool and splits the extracted text on blank lines.
// Output order always follows the sorted directory listing, regardless of
// which worker finished first, so chunk ordinals are stable between runs.
//
// Decode failures are recovered per document: the document is logged,
// counted and skipped, and the remaining documents are still processed.
package ingestion
