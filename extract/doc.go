// Package extract decodes documents into plain text.
//
// A Registry maps file extensions to Extractors. The default registry
// understands PDF, Word (.docx), plain text, Markdown, HTML and Excel
// (.xlsx) files. Files with any other extension are reported as
// ErrUnsupportedFormat so callers can skip them.
//
// Extracted text keeps paragraph boundaries as blank lines, which is what
// the ingestion chunker splits on.
package extract
