package core

import (
	"encoding/binary"
	"sort"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content fingerprint used to key cached artifacts.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Column is a single column of a table, in the order the store reports it.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"` // Normalized declared type, e.g. "VARCHAR", "INTEGER"
}

// ForeignKey describes a foreign-key constraint.
// ConstrainedColumns[i] refers to ReferredColumns[i].
type ForeignKey struct {
	ConstrainedColumns []string `json:"constrained_columns"`
	ReferredTable      string   `json:"referred_table"`
	ReferredColumns    []string `json:"referred_columns"`
}

// Table is the discovered description of one relational table.
type Table struct {
	Name        string       `json:"-"`
	Columns     []Column     `json:"columns"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
}

// SchemaSnapshot is a point-in-time description of a relational store.
// A snapshot is never mutated after it is produced.
type SchemaSnapshot struct {
	Tables map[string]Table `json:"tables"`
}

// NewSchemaSnapshot returns an empty snapshot ready to be filled.
func NewSchemaSnapshot() *SchemaSnapshot {
	return &SchemaSnapshot{Tables: make(map[string]Table)}
}

// IsEmpty reports whether the snapshot has no tables.
func (s *SchemaSnapshot) IsEmpty() bool {
	return s == nil || len(s.Tables) == 0
}

// TableNames returns the table names in lexical order.
func (s *SchemaSnapshot) TableNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasTable reports whether name is a table of the snapshot.
func (s *SchemaSnapshot) HasTable(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Tables[name]
	return ok
}

// Chunk is a paragraph-sized unit of extracted document text.
type Chunk struct {
	Source  string `json:"source"`  // Base name of the originating document
	Content string `json:"content"` // Trimmed, never empty
	Ordinal int    `json:"ordinal"` // Position assigned at ingestion
}

// Row is one result row keyed by column name.
type Row map[string]any

// QueryResult is the merged answer to one natural-language question.
type QueryResult struct {
	Question       string  `json:"natural_language_query"`
	DocumentHits   []Chunk `json:"document_results"`
	GeneratedQuery string  `json:"generated_sql"`
	Rows           []Row   `json:"results"`
}

// Dialect names the SQL flavor of a relational store.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectDuckDB Dialect = "duckdb"
)
