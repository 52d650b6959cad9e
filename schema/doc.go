// Package schema describes the tables of a relational store.
//
// A Catalog opens a fresh inspection session for every Describe call and
// caches nothing, so each description reflects the store as it is now.
package schema
