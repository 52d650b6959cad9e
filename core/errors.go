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

package core

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindConnection    Kind = "connection"
	KindEmptySchema   Kind = "empty_schema"
	KindExtraction    Kind = "extraction"
	KindGeneration    Kind = "generation"
	KindExecution     Kind = "execution"
	KindEmbedding     Kind = "embedding"
	KindInternal      Kind = "internal"
)

// Error is a failure tagged with its Kind.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same Kind, so the sentinels below can be
// used with errors.Is regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is matching by kind.
var (
	ErrConfiguration = &Error{Kind: KindConfiguration, Message: "invalid configuration"}
	ErrConnection    = &Error{Kind: KindConnection, Message: "store unreachable"}
	ErrEmptySchema   = &Error{Kind: KindEmptySchema, Message: "no database tables found"}
	ErrExtraction    = &Error{Kind: KindExtraction, Message: "document could not be decoded"}
	ErrGeneration    = &Error{Kind: KindGeneration, Message: "query generation failed"}
	ErrExecution     = &Error{Kind: KindExecution, Message: "query execution failed"}
	ErrEmbedding     = &Error{Kind: KindEmbedding, Message: "embedding failed"}
)

// NewError creates an Error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf creates an Error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags cause with kind. An error that already carries a Kind is
// returned unchanged so the innermost classification wins.
func Wrap(cause error, kind Kind, message string) error {
	if cause == nil {
		return nil
	}
	var existing *Error
	if errors.As(cause, &existing) {
		return cause
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the Kind of err, or KindInternal when err is untyped.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Domain validation errors
var (
	// ErrInvalidTable indicates a Table failed validation.
	ErrInvalidTable = errors.New("invalid table")

	// ErrEmptyTableName indicates the table Name field is empty.
	ErrEmptyTableName = errors.New("table name cannot be empty")

	// ErrForeignKeyArity indicates constrained and referred columns differ in length.
	ErrForeignKeyArity = errors.New("foreign key column counts differ")
)
