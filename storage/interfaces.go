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

package storage

import (
	"context"

	"github.com/poiesic/nlqengine/core"
)

// Store is a relational store that can be inspected and queried.
type Store interface {
	// Inspect opens an inspection session on a dedicated connection.
	// Failure to reach the store is reported as a connection error.
	// The caller must Close the returned Inspector.
	Inspect(ctx context.Context) (Inspector, error)

	// Query runs one statement read-only and returns every row.
	// A statement that tries to modify the store fails and leaves it unchanged.
	// Byte slices are converted to strings so rows serialize as JSON text.
	Query(ctx context.Context, statement string) ([]core.Row, error)

	// Exec runs statements that modify the store, such as DDL or inserts.
	Exec(ctx context.Context, statement string) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Dialect names the SQL dialect spoken by the store.
	Dialect() core.Dialect

	// Close closes the store and releases pooled connections.
	Close() error
}

// Inspector enumerates user tables in the order the store reports them.
type Inspector interface {
	// TableNames lists user tables. Engine bookkeeping tables are excluded.
	TableNames(ctx context.Context) ([]string, error)

	// Columns lists the columns of table in declaration order.
	Columns(ctx context.Context, table string) ([]core.Column, error)

	// ForeignKeys lists the foreign key constraints declared on table.
	ForeignKeys(ctx context.Context, table string) ([]core.ForeignKey, error)

	// Close releases the session's connection.
	Close() error
}
