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


// Package storage provides the relational store abstraction for nlqengine.
//
// A Store is opened from a database URL whose scheme selects the driver.
// Driver packages register themselves on import:
//
//	import _ "github.com/poiesic/nlqengine/storage/sqlite"
//
//	store, err := storage.Open(ctx, "sqlite:///company.db", storage.DefaultPoolConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// # Constructor Return Type Pattern
//
// Public constructors return the Store interface so callers never depend on
// a particular driver. Internal constructors may return concrete types.
//
// # Sessions
//
// Inspect pins one pooled connection for the lifetime of the returned
// Inspector. Every schema description therefore sees a single consistent
// connection and nothing is cached between descriptions.
//
// # Thread Safety
//
// Store implementations are safe for concurrent use. An Inspector belongs
// to the goroutine that opened it.
package storage
