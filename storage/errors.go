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

import "errors"

var (
	// ErrMissingURL indicates that no database URL was configured.
	ErrMissingURL = errors.New("database URL is required")

	// ErrInvalidURL indicates a database URL without a scheme.
	ErrInvalidURL = errors.New("invalid database URL")

	// ErrUnsupportedScheme indicates that no driver is registered for a URL scheme.
	ErrUnsupportedScheme = errors.New("unsupported database scheme")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrTruncatedData indicates that data was truncated during reading.
	ErrTruncatedData = errors.New("truncated data")
)
