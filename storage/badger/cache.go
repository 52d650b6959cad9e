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

package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/nlqengine/storage"
)

// EmbeddingCache persists chunk vectors across restarts.
// Entries are keyed by the blake2b fingerprints of the model name and text.
type EmbeddingCache struct {
	backend *Backend
	owned   bool
}

// NewEmbeddingCache creates a cache over an open backend.
// The caller keeps ownership of backend.
func NewEmbeddingCache(backend *Backend) (*EmbeddingCache, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &EmbeddingCache{backend: backend}, nil
}

// OpenEmbeddingCache opens a cache stored in dir. Close releases the backend.
func OpenEmbeddingCache(dir string) (*EmbeddingCache, error) {
	backend, err := OpenBackend(dir, false)
	if err != nil {
		return nil, err
	}
	return &EmbeddingCache{backend: backend, owned: true}, nil
}

// Get returns the cached vector for text under model, if any.
func (c *EmbeddingCache) Get(_ context.Context, model, text string) ([]float32, bool, error) {
	if c.backend.IsClosed() {
		return nil, false, storage.ErrStorageClosed
	}

	var vector []float32
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbeddingKey(model, text))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			vector, err = storage.UnmarshalVector(val)
			return err
		})
	}, false)

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return vector, true, nil
}

// Put stores vector for text under model, replacing any earlier entry.
func (c *EmbeddingCache) Put(_ context.Context, model, text string, vector []float32) error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeEmbeddingKey(model, text), storage.MarshalVector(vector)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Count returns the number of vectors cached for model.
func (c *EmbeddingCache) Count(_ context.Context, model string) (int, error) {
	if c.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	count := 0
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makeModelPrefix(model)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Close releases the backend when the cache opened it.
func (c *EmbeddingCache) Close() error {
	if c.owned && !c.backend.IsClosed() {
		return c.backend.Close()
	}
	return nil
}
