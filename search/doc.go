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

// Package search provides exact nearest-neighbor search over document chunks.
//
// An Index has a two-phase lifecycle. New returns an inert index; Build
// loads a corpus directory, embeds every chunk and publishes the result
// exactly once. After Build the index is immutable and may be searched
// concurrently without locking.
//
// Distances are squared Euclidean (L2) over the raw provider vectors.
// Results are ordered nearest first with ties broken by the lower ordinal.
package search
