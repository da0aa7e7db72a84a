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


// Package cache provides the embedding cache: a best-effort mapping from
// (input, provider, model) to a previously computed embedding vector, kept
// in a shared key-value store.
//
// The cache is not a source of truth. Every public operation degrades to a
// miss or a no-op on any failure — store unreachable, malformed stored
// value, serialization error — so cache trouble never blocks embedding
// computation. Get and Set deliberately expose no error channel.
//
// Alongside the vector hash the cache maintains a recency index: a sorted
// set scoring each cache field by its last read or write time. Nothing
// evicts from it today; it exists so a recency-based eviction pass can be
// added without a schema change.
package cache
