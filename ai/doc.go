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


// Package ai provides abstractions for embedding generation in Vectorview.
//
// The console never computes vectors itself: it asks a configured provider
// to turn text into an embedding, then hands the result to the vector set
// server or to the embedding cache. This package defines the Embedder
// interface those call sites depend on, plus the provider configuration
// shared by all implementations.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI and OpenAI-compatible embedding APIs
//   - ai/ollama: local Ollama model runtimes
//   - ai/mock: test doubles for unit testing without external services
//
// Public constructors (openai.NewEmbedder, ollama.NewEmbedder) return the
// ai.Embedder interface to enforce abstraction. Test utility constructors
// (mock.NewMockEmbedder) return concrete types so tests can inject behavior
// and assert on call counts.
package ai
