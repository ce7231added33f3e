// Copyright 2025 The agentbench Authors
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

// Package metrics implements the quality metric primitives and the
// per-domain suites used to score agent framework outputs.
//
// # Primitives
//
// Each primitive is a small struct with a Calculate method returning a
// *evaluation.MetricResult and an error. Calculation is deterministic
// given identical inputs and an identical embedding backend. Primitives
// that need embeddings take a context.Context and an injected Embedder;
// purely lexical primitives take none.
//
// # Suites
//
// QASuite, RAGSuite, and SearchSuite bundle configured subsets of the
// primitives. A suite isolates per-metric failures: when a primitive
// returns an error the suite records a zero-score result carrying the
// error text in metadata instead of aborting the remaining metrics.
//
// # Embeddings
//
// Semantic primitives depend on the Embedder interface. GeminiEmbedder
// backs it with the genai API and initializes its client lazily on first
// use; tests substitute a deterministic in-process embedder.
package metrics
