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

// Package runner orchestrates benchmark execution: it runs test cases
// against framework adapters, samples resource usage, attributes API
// costs, scores outputs with the quality suites, and aggregates results
// across frameworks.
package runner

import (
	"context"

	"github.com/agentbench/agentbench/evaluation/metrics"
)

// TaskType selects which quality suite scores a test case.
type TaskType string

const (
	TaskQA      TaskType = "qa"
	TaskRAG     TaskType = "rag"
	TaskSearch  TaskType = "search"
	TaskGeneral TaskType = "general"
)

// RAGInputs carries the retrieval and generation data of a RAG case.
type RAGInputs struct {
	Query         string   `json:"query"`
	Context       string   `json:"context"`
	RelevantDocs  []string `json:"relevant_docs"`
	RetrievedDocs []string `json:"retrieved_docs"`
}

// SearchInputs carries the results and answer of a web-search case.
type SearchInputs struct {
	Query   string                 `json:"query"`
	Results []metrics.SearchResult `json:"results"`
	Answer  string                 `json:"answer"`
}

// TestCase is one benchmark task executed against a framework adapter.
//
// Execute runs the framework under test; its returned value becomes the
// task's raw output and, when it is a string, the actual text scored by
// the quality suites. Quality scoring is skipped when neither Expected
// nor type-specific inputs are set.
type TestCase struct {
	Name     string
	Type     TaskType
	Execute  func(ctx context.Context, input any) (any, error)
	Input    any
	Expected string
	RAG      *RAGInputs
	Search   *SearchInputs
}
