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

// Package evaluation provides the core result types and statistics for
// comparing AI agent frameworks across standardized tasks.
//
// # Core Concepts
//
// MetricResult: the output of one quality scoring function: a name, a
// bounded score, an optional confidence interval, and metadata.
//
// TaskResult: one framework's complete outcome (performance + cost +
// quality + success) for one evaluation task attempt. Each attempt,
// including retries, produces a new immutable record.
//
// FrameworkSummary: per-framework aggregate statistics over a list of
// task results. Failed results count toward the success-rate denominator
// but are excluded from quality aggregates.
//
// Comparison: cross-framework summaries plus direction-aware rankings
// (lower is better for execution time and cost, higher is better for
// quality and success rate).
//
// The metric primitives and per-domain suites live in the metrics
// subpackage; the orchestration loop that produces TaskResults lives in
// the runner package.
package evaluation
