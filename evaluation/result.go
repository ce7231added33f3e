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

package evaluation

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("evaluation: not found")

	// ErrInvalidInput indicates invalid input parameters.
	ErrInvalidInput = errors.New("evaluation: invalid input")
)

// Interval is a closed confidence interval around a score.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// MetricResult is the outcome of one metric calculation.
//
// Score is always clamped to [0, 1]. ConfidenceInterval, when present,
// satisfies Lower <= Upper. A MetricResult is immutable once created.
type MetricResult struct {
	Name               string         `json:"name"`
	Score              float64        `json:"score"`
	ConfidenceInterval *Interval      `json:"confidence_interval,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
}

// NewMetricResult builds a MetricResult with the score clamped to [0, 1].
func NewMetricResult(name string, score float64, metadata map[string]any) *MetricResult {
	return &MetricResult{
		Name:     name,
		Score:    ClampScore(score),
		Metadata: metadata,
	}
}

// TaskResult is the standardized outcome of one task execution attempt.
//
// A new record is created for every attempt, including retries; records
// are never mutated after creation. The runner owns the result list.
type TaskResult struct {
	FrameworkName  string             `json:"framework_name"`
	TaskName       string             `json:"use_case_name"`
	TaskID         string             `json:"task_id,omitempty"`
	ExecutionTime  time.Duration      `json:"execution_time"`
	MemoryUsageMB  float64            `json:"memory_usage"`
	CPUUsagePct    float64            `json:"cpu_usage"`
	APICosts       map[string]float64 `json:"api_costs,omitempty"`
	QualityMetrics map[string]float64 `json:"quality_metrics,omitempty"`
	RawOutput      any                `json:"raw_output,omitempty"`
	Metadata       map[string]any     `json:"metadata,omitempty"`
	Timestamp      time.Time          `json:"timestamp"`
	Success        bool               `json:"success"`
	ErrorMessage   string             `json:"error_message,omitempty"`
}

// TotalAPICost sums the per-provider API costs of the result.
func (r *TaskResult) TotalAPICost() float64 {
	total := 0.0
	for _, c := range r.APICosts {
		total += c
	}
	return total
}

// MetricStats aggregates one quality metric across successful results.
type MetricStats struct {
	Average            float64   `json:"average"`
	Min                float64   `json:"min"`
	Max                float64   `json:"max"`
	Count              int       `json:"count"`
	ConfidenceInterval *Interval `json:"confidence_interval,omitempty"`
}

// FrameworkSummary holds aggregate statistics for one framework's results.
type FrameworkSummary struct {
	FrameworkName        string                 `json:"framework_name"`
	TotalTasks           int                    `json:"total_tests"`
	SuccessfulTasks      int                    `json:"successful_tests"`
	SuccessRate          float64                `json:"success_rate"`
	AverageExecutionTime time.Duration          `json:"average_execution_time"`
	AverageMemoryUsageMB float64                `json:"average_memory_usage"`
	AverageCPUUsagePct   float64                `json:"average_cpu_usage"`
	TotalAPICost         float64                `json:"total_api_costs"`
	QualityMetrics       map[string]MetricStats `json:"quality_metrics,omitempty"`
}

// Comparison is the cross-framework analysis produced by comparing
// multiple frameworks' result lists.
type Comparison struct {
	Frameworks map[string]FrameworkSummary `json:"frameworks"`

	// Rankings maps a dimension name to framework names ordered from
	// best to worst. Direction is dimension-aware: execution time and
	// cost rank ascending, success rate and quality rank descending.
	Rankings map[string][]string `json:"rankings"`
}

// Summarize computes aggregate statistics over a framework's results.
//
// Failed results count toward the success-rate denominator but are
// excluded from the execution-time, resource, cost, and quality
// aggregates.
func Summarize(frameworkName string, results []TaskResult) FrameworkSummary {
	summary := FrameworkSummary{
		FrameworkName:  frameworkName,
		TotalTasks:     len(results),
		QualityMetrics: map[string]MetricStats{},
	}
	if len(results) == 0 {
		return summary
	}

	var ok []TaskResult
	for _, r := range results {
		if r.Success {
			ok = append(ok, r)
		}
	}
	summary.SuccessfulTasks = len(ok)
	summary.SuccessRate = float64(len(ok)) / float64(len(results))

	if len(ok) == 0 {
		return summary
	}

	var execTotal time.Duration
	for _, r := range ok {
		execTotal += r.ExecutionTime
		summary.AverageMemoryUsageMB += r.MemoryUsageMB
		summary.AverageCPUUsagePct += r.CPUUsagePct
		summary.TotalAPICost += r.TotalAPICost()
	}
	n := float64(len(ok))
	summary.AverageExecutionTime = execTotal / time.Duration(len(ok))
	summary.AverageMemoryUsageMB /= n
	summary.AverageCPUUsagePct /= n

	// Collect every metric name seen across successful results; each
	// metric is aggregated only over the results that reported it.
	names := map[string]bool{}
	for _, r := range ok {
		for name := range r.QualityMetrics {
			names[name] = true
		}
	}
	for name := range names {
		var scores []float64
		for _, r := range ok {
			if score, exists := r.QualityMetrics[name]; exists {
				scores = append(scores, score)
			}
		}
		if len(scores) == 0 {
			continue
		}
		stats := MetricStats{
			Average: Mean(scores),
			Min:     scores[0],
			Max:     scores[0],
			Count:   len(scores),
		}
		for _, s := range scores {
			if s < stats.Min {
				stats.Min = s
			}
			if s > stats.Max {
				stats.Max = s
			}
		}
		if iv, err := ConfidenceInterval(scores, 0.95); err == nil {
			stats.ConfidenceInterval = &iv
		}
		summary.QualityMetrics[name] = stats
	}

	return summary
}
