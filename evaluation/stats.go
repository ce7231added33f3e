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
	"fmt"
	"math"
)

// ClampScore bounds a score to the [0, 1] range.
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// SafeDivide divides numerator by denominator, returning fallback when
// the denominator is zero.
func SafeDivide(numerator, denominator, fallback float64) float64 {
	if denominator == 0 {
		return fallback
	}
	return numerator / denominator
}

// Mean returns the arithmetic mean of the values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the sample standard deviation of the values.
// Fewer than two values yield 0.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// zScore returns the critical value for the supported confidence levels.
func zScore(confidenceLevel float64) (float64, error) {
	switch confidenceLevel {
	case 0.90:
		return 1.645, nil
	case 0.95:
		return 1.96, nil
	case 0.99:
		return 2.576, nil
	default:
		return 0, fmt.Errorf("evaluation: unsupported confidence level %v", confidenceLevel)
	}
}

// ConfidenceInterval computes a z-based confidence interval for the mean
// of the scores. At least two scores are required.
func ConfidenceInterval(scores []float64, confidenceLevel float64) (Interval, error) {
	if len(scores) < 2 {
		return Interval{}, fmt.Errorf("evaluation: confidence interval requires at least 2 scores, got %d", len(scores))
	}
	z, err := zScore(confidenceLevel)
	if err != nil {
		return Interval{}, err
	}
	mean := Mean(scores)
	margin := z * StdDev(scores) / math.Sqrt(float64(len(scores)))
	return Interval{Lower: mean - margin, Upper: mean + margin}, nil
}

// Aggregate combines multiple metric results for the same metric into a
// single result with the mean score, a 95% confidence interval when enough
// samples are available, and spread statistics in metadata.
func Aggregate(name string, results []*MetricResult) *MetricResult {
	if len(results) == 0 {
		return &MetricResult{
			Name:     name + "_aggregated",
			Score:    0,
			Metadata: map[string]any{"count": 0},
		}
	}

	scores := make([]float64, 0, len(results))
	for _, r := range results {
		scores = append(scores, r.Score)
	}
	min, max := scores[0], scores[0]
	for _, s := range scores {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}

	aggregated := &MetricResult{
		Name:  name + "_aggregated",
		Score: ClampScore(Mean(scores)),
		Metadata: map[string]any{
			"count": len(scores),
			"std":   StdDev(scores),
			"min":   min,
			"max":   max,
		},
	}
	if iv, err := ConfidenceInterval(scores, 0.95); err == nil {
		aggregated.ConfidenceInterval = &iv
	}
	return aggregated
}
