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

package runner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agentbench/agentbench/config"
	"github.com/agentbench/agentbench/cost"
	"github.com/agentbench/agentbench/evaluation"
	"github.com/agentbench/agentbench/evaluation/metrics"
	"github.com/agentbench/agentbench/monitor"
)

// Runner executes test cases and collects standardized results.
type Runner struct {
	cfg     config.Config
	qa      *metrics.QASuite
	rag     *metrics.RAGSuite
	search  *metrics.SearchSuite
	tracker *cost.Tracker
	tracer  trace.Tracer
}

// New assembles a runner from a validated config. The embedder may be
// nil, which disables the embedding-based metrics.
func New(cfg config.Config, embedder metrics.Embedder) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	qaCfg := metrics.DefaultQASuiteConfig()
	qaCfg.BLEUMaxN = cfg.BLEUMaxN
	qaCfg.ROUGETypes = cfg.ROUGETypes
	qaCfg.UseStemming = cfg.UseStemming
	qaCfg.EnableSemantic = embedder != nil
	qa, err := metrics.NewQASuite(qaCfg, embedder)
	if err != nil {
		return nil, fmt.Errorf("runner: build qa suite: %w", err)
	}

	ragCfg := metrics.DefaultRAGSuiteConfig()
	ragCfg.RelevanceThreshold = cfg.ContextRelevanceThreshold
	ragCfg.EnableContextRelevance = embedder != nil
	ragCfg.EnableGroundedness = embedder != nil
	rag, err := metrics.NewRAGSuite(ragCfg, embedder)
	if err != nil {
		return nil, fmt.Errorf("runner: build rag suite: %w", err)
	}

	searchCfg := metrics.DefaultSearchSuiteConfig()
	searchCfg.MaxAgeDays = cfg.FreshnessMaxAgeDays
	searchCfg.EnableRelevance = embedder != nil
	search, err := metrics.NewSearchSuite(searchCfg, embedder)
	if err != nil {
		return nil, fmt.Errorf("runner: build search suite: %w", err)
	}

	return &Runner{
		cfg:     cfg,
		qa:      qa,
		rag:     rag,
		search:  search,
		tracker: cost.NewTracker(),
		tracer:  otel.Tracer("github.com/agentbench/agentbench/runner"),
	}, nil
}

// Tracker exposes the cost tracker so framework adapters can record
// their API usage against the current task.
func (r *Runner) Tracker() *cost.Tracker {
	return r.tracker
}

// EvaluateTask runs one test case once and returns its result. The
// returned result is always non-nil; failures are reported through the
// Success and ErrorMessage fields, not an error.
func (r *Runner) EvaluateTask(ctx context.Context, frameworkName string, tc TestCase) evaluation.TaskResult {
	taskID := uuid.NewString()
	ctx = cost.ContextWithTaskID(ctx, taskID)
	ctx, span := r.tracer.Start(ctx, "EvaluateTask",
		trace.WithAttributes(
			attribute.String("framework", frameworkName),
			attribute.String("task", tc.Name),
			attribute.String("task.type", string(tc.Type)),
		))
	defer span.End()

	result := evaluation.TaskResult{
		FrameworkName: frameworkName,
		TaskName:      tc.Name,
		TaskID:        taskID,
		Timestamp:     time.Now(),
	}

	mon, err := monitor.New(
		monitor.WithInterval(r.cfg.SamplingInterval()),
		monitor.WithDiskIO(r.cfg.EnableDiskIO),
		monitor.WithNetworkIO(r.cfg.EnableNetworkIO),
	)
	if err != nil {
		result.ErrorMessage = err.Error()
		span.SetStatus(codes.Error, err.Error())
		return result
	}

	taskCtx, cancel := context.WithTimeout(ctx, r.cfg.TaskTimeout(string(tc.Type)))
	defer cancel()

	output, execErr := r.executeMonitored(taskCtx, mon, tc)

	usage := mon.Metrics()
	result.ExecutionTime = usage.ExecutionTime
	result.MemoryUsageMB = usage.PeakMemoryMB
	result.CPUUsagePct = usage.AverageCPUPercent

	if r.cfg.EnableCostTracking {
		costs := make(map[string]float64)
		summary := r.tracker.Summarize(cost.Filter{TaskID: taskID})
		for provider, group := range summary.Providers {
			costs[string(provider)] = group.TotalCost
		}
		if len(costs) > 0 {
			result.APICosts = costs
		}
	}

	if execErr != nil {
		result.ErrorMessage = execErr.Error()
		span.SetStatus(codes.Error, execErr.Error())
		return result
	}

	result.Success = true
	result.RawOutput = output
	result.Metadata = sizeMetadata(tc.Input, output)
	result.QualityMetrics = r.score(ctx, tc, output)
	span.SetStatus(codes.Ok, "")
	return result
}

func sizeMetadata(input, output any) map[string]any {
	md := make(map[string]any)
	if s, ok := input.(string); ok {
		md["input_size"] = len(s)
	}
	if s, ok := output.(string); ok {
		md["output_size"] = len(s)
	}
	if len(md) == 0 {
		return nil
	}
	return md
}

// executeMonitored runs the case under resource sampling, converting
// panics in the framework adapter into errors.
func (r *Runner) executeMonitored(ctx context.Context, mon *monitor.Monitor, tc TestCase) (output any, err error) {
	if tc.Execute == nil {
		return nil, fmt.Errorf("runner: test case %q has no execute function", tc.Name)
	}
	runErr := mon.Run(func() (inner error) {
		defer func() {
			if rec := recover(); rec != nil {
				inner = fmt.Errorf("runner: task panicked: %v", rec)
			}
		}()
		output, inner = tc.Execute(ctx, tc.Input)
		return inner
	})
	return output, runErr
}

// score applies the suite matching the case type and flattens the
// results to name -> score. It returns nil when the case carries no
// scoring inputs.
func (r *Runner) score(ctx context.Context, tc TestCase, output any) map[string]float64 {
	actual, _ := output.(string)
	results := make(map[string]evaluation.MetricResult)

	switch tc.Type {
	case TaskRAG:
		if tc.RAG == nil {
			return nil
		}
		answer := actual
		results = r.rag.EvaluateFullPipeline(ctx, metrics.PipelineInputs{
			Query:         tc.RAG.Query,
			RelevantDocs:  tc.RAG.RelevantDocs,
			RetrievedDocs: tc.RAG.RetrievedDocs,
			Context:       tc.RAG.Context,
			Answer:        answer,
		})
	case TaskSearch:
		if tc.Search == nil {
			return nil
		}
		answer := tc.Search.Answer
		if answer == "" {
			answer = actual
		}
		results = r.search.Evaluate(ctx, tc.Search.Query, tc.Search.Results, answer)
	default:
		if tc.Expected == "" {
			return nil
		}
		results = r.qa.Evaluate(ctx, tc.Expected, actual)
	}

	if len(results) == 0 {
		return nil
	}
	scores := make(map[string]float64, len(results))
	for name, mr := range results {
		scores[name] = mr.Score
	}
	return scores
}

// RunBenchmark runs every case against one framework, retrying failures
// per the retry policy. Every attempt produces its own result record;
// the summary is computed over all of them.
func (r *Runner) RunBenchmark(ctx context.Context, frameworkName string, cases []TestCase) ([]evaluation.TaskResult, evaluation.FrameworkSummary) {
	var results []evaluation.TaskResult
	for _, tc := range cases {
		delay := r.cfg.RetryDelay()
		for attempt := 0; ; attempt++ {
			result := r.EvaluateTask(ctx, frameworkName, tc)
			results = append(results, result)
			if result.Success || attempt >= r.cfg.MaxRetries || ctx.Err() != nil {
				break
			}
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
			if r.cfg.ExponentialBackoff {
				delay *= 2
			}
		}
	}
	return results, evaluation.Summarize(frameworkName, results)
}

// Ranking dimension names used in Comparison.Rankings.
const (
	RankExecutionTime = "average_execution_time"
	RankAPICost       = "total_api_cost"
	RankSuccessRate   = "success_rate"
	RankQuality       = "overall_quality"
)

// CompareFrameworks summarizes each framework's results and ranks the
// frameworks on time, cost, reliability and quality.
func CompareFrameworks(resultsByFramework map[string][]evaluation.TaskResult) evaluation.Comparison {
	comparison := evaluation.Comparison{
		Frameworks: make(map[string]evaluation.FrameworkSummary, len(resultsByFramework)),
		Rankings:   make(map[string][]string),
	}
	names := make([]string, 0, len(resultsByFramework))
	for name, results := range resultsByFramework {
		comparison.Frameworks[name] = evaluation.Summarize(name, results)
		names = append(names, name)
	}
	sort.Strings(names)

	rank := func(dimension string, value func(evaluation.FrameworkSummary) float64, ascending bool) {
		ordered := make([]string, len(names))
		copy(ordered, names)
		sort.SliceStable(ordered, func(i, j int) bool {
			vi := value(comparison.Frameworks[ordered[i]])
			vj := value(comparison.Frameworks[ordered[j]])
			if ascending {
				return vi < vj
			}
			return vi > vj
		})
		comparison.Rankings[dimension] = ordered
	}

	rank(RankExecutionTime, func(s evaluation.FrameworkSummary) float64 {
		return float64(s.AverageExecutionTime)
	}, true)
	rank(RankAPICost, func(s evaluation.FrameworkSummary) float64 {
		return s.TotalAPICost
	}, true)
	rank(RankSuccessRate, func(s evaluation.FrameworkSummary) float64 {
		return s.SuccessRate
	}, false)
	rank(RankQuality, overallQuality, false)

	return comparison
}

// overallQuality averages a framework's per-metric averages.
func overallQuality(s evaluation.FrameworkSummary) float64 {
	if len(s.QualityMetrics) == 0 {
		return 0
	}
	var total float64
	for _, stats := range s.QualityMetrics {
		total += stats.Average
	}
	return total / float64(len(s.QualityMetrics))
}
