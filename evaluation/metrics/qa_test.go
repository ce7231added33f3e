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

package metrics

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/agentbench/agentbench/evaluation"
)

func TestBLEUIdenticalText(t *testing.T) {
	result, err := NewBLEU().Calculate("the quick brown fox jumps over the lazy dog", "the quick brown fox jumps over the lazy dog")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if math.Abs(result.Score-1) > 1e-9 {
		t.Errorf("Score = %v, want 1 for identical text", result.Score)
	}
	if bp := result.Metadata["brevity_penalty"].(float64); bp != 1 {
		t.Errorf("brevity_penalty = %v, want 1", bp)
	}
}

func TestBLEUEmptyActual(t *testing.T) {
	result, err := NewBLEU().Calculate("expected text", "")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if result.Score != 0 {
		t.Errorf("Score = %v, want 0 for empty actual", result.Score)
	}
	if result.Metadata["reason"] != "empty actual text" {
		t.Errorf("reason = %v", result.Metadata["reason"])
	}
}

func TestBLEUNoOverlap(t *testing.T) {
	result, err := NewBLEU().Calculate("alpha beta gamma delta", "one two three four")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if result.Score != 0 {
		t.Errorf("Score = %v, want 0 for disjoint text", result.Score)
	}
}

func TestBLEUBrevityPenalty(t *testing.T) {
	// A strict prefix of the reference has perfect precisions but gets
	// penalized for being short.
	result, err := NewBLEU().Calculate("the quick brown fox jumps over the lazy dog", "the quick brown fox jumps")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if result.Score <= 0 || result.Score >= 1 {
		t.Errorf("Score = %v, want in (0, 1)", result.Score)
	}
	bp := result.Metadata["brevity_penalty"].(float64)
	if want := math.Exp(1 - 9.0/5.0); math.Abs(bp-want) > 1e-9 {
		t.Errorf("brevity_penalty = %v, want %v", bp, want)
	}
}

func TestROUGEIdenticalText(t *testing.T) {
	rouge, err := NewROUGE()
	if err != nil {
		t.Fatalf("NewROUGE: %v", err)
	}
	result, err := rouge.Calculate("the cat sat on the mat", "the cat sat on the mat")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if math.Abs(result.Score-1) > 1e-9 {
		t.Errorf("Score = %v, want 1 for identical text", result.Score)
	}
	scores := result.Metadata["rouge_scores"].(map[string]float64)
	for _, granularity := range []string{ROUGE1, ROUGE2, ROUGEL} {
		if math.Abs(scores[granularity]-1) > 1e-9 {
			t.Errorf("%s = %v, want 1", granularity, scores[granularity])
		}
	}
}

func TestROUGEStemmingMatchesInflections(t *testing.T) {
	rouge, err := NewROUGE(ROUGE1)
	if err != nil {
		t.Fatalf("NewROUGE: %v", err)
	}
	result, err := rouge.Calculate("cats running quickly", "cat runs quick")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if result.Score == 0 {
		t.Error("expected stemmed overlap to score above 0")
	}
}

func TestNewROUGERejectsUnknownType(t *testing.T) {
	if _, err := NewROUGE("rouge3"); err == nil {
		t.Error("expected error for unknown granularity")
	}
}

func TestSemanticSimilarity(t *testing.T) {
	ctx := context.Background()
	metric := NewSemanticSimilarity(fakeEmbedder{})

	result, err := metric.Calculate(ctx, "solar power generates energy", "solar power generates energy")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if math.Abs(result.Score-1) > 1e-6 {
		t.Errorf("Score = %v, want 1 for identical text", result.Score)
	}

	empty, err := metric.Calculate(ctx, "", "something")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if empty.Score != 0 || empty.Metadata["reason"] != "empty text" {
		t.Errorf("unexpected result for empty input: %+v", empty)
	}
}

func TestSemanticSimilarityPropagatesEmbedderError(t *testing.T) {
	metric := NewSemanticSimilarity(fakeEmbedder{err: errors.New("quota exceeded")})
	if _, err := metric.Calculate(context.Background(), "a b", "c d"); err == nil {
		t.Error("expected embedder error to propagate")
	}
}

func TestFactualAccuracy(t *testing.T) {
	metric := NewFactualAccuracy()

	result, err := metric.Calculate("The tower is 324 meters tall", "It is 324 meters")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	// Expected facts: 324, tower, meter, tall. Preserved: 324, meter.
	if math.Abs(result.Score-0.5) > 1e-9 {
		t.Errorf("Score = %v, want 0.5", result.Score)
	}
	if result.Metadata["total_facts"] != 4 || result.Metadata["preserved_facts"] != 2 {
		t.Errorf("fact counts = %v/%v, want 2/4",
			result.Metadata["preserved_facts"], result.Metadata["total_facts"])
	}
}

func TestFactualAccuracyNoFacts(t *testing.T) {
	result, err := NewFactualAccuracy().Calculate("is it so", "anything")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if result.Score != 1 {
		t.Errorf("Score = %v, want 1 when there is nothing to verify", result.Score)
	}
}

func TestQASuiteEvaluate(t *testing.T) {
	suite, err := NewQASuite(DefaultQASuiteConfig(), fakeEmbedder{})
	if err != nil {
		t.Fatalf("NewQASuite: %v", err)
	}

	text := "the quick brown fox jumps over the lazy dog"
	results := suite.Evaluate(context.Background(), text, text)

	for _, name := range []string{MetricBLEU, MetricROUGE, MetricSemantic, MetricFactual} {
		result, ok := results[name]
		if !ok {
			t.Fatalf("missing metric %q", name)
		}
		if math.Abs(result.Score-1) > 1e-6 {
			t.Errorf("%s = %v, want 1 for identical text", name, result.Score)
		}
	}
}

func TestQASuiteIsolatesMetricFailure(t *testing.T) {
	suite, err := NewQASuite(DefaultQASuiteConfig(), fakeEmbedder{err: errors.New("backend down")})
	if err != nil {
		t.Fatalf("NewQASuite: %v", err)
	}

	results := suite.Evaluate(context.Background(), "alpha beta gamma", "alpha beta gamma")

	semantic := results[MetricSemantic]
	if semantic.Score != 0 {
		t.Errorf("failed metric score = %v, want 0", semantic.Score)
	}
	if semantic.Metadata["error"] == nil {
		t.Error("expected error recorded in failed metric metadata")
	}
	if results[MetricBLEU].Score == 0 {
		t.Error("unrelated metrics must still be computed")
	}
}

func TestNewQASuiteRequiresEmbedderForSemantic(t *testing.T) {
	cfg := DefaultQASuiteConfig()
	if _, err := NewQASuite(cfg, nil); err == nil {
		t.Error("expected error when semantic is enabled without an embedder")
	}

	cfg.EnableSemantic = false
	if _, err := NewQASuite(cfg, nil); err != nil {
		t.Errorf("unexpected error with semantic disabled: %v", err)
	}
}

func TestOverallScore(t *testing.T) {
	resultMap := map[string]evaluation.MetricResult{
		"bleu":  {Name: "bleu", Score: 0.5},
		"rouge": {Name: "rouge", Score: 1.0},
	}

	if got := OverallScore(resultMap, nil); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("unweighted OverallScore = %v, want 0.75", got)
	}
	weighted := OverallScore(resultMap, map[string]float64{"bleu": 3, "rouge": 1})
	if want := (0.5*3 + 1.0*1) / 4; math.Abs(weighted-want) > 1e-9 {
		t.Errorf("weighted OverallScore = %v, want %v", weighted, want)
	}
	if got := OverallScore(nil, nil); got != 0 {
		t.Errorf("OverallScore of no results = %v, want 0", got)
	}
}

func TestCalculateBatch(t *testing.T) {
	bleu := NewBLEU()
	results, err := CalculateBatch(bleu.Calculate,
		[]string{"a b c", "x y z"},
		[]string{"a b c", "x y z"})
	if err != nil {
		t.Fatalf("CalculateBatch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for i, r := range results {
		if math.Abs(r.Score-1) > 1e-9 {
			t.Errorf("result %d score = %v, want 1", i, r.Score)
		}
	}

	if _, err := CalculateBatch(bleu.Calculate, []string{"a"}, []string{"a", "b"}); err == nil {
		t.Error("expected length mismatch error")
	}
}
