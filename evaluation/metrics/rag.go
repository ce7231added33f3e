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
	"fmt"
	"math"
	"strings"

	"github.com/agentbench/agentbench/evaluation"
)

// Metric names reported by the RAG suite.
const (
	MetricRetrievalPrecision = "precision"
	MetricRetrievalRecall    = "recall"
	MetricContextRelevance   = "context_relevance"
	MetricGroundedness       = "groundedness"
)

// Chunk size limits for embedding comparisons.
const (
	contextChunkSize      = 500
	groundednessChunkSize = 300
	supportThreshold      = 0.5
)

// RetrievalPrecision measures the fraction of retrieved documents that
// are relevant.
type RetrievalPrecision struct{}

// Calculate scores retrieved against relevant by set intersection over
// document IDs. An empty retrieved list scores 0.
func (RetrievalPrecision) Calculate(relevant, retrieved []string) (*evaluation.MetricResult, error) {
	if len(retrieved) == 0 {
		return &evaluation.MetricResult{
			Name:     MetricRetrievalPrecision,
			Metadata: map[string]any{"reason": "no documents retrieved"},
		}, nil
	}

	matched := intersectionSize(relevant, retrieved)
	return evaluation.NewMetricResult(MetricRetrievalPrecision,
		evaluation.SafeDivide(float64(matched), float64(len(retrieved)), 0),
		map[string]any{
			"relevant_retrieved": matched,
			"total_retrieved":    len(retrieved),
			"total_relevant":     len(relevant),
		}), nil
}

// RetrievalRecall measures the fraction of relevant documents that were
// retrieved.
type RetrievalRecall struct{}

// Calculate scores retrieved against relevant. An empty relevant list
// scores 1.0: there was nothing to retrieve.
func (RetrievalRecall) Calculate(relevant, retrieved []string) (*evaluation.MetricResult, error) {
	if len(relevant) == 0 {
		return &evaluation.MetricResult{
			Name:     MetricRetrievalRecall,
			Score:    1.0,
			Metadata: map[string]any{"reason": "no relevant documents"},
		}, nil
	}

	matched := intersectionSize(relevant, retrieved)
	return evaluation.NewMetricResult(MetricRetrievalRecall,
		evaluation.SafeDivide(float64(matched), float64(len(relevant)), 0),
		map[string]any{
			"relevant_retrieved": matched,
			"total_retrieved":    len(retrieved),
			"total_relevant":     len(relevant),
		}), nil
}

func intersectionSize(relevant, retrieved []string) int {
	relevantSet := make(map[string]bool, len(relevant))
	for _, doc := range relevant {
		relevantSet[doc] = true
	}
	seen := make(map[string]bool, len(retrieved))
	matched := 0
	for _, doc := range retrieved {
		if relevantSet[doc] && !seen[doc] {
			matched++
			seen[doc] = true
		}
	}
	return matched
}

// ContextRelevance measures how relevant retrieved context is to a query
// by embedding the query against sentence-bounded context chunks.
type ContextRelevance struct {
	embedder Embedder
	// Threshold is the minimum similarity for a chunk to count as relevant.
	Threshold float64
}

// NewContextRelevance builds the metric with the default 0.5 threshold.
func NewContextRelevance(embedder Embedder) *ContextRelevance {
	return &ContextRelevance{embedder: embedder, Threshold: 0.5}
}

// Calculate returns the maximum query/chunk similarity; the fraction of
// chunks above the threshold is reported in metadata.
func (m *ContextRelevance) Calculate(ctx context.Context, query, contextText string) (*evaluation.MetricResult, error) {
	if strings.TrimSpace(query) == "" || strings.TrimSpace(contextText) == "" {
		return &evaluation.MetricResult{
			Name:     MetricContextRelevance,
			Metadata: map[string]any{"reason": "empty query or context"},
		}, nil
	}

	chunks := chunkBySentences(contextText, contextChunkSize)
	vectors, err := m.embedder.Embed(ctx, append([]string{query}, chunks...))
	if err != nil {
		return nil, err
	}

	queryVec := vectors[0]
	similarities := make([]float64, 0, len(chunks))
	maxSimilarity := 0.0
	relevantChunks := 0
	for _, chunkVec := range vectors[1:] {
		similarity := math.Max(0, CosineSimilarity(queryVec, chunkVec))
		similarities = append(similarities, similarity)
		if similarity > maxSimilarity {
			maxSimilarity = similarity
		}
		if similarity >= m.Threshold {
			relevantChunks++
		}
	}

	return evaluation.NewMetricResult(MetricContextRelevance, maxSimilarity, map[string]any{
		"max_similarity":  maxSimilarity,
		"avg_similarity":  evaluation.Mean(similarities),
		"relevance_ratio": evaluation.SafeDivide(float64(relevantChunks), float64(len(similarities)), 0),
		"threshold":       m.Threshold,
		"num_chunks":      len(similarities),
		"relevant_chunks": relevantChunks,
	}), nil
}

// AnswerGroundedness measures the fraction of an answer's claims that are
// semantically supported by the provided context.
type AnswerGroundedness struct {
	embedder Embedder
}

// NewAnswerGroundedness builds the metric around an injected embedder.
func NewAnswerGroundedness(embedder Embedder) *AnswerGroundedness {
	return &AnswerGroundedness{embedder: embedder}
}

// Calculate splits the answer into claim sentences and counts a claim as
// supported when its best context-chunk similarity exceeds 0.5. An answer
// with no claims scores 0.
func (m *AnswerGroundedness) Calculate(ctx context.Context, contextText, answer string) (*evaluation.MetricResult, error) {
	if strings.TrimSpace(contextText) == "" || strings.TrimSpace(answer) == "" {
		return &evaluation.MetricResult{
			Name:     MetricGroundedness,
			Metadata: map[string]any{"reason": "empty context or answer"},
		}, nil
	}

	claims := extractClaims(answer)
	if len(claims) == 0 {
		return &evaluation.MetricResult{
			Name:     MetricGroundedness,
			Metadata: map[string]any{"reason": "no claims found in answer"},
		}, nil
	}

	chunks := chunkBySentences(contextText, groundednessChunkSize)
	vectors, err := m.embedder.Embed(ctx, append(append([]string{}, claims...), chunks...))
	if err != nil {
		return nil, err
	}
	claimVecs := vectors[:len(claims)]
	chunkVecs := vectors[len(claims):]

	supported := 0
	claimScores := make([]float64, 0, len(claims))
	for _, claimVec := range claimVecs {
		best := 0.0
		for _, chunkVec := range chunkVecs {
			if similarity := CosineSimilarity(claimVec, chunkVec); similarity > best {
				best = similarity
			}
		}
		claimScores = append(claimScores, best)
		if best > supportThreshold {
			supported++
		}
	}

	return evaluation.NewMetricResult(MetricGroundedness,
		evaluation.SafeDivide(float64(supported), float64(len(claims)), 0),
		map[string]any{
			"supported_claims":  supported,
			"total_claims":      len(claims),
			"avg_support_score": evaluation.Mean(claimScores),
			"claim_scores":      claimScores,
		}), nil
}

// RAGSuiteConfig selects and parameterizes the RAG metrics.
type RAGSuiteConfig struct {
	EnablePrecision        bool
	EnableRecall           bool
	EnableContextRelevance bool
	EnableGroundedness     bool

	// RelevanceThreshold is the context-relevance chunk threshold.
	RelevanceThreshold float64
}

// DefaultRAGSuiteConfig enables every RAG metric with the 0.5 threshold.
func DefaultRAGSuiteConfig() RAGSuiteConfig {
	return RAGSuiteConfig{
		EnablePrecision:        true,
		EnableRecall:           true,
		EnableContextRelevance: true,
		EnableGroundedness:     true,
		RelevanceThreshold:     0.5,
	}
}

// RAGSuite bundles retrieval and generation metrics for RAG pipelines.
type RAGSuite struct {
	precision    *RetrievalPrecision
	recall       *RetrievalRecall
	relevance    *ContextRelevance
	groundedness *AnswerGroundedness
}

// NewRAGSuite assembles the enabled RAG metrics. The embedder may be nil
// when neither generation metric is enabled.
func NewRAGSuite(cfg RAGSuiteConfig, embedder Embedder) (*RAGSuite, error) {
	suite := &RAGSuite{}
	if cfg.EnablePrecision {
		suite.precision = &RetrievalPrecision{}
	}
	if cfg.EnableRecall {
		suite.recall = &RetrievalRecall{}
	}
	if cfg.EnableContextRelevance {
		if embedder == nil {
			return nil, fmt.Errorf("metrics: context relevance enabled without an embedder")
		}
		relevance := NewContextRelevance(embedder)
		if cfg.RelevanceThreshold > 0 {
			relevance.Threshold = cfg.RelevanceThreshold
		}
		suite.relevance = relevance
	}
	if cfg.EnableGroundedness {
		if embedder == nil {
			return nil, fmt.Errorf("metrics: groundedness enabled without an embedder")
		}
		suite.groundedness = NewAnswerGroundedness(embedder)
	}
	return suite, nil
}

// EvaluateRetrieval scores document retrieval against the relevant set.
func (s *RAGSuite) EvaluateRetrieval(relevant, retrieved []string) map[string]evaluation.MetricResult {
	results := make(map[string]evaluation.MetricResult)
	if s.precision != nil {
		record(results, MetricRetrievalPrecision, func() (*evaluation.MetricResult, error) {
			return s.precision.Calculate(relevant, retrieved)
		})
	}
	if s.recall != nil {
		record(results, MetricRetrievalRecall, func() (*evaluation.MetricResult, error) {
			return s.recall.Calculate(relevant, retrieved)
		})
	}
	return results
}

// EvaluateGeneration scores the generated answer against query and context.
func (s *RAGSuite) EvaluateGeneration(ctx context.Context, query, contextText, answer string) map[string]evaluation.MetricResult {
	results := make(map[string]evaluation.MetricResult)
	if s.relevance != nil {
		record(results, MetricContextRelevance, func() (*evaluation.MetricResult, error) {
			return s.relevance.Calculate(ctx, query, contextText)
		})
	}
	if s.groundedness != nil {
		record(results, MetricGroundedness, func() (*evaluation.MetricResult, error) {
			return s.groundedness.Calculate(ctx, contextText, answer)
		})
	}
	return results
}

// PipelineInputs carries everything needed for a full RAG evaluation.
type PipelineInputs struct {
	Query         string
	RelevantDocs  []string
	RetrievedDocs []string
	Context       string
	Answer        string
}

// EvaluateFullPipeline unions retrieval and generation results.
func (s *RAGSuite) EvaluateFullPipeline(ctx context.Context, in PipelineInputs) map[string]evaluation.MetricResult {
	results := s.EvaluateRetrieval(in.RelevantDocs, in.RetrievedDocs)
	for name, result := range s.EvaluateGeneration(ctx, in.Query, in.Context, in.Answer) {
		results[name] = result
	}
	return results
}
