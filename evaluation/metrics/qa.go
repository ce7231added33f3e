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
	"regexp"
	"strings"

	"github.com/agentbench/agentbench/evaluation"
)

// Metric names reported by the QA suite.
const (
	MetricBLEU     = "bleu"
	MetricROUGE    = "rouge"
	MetricSemantic = "semantic"
	MetricFactual  = "factual"
)

// BLEU measures clipped n-gram precision overlap with a brevity penalty.
type BLEU struct {
	// MaxN is the largest n-gram order considered.
	MaxN int
	// CaseSensitive disables lowercasing during preprocessing.
	CaseSensitive bool
}

// NewBLEU returns a BLEU metric with n-grams up to order 4.
func NewBLEU() *BLEU {
	return &BLEU{MaxN: 4}
}

// Calculate scores actual against expected.
//
// An empty candidate scores 0. Any n-gram order with zero precision
// forces the geometric mean, and therefore the whole score, to zero.
func (m *BLEU) Calculate(expected, actual string) (*evaluation.MetricResult, error) {
	expectedTokens := strings.Fields(preprocessText(expected, m.CaseSensitive))
	actualTokens := strings.Fields(preprocessText(actual, m.CaseSensitive))

	if len(actualTokens) == 0 {
		return &evaluation.MetricResult{
			Name:     MetricBLEU,
			Metadata: map[string]any{"reason": "empty actual text"},
		}, nil
	}

	precisions := make([]float64, 0, m.MaxN)
	for n := 1; n <= m.MaxN; n++ {
		expectedGrams := countNGrams(expectedTokens, n)
		actualGrams := countNGrams(actualTokens, n)

		if len(actualGrams) == 0 {
			precisions = append(precisions, 0)
			continue
		}

		matches := 0
		total := 0
		for gram, count := range actualGrams {
			total += count
			if refCount, ok := expectedGrams[gram]; ok {
				matches += min(count, refCount)
			}
		}
		precisions = append(precisions, evaluation.SafeDivide(float64(matches), float64(total), 0))
	}

	geometricMean := 0.0
	allPositive := true
	logSum := 0.0
	for _, p := range precisions {
		if p <= 0 {
			allPositive = false
			break
		}
		logSum += math.Log(p)
	}
	if allPositive {
		geometricMean = math.Exp(logSum / float64(len(precisions)))
	}

	brevityPenalty := 1.0
	if len(actualTokens) < len(expectedTokens) {
		brevityPenalty = math.Exp(1 - float64(len(expectedTokens))/float64(len(actualTokens)))
	}

	return evaluation.NewMetricResult(MetricBLEU, brevityPenalty*geometricMean, map[string]any{
		"precisions":      precisions,
		"brevity_penalty": brevityPenalty,
		"expected_length": len(expectedTokens),
		"actual_length":   len(actualTokens),
	}), nil
}

func countNGrams(tokens []string, n int) map[string]int {
	grams := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		grams[strings.Join(tokens[i:i+n], " ")]++
	}
	return grams
}

// ROUGE granularities.
const (
	ROUGE1 = "rouge1"
	ROUGE2 = "rouge2"
	ROUGEL = "rougeL"
)

// ROUGE measures recall-oriented overlap at the configured granularities.
// The final score is the mean F1 across granularities.
type ROUGE struct {
	types         []string
	caseSensitive bool
	useStemmer    bool
}

// NewROUGE builds a ROUGE metric for the given granularities. Passing no
// granularities selects rouge1, rouge2, and rougeL. Unknown granularities
// are rejected.
func NewROUGE(types ...string) (*ROUGE, error) {
	if len(types) == 0 {
		types = []string{ROUGE1, ROUGE2, ROUGEL}
	}
	for _, t := range types {
		switch t {
		case ROUGE1, ROUGE2, ROUGEL:
		default:
			return nil, fmt.Errorf("metrics: invalid ROUGE type %q", t)
		}
	}
	return &ROUGE{types: types, useStemmer: true}, nil
}

type rougeScore struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	FMeasure  float64 `json:"fmeasure"`
}

// Calculate scores actual against expected over stemmed lowercase tokens.
func (m *ROUGE) Calculate(expected, actual string) (*evaluation.MetricResult, error) {
	expectedTokens := tokenizeWords(preprocessText(expected, m.caseSensitive), m.useStemmer)
	actualTokens := tokenizeWords(preprocessText(actual, m.caseSensitive), m.useStemmer)

	detailed := make(map[string]rougeScore, len(m.types))
	total := 0.0
	for _, t := range m.types {
		var score rougeScore
		switch t {
		case ROUGE1:
			score = rougeN(expectedTokens, actualTokens, 1)
		case ROUGE2:
			score = rougeN(expectedTokens, actualTokens, 2)
		case ROUGEL:
			score = rougeLCS(expectedTokens, actualTokens)
		}
		detailed[t] = score
		total += score.FMeasure
	}

	scores := make(map[string]float64, len(detailed))
	for t, s := range detailed {
		scores[t] = s.FMeasure
	}

	return evaluation.NewMetricResult(MetricROUGE, evaluation.SafeDivide(total, float64(len(m.types)), 0), map[string]any{
		"rouge_scores":    scores,
		"detailed_scores": detailed,
	}), nil
}

func rougeN(reference, candidate []string, n int) rougeScore {
	refGrams := countNGrams(reference, n)
	candGrams := countNGrams(candidate, n)

	matches := 0
	candTotal := 0
	for gram, count := range candGrams {
		candTotal += count
		if refCount, ok := refGrams[gram]; ok {
			matches += min(count, refCount)
		}
	}
	refTotal := 0
	for _, count := range refGrams {
		refTotal += count
	}

	return fScore(float64(matches), float64(candTotal), float64(refTotal))
}

func rougeLCS(reference, candidate []string) rougeScore {
	lcs := lcsLength(reference, candidate)
	return fScore(float64(lcs), float64(len(candidate)), float64(len(reference)))
}

func fScore(matches, candidateTotal, referenceTotal float64) rougeScore {
	precision := evaluation.SafeDivide(matches, candidateTotal, 0)
	recall := evaluation.SafeDivide(matches, referenceTotal, 0)
	return rougeScore{
		Precision: precision,
		Recall:    recall,
		FMeasure:  evaluation.SafeDivide(2*precision*recall, precision+recall, 0),
	}
}

func lcsLength(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// SemanticSimilarity scores the embedding cosine similarity of two texts,
// clamped to [0, 1].
type SemanticSimilarity struct {
	embedder Embedder
}

// NewSemanticSimilarity builds the metric around an injected embedder.
func NewSemanticSimilarity(embedder Embedder) *SemanticSimilarity {
	return &SemanticSimilarity{embedder: embedder}
}

// Calculate embeds both texts and returns their clamped cosine similarity.
func (m *SemanticSimilarity) Calculate(ctx context.Context, expected, actual string) (*evaluation.MetricResult, error) {
	expected = strings.TrimSpace(expected)
	actual = strings.TrimSpace(actual)
	if expected == "" || actual == "" {
		return &evaluation.MetricResult{
			Name:     MetricSemantic,
			Metadata: map[string]any{"reason": "empty text"},
		}, nil
	}

	vectors, err := m.embedder.Embed(ctx, []string{expected, actual})
	if err != nil {
		return nil, err
	}

	similarity := evaluation.ClampScore(CosineSimilarity(vectors[0], vectors[1]))
	return evaluation.NewMetricResult(MetricSemantic, similarity, map[string]any{
		"expected_length": len(expected),
		"actual_length":   len(actual),
	}), nil
}

var (
	numberPattern = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
	quotedPattern = regexp.MustCompile(`"([^"]*)"`)
	properPattern = regexp.MustCompile(`\b[A-Z][a-z]+\b`)
)

// FactualAccuracy measures what fraction of facts extracted from the
// expected text survive in the actual text. Facts are numeric tokens,
// quoted substrings, and content words longer than three characters.
type FactualAccuracy struct {
	CaseSensitive bool
	UseStemming   bool
}

// NewFactualAccuracy returns the metric with stemming enabled.
func NewFactualAccuracy() *FactualAccuracy {
	return &FactualAccuracy{UseStemming: true}
}

// Calculate scores fact preservation. Expected text with no extractable
// facts scores 1.0: there is nothing to verify.
func (m *FactualAccuracy) Calculate(expected, actual string) (*evaluation.MetricResult, error) {
	if !m.CaseSensitive {
		expected = strings.ToLower(expected)
		actual = strings.ToLower(actual)
	}

	expectedFacts := m.extractFacts(expected)
	actualFacts := m.extractFacts(actual)

	if len(expectedFacts) == 0 {
		return &evaluation.MetricResult{
			Name:     MetricFactual,
			Score:    1.0,
			Metadata: map[string]any{"reason": "no facts found in expected text"},
		}, nil
	}

	preserved := 0
	for fact := range expectedFacts {
		if factPresent(fact, actualFacts) {
			preserved++
		}
	}

	return evaluation.NewMetricResult(MetricFactual,
		evaluation.SafeDivide(float64(preserved), float64(len(expectedFacts)), 0),
		map[string]any{
			"preserved_facts": preserved,
			"total_facts":     len(expectedFacts),
		}), nil
}

func (m *FactualAccuracy) extractFacts(text string) map[string]bool {
	facts := make(map[string]bool)

	for _, number := range numberPattern.FindAllString(text, -1) {
		facts[number] = true
	}
	if m.CaseSensitive {
		for _, noun := range properPattern.FindAllString(text, -1) {
			facts[noun] = true
		}
	}
	for _, match := range quotedPattern.FindAllStringSubmatch(text, -1) {
		facts[match[1]] = true
	}

	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(word) <= 3 || stopWords[word] {
			continue
		}
		if m.UseStemming {
			word = stemWord(word)
		}
		facts[word] = true
	}

	return facts
}

func factPresent(fact string, actualFacts map[string]bool) bool {
	if actualFacts[fact] {
		return true
	}
	if len(fact) > 5 {
		for actual := range actualFacts {
			if strings.Contains(actual, fact) || strings.Contains(fact, actual) {
				return true
			}
		}
	}
	return false
}

// QASuiteConfig selects and parameterizes the QA metrics.
type QASuiteConfig struct {
	EnableBLEU     bool
	EnableROUGE    bool
	EnableSemantic bool
	EnableFactual  bool

	BLEUMaxN      int
	ROUGETypes    []string
	UseStemming   bool
	CaseSensitive bool
}

// DefaultQASuiteConfig enables every QA metric with standard parameters.
func DefaultQASuiteConfig() QASuiteConfig {
	return QASuiteConfig{
		EnableBLEU:     true,
		EnableROUGE:    true,
		EnableSemantic: true,
		EnableFactual:  true,
		BLEUMaxN:       4,
		ROUGETypes:     []string{ROUGE1, ROUGE2, ROUGEL},
		UseStemming:    true,
	}
}

// QASuite bundles the question-answering metrics.
type QASuite struct {
	bleu     *BLEU
	rouge    *ROUGE
	semantic *SemanticSimilarity
	factual  *FactualAccuracy
}

// NewQASuite assembles the enabled QA metrics. The embedder may be nil
// when the semantic metric is disabled.
func NewQASuite(cfg QASuiteConfig, embedder Embedder) (*QASuite, error) {
	suite := &QASuite{}
	if cfg.EnableBLEU {
		maxN := cfg.BLEUMaxN
		if maxN <= 0 {
			maxN = 4
		}
		suite.bleu = &BLEU{MaxN: maxN, CaseSensitive: cfg.CaseSensitive}
	}
	if cfg.EnableROUGE {
		rouge, err := NewROUGE(cfg.ROUGETypes...)
		if err != nil {
			return nil, err
		}
		rouge.caseSensitive = cfg.CaseSensitive
		rouge.useStemmer = cfg.UseStemming
		suite.rouge = rouge
	}
	if cfg.EnableSemantic {
		if embedder == nil {
			return nil, fmt.Errorf("metrics: semantic metric enabled without an embedder")
		}
		suite.semantic = NewSemanticSimilarity(embedder)
	}
	if cfg.EnableFactual {
		suite.factual = &FactualAccuracy{CaseSensitive: cfg.CaseSensitive, UseStemming: cfg.UseStemming}
	}
	return suite, nil
}

// Evaluate runs every enabled metric against the expected/actual pair.
// A failing metric contributes a zero-score result with the error noted
// in metadata; it never aborts the remaining metrics.
func (s *QASuite) Evaluate(ctx context.Context, expected, actual string) map[string]evaluation.MetricResult {
	results := make(map[string]evaluation.MetricResult)

	if s.bleu != nil {
		record(results, MetricBLEU, func() (*evaluation.MetricResult, error) {
			return s.bleu.Calculate(expected, actual)
		})
	}
	if s.rouge != nil {
		record(results, MetricROUGE, func() (*evaluation.MetricResult, error) {
			return s.rouge.Calculate(expected, actual)
		})
	}
	if s.semantic != nil {
		record(results, MetricSemantic, func() (*evaluation.MetricResult, error) {
			return s.semantic.Calculate(ctx, expected, actual)
		})
	}
	if s.factual != nil {
		record(results, MetricFactual, func() (*evaluation.MetricResult, error) {
			return s.factual.Calculate(expected, actual)
		})
	}

	return results
}

// record stores the metric outcome, substituting a zero-score result when
// the calculation failed.
func record(results map[string]evaluation.MetricResult, name string, calc func() (*evaluation.MetricResult, error)) {
	result, err := calc()
	if err != nil {
		results[name] = evaluation.MetricResult{
			Name:     name,
			Metadata: map[string]any{"error": err.Error()},
		}
		return
	}
	results[name] = *result
}

// OverallScore computes a weighted average over a suite's results.
// Metrics without an explicit weight get weight 1. Empty input scores 0.
func OverallScore(results map[string]evaluation.MetricResult, weights map[string]float64) float64 {
	if len(results) == 0 {
		return 0
	}
	totalScore := 0.0
	totalWeight := 0.0
	for name, result := range results {
		weight := 1.0
		if w, ok := weights[name]; ok {
			weight = w
		}
		totalScore += result.Score * weight
		totalWeight += weight
	}
	return evaluation.SafeDivide(totalScore, totalWeight, 0)
}

// CalculateBatch applies a text metric to paired expected/actual slices.
func CalculateBatch(calc func(expected, actual string) (*evaluation.MetricResult, error), expected, actual []string) ([]*evaluation.MetricResult, error) {
	if len(expected) != len(actual) {
		return nil, fmt.Errorf("metrics: expected and actual lists must have the same length, got %d and %d", len(expected), len(actual))
	}
	results := make([]*evaluation.MetricResult, 0, len(expected))
	for i := range expected {
		result, err := calc(expected[i], actual[i])
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}
