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
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/agentbench/agentbench/evaluation"
)

// Metric names reported by the search suite.
const (
	MetricCredibility = "credibility"
	MetricFreshness   = "freshness"
	MetricRelevance   = "relevance"
)

// SearchResult is a single result returned by a web search.
type SearchResult struct {
	URL     string `json:"url"`
	Content string `json:"content"`
	Date    string `json:"date,omitempty"`
}

var highCredibilityDomains = map[string]bool{
	"wikipedia.org":           true,
	"britannica.com":          true,
	"nature.com":              true,
	"science.org":             true,
	"pubmed.ncbi.nlm.nih.gov": true,
	"scholar.google.com":      true,
	"arxiv.org":               true,
	"reuters.com":             true,
	"bbc.com":                 true,
	"npr.org":                 true,
	"pbs.org":                 true,
}

var academicTLDs = map[string]bool{"edu": true, "gov": true, "org": true}

var lowCredibilityKeywords = []string{"blog", "forum", "social", "wiki", "user-generated"}

var academicIndicators = []string{"university", "institute", "research", "study", "journal", "publication"}

// SourceCredibility scores the trustworthiness of information sources.
// Sources may be URLs or free-text citations.
type SourceCredibility struct{}

// Calculate scores each source on domain heuristics and combines them with
// a credibility-weighted average, so strong sources dominate the result.
func (SourceCredibility) Calculate(sources []string) (*evaluation.MetricResult, error) {
	if len(sources) == 0 {
		return &evaluation.MetricResult{
			Name:     MetricCredibility,
			Metadata: map[string]any{"reason": "no sources provided"},
		}, nil
	}

	scores := make([]float64, 0, len(sources))
	for _, source := range sources {
		scores = append(scores, scoreSource(source))
	}

	var weighted, total float64
	for _, s := range scores {
		weighted += s * s
		total += s
	}
	overall := evaluation.SafeDivide(weighted, total, 0)

	return evaluation.NewMetricResult(MetricCredibility, overall, map[string]any{
		"individual_scores": scores,
		"avg_score":         evaluation.Mean(scores),
		"num_sources":       len(scores),
	}), nil
}

func scoreSource(source string) float64 {
	score := 0.5
	trimmed := strings.TrimSpace(source)

	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		parsed, err := url.Parse(trimmed)
		if err != nil {
			return evaluation.ClampScore(score)
		}
		domain := strings.ToLower(strings.TrimPrefix(parsed.Hostname(), "www."))

		if parts := strings.Split(domain, "."); len(parts) > 1 && academicTLDs[parts[len(parts)-1]] {
			score += 0.3
		}
		if highCredibilityDomains[domain] {
			score += 0.4
		}
		for _, keyword := range lowCredibilityKeywords {
			if strings.Contains(domain, keyword) {
				score -= 0.2
			}
		}
		if parsed.Scheme == "https" {
			score += 0.1
		}
	} else {
		lower := strings.ToLower(trimmed)
		for _, indicator := range academicIndicators {
			if strings.Contains(lower, indicator) {
				score += 0.2
				break
			}
		}
		for _, keyword := range lowCredibilityKeywords {
			if strings.Contains(lower, keyword) {
				score -= 0.2
			}
		}
	}
	return evaluation.ClampScore(score)
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`),
	regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`),
	regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{4})\b`),
	regexp.MustCompile(`\b([A-Za-z]+)\s+(\d{1,2}),?\s+(\d{4})\b`),
}

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// InformationFreshness scores how recent the dates mentioned in content are
// relative to a query date.
type InformationFreshness struct {
	// MaxAgeDays is the age at which a date's freshness reaches zero.
	MaxAgeDays int
}

// NewInformationFreshness uses a one-year freshness horizon.
func NewInformationFreshness() *InformationFreshness {
	return &InformationFreshness{MaxAgeDays: 365}
}

// Calculate extracts dates from content and scores the freshest one
// linearly against the age horizon. A zero queryDate means now; content
// without any recognizable date scores 0.
func (m *InformationFreshness) Calculate(content string, queryDate time.Time) (*evaluation.MetricResult, error) {
	if queryDate.IsZero() {
		queryDate = time.Now()
	}

	dates := extractDates(content)
	if len(dates) == 0 {
		return &evaluation.MetricResult{
			Name:     MetricFreshness,
			Metadata: map[string]any{"reason": "no dates found in content"},
		}, nil
	}

	best := 0.0
	var bestAge float64
	for i, date := range dates {
		ageDays := queryDate.Sub(date).Hours() / 24
		var score float64
		switch {
		case ageDays < 0:
			score = 1.0
		case ageDays <= float64(m.MaxAgeDays):
			score = 1 - ageDays/float64(m.MaxAgeDays)
		}
		if i == 0 || score > best {
			best = score
			bestAge = ageDays
		}
	}

	return evaluation.NewMetricResult(MetricFreshness, best, map[string]any{
		"num_dates":         len(dates),
		"freshest_age_days": bestAge,
		"max_age_days":      m.MaxAgeDays,
	}), nil
}

func extractDates(content string) []time.Time {
	var dates []time.Time
	for i, pattern := range datePatterns {
		for _, match := range pattern.FindAllStringSubmatch(content, -1) {
			var year, month, day int
			switch i {
			case 0: // YYYY-MM-DD
				year, _ = strconv.Atoi(match[1])
				month, _ = strconv.Atoi(match[2])
				day, _ = strconv.Atoi(match[3])
			case 1, 2: // MM/DD/YYYY and MM-DD-YYYY
				month, _ = strconv.Atoi(match[1])
				day, _ = strconv.Atoi(match[2])
				year, _ = strconv.Atoi(match[3])
			case 3: // Month DD, YYYY
				named, ok := monthNames[strings.ToLower(match[1])]
				if !ok {
					continue
				}
				month = int(named)
				day, _ = strconv.Atoi(match[2])
				year, _ = strconv.Atoi(match[3])
			}
			if date, ok := validDate(year, month, day); ok {
				dates = append(dates, date)
			}
		}
	}
	return dates
}

func validDate(year, month, day int) (time.Time, bool) {
	if year < 1000 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

// QueryAnswerRelevance measures how well retrieved content addresses the
// query by embedding the query against paragraph chunks.
type QueryAnswerRelevance struct {
	embedder Embedder
}

// NewQueryAnswerRelevance builds the metric around an injected embedder.
func NewQueryAnswerRelevance(embedder Embedder) *QueryAnswerRelevance {
	return &QueryAnswerRelevance{embedder: embedder}
}

// Calculate returns the maximum query/chunk similarity across paragraph
// chunks of the content.
func (m *QueryAnswerRelevance) Calculate(ctx context.Context, query, content string) (*evaluation.MetricResult, error) {
	if strings.TrimSpace(query) == "" || strings.TrimSpace(content) == "" {
		return &evaluation.MetricResult{
			Name:     MetricRelevance,
			Metadata: map[string]any{"reason": "empty query or content"},
		}, nil
	}

	chunks := chunkByParagraphs(content, contextChunkSize)
	vectors, err := m.embedder.Embed(ctx, append([]string{query}, chunks...))
	if err != nil {
		return nil, err
	}

	queryVec := vectors[0]
	similarities := make([]float64, 0, len(chunks))
	maxSimilarity := 0.0
	for _, chunkVec := range vectors[1:] {
		similarity := math.Max(0, CosineSimilarity(queryVec, chunkVec))
		similarities = append(similarities, similarity)
		if similarity > maxSimilarity {
			maxSimilarity = similarity
		}
	}

	return evaluation.NewMetricResult(MetricRelevance, maxSimilarity, map[string]any{
		"max_similarity": maxSimilarity,
		"avg_similarity": evaluation.Mean(similarities),
		"num_chunks":     len(similarities),
	}), nil
}

// SearchSuiteConfig selects and parameterizes the search metrics.
type SearchSuiteConfig struct {
	EnableCredibility bool
	EnableFreshness   bool
	EnableRelevance   bool

	// MaxAgeDays is the freshness horizon.
	MaxAgeDays int
}

// DefaultSearchSuiteConfig enables every search metric with a one-year
// freshness horizon.
func DefaultSearchSuiteConfig() SearchSuiteConfig {
	return SearchSuiteConfig{
		EnableCredibility: true,
		EnableFreshness:   true,
		EnableRelevance:   true,
		MaxAgeDays:        365,
	}
}

// SearchSuite bundles credibility, freshness and relevance metrics for
// web-search agents.
type SearchSuite struct {
	credibility *SourceCredibility
	freshness   *InformationFreshness
	relevance   *QueryAnswerRelevance
}

// NewSearchSuite assembles the enabled search metrics. The embedder may
// be nil when relevance is disabled.
func NewSearchSuite(cfg SearchSuiteConfig, embedder Embedder) (*SearchSuite, error) {
	suite := &SearchSuite{}
	if cfg.EnableCredibility {
		suite.credibility = &SourceCredibility{}
	}
	if cfg.EnableFreshness {
		freshness := NewInformationFreshness()
		if cfg.MaxAgeDays > 0 {
			freshness.MaxAgeDays = cfg.MaxAgeDays
		}
		suite.freshness = freshness
	}
	if cfg.EnableRelevance {
		if embedder == nil {
			return nil, fmt.Errorf("metrics: relevance enabled without an embedder")
		}
		suite.relevance = NewQueryAnswerRelevance(embedder)
	}
	return suite, nil
}

// Evaluate scores a search interaction. Credibility runs over the result
// URLs, freshness over the concatenated result dates and content, and
// relevance over the answer when present, otherwise the raw content.
func (s *SearchSuite) Evaluate(ctx context.Context, query string, results []SearchResult, answer string) map[string]evaluation.MetricResult {
	out := make(map[string]evaluation.MetricResult)

	if s.credibility != nil {
		urls := make([]string, 0, len(results))
		for _, r := range results {
			if r.URL != "" {
				urls = append(urls, r.URL)
			}
		}
		record(out, MetricCredibility, func() (*evaluation.MetricResult, error) {
			return s.credibility.Calculate(urls)
		})
	}

	if s.freshness != nil {
		parts := make([]string, 0, 2*len(results))
		for _, r := range results {
			if r.Date != "" {
				parts = append(parts, r.Date)
			}
			parts = append(parts, r.Content)
		}
		record(out, MetricFreshness, func() (*evaluation.MetricResult, error) {
			return s.freshness.Calculate(strings.Join(parts, "\n"), time.Time{})
		})
	}

	if s.relevance != nil {
		content := answer
		if strings.TrimSpace(content) == "" {
			parts := make([]string, 0, len(results))
			for _, r := range results {
				parts = append(parts, r.Content)
			}
			content = strings.Join(parts, "\n\n")
		}
		record(out, MetricRelevance, func() (*evaluation.MetricResult, error) {
			return s.relevance.Calculate(ctx, query, content)
		})
	}

	return out
}
