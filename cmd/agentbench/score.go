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

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/agentbench/agentbench/config"
	"github.com/agentbench/agentbench/evaluation"
	"github.com/agentbench/agentbench/evaluation/metrics"
)

// scoredCase is one recorded agent interaction to replay through the
// quality metrics.
type scoredCase struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`

	Query         string                 `json:"query,omitempty"`
	Context       string                 `json:"context,omitempty"`
	RelevantDocs  []string               `json:"relevant_docs,omitempty"`
	RetrievedDocs []string               `json:"retrieved_docs,omitempty"`
	Results       []metrics.SearchResult `json:"results,omitempty"`
}

func newScoreCmd() *cobra.Command {
	var configPath string
	var useEmbeddings bool

	cmd := &cobra.Command{
		Use:   "score <cases.json>",
		Short: "Score recorded agent outputs with the quality metrics",
		Long: `Score reads a JSON array of recorded cases (expected and actual
outputs, plus retrieval or search inputs for rag and search cases) and
prints per-metric scores. Embedding-based metrics require the
--embeddings flag and Gemini API credentials in the environment.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read cases: %w", err)
			}
			var cases []scoredCase
			if err := json.Unmarshal(data, &cases); err != nil {
				return fmt.Errorf("parse cases: %w", err)
			}

			var embedder metrics.Embedder
			if useEmbeddings {
				embedder = metrics.NewGeminiEmbedder(cfg.EmbeddingModel)
			}
			return scoreCases(cmd, cfg, embedder, cases)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a config file")
	cmd.Flags().BoolVar(&useEmbeddings, "embeddings", false, "enable embedding-based metrics")
	return cmd
}

func scoreCases(cmd *cobra.Command, cfg config.Config, embedder metrics.Embedder, cases []scoredCase) error {
	qaCfg := metrics.DefaultQASuiteConfig()
	qaCfg.BLEUMaxN = cfg.BLEUMaxN
	qaCfg.ROUGETypes = cfg.ROUGETypes
	qaCfg.UseStemming = cfg.UseStemming
	qaCfg.EnableSemantic = embedder != nil
	qa, err := metrics.NewQASuite(qaCfg, embedder)
	if err != nil {
		return err
	}

	ragCfg := metrics.DefaultRAGSuiteConfig()
	ragCfg.RelevanceThreshold = cfg.ContextRelevanceThreshold
	ragCfg.EnableContextRelevance = embedder != nil
	ragCfg.EnableGroundedness = embedder != nil
	rag, err := metrics.NewRAGSuite(ragCfg, embedder)
	if err != nil {
		return err
	}

	searchCfg := metrics.DefaultSearchSuiteConfig()
	searchCfg.MaxAgeDays = cfg.FreshnessMaxAgeDays
	searchCfg.EnableRelevance = embedder != nil
	search, err := metrics.NewSearchSuite(searchCfg, embedder)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	for _, c := range cases {
		var results map[string]evaluation.MetricResult
		switch c.Type {
		case "rag":
			results = rag.EvaluateFullPipeline(ctx, metrics.PipelineInputs{
				Query:         c.Query,
				RelevantDocs:  c.RelevantDocs,
				RetrievedDocs: c.RetrievedDocs,
				Context:       c.Context,
				Answer:        c.Actual,
			})
		case "search":
			results = search.Evaluate(ctx, c.Query, c.Results, c.Actual)
		default:
			results = qa.Evaluate(ctx, c.Expected, c.Actual)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", c.Name)
		names := make([]string, 0, len(results))
		for name := range results {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %.4f\n", name, results[name].Score)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %.4f\n", "overall", metrics.OverallScore(results, nil))
	}
	return nil
}
