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
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/agentbench/agentbench/cost"
)

func newCostsCmd() *cobra.Command {
	var inputTokens, outputTokens int
	var models []string

	cmd := &cobra.Command{
		Use:   "costs",
		Short: "Compare provider costs for a hypothetical workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputTokens < 0 || outputTokens < 0 {
				return fmt.Errorf("token counts must be non-negative")
			}
			tracker := cost.NewTracker()
			breakdowns := tracker.CompareProviders(inputTokens, outputTokens, models)
			sort.Slice(breakdowns, func(i, j int) bool {
				return breakdowns[i].TotalCost < breakdowns[j].TotalCost
			})

			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-24s %12s %12s %12s\n",
				"PROVIDER", "MODEL", "INPUT", "OUTPUT", "TOTAL")
			for _, b := range breakdowns {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-24s %12.6f %12.6f %12.6f\n",
					b.Provider, b.Model, b.InputCost, b.OutputCost, b.TotalCost)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&inputTokens, "input-tokens", 1000, "input tokens per request")
	cmd.Flags().IntVar(&outputTokens, "output-tokens", 1000, "output tokens per request")
	cmd.Flags().StringSliceVar(&models, "models", nil, "restrict comparison to these models")
	return cmd
}
