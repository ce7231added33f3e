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

// Package cost tracks API token usage and calculates provider costs.
package cost

// Provider identifies an API provider in the pricing table.
type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderCustom     Provider = "custom"
)

// Rate holds per-1K-token prices in USD.
type Rate struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
}

// PricingTable maps providers to per-model rates.
type PricingTable map[Provider]map[string]Rate

// DefaultPricing returns the built-in rate card. Prices are USD per 1K
// tokens and reflect published OpenRouter list prices.
func DefaultPricing() PricingTable {
	return PricingTable{
		ProviderOpenRouter: {
			"claude-3.5-sonnet":      {Input: 0.003, Output: 0.015},
			"claude-3-sonnet":        {Input: 0.003, Output: 0.015},
			"claude-3-haiku":         {Input: 0.00025, Output: 0.00125},
			"gpt-4":                  {Input: 0.03, Output: 0.06},
			"gpt-4-turbo":            {Input: 0.01, Output: 0.03},
			"gpt-4o":                 {Input: 0.005, Output: 0.015},
			"gpt-4o-mini":            {Input: 0.00015, Output: 0.0006},
			"gpt-3.5-turbo":          {Input: 0.0015, Output: 0.002},
			"gemini-pro":             {Input: 0.0005, Output: 0.0015},
			"gemini-1.5-pro":         {Input: 0.0035, Output: 0.0105},
			"gemini-1.5-flash":       {Input: 0.00035, Output: 0.00105},
			"llama-3.1-70b-instruct": {Input: 0.0009, Output: 0.0009},
			"llama-3.1-8b-instruct":  {Input: 0.00018, Output: 0.00018},
			"deepseek-r1":            {Input: 0.0014, Output: 0.0028},
			"deepseek-chat":          {Input: 0.00014, Output: 0.00028},
			"mistral-large":          {Input: 0.003, Output: 0.009},
			"mistral-medium":         {Input: 0.0027, Output: 0.0081},
			"command-r-plus":         {Input: 0.003, Output: 0.015},
			"command-r":              {Input: 0.0005, Output: 0.0015},
		},
		ProviderCustom: {
			"custom-model": {Input: 0.001, Output: 0.002},
		},
	}
}

// Clone deep-copies the table so callers can mutate their copy freely.
func (t PricingTable) Clone() PricingTable {
	out := make(PricingTable, len(t))
	for provider, models := range t {
		rates := make(map[string]Rate, len(models))
		for model, rate := range models {
			rates[model] = rate
		}
		out[provider] = rates
	}
	return out
}
