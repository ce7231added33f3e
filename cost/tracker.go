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

package cost

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type taskIDKey struct{}

// ContextWithTaskID tags a context with the evaluation task that owns
// subsequent usage records.
func ContextWithTaskID(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, taskIDKey{}, taskID)
}

// TaskIDFromContext returns the task ID set by ContextWithTaskID, if any.
func TaskIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(taskIDKey{}).(string)
	return id
}

// Usage is a single recorded API call.
type Usage struct {
	Provider     Provider       `json:"provider"`
	Model        string         `json:"model"`
	InputTokens  int            `json:"input_tokens"`
	OutputTokens int            `json:"output_tokens"`
	Timestamp    time.Time      `json:"timestamp"`
	TaskID       string         `json:"task_id,omitempty"`
	RequestID    string         `json:"request_id"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Breakdown is the detailed cost of a single usage record.
type Breakdown struct {
	Provider        Provider `json:"provider"`
	Model           string   `json:"model"`
	InputCost       float64  `json:"input_cost"`
	OutputCost      float64  `json:"output_cost"`
	TotalCost       float64  `json:"total_cost"`
	InputTokens     int      `json:"input_tokens"`
	OutputTokens    int      `json:"output_tokens"`
	InputRatePer1K  float64  `json:"input_rate_per_1k"`
	OutputRatePer1K float64  `json:"output_rate_per_1k"`
	Currency        string   `json:"currency"`
}

// RecordOption adds optional fields to a usage record.
type RecordOption func(*Usage)

// WithRequestID overrides the generated request ID.
func WithRequestID(id string) RecordOption {
	return func(u *Usage) { u.RequestID = id }
}

// WithMetadata attaches arbitrary metadata to the record.
func WithMetadata(md map[string]any) RecordOption {
	return func(u *Usage) { u.Metadata = md }
}

// Tracker accumulates usage records and prices them against a pricing
// table. It is safe for concurrent use.
type Tracker struct {
	mu       sync.RWMutex
	pricing  PricingTable
	records  []Usage
	currency string
}

// NewTracker builds a tracker with the default pricing table and USD.
func NewTracker() *Tracker {
	return &Tracker{pricing: DefaultPricing(), currency: "USD"}
}

// NewTrackerWithPricing builds a tracker with a caller-supplied table.
func NewTrackerWithPricing(pricing PricingTable, currency string) *Tracker {
	if currency == "" {
		currency = "USD"
	}
	return &Tracker{pricing: pricing.Clone(), currency: currency}
}

// Record stores a usage entry, tagging it with the task ID from ctx.
func (t *Tracker) Record(ctx context.Context, provider Provider, model string, inputTokens, outputTokens int, opts ...RecordOption) (Usage, error) {
	if model == "" {
		return Usage{}, fmt.Errorf("cost: model is required")
	}
	if inputTokens < 0 || outputTokens < 0 {
		return Usage{}, fmt.Errorf("cost: token counts must be non-negative")
	}

	usage := Usage{
		Provider:     provider,
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Timestamp:    time.Now(),
		TaskID:       TaskIDFromContext(ctx),
		RequestID:    uuid.NewString(),
	}
	for _, opt := range opts {
		opt(&usage)
	}

	t.mu.Lock()
	t.records = append(t.records, usage)
	t.mu.Unlock()
	return usage, nil
}

// CalculateCost prices a usage record. Unknown provider/model pairs price
// at zero rather than failing, so tracking keeps working for models the
// table does not know about.
func (t *Tracker) CalculateCost(usage Usage) Breakdown {
	t.mu.RLock()
	rate := t.pricing[usage.Provider][usage.Model]
	currency := t.currency
	t.mu.RUnlock()

	inputCost := float64(usage.InputTokens) / 1000 * rate.Input
	outputCost := float64(usage.OutputTokens) / 1000 * rate.Output
	return Breakdown{
		Provider:        usage.Provider,
		Model:           usage.Model,
		InputCost:       inputCost,
		OutputCost:      outputCost,
		TotalCost:       inputCost + outputCost,
		InputTokens:     usage.InputTokens,
		OutputTokens:    usage.OutputTokens,
		InputRatePer1K:  rate.Input,
		OutputRatePer1K: rate.Output,
		Currency:        currency,
	}
}

// UpdatePricing overrides the rate for a provider/model pair.
func (t *Tracker) UpdatePricing(provider Provider, model string, rate Rate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pricing[provider] == nil {
		t.pricing[provider] = make(map[string]Rate)
	}
	t.pricing[provider][model] = rate
}

// Filter selects a subset of usage records. Zero values match everything.
type Filter struct {
	Provider Provider
	Model    string
	TaskID   string
	Start    time.Time
	End      time.Time
}

func (f Filter) matches(u Usage) bool {
	if f.Provider != "" && u.Provider != f.Provider {
		return false
	}
	if f.Model != "" && u.Model != f.Model {
		return false
	}
	if f.TaskID != "" && u.TaskID != f.TaskID {
		return false
	}
	if !f.Start.IsZero() && u.Timestamp.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && u.Timestamp.After(f.End) {
		return false
	}
	return true
}

// Records returns a copy of the usage records matching the filter.
func (t *Tracker) Records(filter Filter) []Usage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Usage
	for _, u := range t.records {
		if filter.matches(u) {
			out = append(out, u)
		}
	}
	return out
}

// TotalCost sums the priced cost of all records matching the filter.
func (t *Tracker) TotalCost(filter Filter) float64 {
	var total float64
	for _, u := range t.Records(filter) {
		total += t.CalculateCost(u).TotalCost
	}
	return total
}

// GroupSummary aggregates usage for one provider or model group.
type GroupSummary struct {
	Requests     int     `json:"requests"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalCost    float64 `json:"total_cost"`
}

// TimeRange bounds the records included in a summary.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Summary aggregates all records matching a filter.
type Summary struct {
	TotalRequests     int                       `json:"total_requests"`
	TotalInputTokens  int                       `json:"total_input_tokens"`
	TotalOutputTokens int                       `json:"total_output_tokens"`
	TotalCost         float64                   `json:"total_cost"`
	Currency          string                    `json:"currency"`
	Providers         map[Provider]GroupSummary `json:"providers"`
	Models            map[string]GroupSummary   `json:"models"`
	TimeRange         *TimeRange                `json:"time_range,omitempty"`
}

// Summarize aggregates the records matching the filter into per-provider
// and per-model groups.
func (t *Tracker) Summarize(filter Filter) Summary {
	records := t.Records(filter)
	summary := Summary{
		Currency:  t.currency,
		Providers: make(map[Provider]GroupSummary),
		Models:    make(map[string]GroupSummary),
	}
	for _, u := range records {
		cost := t.CalculateCost(u).TotalCost
		summary.TotalRequests++
		summary.TotalInputTokens += u.InputTokens
		summary.TotalOutputTokens += u.OutputTokens
		summary.TotalCost += cost

		p := summary.Providers[u.Provider]
		p.Requests++
		p.InputTokens += u.InputTokens
		p.OutputTokens += u.OutputTokens
		p.TotalCost += cost
		summary.Providers[u.Provider] = p

		m := summary.Models[u.Model]
		m.Requests++
		m.InputTokens += u.InputTokens
		m.OutputTokens += u.OutputTokens
		m.TotalCost += cost
		summary.Models[u.Model] = m

		if summary.TimeRange == nil {
			summary.TimeRange = &TimeRange{Start: u.Timestamp, End: u.Timestamp}
		} else {
			if u.Timestamp.Before(summary.TimeRange.Start) {
				summary.TimeRange.Start = u.Timestamp
			}
			if u.Timestamp.After(summary.TimeRange.End) {
				summary.TimeRange.End = u.Timestamp
			}
		}
	}
	return summary
}

// CompareProviders prices a hypothetical workload across models without
// recording anything. With no models given, every known model is priced.
func (t *Tracker) CompareProviders(inputTokens, outputTokens int, models []string) []Breakdown {
	t.mu.RLock()
	pricing := t.pricing.Clone()
	t.mu.RUnlock()

	wanted := make(map[string]bool, len(models))
	for _, m := range models {
		wanted[m] = true
	}

	var out []Breakdown
	for provider, rates := range pricing {
		for model := range rates {
			if len(wanted) > 0 && !wanted[model] {
				continue
			}
			out = append(out, t.CalculateCost(Usage{
				Provider:     provider,
				Model:        model,
				InputTokens:  inputTokens,
				OutputTokens: outputTokens,
			}))
		}
	}
	return out
}

// Reset discards all recorded usage.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.records = nil
	t.mu.Unlock()
}
