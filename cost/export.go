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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

type exportRecord struct {
	Usage
	Cost Breakdown `json:"cost"`
}

// ExportJSON writes all records matching the filter, each priced, plus
// the aggregate summary and the pricing table in effect.
func (t *Tracker) ExportJSON(w io.Writer, filter Filter) error {
	records := t.Records(filter)
	priced := make([]exportRecord, 0, len(records))
	for _, u := range records {
		priced = append(priced, exportRecord{Usage: u, Cost: t.CalculateCost(u)})
	}

	t.mu.RLock()
	pricing := t.pricing.Clone()
	t.mu.RUnlock()

	payload := struct {
		Records []exportRecord `json:"records"`
		Summary Summary        `json:"summary"`
		Pricing PricingTable   `json:"pricing"`
	}{
		Records: priced,
		Summary: t.Summarize(filter),
		Pricing: pricing,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("cost: encode export: %w", err)
	}
	return nil
}

// ExportCSV writes one priced row per record matching the filter.
func (t *Tracker) ExportCSV(w io.Writer, filter Filter) error {
	cw := csv.NewWriter(w)
	header := []string{
		"timestamp", "provider", "model", "input_tokens", "output_tokens",
		"input_cost", "output_cost", "total_cost", "request_id",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("cost: write csv header: %w", err)
	}
	for _, u := range t.Records(filter) {
		b := t.CalculateCost(u)
		row := []string{
			u.Timestamp.Format(time.RFC3339),
			string(u.Provider),
			u.Model,
			strconv.Itoa(u.InputTokens),
			strconv.Itoa(u.OutputTokens),
			fmt.Sprintf("%.6f", b.InputCost),
			fmt.Sprintf("%.6f", b.OutputCost),
			fmt.Sprintf("%.6f", b.TotalCost),
			u.RequestID,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("cost: write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
