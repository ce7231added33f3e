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

// Package storage persists benchmark run records.
package storage

import (
	"context"
	"time"

	"github.com/agentbench/agentbench/evaluation"
)

// RunRecord is one completed benchmark run.
type RunRecord struct {
	ID        string                                 `json:"id"`
	CreatedAt time.Time                              `json:"created_at"`
	Results   []evaluation.TaskResult                `json:"results"`
	Summaries map[string]evaluation.FrameworkSummary `json:"summaries,omitempty"`
}

// Storage persists and retrieves run records.
type Storage interface {
	// Save stores a run record, replacing any record with the same ID.
	Save(ctx context.Context, record RunRecord) error
	// Get returns the record with the given ID, or
	// evaluation.ErrNotFound.
	Get(ctx context.Context, id string) (*RunRecord, error)
	// List returns all stored records, newest first.
	List(ctx context.Context) ([]RunRecord, error)
	// Delete removes the record with the given ID, or returns
	// evaluation.ErrNotFound.
	Delete(ctx context.Context, id string) error
}

func copyRecord(r RunRecord) RunRecord {
	out := r
	out.Results = make([]evaluation.TaskResult, len(r.Results))
	copy(out.Results, r.Results)
	if r.Summaries != nil {
		out.Summaries = make(map[string]evaluation.FrameworkSummary, len(r.Summaries))
		for k, v := range r.Summaries {
			out.Summaries[k] = v
		}
	}
	return out
}
