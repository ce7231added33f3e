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

package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/agentbench/agentbench/evaluation"
)

// MemoryStorage keeps run records in memory. It is safe for concurrent
// use and returns copies so callers cannot mutate stored state.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]RunRecord
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]RunRecord)}
}

// Save stores a record, replacing any record with the same ID.
func (s *MemoryStorage) Save(_ context.Context, record RunRecord) error {
	if record.ID == "" {
		return fmt.Errorf("storage: record ID is required: %w", evaluation.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = copyRecord(record)
	return nil
}

// Get returns a copy of the record with the given ID.
func (s *MemoryStorage) Get(_ context.Context, id string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("storage: run %q: %w", id, evaluation.ErrNotFound)
	}
	out := copyRecord(record)
	return &out, nil
}

// List returns all records, newest first.
func (s *MemoryStorage) List(_ context.Context) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RunRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, copyRecord(record))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes the record with the given ID.
func (s *MemoryStorage) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("storage: run %q: %w", id, evaluation.ErrNotFound)
	}
	delete(s.records, id)
	return nil
}
