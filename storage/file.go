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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/agentbench/agentbench/evaluation"
)

// FileStorage persists run records as JSON files under a base directory,
// one file per run.
type FileStorage struct {
	mu       sync.Mutex
	basePath string
}

// NewFileStorage creates the base directory if needed.
func NewFileStorage(basePath string) (*FileStorage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("storage: base path is required: %w", evaluation.ErrInvalidInput)
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", basePath, err)
	}
	return &FileStorage{basePath: basePath}, nil
}

func (s *FileStorage) path(id string) string {
	return filepath.Join(s.basePath, id+".json")
}

// Save writes the record to <basePath>/<id>.json.
func (s *FileStorage) Save(_ context.Context, record RunRecord) error {
	if record.ID == "" {
		return fmt.Errorf("storage: record ID is required: %w", evaluation.ErrInvalidInput)
	}
	if strings.ContainsAny(record.ID, `/\`) {
		return fmt.Errorf("storage: record ID %q contains path separators: %w", record.ID, evaluation.ErrInvalidInput)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: marshal run %q: %w", record.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tmp := s.path(record.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("storage: write run %q: %w", record.ID, err)
	}
	if err := os.Rename(tmp, s.path(record.ID)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("storage: write run %q: %w", record.ID, err)
	}
	return nil
}

// Get reads the record with the given ID.
func (s *FileStorage) Get(_ context.Context, id string) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage: run %q: %w", id, evaluation.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read run %q: %w", id, err)
	}
	var record RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("storage: parse run %q: %w", id, err)
	}
	return &record, nil
}

// List reads every record in the base directory, newest first.
// Unparseable files are skipped.
func (s *FileStorage) List(ctx context.Context) ([]RunRecord, error) {
	s.mu.Lock()
	entries, err := os.ReadDir(s.basePath)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", s.basePath, err)
	}

	var out []RunRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		record, err := s.Get(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, *record)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes the record with the given ID.
func (s *FileStorage) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage: run %q: %w", id, evaluation.ErrNotFound)
		}
		return fmt.Errorf("storage: delete run %q: %w", id, err)
	}
	return nil
}
