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
	"errors"
	"testing"
	"time"

	"github.com/agentbench/agentbench/evaluation"
)

func sampleRecord(id string, created time.Time) RunRecord {
	return RunRecord{
		ID:        id,
		CreatedAt: created,
		Results: []evaluation.TaskResult{
			{
				FrameworkName:  "langchain",
				TaskName:       "qa-1",
				ExecutionTime:  2 * time.Second,
				QualityMetrics: map[string]float64{"bleu": 0.8},
				Success:        true,
				Timestamp:      created,
			},
		},
		Summaries: map[string]evaluation.FrameworkSummary{
			"langchain": {FrameworkName: "langchain", TotalTasks: 1, SuccessfulTasks: 1, SuccessRate: 1},
		},
	}
}

func testStorage(t *testing.T, store Storage) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	if err := store.Save(ctx, sampleRecord("run-1", now.Add(-time.Hour))); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, sampleRecord("run-2", now)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != "run-1" || len(got.Results) != 1 {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.Results[0].QualityMetrics["bleu"] != 0.8 {
		t.Errorf("bleu = %v, want 0.8", got.Results[0].QualityMetrics["bleu"])
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("List returned %d records, want 2", len(records))
	}
	if records[0].ID != "run-2" {
		t.Errorf("List order = [%s, %s], want newest first", records[0].ID, records[1].ID)
	}

	if err := store.Delete(ctx, "run-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "run-1"); !errors.Is(err, evaluation.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "run-1"); !errors.Is(err, evaluation.ErrNotFound) {
		t.Errorf("double Delete = %v, want ErrNotFound", err)
	}

	if err := store.Save(ctx, RunRecord{}); !errors.Is(err, evaluation.ErrInvalidInput) {
		t.Errorf("Save without ID = %v, want ErrInvalidInput", err)
	}
}

func TestMemoryStorage(t *testing.T) {
	testStorage(t, NewMemoryStorage())
}

func TestFileStorage(t *testing.T) {
	store, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}
	testStorage(t, store)
}

func TestMemoryStorageCopiesRecords(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	record := sampleRecord("run-1", time.Now())
	if err := store.Save(ctx, record); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Mutating what Get returned must not affect the stored record.
	got, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got.Results[0].TaskName = "mutated"

	again, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again.Results[0].TaskName != "qa-1" {
		t.Error("stored record was mutated through a returned copy")
	}
}

func TestFileStorageRejectsPathSeparators(t *testing.T) {
	store, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}
	record := sampleRecord("../escape", time.Now())
	if err := store.Save(context.Background(), record); !errors.Is(err, evaluation.ErrInvalidInput) {
		t.Errorf("Save with path separator = %v, want ErrInvalidInput", err)
	}
}
