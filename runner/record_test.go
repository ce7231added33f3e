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

package runner

import (
	"context"
	"testing"

	"github.com/agentbench/agentbench/evaluation"
	"github.com/agentbench/agentbench/storage"
)

func TestSaveRun(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()

	results := []evaluation.TaskResult{
		{FrameworkName: "langchain", TaskName: "qa-1", Success: true},
	}
	summaries := map[string]evaluation.FrameworkSummary{
		"langchain": evaluation.Summarize("langchain", results),
	}

	record, err := SaveRun(ctx, store, results, summaries)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if record.ID == "" || record.CreatedAt.IsZero() {
		t.Errorf("record not fully populated: %+v", record)
	}

	stored, err := store.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(stored.Results) != 1 || stored.Summaries["langchain"].TotalTasks != 1 {
		t.Errorf("stored record mismatch: %+v", stored)
	}
}
