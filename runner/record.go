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
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agentbench/agentbench/evaluation"
	"github.com/agentbench/agentbench/storage"
)

// SaveRun persists a completed benchmark run and returns the stored
// record. The run ID is generated.
func SaveRun(ctx context.Context, store storage.Storage, results []evaluation.TaskResult, summaries map[string]evaluation.FrameworkSummary) (storage.RunRecord, error) {
	record := storage.RunRecord{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Results:   results,
		Summaries: summaries,
	}
	if err := store.Save(ctx, record); err != nil {
		return storage.RunRecord{}, fmt.Errorf("runner: save run: %w", err)
	}
	return record, nil
}
