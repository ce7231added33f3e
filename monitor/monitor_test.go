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

package monitor

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestMonitorRun(t *testing.T) {
	m, err := New(WithInterval(10 * time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = m.Run(func() error {
		time.Sleep(150 * time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := m.Metrics()
	if got.ExecutionTime < 150*time.Millisecond {
		t.Errorf("ExecutionTime = %v, want >= 150ms", got.ExecutionTime)
	}
	if got.SampleCount == 0 {
		t.Fatal("expected at least one sample")
	}
	if got.AverageMemoryMB > got.PeakMemoryMB {
		t.Errorf("average memory %v exceeds peak %v", got.AverageMemoryMB, got.PeakMemoryMB)
	}
	if got.AverageCPUPercent > got.PeakCPUPercent {
		t.Errorf("average cpu %v exceeds peak %v", got.AverageCPUPercent, got.PeakCPUPercent)
	}
	if got.PeakMemoryMB <= 0 {
		t.Errorf("PeakMemoryMB = %v, want positive", got.PeakMemoryMB)
	}
}

func TestMonitorRunPropagatesError(t *testing.T) {
	m, err := New(WithInterval(10 * time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := errors.New("task failed")
	if got := m.Run(func() error { return want }); !errors.Is(got, want) {
		t.Errorf("Run returned %v, want %v", got, want)
	}
}

func TestMonitorMetricsWithoutSamples(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := m.Metrics()
	if got.SampleCount != 0 || got.PeakMemoryMB != 0 || got.PeakCPUPercent != 0 {
		t.Errorf("expected zero metrics before any run, got %+v", got)
	}
}

func TestMonitorDoubleStart(t *testing.T) {
	m, err := New(WithInterval(10 * time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer m.Stop()
	if err := m.Start(); err == nil {
		t.Error("expected error starting a running monitor")
	}
}

func TestMonitorStopIdempotent(t *testing.T) {
	m, err := New(WithInterval(10 * time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	m.Stop()
	m.Stop()
}

func TestMonitorRestartClearsSamples(t *testing.T) {
	m, err := New(WithInterval(5 * time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Run(func() error { time.Sleep(50 * time.Millisecond); return nil }); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	m.Stop()
	if got := m.Metrics().ExecutionTime; got > 40*time.Millisecond {
		t.Errorf("ExecutionTime = %v after restart, want the new session's elapsed time", got)
	}
}

func TestMonitorExport(t *testing.T) {
	m, err := New(WithInterval(10 * time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Run(func() error { time.Sleep(100 * time.Millisecond); return nil }); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var jsonBuf bytes.Buffer
	if err := m.ExportJSON(&jsonBuf); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	var payload struct {
		Metrics   Metrics    `json:"metrics"`
		Snapshots []Snapshot `json:"snapshots"`
	}
	if err := json.Unmarshal(jsonBuf.Bytes(), &payload); err != nil {
		t.Fatalf("parse exported JSON: %v", err)
	}
	if payload.Metrics.SampleCount != len(payload.Snapshots) {
		t.Errorf("sample count %d does not match %d snapshots",
			payload.Metrics.SampleCount, len(payload.Snapshots))
	}

	var csvBuf bytes.Buffer
	if err := m.ExportCSV(&csvBuf); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	rows, err := csv.NewReader(&csvBuf).ReadAll()
	if err != nil {
		t.Fatalf("parse exported CSV: %v", err)
	}
	if len(rows) != len(payload.Snapshots)+1 {
		t.Errorf("got %d CSV rows, want %d", len(rows), len(payload.Snapshots)+1)
	}
	if rows[0][0] != "timestamp" || rows[0][1] != "cpu_percent" {
		t.Errorf("unexpected CSV header: %v", rows[0])
	}
}
