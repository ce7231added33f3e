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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

// ExportJSON writes the session summary and raw snapshots as JSON.
func (m *Monitor) ExportJSON(w io.Writer) error {
	payload := struct {
		Metrics   Metrics    `json:"metrics"`
		Snapshots []Snapshot `json:"snapshots"`
	}{
		Metrics:   m.Metrics(),
		Snapshots: m.Snapshots(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("monitor: encode snapshots: %w", err)
	}
	return nil
}

// ExportCSV writes the raw snapshots as CSV, one row per sample.
func (m *Monitor) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{
		"timestamp", "cpu_percent", "memory_mb", "memory_percent",
		"disk_read_mb", "disk_write_mb", "net_sent_mb", "net_recv_mb",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("monitor: write csv header: %w", err)
	}
	for _, snap := range m.Snapshots() {
		row := []string{
			snap.Timestamp.Format(time.RFC3339Nano),
			formatFloat(snap.CPUPercent),
			formatFloat(snap.MemoryMB),
			formatFloat(snap.MemoryPercent),
			formatFloat(snap.DiskReadMB),
			formatFloat(snap.DiskWriteMB),
			formatFloat(snap.NetSentMB),
			formatFloat(snap.NetRecvMB),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("monitor: write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
