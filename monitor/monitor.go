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

// Package monitor samples CPU, memory and I/O usage of the current
// process while a task executes.
package monitor

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

const bytesPerMB = 1024 * 1024

// Snapshot is a single point-in-time resource sample.
type Snapshot struct {
	Timestamp     time.Time `json:"timestamp"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryMB      float64   `json:"memory_mb"`
	MemoryPercent float64   `json:"memory_percent"`
	DiskReadMB    float64   `json:"disk_read_mb,omitempty"`
	DiskWriteMB   float64   `json:"disk_write_mb,omitempty"`
	NetSentMB     float64   `json:"net_sent_mb,omitempty"`
	NetRecvMB     float64   `json:"net_recv_mb,omitempty"`
}

// Metrics summarizes a monitoring session.
type Metrics struct {
	ExecutionTime     time.Duration `json:"execution_time"`
	PeakMemoryMB      float64       `json:"peak_memory_mb"`
	AverageMemoryMB   float64       `json:"average_memory_mb"`
	PeakCPUPercent    float64       `json:"peak_cpu_percent"`
	AverageCPUPercent float64       `json:"average_cpu_percent"`
	TotalDiskReadMB   float64       `json:"total_disk_read_mb"`
	TotalDiskWriteMB  float64       `json:"total_disk_write_mb"`
	TotalNetSentMB    float64       `json:"total_net_sent_mb"`
	TotalNetRecvMB    float64       `json:"total_net_recv_mb"`
	SampleCount       int           `json:"sample_count"`
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval sets the sampling interval.
func WithInterval(interval time.Duration) Option {
	return func(m *Monitor) { m.interval = interval }
}

// WithDiskIO enables disk I/O sampling.
func WithDiskIO(enabled bool) Option {
	return func(m *Monitor) { m.includeDisk = enabled }
}

// WithNetworkIO enables network I/O sampling.
func WithNetworkIO(enabled bool) Option {
	return func(m *Monitor) { m.includeNet = enabled }
}

// Monitor samples resource usage of the current process in a background
// goroutine between Start and Stop.
type Monitor struct {
	interval    time.Duration
	includeDisk bool
	includeNet  bool
	proc        *process.Process

	mu        sync.Mutex
	running   bool
	start     time.Time
	elapsed   time.Duration
	snapshots []Snapshot

	stopCh chan struct{}
	done   chan struct{}

	baseDiskRead  uint64
	baseDiskWrite uint64
	baseNetSent   uint64
	baseNetRecv   uint64
}

// New builds a Monitor for the current process. The default sampling
// interval is 100ms with disk and network sampling enabled.
func New(opts ...Option) (*Monitor, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("monitor: attach to current process: %w", err)
	}
	m := &Monitor{
		interval:    100 * time.Millisecond,
		includeDisk: true,
		includeNet:  true,
		proc:        proc,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.interval <= 0 {
		m.interval = 100 * time.Millisecond
	}
	return m, nil
}

// Start begins sampling. Starting an already-running monitor is an error.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return fmt.Errorf("monitor: already running")
	}

	m.snapshots = nil
	m.start = time.Now()
	m.elapsed = 0
	m.captureBaselines()

	// Prime the CPU counter so the first sample has a delta to measure.
	m.proc.Percent(0)

	m.stopCh = make(chan struct{})
	m.done = make(chan struct{})
	m.running = true
	go m.sample(m.stopCh, m.done)
	return nil
}

// Stop ends sampling and records the elapsed time. It waits briefly for
// the sampler goroutine to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.elapsed = time.Since(m.start)
	close(m.stopCh)
	done := m.done
	m.mu.Unlock()

	select {
	case <-done:
	case <-time.After(time.Second):
	}
}

// Run executes fn while sampling, guaranteeing the monitor stops on every
// path including panics.
func (m *Monitor) Run(fn func() error) error {
	if err := m.Start(); err != nil {
		return err
	}
	defer m.Stop()
	return fn()
}

func (m *Monitor) captureBaselines() {
	if m.includeDisk {
		if io, err := m.proc.IOCounters(); err == nil {
			m.baseDiskRead = io.ReadBytes
			m.baseDiskWrite = io.WriteBytes
		}
	}
	if m.includeNet {
		if counters, err := net.IOCounters(false); err == nil && len(counters) > 0 {
			m.baseNetSent = counters[0].BytesSent
			m.baseNetRecv = counters[0].BytesRecv
		}
	}
}

func (m *Monitor) sample(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if snap, ok := m.takeSnapshot(); ok {
				m.mu.Lock()
				m.snapshots = append(m.snapshots, snap)
				m.mu.Unlock()
			}
		}
	}
}

func (m *Monitor) takeSnapshot() (Snapshot, bool) {
	snap := Snapshot{Timestamp: time.Now()}

	cpu, err := m.proc.Percent(0)
	if err != nil {
		return Snapshot{}, false
	}
	snap.CPUPercent = cpu

	mem, err := m.proc.MemoryInfo()
	if err != nil || mem == nil {
		return Snapshot{}, false
	}
	snap.MemoryMB = float64(mem.RSS) / bytesPerMB
	if pct, err := m.proc.MemoryPercent(); err == nil {
		snap.MemoryPercent = float64(pct)
	}

	if m.includeDisk {
		if io, err := m.proc.IOCounters(); err == nil {
			snap.DiskReadMB = deltaMB(io.ReadBytes, m.baseDiskRead)
			snap.DiskWriteMB = deltaMB(io.WriteBytes, m.baseDiskWrite)
		}
	}
	if m.includeNet {
		if counters, err := net.IOCounters(false); err == nil && len(counters) > 0 {
			snap.NetSentMB = deltaMB(counters[0].BytesSent, m.baseNetSent)
			snap.NetRecvMB = deltaMB(counters[0].BytesRecv, m.baseNetRecv)
		}
	}
	return snap, true
}

func deltaMB(current, baseline uint64) float64 {
	if current < baseline {
		return 0
	}
	return float64(current-baseline) / bytesPerMB
}

// Metrics summarizes the samples collected so far. With no samples the
// usage fields are zero but ExecutionTime is still reported.
func (m *Monitor) Metrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	elapsed := m.elapsed
	if m.running {
		elapsed = time.Since(m.start)
	}
	out := Metrics{
		ExecutionTime: elapsed,
		SampleCount:   len(m.snapshots),
	}
	if len(m.snapshots) == 0 {
		return out
	}

	var memSum, cpuSum float64
	for _, snap := range m.snapshots {
		memSum += snap.MemoryMB
		cpuSum += snap.CPUPercent
		if snap.MemoryMB > out.PeakMemoryMB {
			out.PeakMemoryMB = snap.MemoryMB
		}
		if snap.CPUPercent > out.PeakCPUPercent {
			out.PeakCPUPercent = snap.CPUPercent
		}
		if snap.DiskReadMB > out.TotalDiskReadMB {
			out.TotalDiskReadMB = snap.DiskReadMB
		}
		if snap.DiskWriteMB > out.TotalDiskWriteMB {
			out.TotalDiskWriteMB = snap.DiskWriteMB
		}
		if snap.NetSentMB > out.TotalNetSentMB {
			out.TotalNetSentMB = snap.NetSentMB
		}
		if snap.NetRecvMB > out.TotalNetRecvMB {
			out.TotalNetRecvMB = snap.NetRecvMB
		}
	}
	out.AverageMemoryMB = memSum / float64(len(m.snapshots))
	out.AverageCPUPercent = cpuSum / float64(len(m.snapshots))
	return out
}

// Snapshots returns a copy of the samples collected so far.
func (m *Monitor) Snapshots() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Snapshot, len(m.snapshots))
	copy(out, m.snapshots)
	return out
}
