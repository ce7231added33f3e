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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero default timeout", func(c *Config) { c.DefaultTimeoutSeconds = 0 }},
		{"oversized default timeout", func(c *Config) { c.DefaultTimeoutSeconds = 4000 }},
		{"max below default", func(c *Config) { c.DefaultTimeoutSeconds = 600; c.MaxTimeoutSeconds = 300 }},
		{"zero sampling interval", func(c *Config) { c.SamplingIntervalSeconds = 0 }},
		{"huge sampling interval", func(c *Config) { c.SamplingIntervalSeconds = 20 }},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }},
		{"bleu order out of range", func(c *Config) { c.BLEUMaxN = 11 }},
		{"empty rouge types", func(c *Config) { c.ROUGETypes = nil }},
		{"unknown rouge type", func(c *Config) { c.ROUGETypes = []string{"rouge3"} }},
		{"threshold above one", func(c *Config) { c.ContextRelevanceThreshold = 1.5 }},
		{"zero freshness horizon", func(c *Config) { c.FreshnessMaxAgeDays = 0 }},
		{"lowercase currency", func(c *Config) { c.Currency = "usd" }},
		{"long currency", func(c *Config) { c.Currency = "DOLLARS" }},
		{"numeric currency", func(c *Config) { c.Currency = "U5D" }},
		{"bad export format", func(c *Config) { c.ExportFormat = "xml" }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"tiny retry delay", func(c *Config) { c.RetryDelaySeconds = 0.01 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".json"} {
		t.Run(ext, func(t *testing.T) {
			cfg := Default()
			cfg.MaxRetries = 5
			cfg.FrameworkConfigs = map[string]map[string]any{
				"langchain": {"api_base": "http://localhost:8000", "temperature": 0.2},
			}

			path := filepath.Join(t.TempDir(), "config"+ext)
			if err := cfg.Save(path); err != nil {
				t.Fatalf("Save: %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if diff := cmp.Diff(cfg, loaded); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("export_format: xml\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for bad export format")
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("max_retries: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxRetries != 7 {
		t.Errorf("MaxRetries = %d, want 7", cfg.MaxRetries)
	}
	if cfg.EmbeddingModel != "gemini-embedding-001" {
		t.Errorf("EmbeddingModel = %q, want the default", cfg.EmbeddingModel)
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	if got := cfg.SamplingInterval(); got != 100*time.Millisecond {
		t.Errorf("SamplingInterval = %v, want 100ms", got)
	}
	if got := cfg.RetryDelay(); got != time.Second {
		t.Errorf("RetryDelay = %v, want 1s", got)
	}
	if got := cfg.DefaultTimeout(); got != 300*time.Second {
		t.Errorf("DefaultTimeout = %v, want 5m", got)
	}
}

func TestTaskTimeout(t *testing.T) {
	cfg := Default()
	tests := []struct {
		category string
		want     time.Duration
	}{
		{"qa", 60 * time.Second},
		{"rag", 120 * time.Second},
		{"search", 180 * time.Second},
		{"general", 300 * time.Second},
	}
	for _, tt := range tests {
		if got := cfg.TaskTimeout(tt.category); got != tt.want {
			t.Errorf("TaskTimeout(%q) = %v, want %v", tt.category, got, tt.want)
		}
	}

	cfg.MaxTimeoutSeconds = 90
	cfg.DefaultTimeoutSeconds = 90
	if got := cfg.TaskTimeout("search"); got != 90*time.Second {
		t.Errorf("TaskTimeout capped = %v, want 90s", got)
	}
}

func TestDecodeFramework(t *testing.T) {
	cfg := Default()
	cfg.FrameworkConfigs = map[string]map[string]any{
		"crewai": {"model": "gpt-4o", "verbose": true},
	}

	var settings struct {
		Model   string `mapstructure:"model"`
		Verbose bool   `mapstructure:"verbose"`
	}
	if err := cfg.DecodeFramework("crewai", &settings); err != nil {
		t.Fatalf("DecodeFramework: %v", err)
	}
	if settings.Model != "gpt-4o" || !settings.Verbose {
		t.Errorf("decoded settings = %+v", settings)
	}

	if err := cfg.DecodeFramework("missing", &settings); err == nil {
		t.Error("expected error for unknown framework")
	}
}
