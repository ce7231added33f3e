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

// Package config loads and validates benchmark configuration from YAML
// or JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Suite-level default timeouts, seconds.
const (
	DefaultQATimeout     = 60
	DefaultRAGTimeout    = 120
	DefaultSearchTimeout = 180
)

var validROUGETypes = map[string]bool{"rouge1": true, "rouge2": true, "rougeL": true}

var validExportFormats = map[string]bool{"json": true, "csv": true, "html": true}

// Config holds every tunable of a benchmark run.
type Config struct {
	// Timeouts, in seconds.
	DefaultTimeoutSeconds int `yaml:"default_timeout_seconds" json:"default_timeout_seconds"`
	MaxTimeoutSeconds     int `yaml:"max_timeout_seconds" json:"max_timeout_seconds"`
	RetryTimeoutSeconds   int `yaml:"retry_timeout_seconds" json:"retry_timeout_seconds"`

	// Resource monitoring.
	SamplingIntervalSeconds float64 `yaml:"sampling_interval_seconds" json:"sampling_interval_seconds"`
	EnableDiskIO            bool    `yaml:"enable_disk_io" json:"enable_disk_io"`
	EnableNetworkIO         bool    `yaml:"enable_network_io" json:"enable_network_io"`

	// Quality metrics.
	EmbeddingModel            string   `yaml:"embedding_model" json:"embedding_model"`
	BLEUMaxN                  int      `yaml:"bleu_max_n" json:"bleu_max_n"`
	ROUGETypes                []string `yaml:"rouge_types" json:"rouge_types"`
	UseStemming               bool     `yaml:"use_stemming" json:"use_stemming"`
	ContextRelevanceThreshold float64  `yaml:"context_relevance_threshold" json:"context_relevance_threshold"`
	FreshnessMaxAgeDays       int      `yaml:"freshness_max_age_days" json:"freshness_max_age_days"`

	// Cost tracking.
	EnableCostTracking bool   `yaml:"enable_cost_tracking" json:"enable_cost_tracking"`
	Currency           string `yaml:"currency" json:"currency"`

	// Output.
	ExportFormat string `yaml:"export_format" json:"export_format"`

	// Retries.
	MaxRetries         int     `yaml:"max_retries" json:"max_retries"`
	RetryDelaySeconds  float64 `yaml:"retry_delay_seconds" json:"retry_delay_seconds"`
	ExponentialBackoff bool    `yaml:"exponential_backoff" json:"exponential_backoff"`

	// FrameworkConfigs carries framework-specific settings keyed by
	// framework name, decoded on demand with DecodeFramework.
	FrameworkConfigs map[string]map[string]any `yaml:"framework_configs" json:"framework_configs"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		DefaultTimeoutSeconds:     300,
		MaxTimeoutSeconds:         1800,
		RetryTimeoutSeconds:       60,
		SamplingIntervalSeconds:   0.1,
		EnableDiskIO:              true,
		EnableNetworkIO:           true,
		EmbeddingModel:            "gemini-embedding-001",
		BLEUMaxN:                  4,
		ROUGETypes:                []string{"rouge1", "rouge2", "rougeL"},
		UseStemming:               true,
		ContextRelevanceThreshold: 0.5,
		FreshnessMaxAgeDays:       365,
		EnableCostTracking:        true,
		Currency:                  "USD",
		ExportFormat:              "json",
		MaxRetries:                3,
		RetryDelaySeconds:         1,
		ExponentialBackoff:        true,
	}
}

// Load reads a config file, fills unset fields with defaults, and
// validates the result. The format is chosen by file extension.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("config: unsupported extension %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the config to path in a format chosen by extension.
func (c Config) Save(path string) error {
	var data []byte
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	default:
		return fmt.Errorf("config: unsupported extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Validate checks every field range, failing on the first violation.
func (c Config) Validate() error {
	if c.DefaultTimeoutSeconds < 1 || c.DefaultTimeoutSeconds > 3600 {
		return fmt.Errorf("config: default_timeout_seconds must be in [1, 3600], got %d", c.DefaultTimeoutSeconds)
	}
	if c.MaxTimeoutSeconds < 60 || c.MaxTimeoutSeconds > 7200 {
		return fmt.Errorf("config: max_timeout_seconds must be in [60, 7200], got %d", c.MaxTimeoutSeconds)
	}
	if c.MaxTimeoutSeconds < c.DefaultTimeoutSeconds {
		return fmt.Errorf("config: max_timeout_seconds (%d) must be >= default_timeout_seconds (%d)",
			c.MaxTimeoutSeconds, c.DefaultTimeoutSeconds)
	}
	if c.RetryTimeoutSeconds < 1 {
		return fmt.Errorf("config: retry_timeout_seconds must be positive, got %d", c.RetryTimeoutSeconds)
	}
	if c.SamplingIntervalSeconds <= 0 || c.SamplingIntervalSeconds > 10 {
		return fmt.Errorf("config: sampling_interval_seconds must be in (0, 10], got %g", c.SamplingIntervalSeconds)
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("config: embedding_model is required")
	}
	if c.BLEUMaxN < 1 || c.BLEUMaxN > 10 {
		return fmt.Errorf("config: bleu_max_n must be in [1, 10], got %d", c.BLEUMaxN)
	}
	if len(c.ROUGETypes) == 0 {
		return fmt.Errorf("config: rouge_types must not be empty")
	}
	for _, rt := range c.ROUGETypes {
		if !validROUGETypes[rt] {
			return fmt.Errorf("config: unknown rouge type %q", rt)
		}
	}
	if c.ContextRelevanceThreshold < 0 || c.ContextRelevanceThreshold > 1 {
		return fmt.Errorf("config: context_relevance_threshold must be in [0, 1], got %g", c.ContextRelevanceThreshold)
	}
	if c.FreshnessMaxAgeDays < 1 {
		return fmt.Errorf("config: freshness_max_age_days must be positive, got %d", c.FreshnessMaxAgeDays)
	}
	if len(c.Currency) != 3 || strings.ToUpper(c.Currency) != c.Currency {
		return fmt.Errorf("config: currency must be a 3-letter uppercase code, got %q", c.Currency)
	}
	for _, r := range c.Currency {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("config: currency must be alphabetic, got %q", c.Currency)
		}
	}
	if !validExportFormats[c.ExportFormat] {
		return fmt.Errorf("config: export_format must be one of json, csv, html, got %q", c.ExportFormat)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("config: max_retries must be in [0, 10], got %d", c.MaxRetries)
	}
	if c.RetryDelaySeconds < 0.1 || c.RetryDelaySeconds > 60 {
		return fmt.Errorf("config: retry_delay_seconds must be in [0.1, 60], got %g", c.RetryDelaySeconds)
	}
	return nil
}

// SamplingInterval returns the monitoring interval as a duration.
func (c Config) SamplingInterval() time.Duration {
	return time.Duration(c.SamplingIntervalSeconds * float64(time.Second))
}

// RetryDelay returns the base retry delay as a duration.
func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds * float64(time.Second))
}

// DefaultTimeout returns the per-task timeout as a duration.
func (c Config) DefaultTimeout() time.Duration {
	return time.Duration(c.DefaultTimeoutSeconds) * time.Second
}

// TaskTimeout returns the timeout for a task category. The qa, rag and
// search categories carry their own defaults; anything else falls back
// to DefaultTimeout. The result never exceeds MaxTimeoutSeconds.
func (c Config) TaskTimeout(category string) time.Duration {
	var seconds int
	switch category {
	case "qa":
		seconds = DefaultQATimeout
	case "rag":
		seconds = DefaultRAGTimeout
	case "search":
		seconds = DefaultSearchTimeout
	default:
		seconds = c.DefaultTimeoutSeconds
	}
	if seconds > c.MaxTimeoutSeconds {
		seconds = c.MaxTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}

// DecodeFramework decodes the named framework's settings into out.
func (c Config) DecodeFramework(name string, out any) error {
	raw, ok := c.FrameworkConfigs[name]
	if !ok {
		return fmt.Errorf("config: no settings for framework %q", name)
	}
	if err := mapstructure.Decode(raw, out); err != nil {
		return fmt.Errorf("config: decode framework %q: %w", name, err)
	}
	return nil
}
