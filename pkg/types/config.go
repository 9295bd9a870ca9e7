// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ToolConfig holds the per-instance settings of the research tool. All
// fields are read-only once the tool is constructed; concurrent requests
// share the same value.
type ToolConfig struct {
	// APIKey authenticates against the Perplexity API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Preset is the default research preset (default "pro-search").
	Preset string `json:"preset" yaml:"preset" mapstructure:"preset"`

	// ReasoningEffort is the default reasoning depth: low, medium, or high.
	ReasoningEffort string `json:"reasoning_effort" yaml:"reasoning_effort" mapstructure:"reasoning_effort"`

	// MaxSteps is the default research loop bound (default 5).
	MaxSteps int `json:"max_steps" yaml:"max_steps" mapstructure:"max_steps"`

	// Timeout is the HTTP request timeout (default 2m).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries is the number of transport-level retries on HTTP 429
	// (default 2). Mode fallback is separate and not affected.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// HistoryPath is the SQLite request-history database path. Empty
	// disables history recording.
	HistoryPath string `json:"history_path,omitempty" yaml:"history_path,omitempty" mapstructure:"history_path"`
}

// WithDefaults returns a copy of c with zero-valued fields replaced by the
// tool defaults.
func (c ToolConfig) WithDefaults() ToolConfig {
	if c.Preset == "" {
		c.Preset = "pro-search"
	}
	if c.ReasoningEffort == "" {
		c.ReasoningEffort = "medium"
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = 5
	}
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Minute
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 2
	}
	return c
}
