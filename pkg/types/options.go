// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Mode selects which upstream API a request uses.
type Mode string

const (
	// ModeAuto tries the Agentic Research API first and falls back to the
	// Chat Completions API on quota and rate-limit failures.
	ModeAuto Mode = "auto"

	// ModeResearch uses the Agentic Research API only, no fallback.
	ModeResearch Mode = "research"

	// ModeChat uses the Chat Completions API only.
	ModeChat Mode = "chat"
)

// ReasoningEfforts lists the accepted reasoning_effort values.
var ReasoningEfforts = []string{"low", "medium", "high"}

// ChatModels lists the accepted chat-mode model names.
var ChatModels = []string{"sonar-pro", "sonar", "sonar-reasoning"}

// MaxSteps bounds for the research loop.
const (
	MinResearchSteps = 1
	MaxResearchSteps = 10
)

// RequestOptions holds the parameters of one research request. Query is
// required; everything else defaults from the tool configuration.
type RequestOptions struct {
	Query           string `json:"query" mapstructure:"query"`
	Mode            Mode   `json:"mode,omitempty" mapstructure:"mode"`
	Model           string `json:"model,omitempty" mapstructure:"model"`
	Preset          string `json:"preset,omitempty" mapstructure:"preset"`
	ReasoningEffort string `json:"reasoning_effort,omitempty" mapstructure:"reasoning_effort"`
	MaxSteps        int    `json:"max_steps,omitempty" mapstructure:"max_steps"`
	Instructions    string `json:"instructions,omitempty" mapstructure:"instructions"`
}

// ToolError is the error half of a ToolResult.
type ToolError struct {
	Message string `json:"message"`
}

// ToolResult is the outcome record handed back to the host. The host never
// observes anything else: failures are folded into Success=false with a
// human-readable Error.Message.
type ToolResult struct {
	Success bool       `json:"success"`
	Output  string     `json:"output"`
	Error   *ToolError `json:"error,omitempty"`
}
