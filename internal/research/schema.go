// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import "github.com/pdiddy/research-tool/pkg/types"

// ToolName identifies the tool to the host.
const ToolName = "perplexity_research"

// Name returns the tool identifier used at registration.
func (t *Tool) Name() string { return ToolName }

// Description returns the human-readable tool description for the host.
func (t *Tool) Description() string {
	return `Deep research using Perplexity's Agentic Research API.

Use for:
- Complex multi-step research questions requiring synthesis
- Fact-checking with verified citations
- Current events and news analysis
- Technical research requiring multiple sources

NOT for:
- Simple factual lookups (use web_search instead - it's free)
- Questions about static/historical facts

Cost: Token-based (~10-15k tokens typical). Returns structured output with citations.`
}

// InputSchema returns the JSON Schema for the tool's input parameters.
// Validation against it is the host's job.
func (t *Tool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Research question or topic to investigate",
			},
			"mode": map[string]any{
				"type":        "string",
				"enum":        []string{string(types.ModeAuto), string(types.ModeResearch), string(types.ModeChat)},
				"description": "API mode: 'research' for Agentic Research API (deep, multi-step), 'chat' for Chat Completions (faster, cheaper), 'auto' tries research first then falls back to chat on quota/rate limits",
			},
			"model": map[string]any{
				"type":        "string",
				"enum":        types.ChatModels,
				"description": "Model for chat mode. sonar-pro=comprehensive, sonar=fast, sonar-reasoning=with reasoning",
			},
			"preset": map[string]any{
				"type":        "string",
				"enum":        []string{"pro-search", "sonar-pro", "sonar-reasoning"},
				"description": "Research preset. pro-search=balanced, sonar-pro=deeper, sonar-reasoning=with reasoning steps",
			},
			"reasoning_effort": map[string]any{
				"type":        "string",
				"enum":        types.ReasoningEfforts,
				"description": "Depth of reasoning (research mode only). Higher = more thorough but slower",
			},
			"max_steps": map[string]any{
				"type":        "integer",
				"minimum":     types.MinResearchSteps,
				"maximum":     types.MaxResearchSteps,
				"description": "Maximum research loop steps (research mode only, 1-10)",
			},
			"instructions": map[string]any{
				"type":        "string",
				"description": "Optional additional instructions for the research",
			},
		},
		"required": []string{"query"},
	}
}
