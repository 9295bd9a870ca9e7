// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research implements the Perplexity research tool: request
// orchestration across the two upstream API modes, the one-shot fallback
// policy, failure classification, and the host-facing mount surface.
package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-tool/internal/format"
	"github.com/pdiddy/research-tool/internal/history"
	"github.com/pdiddy/research-tool/internal/normalize"
	"github.com/pdiddy/research-tool/internal/perplexity"
	"github.com/pdiddy/research-tool/pkg/types"
)

// defaultInstructions is used when the request carries none.
const defaultInstructions = "Provide thorough, well-researched answers with citations."

// fallbackTriggers are the failure-message substrings that switch an auto
// request from the research API to the chat API. Matching is against the
// lower-cased message.
var fallbackTriggers = []string{"rate limit", "quota", "429", "insufficient"}

// Client is the upstream collaborator the orchestrator calls. The real
// implementation is perplexity.Client; tests substitute a fake.
type Client interface {
	CreateDeepResearch(ctx context.Context, req perplexity.ResearchRequest) (*perplexity.Response, error)
	CreateChat(ctx context.Context, req perplexity.ChatRequest) (*perplexity.ChatResponse, error)
	Close() error
}

// clientState tracks the lazy client lifecycle. The client is created once
// on first use; Close is terminal and later requests fail fast instead of
// recreating it.
type clientState int

const (
	stateUninitialized clientState = iota
	stateReady
	stateClosed
)

// Tool executes research requests against the Perplexity API and returns
// normalized, citation-annotated markdown. Safe for concurrent use; all
// per-request state is request-local.
type Tool struct {
	// Config holds the instance defaults. Read-only after construction.
	Config types.ToolConfig

	// Log receives structured events for this tool instance.
	Log zerolog.Logger

	// History, when set, records one entry per upstream attempt.
	History *history.Store

	mu        sync.Mutex
	state     clientState
	client    Client
	newClient func() Client
}

// New builds a Tool from cfg with zero-valued fields defaulted.
func New(cfg types.ToolConfig, log zerolog.Logger) *Tool {
	t := &Tool{
		Config: cfg.WithDefaults(),
		Log:    log,
	}
	t.newClient = func() Client {
		return perplexity.NewClient(t.Config.APIKey, t.Config.Timeout, t.Config.MaxRetries)
	}
	return t
}

// Execute runs one research request. Mode "research" and "chat" are single
// attempts against the named API. Mode "auto" (the default) tries the
// research API first and, when it fails on a quota or rate-limit class
// error, makes exactly one chat attempt whose output is prefixed with a
// fallback note. At most two upstream calls happen per request.
//
// Execute never returns an error: every failure is folded into a
// ToolResult with Success=false and a fixed human-readable message.
func (t *Tool) Execute(ctx context.Context, opts types.RequestOptions) types.ToolResult {
	if opts.Query == "" {
		return types.ToolResult{
			Success: false,
			Error:   &types.ToolError{Message: "Missing required parameter: query"},
		}
	}

	mode := opts.Mode
	if mode == "" {
		mode = types.ModeAuto
	}
	model := opts.Model
	if model == "" {
		model = "sonar-pro"
	}
	preset := opts.Preset
	if preset == "" {
		preset = t.Config.Preset
	}
	effort := opts.ReasoningEffort
	if effort == "" {
		effort = t.Config.ReasoningEffort
	}
	steps := opts.MaxSteps
	if steps == 0 {
		steps = t.Config.MaxSteps
	}
	instructions := opts.Instructions
	if instructions == "" {
		instructions = defaultInstructions
	}

	switch mode {
	case types.ModeChat:
		return t.executeChat(ctx, opts.Query, model, instructions, "")
	case types.ModeResearch:
		return t.executeResearch(ctx, opts.Query, preset, effort, steps, instructions)
	}

	// Auto: research first, one chat fallback on quota/rate-limit failures.
	result := t.executeResearch(ctx, opts.Query, preset, effort, steps, instructions)
	if result.Success || result.Error == nil {
		return result
	}

	if !shouldFallBack(result.Error.Message) {
		return result
	}

	t.Log.Info().
		Str("error", result.Error.Message).
		Str("model", model).
		Msg("research API failed, falling back to chat API")

	note := fmt.Sprintf("(Fallback from Research API: %s)", result.Error.Message)
	return t.executeChat(ctx, opts.Query, model, instructions, note)
}

// shouldFallBack reports whether a research-mode failure message belongs to
// the quota/rate-limit class that permits the chat fallback.
func shouldFallBack(message string) bool {
	lower := strings.ToLower(message)
	for _, trigger := range fallbackTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

// executeResearch makes one Agentic Research attempt.
func (t *Tool) executeResearch(ctx context.Context, query, preset, effort string, steps int, instructions string) types.ToolResult {
	t.Log.Debug().Str("query", truncateQuery(query)).Msg("executing research request")

	client, err := t.acquireClient()
	if err != nil {
		return t.record("research", query, preset, nil,
			failure(fmt.Sprintf("Research failed: %v", err), false))
	}

	resp, err := client.CreateDeepResearch(ctx, perplexity.ResearchRequest{
		Query:           query,
		Preset:          preset,
		ReasoningEffort: effort,
		MaxSteps:        steps,
		Instructions:    instructions,
	})
	if err != nil {
		fail := t.classifyResearchFailure(err)
		t.Log.Warn().Str("error", fail.Error.Message).Msg("research request failed")
		return t.record("research", query, preset, nil, fail)
	}

	result := normalize.FromResearch(resp)
	return t.record("research", query, preset, result.Usage, types.ToolResult{
		Success: true,
		Output:  format.Render(result),
	})
}

// executeChat makes one Chat Completions attempt. fallbackNote, when
// non-empty, is prefixed to the formatted output.
func (t *Tool) executeChat(ctx context.Context, query, model, instructions, fallbackNote string) types.ToolResult {
	t.Log.Debug().Str("query", truncateQuery(query)).Str("model", model).Msg("executing chat request")

	client, err := t.acquireClient()
	if err != nil {
		return t.record("chat", query, model, nil,
			failure(fmt.Sprintf("Chat failed: %v", err), false))
	}

	resp, err := client.CreateChat(ctx, perplexity.ChatRequest{
		Query:        query,
		Model:        model,
		Instructions: instructions,
	})
	if err != nil {
		fail := t.classifyChatFailure(err)
		t.Log.Warn().Str("error", fail.Error.Message).Msg("chat request failed")
		return t.record("chat", query, model, nil, fail)
	}

	result := normalize.FromChat(resp, model)
	output := format.Render(result)
	if fallbackNote != "" {
		output = fallbackNote + "\n\n" + output
	}

	return t.record("chat", query, model, result.Usage, types.ToolResult{
		Success: true,
		Output:  output,
	})
}

// classifyResearchFailure maps a collaborator error from the research API
// onto its fixed message template. Unrecognized errors land in the
// catch-all template; nothing escapes unclassified.
func (t *Tool) classifyResearchFailure(err error) types.ToolResult {
	var (
		rateErr    *perplexity.RateLimitError
		timeoutErr *perplexity.TimeoutError
		badReqErr  *perplexity.BadRequestError
		statusErr  *perplexity.StatusError
		connErr    *perplexity.ConnectionError
	)
	switch {
	case errors.As(err, &rateErr):
		return failure("Rate limited: "+rateErr.Message, true)
	case errors.As(err, &timeoutErr):
		return failure(fmt.Sprintf("Research request timed out after %v", t.Config.Timeout), true)
	case errors.As(err, &badReqErr):
		return failure("Invalid request: "+badReqErr.Message, true)
	case errors.As(err, &statusErr):
		msg := fmt.Sprintf("API error %d", statusErr.Code)
		if statusErr.Message != "" {
			msg = fmt.Sprintf("%s: %s", msg, statusErr.Message)
		}
		return failure(msg, true)
	case errors.As(err, &connErr):
		return failure(fmt.Sprintf("Connection error: %v", connErr.Err), false)
	default:
		return failure(fmt.Sprintf("Research failed: %v", err), false)
	}
}

// classifyChatFailure maps a collaborator error from the chat API onto its
// fixed message template.
func (t *Tool) classifyChatFailure(err error) types.ToolResult {
	var (
		rateErr   *perplexity.RateLimitError
		statusErr *perplexity.StatusError
	)
	switch {
	case errors.As(err, &rateErr):
		return failure("Chat rate limited: "+rateErr.Message, true)
	case errors.As(err, &statusErr):
		msg := fmt.Sprintf("Chat API error %d", statusErr.Code)
		if statusErr.Message != "" {
			msg = fmt.Sprintf("%s: %s", msg, statusErr.Message)
		}
		return failure(msg, true)
	default:
		return failure(fmt.Sprintf("Chat failed: %v", err), false)
	}
}

// failure builds a failed ToolResult. withOutput mirrors the upstream
// reporting convention: classified API failures repeat the message in the
// output, transport and unexpected failures leave it empty.
func failure(message string, withOutput bool) types.ToolResult {
	result := types.ToolResult{
		Success: false,
		Error:   &types.ToolError{Message: message},
	}
	if withOutput {
		result.Output = message
	}
	return result
}

// acquireClient returns the shared client, creating it on first use.
// Exactly one client is created under concurrent first use, and a closed
// tool fails fast instead of recreating one.
func (t *Tool) acquireClient() (Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case stateClosed:
		return nil, errors.New("client is closed")
	case stateReady:
		return t.client, nil
	}

	if t.Config.APIKey == "" {
		return nil, errors.New("api_key must be provided for API calls")
	}

	t.client = t.newClient()
	t.state = stateReady
	return t.client, nil
}

// Close shuts the client down. Safe to call more than once; after the
// first call the tool rejects further requests.
func (t *Tool) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var err error
	if t.state == stateReady {
		err = t.client.Close()
		t.client = nil
	}
	t.state = stateClosed
	return err
}

// record appends a history entry for one upstream attempt when history is
// enabled. Recording failures are logged and never affect the result.
func (t *Tool) record(mode, query, model string, usage *types.Usage, result types.ToolResult) types.ToolResult {
	if t.History == nil {
		return result
	}

	entry := history.Entry{
		CreatedAt: time.Now().UTC(),
		Query:     query,
		Mode:      mode,
		Model:     model,
		Success:   result.Success,
	}
	if result.Error != nil {
		entry.Error = result.Error.Message
	}
	if usage != nil {
		entry.TotalTokens = usage.TotalTokens
	}

	if err := t.History.Record(context.Background(), entry); err != nil {
		t.Log.Warn().Err(err).Msg("could not record history entry")
	}
	return result
}

func truncateQuery(q string) string {
	if len(q) <= 100 {
		return q
	}
	return q[:100] + "..."
}
