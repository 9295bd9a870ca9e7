// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package perplexity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-tool/internal/httputil"
)

func init() {
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

// withTestServer points apiBase at a test server for the duration of a test.
func withTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := apiBase
	apiBase = ts.URL
	t.Cleanup(func() { apiBase = old })

	return NewClient("test-key", 5*time.Second, 1)
}

func TestCreateDeepResearch_Success(t *testing.T) {
	var captured researchPayload
	client := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, responsesPath, r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(Response{
			Model:  "pro-search",
			Status: "completed",
			Output: []OutputItem{
				{Type: ItemMessage, Content: []ContentBlock{{Type: BlockOutputText, Text: "hi"}}},
			},
			Usage: &ResponseUsage{InputTokens: 1, OutputTokens: 2},
		})
	})

	resp, err := client.CreateDeepResearch(context.Background(), ResearchRequest{
		Query:           "what is X",
		Preset:          "pro-search",
		ReasoningEffort: "medium",
		MaxSteps:        5,
		Instructions:    "Be thorough.",
	})
	require.NoError(t, err)

	assert.Equal(t, "completed", resp.Status)
	require.Len(t, resp.Output, 1)
	assert.Equal(t, "hi", resp.Output[0].Content[0].Text)

	// Instructions are folded into the input, ahead of the question.
	assert.Equal(t, "Be thorough.\n\nResearch question: what is X", captured.Input)
	assert.Equal(t, "pro-search", captured.Preset)
	assert.Equal(t, "medium", captured.Reasoning.Effort)
	assert.Equal(t, 5, captured.MaxSteps)
	assert.Equal(t, []toolParam{{Type: "web_search"}, {Type: "fetch_url"}}, captured.Tools)
}

func TestCreateDeepResearch_NoInstructions(t *testing.T) {
	var captured researchPayload
	client := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(Response{})
	})

	_, err := client.CreateDeepResearch(context.Background(), ResearchRequest{Query: "bare"})
	require.NoError(t, err)
	assert.Equal(t, "bare", captured.Input)
}

func TestCreateChat_Success(t *testing.T) {
	var captured chatPayload
	client := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, chatPath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(ChatResponse{
			Model: "sonar-pro",
			Choices: []Choice{
				{Message: ChatMessageOut{Content: "answer", Citations: []string{"https://a.com"}}},
			},
			Usage: &ChatUsage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3},
		})
	})

	resp, err := client.CreateChat(context.Background(), ChatRequest{
		Query:        "q",
		Model:        "sonar-pro",
		Instructions: "Answer well.",
	})
	require.NoError(t, err)

	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "answer", resp.Choices[0].Message.Content)
	assert.Equal(t, 3, resp.Usage.TotalTokens)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "Answer well."}, captured.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "q"}, captured.Messages[1])
}

func TestPostJSON_RateLimited(t *testing.T) {
	var calls int
	client := withTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"too many requests"}}`))
	})

	_, err := client.CreateChat(context.Background(), ChatRequest{Query: "q", Model: "sonar"})

	var rateErr *RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, "too many requests", rateErr.Message)
	// 1 initial + 1 retry before the 429 surfaces.
	assert.Equal(t, 2, calls)
}

func TestPostJSON_BadRequest(t *testing.T) {
	client := withTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"invalid schema","type":"invalid_request_error"}}`))
	})

	_, err := client.CreateDeepResearch(context.Background(), ResearchRequest{Query: "q"})

	var badErr *BadRequestError
	require.ErrorAs(t, err, &badErr)
	assert.Equal(t, "invalid schema", badErr.Message)
}

func TestPostJSON_StatusError(t *testing.T) {
	client := withTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("upstream down"))
	})

	_, err := client.CreateDeepResearch(context.Background(), ResearchRequest{Query: "q"})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.Equal(t, "upstream down", statusErr.Message)
}

func TestPostJSON_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(ts.Close)

	old := apiBase
	apiBase = ts.URL
	t.Cleanup(func() { apiBase = old })

	client := NewClient("k", 20*time.Millisecond, 1)
	_, err := client.CreateChat(context.Background(), ChatRequest{Query: "q", Model: "sonar"})

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 20*time.Millisecond, timeoutErr.Timeout)
}

func TestPostJSON_ConnectionError(t *testing.T) {
	old := apiBase
	apiBase = "http://127.0.0.1:1" // nothing listens here
	t.Cleanup(func() { apiBase = old })

	client := NewClient("k", time.Second, 1)
	_, err := client.CreateChat(context.Background(), ChatRequest{Query: "q", Model: "sonar"})

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
}

func TestClose_Idempotent(t *testing.T) {
	client := NewClient("k", time.Second, 1)
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
}

func TestReadErrorMessage_FallsBackToBody(t *testing.T) {
	client := withTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("plain text failure"))
	})

	_, err := client.CreateChat(context.Background(), ChatRequest{Query: "q", Model: "sonar"})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "plain text failure", statusErr.Message)
	assert.False(t, errors.Is(err, context.DeadlineExceeded))
}
