// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package perplexity

import (
	"context"
	"fmt"
)

const responsesPath = "/v1/responses"

// Output item discriminants. The set is closed: the normalizer switches on
// these tags and skips anything it does not recognize.
const (
	ItemMessage         = "message"
	ItemSearchResults   = "search_results"
	ItemFetchURLResults = "fetch_url_results"
)

// Content block types that contribute answer text.
const (
	BlockOutputText = "output_text"
	BlockText       = "text"
)

// ResearchRequest holds the parameters of one Agentic Research call.
type ResearchRequest struct {
	Query           string
	Preset          string
	ReasoningEffort string
	MaxSteps        int
	Instructions    string
}

// researchPayload is the wire form of a /v1/responses request.
type researchPayload struct {
	Input     string          `json:"input"`
	Preset    string          `json:"preset"`
	Reasoning reasoningParams `json:"reasoning"`
	MaxSteps  int             `json:"max_steps"`
	Tools     []toolParam     `json:"tools"`
}

type reasoningParams struct {
	Effort string `json:"effort"`
}

type toolParam struct {
	Type string `json:"type"`
}

// Response is a /v1/responses result: an ordered sequence of heterogeneous
// output items plus status, model, usage, and an optional error.
type Response struct {
	Model  string         `json:"model"`
	Status string         `json:"status"`
	Error  *ResponseError `json:"error"`
	Output []OutputItem   `json:"output"`
	Usage  *ResponseUsage `json:"usage"`
}

// ResponseError is an error reported inside an otherwise valid response.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OutputItem is one element of the response output sequence, discriminated
// by Type. Message items carry Content; search and fetch items carry
// Results. Fields for other tags stay at their zero values.
type OutputItem struct {
	Type    string         `json:"type"`
	Content []ContentBlock `json:"content,omitempty"`
	Results []ResultRecord `json:"results,omitempty"`
}

// ContentBlock is one block inside a message item. Text-typed blocks
// contribute answer text and carry zero or more citation annotations.
type ContentBlock struct {
	Type        string       `json:"type"`
	Text        string       `json:"text"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Annotation is a candidate citation attached to a text block.
type Annotation struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ResultRecord is one entry of a search_results or fetch_url_results item.
// Search results may carry the display text in either Title or Name.
type ResultRecord struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Name  string `json:"name"`
}

// ResponseUsage is the token accounting of a research response.
type ResponseUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// CreateDeepResearch runs a multi-step research request against the Agentic
// Research API. Instructions, when present, are prepended to the query.
func (c *Client) CreateDeepResearch(ctx context.Context, req ResearchRequest) (*Response, error) {
	input := req.Query
	if req.Instructions != "" {
		input = fmt.Sprintf("%s\n\nResearch question: %s", req.Instructions, req.Query)
	}

	payload := researchPayload{
		Input:    input,
		Preset:   req.Preset,
		MaxSteps: req.MaxSteps,
		Reasoning: reasoningParams{
			Effort: req.ReasoningEffort,
		},
		Tools: []toolParam{
			{Type: "web_search"},
			{Type: "fetch_url"},
		},
	}

	var resp Response
	if err := c.postJSON(ctx, responsesPath, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
