// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package perplexity

import "context"

const chatPath = "/chat/completions"

// ChatRequest holds the parameters of one Chat Completions call.
type ChatRequest struct {
	Query        string
	Model        string
	Instructions string
}

// chatPayload is the wire form of a /chat/completions request.
type chatPayload struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is a /chat/completions result. Citations, when present, are
// a flat list of URLs without titles.
type ChatResponse struct {
	Model   string     `json:"model"`
	Choices []Choice   `json:"choices"`
	Usage   *ChatUsage `json:"usage"`
}

// Choice is one completion alternative; the tool only reads the first.
type Choice struct {
	Message ChatMessageOut `json:"message"`
}

// ChatMessageOut is the assistant message of a choice.
type ChatMessageOut struct {
	Content   string   `json:"content"`
	Citations []string `json:"citations"`
}

// ChatUsage is the token accounting of a chat response. The reported total
// is authoritative and is never recomputed from the parts.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CreateChat runs a single-shot chat completion with the instructions as
// the system message and the query as the user message.
func (c *Client) CreateChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	payload := chatPayload{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.Instructions},
			{Role: "user", Content: req.Query},
		},
	}

	var resp ChatResponse
	if err := c.postJSON(ctx, chatPath, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
