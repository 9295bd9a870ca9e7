// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research tool:
// the canonical Result produced by normalization, its Citation and Usage
// parts, the request options accepted by the tool, and the outcome record
// returned to the host.
package types

import "strconv"

// Category classifies a citation URL by source type.
type Category string

const (
	CategoryAcademic Category = "academic"
	CategoryNews     Category = "news"
	CategoryDocs     Category = "docs"
	CategoryOther    Category = "other"
)

// Citation is a single cited source. URL is never empty and is unique
// within a Result's citation list; the category is computed once from the
// URL when the citation is collected.
type Citation struct {
	URL      string   `json:"url" yaml:"url"`
	Title    string   `json:"title" yaml:"title"`
	Category Category `json:"category" yaml:"category"`
}

// Usage holds token accounting for one request. Research responses report
// input and output counts and the total is their sum; chat responses report
// all three and the total is taken as-is.
type Usage struct {
	InputTokens  int `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int `json:"output_tokens" yaml:"output_tokens"`
	TotalTokens  int `json:"total_tokens" yaml:"total_tokens"`
}

// TotalLabel returns the total token count as a string, or "N/A" when the
// upstream reported a usage object without any token counts.
func (u Usage) TotalLabel() string {
	if u.TotalTokens == 0 && u.InputTokens == 0 && u.OutputTokens == 0 {
		return "N/A"
	}
	return strconv.Itoa(u.TotalTokens)
}

// ResultError carries an error reported inside an otherwise well-formed
// upstream response. Partial content collected before the error is kept.
type ResultError struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// Result is the canonical, mode-agnostic outcome of normalizing one
// upstream response. It is constructed fresh per request, never mutated
// afterwards, and consumed once by the formatter.
type Result struct {
	// Content is the concatenated answer text.
	Content string `json:"content" yaml:"content"`

	// Citations lists deduplicated sources in order of first occurrence.
	Citations []Citation `json:"citations" yaml:"citations"`

	// Usage is token accounting, or nil when the response carried none.
	Usage *Usage `json:"usage,omitempty" yaml:"usage,omitempty"`

	// Model is the upstream model identifier.
	Model string `json:"model" yaml:"model"`

	// Status is the upstream completion status.
	Status string `json:"status" yaml:"status"`

	// Err is an upstream-reported error, or nil.
	Err *ResultError `json:"error,omitempty" yaml:"error,omitempty"`
}
