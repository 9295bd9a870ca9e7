// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize reduces the two upstream response shapes to the
// canonical Result: concatenated text, deduplicated categorized citations,
// and token accounting. Normalization never fails; missing optional fields
// degrade to empty or zero values.
package normalize

import (
	"strings"

	"github.com/pdiddy/research-tool/internal/classify"
	"github.com/pdiddy/research-tool/internal/perplexity"
	"github.com/pdiddy/research-tool/pkg/types"
)

// untitled is the display title for citations that carry no title distinct
// from their URL.
const untitled = "Untitled"

// chatCitationTitle is the display title for chat-mode citations, which
// arrive as bare URLs.
const chatCitationTitle = "Citation"

// FromResearch normalizes an Agentic Research response. It walks the
// output items in order: message items contribute text blocks (joined by
// newline) and their annotations as candidate citations; search_results
// and fetch_url_results items contribute their records as candidate
// citations; unknown item kinds are skipped. One seen-URL set spans the
// whole walk, so the first occurrence of a URL wins regardless of which
// item produced it. An upstream-reported error is copied onto the Result
// without discarding content collected before it.
func FromResearch(resp *perplexity.Response) types.Result {
	result := types.Result{
		Model:  resp.Model,
		Status: resp.Status,
	}

	if resp.Error != nil {
		result.Err = &types.ResultError{
			Code:    resp.Error.Code,
			Message: resp.Error.Message,
		}
	}

	var textParts []string
	collector := newCitationCollector()

	for _, item := range resp.Output {
		switch item.Type {
		case perplexity.ItemMessage:
			for _, block := range item.Content {
				if block.Type != perplexity.BlockOutputText && block.Type != perplexity.BlockText {
					continue
				}
				if block.Text != "" {
					textParts = append(textParts, block.Text)
				}
				for _, ann := range block.Annotations {
					collector.add(ann.URL, ann.Title)
				}
			}

		case perplexity.ItemSearchResults:
			for _, rec := range item.Results {
				title := rec.Title
				if title == "" {
					title = rec.Name
				}
				collector.add(rec.URL, title)
			}

		case perplexity.ItemFetchURLResults:
			for _, rec := range item.Results {
				collector.add(rec.URL, rec.Title)
			}
		}
	}

	result.Content = strings.Join(textParts, "\n")
	result.Citations = collector.citations

	if resp.Usage != nil {
		result.Usage = &types.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			TotalTokens:  resp.Usage.InputTokens + resp.Usage.OutputTokens,
		}
	}

	return result
}

// FromChat normalizes a Chat Completions response: the first choice's
// message content plus its flat citation URL list. The upstream-reported
// token total is trusted as-is, never recomputed from the parts.
func FromChat(resp *perplexity.ChatResponse, model string) types.Result {
	result := types.Result{
		Model:  model,
		Status: "completed",
	}

	if len(resp.Choices) > 0 {
		msg := resp.Choices[0].Message
		result.Content = msg.Content

		collector := newCitationCollector()
		for _, url := range msg.Citations {
			collector.addWithTitle(url, chatCitationTitle)
		}
		result.Citations = collector.citations
	}

	if resp.Usage != nil {
		result.Usage = &types.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		}
	}

	return result
}

// citationCollector deduplicates candidate citations by URL across an
// entire walk. First occurrence wins; later duplicates are dropped, not
// merged.
type citationCollector struct {
	seen      map[string]bool
	citations []types.Citation
}

func newCitationCollector() *citationCollector {
	return &citationCollector{seen: make(map[string]bool)}
}

// add records a candidate citation. Empty URLs are ignored. A title that
// is missing or identical to the URL renders as "Untitled".
func (c *citationCollector) add(url, title string) {
	if title == "" || title == url {
		title = untitled
	}
	c.addWithTitle(url, title)
}

func (c *citationCollector) addWithTitle(url, title string) {
	if url == "" || c.seen[url] {
		return
	}
	c.seen[url] = true
	c.citations = append(c.citations, types.Citation{
		URL:      url,
		Title:    title,
		Category: classify.Categorize(url),
	})
}
