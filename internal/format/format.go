// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package format renders a normalized Result as a single markdown string
// with citations grouped by category. This string is the only output shape
// the tool produces.
package format

import (
	"fmt"
	"strings"

	"github.com/pdiddy/research-tool/pkg/types"
)

// displayOrder fixes the category group order in the rendered references.
// Note this differs from the classification check order, which tries docs
// before news.
var displayOrder = []types.Category{
	types.CategoryAcademic,
	types.CategoryNews,
	types.CategoryDocs,
	types.CategoryOther,
}

var categoryHeadings = map[types.Category]string{
	types.CategoryAcademic: "### Academic Sources",
	types.CategoryNews:     "### News & Industry",
	types.CategoryDocs:     "### Documentation",
	types.CategoryOther:    "### Other Sources",
}

// numbered pairs a citation with its 1-based position in the original
// deduplicated sequence. Numbering is global, never restarted per group.
type numbered struct {
	n int
	c types.Citation
}

// Render builds the markdown output: the content verbatim, a References
// section grouped by category when citations exist, and a trailing token
// separator when usage is attached. Citations with an empty URL are
// skipped at render time but still counted during numbering.
func Render(result types.Result) string {
	parts := []string{result.Content}

	if len(result.Citations) > 0 {
		parts = append(parts, "\n\n## References\n")

		byCategory := make(map[types.Category][]numbered, len(displayOrder))
		for i, c := range result.Citations {
			cat := c.Category
			if _, ok := categoryHeadings[cat]; !ok {
				cat = types.CategoryOther
			}
			byCategory[cat] = append(byCategory[cat], numbered{n: i + 1, c: c})
		}

		for _, cat := range displayOrder {
			group := byCategory[cat]
			if len(group) == 0 {
				continue
			}
			parts = append(parts, "\n"+categoryHeadings[cat])
			for _, nc := range group {
				if nc.c.URL == "" {
					continue
				}
				title := nc.c.Title
				if title == "" {
					title = "Untitled"
				}
				parts = append(parts, fmt.Sprintf("- [%d] %s", nc.n, title))
				parts = append(parts, "  URL: "+nc.c.URL)
			}
		}
	}

	if result.Usage != nil {
		parts = append(parts, "\n\n---\nTokens: "+result.Usage.TotalLabel())
	}

	return strings.Join(parts, "\n")
}
