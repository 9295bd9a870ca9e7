// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify assigns a source category to citation URLs.
package classify

import (
	"strings"

	"github.com/pdiddy/research-tool/pkg/types"
)

// The rule tables are substring sets, not exact host matches: "docs."
// matches anywhere in the URL, not just the host. This is intentionally
// permissive. Checked in order academic, docs, news; first match wins.
var (
	academicDomains = []string{
		"arxiv.org",
		"doi.org",
		"pubmed",
		"springer.com",
		"nature.com",
		"sciencedirect",
		".edu/",
		"acm.org",
		"ieee.org",
		"scholar.google",
		"ncbi.nlm.nih",
		"plos.org",
		"frontiersin.org",
		"biorxiv.org",
		"medrxiv.org",
		"researchgate.net",
		"semanticscholar.org",
	}

	docsPatterns = []string{
		"docs.",
		"/docs/",
		"documentation",
		"readme",
		"github.com",
		"gitlab.com",
		"api.",
		"developer.",
		"devdocs",
	}

	newsDomains = []string{
		"techcrunch",
		"wired.com",
		"theverge",
		"arstechnica",
		"bbc.",
		"cnn.",
		"reuters.",
		"nytimes",
		"wsj.com",
		"bloomberg.",
		"/news/",
		"/blog/",
		"medium.com",
		"substack.com",
		"venturebeat",
		"thenextweb",
	}
)

// Categorize returns the source category for a URL. It is pure and total:
// any string is accepted, matching is case-insensitive, and unmatched input
// yields CategoryOther.
func Categorize(url string) types.Category {
	lower := strings.ToLower(url)

	if matchesAny(lower, academicDomains) {
		return types.CategoryAcademic
	}
	if matchesAny(lower, docsPatterns) {
		return types.CategoryDocs
	}
	if matchesAny(lower, newsDomains) {
		return types.CategoryNews
	}
	return types.CategoryOther
}

func matchesAny(lower string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
