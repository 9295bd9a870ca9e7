// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, Entry{
		CreatedAt:   time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Query:       "older query",
		Mode:        "research",
		Model:       "pro-search",
		Success:     true,
		TotalTokens: 300,
	}))
	require.NoError(t, s.Record(ctx, Entry{
		CreatedAt: time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC),
		Query:     "newer query",
		Mode:      "chat",
		Model:     "sonar-pro",
		Success:   false,
		Error:     "Chat rate limited: slow down",
	}))

	entries, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, "newer query", entries[0].Query)
	assert.False(t, entries[0].Success)
	assert.Equal(t, "Chat rate limited: slow down", entries[0].Error)

	assert.Equal(t, "older query", entries[1].Query)
	assert.True(t, entries[1].Success)
	assert.Equal(t, 300, entries[1].TotalTokens)
	assert.NotEmpty(t, entries[1].ID)
	assert.Equal(t, time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), entries[1].CreatedAt)
}

func TestListLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(ctx, Entry{
			CreatedAt: time.Date(2026, 8, 1, 10, i, 0, 0, time.UTC),
			Query:     "q",
			Mode:      "research",
		}))
	}

	entries, err := s.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestRecordFillsDefaults(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, Entry{Query: "q", Mode: "chat"}))

	entries, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].CreatedAt.IsZero())
}

func TestExportYAML(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, Entry{
		Query:       "export me",
		Mode:        "research",
		Model:       "pro-search",
		Success:     true,
		TotalTokens: 42,
	}))

	var buf bytes.Buffer
	require.NoError(t, s.ExportYAML(ctx, &buf, 0))

	out := buf.String()
	assert.True(t, strings.Contains(out, "export me"), "yaml output missing query: %s", out)
	assert.Contains(t, out, "mode: research")
	assert.Contains(t, out, "total_tokens: 42")
}
