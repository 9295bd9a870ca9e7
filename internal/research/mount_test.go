// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-tool/pkg/types"
)

// fakeCoordinator records mount calls.
type fakeCoordinator struct {
	kind     string
	name     string
	tool     any
	mountErr error
	calls    int
}

func (f *fakeCoordinator) Mount(_ context.Context, kind string, tool any, name string) error {
	f.calls++
	f.kind = kind
	f.name = name
	f.tool = tool
	return f.mountErr
}

func TestMount_RegistersTool(t *testing.T) {
	coord := &fakeCoordinator{}

	cleanup, err := Mount(context.Background(), coord, map[string]any{
		"api_key": "key-from-config",
		"preset":  "sonar-pro",
	}, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, cleanup)

	assert.Equal(t, 1, coord.calls)
	assert.Equal(t, "tools", coord.kind)
	assert.Equal(t, "perplexity_research", coord.name)

	tool, ok := coord.tool.(*Tool)
	require.True(t, ok)
	assert.Equal(t, "key-from-config", tool.Config.APIKey)
	assert.Equal(t, "sonar-pro", tool.Config.Preset)

	// Cleanup is idempotent.
	require.NoError(t, cleanup(context.Background()))
	require.NoError(t, cleanup(context.Background()))
}

func TestMount_APIKeyFromEnvironment(t *testing.T) {
	t.Setenv(apiKeyEnvVar, "key-from-env")
	coord := &fakeCoordinator{}

	cleanup, err := Mount(context.Background(), coord, nil, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, cleanup)

	tool := coord.tool.(*Tool)
	assert.Equal(t, "key-from-env", tool.Config.APIKey)
	require.NoError(t, cleanup(context.Background()))
}

func TestMount_NoAPIKeyMountsNothing(t *testing.T) {
	t.Setenv(apiKeyEnvVar, "")
	coord := &fakeCoordinator{}

	cleanup, err := Mount(context.Background(), coord, map[string]any{}, zerolog.Nop())
	assert.NoError(t, err)
	assert.Nil(t, cleanup)
	assert.Equal(t, 0, coord.calls)
}

func TestMount_CoordinatorFailure(t *testing.T) {
	coord := &fakeCoordinator{mountErr: errors.New("registry full")}

	cleanup, err := Mount(context.Background(), coord, map[string]any{
		"api_key": "k",
	}, zerolog.Nop())
	assert.Error(t, err)
	assert.Nil(t, cleanup)
}

func TestMount_HistoryEnabled(t *testing.T) {
	coord := &fakeCoordinator{}
	dbPath := filepath.Join(t.TempDir(), "history.db")

	cleanup, err := Mount(context.Background(), coord, map[string]any{
		"api_key":      "k",
		"history_path": dbPath,
	}, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, cleanup)

	tool := coord.tool.(*Tool)
	assert.NotNil(t, tool.History)
	require.NoError(t, cleanup(context.Background()))
	assert.Nil(t, tool.History)
}

func TestDecodeConfig_TimeoutForms(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  time.Duration
	}{
		{"duration string", "90s", 90 * time.Second},
		{"integer seconds", 120, 120 * time.Second},
		{"float seconds", 120.0, 120 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := decodeConfig(map[string]any{"timeout": tt.value})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Timeout)
		})
	}
}

func TestDecodeConfig_FullMap(t *testing.T) {
	cfg, err := decodeConfig(map[string]any{
		"api_key":          "k",
		"preset":           "pro-search",
		"reasoning_effort": "high",
		"max_steps":        7,
		"max_retries":      4,
	})
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.APIKey)
	assert.Equal(t, "high", cfg.ReasoningEffort)
	assert.Equal(t, 7, cfg.MaxSteps)
	assert.Equal(t, 4, cfg.MaxRetries)
}

func TestInputSchema(t *testing.T) {
	tool := New(types.ToolConfig{APIKey: "k"}, zerolog.Nop())
	schema := tool.InputSchema()

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"query"}, schema["required"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, name := range []string{"query", "mode", "model", "preset", "reasoning_effort", "max_steps", "instructions"} {
		assert.Contains(t, props, name)
	}

	assert.Equal(t, "perplexity_research", tool.Name())
	assert.NotEmpty(t, tool.Description())
}
