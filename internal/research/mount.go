// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"

	"github.com/pdiddy/research-tool/internal/history"
	"github.com/pdiddy/research-tool/pkg/types"
)

// apiKeyEnvVar is consulted when the mount config carries no api_key.
const apiKeyEnvVar = "PERPLEXITY_API_KEY"

// Coordinator is the host-side registration surface the tool needs.
type Coordinator interface {
	Mount(ctx context.Context, kind string, tool any, name string) error
}

// CleanupFunc releases the tool's resources. Safe to call more than once.
type CleanupFunc func(ctx context.Context) error

// Mount registers the research tool with the coordinator. The config map
// accepts api_key, preset, reasoning_effort, max_steps, timeout,
// max_retries, and history_path; the API key falls back to the
// PERPLEXITY_API_KEY environment variable. When no key resolves nothing is
// registered and both return values are nil.
func Mount(ctx context.Context, coordinator Coordinator, config map[string]any, log zerolog.Logger) (CleanupFunc, error) {
	cfg, err := decodeConfig(config)
	if err != nil {
		return nil, fmt.Errorf("decoding tool config: %w", err)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(apiKeyEnvVar)
	}
	if cfg.APIKey == "" {
		log.Warn().Msgf(
			"perplexity research tool not mounted: %s not set; set the environment variable or provide api_key in config",
			apiKeyEnvVar)
		return nil, nil
	}

	tool := New(cfg, log)

	if cfg.HistoryPath != "" {
		store, err := history.Open(cfg.HistoryPath)
		if err != nil {
			log.Warn().Err(err).Msg("history disabled: could not open store")
		} else {
			tool.History = store
		}
	}

	if err := coordinator.Mount(ctx, "tools", tool, tool.Name()); err != nil {
		tool.Close()
		closeHistory(tool, log)
		return nil, fmt.Errorf("mounting %s: %w", tool.Name(), err)
	}

	log.Info().Str("preset", tool.Config.Preset).Msg("perplexity research tool mounted")

	cleanup := func(context.Context) error {
		err := tool.Close()
		closeHistory(tool, log)
		log.Debug().Msg("perplexity research tool cleanup complete")
		return err
	}
	return cleanup, nil
}

func closeHistory(tool *Tool, log zerolog.Logger) {
	if tool.History == nil {
		return
	}
	if err := tool.History.Close(); err != nil {
		log.Warn().Err(err).Msg("closing history store")
	}
	tool.History = nil
}

// decodeConfig converts the loosely-typed mount config map into ToolConfig.
// Timeouts may be a duration string ("2m"), or a bare number of seconds.
func decodeConfig(config map[string]any) (types.ToolConfig, error) {
	var cfg types.ToolConfig
	if config == nil {
		return cfg, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: &cfg,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			secondsToDurationHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return cfg, err
	}
	if err := dec.Decode(config); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// secondsToDurationHook converts numeric config values targeting a
// time.Duration from seconds, matching how hosts usually express timeouts.
func secondsToDurationHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	default:
		return data, nil
	}
}
