// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-tool CLI, a command-line
// front end to the Perplexity research tool. The same tool mounts into an
// agent host through research.Mount; the CLI exists for direct use and
// debugging.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-tool/internal/secrets"
	"github.com/pdiddy/research-tool/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// log is the CLI's logger; subcommands inherit it.
var log zerolog.Logger

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the research-tool CLI.
var rootCmd = &cobra.Command{
	Use:   "research-tool",
	Short: "Citation-annotated research via the Perplexity API",
	Long: `research-tool runs research queries against the Perplexity API and renders
the answers as markdown with categorized, deduplicated citations.

The query command supports three modes: research (Agentic Research API,
deep multi-step), chat (Chat Completions, faster and cheaper), and auto
(research first, falling back to chat on quota and rate limits).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := zerolog.WarnLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-tool.yaml or ~/.config/research-tool/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-tool")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-tool"))
		}
	}

	viper.SetEnvPrefix("RESEARCH_TOOL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// toolConfig assembles the tool configuration from the config file, the
// environment, and the secrets directory, in that order of precedence.
func toolConfig() types.ToolConfig {
	cfg := types.ToolConfig{
		APIKey:          viper.GetString("api_key"),
		Preset:          viper.GetString("preset"),
		ReasoningEffort: viper.GetString("reasoning_effort"),
		MaxSteps:        viper.GetInt("max_steps"),
		MaxRetries:      viper.GetInt("max_retries"),
		HistoryPath:     viper.GetString("history_path"),
	}
	if t := viper.GetString("timeout"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.Timeout = d
		}
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("PERPLEXITY_API_KEY")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = loadedSecrets[secrets.PerplexityAPIKey]
	}
	return cfg.WithDefaults()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
