// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-tool/internal/history"
	"github.com/pdiddy/research-tool/internal/research"
	"github.com/pdiddy/research-tool/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Run a research query and print the annotated answer",
	Long: `Query sends a research question to the Perplexity API and prints the
answer as markdown with categorized references. Mode auto (the default)
uses the Agentic Research API and falls back to the Chat Completions API
on quota or rate-limit failures.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := toolConfig()
		if cfg.APIKey == "" {
			return fmt.Errorf("no API key: set PERPLEXITY_API_KEY, add api_key to the config, or create .secrets/perplexity-api-key")
		}

		tool := research.New(cfg, log)
		defer tool.Close()

		if cfg.HistoryPath != "" {
			store, err := history.Open(cfg.HistoryPath)
			if err != nil {
				log.Warn().Err(err).Msg("history disabled: could not open store")
			} else {
				tool.History = store
				defer store.Close()
			}
		}

		opts := types.RequestOptions{Query: strings.Join(args, " ")}
		opts.Mode = types.Mode(mustString(cmd, "mode"))
		opts.Model = mustString(cmd, "model")
		opts.Preset = mustString(cmd, "preset")
		opts.ReasoningEffort = mustString(cmd, "effort")
		opts.MaxSteps, _ = cmd.Flags().GetInt("max-steps")
		opts.Instructions = mustString(cmd, "instructions")

		result := tool.Execute(cmd.Context(), opts)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		if !result.Success {
			msg := "request failed"
			if result.Error != nil {
				msg = result.Error.Message
			}
			return fmt.Errorf("%s", msg)
		}

		fmt.Fprintln(os.Stdout, result.Output)
		return nil
	},
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func init() {
	queryCmd.Flags().String("mode", "", "API mode: auto, research, or chat (default auto)")
	queryCmd.Flags().String("model", "", "chat-mode model: sonar-pro, sonar, or sonar-reasoning")
	queryCmd.Flags().String("preset", "", "research preset (default pro-search)")
	queryCmd.Flags().String("effort", "", "reasoning effort: low, medium, or high")
	queryCmd.Flags().Int("max-steps", 0, "maximum research loop steps (1-10)")
	queryCmd.Flags().String("instructions", "", "additional research instructions")
	queryCmd.Flags().Bool("json", false, "print the raw result as JSON")

	rootCmd.AddCommand(queryCmd)
}
