// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-tool/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the request history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(os.Stdout, "No history entries.")
			return nil
		}

		fmt.Fprintf(os.Stdout, "%-20s  %-8s  %-14s  %-6s  %-7s  %s\n",
			"When", "Mode", "Model", "OK", "Tokens", "Query")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
		for _, e := range entries {
			query := e.Query
			if len(query) > 40 {
				query = query[:37] + "..."
			}
			fmt.Fprintf(os.Stdout, "%-20s  %-8s  %-14s  %-6t  %-7d  %s\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"), e.Mode, e.Model, e.Success, e.TotalTokens, query)
		}
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the request history as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		return store.ExportYAML(cmd.Context(), os.Stdout, limit)
	},
}

func openHistory() (*history.Store, error) {
	cfg := toolConfig()
	if cfg.HistoryPath == "" {
		return nil, fmt.Errorf("history is disabled: set history_path in the config")
	}
	return history.Open(cfg.HistoryPath)
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "maximum number of entries")
	historyExportCmd.Flags().Int("limit", 0, "maximum number of entries (0 = up to 1000)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
