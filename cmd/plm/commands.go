// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tutorfazeel/plm-copilot/pkg/logging"
)

// --- Global Command Variables ---
var (
	configPath string
	dataDir    string
	keepData   bool
	verbose    bool

	rootCmd = &cobra.Command{
		Use:   "plm",
		Short: "A co-pilot for querying the manufacturing supply-chain graph",
		Long: `PLM Co-Pilot answers natural-language questions about the
manufacturing supply chain by generating Cypher, running it against
the graph store, and composing an answer with usage metrics.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logging.LevelInfo
			if verbose {
				level = logging.LevelDebug
			}
			logger := logging.New(logging.Config{Level: level, Service: "plm-cli"})
			slog.SetDefault(logger.Slog())
		},
	}

	// --- Ask ---
	askCmd = &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question about the supply-chain graph",
		Run:   runAskCommand, // Defined in cmd_ask.go
	}

	// --- Ingest ---
	ingestCmd = &cobra.Command{
		Use:   "ingest",
		Short: "Load the parts/suppliers/supply-chain/compliance CSV files into the graph",
		Run:   runIngestCommand, // Defined in cmd_ingest.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	ingestCmd.Flags().StringVar(&dataDir, "data-dir", "mock_data", "directory holding the four CSV files")
	ingestCmd.Flags().BoolVar(&keepData, "keep", false, "do not clear the graph before loading (idempotent upsert)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(ingestCmd)
}
