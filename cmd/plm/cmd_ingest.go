// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tutorfazeel/plm-copilot/services/copilot/config"
	"github.com/tutorfazeel/plm-copilot/services/copilot/graphstore"
)

func runIngestCommand(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load the configuration: %v\n", err)
		os.Exit(1)
	}

	store, err := graphstore.NewStore(ctx, cfg.Neo4j.URI, cfg.Neo4j.Username,
		cfg.Neo4j.Password, cfg.Neo4j.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close(ctx)

	ingestor := graphstore.NewIngestor(store)
	ingestor.Keep = keepData
	if err := ingestor.Run(ctx, dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: ingestion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Ingestion complete.")
}
