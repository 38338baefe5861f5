// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tutorfazeel/plm-copilot/services/copilot/config"
	"github.com/tutorfazeel/plm-copilot/services/copilot/datatypes"
	"github.com/tutorfazeel/plm-copilot/services/copilot/graphstore"
	"github.com/tutorfazeel/plm-copilot/services/copilot/llm"
	"github.com/tutorfazeel/plm-copilot/services/copilot/observability"
	"github.com/tutorfazeel/plm-copilot/services/copilot/pipeline"
)

// exampleQuestions are shown when ask is invoked without a question.
var exampleQuestions = []string{
	"Which supplier provides the 'Carbon Fiber Frame Assembly'?",
	"List all suppliers from the region Germany.",
	"What is the compliance status for the part 'Guidance System'?",
	"Show me all parts that have failed a RoHS compliance standard.",
	"Which region is 'Helios Energy' from?",
}

func runAskCommand(cmd *cobra.Command, args []string) {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		fmt.Println("Usage: plm ask \"<question>\"")
		fmt.Println("\nExample questions:")
		for _, q := range exampleQuestions {
			fmt.Printf("  - %s\n", q)
		}
		os.Exit(1)
	}

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

	schemaProvider := graphstore.NewSchemaProvider(store)
	if _, err := schemaProvider.Snapshot(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	llmClient, err := newLLMClient(cfg.LLM.Backend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not initialize the LLM client: %v\n", err)
		os.Exit(1)
	}

	params := llm.GenerationParams{
		Temperature: &cfg.Generation.Temperature,
		TopP:        &cfg.Generation.TopP,
		MaxTokens:   &cfg.Generation.MaxNewTokens,
	}
	qa := pipeline.NewPipeline(
		schemaProvider,
		pipeline.NewCypherSynthesizer(llmClient, params),
		pipeline.NewQueryExecutor(store),
		pipeline.NewAnswerComposer(llmClient, params),
		pipeline.Timeouts{
			Store: time.Duration(cfg.Timeouts.StoreSeconds) * time.Second,
			LLM:   time.Duration(cfg.Timeouts.LLMSeconds) * time.Second,
		},
	)

	meter, err := observability.NewUsageMeter(observability.CostRates{
		InputPer1K:  cfg.Costs.InputPer1K,
		OutputPer1K: cfg.Costs.OutputPer1K,
	}, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not initialize the usage meter: %v\n", err)
		os.Exit(1)
	}

	result, usage, err := meter.Measure(ctx, question, func(ctx context.Context) (*datatypes.PipelineResult, error) {
		return qa.Answer(ctx, question)
	})
	if err != nil {
		var compErr *datatypes.CompositionError
		if errors.As(err, &compErr) {
			fmt.Println(datatypes.FallbackAnswer)
			fmt.Printf("\n%s\n", usage)
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Answer:\n%s\n", result.Answer)
	fmt.Printf("\nGenerated Cypher:\n%s\n", result.Cypher())
	fmt.Printf("\n%s\n", usage)
}

func newLLMClient(backend string) (llm.LLMClient, error) {
	switch backend {
	case "tgi":
		slog.Info("Using TGI LLM backend")
		return llm.NewTGIClient()
	default:
		slog.Info("Using OpenAI LLM backend")
		return llm.NewOpenAIClient()
	}
}
