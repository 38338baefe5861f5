// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package pipeline implements the question-answering core: Cypher
// synthesis, query execution, answer composition, and the coordinator
// that sequences them.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tutorfazeel/plm-copilot/services/copilot/datatypes"
	"github.com/tutorfazeel/plm-copilot/services/copilot/llm"
)

const cypherGenerationTemplate = `Task: Generate a Cypher statement to query a graph database.
Instructions:
Use only the provided relationship types and properties in the schema.
Do not use any other relationship types or properties that are not provided.
Schema:
%s
Note: Do not include any explanations or apologies in your response.
Do not respond to any questions that might ask anything else than for you to construct a Cypher statement.
Do not include any text except the generated Cypher statement.

The question is:
%s`

// CypherSynthesizer turns a natural-language question into a Cypher
// query by prompting the model with the schema snapshot. It never
// executes anything; validating the query is the executor's problem.
type CypherSynthesizer struct {
	client llm.LLMClient
	params llm.GenerationParams
}

// NewCypherSynthesizer creates a synthesizer using the given client
// and bounded generation parameters (low temperature for determinism).
func NewCypherSynthesizer(client llm.LLMClient, params llm.GenerationParams) *CypherSynthesizer {
	return &CypherSynthesizer{client: client, params: params}
}

// Synthesize prompts the model and returns the cleaned Cypher text.
// A failed model call or empty output is returned as
// *datatypes.SynthesisError; the pipeline must not proceed to
// execution in that case.
func (s *CypherSynthesizer) Synthesize(ctx context.Context, question string, schema *datatypes.SchemaSnapshot) (string, error) {
	prompt := fmt.Sprintf(cypherGenerationTemplate, schema.Render(), question)
	raw, err := s.client.Generate(ctx, prompt, s.params)
	if err != nil {
		return "", &datatypes.SynthesisError{Err: err}
	}
	cypher := CleanCypher(raw)
	if cypher == "" {
		slog.Warn("Model returned no usable Cypher", "question", question)
		return "", &datatypes.SynthesisError{Err: fmt.Errorf("model returned empty query text")}
	}
	slog.Debug("Synthesized Cypher", "cypher", cypher)
	return cypher, nil
}

// CleanCypher strips markdown code fences and a leading language tag
// that instruction-tuned models like to add around the statement.
func CleanCypher(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}
	text = strings.TrimSpace(text)
	if lower := strings.ToLower(text); strings.HasPrefix(lower, "cypher") {
		text = strings.TrimSpace(text[len("cypher"):])
	}
	return strings.TrimSpace(text)
}
