// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tutorfazeel/plm-copilot/services/copilot/datatypes"
	"github.com/tutorfazeel/plm-copilot/services/copilot/llm"
)

const answerCompositionTemplate = `You are an assistant that helps to form nice and human understandable answers.
The information part contains the result of a database query that you must use to construct an answer.
The provided information is authoritative; you must never doubt it or try to use your internal knowledge to correct it.
If the provided information is empty, say that no matching information was found. Do not invent an answer.

Information:
%s

Question: %s
Helpful Answer:`

// AnswerComposer prompts the model a second time with the original
// question and the serialized result rows, instructing it to answer
// only from the given data. Keeping the model honest on empty rows is
// a policy of the prompt, not something this layer can enforce.
type AnswerComposer struct {
	client llm.LLMClient
	params llm.GenerationParams
}

// NewAnswerComposer creates a composer using the given client and
// generation parameters.
func NewAnswerComposer(client llm.LLMClient, params llm.GenerationParams) *AnswerComposer {
	return &AnswerComposer{client: client, params: params}
}

// Compose produces the final natural-language answer. For an empty
// row set it still returns non-empty text: a graceful no-data answer
// from the model, or a fixed one if the model returns nothing. Model
// failure is wrapped as *datatypes.CompositionError.
func (c *AnswerComposer) Compose(ctx context.Context, question string, rows []map[string]any) (string, error) {
	prompt := fmt.Sprintf(answerCompositionTemplate, serializeRows(rows), question)
	answer, err := c.client.Generate(ctx, prompt, c.params)
	if err != nil {
		return "", &datatypes.CompositionError{Err: err}
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		if len(rows) == 0 {
			return "No matching information was found in the supply-chain graph.", nil
		}
		return "", &datatypes.CompositionError{Err: fmt.Errorf("model returned an empty answer")}
	}
	return answer, nil
}

// serializeRows renders the rows as JSON for the prompt. Empty rows
// render as an explicit marker so the model cannot mistake an empty
// result for missing context.
func serializeRows(rows []map[string]any) string {
	if len(rows) == 0 {
		return "[] (the query returned no rows)"
	}
	data, err := json.Marshal(rows)
	if err != nil {
		// Row values come straight from the driver and may contain
		// types json cannot handle; fall back to fmt rendering.
		return fmt.Sprintf("%v", rows)
	}
	return string(data)
}
