// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskRequest_Validate(t *testing.T) {
	tests := []struct {
		name        string
		question    string
		expectError bool
	}{
		{name: "empty question rejected", question: "", expectError: true},
		{name: "whitespace-only question rejected", question: " \t\n ", expectError: true},
		{name: "normal question accepted", question: "Which supplier provides the 'Main Frame'?", expectError: false},
		{name: "single character accepted", question: "?", expectError: false},
		{name: "unicode accepted", question: "Welcher Lieferant liefert den Hauptrahmen?", expectError: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &AskRequest{Question: tt.question}
			err := req.Validate()
			if tt.expectError {
				require.ErrorIs(t, err, ErrEmptyQuestion)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPipelineResult_StepAccessors(t *testing.T) {
	result := &PipelineResult{
		Answer: "Precision Metals GmbH supplies the 'Main Frame'.",
		Steps: []IntermediateStep{
			{Name: StepGenerateCypher, Query: "MATCH (p:Part) RETURN p"},
			{Name: StepExecuteCypher, Rows: []map[string]any{{"s.name": "Precision Metals GmbH"}}},
		},
	}

	assert.Equal(t, "MATCH (p:Part) RETURN p", result.Cypher())
	require.Len(t, result.Rows(), 1)
	assert.Equal(t, "Precision Metals GmbH", result.Rows()[0]["s.name"])
}

func TestPipelineResult_EmptyRowsAreNotNil(t *testing.T) {
	result := &PipelineResult{
		Steps: []IntermediateStep{
			{Name: StepGenerateCypher, Query: "MATCH (n:Nothing) RETURN n"},
			{Name: StepExecuteCypher, Rows: nil},
		},
	}

	rows := result.Rows()
	require.NotNil(t, rows, "an executed step reports an empty sequence, never nil")
	assert.Empty(t, rows)
}

func TestPipelineResult_MissingStepsYieldZeroValues(t *testing.T) {
	result := &PipelineResult{}
	assert.Equal(t, "", result.Cypher())
	assert.Nil(t, result.Rows(), "no execution step means no row sequence at all")
}

func TestUsageRecord_String(t *testing.T) {
	record := UsageRecord{
		PromptTokens:     12,
		CompletionTokens: 30,
		TotalTokens:      42,
		LatencySeconds:   1.5,
		EstimatedCost:    0.0000264,
	}

	s := record.String()
	assert.Contains(t, s, "latency=1.50s")
	assert.Contains(t, s, "tokens=42")
	assert.Contains(t, s, "prompt=12")
	assert.Contains(t, s, "completion=30")
	assert.Contains(t, s, "$0.000026")
}
