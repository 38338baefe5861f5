// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"fmt"
	"strings"
)

// Step names used in PipelineResult.Steps. The generated query always
// precedes the rows it produced.
const (
	StepGenerateCypher = "generate_cypher"
	StepExecuteCypher  = "execute_cypher"
)

// AskRequest is the inbound payload for one question.
type AskRequest struct {
	Question  string `json:"question" binding:"required"`
	SessionId string `json:"session_id"`
}

// Validate rejects questions that are empty or whitespace-only. The
// pipeline calls this before any external call is made.
func (r *AskRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return ErrEmptyQuestion
	}
	return nil
}

// IntermediateStep records one stage's output for auditability.
// Exactly one of Query or Rows is populated, depending on Name.
type IntermediateStep struct {
	Name  string           `json:"name"`
	Query string           `json:"query,omitempty"`
	Rows  []map[string]any `json:"rows,omitempty"`
}

// PipelineResult is the outcome of one successful pipeline run: the
// composed answer plus the intermediate steps, with the generated
// Cypher always ordered before the result rows.
type PipelineResult struct {
	Answer string             `json:"answer"`
	Steps  []IntermediateStep `json:"intermediate_steps"`
}

// Cypher returns the generated query recorded in the steps, or "".
func (p *PipelineResult) Cypher() string {
	for _, s := range p.Steps {
		if s.Name == StepGenerateCypher {
			return s.Query
		}
	}
	return ""
}

// Rows returns the result rows recorded in the steps. The returned
// slice may be empty but is never nil once execution completed.
func (p *PipelineResult) Rows() []map[string]any {
	for _, s := range p.Steps {
		if s.Name == StepExecuteCypher {
			if s.Rows == nil {
				return []map[string]any{}
			}
			return s.Rows
		}
	}
	return nil
}

// UsageRecord is the per-request accountability record. It is derived
// from one ask round trip and never persisted.
type UsageRecord struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	LatencySeconds   float64 `json:"latency_seconds"`
	EstimatedCost    float64 `json:"estimated_cost"`
}

// String renders the record the way the CLI prints it.
func (u UsageRecord) String() string {
	return fmt.Sprintf("latency=%.2fs tokens=%d (prompt=%d, completion=%d) cost=$%.6f",
		u.LatencySeconds, u.TotalTokens, u.PromptTokens, u.CompletionTokens, u.EstimatedCost)
}

// AskResponse is the outbound payload for one answered question.
type AskResponse struct {
	Answer    string           `json:"answer"`
	SessionId string           `json:"session_id"`
	Cypher    string           `json:"cypher"`
	Rows      []map[string]any `json:"rows"`
	Usage     UsageRecord      `json:"usage"`
}
