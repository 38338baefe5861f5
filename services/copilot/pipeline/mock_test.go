// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"context"
	"sync"

	"github.com/tutorfazeel/plm-copilot/services/copilot/datatypes"
	"github.com/tutorfazeel/plm-copilot/services/copilot/llm"
)

// mockLLM returns scripted responses in call order and records every
// prompt it receives.
type mockLLM struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, params llm.GenerationParams) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := len(m.prompts)
	m.prompts = append(m.prompts, prompt)
	if call < len(m.errs) && m.errs[call] != nil {
		return "", m.errs[call]
	}
	if call < len(m.responses) {
		return m.responses[call], nil
	}
	return "", nil
}

func (m *mockLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// fakeRunner returns scripted rows and records executed queries.
type fakeRunner struct {
	mu      sync.Mutex
	rows    []map[string]any
	err     error
	queries []string
}

func (f *fakeRunner) Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, cypher)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeRunner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

// staticSchema satisfies SchemaSource with a fixed snapshot.
type staticSchema struct {
	snapshot *datatypes.SchemaSnapshot
	err      error
}

func (s *staticSchema) Snapshot(ctx context.Context) (*datatypes.SchemaSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

// supplyChainSchema is the schema used across the pipeline tests:
// parts supplied by suppliers, as in the end-to-end scenarios.
func supplyChainSchema() *datatypes.SchemaSnapshot {
	return &datatypes.SchemaSnapshot{
		Nodes: []datatypes.NodeSchema{
			{Label: "Part", Properties: []string{"name", "part_id"}},
			{Label: "Supplier", Properties: []string{"name", "region", "supplier_id"}},
		},
		Relationships: []datatypes.RelationshipSchema{
			{Type: "SUPPLIED_BY", StartLabel: "Part", EndLabel: "Supplier"},
		},
	}
}
