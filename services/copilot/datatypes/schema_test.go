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
)

func supplyChainSnapshot() *SchemaSnapshot {
	return &SchemaSnapshot{
		Nodes: []NodeSchema{
			{Label: "Part", Properties: []string{"name", "part_id"}},
			{Label: "Supplier", Properties: []string{"name", "region", "supplier_id"}},
		},
		Relationships: []RelationshipSchema{
			{Type: "SUPPLIED_BY", StartLabel: "Part", EndLabel: "Supplier"},
		},
	}
}

func TestSchemaSnapshot_Render(t *testing.T) {
	rendered := supplyChainSnapshot().Render()

	assert.Contains(t, rendered, "Part {name, part_id}")
	assert.Contains(t, rendered, "Supplier {name, region, supplier_id}")
	assert.Contains(t, rendered, "(:Part)-[:SUPPLIED_BY]->(:Supplier)")
}

func TestSchemaSnapshot_RenderIsDeterministic(t *testing.T) {
	s := supplyChainSnapshot()
	assert.Equal(t, s.Render(), s.Render(),
		"the same snapshot must always produce the same prompt text")
}

func TestSchemaSnapshot_IsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		snapshot *SchemaSnapshot
		want     bool
	}{
		{name: "nil snapshot", snapshot: nil, want: true},
		{name: "zero value", snapshot: &SchemaSnapshot{}, want: true},
		{name: "populated", snapshot: supplyChainSnapshot(), want: false},
		{
			name: "relationships only",
			snapshot: &SchemaSnapshot{Relationships: []RelationshipSchema{
				{Type: "SUPPLIED_BY", StartLabel: "Part", EndLabel: "Supplier"},
			}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snapshot.IsEmpty())
		})
	}
}
