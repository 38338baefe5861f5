// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes holds the shared data shapes of the co-pilot:
// the graph schema snapshot, question/answer payloads, the pipeline
// result, usage accounting, and the pipeline error taxonomy.
package datatypes

import (
	"fmt"
	"strings"
)

// NodeSchema describes one node label and the property keys observed
// on nodes carrying it.
type NodeSchema struct {
	Label      string   `json:"label"`
	Properties []string `json:"properties"`
}

// RelationshipSchema describes one relationship type as a
// (start label)-[type]->(end label) triple.
type RelationshipSchema struct {
	Type       string `json:"type"`
	StartLabel string `json:"start_label"`
	EndLabel   string `json:"end_label"`
}

// SchemaSnapshot is an immutable-per-session description of the graph
// store, built once by the schema provider and shared read-only by all
// later requests. No writer mutates it after construction, so reads
// need no synchronization.
type SchemaSnapshot struct {
	Nodes         []NodeSchema         `json:"nodes"`
	Relationships []RelationshipSchema `json:"relationships"`
}

// IsEmpty reports whether the snapshot describes no labels at all,
// which usually means the store has not been ingested yet.
func (s *SchemaSnapshot) IsEmpty() bool {
	return s == nil || (len(s.Nodes) == 0 && len(s.Relationships) == 0)
}

// Render formats the snapshot for embedding into an LLM prompt.
//
// The output lists node labels with their properties, then the
// relationship triples, one per line:
//
//	Node properties:
//	Part {part_id, name}
//	Supplier {supplier_id, name, region}
//	Relationships:
//	(:Part)-[:SUPPLIED_BY]->(:Supplier)
//
// The order of the snapshot is preserved so the same snapshot always
// renders the same prompt text.
func (s *SchemaSnapshot) Render() string {
	var b strings.Builder
	b.WriteString("Node properties:\n")
	for _, n := range s.Nodes {
		b.WriteString(fmt.Sprintf("%s {%s}\n", n.Label, strings.Join(n.Properties, ", ")))
	}
	b.WriteString("Relationships:\n")
	for _, r := range s.Relationships {
		b.WriteString(fmt.Sprintf("(:%s)-[:%s]->(:%s)\n", r.StartLabel, r.Type, r.EndLabel))
	}
	return b.String()
}
