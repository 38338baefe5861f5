// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graphstore

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/tutorfazeel/plm-copilot/services/copilot/datatypes"
)

const (
	nodePropertiesQuery = "CALL db.schema.nodeTypeProperties() YIELD nodeLabels, propertyName RETURN nodeLabels, propertyName"
	visualizationQuery  = "CALL db.schema.visualization()"
)

// SchemaProvider introspects the store's labels, relationship types
// and property keys once and caches the snapshot for the process
// lifetime. There is no invalidation: if the store's schema changes
// mid-session, synthesized queries may reference stale labels.
type SchemaProvider struct {
	runner Runner

	once     sync.Once
	snapshot *datatypes.SchemaSnapshot
	err      error
}

// NewSchemaProvider creates a provider over the given runner.
func NewSchemaProvider(runner Runner) *SchemaProvider {
	return &SchemaProvider{runner: runner}
}

// Snapshot returns the cached schema snapshot, introspecting the store
// on first use. A failed first call is cached too: initialization
// failure should stop pipeline construction entirely, not be retried
// on the next request.
func (p *SchemaProvider) Snapshot(ctx context.Context) (*datatypes.SchemaSnapshot, error) {
	p.once.Do(func() {
		p.snapshot, p.err = p.introspect(ctx)
		if p.err == nil {
			slog.Info("Schema snapshot cached",
				"labels", len(p.snapshot.Nodes),
				"relationship_types", len(p.snapshot.Relationships))
		}
	})
	if p.err != nil {
		return nil, &datatypes.ConnectivityError{Op: "schema introspection", Err: p.err}
	}
	return p.snapshot, nil
}

func (p *SchemaProvider) introspect(ctx context.Context) (*datatypes.SchemaSnapshot, error) {
	props, err := p.runner.Run(ctx, nodePropertiesQuery, nil)
	if err != nil {
		return nil, err
	}

	// Group property keys by label. A label with no properties still
	// appears with an empty property list.
	propsByLabel := make(map[string][]string)
	for _, row := range props {
		labels, _ := row["nodeLabels"].([]any)
		name, _ := row["propertyName"].(string)
		for _, l := range labels {
			label, ok := l.(string)
			if !ok {
				continue
			}
			if name == "" {
				if _, seen := propsByLabel[label]; !seen {
					propsByLabel[label] = nil
				}
				continue
			}
			propsByLabel[label] = append(propsByLabel[label], name)
		}
	}

	snapshot := &datatypes.SchemaSnapshot{}
	labels := make([]string, 0, len(propsByLabel))
	for label := range propsByLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		keys := propsByLabel[label]
		sort.Strings(keys)
		snapshot.Nodes = append(snapshot.Nodes, datatypes.NodeSchema{
			Label:      label,
			Properties: keys,
		})
	}

	rels, err := p.relationshipTriples(ctx)
	if err != nil {
		return nil, err
	}
	snapshot.Relationships = rels
	return snapshot, nil
}

// relationshipTriples derives (start)-[type]->(end) triples from the
// store's schema visualization, which returns one row holding virtual
// nodes (one per label) and the relationships between them.
func (p *SchemaProvider) relationshipTriples(ctx context.Context) ([]datatypes.RelationshipSchema, error) {
	rows, err := p.runner.Run(ctx, visualizationQuery, nil)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	labelByID := make(map[string]string)
	if nodes, ok := rows[0]["nodes"].([]any); ok {
		for _, n := range nodes {
			node, ok := n.(dbtype.Node)
			if !ok {
				continue
			}
			if len(node.Labels) > 0 {
				labelByID[node.ElementId] = node.Labels[0]
			} else if name, ok := node.Props["name"].(string); ok {
				labelByID[node.ElementId] = name
			}
		}
	}

	var triples []datatypes.RelationshipSchema
	if rels, ok := rows[0]["relationships"].([]any); ok {
		for _, r := range rels {
			rel, ok := r.(dbtype.Relationship)
			if !ok {
				continue
			}
			triples = append(triples, datatypes.RelationshipSchema{
				Type:       rel.Type,
				StartLabel: labelByID[rel.StartElementId],
				EndLabel:   labelByID[rel.EndElementId],
			})
		}
	}
	sort.Slice(triples, func(i, j int) bool {
		if triples[i].Type != triples[j].Type {
			return triples[i].Type < triples[j].Type
		}
		return triples[i].StartLabel < triples[j].StartLabel
	})
	return triples, nil
}
