// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package graphstore wraps the official Neo4j Go driver for the
// co-pilot: query execution with eagerly buffered rows, schema
// introspection, and the batch CSV ingestor.
package graphstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/tutorfazeel/plm-copilot/services/copilot/datatypes"
)

// Runner abstracts Cypher execution so the pipeline and the ingestor
// can be tested against an in-memory fake. All rows are materialized
// before Run returns; the underlying session is already closed.
type Runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

// Store manages the driver lifecycle and implements Runner using the
// driver's ExecuteQuery helper, which scopes one session per query and
// guarantees its release even when the query fails.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
}

var _ Runner = (*Store)(nil)

// NewStore connects to the graph store and verifies connectivity
// before returning. A connectivity or authentication failure is
// returned as *datatypes.ConnectivityError and must abort pipeline
// construction (fail fast, no retry).
func NewStore(ctx context.Context, uri, username, password, database string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, &datatypes.ConnectivityError{Op: "driver creation", Err: err}
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, &datatypes.ConnectivityError{Op: "connectivity check", Err: err}
	}
	if database == "" {
		database = "neo4j"
	}
	slog.Info("Connected to the graph store", "uri", uri, "database", database)
	return &Store{driver: driver, database: database}, nil
}

// Run executes a Cypher query and returns all result rows as ordered
// key-value maps. Works for both reads and writes.
func (s *Store) Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	result, err := neo4j.ExecuteQuery(ctx, s.driver, cypher, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
	)
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}
	rows := make([]map[string]any, 0, len(result.Records))
	for _, record := range result.Records {
		rows = append(rows, record.AsMap())
	}
	return rows, nil
}

// Close releases the driver and all pooled connections.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
