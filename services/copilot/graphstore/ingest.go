// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graphstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// CSV file names the ingestor expects inside the data directory.
const (
	PartsCSV       = "parts.csv"
	SuppliersCSV   = "suppliers.csv"
	SupplyChainCSV = "supply_chain.csv"
	ComplianceCSV  = "compliance.csv"
)

const clearQuery = "MATCH (n) DETACH DELETE n"

var constraintQueries = []string{
	"CREATE CONSTRAINT IF NOT EXISTS FOR (p:Part) REQUIRE p.part_id IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (s:Supplier) REQUIRE s.supplier_id IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (pl:ProductLine) REQUIRE pl.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (d:ComplianceDoc) REQUIRE d.doc_id IS UNIQUE",
}

const partsQuery = `
UNWIND $rows AS row
MERGE (p:Part {part_id: row.part_id})
SET p.name = row.part_name
MERGE (pl:ProductLine {name: row.product_line})
MERGE (pl)-[:CONTAINS_PART]->(p)`

const suppliersQuery = `
UNWIND $rows AS row
MERGE (s:Supplier {supplier_id: row.supplier_id})
SET s.name = row.supplier_name, s.region = row.region`

const supplyChainQuery = `
UNWIND $rows AS row
MATCH (p:Part {part_id: row.part_id})
MATCH (s:Supplier {supplier_id: row.supplier_id})
MERGE (p)-[:SUPPLIED_BY]->(s)`

const complianceQuery = `
UNWIND $rows AS row
MATCH (p:Part {part_id: row.part_id})
MERGE (d:ComplianceDoc {doc_id: row.doc_id})
SET d.status = row.status, d.standard = row.standard
MERGE (p)-[:HAS_COMPLIANCE]->(d)`

// Ingestor loads the four tabular inputs into the graph with
// merge-by-key upsert semantics. A default run is destructive (clears
// all prior graph content first); Keep switches to a non-destructive
// load, which is idempotent for identical inputs.
type Ingestor struct {
	runner Runner

	// Keep skips the destructive clear before loading.
	Keep bool
}

// NewIngestor creates an Ingestor over the given runner.
func NewIngestor(runner Runner) *Ingestor {
	return &Ingestor{runner: runner}
}

// Run loads all four CSV files from dataDir. Every file must exist
// before anything is touched; a missing file aborts the run with no
// writes issued.
func (in *Ingestor) Run(ctx context.Context, dataDir string) error {
	paths := map[string]string{
		PartsCSV:       filepath.Join(dataDir, PartsCSV),
		SuppliersCSV:   filepath.Join(dataDir, SuppliersCSV),
		SupplyChainCSV: filepath.Join(dataDir, SupplyChainCSV),
		ComplianceCSV:  filepath.Join(dataDir, ComplianceCSV),
	}
	for name, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("data file %s not found in %s: %w", name, dataDir, err)
		}
	}

	if in.Keep {
		slog.Info("Keeping existing graph content (non-destructive load)")
	} else {
		slog.Info("Clearing existing data from the graph store")
		if _, err := in.runner.Run(ctx, clearQuery, nil); err != nil {
			return fmt.Errorf("failed to clear the graph store: %w", err)
		}
	}

	slog.Info("Creating uniqueness constraints")
	for _, q := range constraintQueries {
		if _, err := in.runner.Run(ctx, q, nil); err != nil {
			return fmt.Errorf("failed to create constraint: %w", err)
		}
	}

	steps := []struct {
		name  string
		path  string
		query string
	}{
		{"parts and product lines", paths[PartsCSV], partsQuery},
		{"suppliers", paths[SuppliersCSV], suppliersQuery},
		{"supply chain relationships", paths[SupplyChainCSV], supplyChainQuery},
		{"compliance documents", paths[ComplianceCSV], complianceQuery},
	}
	for _, step := range steps {
		rows, err := ReadCSVRows(step.path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", step.path, err)
		}
		slog.Info("Ingesting", "step", step.name, "rows", len(rows))
		if _, err := in.runner.Run(ctx, step.query, map[string]any{"rows": rows}); err != nil {
			return fmt.Errorf("failed to ingest %s: %w", step.name, err)
		}
	}

	slog.Info("Ingestion complete")
	return nil
}

// ReadCSVRows reads a CSV file with a header row into a list of
// column-keyed maps, the shape UNWIND expects for its $rows parameter.
func ReadCSVRows(path string) ([]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s is empty", path)
	}
	if err != nil {
		return nil, err
	}

	var rows []any
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
