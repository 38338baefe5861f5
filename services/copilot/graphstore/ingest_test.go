// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package graphstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRunner captures every query and its parameters in order.
type recordingRunner struct {
	queries []string
	params  []map[string]any
}

func (r *recordingRunner) Run(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	r.queries = append(r.queries, cypher)
	r.params = append(r.params, params)
	return nil, nil
}

func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		PartsCSV: "part_id,part_name,product_line\n" +
			"P-100,Main Frame,Alpha Bicycle\n" +
			"P-200,Crankset,Alpha Bicycle\n",
		SuppliersCSV: "supplier_id,supplier_name,region\n" +
			"S-01,Precision Metals GmbH,EU\n",
		SupplyChainCSV: "part_id,supplier_id\n" +
			"P-100,S-01\n",
		ComplianceCSV: "part_id,doc_id,status,standard\n" +
			"P-100,DOC-7,valid,ISO-9001\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestIngestor_DefaultRunClearsThenLoads(t *testing.T) {
	runner := &recordingRunner{}
	dir := writeDataDir(t)

	require.NoError(t, NewIngestor(runner).Run(context.Background(), dir))

	require.NotEmpty(t, runner.queries)
	assert.Equal(t, clearQuery, runner.queries[0], "a default run wipes the graph first")

	// clear + 4 constraints + 4 load steps
	require.Len(t, runner.queries, 9)
	assert.Equal(t, constraintQueries, runner.queries[1:5])
	assert.Equal(t, []string{partsQuery, suppliersQuery, supplyChainQuery, complianceQuery},
		runner.queries[5:9])

	rows, ok := runner.params[5]["rows"].([]any)
	require.True(t, ok, "load steps pass rows via the $rows parameter")
	require.Len(t, rows, 2)
	assert.Equal(t, map[string]any{
		"part_id":      "P-100",
		"part_name":    "Main Frame",
		"product_line": "Alpha Bicycle",
	}, rows[0])
}

func TestIngestor_KeepSkipsClear(t *testing.T) {
	runner := &recordingRunner{}
	dir := writeDataDir(t)

	ing := NewIngestor(runner)
	ing.Keep = true
	require.NoError(t, ing.Run(context.Background(), dir))

	assert.NotContains(t, runner.queries, clearQuery)
	require.Len(t, runner.queries, 8)
}

func TestIngestor_MissingFileAbortsBeforeAnyWrite(t *testing.T) {
	runner := &recordingRunner{}
	dir := writeDataDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, ComplianceCSV)))

	err := NewIngestor(runner).Run(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ComplianceCSV)
	assert.Empty(t, runner.queries, "nothing may be issued when an input is missing")
}

func TestIngestor_IdenticalRunsIssueIdenticalQueries(t *testing.T) {
	dir := writeDataDir(t)

	first := &recordingRunner{}
	second := &recordingRunner{}
	ing1 := NewIngestor(first)
	ing1.Keep = true
	ing2 := NewIngestor(second)
	ing2.Keep = true

	require.NoError(t, ing1.Run(context.Background(), dir))
	require.NoError(t, ing2.Run(context.Background(), dir))

	assert.Equal(t, first.queries, second.queries)
	assert.Equal(t, first.params, second.params)
}

func TestReadCSVRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suppliers.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"supplier_id,supplier_name,region\n"+
			"S-01,Precision Metals GmbH,EU\n"+
			"S-02,Helios Energy,APAC\n"), 0o644))

	rows, err := ReadCSVRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, map[string]any{
		"supplier_id":   "S-02",
		"supplier_name": "Helios Energy",
		"region":        "APAC",
	}, rows[1])
}

func TestReadCSVRows_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "parts.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := ReadCSVRows(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}
