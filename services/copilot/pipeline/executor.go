// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"context"
	"log/slog"

	"github.com/tutorfazeel/plm-copilot/services/copilot/datatypes"
	"github.com/tutorfazeel/plm-copilot/services/copilot/graphstore"
)

// QueryExecutor runs synthesized Cypher against the graph store. The
// underlying runner materializes all rows eagerly and releases its
// session before returning, including on failure.
type QueryExecutor struct {
	runner graphstore.Runner
}

// NewQueryExecutor creates an executor over the given runner.
func NewQueryExecutor(runner graphstore.Runner) *QueryExecutor {
	return &QueryExecutor{runner: runner}
}

// Execute runs the query with no implicit parameters beyond the query
// text itself. A store rejection (malformed query, constraint
// violation) is wrapped as *datatypes.ExecutionError and propagated so
// the coordinator can abort; it is never swallowed and never retried.
func (e *QueryExecutor) Execute(ctx context.Context, cypher string) ([]map[string]any, error) {
	rows, err := e.runner.Run(ctx, cypher, nil)
	if err != nil {
		return nil, &datatypes.ExecutionError{Query: cypher, Err: err}
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	slog.Debug("Executed Cypher", "rows", len(rows))
	return rows, nil
}
