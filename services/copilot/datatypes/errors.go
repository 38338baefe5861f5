// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"errors"
	"fmt"
)

// ErrEmptyQuestion is returned when the question is empty or
// whitespace-only. It is raised before any external call.
var ErrEmptyQuestion = errors.New("question must not be empty")

// FallbackAnswer is the user-visible message when answer composition
// fails. Carried over from the original system's behavior.
const FallbackAnswer = "Sorry, I couldn't find an answer."

// ConnectivityError means the graph store was unreachable or rejected
// authentication. It is fatal: pipeline construction stops entirely.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("graph store connectivity failed during %s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// SynthesisError means the model produced no usable Cypher query. The
// pipeline must not proceed to execution.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("cypher synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// ExecutionError means the store rejected or errored on the synthesized
// query. Query carries the offending Cypher for diagnostics. There is
// no automatic repair or retry.
type ExecutionError struct {
	Query string
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("cypher execution failed: %v (query: %s)", e.Err, e.Query)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// CompositionError means the model failed to produce a final answer.
// Callers surface FallbackAnswer to the user.
type CompositionError struct {
	Err error
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("answer composition failed: %v", e.Err)
}

func (e *CompositionError) Unwrap() error { return e.Err }
