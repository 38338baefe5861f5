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
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tutorfazeel/plm-copilot/services/copilot/datatypes"
)

var pipelineTracer = otel.Tracer("plm.copilot.pipeline")

// State names one stage of the coordinator's state machine. The
// progression is strictly sequential; any stage's failure transitions
// to StateFailed and aborts the remaining stages.
type State string

const (
	StateSynthesizing State = "synthesizing_query"
	StateExecuting    State = "executing"
	StateComposing    State = "composing_answer"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// SchemaSource yields the cached schema snapshot. Implemented by
// graphstore.SchemaProvider.
type SchemaSource interface {
	Snapshot(ctx context.Context) (*datatypes.SchemaSnapshot, error)
}

// Timeouts bounds each external call. The original system had none
// and a slow upstream blocked the whole request indefinitely; here
// every stage gets an explicit deadline. Zero disables the bound.
type Timeouts struct {
	Store time.Duration
	LLM   time.Duration
}

// Pipeline coordinates one question through synthesis, execution and
// composition. A single in-flight request per instance is assumed;
// the only shared state is the read-only schema snapshot.
type Pipeline struct {
	schema      SchemaSource
	synthesizer *CypherSynthesizer
	executor    *QueryExecutor
	composer    *AnswerComposer
	timeouts    Timeouts
}

// NewPipeline wires the three stages together. All dependencies are
// injected; nothing here talks to the network until Answer is called.
func NewPipeline(schema SchemaSource, synthesizer *CypherSynthesizer,
	executor *QueryExecutor, composer *AnswerComposer, timeouts Timeouts) *Pipeline {
	return &Pipeline{
		schema:      schema,
		synthesizer: synthesizer,
		executor:    executor,
		composer:    composer,
		timeouts:    timeouts,
	}
}

// Answer runs the full state machine for one question and returns the
// composed answer plus the intermediate steps (the generated Cypher,
// then the result rows, in that order).
//
// Empty or whitespace-only questions are rejected with
// datatypes.ErrEmptyQuestion before any external call. Each external
// call is attempted exactly once; every failure short-circuits and is
// returned with a distinguishable type from the datatypes taxonomy.
// No partial answer is ever synthesized from an incomplete run.
func (p *Pipeline) Answer(ctx context.Context, question string) (*datatypes.PipelineResult, error) {
	ctx, span := pipelineTracer.Start(ctx, "Pipeline.Answer")
	defer span.End()

	question = strings.TrimSpace(question)
	if question == "" {
		span.SetStatus(codes.Error, datatypes.ErrEmptyQuestion.Error())
		return nil, datatypes.ErrEmptyQuestion
	}

	schema, err := p.schema.Snapshot(ctx)
	if err != nil {
		return nil, p.fail(span, StateSynthesizing, err)
	}

	state := StateSynthesizing
	slog.Info("Pipeline started", "state", string(state), "question", question)

	cypher, err := p.synthesize(ctx, question, schema)
	if err != nil {
		return nil, p.fail(span, state, err)
	}
	span.SetAttributes(attribute.String("cypher", cypher))

	state = StateExecuting
	rows, err := p.execute(ctx, cypher)
	if err != nil {
		return nil, p.fail(span, state, err)
	}
	span.SetAttributes(attribute.Int("row_count", len(rows)))

	state = StateComposing
	answer, err := p.compose(ctx, question, rows)
	if err != nil {
		return nil, p.fail(span, state, err)
	}

	slog.Info("Pipeline finished", "state", string(StateDone), "rows", len(rows))
	return &datatypes.PipelineResult{
		Answer: answer,
		Steps: []datatypes.IntermediateStep{
			{Name: datatypes.StepGenerateCypher, Query: cypher},
			{Name: datatypes.StepExecuteCypher, Rows: rows},
		},
	}, nil
}

func (p *Pipeline) synthesize(ctx context.Context, question string, schema *datatypes.SchemaSnapshot) (string, error) {
	ctx, span := pipelineTracer.Start(ctx, "Pipeline.Synthesize")
	defer span.End()
	if p.timeouts.LLM > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeouts.LLM)
		defer cancel()
	}
	return p.synthesizer.Synthesize(ctx, question, schema)
}

func (p *Pipeline) execute(ctx context.Context, cypher string) ([]map[string]any, error) {
	ctx, span := pipelineTracer.Start(ctx, "Pipeline.Execute")
	defer span.End()
	if p.timeouts.Store > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeouts.Store)
		defer cancel()
	}
	return p.executor.Execute(ctx, cypher)
}

func (p *Pipeline) compose(ctx context.Context, question string, rows []map[string]any) (string, error) {
	ctx, span := pipelineTracer.Start(ctx, "Pipeline.Compose")
	defer span.End()
	if p.timeouts.LLM > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeouts.LLM)
		defer cancel()
	}
	return p.composer.Compose(ctx, question, rows)
}

// fail records the terminal Failed state on the span and the log,
// then hands the stage error back unchanged.
func (p *Pipeline) fail(span trace.Span, state State, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	slog.Error("Pipeline failed", "state", string(state), "error", err)
	return err
}
