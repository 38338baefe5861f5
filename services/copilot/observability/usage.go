// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/tutorfazeel/plm-copilot/services/copilot/datatypes"
)

// CostRates are the per-1000-token dollar rates used for the cost
// estimate. The defaults are illustrative constants, not figures from
// any provider's billing API.
type CostRates struct {
	InputPer1K  float64 `yaml:"input_per_1k"`
	OutputPer1K float64 `yaml:"output_per_1k"`
}

// DefaultRates mirror the constants the original system shipped with.
var DefaultRates = CostRates{InputPer1K: 0.0002, OutputPer1K: 0.0008}

// tokenizerEncoding is the tiktoken encoding used for all counts. A
// single fixed encoding keeps counts comparable run-to-run.
const tokenizerEncoding = "cl100k_base"

// Encoder counts tokens in a text. The production implementation is
// tiktoken; tests may substitute a fake.
type Encoder interface {
	Count(text string) int
}

type tiktokenEncoder struct {
	enc *tiktoken.Tiktoken
}

func (t *tiktokenEncoder) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// UsageMeter wraps one pipeline invocation with accountability
// instrumentation: wall-clock latency, deterministic token counts,
// and an estimated cost from fixed rates.
type UsageMeter struct {
	encoder Encoder
	rates   CostRates
	metrics *Metrics
}

// NewUsageMeter builds a meter using the cl100k_base tiktoken
// encoding. metrics may be nil when Prometheus is not wired (CLI
// one-shot use).
func NewUsageMeter(rates CostRates, metrics *Metrics) (*UsageMeter, error) {
	enc, err := tiktoken.GetEncoding(tokenizerEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load the %s encoding: %w", tokenizerEncoding, err)
	}
	return &UsageMeter{encoder: &tiktokenEncoder{enc: enc}, rates: rates, metrics: metrics}, nil
}

// NewUsageMeterWithEncoder builds a meter around a caller-supplied
// encoder. Used by tests.
func NewUsageMeterWithEncoder(encoder Encoder, rates CostRates, metrics *Metrics) *UsageMeter {
	return &UsageMeter{encoder: encoder, rates: rates, metrics: metrics}
}

// CountTokens returns the token count of text. The encoding is fixed,
// so the same text always yields the same count.
func (m *UsageMeter) CountTokens(text string) int {
	return m.encoder.Count(text)
}

// Cost computes prompt_tokens*input_rate + completion_tokens*output_rate
// with the meter's per-1K rates. Strictly increasing in both counts
// for positive rates.
func (m *UsageMeter) Cost(promptTokens, completionTokens int) float64 {
	return float64(promptTokens)*(m.rates.InputPer1K/1000) +
		float64(completionTokens)*(m.rates.OutputPer1K/1000)
}

// AnswerFunc is one pipeline invocation, as wrapped by Measure.
type AnswerFunc func(ctx context.Context) (*datatypes.PipelineResult, error)

// Measure times the invocation from just before to just after the
// call and derives the usage record: prompt tokens from the question
// text, completion tokens from the final answer text. On failure the
// record still carries latency and prompt tokens so failed requests
// show up in the metrics with their real duration.
func (m *UsageMeter) Measure(ctx context.Context, question string, fn AnswerFunc) (*datatypes.PipelineResult, datatypes.UsageRecord, error) {
	promptTokens := m.CountTokens(question)

	start := time.Now()
	result, err := fn(ctx)
	latency := time.Since(start).Seconds()

	record := datatypes.UsageRecord{
		PromptTokens:   promptTokens,
		LatencySeconds: latency,
	}
	if err == nil {
		record.CompletionTokens = m.CountTokens(result.Answer)
	}
	record.TotalTokens = record.PromptTokens + record.CompletionTokens
	record.EstimatedCost = m.Cost(record.PromptTokens, record.CompletionTokens)

	m.metrics.Observe(statusOf(err), record.PromptTokens, record.CompletionTokens,
		record.LatencySeconds, record.EstimatedCost)
	return result, record, err
}

// statusOf maps a pipeline error to a metrics status label.
func statusOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, datatypes.ErrEmptyQuestion):
		return "empty_question"
	default:
		var (
			connErr  *datatypes.ConnectivityError
			synthErr *datatypes.SynthesisError
			execErr  *datatypes.ExecutionError
			compErr  *datatypes.CompositionError
		)
		switch {
		case errors.As(err, &connErr):
			return "connectivity_failed"
		case errors.As(err, &synthErr):
			return "synthesis_failed"
		case errors.As(err, &execErr):
			return "execution_failed"
		case errors.As(err, &compErr):
			return "composition_failed"
		}
		return "error"
	}
}
