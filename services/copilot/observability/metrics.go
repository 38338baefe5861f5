// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics and per-request
// usage accounting (latency, token counts, estimated cost) for the
// ask pipeline.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "plm"

const askSubsystem = "ask"

// Metrics holds the Prometheus metrics for ask operations.
// All operations are thread-safe via Prometheus's internal locking.
type Metrics struct {
	// RequestsTotal counts ask requests by terminal status.
	// Labels: status (success, empty_question, synthesis_failed,
	// execution_failed, composition_failed, connectivity_failed)
	RequestsTotal *prometheus.CounterVec

	// TokensTotal counts tokens by direction.
	// Labels: direction (prompt, completion)
	TokensTotal *prometheus.CounterVec

	// RequestDurationSeconds measures end-to-end ask latency.
	RequestDurationSeconds prometheus.Histogram

	// EstimatedCostTotal accumulates the estimated dollar cost of all
	// requests. An estimate from fixed rates, not a billing figure.
	EstimatedCostTotal prometheus.Counter
}

var (
	defaultMetrics *Metrics
	metricsOnce    sync.Once
)

// InitMetrics registers and returns the singleton metrics instance.
// Safe to call more than once; registration happens only on the
// first call.
func InitMetrics() *Metrics {
	metricsOnce.Do(func() {
		defaultMetrics = &Metrics{
			RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: askSubsystem,
				Name:      "requests_total",
				Help:      "Ask requests by terminal status.",
			}, []string{"status"}),
			TokensTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: askSubsystem,
				Name:      "tokens_total",
				Help:      "Tokens counted by the usage meter, by direction.",
			}, []string{"direction"}),
			RequestDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: askSubsystem,
				Name:      "request_duration_seconds",
				Help:      "End-to-end ask latency.",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
			}),
			EstimatedCostTotal: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: askSubsystem,
				Name:      "estimated_cost_dollars_total",
				Help:      "Accumulated estimated cost in dollars (fixed illustrative rates).",
			}),
		}
	})
	return defaultMetrics
}

// Observe records one completed request on the metrics.
func (m *Metrics) Observe(status string, promptTokens, completionTokens int, latencySeconds, cost float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(status).Inc()
	m.TokensTotal.WithLabelValues("prompt").Add(float64(promptTokens))
	m.TokensTotal.WithLabelValues("completion").Add(float64(completionTokens))
	m.RequestDurationSeconds.Observe(latencySeconds)
	m.EstimatedCostTotal.Add(cost)
}
