// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/tutorfazeel/plm-copilot/services/copilot/config"
	"github.com/tutorfazeel/plm-copilot/services/copilot/graphstore"
	"github.com/tutorfazeel/plm-copilot/services/copilot/handlers"
	"github.com/tutorfazeel/plm-copilot/services/copilot/llm"
	"github.com/tutorfazeel/plm-copilot/services/copilot/observability"
	"github.com/tutorfazeel/plm-copilot/services/copilot/pipeline"
)

// initTracer wires the OTLP exporter when OTEL_EXPORTER_OTLP_ENDPOINT
// is set; otherwise tracing stays on the no-op provider.
func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, tracing disabled")
		return func(context.Context) {}, nil
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("plm-copilot")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func newLLMClient(backend string) (llm.LLMClient, error) {
	switch backend {
	case "tgi":
		slog.Info("Using TGI LLM backend")
		return llm.NewTGIClient()
	default:
		slog.Info("Using OpenAI LLM backend")
		return llm.NewOpenAIClient()
	}
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	cfg, err := config.Load(os.Getenv("PLM_CONFIG"))
	if err != nil {
		log.Fatalf("FATAL: could not load the configuration: %v", err)
	}

	ctx := context.Background()
	store, err := graphstore.NewStore(ctx, cfg.Neo4j.URI, cfg.Neo4j.Username,
		cfg.Neo4j.Password, cfg.Neo4j.Database)
	if err != nil {
		// Fail fast: without the graph store there is no pipeline.
		log.Fatalf("FATAL: %v", err)
	}
	defer store.Close(ctx)

	schemaProvider := graphstore.NewSchemaProvider(store)
	if _, err := schemaProvider.Snapshot(ctx); err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	llmClient, err := newLLMClient(cfg.LLM.Backend)
	if err != nil {
		log.Fatalf("FATAL: could not initialize the LLM client: %v", err)
	}

	params := llm.GenerationParams{
		Temperature: &cfg.Generation.Temperature,
		TopP:        &cfg.Generation.TopP,
		MaxTokens:   &cfg.Generation.MaxNewTokens,
	}
	qa := pipeline.NewPipeline(
		schemaProvider,
		pipeline.NewCypherSynthesizer(llmClient, params),
		pipeline.NewQueryExecutor(store),
		pipeline.NewAnswerComposer(llmClient, params),
		pipeline.Timeouts{
			Store: time.Duration(cfg.Timeouts.StoreSeconds) * time.Second,
			LLM:   time.Duration(cfg.Timeouts.LLMSeconds) * time.Second,
		},
	)

	metrics := observability.InitMetrics()
	meter, err := observability.NewUsageMeter(observability.CostRates{
		InputPer1K:  cfg.Costs.InputPer1K,
		OutputPer1K: cfg.Costs.OutputPer1K,
	}, metrics)
	if err != nil {
		log.Fatalf("FATAL: could not initialize the usage meter: %v", err)
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("plm-copilot"))
	router.GET("/healthz", handlers.HandleHealthz())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/ask", handlers.HandleAsk(qa, meter))

	slog.Info("Starting the co-pilot service", "port", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
