// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers contains the gin HTTP handlers of the co-pilot
// service.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/tutorfazeel/plm-copilot/services/copilot/datatypes"
	"github.com/tutorfazeel/plm-copilot/services/copilot/observability"
)

var askTracer = otel.Tracer("plm.copilot.handlers")

// Answerer is the pipeline surface the handler needs. Satisfied by
// *pipeline.Pipeline.
type Answerer interface {
	Answer(ctx context.Context, question string) (*datatypes.PipelineResult, error)
}

// HandleAsk answers POST /ask. The request carries the free-text
// question; a session id is minted when the client sends none. The
// response includes the answer, the generated Cypher and rows for
// audit, and the usage record.
func HandleAsk(answerer Answerer, meter *observability.UsageMeter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := askTracer.Start(c.Request.Context(), "HandleAsk")
		defer span.End()

		var request datatypes.AskRequest
		if err := c.BindJSON(&request); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to bind ask request JSON", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		sessionId := request.SessionId
		if sessionId == "" {
			sessionId = uuid.New().String()
			slog.Info("No SessionId provided, creating a new one", "sessionId", sessionId)
		}
		span.SetAttributes(attribute.String("session_id", sessionId))

		if err := request.Validate(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		slog.Info("Received ask request", "question", request.Question, "session_id", sessionId)
		result, usage, err := meter.Measure(ctx, request.Question, func(ctx context.Context) (*datatypes.PipelineResult, error) {
			return answerer.Answer(ctx, request.Question)
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())

			var compErr *datatypes.CompositionError
			if errors.As(err, &compErr) {
				// The data came back fine; only the final phrasing
				// failed. Surface the fallback message.
				c.JSON(http.StatusOK, datatypes.AskResponse{
					Answer:    datatypes.FallbackAnswer,
					SessionId: sessionId,
					Usage:     usage,
				})
				return
			}
			if errors.Is(err, datatypes.ErrEmptyQuestion) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			slog.Error("Ask pipeline failed", "error", err, "session_id", sessionId)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, datatypes.AskResponse{
			Answer:    result.Answer,
			SessionId: sessionId,
			Cypher:    result.Cypher(),
			Rows:      result.Rows(),
			Usage:     usage,
		})
	}
}

// HandleHealthz reports liveness.
func HandleHealthz() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
