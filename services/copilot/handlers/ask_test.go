// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorfazeel/plm-copilot/services/copilot/datatypes"
	"github.com/tutorfazeel/plm-copilot/services/copilot/observability"
)

// stubAnswerer returns a fixed result or error and records the
// question it was asked.
type stubAnswerer struct {
	result   *datatypes.PipelineResult
	err      error
	question string
}

func (s *stubAnswerer) Answer(ctx context.Context, question string) (*datatypes.PipelineResult, error) {
	s.question = question
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type wordEncoder struct{}

func (wordEncoder) Count(text string) int {
	return len(strings.Fields(text))
}

func newAskRouter(answerer *stubAnswerer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	meter := observability.NewUsageMeterWithEncoder(wordEncoder{}, observability.DefaultRates, nil)
	router := gin.New()
	router.POST("/ask", HandleAsk(answerer, meter))
	router.GET("/healthz", HandleHealthz())
	return router
}

func postAsk(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleAsk_InvalidJSON(t *testing.T) {
	router := newAskRouter(&stubAnswerer{})

	w := postAsk(t, router, "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAsk_EmptyQuestion(t *testing.T) {
	answerer := &stubAnswerer{}
	router := newAskRouter(answerer)

	w := postAsk(t, router, `{"question": "   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, answerer.question, "the pipeline must not be invoked")
}

func TestHandleAsk_Success(t *testing.T) {
	cypher := "MATCH (p:Part {name: 'Main Frame'})-[:SUPPLIED_BY]->(s:Supplier) RETURN s.name"
	answerer := &stubAnswerer{
		result: &datatypes.PipelineResult{
			Answer: "Precision Metals GmbH supplies the 'Main Frame'.",
			Steps: []datatypes.IntermediateStep{
				{Name: datatypes.StepGenerateCypher, Query: cypher},
				{Name: datatypes.StepExecuteCypher, Rows: []map[string]any{{"s.name": "Precision Metals GmbH"}}},
			},
		},
	}
	router := newAskRouter(answerer)

	w := postAsk(t, router, `{"question": "Which supplier provides the 'Main Frame'?", "session_id": "sess-42"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp datatypes.AskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Precision Metals GmbH supplies the 'Main Frame'.", resp.Answer)
	assert.Equal(t, "sess-42", resp.SessionId)
	assert.Equal(t, cypher, resp.Cypher)
	require.Len(t, resp.Rows, 1)
	assert.Positive(t, resp.Usage.PromptTokens)
	assert.Positive(t, resp.Usage.CompletionTokens)
	assert.Positive(t, resp.Usage.EstimatedCost)
}

func TestHandleAsk_MintsSessionIdWhenMissing(t *testing.T) {
	answerer := &stubAnswerer{result: &datatypes.PipelineResult{Answer: "ok"}}
	router := newAskRouter(answerer)

	w := postAsk(t, router, `{"question": "List all suppliers."}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp datatypes.AskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionId)
}

func TestHandleAsk_CompositionFailureFallsBack(t *testing.T) {
	answerer := &stubAnswerer{err: &datatypes.CompositionError{Err: assert.AnError}}
	router := newAskRouter(answerer)

	w := postAsk(t, router, `{"question": "Which parts are non-compliant?"}`)
	require.Equal(t, http.StatusOK, w.Code, "data retrieval worked, only phrasing failed")

	var resp datatypes.AskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, datatypes.FallbackAnswer, resp.Answer)
}

func TestHandleAsk_PipelineFailureIsBadGateway(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "execution failure", err: &datatypes.ExecutionError{Query: "MATCH (n)", Err: assert.AnError}},
		{name: "synthesis failure", err: &datatypes.SynthesisError{Err: assert.AnError}},
		{name: "connectivity failure", err: &datatypes.ConnectivityError{Op: "query", Err: assert.AnError}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAskRouter(&stubAnswerer{err: tt.err})
			w := postAsk(t, router, `{"question": "Which supplier provides the 'Main Frame'?"}`)
			assert.Equal(t, http.StatusBadGateway, w.Code)
		})
	}
}

func TestHandleHealthz(t *testing.T) {
	router := newAskRouter(&stubAnswerer{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}
