package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// TGIClient talks to a hosted text-generation-inference endpoint
// serving an instruction-tuned Mistral model. Prompts are wrapped in
// the Mistral instruction format before being sent:
//
//	<s>[INST] {prompt} [/INST]
//
// The endpoint accepts {"inputs": ..., "parameters": {...}} and
// answers with a generated_text field, either as a bare object or as
// a single-element array depending on the hosting flavor.
type TGIClient struct {
	httpClient *http.Client
	endpoint   string
}

type tgiPayload struct {
	Inputs     string           `json:"inputs"`
	Parameters GenerationParams `json:"parameters"`
}

type tgiResponse struct {
	GeneratedText string `json:"generated_text"`
}

// NewTGIClient reads the endpoint URL from TGI_ENDPOINT_URL.
func NewTGIClient() (*TGIClient, error) {
	endpoint := os.Getenv("TGI_ENDPOINT_URL")
	if endpoint == "" {
		return nil, fmt.Errorf("TGI_ENDPOINT_URL environment variable not set")
	}
	return &TGIClient{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		endpoint:   strings.TrimSuffix(endpoint, "/"),
	}, nil
}

// Generate implements the LLMClient interface.
func (t *TGIClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	payload := tgiPayload{
		Inputs:     fmt.Sprintf("<s>[INST] %s [/INST]", prompt),
		Parameters: params,
	}
	reqBodyBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal the payload: %w", err)
	}

	slog.Debug("Calling TGI endpoint", "url", t.endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint,
		bytes.NewReader(reqBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to build the TGI request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("TGI endpoint call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read the TGI response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		slog.Error("TGI endpoint returned non-200", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("TGI endpoint returned status %d", resp.StatusCode)
	}

	return parseGeneratedText(body)
}

// parseGeneratedText extracts generated_text from either response
// shape: [{"generated_text": ...}] or {"generated_text": ...}.
func parseGeneratedText(body []byte) (string, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []tgiResponse
		if err := json.Unmarshal(body, &list); err != nil {
			return "", fmt.Errorf("failed to decode the TGI response: %w", err)
		}
		if len(list) == 0 {
			return "", fmt.Errorf("TGI endpoint returned an empty result list")
		}
		return list[0].GeneratedText, nil
	}
	var single tgiResponse
	if err := json.Unmarshal(body, &single); err != nil {
		return "", fmt.Errorf("failed to decode the TGI response: %w", err)
	}
	return single.GeneratedText, nil
}
