// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the co-pilot configuration from a YAML file
// with environment-variable overrides for deployment secrets.
package config

// Config is the full configuration surface of the co-pilot.
type Config struct {
	Neo4j      Neo4jConfig      `yaml:"neo4j" validate:"required"`
	LLM        LLMConfig        `yaml:"llm"`
	Generation GenerationConfig `yaml:"generation"`
	Costs      CostConfig       `yaml:"costs"`
	Timeouts   TimeoutConfig    `yaml:"timeouts"`
	Server     ServerConfig     `yaml:"server"`
}

// Neo4jConfig holds the graph store endpoint and credentials.
// The password normally arrives via the NEO4J_PASSWORD environment
// variable rather than the file.
type Neo4jConfig struct {
	URI      string `yaml:"uri" validate:"required"`
	Username string `yaml:"username" validate:"required"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// LLMConfig selects the language-model backend.
// Backend is "openai" (OpenAI or any OpenAI-compatible gateway) or
// "tgi" (a hosted text-generation-inference endpoint).
type LLMConfig struct {
	Backend string `yaml:"backend" validate:"oneof=openai tgi"`
}

// GenerationConfig bounds model output for both pipeline prompts.
type GenerationConfig struct {
	MaxNewTokens int     `yaml:"max_new_tokens" validate:"gt=0"`
	TopP         float32 `yaml:"top_p" validate:"gt=0,lte=1"`
	Temperature  float32 `yaml:"temperature" validate:"gte=0,lte=2"`
}

// CostConfig holds the per-1000-token dollar rates for the usage
// estimate.
type CostConfig struct {
	InputPer1K  float64 `yaml:"input_per_1k" validate:"gte=0"`
	OutputPer1K float64 `yaml:"output_per_1k" validate:"gte=0"`
}

// TimeoutConfig bounds the pipeline's external calls. Zero disables
// the corresponding bound.
type TimeoutConfig struct {
	StoreSeconds int `yaml:"store_seconds" validate:"gte=0"`
	LLMSeconds   int `yaml:"llm_seconds" validate:"gte=0"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// DefaultConfig returns the defaults the original system shipped
// with: Mistral-style bounded generation and illustrative cost rates.
func DefaultConfig() Config {
	return Config{
		Neo4j: Neo4jConfig{
			URI:      "neo4j://localhost:7687",
			Username: "neo4j",
			Database: "neo4j",
		},
		LLM: LLMConfig{Backend: "openai"},
		Generation: GenerationConfig{
			MaxNewTokens: 512,
			TopP:         0.9,
			Temperature:  0.1,
		},
		Costs: CostConfig{
			InputPer1K:  0.0002,
			OutputPer1K: 0.0008,
		},
		Timeouts: TimeoutConfig{
			StoreSeconds: 30,
			LLMSeconds:   120,
		},
		Server: ServerConfig{Port: "12310"},
	}
}
