// Copyright (C) 2026 PLM Co-Pilot Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Load reads the config. Precedence, lowest to highest: built-in
// defaults, the YAML file, environment variables. path may be empty,
// in which case ~/.plm-copilot/config.yaml is used when present and
// the defaults otherwise.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			candidate := filepath.Join(home, ".plm-copilot", "config.yaml")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read the config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse the config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides lets deployment environments inject endpoints and
// credentials without touching the file.
func applyEnvOverrides(cfg *Config) {
	overrides := []struct {
		key    string
		target *string
	}{
		{"NEO4J_URI", &cfg.Neo4j.URI},
		{"NEO4J_USERNAME", &cfg.Neo4j.Username},
		{"NEO4J_PASSWORD", &cfg.Neo4j.Password},
		{"NEO4J_DATABASE", &cfg.Neo4j.Database},
		{"LLM_BACKEND_TYPE", &cfg.LLM.Backend},
		{"PLM_PORT", &cfg.Server.Port},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.target = v
		}
	}
}
