// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// DefaultAPIBaseURL is the default remote API base URL, used unless
// overridden by RISU_API_URL.
const DefaultAPIBaseURL = "https://risu-api.laiosys.dev"

// EnvConfig holds configuration sourced from environment variables, parsed
// with caarlos0/env the same way the teacher's StructuredConfig is,
// scaled down to risu's single override variable.
type EnvConfig struct {
	APIBaseURL string `env:"RISU_API_URL" envDefault:"https://risu-api.laiosys.dev"`
}

// LoadEnvConfig parses EnvConfig from the process environment.
func LoadEnvConfig() (EnvConfig, error) {
	cfg := EnvConfig{}
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}
