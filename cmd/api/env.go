package main

import (
	"fmt"

	"go-chi-calculator/internal/config"
)

// loadConfig reads .env, then CALC_* environment variables. Existing process
// environment variables win over .env entries.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
