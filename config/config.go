/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads record store configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/suparena/recordstore/errors"
)

// Config describes one record store target.
type Config struct {
	// Table is the DynamoDB table holding every projection row.
	Table string `yaml:"table"`

	// Region is the AWS region.
	Region string `yaml:"region"`

	// Endpoint overrides the service endpoint (DynamoDB Local). Optional.
	Endpoint string `yaml:"endpoint,omitempty"`

	// EnvFile is a .env file with credentials, loaded before connecting.
	// Optional; credentials may already be in the environment.
	EnvFile string `yaml:"env_file,omitempty"`
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the required fields are present.
func (c *Config) Validate() error {
	if c.Table == "" {
		return errors.NewValidationError("table", "table name is required")
	}
	if c.Region == "" && c.Endpoint == "" {
		return errors.NewValidationError("region", "region is required unless an endpoint override is set")
	}
	return nil
}
