// Pingtop - Ping Engagement Analytics and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pingtop

// Package config provides layered configuration for Pingtop via Koanf v2.
//
// Precedence (highest wins): environment variables > YAML config file >
// built-in defaults. Environment variables use the PINGTOP_ prefix with
// underscores mapping to nesting, e.g. PINGTOP_INPUT_INTERACTIONS ->
// input.interactions and PINGTOP_RANKER_TOP_K -> ranker.top_k.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"pingtop.yaml",
	"pingtop.yml",
	"/etc/pingtop/config.yaml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "PINGTOP_CONFIG"

// envPrefix is stripped from environment variables before mapping them to
// koanf paths.
const envPrefix = "PINGTOP_"

// Config is the root configuration for one pipeline run.
type Config struct {
	Input   InputConfig   `koanf:"input"`
	Output  OutputConfig  `koanf:"output"`
	Ranker  RankerConfig  `koanf:"ranker"`
	Cohort  CohortConfig  `koanf:"cohort"`
	Scoring ScoringConfig `koanf:"scoring"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
}

// InputConfig locates the three input CSV tables.
type InputConfig struct {
	Interactions string `koanf:"interactions" validate:"required"`
	Pings        string `koanf:"pings" validate:"required"`
	Users        string `koanf:"users" validate:"required"`
}

// OutputConfig controls where derived tables are persisted.
type OutputConfig struct {
	// Dir receives the CSV snapshot exports.
	Dir string `koanf:"dir" validate:"required"`

	// DatabasePath is the DuckDB file for the derived tables.
	// ":memory:" keeps the run ephemeral.
	DatabasePath string `koanf:"database_path"`
}

// RankerConfig configures the recommendation ranker.
type RankerConfig struct {
	// Alpha/Beta/Gamma/Delta are the linear blend weights for
	// popularity, category affinity, creator affinity and freshness.
	Alpha float64 `koanf:"alpha" validate:"gte=0"`
	Beta  float64 `koanf:"beta" validate:"gte=0"`
	Gamma float64 `koanf:"gamma" validate:"gte=0"`
	Delta float64 `koanf:"delta" validate:"gte=0"`

	// TopK is the number of recommendations per user.
	TopK int `koanf:"top_k" validate:"gt=0"`

	// Users are the user IDs to produce recommendation lists for.
	// Empty means every user in the user table.
	Users []string `koanf:"users"`

	// ReferenceDate anchors freshness computation, format 2006-01-02.
	// Empty derives the reference from the catalog.
	ReferenceDate string `koanf:"reference_date"`
}

// CohortConfig configures the new-vs-existing cohort split.
type CohortConfig struct {
	// WindowDays is the signup recency window that marks a user new.
	WindowDays int `koanf:"window_days" validate:"gt=0"`
}

// ScoringConfig holds the per-event-type engagement weights.
type ScoringConfig struct {
	ViewWeight       float64 `koanf:"view_weight" validate:"gte=0"`
	LikeWeight       float64 `koanf:"like_weight" validate:"gte=0"`
	CommentWeight    float64 `koanf:"comment_weight" validate:"gte=0"`
	ShareWeight      float64 `koanf:"share_weight" validate:"gte=0"`
	FollowWeight     float64 `koanf:"follow_weight" validate:"gte=0"`
	ImpressionWeight float64 `koanf:"impression_weight" validate:"gte=0"`
}

// ServerConfig configures the optional results API.
type ServerConfig struct {
	// Enabled starts the HTTP API after the pipeline run.
	Enabled bool `koanf:"enabled"`

	// Addr is the listen address.
	Addr string `koanf:"addr"`

	// Timeout bounds request handling.
	Timeout time.Duration `koanf:"timeout"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Default returns a Config with all default values applied.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Interactions: "interactions.csv",
			Pings:        "pings.csv",
			Users:        "users.csv",
		},
		Output: OutputConfig{
			Dir:          "./output",
			DatabasePath: "./output/pingtop.duckdb",
		},
		Ranker: RankerConfig{
			Alpha: 0.50,
			Beta:  0.25,
			Gamma: 0.15,
			Delta: 0.10,
			TopK:  10,
			Users: nil,
		},
		Cohort: CohortConfig{
			WindowDays: 7,
		},
		Scoring: ScoringConfig{
			ViewWeight:       1.0,
			LikeWeight:       2.0,
			CommentWeight:    3.0,
			ShareWeight:      4.0,
			FollowWeight:     2.0,
			ImpressionWeight: 0.1,
		},
		Server: ServerConfig{
			Enabled: false,
			Addr:    "127.0.0.1:8640",
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from layered sources:
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. PINGTOP_* environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", 1)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks the configuration via struct tags plus cross-field
// rules the tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Ranker.Alpha+c.Ranker.Beta+c.Ranker.Gamma+c.Ranker.Delta == 0 {
		return fmt.Errorf("ranker: at least one weight must be positive")
	}
	if c.Ranker.ReferenceDate != "" {
		if _, err := time.Parse("2006-01-02", c.Ranker.ReferenceDate); err != nil {
			return fmt.Errorf("ranker: invalid reference_date: %w", err)
		}
	}
	if c.Server.Enabled && c.Server.Addr == "" {
		return fmt.Errorf("server: addr required when enabled")
	}
	return nil
}
