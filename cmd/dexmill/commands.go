// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"github.com/spf13/cobra"

	"github.com/AleutianAI/dexmill/pkg/logging"
	"github.com/AleutianAI/dexmill/telemetry"
)

// Config is the top-level CLI configuration, read from config.yaml in
// the working directory when present.
type Config struct {
	Logging struct {
		// Level is one of debug, info, warn, error.
		Level string `yaml:"level"`

		// Dir enables JSON file logging to the given directory.
		Dir string `yaml:"dir"`

		// JSON switches stderr output to JSON format.
		JSON bool `yaml:"json"`
	} `yaml:"logging"`

	Telemetry telemetry.Config `yaml:"telemetry"`

	// Workers bounds builder parallelism. Zero means runtime.NumCPU.
	Workers int `yaml:"workers"`
}

// DefaultCLIConfig returns defaults for running without a config file:
// info logging to stderr, no telemetry exporters.
func DefaultCLIConfig() Config {
	var cfg Config
	cfg.Logging.Level = "info"
	cfg.Telemetry = telemetry.DefaultConfig()
	cfg.Telemetry.TraceExporter = "none"
	cfg.Telemetry.MetricExporter = "none"
	return cfg
}

func newLogger() *logging.Logger {
	level := logging.LevelInfo
	switch config.Logging.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	return logging.New(logging.Config{
		Level:   level,
		LogDir:  config.Logging.Dir,
		Service: "dexmill",
		JSON:    config.Logging.JSON,
	})
}

var rootCmd = &cobra.Command{
	Use:   "dexmill",
	Short: "Symbol table and member pool tooling for dex compilation",
	Long: `dexmill interns dex references into canonical symbol tables, builds
member pools over a class hierarchy, and freezes the tables into the
deterministic order used for output serialization.

Class graphs are supplied as YAML fixtures; see docs for the format.`,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(freezeCmd)
}
