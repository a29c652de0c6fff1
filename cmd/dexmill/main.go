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
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/dexmill/telemetry"
)

var config Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		configPath := "config.yaml"
		yamlFile, err := os.ReadFile(configPath)
		if err != nil {
			// The config file is optional; defaults apply without one.
			config = DefaultCLIConfig()
			return
		}

		config = DefaultCLIConfig()
		if err := yaml.Unmarshal(yamlFile, &config); err != nil {
			log.Fatalf("Error parsing config.yaml: %v", err)
		}

		if config.Telemetry.MetricExporter != "none" || config.Telemetry.TraceExporter != "none" {
			shutdown, err := telemetry.Init(context.Background(), config.Telemetry)
			if err != nil {
				log.Fatalf("Error initializing telemetry: %v", err)
			}
			telemetryShutdown = shutdown
		}
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if telemetryShutdown != nil {
			_ = telemetryShutdown(context.Background())
		}
	}
}

var telemetryShutdown func(context.Context) error
