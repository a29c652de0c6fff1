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
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/dexmill/dex"
	"github.com/AleutianAI/dexmill/pool"
)

var buildFlags struct {
	graphPath string
	workers   int
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build method and field pools from a class graph",
	Long: `Load a YAML class graph, intern every reference, and build the
method and field member pools over the full hierarchy.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildFlags.graphPath, "graph", "", "path to the YAML class graph (required)")
	buildCmd.Flags().IntVar(&buildFlags.workers, "workers", 0, "builder worker count (0 = NumCPU)")
	_ = buildCmd.MarkFlagRequired("graph")
}

func runBuild(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Close()

	workers := buildFlags.workers
	if workers == 0 {
		workers = config.Workers
	}

	factory := dex.NewFactory()
	graph, err := loadClassGraph(factory, buildFlags.graphPath)
	if err != nil {
		return err
	}
	logger.Info("class graph loaded",
		"path", buildFlags.graphPath,
		"classes", graph.Size())

	ctx := cmd.Context()
	start := time.Now()

	methods := pool.NewMethodCollection(graph,
		pool.WithWorkerCount(workers),
		pool.WithLogger(logger.Slog()))
	if err := methods.BuildAll(ctx); err != nil {
		return fmt.Errorf("method pools: %w", err)
	}

	fields := pool.NewFieldCollection(graph,
		pool.WithWorkerCount(workers),
		pool.WithLogger(logger.Slog()))
	if err := fields.BuildAll(ctx); err != nil {
		return fmt.Errorf("field pools: %w", err)
	}

	elapsed := time.Since(start)
	logger.Info("member pools built",
		"method_pools", methods.Size(),
		"field_pools", fields.Size(),
		"elapsed", elapsed)

	fmt.Printf("classes:       %d\n", graph.Size())
	fmt.Printf("method pools:  %d\n", methods.Size())
	fmt.Printf("field pools:   %d\n", fields.Size())
	for c := dex.Category(0); c < dex.NumCategories; c++ {
		fmt.Printf("%-14s %d\n", c.String()+":", factory.Count(c))
	}
	return nil
}
