// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package hierarchy

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level tracer and meter for graph operations.
var (
	tracer = otel.Tracer("dexmill.hierarchy")
	meter  = otel.Meter("dexmill.hierarchy")
)

// Metrics for graph loading and traversal operations.
var (
	classesLoaded metric.Int64Counter
	walkLatency   metric.Float64Histogram
	walkVisited   metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		classesLoaded, err = meter.Int64Counter(
			"hierarchy_classes_loaded_total",
			metric.WithDescription("Total number of class definitions loaded into graphs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		walkLatency, err = meter.Float64Histogram(
			"hierarchy_walk_duration_seconds",
			metric.WithDescription("Duration of hierarchy traversals"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		walkVisited, err = meter.Int64Histogram(
			"hierarchy_walk_visited",
			metric.WithDescription("Number of classes visited per traversal"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordClassLoaded counts one class definition added to a graph.
func recordClassLoaded() {
	if err := initMetrics(); err != nil {
		return
	}
	classesLoaded.Add(context.Background(), 1)
}

// recordWalk records metrics for one traversal.
func recordWalk(ctx context.Context, walk string, duration time.Duration, visited int) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("walk", walk))
	walkLatency.Record(ctx, duration.Seconds(), attrs)
	walkVisited.Record(ctx, int64(visited), attrs)
}
