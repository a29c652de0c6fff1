// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pool

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level tracer and meter for pool operations.
var (
	tracer = otel.Tracer("dexmill.pool")
	meter  = otel.Meter("dexmill.pool")
)

// Metrics for pool building operations.
var (
	buildLatency metric.Float64Histogram
	buildTotal   metric.Int64Counter
	poolsBuilt   metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		buildLatency, err = meter.Float64Histogram(
			"pool_build_duration_seconds",
			metric.WithDescription("Duration of member pool build operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		buildTotal, err = meter.Int64Counter(
			"pool_build_total",
			metric.WithDescription("Total number of member pool build operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		poolsBuilt, err = meter.Int64Histogram(
			"pool_pools_built",
			metric.WithDescription("Number of member pools built per operation"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordBuildMetrics records metrics for a build operation.
func recordBuildMetrics(ctx context.Context, duration time.Duration, pools int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("success", success))
	buildLatency.Record(ctx, duration.Seconds(), attrs)
	buildTotal.Add(ctx, 1, attrs)
	if success {
		poolsBuilt.Record(ctx, int64(pools))
	}
}
