// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dex

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level tracer and meter for factory operations.
var (
	tracer = otel.Tracer("dexmill.dex")
	meter  = otel.Meter("dexmill.dex")
)

// Metrics for interning and freeze operations.
var (
	itemsInterned metric.Int64Counter
	freezeLatency metric.Float64Histogram
	itemsAtFreeze metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		itemsInterned, err = meter.Int64Counter(
			"dex_items_interned_total",
			metric.WithDescription("Total number of canonical items created, by category"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		freezeLatency, err = meter.Float64Histogram(
			"dex_freeze_duration_seconds",
			metric.WithDescription("Duration of factory freeze operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		itemsAtFreeze, err = meter.Int64Histogram(
			"dex_items_at_freeze",
			metric.WithDescription("Number of interned items at freeze time"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordItemInterned counts one newly created canonical item.
func recordItemInterned(c Category) {
	if err := initMetrics(); err != nil {
		return
	}
	itemsInterned.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("category", c.String())))
}

// recordFreeze records metrics for a freeze operation.
func recordFreeze(ctx context.Context, duration time.Duration, total int) {
	if err := initMetrics(); err != nil {
		return
	}
	freezeLatency.Record(ctx, duration.Seconds())
	itemsAtFreeze.Record(ctx, int64(total))
}
