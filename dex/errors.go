// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dex provides the canonical item factory for the dexmill
// transformation pipeline.
//
// The factory interns every named program element (strings, type
// references, field/method/proto descriptors, call sites, method handles)
// into a single shared instance per distinct value, so pointer equality is
// value equality for the factory's lifetime.
//
// # Lifecycle
//
// A factory moves through two phases:
//  1. Construction: CreateX calls intern items; safe under arbitrary
//     concurrent callers.
//  2. Frozen: after Freeze(), every item carries a dense serialization
//     index in [0, N) per category and no further creation is permitted.
//
// The freeze boundary is enforced by call-site protocol: callers must
// stop all creation before invoking Freeze. Freeze does not block
// in-flight writers.
package dex

import "errors"

// Sentinel errors for factory operations.
var (
	// ErrFactoryFrozen is returned when creation is attempted after Freeze.
	// This indicates a caller bug (e.g. a pass mutating the program after
	// output serialization has begun) and is never recoverable.
	ErrFactoryFrozen = errors.New("factory is frozen and cannot intern new items")

	// ErrAlreadyFrozen is returned by a second Freeze without an
	// intervening Reset.
	ErrAlreadyFrozen = errors.New("factory is already frozen")

	// ErrNotFrozen is returned by operations that require assigned
	// serialization indices before Freeze has run.
	ErrNotFrozen = errors.New("factory has not been frozen")

	// ErrNilLens is returned when Freeze is called without a naming lens.
	ErrNilLens = errors.New("naming lens must not be nil")
)
