// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pool builds and queries per-class member signature pools.
//
// A member pool records the signatures a class declares locally and links
// to the pools of its hierarchy neighbors (supertype, interfaces, known
// subtypes). Shrinking, inlining and renaming passes query pools to
// decide whether a signature could be live anywhere in a class family.
//
// # Lifecycle
//
// Pools are populated by Collection.BuildAll or BuildForHierarchy and
// must be treated as read-only once the build has joined. The intended
// discipline is strict build-then-query: querying during a build is
// unsupported.
package pool

import "errors"

// Sentinel errors for pool operations. The link and declaration errors
// are contract violations: they indicate a caller bug, never a
// recoverable condition.
var (
	// ErrSupertypeLinked is returned when a pool's supertype link is set
	// a second time.
	ErrSupertypeLinked = errors.New("member pool supertype already linked")

	// ErrDuplicateLink is returned when an interface or subtype link is
	// added twice.
	ErrDuplicateLink = errors.New("member pool link already present")

	// ErrDuplicateMember is returned when a signature is declared twice
	// in the same pool.
	ErrDuplicateMember = errors.New("member signature already declared")

	// ErrPoolNotFound is returned when querying a class that has no pool,
	// e.g. a class claimed by a concurrent incremental build that has not
	// completed.
	ErrPoolNotFound = errors.New("no member pool for class")
)
