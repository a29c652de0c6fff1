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

import "errors"

// Sentinel errors for graph operations.
var (
	// ErrGraphFrozen is returned when attempting to modify a frozen graph.
	// Once Freeze() is called, the graph becomes read-only.
	ErrGraphFrozen = errors.New("hierarchy graph is frozen and cannot be modified")

	// ErrDuplicateClass is returned when adding a class whose type is
	// already defined in the graph.
	ErrDuplicateClass = errors.New("duplicate class definition")

	// ErrNilClass is returned when adding a nil definition or a
	// definition with no type.
	ErrNilClass = errors.New("invalid class definition")
)
