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

import "github.com/AleutianAI/dexmill/dex"

// Equivalence is the caller-chosen notion of "same member" used for pool
// membership. Two members with equal keys occupy one slot in a pool.
type Equivalence[T any] interface {
	// Key returns a stable key identifying the member's signature under
	// this policy.
	Key(member T) string
}

// MethodSignature treats methods as equal when they share a name and
// prototype, ignoring the holder. This is the policy virtual dispatch
// resolves under, so it is what overriding queries need.
type MethodSignature struct{}

// Key implements Equivalence.
func (MethodSignature) Key(m *dex.Method) string {
	return m.Name().Value() + m.Proto().String()
}

// FieldSignature treats fields as equal when they share a name and field
// type, ignoring the holder.
type FieldSignature struct{}

// Key implements Equivalence.
func (FieldSignature) Key(f *dex.Field) string {
	return f.Name().Value() + ":" + f.Type().String()
}

var (
	_ Equivalence[*dex.Method] = MethodSignature{}
	_ Equivalence[*dex.Field]  = FieldSignature{}
)
