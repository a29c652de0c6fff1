// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package naming provides naming lens implementations for factory freeze.
//
// A naming lens maps original names to output names and thereby fixes the
// total order the factory uses when assigning serialization indices. The
// identity lens serializes programs unrenamed; the dictionary lens applies
// renames produced by an obfuscation or minification pass.
package naming

import "github.com/AleutianAI/dexmill/dex"

// IdentityLens is the no-rename lens: every item serializes under its
// original name, so the freeze order is the lexicographic order of the
// original values.
type IdentityLens struct{}

// NewIdentityLens returns the identity lens.
func NewIdentityLens() IdentityLens { return IdentityLens{} }

// StringValue implements dex.NamingLens.
func (IdentityLens) StringValue(s *dex.String) string { return s.Value() }

// TypeDescriptor implements dex.NamingLens.
func (IdentityLens) TypeDescriptor(t *dex.Type) string { return t.Descriptor().Value() }

// FieldName implements dex.NamingLens.
func (IdentityLens) FieldName(f *dex.Field) string { return f.Name().Value() }

// MethodName implements dex.NamingLens.
func (IdentityLens) MethodName(m *dex.Method) string { return m.Name().Value() }

var _ dex.NamingLens = IdentityLens{}
