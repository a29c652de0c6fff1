// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package hierarchy provides the class hierarchy graph and traversals
// over its supertype and subtype edges.
//
// The graph loader populates a Graph incrementally; walkers answer
// reachability questions over the finished graph for the member pool
// builder and downstream passes.
//
// # Ownership Model
//
// The graph stores pointers to class definitions but does NOT own them:
//   - ClassDefs MUST NOT be mutated after being added via AddClass()
//   - The graph does NOT copy definitions
//
// # Thread Safety
//
// Graph is NOT safe for concurrent use during building. It is designed
// for single-writer access during the load phase (AddClass calls) and
// read-only access after Freeze() is called.
package hierarchy

import "github.com/AleutianAI/dexmill/dex"

// ClassDef is one class definition supplied by the graph loader.
//
// All dex references must be canonical instances from the same factory,
// so the graph can key adjacency by pointer identity.
type ClassDef struct {
	// Type is the class's own type reference.
	Type *dex.Type

	// SuperType is the extended class, or nil for a hierarchy root.
	SuperType *dex.Type

	// Interfaces lists the directly implemented interface types.
	Interfaces []*dex.Type

	// Fields are the locally declared field references.
	Fields []*dex.Field

	// Methods are the locally declared method references.
	Methods []*dex.Method

	// Interface marks interface definitions.
	Interface bool

	// Library marks classes loaded from library input rather than
	// program input. Library classes participate in traversal but are
	// commonly pruned by stop predicates.
	Library bool
}

// Provider supplies type graph lookups: definitions plus the pre-computed
// subtype adjacency. It is the interface the graph loader implements;
// Graph is the in-memory implementation.
type Provider interface {
	// DefinitionFor returns the definition of t, or nil if the type is
	// unresolved (e.g. an external library type that was not loaded).
	DefinitionFor(t *dex.Type) *ClassDef

	// ExtendsSubtypes returns the types that directly extend t.
	ExtendsSubtypes(t *dex.Type) []*dex.Type

	// ImplementsSubtypes returns the types that directly implement t.
	ImplementsSubtypes(t *dex.Type) []*dex.Type

	// Classes returns all loaded class definitions in load order.
	Classes() []*ClassDef
}

// GraphState represents the lifecycle state of the graph.
type GraphState int

const (
	// GraphStateLoading indicates the graph is accepting AddClass calls.
	GraphStateLoading GraphState = iota

	// GraphStateReadOnly indicates the graph is frozen and read-only.
	GraphStateReadOnly
)

// String returns the string representation of the GraphState.
func (s GraphState) String() string {
	switch s {
	case GraphStateLoading:
		return "loading"
	case GraphStateReadOnly:
		return "readonly"
	default:
		return "unknown"
	}
}

// StopFunc prunes a traversal branch: when it returns true for a class,
// that class is excluded from the result and its edges are not expanded.
// Pruning one path does not block discovery of the same class's
// neighbors through an alternate path.
type StopFunc func(*ClassDef) bool
