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
	"fmt"

	"github.com/AleutianAI/dexmill/dex"
)

// Graph is the in-memory Provider built by the graph loader.
//
// Subtype adjacency is resolved eagerly at AddClass time, keyed by
// canonical type identity, so the concurrent build phase reads a stable
// pre-allocated index instead of mutating an ad hoc object graph.
type Graph struct {
	state GraphState

	definitions map[*dex.Type]*ClassDef
	classes     []*ClassDef

	// Pre-computed inverse edges: type -> types that extend/implement it.
	extendsSubtypes    map[*dex.Type][]*dex.Type
	implementsSubtypes map[*dex.Type][]*dex.Type
}

// NewGraph creates an empty hierarchy graph in the loading state.
func NewGraph() *Graph {
	return &Graph{
		definitions:        make(map[*dex.Type]*ClassDef),
		extendsSubtypes:    make(map[*dex.Type][]*dex.Type),
		implementsSubtypes: make(map[*dex.Type][]*dex.Type),
	}
}

// AddClass registers a class definition and its subtype edges.
//
// Outputs:
//   - error: ErrGraphFrozen after Freeze, ErrNilClass for invalid input,
//     ErrDuplicateClass if the type is already defined.
//
// Thread Safety: NOT safe for concurrent use; the load phase is
// single-writer by contract.
func (g *Graph) AddClass(def *ClassDef) error {
	if g.state == GraphStateReadOnly {
		return ErrGraphFrozen
	}
	if def == nil || def.Type == nil {
		return ErrNilClass
	}
	if _, exists := g.definitions[def.Type]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateClass, def.Type)
	}

	g.definitions[def.Type] = def
	g.classes = append(g.classes, def)

	if def.SuperType != nil {
		g.extendsSubtypes[def.SuperType] = append(g.extendsSubtypes[def.SuperType], def.Type)
	}
	for _, itf := range def.Interfaces {
		g.implementsSubtypes[itf] = append(g.implementsSubtypes[itf], def.Type)
	}
	recordClassLoaded()
	return nil
}

// Freeze transitions the graph to read-only. After Freeze the graph is
// safe for concurrent readers.
func (g *Graph) Freeze() {
	g.state = GraphStateReadOnly
}

// State returns the current lifecycle state.
func (g *Graph) State() GraphState {
	return g.state
}

// Size returns the number of loaded class definitions.
func (g *Graph) Size() int {
	return len(g.classes)
}

// DefinitionFor implements Provider.
func (g *Graph) DefinitionFor(t *dex.Type) *ClassDef {
	return g.definitions[t]
}

// ExtendsSubtypes implements Provider.
func (g *Graph) ExtendsSubtypes(t *dex.Type) []*dex.Type {
	return g.extendsSubtypes[t]
}

// ImplementsSubtypes implements Provider.
func (g *Graph) ImplementsSubtypes(t *dex.Type) []*dex.Type {
	return g.implementsSubtypes[t]
}

// Classes implements Provider.
func (g *Graph) Classes() []*ClassDef {
	return g.classes
}

var _ Provider = (*Graph)(nil)
