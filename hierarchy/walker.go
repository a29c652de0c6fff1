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
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/dexmill/dex"
)

// SuperTypesInclusive returns every class reachable from class through
// zero or more superclass and implemented-interface edges, including
// class itself.
//
// Description:
//
//	Explicit worklist traversal; a node is expanded at most once via the
//	result set acting as the visited set. stop prunes a popped class
//	(the class is excluded and its edges are not expanded) but does not
//	mark it visited, so the same class re-discovered through an
//	alternate path is re-checked rather than silently skipped. Edges
//	into types with no resolvable definition are skipped. stop may be
//	nil.
//
// Outputs:
//   - map[*ClassDef]struct{}: unordered result set.
//
// Thread Safety: safe for concurrent use on a frozen provider.
func SuperTypesInclusive(ctx context.Context, p Provider, class *ClassDef, stop StopFunc) map[*ClassDef]struct{} {
	ctx, span := tracer.Start(ctx, "hierarchy.SuperTypesInclusive",
		trace.WithAttributes(attribute.String("class", class.Type.String())))
	defer span.End()
	start := time.Now()

	superTypes := make(map[*ClassDef]struct{})
	worklist := []*ClassDef{class}

	for len(worklist) > 0 {
		current := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if stop != nil && stop(current) {
			continue
		}
		if _, seen := superTypes[current]; seen {
			continue
		}
		superTypes[current] = struct{}{}

		if current.SuperType != nil {
			worklist = appendResolved(worklist, p, current.SuperType)
		}
		for _, itf := range current.Interfaces {
			worklist = appendResolved(worklist, p, itf)
		}
	}

	span.SetAttributes(attribute.Int("visited", len(superTypes)))
	recordWalk(ctx, "supertypes", time.Since(start), len(superTypes))
	return superTypes
}

// SubTypesExclusive returns every class reachable from class through one
// or more extension or implementation subtype edges, excluding class
// itself.
//
// Same stop and visited semantics as SuperTypesInclusive, over the
// provider's pre-computed inverse adjacency.
func SubTypesExclusive(ctx context.Context, p Provider, class *ClassDef, stop StopFunc) map[*ClassDef]struct{} {
	ctx, span := tracer.Start(ctx, "hierarchy.SubTypesExclusive",
		trace.WithAttributes(attribute.String("class", class.Type.String())))
	defer span.End()
	start := time.Now()

	subTypes := make(map[*ClassDef]struct{})
	worklist := appendSubtypeEdges(nil, p, class.Type)

	for len(worklist) > 0 {
		current := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if stop != nil && stop(current) {
			continue
		}
		if _, seen := subTypes[current]; seen {
			continue
		}
		subTypes[current] = struct{}{}

		worklist = appendSubtypeEdges(worklist, p, current.Type)
	}

	span.SetAttributes(attribute.Int("visited", len(subTypes)))
	recordWalk(ctx, "subtypes", time.Since(start), len(subTypes))
	return subTypes
}

func appendResolved(worklist []*ClassDef, p Provider, t *dex.Type) []*ClassDef {
	if def := p.DefinitionFor(t); def != nil {
		worklist = append(worklist, def)
	}
	return worklist
}

func appendSubtypeEdges(worklist []*ClassDef, p Provider, t *dex.Type) []*ClassDef {
	for _, sub := range p.ExtendsSubtypes(t) {
		worklist = appendResolved(worklist, p, sub)
	}
	for _, sub := range p.ImplementsSubtypes(t) {
		worklist = appendResolved(worklist, p, sub)
	}
	return worklist
}
