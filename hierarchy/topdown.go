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
	"go.opentelemetry.io/otel/codes"
)

// TopDown visits every loaded class in top-down hierarchy order: a class
// is visited only after its resolvable supertype and interfaces have been
// visited. Unresolvable parents (library types that were not loaded) do
// not block a visit.
//
// The traversal is iterative: hierarchy depth is typically small but not
// bounded by contract, so no recursion is used. The hierarchy is acyclic
// by contract; TopDown does not detect cycles.
//
// visit errors abort the traversal and are returned unchanged.
func TopDown(ctx context.Context, p Provider, visit func(*ClassDef) error) error {
	ctx, span := tracer.Start(ctx, "hierarchy.TopDown")
	defer span.End()
	start := time.Now()

	visited := make(map[*ClassDef]bool)

	for _, class := range p.Classes() {
		stack := []*ClassDef{class}
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			if visited[current] {
				stack = stack[:len(stack)-1]
				continue
			}

			pending := false
			if current.SuperType != nil {
				if sup := p.DefinitionFor(current.SuperType); sup != nil && !visited[sup] {
					stack = append(stack, sup)
					pending = true
				}
			}
			for _, itf := range current.Interfaces {
				if def := p.DefinitionFor(itf); def != nil && !visited[def] {
					stack = append(stack, def)
					pending = true
				}
			}
			if pending {
				continue
			}

			visited[current] = true
			stack = stack[:len(stack)-1]
			if err := visit(current); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return err
			}
		}
	}

	span.SetAttributes(attribute.Int("visited", len(visited)))
	recordWalk(ctx, "topdown", time.Since(start), len(visited))
	return nil
}
