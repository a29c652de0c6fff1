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
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// NamingLens supplies the output names used to order items at freeze.
//
// A lens captures rename decisions made by earlier passes: the order
// induced over each category is the lexicographic order of the renamed
// forms, with structural tie-breaks defined by the factory. The lens is
// consulted only during Freeze.
type NamingLens interface {
	// StringValue returns the serialized value of an interned string.
	StringValue(s *String) string

	// TypeDescriptor returns the output descriptor of a type.
	TypeDescriptor(t *Type) string

	// FieldName returns the output name of a field reference.
	FieldName(f *Field) string

	// MethodName returns the output name of a method reference.
	MethodName(m *Method) string
}

// Freeze assigns every interned item a dense serialization index in
// [0, N) per category, in the total order induced by the naming lens.
//
// Description:
//
//	Freeze is the one-shot phase boundary between construction and
//	serialization. It flips the frozen flag first, so CreateX calls
//	racing with Freeze fail with ErrFactoryFrozen; the caller must
//	nevertheless ensure no creation is in flight when Freeze runs, as
//	the flag does not block writers already past the check.
//
// Inputs:
//   - ctx: Context for tracing. Must not be nil.
//   - lens: Naming lens supplying renamed forms. Must not be nil.
//
// Outputs:
//   - error: ErrAlreadyFrozen on a second freeze without Reset,
//     ErrNilLens if lens is nil.
//
// Thread Safety: single-writer barrier; see description.
func (f *Factory) Freeze(ctx context.Context, lens NamingLens) error {
	ctx, span := tracer.Start(ctx, "dex.Factory.Freeze")
	defer span.End()

	if lens == nil {
		span.SetStatus(codes.Error, ErrNilLens.Error())
		return ErrNilLens
	}
	if !f.frozen.CompareAndSwap(false, true) {
		span.RecordError(ErrAlreadyFrozen)
		span.SetStatus(codes.Error, ErrAlreadyFrozen.Error())
		return ErrAlreadyFrozen
	}

	start := time.Now()

	assignIndices(f.strings.values(), compareStrings(lens))
	assignIndices(f.types.values(), compareTypes(lens))
	assignIndices(f.fields.values(), compareFields(lens))
	assignIndices(f.protos.values(), compareProtos(lens))
	assignIndices(f.methods.values(), compareMethods(lens))
	assignIndices(f.methodHandles.values(), compareMethodHandles(lens))
	assignIndices(f.callSites.values(), compareCallSites(lens))

	total := 0
	for c := Category(0); c < NumCategories; c++ {
		total += f.Count(c)
	}
	span.SetAttributes(attribute.Int("items_total", total))
	recordFreeze(ctx, time.Since(start), total)
	return nil
}

// Reset clears all serialization indices and re-opens the factory for
// creation. Diagnostic use only; normal runs freeze exactly once.
func (f *Factory) Reset() {
	if !f.frozen.CompareAndSwap(true, false) {
		return
	}
	resetIndices(f.strings.values())
	resetIndices(f.types.values())
	resetIndices(f.fields.values())
	resetIndices(f.protos.values())
	resetIndices(f.methods.values())
	resetIndices(f.methodHandles.values())
	resetIndices(f.callSites.values())
}

func assignIndices[V Item](items []V, compare func(a, b V) int) {
	slices.SortFunc(items, compare)
	for i, item := range items {
		item.setSortedIndex(int32(i))
	}
}

func resetIndices[V Item](items []V) {
	for _, item := range items {
		item.resetSortedIndex()
	}
}

func sortByIndex(items []Item) {
	slices.SortFunc(items, func(a, b Item) int {
		return cmp.Compare(a.SortedIndex(), b.SortedIndex())
	})
}

// Layered comparisons: leaves order by their lens-renamed form,
// composites order by their components. A degenerate lens can rename
// two distinct items to the same form, so every leaf comparison falls
// back to the original value to keep the total order deterministic.

func compareStrings(lens NamingLens) func(a, b *String) int {
	return func(a, b *String) int {
		if c := strings.Compare(lens.StringValue(a), lens.StringValue(b)); c != 0 {
			return c
		}
		return strings.Compare(a.value, b.value)
	}
}

func compareTypes(lens NamingLens) func(a, b *Type) int {
	return func(a, b *Type) int {
		if c := strings.Compare(lens.TypeDescriptor(a), lens.TypeDescriptor(b)); c != 0 {
			return c
		}
		return strings.Compare(a.descriptor.value, b.descriptor.value)
	}
}

func compareFields(lens NamingLens) func(a, b *Field) int {
	byType := compareTypes(lens)
	return func(a, b *Field) int {
		if c := byType(a.holder, b.holder); c != 0 {
			return c
		}
		if c := strings.Compare(lens.FieldName(a), lens.FieldName(b)); c != 0 {
			return c
		}
		if c := byType(a.typ, b.typ); c != 0 {
			return c
		}
		return strings.Compare(a.name.value, b.name.value)
	}
}

func compareProtos(lens NamingLens) func(a, b *Proto) int {
	byType := compareTypes(lens)
	return func(a, b *Proto) int {
		if c := byType(a.returnType, b.returnType); c != 0 {
			return c
		}
		return slices.CompareFunc(a.parameters, b.parameters, byType)
	}
}

func compareMethods(lens NamingLens) func(a, b *Method) int {
	byType := compareTypes(lens)
	byProto := compareProtos(lens)
	return func(a, b *Method) int {
		if c := byType(a.holder, b.holder); c != 0 {
			return c
		}
		if c := strings.Compare(lens.MethodName(a), lens.MethodName(b)); c != 0 {
			return c
		}
		if c := byProto(a.proto, b.proto); c != 0 {
			return c
		}
		return strings.Compare(a.name.value, b.name.value)
	}
}

func compareMethodHandles(lens NamingLens) func(a, b *MethodHandle) int {
	byField := compareFields(lens)
	byMethod := compareMethods(lens)
	return func(a, b *MethodHandle) int {
		if c := cmp.Compare(a.kind, b.kind); c != 0 {
			return c
		}
		// Same kind implies same target category.
		switch at := a.target.(type) {
		case *Field:
			return byField(at, b.target.(*Field))
		case *Method:
			return byMethod(at, b.target.(*Method))
		default:
			return 0
		}
	}
}

func compareCallSites(lens NamingLens) func(a, b *CallSite) int {
	byProto := compareProtos(lens)
	byHandle := compareMethodHandles(lens)
	return func(a, b *CallSite) int {
		if c := strings.Compare(lens.StringValue(a.methodName), lens.StringValue(b.methodName)); c != 0 {
			return c
		}
		if c := byProto(a.methodProto, b.methodProto); c != 0 {
			return c
		}
		if c := byHandle(a.bootstrap, b.bootstrap); c != 0 {
			return c
		}
		// Bootstrap arguments tie-break on their structural string forms.
		return slices.CompareFunc(a.args, b.args, func(x, y Item) int {
			return strings.Compare(x.String(), y.String())
		})
	}
}
