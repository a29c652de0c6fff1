// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dex

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTestMethod interns a simple method reference for test use.
func buildTestMethod(t *testing.T, f *Factory) *Method {
	t.Helper()
	m, err := f.CreateMethodFromDescriptors(
		"Lcom/example/Foo;", "bar", "V", []string{"I", "Ljava/lang/String;"})
	require.NoError(t, err)
	return m
}

// TestCreateString_Canonical verifies repeated interning returns the
// same instance.
func TestCreateString_Canonical(t *testing.T) {
	f := NewFactory()

	a, err := f.CreateString("hello")
	require.NoError(t, err)
	b, err := f.CreateString("hello")
	require.NoError(t, err)

	assert.Same(t, a, b, "equal values should intern to one instance")
	assert.Equal(t, "hello", a.Value())
	assert.Equal(t, NotSorted, a.SortedIndex(), "index should be unassigned before freeze")
}

// TestCreateType_SharesDescriptorString verifies the type's descriptor
// is the canonical string instance.
func TestCreateType_SharesDescriptorString(t *testing.T) {
	f := NewFactory()

	typ, err := f.CreateType("Lcom/example/Foo;")
	require.NoError(t, err)
	s, err := f.CreateString("Lcom/example/Foo;")
	require.NoError(t, err)

	assert.Same(t, s, typ.Descriptor())
	assert.False(t, typ.IsPrimitive())
	assert.True(t, typ.IsReference())
	assert.Equal(t, byte('L'), typ.Shorty())
}

// TestCreateType_PrimitiveAndArray covers the descriptor classification
// helpers.
func TestCreateType_PrimitiveAndArray(t *testing.T) {
	f := NewFactory()

	intType, err := f.CreateType("I")
	require.NoError(t, err)
	arrType, err := f.CreateType("[Ljava/lang/String;")
	require.NoError(t, err)

	assert.True(t, intType.IsPrimitive())
	assert.False(t, intType.IsArray())
	assert.True(t, arrType.IsArray())
	assert.True(t, arrType.IsReference())
	assert.Equal(t, byte('L'), arrType.Shorty(), "arrays collapse to reference shorty")
}

// TestCreateMethod_Canonical verifies composite interning: same
// components yield the same method instance.
func TestCreateMethod_Canonical(t *testing.T) {
	f := NewFactory()

	m1 := buildTestMethod(t, f)
	m2 := buildTestMethod(t, f)

	assert.Same(t, m1, m2)
	assert.Equal(t, "Lcom/example/Foo;->bar(ILjava/lang/String;)V", m1.String())
	assert.Same(t, m1.Proto(), m2.Proto(), "shared prototype should be canonical")
}

// TestCreateProto_ShortyComputed verifies the shorty is derived and
// interned with the prototype.
func TestCreateProto_ShortyComputed(t *testing.T) {
	f := NewFactory()

	ret, err := f.CreateType("Ljava/lang/Object;")
	require.NoError(t, err)
	p1, err := f.CreateType("I")
	require.NoError(t, err)
	p2, err := f.CreateType("[D")
	require.NoError(t, err)

	proto, err := f.CreateProto(ret, p1, p2)
	require.NoError(t, err)

	assert.Equal(t, "LIL", proto.Shorty().Value())
	assert.Equal(t, "(I[D)Ljava/lang/Object;", proto.String())
	assert.Same(t, f.LookupString("LIL"), proto.Shorty())
}

// TestCreateProto_DistinguishesParameterSplit verifies the composite key
// cannot confuse different parameter lists with equal concatenations.
func TestCreateProto_DistinguishesParameterSplit(t *testing.T) {
	f := NewFactory()

	v, err := f.CreateType("V")
	require.NoError(t, err)
	i, err := f.CreateType("I")
	require.NoError(t, err)
	ii, err := f.CreateType("[I")
	require.NoError(t, err)

	a, err := f.CreateProto(v, i, ii) // (I[I)V
	require.NoError(t, err)
	b, err := f.CreateProto(v, ii, i) // ([II)V
	require.NoError(t, err)

	assert.NotSame(t, a, b)
}

// TestCreateField_Canonical verifies field interning and notation.
func TestCreateField_Canonical(t *testing.T) {
	f := NewFactory()

	holder, err := f.CreateType("Lcom/example/Foo;")
	require.NoError(t, err)
	intType, err := f.CreateType("I")
	require.NoError(t, err)

	f1, err := f.CreateField(holder, intType, "count")
	require.NoError(t, err)
	f2, err := f.CreateField(holder, intType, "count")
	require.NoError(t, err)

	assert.Same(t, f1, f2)
	assert.Equal(t, "Lcom/example/Foo;->count:I", f1.String())
}

// TestCreateMethodHandle_Canonical verifies handles intern on
// (kind, target).
func TestCreateMethodHandle_Canonical(t *testing.T) {
	f := NewFactory()
	m := buildTestMethod(t, f)

	h1, err := f.CreateMethodHandle(HandleInvokeStatic, m)
	require.NoError(t, err)
	h2, err := f.CreateMethodHandle(HandleInvokeStatic, m)
	require.NoError(t, err)
	h3, err := f.CreateMethodHandle(HandleInvokeDirect, m)
	require.NoError(t, err)

	assert.Same(t, h1, h2)
	assert.NotSame(t, h1, h3, "different kinds must not share a handle")
	assert.Equal(t, HandleInvokeStatic, h1.Kind())
	assert.Same(t, m, h1.Target())
}

// TestCreateCallSite_Canonical verifies call sites intern on all
// components including bootstrap arguments.
func TestCreateCallSite_Canonical(t *testing.T) {
	f := NewFactory()
	m := buildTestMethod(t, f)

	bootstrap, err := f.CreateMethodHandle(HandleInvokeStatic, m)
	require.NoError(t, err)
	arg, err := f.CreateString("extra")
	require.NoError(t, err)

	cs1, err := f.CreateCallSite("run", m.Proto(), bootstrap, arg)
	require.NoError(t, err)
	cs2, err := f.CreateCallSite("run", m.Proto(), bootstrap, arg)
	require.NoError(t, err)
	cs3, err := f.CreateCallSite("run", m.Proto(), bootstrap)
	require.NoError(t, err)

	assert.Same(t, cs1, cs2)
	assert.NotSame(t, cs1, cs3, "different bootstrap args must not collide")
	assert.Len(t, cs1.BootstrapArgs(), 1)
}

// TestCreateCallSite_ArgBoundaries verifies distinct argument lists
// whose string forms concatenate identically do not collide.
func TestCreateCallSite_ArgBoundaries(t *testing.T) {
	f := NewFactory()
	m := buildTestMethod(t, f)
	bootstrap, err := f.CreateMethodHandle(HandleInvokeStatic, m)
	require.NoError(t, err)

	a, err := f.CreateString("a")
	require.NoError(t, err)
	b, err := f.CreateString("b")
	require.NoError(t, err)
	ab, err := f.CreateString("ab")
	require.NoError(t, err)
	joined, err := f.CreateString("a\x1fb")
	require.NoError(t, err)

	split, err := f.CreateCallSite("run", m.Proto(), bootstrap, a, b)
	require.NoError(t, err)
	fused, err := f.CreateCallSite("run", m.Proto(), bootstrap, ab)
	require.NoError(t, err)
	embedded, err := f.CreateCallSite("run", m.Proto(), bootstrap, joined)
	require.NoError(t, err)

	assert.NotSame(t, split, fused)
	assert.NotSame(t, split, embedded)
	assert.NotSame(t, fused, embedded)
}

// TestLookup_NeverCreates verifies lookups return nil for unseen values
// and do not grow the tables.
func TestLookup_NeverCreates(t *testing.T) {
	f := NewFactory()
	before := f.Count(CategoryString)

	assert.Nil(t, f.LookupString("never-interned"))
	assert.Nil(t, f.LookupType("Lcom/example/Never;"))
	assert.Equal(t, before, f.Count(CategoryString))
}

// TestWellKnown_Preinterned verifies the well-known table is available
// on a fresh factory and canonical with later interning.
func TestWellKnown_Preinterned(t *testing.T) {
	f := NewFactory()

	obj, err := f.CreateType("Ljava/lang/Object;")
	require.NoError(t, err)
	assert.Same(t, f.WellKnown.ObjectType, obj)

	init, err := f.CreateString("<init>")
	require.NoError(t, err)
	assert.Same(t, f.WellKnown.ConstructorName, init)
}

// TestIsConstructor verifies the name-based classification helpers.
func TestIsConstructor(t *testing.T) {
	f := NewFactory()

	holder, err := f.CreateType("Lcom/example/Foo;")
	require.NoError(t, err)
	void, err := f.CreateType("V")
	require.NoError(t, err)
	proto, err := f.CreateProto(void)
	require.NoError(t, err)

	ctor, err := f.CreateMethod(holder, proto, "<init>")
	require.NoError(t, err)
	clinit, err := f.CreateMethod(holder, proto, "<clinit>")
	require.NoError(t, err)
	plain, err := f.CreateMethod(holder, proto, "run")
	require.NoError(t, err)

	assert.True(t, f.IsConstructor(ctor))
	assert.False(t, f.IsConstructor(plain))
	assert.True(t, f.IsClassInitializer(clinit))
	assert.False(t, f.IsClassInitializer(ctor))
}

// TestCreate_AfterFreeze verifies creation is rejected once frozen.
func TestCreate_AfterFreeze(t *testing.T) {
	f := NewFactory()
	buildTestMethod(t, f)

	require.NoError(t, f.Freeze(context.Background(), identityLens{}))

	_, err := f.CreateString("late")
	assert.ErrorIs(t, err, ErrFactoryFrozen)
	_, err = f.CreateType("Lcom/example/Late;")
	assert.ErrorIs(t, err, ErrFactoryFrozen)
	_, err = f.CreateMethodFromDescriptors("Lcom/example/Late;", "run", "V", nil)
	assert.ErrorIs(t, err, ErrFactoryFrozen)
}

// TestCreateString_Concurrent hammers one value from many goroutines
// and verifies a single canonical instance results.
func TestCreateString_Concurrent(t *testing.T) {
	f := NewFactory()

	const goroutines = 32
	results := make([]*String, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := f.CreateString("contended")
			assert.NoError(t, err)
			results[i] = s
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, results[0], results[i], "goroutine %d got a different instance", i)
	}
}

// TestCreateMethod_ConcurrentDistinct interns many distinct methods in
// parallel and verifies counts are exact.
func TestCreateMethod_ConcurrentDistinct(t *testing.T) {
	f := NewFactory()
	methodsBefore := f.Count(CategoryMethod)

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.CreateMethodFromDescriptors(
				"Lcom/example/Foo;", fmt.Sprintf("m%d", i), "V", nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, methodsBefore+n, f.Count(CategoryMethod))
}
