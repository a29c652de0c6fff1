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
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// table is one lock-striped interning map. Reads take the read lock;
// a miss upgrades to the write lock and re-checks before installing,
// so insert-if-absent is atomic per key.
type table[K comparable, V Item] struct {
	mu    sync.RWMutex
	items map[K]V
}

func newTable[K comparable, V Item]() *table[K, V] {
	return &table[K, V]{items: make(map[K]V)}
}

func (t *table[K, V]) lookup(key K) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.items[key]
	return v, ok
}

// intern returns the canonical instance for key, constructing and
// installing one via create if absent. create runs under the write lock
// and must not re-enter the same table.
func (t *table[K, V]) intern(key K, create func() V) (V, bool) {
	t.mu.RLock()
	v, ok := t.items[key]
	t.mu.RUnlock()
	if ok {
		return v, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := t.items[key]; ok {
		return v, false
	}
	v = create()
	t.items[key] = v
	return v, true
}

func (t *table[K, V]) size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

// values returns a snapshot of the table's items.
func (t *table[K, V]) values() []V {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]V, 0, len(t.items))
	for _, v := range t.items {
		out = append(out, v)
	}
	return out
}

// Composite map keys. All components are canonical instances, so pointer
// comparison is value comparison.
type fieldKey struct {
	holder *Type
	typ    *Type
	name   *String
}

type protoKey struct {
	returnType *Type
	// parameters is the concatenation of the parameter descriptors.
	// Dex descriptors are self-delimiting, so the concatenation is
	// unambiguous.
	parameters string
}

type methodKey struct {
	holder *Type
	proto  *Proto
	name   *String
}

type handleKey struct {
	kind   MethodHandleKind
	target Member
}

type callSiteKey struct {
	name      *String
	proto     *Proto
	bootstrap *MethodHandle
	// args is the length-prefixed concatenation of the bootstrap
	// argument string forms.
	args string
}

// Factory is the canonical item interner.
//
// All CreateX operations are safe under arbitrary concurrent callers
// during the construction phase. Composite constructors intern their
// components first, then the composite, so shared substructure is never
// allocated twice.
//
// Thread Safety: safe for concurrent use; see the package documentation
// for the freeze protocol.
type Factory struct {
	frozen atomic.Bool

	strings       *table[string, *String]
	types         *table[*String, *Type]
	fields        *table[fieldKey, *Field]
	protos        *table[protoKey, *Proto]
	methods       *table[methodKey, *Method]
	callSites     *table[callSiteKey, *CallSite]
	methodHandles *table[handleKey, *MethodHandle]

	// Well-known items, interned at construction. See descriptors.go.
	WellKnown WellKnownItems
}

// NewFactory creates an empty factory with the well-known descriptor
// table pre-interned.
func NewFactory() *Factory {
	f := &Factory{
		strings:       newTable[string, *String](),
		types:         newTable[*String, *Type](),
		fields:        newTable[fieldKey, *Field](),
		protos:        newTable[protoKey, *Proto](),
		methods:       newTable[methodKey, *Method](),
		callSites:     newTable[callSiteKey, *CallSite](),
		methodHandles: newTable[handleKey, *MethodHandle](),
	}
	f.internWellKnown()
	return f
}

// Frozen reports whether Freeze has run.
func (f *Factory) Frozen() bool {
	return f.frozen.Load()
}

// CreateString interns a string value and returns its canonical instance.
func (f *Factory) CreateString(value string) (*String, error) {
	if f.frozen.Load() {
		return nil, ErrFactoryFrozen
	}
	s, created := f.strings.intern(value, func() *String {
		return &String{indexed: indexed{NotSorted}, value: value}
	})
	if created {
		recordItemInterned(CategoryString)
	}
	return s, nil
}

// LookupString returns the canonical instance for value, or nil if the
// value has never been interned. Lookups never create.
func (f *Factory) LookupString(value string) *String {
	s, _ := f.strings.lookup(value)
	return s
}

// CreateType interns the descriptor string and the type referring to it.
func (f *Factory) CreateType(descriptor string) (*Type, error) {
	s, err := f.CreateString(descriptor)
	if err != nil {
		return nil, err
	}
	return f.createType(s)
}

func (f *Factory) createType(descriptor *String) (*Type, error) {
	if f.frozen.Load() {
		return nil, ErrFactoryFrozen
	}
	t, created := f.types.intern(descriptor, func() *Type {
		return &Type{indexed: indexed{NotSorted}, descriptor: descriptor}
	})
	if created {
		recordItemInterned(CategoryType)
	}
	return t, nil
}

// LookupType returns the canonical type for descriptor, or nil if it has
// never been interned.
func (f *Factory) LookupType(descriptor string) *Type {
	s := f.LookupString(descriptor)
	if s == nil {
		return nil
	}
	t, _ := f.types.lookup(s)
	return t
}

// CreateField interns a field reference. holder and typ must be canonical
// instances from this factory.
func (f *Factory) CreateField(holder, typ *Type, name string) (*Field, error) {
	n, err := f.CreateString(name)
	if err != nil {
		return nil, err
	}
	fld, created := f.fields.intern(fieldKey{holder: holder, typ: typ, name: n}, func() *Field {
		return &Field{indexed: indexed{NotSorted}, holder: holder, typ: typ, name: n}
	})
	if created {
		recordItemInterned(CategoryField)
	}
	return fld, nil
}

// CreateProto interns a method prototype. The shorty is computed and
// interned as part of creation.
func (f *Factory) CreateProto(returnType *Type, parameters ...*Type) (*Proto, error) {
	shorty, err := f.CreateShorty(returnType, parameters)
	if err != nil {
		return nil, err
	}

	var params strings.Builder
	for _, p := range parameters {
		params.WriteString(p.String())
	}
	key := protoKey{returnType: returnType, parameters: params.String()}

	proto, created := f.protos.intern(key, func() *Proto {
		// Copy so callers cannot alias the canonical parameter list.
		owned := make([]*Type, len(parameters))
		copy(owned, parameters)
		return &Proto{
			indexed:    indexed{NotSorted},
			shorty:     shorty,
			returnType: returnType,
			parameters: owned,
		}
	})
	if created {
		recordItemInterned(CategoryProto)
	}
	return proto, nil
}

// CreateShorty interns the shorty descriptor for a return type and
// parameter list: the return shorty character followed by one character
// per parameter.
func (f *Factory) CreateShorty(returnType *Type, parameters []*Type) (*String, error) {
	var b strings.Builder
	b.WriteByte(returnType.Shorty())
	for _, p := range parameters {
		b.WriteByte(p.Shorty())
	}
	return f.CreateString(b.String())
}

// CreateMethod interns a method reference. holder and proto must be
// canonical instances from this factory.
func (f *Factory) CreateMethod(holder *Type, proto *Proto, name string) (*Method, error) {
	n, err := f.CreateString(name)
	if err != nil {
		return nil, err
	}
	m, created := f.methods.intern(methodKey{holder: holder, proto: proto, name: n}, func() *Method {
		return &Method{indexed: indexed{NotSorted}, holder: holder, proto: proto, name: n}
	})
	if created {
		recordItemInterned(CategoryMethod)
	}
	return m, nil
}

// CreateMethodFromDescriptors is a convenience constructor that interns
// every component from raw descriptor strings, then the method itself.
func (f *Factory) CreateMethodFromDescriptors(holderDescriptor, name, returnDescriptor string, parameterDescriptors []string) (*Method, error) {
	holder, err := f.CreateType(holderDescriptor)
	if err != nil {
		return nil, err
	}
	returnType, err := f.CreateType(returnDescriptor)
	if err != nil {
		return nil, err
	}
	parameters := make([]*Type, len(parameterDescriptors))
	for i, d := range parameterDescriptors {
		if parameters[i], err = f.CreateType(d); err != nil {
			return nil, err
		}
	}
	proto, err := f.CreateProto(returnType, parameters...)
	if err != nil {
		return nil, err
	}
	return f.CreateMethod(holder, proto, name)
}

// LookupMethod returns the canonical method for the given components, or
// nil if it has never been interned.
func (f *Factory) LookupMethod(holder *Type, proto *Proto, name string) *Method {
	n := f.LookupString(name)
	if n == nil {
		return nil
	}
	m, _ := f.methods.lookup(methodKey{holder: holder, proto: proto, name: n})
	return m
}

// CreateMethodHandle interns a method handle for the given kind and
// canonical field or method target.
func (f *Factory) CreateMethodHandle(kind MethodHandleKind, target Member) (*MethodHandle, error) {
	if f.frozen.Load() {
		return nil, ErrFactoryFrozen
	}
	h, created := f.methodHandles.intern(handleKey{kind: kind, target: target}, func() *MethodHandle {
		return &MethodHandle{indexed: indexed{NotSorted}, kind: kind, target: target}
	})
	if created {
		recordItemInterned(CategoryMethodHandle)
	}
	return h, nil
}

// CreateCallSite interns an invoke-dynamic call site. proto, bootstrap
// and args must be canonical instances from this factory.
func (f *Factory) CreateCallSite(methodName string, proto *Proto, bootstrap *MethodHandle, args ...Item) (*CallSite, error) {
	name, err := f.CreateString(methodName)
	if err != nil {
		return nil, err
	}

	// Length-prefix each component so arg values cannot collide with
	// component boundaries.
	var argKey strings.Builder
	for _, a := range args {
		s := a.String()
		argKey.WriteString(strconv.Itoa(len(s)))
		argKey.WriteByte(':')
		argKey.WriteString(s)
	}
	key := callSiteKey{name: name, proto: proto, bootstrap: bootstrap, args: argKey.String()}

	cs, created := f.callSites.intern(key, func() *CallSite {
		owned := make([]Item, len(args))
		copy(owned, args)
		return &CallSite{
			indexed:     indexed{NotSorted},
			methodName:  name,
			methodProto: proto,
			bootstrap:   bootstrap,
			args:        owned,
		}
	})
	if created {
		recordItemInterned(CategoryCallSite)
	}
	return cs, nil
}

// IsConstructor reports whether the method is an instance initializer.
// Canonical identity makes this a pointer comparison.
func (f *Factory) IsConstructor(m *Method) bool {
	return m.name == f.WellKnown.ConstructorName
}

// IsClassInitializer reports whether the method is a class initializer.
func (f *Factory) IsClassInitializer(m *Method) bool {
	return m.name == f.WellKnown.ClassConstructorName
}

// Count returns the number of interned items in the given category.
func (f *Factory) Count(c Category) int {
	switch c {
	case CategoryString:
		return f.strings.size()
	case CategoryType:
		return f.types.size()
	case CategoryField:
		return f.fields.size()
	case CategoryProto:
		return f.protos.size()
	case CategoryMethod:
		return f.methods.size()
	case CategoryCallSite:
		return f.callSites.size()
	case CategoryMethodHandle:
		return f.methodHandles.size()
	default:
		return 0
	}
}

// Items returns a snapshot of the interned items in the given category.
// After Freeze the snapshot is returned in serialization-index order;
// before Freeze the order is unspecified.
func (f *Factory) Items(c Category) []Item {
	var out []Item
	switch c {
	case CategoryString:
		out = toItems(f.strings.values())
	case CategoryType:
		out = toItems(f.types.values())
	case CategoryField:
		out = toItems(f.fields.values())
	case CategoryProto:
		out = toItems(f.protos.values())
	case CategoryMethod:
		out = toItems(f.methods.values())
	case CategoryCallSite:
		out = toItems(f.callSites.values())
	case CategoryMethodHandle:
		out = toItems(f.methodHandles.values())
	}
	if f.frozen.Load() {
		sortByIndex(out)
	}
	return out
}

func toItems[V Item](values []V) []Item {
	out := make([]Item, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
