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
	"fmt"
	"strings"
)

// NotSorted is the sorted index carried by every item before the owning
// factory has been frozen. Reading an index equal to NotSorted means the
// serialization order has not been assigned yet.
const NotSorted int32 = -1

// Category identifies one interning table within a Factory.
type Category int

const (
	// CategoryString is the table of interned string values.
	CategoryString Category = iota

	// CategoryType is the table of type references.
	CategoryType

	// CategoryField is the table of field references.
	CategoryField

	// CategoryProto is the table of method prototypes (shorty, return, params).
	CategoryProto

	// CategoryMethod is the table of method references.
	CategoryMethod

	// CategoryCallSite is the table of invoke-dynamic call sites.
	CategoryCallSite

	// CategoryMethodHandle is the table of method handles.
	CategoryMethodHandle

	// NumCategories is the total number of interning tables (for array sizing).
	NumCategories
)

// String returns the string representation of the Category.
func (c Category) String() string {
	switch c {
	case CategoryString:
		return "string"
	case CategoryType:
		return "type"
	case CategoryField:
		return "field"
	case CategoryProto:
		return "proto"
	case CategoryMethod:
		return "method"
	case CategoryCallSite:
		return "callsite"
	case CategoryMethodHandle:
		return "methodhandle"
	default:
		return "unknown"
	}
}

// Item is a canonical interned value representing a named program element.
//
// Items are immutable and compared by value at interning time; once a
// Factory has handed out an item, pointer equality is value equality for
// the factory's lifetime. The sorted index is valid only after the factory
// has been frozen.
//
// The interface is sealed: only types in this package implement it, which
// keeps the index-assignment protocol internal to the Factory.
type Item interface {
	// Category identifies the interning table this item belongs to.
	Category() Category

	// SortedIndex returns the dense serialization index assigned at freeze,
	// or NotSorted before the factory has been frozen.
	SortedIndex() int32

	// String returns an unambiguous human-readable form of the item.
	String() string

	setSortedIndex(i int32)
	resetSortedIndex()
}

// indexed carries the post-freeze serialization index shared by all items.
//
// The index is written by exactly one goroutine during Freeze (a
// single-writer barrier enforced by call-site protocol) and is read-only
// afterwards, so no synchronization is needed on the field itself.
type indexed struct {
	sortedIndex int32
}

func (i *indexed) SortedIndex() int32 { return i.sortedIndex }

func (i *indexed) setSortedIndex(idx int32) { i.sortedIndex = idx }

func (i *indexed) resetSortedIndex() { i.sortedIndex = NotSorted }

// Member is an item that can be the target of a method handle:
// a field or a method reference.
type Member interface {
	Item
	isMember()
}

// String is an interned string value (names, descriptors, shorties).
type String struct {
	indexed
	value string
}

// Category implements Item.
func (s *String) Category() Category { return CategoryString }

// Value returns the raw string value.
func (s *String) Value() string { return s.value }

// String implements Item.
func (s *String) String() string { return s.value }

// Type is an interned type reference, identified by its descriptor
// (e.g. "I", "[C", "Ljava/lang/Object;").
type Type struct {
	indexed
	descriptor *String
}

// Category implements Item.
func (t *Type) Category() Category { return CategoryType }

// Descriptor returns the canonical descriptor string of the type.
func (t *Type) Descriptor() *String { return t.descriptor }

// String implements Item.
func (t *Type) String() string { return t.descriptor.value }

// IsPrimitive reports whether the type is a primitive (including void).
func (t *Type) IsPrimitive() bool {
	return len(t.descriptor.value) == 1
}

// IsArray reports whether the type is an array type.
func (t *Type) IsArray() bool {
	return strings.HasPrefix(t.descriptor.value, "[")
}

// IsReference reports whether the type is a class or array type.
func (t *Type) IsReference() bool {
	return !t.IsPrimitive()
}

// Shorty returns the single-character shorty form of the type: the
// descriptor's leading character, with all reference types collapsed to 'L'.
func (t *Type) Shorty() byte {
	c := t.descriptor.value[0]
	if c == '[' {
		return 'L'
	}
	return c
}

// Field is an interned field reference: holder type, field type and name.
type Field struct {
	indexed
	holder *Type
	typ    *Type
	name   *String
}

// Category implements Item.
func (f *Field) Category() Category { return CategoryField }

// Holder returns the type declaring the field.
func (f *Field) Holder() *Type { return f.holder }

// Type returns the field's value type.
func (f *Field) Type() *Type { return f.typ }

// Name returns the field name.
func (f *Field) Name() *String { return f.name }

// String implements Item using the dex member notation
// "Lcom/example/Foo;->bar:I".
func (f *Field) String() string {
	return f.holder.String() + "->" + f.name.value + ":" + f.typ.String()
}

func (f *Field) isMember() {}

// Proto is an interned method prototype: shorty, return type and
// parameter types, independent of any holder or name.
type Proto struct {
	indexed
	shorty     *String
	returnType *Type
	parameters []*Type
}

// Category implements Item.
func (p *Proto) Category() Category { return CategoryProto }

// Shorty returns the shorty descriptor of the prototype.
func (p *Proto) Shorty() *String { return p.shorty }

// ReturnType returns the return type.
func (p *Proto) ReturnType() *Type { return p.returnType }

// Parameters returns the parameter types. The returned slice must not be
// mutated; protos are shared canonical instances.
func (p *Proto) Parameters() []*Type { return p.parameters }

// String implements Item using the dex notation "(ILjava/lang/String;)V".
func (p *Proto) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, param := range p.parameters {
		b.WriteString(param.String())
	}
	b.WriteByte(')')
	b.WriteString(p.returnType.String())
	return b.String()
}

// Method is an interned method reference: holder type, prototype and name.
type Method struct {
	indexed
	holder *Type
	proto  *Proto
	name   *String
}

// Category implements Item.
func (m *Method) Category() Category { return CategoryMethod }

// Holder returns the type declaring the method.
func (m *Method) Holder() *Type { return m.holder }

// Proto returns the method prototype.
func (m *Method) Proto() *Proto { return m.proto }

// Name returns the method name.
func (m *Method) Name() *String { return m.name }

// String implements Item using the dex member notation
// "Lcom/example/Foo;->bar(I)V".
func (m *Method) String() string {
	return m.holder.String() + "->" + m.name.value + m.proto.String()
}

func (m *Method) isMember() {}

// MethodHandleKind identifies the operation a method handle performs.
type MethodHandleKind int

const (
	// HandleStaticPut writes a static field.
	HandleStaticPut MethodHandleKind = iota

	// HandleStaticGet reads a static field.
	HandleStaticGet

	// HandleInstancePut writes an instance field.
	HandleInstancePut

	// HandleInstanceGet reads an instance field.
	HandleInstanceGet

	// HandleInvokeStatic invokes a static method.
	HandleInvokeStatic

	// HandleInvokeInstance invokes a virtual method.
	HandleInvokeInstance

	// HandleInvokeConstructor invokes a constructor.
	HandleInvokeConstructor

	// HandleInvokeDirect invokes a private or super method.
	HandleInvokeDirect

	// HandleInvokeInterface invokes an interface method.
	HandleInvokeInterface
)

// String returns the string representation of the MethodHandleKind.
func (k MethodHandleKind) String() string {
	switch k {
	case HandleStaticPut:
		return "static-put"
	case HandleStaticGet:
		return "static-get"
	case HandleInstancePut:
		return "instance-put"
	case HandleInstanceGet:
		return "instance-get"
	case HandleInvokeStatic:
		return "invoke-static"
	case HandleInvokeInstance:
		return "invoke-instance"
	case HandleInvokeConstructor:
		return "invoke-constructor"
	case HandleInvokeDirect:
		return "invoke-direct"
	case HandleInvokeInterface:
		return "invoke-interface"
	default:
		return "unknown"
	}
}

// IsFieldHandle reports whether the kind targets a field.
func (k MethodHandleKind) IsFieldHandle() bool {
	return k >= HandleStaticPut && k <= HandleInstanceGet
}

// MethodHandle is an interned method handle: a kind plus its canonical
// field or method target.
type MethodHandle struct {
	indexed
	kind   MethodHandleKind
	target Member
}

// Category implements Item.
func (h *MethodHandle) Category() Category { return CategoryMethodHandle }

// Kind returns the handle kind.
func (h *MethodHandle) Kind() MethodHandleKind { return h.kind }

// Target returns the canonical field or method the handle refers to.
func (h *MethodHandle) Target() Member { return h.target }

// String implements Item.
func (h *MethodHandle) String() string {
	return h.kind.String() + "@" + h.target.String()
}

// CallSite is an interned invoke-dynamic call site: method name,
// prototype, bootstrap method handle and bootstrap arguments.
type CallSite struct {
	indexed
	methodName  *String
	methodProto *Proto
	bootstrap   *MethodHandle
	args        []Item
}

// Category implements Item.
func (c *CallSite) Category() Category { return CategoryCallSite }

// MethodName returns the dynamic method name.
func (c *CallSite) MethodName() *String { return c.methodName }

// MethodProto returns the dynamic method prototype.
func (c *CallSite) MethodProto() *Proto { return c.methodProto }

// Bootstrap returns the bootstrap method handle.
func (c *CallSite) Bootstrap() *MethodHandle { return c.bootstrap }

// BootstrapArgs returns the bootstrap arguments. The returned slice must
// not be mutated; call sites are shared canonical instances.
func (c *CallSite) BootstrapArgs() []Item { return c.args }

// String implements Item.
func (c *CallSite) String() string {
	return fmt.Sprintf("callsite{%s%s, %s, %d args}",
		c.methodName.value, c.methodProto.String(), c.bootstrap.String(), len(c.args))
}
