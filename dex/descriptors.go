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

// Well-known member names.
const (
	// InstanceInitializerName is the JVM name of instance constructors.
	InstanceInitializerName = "<init>"

	// ClassInitializerName is the JVM name of static initializers.
	ClassInitializerName = "<clinit>"
)

// WellKnownItems holds the descriptors and types every program references,
// interned once at factory construction so passes can compare against them
// by pointer.
type WellKnownItems struct {
	BooleanDescriptor *String
	ByteDescriptor    *String
	CharDescriptor    *String
	DoubleDescriptor  *String
	FloatDescriptor   *String
	IntDescriptor     *String
	LongDescriptor    *String
	ShortDescriptor   *String
	VoidDescriptor    *String

	BooleanType *Type
	ByteType    *Type
	CharType    *Type
	DoubleType  *Type
	FloatType   *Type
	IntType     *Type
	LongType    *Type
	ShortType   *Type
	VoidType    *Type

	BoxedBooleanType *Type
	BoxedByteType    *Type
	BoxedCharType    *Type
	BoxedDoubleType  *Type
	BoxedFloatType   *Type
	BoxedIntType     *Type
	BoxedLongType    *Type
	BoxedShortType   *Type
	BoxedNumberType  *Type

	ObjectType *Type
	StringType *Type
	ClassType  *Type

	ConstructorName      *String
	ClassConstructorName *String
	ThisName             *String
}

// internWellKnown populates the well-known table. Runs before the factory
// is published, so the unfrozen-phase creators cannot fail.
func (f *Factory) internWellKnown() {
	str := func(v string) *String {
		s, _ := f.CreateString(v)
		return s
	}
	typ := func(descriptor string) *Type {
		t, _ := f.CreateType(descriptor)
		return t
	}

	w := &f.WellKnown

	w.BooleanDescriptor = str("Z")
	w.ByteDescriptor = str("B")
	w.CharDescriptor = str("C")
	w.DoubleDescriptor = str("D")
	w.FloatDescriptor = str("F")
	w.IntDescriptor = str("I")
	w.LongDescriptor = str("J")
	w.ShortDescriptor = str("S")
	w.VoidDescriptor = str("V")

	w.BooleanType = typ("Z")
	w.ByteType = typ("B")
	w.CharType = typ("C")
	w.DoubleType = typ("D")
	w.FloatType = typ("F")
	w.IntType = typ("I")
	w.LongType = typ("J")
	w.ShortType = typ("S")
	w.VoidType = typ("V")

	w.BoxedBooleanType = typ("Ljava/lang/Boolean;")
	w.BoxedByteType = typ("Ljava/lang/Byte;")
	w.BoxedCharType = typ("Ljava/lang/Character;")
	w.BoxedDoubleType = typ("Ljava/lang/Double;")
	w.BoxedFloatType = typ("Ljava/lang/Float;")
	w.BoxedIntType = typ("Ljava/lang/Integer;")
	w.BoxedLongType = typ("Ljava/lang/Long;")
	w.BoxedShortType = typ("Ljava/lang/Short;")
	w.BoxedNumberType = typ("Ljava/lang/Number;")

	w.ObjectType = typ("Ljava/lang/Object;")
	w.StringType = typ("Ljava/lang/String;")
	w.ClassType = typ("Ljava/lang/Class;")

	w.ConstructorName = str(InstanceInitializerName)
	w.ClassConstructorName = str(ClassInitializerName)
	w.ThisName = str("this")
}
