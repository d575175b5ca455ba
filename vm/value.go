// Copyright The Raft-VM Authors
// This file is part of Raft-VM.
//
// Raft-VM is free software: you can redistribute it and/or modify it under
// the terms of the GNU Lesser General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.
//
// Raft-VM is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE. See the GNU Lesser General Public
// License for more details.

// Package vm implements the raft-vm stack machine: tagged values, a
// reference-counted heap, and the instruction interpreter that ties them
// together with a bounded-mailbox actor runtime.
package vm

import (
	"fmt"
	"math"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindInteger Kind = iota
	KindFloat
	KindBoolean
	KindReference
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindBoolean:
		return "Boolean"
	case KindReference:
		return "Reference"
	case KindNull:
		return "Null"
	default:
		return "Unknown"
	}
}

// Value is the VM's copyable scalar type: an immutable tagged union over
// Integer, Float, Boolean, Reference and Null.
type Value struct {
	kind Kind
	i    int32
	f    float64
	b    bool
	ref  Address
}

// Null is the sentinel absence-of-value.
var Null = Value{kind: KindNull}

// Int builds an Integer value.
func Int(i int32) Value { return Value{kind: KindInteger, i: i} }

// Float builds a Float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool builds a Boolean value.
func Bool(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Ref builds a Reference value pointing at a heap address.
func Ref(addr Address) Value { return Value{kind: KindReference, ref: addr} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsReference reports whether v holds a heap Reference.
func (v Value) IsReference() bool { return v.kind == KindReference }

// AsInt returns the Integer payload and whether v held one.
func (v Value) AsInt() (int32, bool) { return v.i, v.kind == KindInteger }

// AsFloat returns the Float payload and whether v held one.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsBool returns the Boolean payload and whether v held one.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBoolean }

// AsReference returns the heap Address and whether v held one.
func (v Value) AsReference() (Address, bool) { return v.ref, v.kind == KindReference }

// Equal reports structural equality between two Values.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindInteger:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindBoolean:
		return v.b == other.b
	case KindReference:
		return v.ref == other.ref
	case KindNull:
		return true
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return fmt.Sprintf("Integer(%d)", v.i)
	case KindFloat:
		return fmt.Sprintf("Float(%g)", v.f)
	case KindBoolean:
		return fmt.Sprintf("Boolean(%t)", v.b)
	case KindReference:
		return fmt.Sprintf("Reference(%d)", v.ref)
	case KindNull:
		return "Null"
	default:
		return "Invalid"
	}
}

// Add implements v + other for matching numeric pairs; mixed or non-numeric
// operands fault as TypeMismatch.
func (v Value) Add(other Value) (Value, error) {
	switch {
	case v.kind == KindInteger && other.kind == KindInteger:
		return Int(v.i + other.i), nil
	case v.kind == KindFloat && other.kind == KindFloat:
		return Float(v.f + other.f), nil
	default:
		return Value{}, typeMismatch("Add")
	}
}

// Sub implements v - other.
func (v Value) Sub(other Value) (Value, error) {
	switch {
	case v.kind == KindInteger && other.kind == KindInteger:
		return Int(v.i - other.i), nil
	case v.kind == KindFloat && other.kind == KindFloat:
		return Float(v.f - other.f), nil
	default:
		return Value{}, typeMismatch("Sub")
	}
}

// Mul implements v * other.
func (v Value) Mul(other Value) (Value, error) {
	switch {
	case v.kind == KindInteger && other.kind == KindInteger:
		return Int(v.i * other.i), nil
	case v.kind == KindFloat && other.kind == KindFloat:
		return Float(v.f * other.f), nil
	default:
		return Value{}, typeMismatch("Mul")
	}
}

// Div implements v / other; division by zero faults as DivisionByZero on both
// the Integer and Float paths.
func (v Value) Div(other Value) (Value, error) {
	switch {
	case v.kind == KindInteger && other.kind == KindInteger:
		if other.i == 0 {
			return Value{}, ErrDivisionByZero
		}
		return Int(v.i / other.i), nil
	case v.kind == KindFloat && other.kind == KindFloat:
		if other.f == 0 {
			return Value{}, ErrDivisionByZero
		}
		return Float(v.f / other.f), nil
	default:
		return Value{}, typeMismatch("Div")
	}
}

// Mod implements v % other; Integer-only, faults DivisionByZero on zero
// divisor and TypeMismatch on any non-Integer pairing.
func (v Value) Mod(other Value) (Value, error) {
	if v.kind == KindInteger && other.kind == KindInteger {
		if other.i == 0 {
			return Value{}, ErrDivisionByZero
		}
		return Int(v.i % other.i), nil
	}
	return Value{}, typeMismatch("Mod")
}

// Neg implements unary negation; faults TypeMismatch on non-numeric values.
func (v Value) Neg() (Value, error) {
	switch v.kind {
	case KindInteger:
		return Int(-v.i), nil
	case KindFloat:
		return Float(-v.f), nil
	default:
		return Value{}, typeMismatch("Neg")
	}
}

// Exp implements v ^ other. Integer base with a non-negative Integer exponent
// yields an Integer; Integer base with a negative Integer exponent yields
// a Float (exact int-to-float power); Float x Float yields Float; every
// other pairing faults TypeMismatch.
func (v Value) Exp(other Value) (Value, error) {
	if v.kind == KindInteger && other.kind == KindInteger {
		if other.i >= 0 {
			return Int(intPow(v.i, other.i)), nil
		}
		return Float(math.Pow(float64(v.i), float64(other.i))), nil
	}
	if v.kind == KindFloat && other.kind == KindFloat {
		return Float(math.Pow(v.f, other.f)), nil
	}
	return Value{}, typeMismatch("Exp")
}

func intPow(base, exp int32) int32 {
	result := int32(1)
	for i := int32(0); i < exp; i++ {
		result *= base
	}
	return result
}
