// Copyright The Raft-VM Authors
// This file is part of Raft-VM.
//
// Raft-VM is free software: you can redistribute it and/or modify it under
// the terms of the GNU Lesser General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.

package vm

import (
	"fmt"

	"golang.org/x/crypto/sha3"
)

// builtinNatives lists the NativeFunction objects every VM is seeded with,
// in LoadNative index order. Grounded in lang/vm/vm_test.go's direct use
// of golang.org/x/crypto/sha3 in the teacher repository; index 0 is the
// only builtin so far, left open for more.
var builtinNatives = []struct {
	name  string
	arity int
	fn    func(h *Heap) NativeFn
}{
	{"sha3-256", 1, nativeSHA3_256},
}

// registerNatives seeds a freshly constructed VM's heap with the built-in
// NativeFunction objects and returns the LoadNative index -> heap address
// mapping the interpreter consults to resolve OpLoadNative.
func registerNatives(h *Heap) map[uint64]Address {
	addrs := make(map[uint64]Address, len(builtinNatives))
	for i, b := range builtinNatives {
		addr := h.Allocate(&NativeFunctionObject{
			Name:  b.name,
			Arity: b.arity,
			Fn:    b.fn(h),
		})
		addrs[uint64(i)] = addr
	}
	return addrs
}

// nativeSHA3_256 hashes the text of a heap String argument, allocating the
// hex-encoded digest as a fresh heap String and returning a Reference to
// it at refcount 0 — CallNative's ordinary pushValue gives it its first
// increment, matching every other heap-allocating instruction. Any other
// argument shape faults TypeMismatch.
func nativeSHA3_256(h *Heap) NativeFn {
	return func(args []Value) (Value, error) {
		if len(args) != 1 {
			return Value{}, typeMismatch("sha3-256: expected 1 argument")
		}
		addr, ok := args[0].AsReference()
		if !ok {
			return Value{}, typeMismatch("sha3-256: expected a String reference")
		}
		obj, err := h.Get(addr)
		if err != nil {
			return Value{}, err
		}
		str, ok := obj.(*StringObject)
		if !ok {
			return Value{}, typeMismatch("sha3-256: expected a String reference")
		}
		sum := sha3.Sum256([]byte(str.Text))
		result := h.Allocate(&StringObject{Text: fmt.Sprintf("%x", sum)})
		return Ref(result), nil
	}
}
