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

	"github.com/inconshreveable/log15"

	"github.com/probelang/raftvm/internal/rlog"
)

// Address identifies a single allocation on a VM's Heap. Addresses are
// assigned monotonically and are never reused, even after collection.
type Address uint64

// ObjectKind tags the variant held by a HeapObject.
type ObjectKind uint8

const (
	ObjectArray ObjectKind = iota
	ObjectString
	ObjectModule
	ObjectNativeFunction
	ObjectActor
	ObjectSupervisor
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectArray:
		return "Array"
	case ObjectString:
		return "String"
	case ObjectModule:
		return "Module"
	case ObjectNativeFunction:
		return "NativeFunction"
	case ObjectActor:
		return "Actor"
	case ObjectSupervisor:
		return "Supervisor"
	default:
		return "Unknown"
	}
}

// HeapObject is any value large or identity-bearing enough to live on the
// heap rather than inline in a Value. Every variant carries its own
// reference count, bumped and dropped only through the owning Heap.
type HeapObject interface {
	Kind() ObjectKind
	refCount() uint64
	setRefCount(uint64)
}

type objectHeader struct {
	rc uint64
}

func (h *objectHeader) refCount() uint64     { return h.rc }
func (h *objectHeader) setRefCount(n uint64) { h.rc = n }

// ArrayObject is a heap-allocated, growable sequence of Values.
type ArrayObject struct {
	objectHeader
	Elements []Value
}

func (o *ArrayObject) Kind() ObjectKind { return ObjectArray }

// StringObject is a heap-allocated, immutable text value.
type StringObject struct {
	objectHeader
	Text string
}

func (o *StringObject) Kind() ObjectKind { return ObjectString }

// ModuleObject is a named bundle of exported Values. The assembler has no
// module syntax and no instruction allocates or reads one.
type ModuleObject struct {
	objectHeader
	Name    string
	Exports map[string]Value
}

func (o *ModuleObject) Kind() ObjectKind { return ObjectModule }

// NativeFn is the Go-side implementation of a NativeFunction heap object:
// a fixed-arity function from Values to a Value-or-error.
type NativeFn func(args []Value) (Value, error)

// NativeFunctionObject wraps a host-provided function so it can be called
// through the ordinary instruction set via its heap Address.
type NativeFunctionObject struct {
	objectHeader
	Name  string
	Arity int
	Fn    NativeFn
}

func (o *NativeFunctionObject) Kind() ObjectKind { return ObjectNativeFunction }

// ActorObject wraps a child VM spawned by SpawnActor, plus the sender half
// of the mailbox used to deliver it messages and a descriptor of the
// supervisor (if any) notified on its failure.
type ActorObject struct {
	objectHeader
	VM       *VM
	Sender   *MailboxSender
	Parent   Address // supervisor heap address, or 0 if unsupervised
	HasOwner bool
}

func (o *ActorObject) Kind() ObjectKind { return ObjectActor }

// SupervisorObject is an ActorObject that additionally owns a restart
// strategy and a table of the children it supervises.
type SupervisorObject struct {
	objectHeader
	VM       *VM
	Sender   *MailboxSender
	Strategy RestartStrategy
	Children []ChildRecord
}

func (o *SupervisorObject) Kind() ObjectKind { return ObjectSupervisor }

// ChildRecord is one entry in a Supervisor's child table: enough state to
// re-seed the child VM on restart without re-running the assembler.
type ChildRecord struct {
	Instructions []Instruction
	VM           *VM
	Sender       *MailboxSender
	Address      Address // child's heap address if the host records one; Track leaves it zero
}

// RestartStrategy selects how RestartChild treats a supervisor's other
// children when one of them is restarted.
type RestartStrategy uint8

const (
	// OneForOne restarts only the faulted child.
	OneForOne RestartStrategy = iota
	// OneForAll restarts every tracked child.
	OneForAll
	// RestForOne restarts the faulted child and every child registered
	// after it.
	RestForOne
)

func (s RestartStrategy) String() string {
	switch s {
	case OneForOne:
		return "one-for-one"
	case OneForAll:
		return "one-for-all"
	case RestForOne:
		return "rest-for-one"
	default:
		return "unknown"
	}
}

// Heap is the address-keyed store backing every VM instance. Objects are
// allocated with an initial reference count of zero; the first push of a
// Reference to them brings it to one. CollectGarbage sweeps everything
// whose count is zero.
type Heap struct {
	objects     map[Address]HeapObject
	nextAddress Address
	log         log15.Logger
}

// NewHeap returns an empty Heap.
func NewHeap() *Heap {
	return &Heap{
		objects: make(map[Address]HeapObject),
		log:     rlog.New("component", "heap"),
	}
}

// Allocate inserts obj with an initial reference count of zero and returns
// its fresh Address. The count starts at zero deliberately: whichever
// instruction pushes the first Reference to addr performs the first
// increment through the ordinary push discipline (see VM.pushValue).
func (h *Heap) Allocate(obj HeapObject) Address {
	addr := h.nextAddress
	obj.setRefCount(0)
	h.objects[addr] = obj
	h.nextAddress++
	h.log.Debug("allocated heap object", "address", addr, "kind", obj.Kind())
	return addr
}

// Get returns the object at addr, or ErrInvalidReference if none exists.
func (h *Heap) Get(addr Address) (HeapObject, error) {
	obj, ok := h.objects[addr]
	if !ok {
		h.log.Warn("invalid heap reference", "address", addr)
		return nil, fmt.Errorf("%w: address %d", ErrInvalidReference, addr)
	}
	return obj, nil
}

// RefCount reports the current reference count at addr, or an error if the
// address does not resolve.
func (h *Heap) RefCount(addr Address) (uint64, error) {
	obj, err := h.Get(addr)
	if err != nil {
		return 0, err
	}
	return obj.refCount(), nil
}

// IncrementRef bumps the reference count at addr by one.
func (h *Heap) IncrementRef(addr Address) error {
	obj, err := h.Get(addr)
	if err != nil {
		return err
	}
	obj.setRefCount(obj.refCount() + 1)
	return nil
}

// DecrementRef drops the reference count at addr by one, saturating at
// zero. It never removes the object itself; CollectGarbage does that.
func (h *Heap) DecrementRef(addr Address) error {
	obj, err := h.Get(addr)
	if err != nil {
		return err
	}
	if obj.refCount() > 0 {
		obj.setRefCount(obj.refCount() - 1)
	}
	return nil
}

// CollectGarbage removes every object whose reference count has reached
// zero. Actor and Supervisor objects release their mailbox sender before
// being dropped, which may close the corresponding mailbox (spec's "all
// senders dropped" closing rule, emulated via MailboxSender refcounting).
func (h *Heap) CollectGarbage() int {
	collected := 0
	for addr, obj := range h.objects {
		if obj.refCount() > 0 {
			continue
		}
		switch o := obj.(type) {
		case *ActorObject:
			if o.Sender != nil {
				o.Sender.Release()
			}
		case *SupervisorObject:
			if o.Sender != nil {
				o.Sender.Release()
			}
		}
		delete(h.objects, addr)
		collected++
	}
	if collected > 0 {
		h.log.Info("collected unreachable heap objects", "count", collected)
	}
	return collected
}

// Len reports the number of live objects, for tests and disassembly dumps.
func (h *Heap) Len() int { return len(h.objects) }
