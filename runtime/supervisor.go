// Copyright The Raft-VM Authors
// This file is part of Raft-VM.
//
// Raft-VM is free software: you can redistribute it and/or modify it under
// the terms of the GNU Lesser General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.

package runtime

import "github.com/probelang/raftvm/vm"

// Supervisor wraps a Supervisor heap object together with the host heap
// that owns it, giving callers a Track method to register children. This
// is the only way a child table is populated — no VM has a back-pointer
// to a SupervisorObject that might contain it, so no opcode can append to
// one (see REDESIGN 1 in SPEC_FULL.md).
type Supervisor struct {
	VM       *vm.VM
	Sender   *vm.MailboxSender
	Address  vm.Address
	hostHeap *vm.Heap
	object   *vm.SupervisorObject
}

// NewSupervisor allocates a Supervisor heap object into hostHeap and
// returns a handle to it. The caller is responsible for pushing a
// Reference to Address onto some VM's stack if bytecode needs to address
// it directly (the allocation itself starts at reference count zero, per
// spec §4.B).
func NewSupervisor(bytecode []vm.Instruction, hostHeap *vm.Heap, strategy vm.RestartStrategy) *Supervisor {
	child, sender := vm.New(bytecode, nil)
	obj := &vm.SupervisorObject{VM: child, Sender: sender, Strategy: strategy}
	addr := hostHeap.Allocate(obj)
	return &Supervisor{VM: child, Sender: sender, Address: addr, hostHeap: hostHeap, object: obj}
}

// Track spawns a new child VM from childBytecode and appends it to the
// supervisor's child table, returning the child's index for use with
// RestartChild.
func (s *Supervisor) Track(childBytecode []vm.Instruction) int {
	childVM, childSender := vm.New(childBytecode, nil)
	s.object.Children = append(s.object.Children, vm.ChildRecord{
		Instructions: childBytecode,
		VM:           childVM,
		Sender:       childSender,
	})
	return len(s.object.Children) - 1
}

// SetStrategy mutates the supervisor's restart strategy directly, without
// going through the SetStrategy opcode on some VM's stack.
func (s *Supervisor) SetStrategy(strategy vm.RestartStrategy) {
	s.object.Strategy = strategy
}

// RestartChild re-seeds child i (and siblings, per strategy), implementing
// REDESIGN 1's materialized one-for-one/one-for-all/rest-for-one semantics
// directly against the supervisor's own child table.
func (s *Supervisor) RestartChild(i uint64) error {
	return vm.RestartSupervisorChild(s.object, i)
}

// Children returns the supervisor's current child table.
func (s *Supervisor) Children() []vm.ChildRecord {
	return s.object.Children
}
