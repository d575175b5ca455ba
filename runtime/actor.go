// Copyright The Raft-VM Authors
// This file is part of Raft-VM.
//
// Raft-VM is free software: you can redistribute it and/or modify it under
// the terms of the GNU Lesser General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.

// Package runtime provides the host-facing ergonomics spec §4.F leaves to
// "a host program or test harness": a lightweight Actor/Supervisor wrapper
// around vm.VM and a Harness that steps several VMs concurrently.
// Grounded in original_source/src/runtime.rs.
package runtime

import "github.com/probelang/raftvm/vm"

// Actor is a lightweight wrapper around a VM that exposes its mailbox
// sender, mirroring original_source's runtime::Actor.
type Actor struct {
	VM     *vm.VM
	Sender *vm.MailboxSender
}

// NewActor constructs an unsupervised actor from bytecode.
func NewActor(bytecode []vm.Instruction) *Actor {
	v, sender := vm.New(bytecode, nil)
	return &Actor{VM: v, Sender: sender}
}

// Send delivers msg to the actor's mailbox, blocking if it is full.
func (a *Actor) Send(msg vm.Value) error {
	return a.Sender.Send(msg)
}

// Run executes the actor's VM until it halts or faults; a ReceiveMessage
// blocks until a message arrives or the mailbox closes.
func (a *Actor) Run() error {
	return a.VM.Run()
}

// Step advances the actor's VM by exactly one instruction.
func (a *Actor) Step() error {
	return a.VM.Step()
}
