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

	"github.com/google/uuid"
	"github.com/inconshreveable/log15"

	"github.com/probelang/raftvm/internal/rlog"
)

// State is one of the interpreter dispatch states named in spec §4.D.
type State uint8

const (
	StateRunning State = iota
	StateSuspendedAwaitingMessage
	StateHalted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateSuspendedAwaitingMessage:
		return "SUSPENDED_AWAITING_MESSAGE"
	case StateHalted:
		return "HALTED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// FaultNotifier is called when a VM constructed with it fails a step.
// Step always passes 0: a VM holds no record of its own address in a
// parent's heap, so the argument does not identify the child.
type FaultNotifier func(childAddress Address)

// VM owns one ExecutionContext, one Heap, and the receive half of its own
// mailbox, plus the FaultNotifier it was constructed with, if any.
// SpawnActor, SpawnSupervisor and runtime.Supervisor.Track construct their
// children without one.
type VM struct {
	ctx             *ExecutionContext
	heap            *Heap
	mailbox         *Mailbox
	sender          *MailboxSender
	natives         map[uint64]Address
	supervisor      FaultNotifier
	state           State
	id              string
	log             log15.Logger
	mailboxCapacity int
	defaultStrategy RestartStrategy
}

// Options carries the host-configurable knobs a VM is built with —
// internal/config.Config's MailboxCapacity and DefaultStrategy flow
// through here, inherited by every child a VM spawns.
type Options struct {
	// MailboxCapacity sizes this VM's own mailbox, and every child
	// mailbox it spawns. Zero means DefaultMailboxCapacity.
	MailboxCapacity int

	// DefaultStrategy is the restart strategy a freshly spawned
	// Supervisor starts with, before any SetStrategy instruction runs.
	DefaultStrategy RestartStrategy
}

// New constructs a VM owning bytecode, paired with the sender half of its
// mailbox, using DefaultMailboxCapacity and OneForOne. supervisor may be
// nil for an unsupervised (top-level) VM.
func New(bytecode []Instruction, supervisor FaultNotifier) (*VM, *MailboxSender) {
	return NewWithOptions(bytecode, supervisor, Options{
		MailboxCapacity: DefaultMailboxCapacity,
		DefaultStrategy: OneForOne,
	})
}

// NewWithOptions is New with explicit host-configured knobs, used by
// cmd/raftvm once it has loaded internal/config.Config.
func NewWithOptions(bytecode []Instruction, supervisor FaultNotifier, opts Options) (*VM, *MailboxSender) {
	capacity := opts.MailboxCapacity
	if capacity <= 0 {
		capacity = DefaultMailboxCapacity
	}
	mailbox, sender := NewMailbox(capacity)
	id := uuid.NewString()
	v := &VM{
		ctx:             NewExecutionContext(bytecode),
		heap:            NewHeap(),
		mailbox:         mailbox,
		supervisor:      supervisor,
		state:           StateRunning,
		id:              id,
		log:             rlog.New("component", "vm", "vm_id", id),
		mailboxCapacity: capacity,
		defaultStrategy: opts.DefaultStrategy,
	}
	v.natives = registerNatives(v.heap)
	v.log.Info("initializing VM", "instructions", len(bytecode), "mailbox_capacity", capacity)
	return v, sender
}

// State reports the VM's current dispatch state.
func (v *VM) State() State { return v.state }

// Heap exposes the VM's heap for inspection (disassembly, tests).
func (v *VM) Heap() *Heap { return v.heap }

// Context exposes the VM's execution context for inspection.
func (v *VM) Context() *ExecutionContext { return v.ctx }

// Mailbox exposes the receive half of this VM's mailbox, e.g. for a
// harness that wants to step ReceiveMessage only when it knows a message
// is already pending.
func (v *VM) Mailbox() *Mailbox { return v.mailbox }

// pushValue transfers ownership of v onto the operand stack, incrementing
// the heap reference count if v is a Reference. This is the ownership-
// transfer helper spec §9 calls out as the correctness crux; every
// instruction that moves a Value must go through it or popValue.
func (v *VM) pushValue(val Value) error {
	if addr, ok := val.AsReference(); ok {
		if err := v.heap.IncrementRef(addr); err != nil {
			return err
		}
	}
	v.ctx.stackPush(val)
	return nil
}

// popValue transfers ownership of the top of stack to the caller,
// decrementing the heap reference count if it held a Reference.
func (v *VM) popValue(site string) (Value, error) {
	val, err := v.ctx.stackPop(site)
	if err != nil {
		return Value{}, err
	}
	if addr, ok := val.AsReference(); ok {
		if derr := v.heap.DecrementRef(addr); derr != nil {
			return Value{}, derr
		}
	}
	return val, nil
}

// Run executes instructions from the current IP until it reaches the end
// of the instruction vector or faults. ReceiveMessage blocks on the
// mailbox channel, so while it waits the VM is in state
// SUSPENDED_AWAITING_MESSAGE and Run does not return until the message
// arrives or the mailbox closes.
func (v *VM) Run() error {
	if len(v.ctx.Bytecode) == 0 {
		v.log.Warn("attempted to run VM with empty bytecode")
		v.state = StateFailed
		return ErrNoBytecode
	}
	for v.ctx.IP < len(v.ctx.Bytecode) {
		if err := v.Step(); err != nil {
			return err
		}
	}
	v.state = StateHalted
	v.log.Info("VM execution completed successfully")
	return nil
}

// Step executes exactly one instruction, updating state on fault.
func (v *VM) Step() error {
	if err := v.ctx.Step(v.heap, v); err != nil {
		v.log.Error("execution error", "ip", v.ctx.IP, "err", err)
		v.state = StateFailed
		v.notifyFailure()
		return err
	}
	return nil
}

func (v *VM) notifyFailure() {
	if v.supervisor == nil {
		return
	}
	v.supervisor(0)
}

// HeapRefCount is a test/observer hook exposing a heap address's current
// reference count.
func (v *VM) HeapRefCount(addr Address) (uint64, error) {
	return v.heap.RefCount(addr)
}

// CollectGarbage delegates to the heap; safe to call at any quiescent
// point between steps.
func (v *VM) CollectGarbage() int {
	return v.heap.CollectGarbage()
}

// PopStack is the external-facing counterpart of popValue, used by hosts
// and tests that want the top of stack after a run without reaching into
// the ExecutionContext directly.
func (v *VM) PopStack() (Value, error) {
	return v.popValue("PopStack")
}

// SetStrategy mutates the restart strategy of the Supervisor at addr.
func (v *VM) SetStrategy(addr Address, strategy RestartStrategy) error {
	obj, err := v.heap.Get(addr)
	if err != nil {
		return err
	}
	sup, ok := obj.(*SupervisorObject)
	if !ok {
		return fmt.Errorf("%w: address %d is not a Supervisor", ErrInvalidReference, addr)
	}
	sup.Strategy = strategy
	v.log.Info("set supervisor strategy", "address", addr, "strategy", strategy)
	return nil
}

// RestartChild re-seeds children of the Supervisor at addr according to
// its strategy, per REDESIGN 1 in the expanded design notes.
func (v *VM) RestartChild(addr Address, index uint64) error {
	obj, err := v.heap.Get(addr)
	if err != nil {
		return err
	}
	sup, ok := obj.(*SupervisorObject)
	if !ok {
		return fmt.Errorf("%w: address %d is not a Supervisor", ErrInvalidReference, addr)
	}
	if err := RestartSupervisorChild(sup, index); err != nil {
		return err
	}
	v.log.Info("restarted child", "address", addr, "index", index, "strategy", sup.Strategy)
	return nil
}

// RestartSupervisorChild re-seeds sup's children per its strategy, given
// only the SupervisorObject itself (no heap address lookup required).
// Exported so runtime.Supervisor, which holds its object outside any VM's
// own heap, can drive the same restart logic as the RestartChild opcode.
func RestartSupervisorChild(sup *SupervisorObject, index uint64) error {
	if index >= uint64(len(sup.Children)) {
		return childNotFound(index)
	}
	switch sup.Strategy {
	case OneForAll:
		for i := range sup.Children {
			restartChildAt(sup, i)
		}
	case RestForOne:
		for i := int(index); i < len(sup.Children); i++ {
			restartChildAt(sup, i)
		}
	default: // OneForOne
		restartChildAt(sup, int(index))
	}
	return nil
}

func restartChildAt(sup *SupervisorObject, i int) {
	child := &sup.Children[i]
	opts := Options{MailboxCapacity: DefaultMailboxCapacity, DefaultStrategy: OneForOne}
	if child.VM != nil {
		opts = child.VM.childOptions()
	}
	fresh, sender := NewWithOptions(cloneInstructions(child.Instructions), nil, opts)
	child.VM = fresh
	child.Sender = sender
}

// childOptions is the Options a VM passes down to anything it spawns, so
// mailbox capacity and default restart strategy propagate through a whole
// spawn tree instead of resetting to the global defaults at each level.
func (v *VM) childOptions() Options {
	return Options{MailboxCapacity: v.mailboxCapacity, DefaultStrategy: v.defaultStrategy}
}

func cloneInstructions(in []Instruction) []Instruction {
	out := make([]Instruction, len(in))
	copy(out, in)
	return out
}
