// Copyright The Raft-VM Authors
// This file is part of Raft-VM.
//
// Raft-VM is free software: you can redistribute it and/or modify it under
// the terms of the GNU Lesser General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.

package vm

import (
	"github.com/inconshreveable/log15"

	"github.com/probelang/raftvm/internal/rlog"
)

// ExecutionContext is the mutable state a single VM steps through: an
// operand stack, a local-variable table, the instruction pointer, a call
// stack of return addresses, and the instruction vector it owns.
type ExecutionContext struct {
	Stack       []Value
	Locals      map[uint64]Value
	IP          int
	CallStack   []int
	Bytecode    []Instruction
	log         log15.Logger
}

// NewExecutionContext takes ownership of bytecode.
func NewExecutionContext(bytecode []Instruction) *ExecutionContext {
	return &ExecutionContext{
		Stack:     make([]Value, 0, 8),
		Locals:    make(map[uint64]Value),
		CallStack: make([]int, 0, 8),
		Bytecode:  bytecode,
		log:       rlog.New("component", "execution"),
	}
}

// stackPush is the bare, refcount-unaware append. VM.pushValue is its
// only caller and adds the reference-count increment of spec §4.D.
func (ctx *ExecutionContext) stackPush(v Value) {
	ctx.Stack = append(ctx.Stack, v)
}

// stackPop is the bare, refcount-unaware pop.
func (ctx *ExecutionContext) stackPop(site string) (Value, error) {
	n := len(ctx.Stack)
	if n == 0 {
		return Value{}, stackUnderflowFor(site)
	}
	v := ctx.Stack[n-1]
	ctx.Stack = ctx.Stack[:n-1]
	return v, nil
}

// stackPeek returns the top of stack without removing it.
func (ctx *ExecutionContext) stackPeek(site string) (Value, error) {
	n := len(ctx.Stack)
	if n == 0 {
		return Value{}, stackUnderflowFor(site)
	}
	return ctx.Stack[n-1], nil
}

// Step fetches the instruction at IP, advances IP by one, and then
// dispatches it. Jump/JumpIfFalse/Call/Return overwrite the advanced IP
// with their absolute target, so Call records the index just past itself
// as the return address.
func (ctx *ExecutionContext) Step(h *Heap, vm *VM) error {
	if ctx.IP < 0 || ctx.IP >= len(ctx.Bytecode) {
		ctx.log.Error("instruction pointer out of bounds", "ip", ctx.IP)
		return ErrExecutionOutOfBounds
	}
	instr := ctx.Bytecode[ctx.IP]
	ctx.log.Debug("executing instruction", "ip", ctx.IP, "instr", instr)

	ctx.IP++
	return vm.dispatch(instr)
}
