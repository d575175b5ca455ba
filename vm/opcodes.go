// Copyright The Raft-VM Authors
// This file is part of Raft-VM.
//
// Raft-VM is free software: you can redistribute it and/or modify it under
// the terms of the GNU Lesser General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.

package vm

import "fmt"

// OpCode names one instruction in the interpreter's dispatch table. Unlike
// the original Rust source's packed 4-byte encoding (opcode|a|b|c), raft-vm has no
// persisted bytecode format to pack for, so an Instruction carries its
// operand as a plain Go field instead of bit-packed bytes.
type OpCode uint8

const (
	// Variables
	OpStoreVar OpCode = iota
	OpLoadVar

	// Stack
	OpPushConst
	OpPop
	OpDup
	OpSwap
	OpPeek

	// Arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg
	OpExp

	// Control flow
	OpJump
	OpJumpIfFalse
	OpCall
	OpReturn

	// Actors
	OpSpawnActor
	OpSendMessage
	OpReceiveMessage

	// Supervisor
	OpSpawnSupervisor
	OpSetStrategy
	OpRestartChild

	// Native functions
	OpLoadNative
	OpCallNative
)

var opcodeNames = map[OpCode]string{
	OpStoreVar:        "StoreVar",
	OpLoadVar:         "LoadVar",
	OpPushConst:       "PushConst",
	OpPop:             "Pop",
	OpDup:             "Dup",
	OpSwap:            "Swap",
	OpPeek:            "Peek",
	OpAdd:             "Add",
	OpSub:             "Sub",
	OpMul:             "Mul",
	OpDiv:             "Div",
	OpMod:             "Mod",
	OpNeg:             "Neg",
	OpExp:             "Exp",
	OpJump:            "Jump",
	OpJumpIfFalse:     "JumpIfFalse",
	OpCall:            "Call",
	OpReturn:          "Return",
	OpSpawnActor:      "SpawnActor",
	OpSendMessage:     "SendMessage",
	OpReceiveMessage:  "ReceiveMessage",
	OpSpawnSupervisor: "SpawnSupervisor",
	OpSetStrategy:     "SetStrategy",
	OpRestartChild:    "RestartChild",
	OpLoadNative:      "LoadNative",
	OpCallNative:      "CallNative",
}

func (op OpCode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OpCode(%d)", op)
}

// Instruction is one entry in a VM's owned instruction vector. Arg carries
// the operand for instructions that take a numeric index or jump target
// (StoreVar/LoadVar/Jump/JumpIfFalse/Call/SpawnActor/
// SpawnSupervisor/SetStrategy/RestartChild/LoadNative/CallNative); Const
// carries the literal operand for PushConst. Instructions that take
// neither leave both zero.
type Instruction struct {
	Op    OpCode
	Arg   uint64
	Const Value
}

// Addr interprets Arg as an instruction-vector index (Jump/JumpIfFalse/
// Call).
func (i Instruction) Addr() int { return int(i.Arg) }

func (i Instruction) String() string {
	switch i.Op {
	case OpPushConst:
		return fmt.Sprintf("PushConst %s", i.Const)
	case OpStoreVar, OpLoadVar, OpJump, OpJumpIfFalse, OpCall,
		OpSpawnActor, OpSpawnSupervisor, OpSetStrategy, OpRestartChild,
		OpLoadNative, OpCallNative:
		return fmt.Sprintf("%s %d", i.Op, i.Arg)
	default:
		return i.Op.String()
	}
}
