// Copyright The Raft-VM Authors
// This file is part of Raft-VM.
//
// Raft-VM is free software: you can redistribute it and/or modify it under
// the terms of the GNU Lesser General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.

// Package assembler implements the external-collaborator contract from
// spec §4.G: a whitespace-tokenized textual source compiles to a linear
// vm.Instruction stream. Grounded in original_source/src/compiler.rs,
// re-expressed in the teacher's error-wrapping idiom instead of a
// thiserror enum.
package assembler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/probelang/raftvm/internal/rlog"
	"github.com/probelang/raftvm/vm"
)

var (
	// ErrInvalidToken is returned when a token is neither a literal nor a
	// known mnemonic.
	ErrInvalidToken = errors.New("assembler: invalid token")

	// ErrInvalidAddress is returned when a mnemonic's required operand
	// token is missing or fails to parse as an unsigned integer.
	ErrInvalidAddress = errors.New("assembler: invalid address")

	// ErrParse is returned when a numeric literal fails to parse.
	ErrParse = errors.New("assembler: parse error")
)

var log = rlog.New("component", "assembler")

// mnemonics maps a bare operator symbol or instruction name to its OpCode,
// for instructions that take no operand.
var mnemonics = map[string]vm.OpCode{
	"Pop": vm.OpPop, "Dup": vm.OpDup, "Swap": vm.OpSwap, "Peek": vm.OpPeek,
	"+": vm.OpAdd, "Add": vm.OpAdd,
	"-": vm.OpSub, "Sub": vm.OpSub,
	"*": vm.OpMul, "Mul": vm.OpMul,
	"/": vm.OpDiv, "Div": vm.OpDiv,
	"%": vm.OpMod, "Mod": vm.OpMod,
	"Neg": vm.OpNeg,
	"^":   vm.OpExp, "Exp": vm.OpExp,
	"Return":         vm.OpReturn,
	"SendMessage":    vm.OpSendMessage,
	"ReceiveMessage": vm.OpReceiveMessage,
}

// operandMnemonics maps a mnemonic requiring one unsigned-integer operand
// token to its OpCode.
var operandMnemonics = map[string]vm.OpCode{
	"StoreVar": vm.OpStoreVar, "LoadVar": vm.OpLoadVar,
	"Jump": vm.OpJump, "JumpIfFalse": vm.OpJumpIfFalse, "Call": vm.OpCall,
	"SpawnActor": vm.OpSpawnActor, "SpawnSupervisor": vm.OpSpawnSupervisor,
	"SetStrategy": vm.OpSetStrategy, "RestartChild": vm.OpRestartChild,
	"LoadNative": vm.OpLoadNative, "CallNative": vm.OpCallNative,
}

// Compile tokenizes source on whitespace and emits the corresponding
// instruction vector, or the first fault encountered.
func Compile(source string) ([]vm.Instruction, error) {
	tokens := strings.Fields(source)
	var out []vm.Instruction

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		switch tok {
		case "true", "false":
			out = append(out, vm.Instruction{Op: vm.OpPushConst, Const: vm.Bool(tok == "true")})
			continue
		}

		if op, ok := mnemonics[tok]; ok {
			out = append(out, vm.Instruction{Op: op})
			continue
		}

		if op, ok := operandMnemonics[tok]; ok {
			i++
			if i >= len(tokens) {
				return nil, fmt.Errorf("%w: expected operand after %s", ErrInvalidAddress, tok)
			}
			n, err := strconv.ParseUint(tokens[i], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, tokens[i])
			}
			out = append(out, vm.Instruction{Op: op, Arg: n})
			continue
		}

		if strings.Contains(tok, ".") {
			f, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid float %s", ErrParse, tok)
			}
			out = append(out, vm.Instruction{Op: vm.OpPushConst, Const: vm.Float(f)})
			continue
		}

		if n, err := strconv.ParseInt(tok, 10, 32); err == nil {
			out = append(out, vm.Instruction{Op: vm.OpPushConst, Const: vm.Int(int32(n))})
			continue
		}

		log.Warn("invalid token during compilation", "token", tok)
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, tok)
	}

	return out, nil
}
