// Copyright The Raft-VM Authors
// This file is part of Raft-VM.
//
// Raft-VM is free software: you can redistribute it and/or modify it under
// the terms of the GNU Lesser General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.

package assembler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probelang/raftvm/vm"
)

func TestCompileArithmetic(t *testing.T) {
	code, err := Compile("5 3 +")
	require.NoError(t, err)
	require.Equal(t, []vm.Instruction{
		{Op: vm.OpPushConst, Const: vm.Int(5)},
		{Op: vm.OpPushConst, Const: vm.Int(3)},
		{Op: vm.OpAdd},
	}, code)
}

func TestCompileFiveInstructionProgram(t *testing.T) {
	code, err := Compile("1 JumpIfFalse 4 Call 6 Jump 8 Return")
	require.NoError(t, err)
	require.Len(t, code, 5)
}

func TestCompileBooleanLiterals(t *testing.T) {
	code, err := Compile("true false")
	require.NoError(t, err)
	require.Equal(t, vm.Bool(true), code[0].Const)
	require.Equal(t, vm.Bool(false), code[1].Const)
}

func TestCompileFloatLiteral(t *testing.T) {
	code, err := Compile("3.14 2.0 +")
	require.NoError(t, err)
	require.Equal(t, vm.Float(3.14), code[0].Const)
}

func TestCompileInvalidToken(t *testing.T) {
	_, err := Compile("frobnicate")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestCompileMissingOperand(t *testing.T) {
	_, err := Compile("Jump")
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestCompileInvalidOperand(t *testing.T) {
	_, err := Compile("Jump notanumber")
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestCompileOperatorSymbols(t *testing.T) {
	code, err := Compile("2 -3 ^")
	require.NoError(t, err)
	require.Equal(t, vm.OpExp, code[2].Op)
}

func TestCompileNativeCallMnemonics(t *testing.T) {
	code, err := Compile("LoadNative 0 CallNative 1")
	require.NoError(t, err)
	require.Equal(t, []vm.Instruction{
		{Op: vm.OpLoadNative, Arg: 0},
		{Op: vm.OpCallNative, Arg: 1},
	}, code)
}
