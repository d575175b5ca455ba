// Copyright The Raft-VM Authors
// This file is part of Raft-VM.
//
// Raft-VM is free software: you can redistribute it and/or modify it under
// the terms of the GNU Lesser General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.

package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probelang/raftvm/vm"
)

func TestHarnessRunAllConcurrently(t *testing.T) {
	a, _ := vm.New([]vm.Instruction{
		{Op: vm.OpPushConst, Const: vm.Int(1)},
		{Op: vm.OpPushConst, Const: vm.Int(2)},
		{Op: vm.OpAdd},
	}, nil)
	b, _ := vm.New([]vm.Instruction{
		{Op: vm.OpPushConst, Const: vm.Int(10)},
	}, nil)

	h := NewHarness(a, b)
	require.NoError(t, h.RunAll(context.Background()))

	topA, err := a.PopStack()
	require.NoError(t, err)
	require.Equal(t, vm.Int(3), topA)

	topB, err := b.PopStack()
	require.NoError(t, err)
	require.Equal(t, vm.Int(10), topB)
}

func TestHarnessRunAllPropagatesFirstError(t *testing.T) {
	bad, _ := vm.New([]vm.Instruction{
		{Op: vm.OpPushConst, Const: vm.Int(1)},
		{Op: vm.OpPushConst, Const: vm.Int(0)},
		{Op: vm.OpDiv},
	}, nil)

	h := NewHarness(bad)
	err := h.RunAll(context.Background())
	require.ErrorIs(t, err, vm.ErrDivisionByZero)
}

func TestHarnessStepAll(t *testing.T) {
	a, _ := vm.New([]vm.Instruction{{Op: vm.OpPushConst, Const: vm.Int(1)}}, nil)
	b, _ := vm.New([]vm.Instruction{{Op: vm.OpPushConst, Const: vm.Int(2)}}, nil)

	h := NewHarness(a, b)
	errs := h.StepAll()
	require.Len(t, errs, 2)
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
}
