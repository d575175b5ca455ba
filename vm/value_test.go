// Copyright The Raft-VM Authors
// This file is part of Raft-VM.
//
// Raft-VM is free software: you can redistribute it and/or modify it under
// the terms of the GNU Lesser General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.

package vm

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueArithmetic(t *testing.T) {
	sum, err := Int(5).Add(Int(3))
	require.NoError(t, err)
	require.Equal(t, Int(8), sum)

	fsum, err := Float(3.14).Add(Float(2.0))
	require.NoError(t, err)
	f, _ := fsum.AsFloat()
	require.InDelta(t, 5.14, f, 1e-9)
}

func TestValueAddTypeMismatch(t *testing.T) {
	_, err := Int(1).Add(Float(1))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestValueDivisionByZero(t *testing.T) {
	_, err := Int(4).Div(Int(0))
	require.ErrorIs(t, err, ErrDivisionByZero)

	_, err = Float(4).Div(Float(0))
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestValueModTypeMismatch(t *testing.T) {
	_, err := Float(1).Mod(Float(1))
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestValueExp(t *testing.T) {
	result, err := Int(2).Exp(Int(-3))
	require.NoError(t, err)
	f, ok := result.AsFloat()
	require.True(t, ok)
	require.InDelta(t, 0.125, f, 1e-9)

	result, err = Int(2).Exp(Int(3))
	require.NoError(t, err)
	i, ok := result.AsInt()
	require.True(t, ok)
	require.Equal(t, int32(8), i)

	result, err = Float(2).Exp(Float(0.5))
	require.NoError(t, err)
	f, _ = result.AsFloat()
	require.InDelta(t, math.Sqrt2, f, 1e-9)
}

func TestValueEqual(t *testing.T) {
	require.True(t, Int(1).Equal(Int(1)))
	require.False(t, Int(1).Equal(Int(2)))
	require.False(t, Int(1).Equal(Float(1)))
	require.True(t, Null.Equal(Value{kind: KindNull}))
	require.True(t, Ref(7).Equal(Ref(7)))
	require.False(t, Ref(7).Equal(Ref(8)))
}

func TestValueNegTypeMismatch(t *testing.T) {
	_, err := Bool(true).Neg()
	require.ErrorIs(t, err, ErrTypeMismatch)
}
