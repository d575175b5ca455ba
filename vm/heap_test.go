// Copyright The Raft-VM Authors
// This file is part of Raft-VM.
//
// Raft-VM is free software: you can redistribute it and/or modify it under
// the terms of the GNU Lesser General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.

package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeapAllocateStartsAtZero(t *testing.T) {
	h := NewHeap()
	addr := h.Allocate(&StringObject{Text: "hi"})
	rc, err := h.RefCount(addr)
	require.NoError(t, err)
	require.Equal(t, uint64(0), rc)
}

func TestHeapIncrementDecrementSaturatesAtZero(t *testing.T) {
	h := NewHeap()
	addr := h.Allocate(&StringObject{Text: "hi"})
	require.NoError(t, h.DecrementRef(addr))
	rc, _ := h.RefCount(addr)
	require.Equal(t, uint64(0), rc)

	require.NoError(t, h.IncrementRef(addr))
	require.NoError(t, h.IncrementRef(addr))
	rc, _ = h.RefCount(addr)
	require.Equal(t, uint64(2), rc)
}

func TestHeapGetInvalidReference(t *testing.T) {
	h := NewHeap()
	_, err := h.Get(42)
	require.ErrorIs(t, err, ErrInvalidReference)
}

func TestHeapCollectGarbageIsIdempotent(t *testing.T) {
	h := NewHeap()
	addr := h.Allocate(&StringObject{Text: "garbage"})
	require.Equal(t, 1, h.Len())

	collected := h.CollectGarbage()
	require.Equal(t, 1, collected)
	require.Equal(t, 0, h.Len())
	_, err := h.Get(addr)
	require.ErrorIs(t, err, ErrInvalidReference)

	again := h.CollectGarbage()
	require.Equal(t, 0, again)
}

func TestHeapCollectGarbageSparesLiveObjects(t *testing.T) {
	h := NewHeap()
	addr := h.Allocate(&StringObject{Text: "alive"})
	require.NoError(t, h.IncrementRef(addr))

	collected := h.CollectGarbage()
	require.Equal(t, 0, collected)
	require.Equal(t, 1, h.Len())
}

func TestHeapCollectGarbageReleasesActorMailbox(t *testing.T) {
	h := NewHeap()
	child, sender := New(nil, nil)
	addr := h.Allocate(&ActorObject{VM: child, Sender: sender})

	h.CollectGarbage()

	_, err := child.Mailbox().Receive()
	require.ErrorIs(t, err, ErrMailboxEmpty)
	_, err = h.Get(addr)
	require.ErrorIs(t, err, ErrInvalidReference)
}
