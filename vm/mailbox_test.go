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

func TestMailboxFIFO(t *testing.T) {
	mb, sender := NewMailbox(4)
	require.NoError(t, sender.Send(Int(1)))
	require.NoError(t, sender.Send(Int(2)))
	require.NoError(t, sender.Send(Int(3)))

	first, err := mb.Receive()
	require.NoError(t, err)
	require.Equal(t, Int(1), first)

	second, err := mb.Receive()
	require.NoError(t, err)
	require.Equal(t, Int(2), second)
}

func TestMailboxClosesWhenLastSenderReleased(t *testing.T) {
	mb, sender := NewMailbox(2)
	clone := sender.Clone()

	require.NoError(t, sender.Send(Int(9)))
	sender.Release()

	// a live clone still keeps the mailbox open.
	require.NoError(t, clone.Send(Int(10)))
	clone.Release()

	err := clone.Send(Int(11))
	require.ErrorIs(t, err, ErrMailboxClosed)

	first, err := mb.Receive()
	require.NoError(t, err)
	require.Equal(t, Int(9), first)

	second, err := mb.Receive()
	require.NoError(t, err)
	require.Equal(t, Int(10), second)

	_, err = mb.Receive()
	require.ErrorIs(t, err, ErrMailboxEmpty)
}

func TestMailboxDefaultCapacity(t *testing.T) {
	mb, sender := NewMailbox(0)
	require.NotNil(t, mb)
	for i := 0; i < DefaultMailboxCapacity; i++ {
		require.NoError(t, sender.Send(Int(int32(i))))
	}
}
