// Copyright The Raft-VM Authors
// This file is part of Raft-VM.
//
// Raft-VM is free software: you can redistribute it and/or modify it under
// the terms of the GNU Lesser General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.

package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probelang/raftvm/vm"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverlaysTOMLOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "raftvm.toml")
	err := ioutil.WriteFile(path, []byte("MailboxCapacity = 16\nLogLevel = \"debug\"\n"), 0o644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 16, cfg.MailboxCapacity)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, vm.OneForOne, cfg.DefaultStrategy)
}

func TestLoadPropagatesDecodeError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "raftvm.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte("not valid toml {{{"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestDefaultMatchesVMDefaults(t *testing.T) {
	cfg := Default()
	require.Equal(t, vm.DefaultMailboxCapacity, cfg.MailboxCapacity)
	require.Equal(t, vm.OneForOne, cfg.DefaultStrategy)
}
