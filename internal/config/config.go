// Copyright The Raft-VM Authors
// This file is part of Raft-VM.
//
// Raft-VM is free software: you can redistribute it and/or modify it under
// the terms of the GNU Lesser General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.

// Package config loads the handful of knobs the runtime exposes from an
// optional TOML file, following the teacher repository's
// github.com/naoina/toml convention (cmd/gprobe/config.go) for reading
// node configuration.
package config

import (
	"os"
	"reflect"

	"github.com/naoina/toml"

	"github.com/probelang/raftvm/vm"
)

// Config holds the runtime knobs spec §6's "Environment" section leaves at
// the host's discretion.
type Config struct {
	MailboxCapacity int
	DefaultStrategy vm.RestartStrategy
	LogLevel        string
}

// Default returns the configuration used when no raftvm.toml is present.
func Default() Config {
	return Config{
		MailboxCapacity: vm.DefaultMailboxCapacity,
		DefaultStrategy: vm.OneForOne,
		LogLevel:        "info",
	}
}

// tomlSettings mirrors the teacher's field-name normalization: TOML keys
// use the same names as the Go struct fields, no case-folding.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
}

// Load reads path if it exists, overlaying any fields it sets onto the
// defaults; a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()

	if err := tomlSettings.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
