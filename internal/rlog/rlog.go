// Copyright The Raft-VM Authors
// This file is part of Raft-VM.
//
// Raft-VM is free software: you can redistribute it and/or modify it under
// the terms of the GNU Lesser General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.

// Package rlog wraps log15 with the leveled, keyed call shape the teacher
// repository's internal log package uses (Info/Warn/Error/Debug with
// alternating key-value pairs), so every package in this module logs the
// same way without each importing log15 directly.
package rlog

import (
	"os"

	"github.com/inconshreveable/log15"
)

// Root is the module-wide logger; New derives named children from it.
var Root = log15.New()

func init() {
	Root.SetHandler(log15.LvlFilterHandler(log15.LvlInfo, log15.StreamHandler(os.Stderr, log15.TerminalFormat())))
}

// New returns a logger tagged with ctx key/value pairs, e.g.
// rlog.New("component", "heap").
func New(ctx ...interface{}) log15.Logger {
	return Root.New(ctx...)
}

// SetVerbosity adjusts the root handler's level filter. The CLI calls it
// with the LogLevel from its config file.
func SetVerbosity(lvl log15.Lvl) {
	Root.SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(os.Stderr, log15.TerminalFormat())))
}
