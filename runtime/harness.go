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

	"golang.org/x/sync/errgroup"

	"github.com/probelang/raftvm/internal/rlog"
	"github.com/probelang/raftvm/vm"
)

// Harness is the "host program or test harness" spec §4.F defers
// scheduling to: each VM it holds remains single-threaded from its own
// perspective (§5), but the harness itself steps several independently
// owned VMs concurrently, one goroutine apiece, via golang.org/x/sync/errgroup.
type Harness struct {
	vms []*vm.VM
}

var harnessLog = rlog.New("component", "harness")

// NewHarness wraps the given VMs for concurrent driving.
func NewHarness(vms ...*vm.VM) *Harness {
	harnessLog.Info("harness constructed", "vm_count", len(vms))
	return &Harness{vms: vms}
}

// RunAll runs every VM to completion concurrently, returning the first
// error encountered across all of them (errgroup semantics: the context
// passed to the group is canceled on first error, though individual VMs
// do not currently observe cancellation mid-step, matching spec §5's "no
// external cancellation token").
func (h *Harness) RunAll(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)
	for _, v := range h.vms {
		v := v
		g.Go(func() error {
			return v.Run()
		})
	}
	return g.Wait()
}

// StepAll advances every VM by exactly one instruction, concurrently,
// collecting each VM's error (nil on success) in input order. Used by
// tests and REPL-style drivers that want fine-grained interleaving
// instead of running each VM to completion.
func (h *Harness) StepAll() []error {
	errs := make([]error, len(h.vms))
	g := new(errgroup.Group)
	for i, v := range h.vms {
		i, v := i, v
		g.Go(func() error {
			errs[i] = v.Step()
			return nil
		})
	}
	_ = g.Wait()
	return errs
}
