// Copyright The Raft-VM Authors
// This file is part of Raft-VM.
//
// Raft-VM is free software: you can redistribute it and/or modify it under
// the terms of the GNU Lesser General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.

package vm

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Disassemble renders bytecode as a table of index/mnemonic/operand rows.
// Nothing in this module calls it; it is exported for hosts.
func Disassemble(bytecode []Instruction) string {
	var buf strings.Builder
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"IP", "Instruction"})
	for i, instr := range bytecode {
		table.Append([]string{fmt.Sprintf("%d", i), instr.String()})
	}
	table.Render()
	return buf.String()
}

// DumpHeap renders a heap's live objects as a table of address/kind/refcount
// rows. The REPL has no command that prints it; it is exported for hosts.
func DumpHeap(h *Heap) string {
	var buf strings.Builder
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Address", "Kind", "RefCount"})
	for addr, obj := range h.objects {
		table.Append([]string{
			fmt.Sprintf("%d", addr),
			obj.Kind().String(),
			fmt.Sprintf("%d", obj.refCount()),
		})
	}
	table.Render()
	return buf.String()
}
