// Copyright The Raft-VM Authors
// This file is part of Raft-VM.
//
// Raft-VM is free software: you can redistribute it and/or modify it under
// the terms of the GNU Lesser General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.

package assembler

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/probelang/raftvm/vm"
)

// defaultModuleCacheSize bounds the number of distinct source strings a
// Cache remembers, mirroring the small fixed-size signature/snapshot
// caches the teacher keeps in consensus/pob/pob.go (lru.NewARC there;
// a plain LRU suffices here since compiled bytecode is immutable once
// produced, so there is no eviction-vs-freshness tradeoff to arbitrate).
const defaultModuleCacheSize = 128

// Cache memoizes Compile by source text, for hosts that repeatedly load
// the same module source (e.g. a REPL re-running a previous line, or a
// supervisor restarting a child from its original source rather than a
// cloned instruction vector).
type Cache struct {
	entries *lru.Cache
}

// NewCache constructs a bounded compile cache. size<=0 uses
// defaultModuleCacheSize.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = defaultModuleCacheSize
	}
	c, err := lru.New(size)
	if err != nil {
		// lru.New only errors on size<=0, already guarded above.
		panic(err)
	}
	return &Cache{entries: c}
}

// Compile returns the cached instruction vector for source if present,
// otherwise compiles it, stores the result, and returns it. A compile
// failure is never cached.
func (c *Cache) Compile(source string) ([]vm.Instruction, error) {
	if cached, ok := c.entries.Get(source); ok {
		log.Debug("module cache hit", "len", len(source))
		return cached.([]vm.Instruction), nil
	}
	code, err := Compile(source)
	if err != nil {
		return nil, err
	}
	c.entries.Add(source, code)
	return code, nil
}
