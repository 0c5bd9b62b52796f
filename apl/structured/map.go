// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package structured implements the ⎕MAP and ⎕CR structured-value
// utilities (spec §4.9). Grounded on apl/codec for the byte/JSON/XML
// conversions ⎕CR multiplexes, and on the teacher's value/format.go
// Sprint dispatch for the display-style sub-functions.
package structured

import (
	"sort"

	"github.com/apl-core/aplcore/apl/config"
	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/value"
)

// entry is one (key, value) pair of a parsed mapping table, kept sorted
// by key so Map can binary-search (spec §4.9: "Lookup uses a sorted key
// array and binary search").
type entry struct {
	key value.Cell
	val value.Cell
}

// parseMapping reads A as either an N×2 matrix or a flat length-2N
// vector of alternating key/value cells (spec §4.9), rejecting an odd
// flat length as a LENGTH_ERROR and a duplicate key as a DOMAIN_ERROR.
func parseMapping(a *value.Value, qct float64) []entry {
	sh := a.Shape()
	var rows int64
	get := func(i, col int64) value.Cell { return a.At(i*2 + col) }
	switch {
	case sh.Rank() == 2 && sh.Dim(1) == 2:
		rows = sh.Dim(0)
	case sh.Rank() <= 1:
		n := a.Len()
		if n%2 != 0 {
			panic(errs.Length("⎕MAP: flat left operand must have even length, got %d", n))
		}
		rows = n / 2
	default:
		panic(errs.Rank("⎕MAP: left operand must be an N×2 matrix or a flat vector"))
	}
	entries := make([]entry, rows)
	for i := int64(0); i < rows; i++ {
		entries[i] = entry{key: get(i, 0), val: get(i, 1)}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key.Less(entries[j].key) })
	for i := 1; i < len(entries); i++ {
		if entries[i-1].key.Equal(entries[i].key, qct) {
			panic(errs.Domain("⎕MAP: duplicate key %s", entries[i].key))
		}
	}
	return entries
}

// lookup binary-searches entries for a key matching c within tolerance
// qct, returning (value, true) or (zero, false).
func lookup(entries []entry, c value.Cell, qct float64) (value.Cell, bool) {
	i := sort.Search(len(entries), func(i int) bool { return !entries[i].key.Less(c) })
	if i < len(entries) && entries[i].key.Equal(c, qct) {
		return entries[i].val, true
	}
	// qct tolerance can make Less's strict order disagree with Equal
	// near a boundary; fall back to a linear scan within tolerance.
	for _, e := range entries {
		if e.key.Equal(c, qct) {
			return e.val, true
		}
	}
	return value.Cell{}, false
}

// Map implements A ⎕MAP B (spec §4.9): builds a result shaped like B,
// substituting each cell of B that matches a key in A for A's
// corresponding value; an unmatched cell passes through unchanged. With
// a scalar nested A (a pointer cell wrapping the mapping table), mapping
// recurses through B's own pointer cells.
func Map(c *config.Config, a, b *value.Value) *value.Value {
	entries := parseMapping(resolveTable(a), c.Tolerance())
	out := value.NewBuilder(b.Shape())
	n := b.Len()
	qct := c.Tolerance()
	for i := int64(0); i < n; i++ {
		cell := b.At(i)
		if p := cell.Pointee(); p != nil {
			out.Put(value.Pointer(Map(c, a, p)))
			continue
		}
		if v, ok := lookup(entries, cell, qct); ok {
			out.Put(v)
		} else {
			out.Put(cell)
		}
	}
	return out.Build()
}

// resolveTable discloses a scalar-nested left operand (spec §4.9 "With a
// scalar nested A") into its underlying mapping table.
func resolveTable(a *value.Value) *value.Value {
	if a.IsScalar() {
		if p := a.At(0).Pointee(); p != nil {
			return p
		}
	}
	return a
}
