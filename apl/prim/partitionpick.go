// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prim

import (
	"github.com/apl-core/aplcore/apl/config"
	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/value"
)

// Enclose implements monadic ⊂B: wraps B as a single scalar pointer
// cell, and dyadic A⊂B: partitions B's ravel into runs delimited by
// nonzero entries of A, grouped wherever A's value increases (spec
// §4.3), grounded on the teacher's value/vector.go Vector.doPartition.
var Enclose = &Fn{
	Name:   "⊂",
	EvalB:  encloseB,
	EvalAB: partitionAB,
}

// Disclose implements monadic ⊃B: unwraps a pointer cell (or returns B
// unchanged if it is already simple).
var Disclose = &Fn{Name: "⊃", EvalB: discloseB, EvalAB: pickAB}

func encloseB(c *config.Config, b *value.Value) *value.Value {
	return value.NewScalar(value.Pointer(b))
}

func discloseB(c *config.Config, b *value.Value) *value.Value {
	if b.IsScalar() {
		if p := b.At(0).Pointee(); p != nil {
			return p
		}
	}
	return b
}

func partitionAB(c *config.Config, a, b *value.Value) *value.Value {
	tol := c.Tolerance()
	alen := a.Len()
	var groups []*value.GrowBuilder
	var cur *value.GrowBuilder
	prev := int64(0)
	for i := int64(0); i < b.Len(); i++ {
		j := i % alen
		scV, ok := a.At(j).ToIntTol(tol)
		if !ok {
			panic(errs.Domain("partition: score operand must be integers"))
		}
		if scV != 0 {
			if i > 0 && (scV > prev || j == 0) && cur != nil {
				groups = append(groups, cur)
				cur = nil
			}
			if cur == nil {
				cur = value.NewGrowBuilder()
			}
			cur.Put(b.At(i))
		}
		prev = scV
	}
	if cur != nil {
		groups = append(groups, cur)
	}

	cells := make([]value.Cell, len(groups))
	for i, g := range groups {
		cells[i] = value.Pointer(g.Build())
	}
	return value.NewVector(cells...)
}

func pickAB(c *config.Config, a, b *value.Value) *value.Value {
	cur := b
	for i := int64(0); i < a.Len(); i++ {
		idx, ok := a.At(i).ToIntTol(c.Tolerance())
		if !ok {
			panic(errs.Domain("pick: index operand must be integers"))
		}
		idx -= int64(c.Origin())
		if idx < 0 || idx >= cur.Len() {
			panic(errs.Index("pick: index %d out of range", idx+int64(c.Origin())))
		}
		cell := cur.At(idx)
		if i+1 < a.Len() {
			p := cell.Pointee()
			if p == nil {
				panic(errs.Domain("pick: index path too deep for value"))
			}
			cur = p
			continue
		}
		if p := cell.Pointee(); p != nil {
			return p
		}
		return value.NewScalar(cell)
	}
	return cur
}
