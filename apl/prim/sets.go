// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prim

import (
	"github.com/apl-core/aplcore/apl/config"
	"github.com/apl-core/aplcore/apl/value"
)

// Member implements A∈B (spec §4.3): for each cell of A, 1 if it occurs
// anywhere in B's ravel, else 0. Grounded on the teacher's
// value/vector.go membership, simplified to a direct scan (the teacher's
// sort-then-binary-search optimization is left for a later pass; spec
// places no complexity requirement on this primitive).
var Member = &Fn{Name: "∈", EvalAB: memberAB}

// Match implements A≡B: structural equivalence with comparison tolerance
// qct, delegating straight to Value.DeepEqual (spec §4.3, §4.1).
var Match = &Fn{Name: "≡", EvalAB: matchAB}

// NotMatch implements A≢B, the complement of Match.
var NotMatch = &Fn{Name: "≢", EvalAB: notMatchAB}

// Union implements A∪B: every cell of A, followed by every cell of B not
// already present in A. Grounded on the teacher's value/sets.go union.
var Union = &Fn{Name: "∪", EvalAB: unionAB}

// Intersect implements A∩B: every cell of A that also occurs in B.
// Grounded on the teacher's value/sets.go intersect.
var Intersect = &Fn{Name: "∩", EvalAB: intersectAB}

func memberAB(c *config.Config, a, b *value.Value) *value.Value {
	tol := c.Tolerance()
	out := value.NewBuilder(a.Shape())
	n := a.Len()
	for i := int64(0); i < n; i++ {
		x := a.At(i)
		found := int64(0)
		for j := int64(0); j < b.Len(); j++ {
			if x.Equal(b.At(j), tol) {
				found = 1
				break
			}
		}
		out.Put(value.Int(found))
	}
	return out.Build()
}

func matchAB(c *config.Config, a, b *value.Value) *value.Value {
	eq := a.DeepEqual(b, c.Tolerance())
	return value.NewScalar(value.Int(b2i(eq)))
}

func notMatchAB(c *config.Config, a, b *value.Value) *value.Value {
	eq := a.DeepEqual(b, c.Tolerance())
	return value.NewScalar(value.Int(b2i(!eq)))
}

func b2i(ok bool) int64 {
	if ok {
		return 1
	}
	return 0
}

func unionAB(c *config.Config, a, b *value.Value) *value.Value {
	tol := c.Tolerance()
	cells := make([]value.Cell, 0, a.Len()+b.Len())
	for i := int64(0); i < a.Len(); i++ {
		cells = append(cells, a.At(i))
	}
	for j := int64(0); j < b.Len(); j++ {
		x := b.At(j)
		dup := false
		for i := int64(0); i < a.Len(); i++ {
			if x.Equal(a.At(i), tol) {
				dup = true
				break
			}
		}
		if !dup {
			cells = append(cells, x)
		}
	}
	return value.NewVector(cells...)
}

func intersectAB(c *config.Config, a, b *value.Value) *value.Value {
	tol := c.Tolerance()
	var cells []value.Cell
	for i := int64(0); i < a.Len(); i++ {
		x := a.At(i)
		for j := int64(0); j < b.Len(); j++ {
			if x.Equal(b.At(j), tol) {
				cells = append(cells, x)
				break
			}
		}
	}
	return value.NewVector(cells...)
}
