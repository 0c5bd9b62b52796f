// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prim

import (
	"github.com/apl-core/aplcore/apl/config"
	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/value"
)

// Take implements A↑B (spec §4.3): A names, per axis, how many leading
// (positive) or trailing (negative) cells to keep, padding with B's
// prototype when A overtakes B's extent. Grounded on the teacher's
// value/matrix.go Matrix.take, generalized to any rank via a bounding-box
// walk over the result's multi-index space.
var Take = &Fn{Name: "↑", EvalAB: takeAB}

// Drop implements A↓B: the complement of Take, reducing each axis by
// |A[i]| from the named end. Grounded on the teacher's Matrix.drop, which
// rewrites drop counts into take counts and delegates.
var Drop = &Fn{Name: "↓", EvalAB: dropAB}

func takeAB(c *config.Config, a, b *value.Value) *value.Value {
	counts := extendAxisVector(c, a, b.Shape())
	return takeCounts(b, counts)
}

func dropAB(c *config.Config, a, b *value.Value) *value.Value {
	counts := extendAxisVector(c, a, b.Shape())
	bsh := b.Shape()
	take := make([]int64, len(counts))
	for i, x := range counts {
		d := bsh.Dim(i)
		if int64(i) >= a.Len() {
			x = 0 // axes beyond A's length are not dropped
		}
		switch {
		case x < -d || x > d:
			take[i] = 0
		case x >= 0:
			take[i] = x - d
		default:
			take[i] = d + x
		}
	}
	return takeCounts(b, take)
}

// extendAxisVector validates that a holds small integers and pads it with
// b's own dims (for take, an untaken axis keeps its full extent; dropAB
// replaces the padded entries with a drop count of 0).
func extendAxisVector(c *config.Config, a *value.Value, bsh value.Shape) []int64 {
	n := a.Len()
	r := bsh.Rank()
	if int(n) > r {
		panic(errs.Rank("take/drop: operand length %d exceeds rank %d", n, r))
	}
	out := make([]int64, r)
	for i := 0; i < r; i++ {
		if int64(i) < n {
			v, ok := a.At(int64(i)).ToIntTol(c.Tolerance())
			if !ok {
				panic(errs.Domain("take/drop: left operand must be small integers"))
			}
			out[i] = v
		} else {
			out[i] = bsh.Dim(i)
		}
	}
	return out
}

// takeCounts builds the result of taking counts[i] cells (signed, per
// spec §4.3) from each axis of b, filling with b's prototype wherever the
// request overtakes b's extent.
func takeCounts(b *value.Value, counts []int64) *value.Value {
	bsh := b.Shape()
	r := bsh.Rank()
	outDims := make([]int64, r)
	mins := make([]int64, r) // lower bound, in b-space, of the kept box
	maxs := make([]int64, r) // upper bound (exclusive)
	origin := make([]int64, r)
	for i, y := range counts {
		n := y
		if n < 0 {
			n = -n
		}
		outDims[i] = n
		d := bsh.Dim(i)
		if y < 0 {
			maxs[i] = d
			mins[i] = d - n
			if mins[i] < 0 {
				mins[i] = 0
			}
			origin[i] = n - d
		} else {
			mins[i] = 0
			if n < d {
				maxs[i] = n
			} else {
				maxs[i] = d
			}
			origin[i] = 0
		}
	}

	out := value.NewShape(outDims...)
	proto := b.Prototype()
	builder := value.NewBuilder(out)
	n := builder.Len()
	coords := make([]int64, r)
	for i := int64(0); i < n; i++ {
		inside := true
		var bi int64
		for k := 0; k < r; k++ {
			bi *= bsh.Dim(k)
			loc := coords[k] - origin[k]
			if loc < mins[k] || loc >= maxs[k] {
				inside = false
				break
			}
			bi += loc
		}
		if inside {
			builder.Put(b.At(bi))
		} else {
			builder.Put(proto)
		}
		for k := r - 1; k >= 0; k-- {
			coords[k]++
			if coords[k] < outDims[k] {
				break
			}
			coords[k] = 0
		}
	}
	return builder.Build()
}
