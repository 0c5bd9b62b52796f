// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package prim implements the scalar and non-scalar primitive functions
// (spec §1 C5, §4.3). Each primitive exposes up to the four entry points
// spec §6.1 describes (eval_B, eval_AB, eval_XB, eval_AXB); a primitive
// that doesn't support a given valence simply doesn't register that
// entry, and Dispatch reports VALENCE_ERROR.
package prim

import (
	"github.com/apl-core/aplcore/apl/config"
	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/value"
)

// Fn is the full set of entry points spec §6.1 allows a function to
// implement. A nil field means that valence is unsupported.
type Fn struct {
	Name string

	EvalB   func(c *config.Config, b *value.Value) *value.Value
	EvalAB  func(c *config.Config, a, b *value.Value) *value.Value
	EvalXB  func(c *config.Config, x, b *value.Value) *value.Value
	EvalAXB func(c *config.Config, a, x, b *value.Value) *value.Value

	// Identity supplies the reduction identity element for this
	// primitive over b along axis (spec §4.4: "every primitive that
	// may be reduced supplies an identity value"), or nil if the
	// primitive has none (in which case reducing an empty axis is a
	// LENGTH_ERROR rather than producing an identity).
	Identity func(b *value.Value, axis int) (*value.Value, bool)

	// AssociativeScalar marks a dyadic scalar primitive whose fold is
	// associative, enabling the O(n) running-accumulator scan fast
	// path (spec §4.4) and making it eligible for parallel
	// divide-and-conquer reduction (spec §5 "Ordering guarantees").
	AssociativeScalar bool
}

// Dispatch calls the entry point matching which operands are present,
// raising VALENCE_ERROR if that combination isn't implemented (spec
// §4.3, §6.1).
func Dispatch(fn *Fn, c *config.Config, a, x, b *value.Value) *value.Value {
	switch {
	case a == nil && x == nil:
		if fn.EvalB == nil {
			panic(errs.Valence("%s: monadic form not implemented", fn.Name))
		}
		return fn.EvalB(c, b)
	case a == nil && x != nil:
		if fn.EvalXB == nil {
			panic(errs.Valence("%s: monadic-with-axis form not implemented", fn.Name))
		}
		return fn.EvalXB(c, x, b)
	case a != nil && x == nil:
		if fn.EvalAB == nil {
			panic(errs.Valence("%s: dyadic form not implemented", fn.Name))
		}
		return fn.EvalAB(c, a, b)
	default:
		if fn.EvalAXB == nil {
			panic(errs.Valence("%s: dyadic-with-axis form not implemented", fn.Name))
		}
		return fn.EvalAXB(c, a, x, b)
	}
}

// axisOrLast resolves an optional axis Value (a scalar integer) against a
// Shape, defaulting to the last axis when x is nil (spec §4.3's "last
// axis" default for catenate et al.).
func axisOrLast(c *config.Config, x *value.Value, shape value.Shape) int {
	if x == nil {
		r := shape.Rank() - 1
		if r < 0 {
			r = 0
		}
		return r
	}
	return axisIndex(c, x, shape)
}

// axisIndex resolves an axis Value (expected to be an integer scalar) to
// a validated 0-based axis index, raising AXIS_ERROR if out of range.
func axisIndex(c *config.Config, x *value.Value, shape value.Shape) int {
	if !x.IsScalar() && x.Len() != 1 {
		panic(errs.Axis("axis operand must be a scalar"))
	}
	n, ok := x.At(0).ToIntTol(c.Tolerance())
	if !ok {
		panic(errs.Axis("axis operand must be an integer"))
	}
	axis := int(n) - c.Origin()
	r := shape.Rank()
	if r == 0 {
		r = 1
	}
	if axis < 0 || axis >= r {
		panic(errs.Axis("axis %d out of range for rank %d", n, shape.Rank()))
	}
	return axis
}

func intScalar(v *value.Value, tol float64) (int64, bool) {
	if v.Len() != 1 {
		return 0, false
	}
	return v.At(0).ToIntTol(tol)
}

func ravelInts(c *config.Config, v *value.Value) []int64 {
	out := make([]int64, v.Len())
	for i := range out {
		n, ok := v.At(int64(i)).ToIntTol(c.Tolerance())
		if !ok {
			panic(errs.Domain("expected an integer at ravel index %d", i))
		}
		out[i] = n
	}
	return out
}
