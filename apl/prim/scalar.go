// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prim

import (
	"github.com/apl-core/aplcore/apl/config"
	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/value"
	"github.com/apl-core/aplcore/apl/workers"
)

// cellFn is a scalar function of one Cell, used for monadic scalar
// primitives (spec §4.1).
type cellFn func(c *config.Config, x value.Cell) value.Cell

// cellFn2 is a scalar function of two Cells, used for dyadic scalar
// primitives (spec §4.1, §4.2). Every dyadic scalar primitive threads
// through elementwise2, which applies scalar extension and
// conformability (spec §4.2) and splits work across apl/workers once the
// result is large enough (spec §5 "Parallel scalar fast path").
type cellFn2 func(c *config.Config, a, b value.Cell) value.Cell

// scalarMonadic builds a Fn around a monadic cell function, dispatching
// across the worker pool when the argument volume exceeds the
// configured monadic threshold.
func scalarMonadic(name string, fn cellFn) *Fn {
	return &Fn{
		Name: name,
		EvalB: func(c *config.Config, b *value.Value) *value.Value {
			return elementwise1(c, b, fn)
		},
	}
}

// scalarDyadic builds a Fn around a dyadic cell function. assoc marks the
// primitive eligible for the scan O(n) fast path and parallel
// divide-and-conquer reduction (spec §4.4, §5, §9).
func scalarDyadic(name string, fn cellFn2, assoc bool) *Fn {
	return &Fn{
		Name:              name,
		EvalAB:            func(c *config.Config, a, b *value.Value) *value.Value { return elementwise2(c, a, b, fn) },
		AssociativeScalar: assoc,
	}
}

func elementwise1(c *config.Config, b *value.Value, fn cellFn) *value.Value {
	n := b.Len()
	out := value.NewBuilder(b.Shape())
	pool := workers.Pool{Cores: c.ParallelCores()}
	if pool.ShouldParallelize(n, c.MonadicThreshold()) {
		results := make([]value.Cell, n)
		pool.Run(n, func(lo, hi int64) {
			for i := lo; i < hi; i++ {
				results[i] = fn(c, b.At(i))
			}
		})
		for _, r := range results {
			out.Put(r)
		}
		return out.Build()
	}
	for i := int64(0); i < n; i++ {
		out.Put(fn(c, b.At(i)))
	}
	return out.Build()
}

func elementwise2(c *config.Config, a, b *value.Value, fn cellFn2) *value.Value {
	ash, bsh := a.Shape(), b.Shape()
	var outShape value.Shape
	switch {
	case ash.Equal(bsh):
		outShape = ash
	case a.IsVolumeOne():
		outShape = bsh
	case b.IsVolumeOne():
		outShape = ash
	default:
		panic(errs.Length("shapes %s and %s do not conform", ash, bsh))
	}
	out := value.NewBuilder(outShape)
	total := out.Len()
	alen, blen := a.Len(), b.Len()

	get := func(v *value.Value, vlen, i int64) value.Cell {
		if vlen == 1 {
			return v.At(0)
		}
		return v.At(i)
	}

	pool := workers.Pool{Cores: c.ParallelCores()}
	if pool.ShouldParallelize(total, c.DyadicThreshold()) {
		results := make([]value.Cell, total)
		pool.Run(total, func(lo, hi int64) {
			for i := lo; i < hi; i++ {
				results[i] = fn(c, get(a, alen, i), get(b, blen, i))
			}
		})
		for _, r := range results {
			out.Put(r)
		}
		return out.Build()
	}
	for i := int64(0); i < total; i++ {
		out.Put(fn(c, get(a, alen, i), get(b, blen, i)))
	}
	return out.Build()
}

func wrap2(fn func(a, b value.Cell) value.Cell) cellFn2 {
	return func(c *config.Config, a, b value.Cell) value.Cell { return fn(a, b) }
}

// Plus, Minus, Times, Divide, Power, CeilBinary, FloorBinary implement
// the scalar arithmetic primitives +, -, ×, ÷, ⋆, ⌈, ⌊ (spec §4.1).
// Monadic conjugate/negate are grounded on the teacher's value/unary.go
// unary ops table; the dyadic forms delegate straight to apl/value's
// coercing Cell arithmetic.
var (
	Plus = &Fn{
		Name: "+",
		EvalB: func(c *config.Config, b *value.Value) *value.Value {
			return elementwise1(c, b, func(_ *config.Config, x value.Cell) value.Cell {
				if x.Kind() == value.KindComplex {
					re, im := x.Components()
					return value.Complex(re, -im)
				}
				return x
			})
		},
		EvalAB: func(c *config.Config, a, b *value.Value) *value.Value { return elementwise2(c, a, b, wrap2(value.Add)) },
		Identity: func(b *value.Value, axis int) (*value.Value, bool) {
			return value.NewFilled(b.Shape().DropAxis(axis), value.Int(0)), true
		},
	}
	Minus = &Fn{
		Name:   "-",
		EvalB:  func(c *config.Config, b *value.Value) *value.Value { return elementwise1(c, b, func(_ *config.Config, x value.Cell) value.Cell { return value.Neg(x) }) },
		EvalAB: func(c *config.Config, a, b *value.Value) *value.Value { return elementwise2(c, a, b, wrap2(value.Sub)) },
	}
	Times       = scalarDyadic("×", wrap2(value.Mul), true)
	Divide      = scalarDyadic("÷", wrap2(value.Div), false)
	Power       = scalarDyadic("⋆", wrap2(value.Pow), false)
	CeilBinary  = scalarDyadic("⌈", wrap2(value.Max), true)
	FloorBinary = scalarDyadic("⌊", wrap2(value.Min), true)

	// GCDOp and LCMOp implement APL2's dyadic ∧/∨ overload on integer
	// cells (spec §4.1); non-integer operands are not supported. AndOp/OrOp/NandOp/NorOp/XorOp are the bitwise
	// forms used on integer or character bit patterns.
	GCDOp = scalarDyadic("gcd", wrap2(value.GCD), true)
	LCMOp = scalarDyadic("lcm", wrap2(value.LCM), true)

	AndOp  = scalarDyadic("and", wrap2(value.And), true)
	OrOp   = scalarDyadic("or", wrap2(value.Or), true)
	NandOp = scalarDyadic("nand", wrap2(value.Nand), false)
	NorOp  = scalarDyadic("nor", wrap2(value.Nor), false)
	XorOp  = scalarDyadic("xor", wrap2(value.Xor), true)
)

// LessThan, LessEq, EqualTo, GreaterEq, GreaterThan, NotEqualTo implement
// the relational primitives (spec §4.1), each producing a boolean (0/1
// int) ravel, comparing with config's tolerance qct.
var (
	LessThan    = scalarDyadic("<", relOp(func(c, d value.Cell, qct float64) bool { return c.Less(d) }), false)
	GreaterThan = scalarDyadic(">", relOp(func(c, d value.Cell, qct float64) bool { return d.Less(c) }), false)
	EqualTo     = scalarDyadic("=", relOp(func(c, d value.Cell, qct float64) bool { return c.Equal(d, qct) }), false)
	NotEqualTo  = scalarDyadic("≠", relOp(func(c, d value.Cell, qct float64) bool { return !c.Equal(d, qct) }), false)
	LessEq      = scalarDyadic("≤", relOp(func(c, d value.Cell, qct float64) bool { return c.Less(d) || c.Equal(d, qct) }), false)
	GreaterEq   = scalarDyadic("≥", relOp(func(c, d value.Cell, qct float64) bool { return d.Less(c) || c.Equal(d, qct) }), false)
)

func relOp(fn func(c, d value.Cell, qct float64) bool) cellFn2 {
	return func(c *config.Config, a, b value.Cell) value.Cell {
		if fn(a, b, c.Tolerance()) {
			return value.Int(1)
		}
		return value.Int(0)
	}
}
