// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package op

import (
	"github.com/apl-core/aplcore/apl/config"
	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/macro"
	"github.com/apl-core/aplcore/apl/value"
	"github.com/apl-core/aplcore/apl/workers"
)

// Reduce implements f/B and f/[X]B (spec §4.4): folds f across the given
// axis (the caller always passes it), right-to-left per APL convention.
// Reducing a length-0 axis produces f's identity element if one exists,
// else LENGTH_ERROR. When f is an associative native scalar primitive
// and the result has more cells than the dyadic threshold, the per-slab
// folds are spread across apl/workers (spec §5, §9); grounded on
// the teacher's value/eval.go Reduce, generalized from "last axis of a
// matrix" to an arbitrary axis of an arbitrary rank.
func Reduce(f Operand, c *config.Config, bridge macro.Bridge, axis int, b *value.Value) *value.Value {
	bsh := b.Shape()
	if bsh.Rank() == 0 {
		return b
	}
	s3, err := bsh.Shape3At(axis)
	if err != nil {
		panic(err)
	}
	dim := s3.M
	if dim == 0 {
		id, ok := f.identity(b, axis)
		if !ok {
			panic(errs.Length("reduce: cannot reduce empty axis %d with no identity", axis))
		}
		return id
	}

	outShape := bsh.DropAxis(axis)
	out := value.NewBuilder(outShape)
	n := s3.H * s3.L

	slab := func(h, l int64) []value.Cell {
		cells := make([]value.Cell, dim)
		for m := int64(0); m < dim; m++ {
			cells[m] = b.At(h*dim*s3.L + m*s3.L + l)
		}
		return cells
	}

	reduceSlab := func(cells []value.Cell) value.Cell {
		return reduceCells(f, c, bridge, cells)
	}

	pool := workers.Pool{Cores: c.ParallelCores()}
	if f.associative() && pool.ShouldParallelize(n, c.DyadicThreshold()) {
		results := make([]value.Cell, n)
		pool.Run(n, func(lo, hi int64) {
			for i := lo; i < hi; i++ {
				h, l := i/s3.L, i%s3.L
				results[i] = reduceSlab(slab(h, l))
			}
		})
		for _, r := range results {
			out.Put(r)
		}
		return out.Build()
	}

	for h := int64(0); h < s3.H; h++ {
		for l := int64(0); l < s3.L; l++ {
			out.Put(reduceSlab(slab(h, l)))
		}
	}
	return out.Build()
}

// reduceCells folds f right-to-left across cells, matching APL's
// right-associative reduce. When f.associative() the fold instead runs
// left-to-right in a balanced binary tree, which is equivalent for an
// associative operator.
func reduceCells(f Operand, c *config.Config, bridge macro.Bridge, cells []value.Cell) value.Cell {
	if len(cells) == 1 {
		return cells[0]
	}
	if f.associative() {
		return reduceTree(f, c, bridge, cells)
	}
	acc := cells[len(cells)-1]
	for i := len(cells) - 2; i >= 0; i-- {
		acc = call1(f, c, bridge, cells[i], acc)
	}
	return acc
}

func reduceTree(f Operand, c *config.Config, bridge macro.Bridge, cells []value.Cell) value.Cell {
	if len(cells) == 1 {
		return cells[0]
	}
	mid := len(cells) / 2
	left := reduceTree(f, c, bridge, cells[:mid])
	right := reduceTree(f, c, bridge, cells[mid:])
	return call1(f, c, bridge, left, right)
}

func call1(f Operand, c *config.Config, bridge macro.Bridge, a, b value.Cell) value.Cell {
	av, bv := value.NewScalar(a), value.NewScalar(b)
	r, s := f.callAB(c, bridge, av, bv)
	if s != nil {
		suspended()
	}
	return r.At(0)
}

// NReduce implements n LO/ B (spec §4.4 "n-wise reduce"): a window of |n|
// adjacent slices along axis is folded per output element, with the
// window sliding one slice at a time; a negative n reverses the fold
// direction within each window. |n| = 0 repeats f's identity across the
// unreduced axis length; |n| greater than the axis length plus one is a
// DOMAIN_ERROR. Spec §9 Open Question (1): when |n| equals the axis
// length plus one exactly, this follows the *lrm* examples and yields an
// empty result along that axis, preserved here rather than treated as an
// error.
func NReduce(f Operand, c *config.Config, bridge macro.Bridge, n int64, axis int, b *value.Value) *value.Value {
	bsh := b.Shape()
	s3, err := bsh.Shape3At(axis)
	if err != nil {
		panic(err)
	}
	absN := n
	reverse := false
	if absN < 0 {
		absN = -absN
		reverse = true
	}
	if absN > s3.M+1 {
		panic(errs.Domain("n-wise reduce: |n|=%d exceeds axis length %d plus one", absN, s3.M))
	}

	var outLen int64
	switch {
	case absN == 0:
		outLen = s3.M
	case absN == s3.M+1:
		outLen = 0 // spec §9 Open Question (1): ambiguous case, follows lrm: empty result
	default:
		outLen = s3.M - absN + 1
	}

	outDims := append([]int64(nil), bsh.Dims()...)
	if len(outDims) == 0 {
		outDims = []int64{outLen}
	} else {
		outDims[axis] = outLen
	}
	out := value.NewBuilder(value.NewShape(outDims...))

	for h := int64(0); h < s3.H; h++ {
		for l := int64(0); l < s3.L; l++ {
			for start := int64(0); start < outLen; start++ {
				if absN == 0 {
					id, ok := f.identity(b, axis)
					if !ok {
						panic(errs.Length("n-wise reduce: |n|=0 requires an identity element"))
					}
					out.Put(id.At(0))
					continue
				}
				cells := make([]value.Cell, absN)
				for i := int64(0); i < absN; i++ {
					m := start + i
					cells[i] = b.At(h*s3.M*s3.L + m*s3.L + l)
				}
				if reverse {
					for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
						cells[i], cells[j] = cells[j], cells[i]
					}
				}
				out.Put(reduceCells(f, c, bridge, cells))
			}
		}
	}
	return out.Build()
}
