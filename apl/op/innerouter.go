// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package op

import (
	"github.com/apl-core/aplcore/apl/config"
	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/macro"
	"github.com/apl-core/aplcore/apl/value"
)

// InnerProduct implements A f.g B (spec §4.5): for every pair (i, j) of
// outer indices, Z[i,j] = f/(A[i,*] g B[*,j]). The inner (shared) length
// k = last axis of A = first axis of B; k=1 on either side scalar-extends
// to match the other. Grounded on the teacher's value/eval.go
// innerProduct, generalized from matrix-only to A1 ++ B1 shaped results.
func InnerProduct(f, g Operand, c *config.Config, bridge macro.Bridge, a, b *value.Value) *value.Value {
	ash, bsh := a.Shape(), b.Shape()
	ar, br := ash.Rank(), bsh.Rank()
	if ar == 0 || br == 0 {
		panic(errs.Rank("inner product: operands must have rank ≥ 1"))
	}
	k := ash.Dim(ar - 1)
	kb := bsh.Dim(0)
	if k != kb && k != 1 && kb != 1 {
		panic(errs.Length("inner product: inner lengths %d and %d do not match", k, kb))
	}
	inner := k
	if inner == 1 {
		inner = kb
	}

	a1 := ash.DropAxis(ar - 1)
	b1 := bsh.DropAxis(0)
	outDims := append(append([]int64(nil), a1.Dims()...), b1.Dims()...)
	out := value.NewShape(outDims...)
	builder := value.NewBuilder(out)

	aVol := a1.Volume()
	bVol := b1.Volume()

	if a.Len() == 0 || b.Len() == 0 || aVol == 0 || bVol == 0 || inner == 0 {
		// spec §4.5: "If either argument is empty, the result has the
		// same shape but every cell is filled by g's fill function
		// applied to the prototypes of A, B."
		fillCell, s := g.callAB(c, bridge, value.NewScalar(a.Prototype()), value.NewScalar(b.Prototype()))
		if s != nil {
			suspended()
		}
		n := builder.Len()
		for i := int64(0); i < n; i++ {
			builder.Put(fillCell.At(0))
		}
		return builder.Build()
	}

	for i := int64(0); i < aVol; i++ {
		for j := int64(0); j < bVol; j++ {
			cells := make([]value.Cell, inner)
			for m := int64(0); m < inner; m++ {
				am := m
				if k == 1 {
					am = 0
				}
				bm := m
				if kb == 1 {
					bm = 0
				}
				av := a.At(i*k + am)
				bv := b.At(bm*bVol + j)
				r, s := g.callAB(c, bridge, value.NewScalar(av), value.NewScalar(bv))
				if s != nil {
					suspended()
				}
				cells[m] = r.At(0)
			}
			builder.Put(reduceCells(f, c, bridge, cells))
		}
	}
	return builder.Build()
}

// OuterProduct implements A ∘.g B (spec §4.5): result shape ⍴A ++ ⍴B,
// each cell g applied to the Cartesian pair of A and B cells. Nested
// cells are unwrapped (disclosed) before g is invoked.
func OuterProduct(g Operand, c *config.Config, bridge macro.Bridge, a, b *value.Value) *value.Value {
	ash, bsh := a.Shape(), b.Shape()
	outDims := append(append([]int64(nil), ash.Dims()...), bsh.Dims()...)
	out := value.NewShape(outDims...)
	builder := value.NewBuilder(out)

	an, bn := a.Len(), b.Len()
	for i := int64(0); i < an; i++ {
		av := unwrap(a.At(i))
		for j := int64(0); j < bn; j++ {
			bv := unwrap(b.At(j))
			r, s := g.callAB(c, bridge, av, bv)
			if s != nil {
				suspended()
			}
			builder.Put(r.At(0))
		}
	}
	return builder.Build()
}

// unwrap discloses a pointer cell into its nested Value (spec §4.5
// "Nested cells are unwrapped before g is invoked"), or wraps a plain
// cell as a scalar Value.
func unwrap(c value.Cell) *value.Value {
	if p := c.Pointee(); p != nil {
		return p
	}
	return value.NewScalar(c)
}
