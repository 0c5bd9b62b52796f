// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prim

import (
	"github.com/apl-core/aplcore/apl/config"
	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/value"
)

// Transpose implements monadic ⍉B (reverse axis order) and dyadic A⍉B
// (the general transpose, where A maps each of B's axes to a result
// axis; a repeated destination axis selects B's diagonal along those
// source axes), grounded on the teacher's value/matrix.go
// Matrix.transpose/binaryTranspose.
var Transpose = &Fn{
	Name:   "⍉",
	EvalB:  transposeB,
	EvalAB: transposeAB,
}

func transposeB(c *config.Config, b *value.Value) *value.Value {
	r := b.Rank()
	perm := make([]int, r)
	for i := range perm {
		perm[i] = r - 1 - i
	}
	return transposeWith(c, perm, b)
}

// transposeWith permutes b's axes so that result axis i holds b's source
// axis perm[i], a bijection (no diagonal folding).
func transposeWith(c *config.Config, perm []int, b *value.Value) *value.Value {
	bsh := b.Shape()
	newShape := bsh.Permute(perm)
	out := value.NewBuilder(newShape)
	n := out.Len()
	coords := make([]int64, len(perm))
	for i := int64(0); i < n; i++ {
		srcCoords := make([]int64, bsh.Rank())
		for j, p := range perm {
			srcCoords[p] = coords[j]
		}
		out.Put(b.At(flatIndex(bsh, srcCoords)))
		for k := len(coords) - 1; k >= 0; k-- {
			coords[k]++
			if coords[k] < newShape.Dim(k) {
				break
			}
			coords[k] = 0
		}
	}
	return out.Build()
}

func flatIndex(s value.Shape, coords []int64) int64 {
	var idx int64
	for i, d := range s.Dims() {
		idx = idx*d + coords[i]
	}
	return idx
}

// transposeAB implements the dyadic form: A names, for each of B's axes
// in order, which result axis it feeds. When two source axes map to the
// same result axis, that result axis selects B's diagonal across them
// (spec §4.3's generalization of APL2's dyadic transpose), and the
// result rank is one less than B's for every extra source axis folded
// into an already-used destination.
func transposeAB(c *config.Config, a, b *value.Value) *value.Value {
	bsh := b.Shape()
	if int(a.Len()) != bsh.Rank() {
		panic(errs.Length("transpose: operand length %d != rank %d", a.Len(), bsh.Rank()))
	}
	origin := int64(c.Origin())
	oldToNew := make([]int, a.Len())
	rank := 0
	for i := int64(0); i < a.Len(); i++ {
		v, ok := a.At(i).ToIntTol(c.Tolerance())
		if !ok {
			panic(errs.Domain("transpose: non-integer axis index"))
		}
		v -= origin
		if v < 0 || int(v) >= bsh.Rank() {
			panic(errs.Axis("transpose: axis index %d out of range", v+origin))
		}
		oldToNew[i] = int(v)
		if int(v)+1 > rank {
			rank = int(v) + 1
		}
	}

	shape := make([]int64, rank)
	for i := range shape {
		shape[i] = -1
	}
	for oi, d := range bsh.Dims() {
		ni := oldToNew[oi]
		if shape[ni] == -1 || shape[ni] > d {
			shape[ni] = d
		}
	}
	for i, d := range shape {
		if d == -1 {
			panic(errs.Axis("transpose: missing destination axis %d", int64(i)+origin))
		}
	}

	out := value.NewBuilder(value.NewShape(shape...))
	n := out.Len()
	idx := make([]int64, rank)
	for i := int64(0); i < n; i++ {
		var oi int64
		for j, d := range bsh.Dims() {
			oi = oi*d + idx[oldToNew[j]]
		}
		out.Put(b.At(oi))
		for k := rank - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < shape[k] {
				break
			}
			idx[k] = 0
		}
	}
	return out.Build()
}
