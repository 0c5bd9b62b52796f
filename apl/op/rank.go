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

// RankSpec is the parsed y operand of f⍤y (spec §4.7): up to three
// integers giving the chunk rank for the monadic case, the dyadic left
// argument, and the dyadic right argument respectively.
type RankSpec struct {
	Monadic    int
	Left       int
	Right      int
	HasLeft    bool // distinguishes [y] (both sides share Monadic/Right) from [ya,yb]
	HasMonadic bool
}

// ParseRankSpec interprets the 1-3 element integer vector y per spec
// §4.7's layout table.
func ParseRankSpec(c *config.Config, y *value.Value) RankSpec {
	n := y.Len()
	ints := make([]int64, n)
	for i := int64(0); i < n; i++ {
		v, ok := y.At(i).ToIntTol(c.Tolerance())
		if !ok {
			panic(errs.Domain("rank operator: operand must be integers"))
		}
		ints[i] = v
	}
	switch n {
	case 1:
		r := int(ints[0])
		return RankSpec{Monadic: r, Left: r, Right: r, HasMonadic: true}
	case 2:
		return RankSpec{Left: int(ints[0]), Right: int(ints[1]), HasLeft: true}
	case 3:
		return RankSpec{Monadic: int(ints[0]), Left: int(ints[1]), Right: int(ints[2]), HasMonadic: true, HasLeft: true}
	default:
		panic(errs.Length("rank operator: y must have 1 to 3 elements, got %d", n))
	}
}

// clampRank resolves a requested chunk rank against an argument's actual
// rank (spec §4.7: "Negative chunk ranks count from the argument rank;
// ranks exceeding the argument rank are clamped").
func clampRank(requested, actual int) int {
	r := requested
	if r < 0 {
		r = actual + r
	}
	if r < 0 {
		r = 0
	}
	if r > actual {
		r = actual
	}
	return r
}

// frameAndChunk splits v's shape into a frame (the leading axes not
// consumed by the chunk) and a chunk shape of the given rank (the
// trailing axes), per spec §4.7.
func frameAndChunk(v *value.Value, chunkRank int) (frame, chunk value.Shape) {
	sh := v.Shape()
	r := sh.Rank()
	split := r - chunkRank
	return value.NewShape(sh.Dims()[:split]...), value.NewShape(sh.Dims()[split:]...)
}

// chunkAt extracts the chunk-shaped sub-value at frame index i (0-based,
// row-major over the frame) out of v, whose shape is frame ++ chunk.
func chunkAt(v *value.Value, frame, chunk value.Shape, i int64) *value.Value {
	chunkVol := chunk.Volume()
	b := value.NewBuilder(chunk)
	base := i * chunkVol
	n := b.Len()
	for k := int64(0); k < n; k++ {
		b.Put(v.At(base + k))
	}
	return b.Build()
}

// RankMonadic implements f⍤y B (spec §4.7): B's shape splits into a frame
// (high axes) and a chunk of the resolved monadic chunk rank (low axes).
// For each frame index a chunk-shaped sub-value is assembled, passed to
// f, and the results are assembled back into a value framed the same way,
// its own per-result shape taken from the first invocation (scalar
// results collapse to a plain array; non-scalar results are placed cell
// by cell, giving shape frame ++ result shape, and results of differing
// shapes raise LENGTH_ERROR). A
// rank-0 (scalar) frame still calls f exactly once (supplemented from
// original_source/Bif_OPER2_RANK.cc, spec §9 note).
func RankMonadic(f Operand, c *config.Config, bridge macro.Bridge, chunkRank int, b *value.Value) *value.Value {
	br := b.Rank()
	cr := clampRank(chunkRank, br)
	frame, chunk := frameAndChunk(b, cr)
	// frame.Volume() is already 1 for a rank-0 (scalar) frame, so a
	// chunk rank equal to the argument's own rank naturally invokes f
	// exactly once (supplemented from original_source/Bif_OPER2_RANK.cc,
	// spec §9 note) without a special case.
	n := frame.Volume()

	results := make([]*value.Value, n)
	for i := int64(0); i < n; i++ {
		sub := chunkAt(b, frame, chunk, i)
		r, s := f.callB(c, bridge, sub)
		if s != nil {
			suspended()
		}
		results[i] = r
	}
	return assembleFrame(frame, results)
}

// RankDyadic implements A f⍤y B: A and B are each split into a frame and
// a chunk per their own resolved rank; frames must agree in shape (after
// scalar-extension when one side's frame is empty), and each aligned
// frame index feeds one chunk-pair invocation of f.
func RankDyadic(f Operand, c *config.Config, bridge macro.Bridge, leftRank, rightRank int, a, b *value.Value) *value.Value {
	ar, brk := a.Rank(), b.Rank()
	acr := clampRank(leftRank, ar)
	bcr := clampRank(rightRank, brk)
	aframe, achunk := frameAndChunk(a, acr)
	bframe, bchunk := frameAndChunk(b, bcr)

	frame := aframe
	an, bn := aframe.Volume(), bframe.Volume()
	switch {
	case aframe.Equal(bframe):
		frame = aframe
	case an == 1:
		frame = bframe
	case bn == 1:
		frame = aframe
	default:
		panic(errs.Length("rank operator: frames %s and %s do not conform", aframe, bframe))
	}

	n := frame.Volume()
	results := make([]*value.Value, n)
	for i := int64(0); i < n; i++ {
		ai, bi := i, i
		if an == 1 {
			ai = 0
		}
		if bn == 1 {
			bi = 0
		}
		asub := chunkAt(a, aframe, achunk, ai)
		bsub := chunkAt(b, bframe, bchunk, bi)
		r, s := f.callAB(c, bridge, asub, bsub)
		if s != nil {
			suspended()
		}
		results[i] = r
	}
	return assembleFrame(frame, results)
}

// assembleFrame places per-frame-index results into a single value
// shaped frame ++ (each result's own shape, required uniform across all
// results), the standard "disclose the container" step of spec §4.7.
// Scalar per-invocation results collapse directly into the frame's
// ravel; non-scalar results are placed cell-by-cell, requiring every
// result to share the same shape (a mismatched shape is a LENGTH_ERROR,
// since the frame can only host one uniform chunk shape per axis).
func assembleFrame(frame value.Shape, results []*value.Value) *value.Value {
	if len(results) == 0 {
		return value.NewFilled(frame, value.Int(0))
	}
	resultShape := results[0].Shape()
	for _, r := range results[1:] {
		if !r.Shape().Equal(resultShape) {
			panic(errs.Length("rank operator: per-frame results have differing shapes %s and %s", resultShape, r.Shape()))
		}
	}
	outDims := append(append([]int64(nil), frame.Dims()...), resultShape.Dims()...)
	out := value.NewShape(outDims...)
	b := value.NewBuilder(out)
	for _, r := range results {
		rn := r.Len()
		for k := int64(0); k < rn; k++ {
			b.Put(r.At(k))
		}
	}
	return b.Build()
}
