// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prim

import (
	"github.com/apl-core/aplcore/apl/config"
	"github.com/apl-core/aplcore/apl/value"
)

// Rotate implements monadic ⌽B/A⌽B (rotate along the last axis, or the
// axis named by X) and monadic ⊖B/A⊖B (rotate along the first axis),
// grounded on the teacher's value/matrix.go Matrix.rotate/vrotate: each
// slab along the rotation axis is rotated independently by a count drawn
// either from a single scalar A or an A cell per slab (spec §4.3's "last
// axis"/"first axis" pair of rotate primitives).
var Rotate = &Fn{
	Name:   "⌽",
	EvalB:  func(c *config.Config, b *value.Value) *value.Value { return rotateAxis(c, nil, lastAxis(b.Shape()), b) },
	EvalAB: func(c *config.Config, a, b *value.Value) *value.Value { return rotateAxis(c, a, lastAxis(b.Shape()), b) },
	EvalXB: func(c *config.Config, x, b *value.Value) *value.Value {
		return rotateAxis(c, nil, axisIndex(c, x, b.Shape()), b)
	},
	EvalAXB: func(c *config.Config, a, x, b *value.Value) *value.Value {
		return rotateAxis(c, a, axisIndex(c, x, b.Shape()), b)
	},
}

// VRotate implements monadic ⊖B/A⊖B, rotate along the first axis.
var VRotate = &Fn{
	Name:   "⊖",
	EvalB:  func(c *config.Config, b *value.Value) *value.Value { return rotateAxis(c, nil, 0, b) },
	EvalAB: func(c *config.Config, a, b *value.Value) *value.Value { return rotateAxis(c, a, 0, b) },
}

func lastAxis(s value.Shape) int {
	r := s.Rank() - 1
	if r < 0 {
		return 0
	}
	return r
}

// rotateAxis rotates each slab along axis by a count drawn from a (one
// count per slab if len(a) > 1, else a single shared count), defaulting
// to a full reversal when a is nil (spec §4.3 monadic reverse).
func rotateAxis(c *config.Config, a *value.Value, axis int, b *value.Value) *value.Value {
	bsh := b.Shape()
	if bsh.Rank() == 0 {
		return b
	}
	s3, err := bsh.Shape3At(axis)
	if err != nil {
		panic(err)
	}
	var counts []int64
	if a == nil {
		counts = nil // reversal: handled below per slab
	} else {
		counts = ravelInts(c, a)
	}

	out := value.NewBuilder(bsh)
	dim := s3.M
	for h := int64(0); h < s3.H; h++ {
		for l := int64(0); l < s3.L; l++ {
			slabIdx := h*s3.L + l
			reverse := a == nil
			var shift int64
			if !reverse {
				if len(counts) == 1 {
					shift = counts[0]
				} else {
					shift = counts[slabIdx%int64(len(counts))]
				}
				shift = ((shift % dim) + dim) % dim
			}
			base := h*dim*s3.L + l
			for d := int64(0); d < dim; d++ {
				var src int64
				if reverse {
					src = dim - 1 - d
				} else {
					src = (d + shift) % dim
				}
				out.PutAt(base+d*s3.L, b.At(base+src*s3.L))
			}
		}
	}
	return out.Build()
}
