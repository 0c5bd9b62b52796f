// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

import (
	"fmt"
	"strings"

	"github.com/apl-core/aplcore/apl/errs"
)

// MaxRank is the largest rank a Shape may carry (spec §3.2).
const MaxRank = 8

// Shape is an ordered sequence of non-negative axis lengths. A zero-length
// Shape denotes a scalar.
type Shape struct {
	dims []int64
}

// NewShape builds a Shape from axis lengths, validating rank and that the
// resulting volume fits a signed 64-bit integer (spec §3.2 invariants).
func NewShape(dims ...int64) Shape {
	if len(dims) > MaxRank {
		panic(errs.Rank("shape of rank %d exceeds MAX_RANK %d", len(dims), MaxRank))
	}
	s := Shape{dims: append([]int64(nil), dims...)}
	_ = s.Volume() // panics on overflow
	return s
}

// Scalar is the rank-0 shape.
var Scalar = Shape{}

func (s Shape) Rank() int { return len(s.dims) }

// Dims returns the axis lengths. The caller must not mutate the result.
func (s Shape) Dims() []int64 { return s.dims }

// Dim returns the length of axis i, 0-based from the first axis.
func (s Shape) Dim(i int) int64 { return s.dims[i] }

// Last returns the length of the last axis, or 1 for a scalar.
func (s Shape) Last() int64 {
	if len(s.dims) == 0 {
		return 1
	}
	return s.dims[len(s.dims)-1]
}

// Volume returns the product of all axis lengths (1 for a scalar). Panics
// with WS_FULL if the product overflows int64, matching spec §3.2/§8's
// "Shape.volume fits in 64-bit signed" invariant.
func (s Shape) Volume() int64 {
	v := int64(1)
	for _, d := range s.dims {
		if d < 0 {
			panic(errs.Domain("negative axis length %d", d))
		}
		nv := v * d
		if d != 0 && nv/d != v {
			panic(errs.WSFullf("shape volume overflow"))
		}
		v = nv
	}
	return v
}

// DropAxis returns the shape with axis i removed.
func (s Shape) DropAxis(i int) Shape {
	out := make([]int64, 0, len(s.dims)-1)
	out = append(out, s.dims[:i]...)
	out = append(out, s.dims[i+1:]...)
	return Shape{dims: out}
}

// AddAxis returns the shape with a new axis of length n inserted at i.
func (s Shape) AddAxis(i int, n int64) Shape {
	out := make([]int64, 0, len(s.dims)+1)
	out = append(out, s.dims[:i]...)
	out = append(out, n)
	out = append(out, s.dims[i:]...)
	return Shape{dims: out}
}

// WithAxis returns a copy of s with axis i set to n.
func (s Shape) WithAxis(i int, n int64) Shape {
	out := append([]int64(nil), s.dims...)
	out[i] = n
	return Shape{dims: out}
}

// Equal reports element-wise equality (spec §3.2: "Shape equality is
// element-wise").
func (s Shape) Equal(t Shape) bool {
	if len(s.dims) != len(t.dims) {
		return false
	}
	for i := range s.dims {
		if s.dims[i] != t.dims[i] {
			return false
		}
	}
	return true
}

// Shape3 splits the shape into (H, M, L) around axis, the unifying
// representation spec §4.2 uses for every non-scalar primitive's loop:
// H is the product of axes before `axis`, M is the length of axis itself,
// and L is the product of axes after it.
type Shape3 struct {
	H, M, L int64
}

// Shape3At centers the shape around the given axis index (0-based).
// Returns an AxisError if axis is out of [0, rank); a scalar accepts
// axis 0 and yields H, M, L all 1.
func (s Shape) Shape3At(axis int) (Shape3, error) {
	if axis < 0 || axis >= maxInt(len(s.dims), 1) {
		return Shape3{}, errs.Axis("axis %d out of range for shape %s", axis, s)
	}
	h, m, l := int64(1), int64(1), int64(1)
	for i, d := range s.dims {
		switch {
		case i < axis:
			h *= d
		case i == axis:
			m = d
		default:
			l *= d
		}
	}
	if len(s.dims) == 0 {
		m = 1
	}
	return Shape3{H: h, M: m, L: l}, nil
}

// Permute returns a new shape with axes reordered by perm (perm[i] names
// the source axis feeding output axis i), used by Transpose.
func (s Shape) Permute(perm []int) Shape {
	out := make([]int64, len(perm))
	for i, p := range perm {
		out[i] = s.dims[p]
	}
	return Shape{dims: out}
}

// InversePermute returns perm⁻¹ such that Permute(InversePermute(perm))
// is the identity.
func InversePermute(perm []int) []int {
	inv := make([]int, len(perm))
	for i, p := range perm {
		inv[p] = i
	}
	return inv
}

func (s Shape) String() string {
	if len(s.dims) == 0 {
		return "()"
	}
	parts := make([]string, len(s.dims))
	for i, d := range s.dims {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return strings.Join(parts, " ")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
