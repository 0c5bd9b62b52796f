// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package op

import (
	"github.com/apl-core/aplcore/apl/config"
	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/value"
)

// Replicate implements A/B and A/[X]B (spec §4.4 "replicate, ambiguous
// with reduce"): A is a vector of per-slice repeat counts, one per
// element of B's axis X (or a single count scalar-extended across the
// whole axis). Each non-negative count copies the corresponding slice
// that many times; each negative count emits |count| filler slices of
// B's prototype instead. Grounded on the teacher's value/matrix.go
// compress, generalized to an arbitrary axis via Shape3At.
func Replicate(c *config.Config, axis int, a, b *value.Value) *value.Value {
	bsh := b.Shape()
	s3, err := bsh.Shape3At(axis)
	if err != nil {
		panic(err)
	}
	counts := replicateCounts(c, a, s3.M)

	total := int64(0)
	for _, n := range counts {
		if n < 0 {
			total += -n
		} else {
			total += n
		}
	}

	outDims := append([]int64(nil), bsh.Dims()...)
	if len(outDims) == 0 {
		outDims = []int64{total}
	} else {
		outDims[axis] = total
	}
	out := value.NewShape(outDims...)
	builder := value.NewBuilder(out)
	proto := b.Prototype()

	for h := int64(0); h < s3.H; h++ {
		for _, count := range replicateRowPlan(counts) {
			m, reps, fill := count.index, count.reps, count.fill
			for rep := int64(0); rep < reps; rep++ {
				for l := int64(0); l < s3.L; l++ {
					if fill {
						builder.Put(proto)
					} else {
						builder.Put(b.At(h*s3.M*s3.L + m*s3.L + l))
					}
				}
			}
		}
	}
	return builder.Build()
}

type replicateStep struct {
	index int64
	reps  int64
	fill  bool
}

// replicateRowPlan expands counts into the ordered sequence of
// (source-slice, repeat-count, isFiller) steps replicate emits along one
// H-row, preserving B's slice order (spec §4.4: "the total length of the
// X-axis becomes +/|A|").
func replicateRowPlan(counts []int64) []replicateStep {
	plan := make([]replicateStep, len(counts))
	for m, n := range counts {
		if n < 0 {
			plan[m] = replicateStep{index: int64(m), reps: -n, fill: true}
		} else {
			plan[m] = replicateStep{index: int64(m), reps: n, fill: false}
		}
	}
	return plan
}

// replicateCounts validates and extends A to length m (scalar-extending
// a length-1 A across the whole axis, spec §4.4).
func replicateCounts(c *config.Config, a *value.Value, m int64) []int64 {
	n := a.Len()
	if n != 1 && n != m {
		panic(errs.Length("replicate: left operand length %d does not match axis length %d", n, m))
	}
	out := make([]int64, m)
	for i := int64(0); i < m; i++ {
		idx := i
		if n == 1 {
			idx = 0
		}
		v, ok := a.At(idx).ToIntTol(c.Tolerance())
		if !ok {
			panic(errs.Domain("replicate: left operand must be integers"))
		}
		out[i] = v
	}
	return out
}

// Expand implements A\B and A\[X]B (spec §4.4): A is a 0/1 vector (length
// equal to the result's axis length); each 1 consumes the next slice of
// B, each 0 emits a filler slice of B's prototype. Grounded on the same
// teacher "compress" routine, run in its inverse mode.
func Expand(c *config.Config, axis int, a, b *value.Value) *value.Value {
	bsh := b.Shape()
	s3, err := bsh.Shape3At(axis)
	if err != nil {
		panic(err)
	}

	mask := make([]bool, a.Len())
	ones := int64(0)
	for i := range mask {
		v, ok := a.At(int64(i)).ToIntTol(c.Tolerance())
		if !ok || (v != 0 && v != 1) {
			panic(errs.Domain("expand: left operand must be a 0/1 vector"))
		}
		mask[i] = v == 1
		if mask[i] {
			ones++
		}
	}
	if ones != s3.M {
		panic(errs.Length("expand: %d ones in left operand do not match axis length %d", ones, s3.M))
	}

	outDims := append([]int64(nil), bsh.Dims()...)
	if len(outDims) == 0 {
		outDims = []int64{int64(len(mask))}
	} else {
		outDims[axis] = int64(len(mask))
	}
	out := value.NewShape(outDims...)
	builder := value.NewBuilder(out)
	proto := b.Prototype()

	for h := int64(0); h < s3.H; h++ {
		m := int64(0)
		for _, bit := range mask {
			for l := int64(0); l < s3.L; l++ {
				if bit {
					builder.Put(b.At(h*s3.M*s3.L + m*s3.L + l))
				} else {
					builder.Put(proto)
				}
			}
			if bit {
				m++
			}
		}
	}
	return builder.Build()
}
