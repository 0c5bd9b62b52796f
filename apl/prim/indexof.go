// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prim

import (
	"sort"

	"github.com/apl-core/aplcore/apl/config"
	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/value"
)

// Iota implements monadic ⍳B (the index generator: a vector of B
// consecutive integers starting at ⎕IO, or an array of shape B when B
// has more than one element) and dyadic A⍳B (index-of: the position of
// each cell of B within A, or 1+last valid index when absent). Grounded
// on the teacher's value/binary.go binaryIota and value/unary.go's
// scalar iota.
var Iota = &Fn{Name: "⍳", EvalB: iotaB, EvalAB: indexOfAB}

// IntervalIndex implements A⍸B (spec §4.3): treats A, sorted ascending,
// as interval boundaries and reports, for each cell of B, how many
// boundaries it is greater than or equal to.
var IntervalIndex = &Fn{Name: "⍸", EvalAB: intervalIndexAB}

func iotaB(c *config.Config, b *value.Value) *value.Value {
	origin := int64(c.Origin())
	if b.Len() == 1 {
		n, ok := b.At(0).ToIntTol(c.Tolerance())
		if !ok || n < 0 {
			panic(errs.Domain("iota: operand must be a non-negative integer"))
		}
		out := value.NewBuilder(value.NewShape(n))
		for i := int64(0); i < n; i++ {
			out.Put(value.Int(i + origin))
		}
		return out.Build()
	}
	dims := ravelInts(c, b)
	shape := value.NewShape(dims...)
	out := value.NewBuilder(shape)
	n := out.Len()
	for i := int64(0); i < n; i++ {
		out.Put(value.Int(i + origin))
	}
	return out.Build()
}

func indexOfAB(c *config.Config, a, b *value.Value) *value.Value {
	tol := c.Tolerance()
	origin := int64(c.Origin())
	notFound := origin + a.Len()
	out := value.NewBuilder(b.Shape())
	n := b.Len()
	for i := int64(0); i < n; i++ {
		x := b.At(i)
		found := notFound
		for j := int64(0); j < a.Len(); j++ {
			if a.At(j).Equal(x, tol) {
				found = j + origin
				break
			}
		}
		out.Put(value.Int(found))
	}
	return out.Build()
}

func intervalIndexAB(c *config.Config, a, b *value.Value) *value.Value {
	bounds := ravelFloats(a)
	sorted := append([]float64(nil), bounds...)
	sort.Float64s(sorted)

	out := value.NewBuilder(b.Shape())
	n := b.Len()
	for i := int64(0); i < n; i++ {
		x, ok := b.At(i).AsFloat64()
		if !ok {
			panic(errs.Domain("interval index: non-numeric cell"))
		}
		count := int64(sort.Search(len(sorted), func(k int) bool { return sorted[k] > x }))
		out.Put(value.Int(count))
	}
	return out.Build()
}
