// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prim

import (
	"github.com/apl-core/aplcore/apl/config"
	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/value"
)

// Reshape implements A⍴B (spec §4.3): produces a Value of shape A, whose
// ravel cycles through B's ravel, padded with B's prototype if B is
// empty.
var Reshape = &Fn{
	Name:   "⍴",
	EvalB:  reshapeB,
	EvalAB: reshapeAB,
}

// reshapeB is monadic ⍴: report the shape of B as an integer vector.
func reshapeB(c *config.Config, b *value.Value) *value.Value {
	dims := b.Shape().Dims()
	vb := value.NewBuilder(value.NewShape(int64(len(dims))))
	for _, d := range dims {
		vb.Put(value.Int(d))
	}
	return vb.Build()
}

func reshapeAB(c *config.Config, a, b *value.Value) *value.Value {
	dims := ravelInts(c, a)
	for _, d := range dims {
		if d < 0 {
			panic(errs.Domain("bad shape for reshape: %d is negative", d))
		}
	}
	shape := value.NewShape(dims...)
	out := value.NewBuilder(shape)
	n := out.Len()
	blen := b.Len()
	var fill func(i int64) value.Cell
	if blen == 1 && b.Shape().Volume() == 0 {
		proto := b.Prototype()
		fill = func(int64) value.Cell { return proto }
	} else {
		fill = func(i int64) value.Cell { return b.At(i % blen) }
	}
	for i := int64(0); i < n; i++ {
		out.Put(fill(i))
	}
	return out.Build()
}
