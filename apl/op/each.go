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

// Each implements f¨B and A f¨B (spec §4.5): applies f to every cell of
// B (monadic), or to conforming cell pairs of A and B (dyadic, scalar
// extension applies as usual), grounded on the teacher's value/eval.go
// unaryVectorOp/binaryVectorOp generalized to any rank.
func Each(f Operand, c *config.Config, bridge macro.Bridge, b *value.Value) *value.Value {
	out := value.NewBuilder(b.Shape())
	n := b.Len()
	for i := int64(0); i < n; i++ {
		r, s := f.callB(c, bridge, value.NewScalar(b.At(i)))
		if s != nil {
			suspended()
		}
		out.Put(r.At(0))
	}
	return out.Build()
}

// EachDyadic implements A f¨B.
func EachDyadic(f Operand, c *config.Config, bridge macro.Bridge, a, b *value.Value) *value.Value {
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
		panic(errs.Length("each: shapes %s and %s do not conform", ash, bsh))
	}
	out := value.NewBuilder(outShape)
	n := out.Len()
	alen, blen := a.Len(), b.Len()
	get := func(v *value.Value, vlen, i int64) value.Cell {
		if vlen == 1 {
			return v.At(0)
		}
		return v.At(i)
	}
	for i := int64(0); i < n; i++ {
		r, s := f.callAB(c, bridge, value.NewScalar(get(a, alen, i)), value.NewScalar(get(b, blen, i)))
		if s != nil {
			suspended()
		}
		out.Put(r.At(0))
	}
	return out.Build()
}

// Commute implements f⍨B (B f B, i.e. f applied with both operands equal
// to B) and A f⍨B (the dyadic form with operands swapped: B f A), spec
// §4.5's "commute"/"constant" operator.
func Commute(f Operand, c *config.Config, bridge macro.Bridge, a, b *value.Value) *value.Value {
	if a == nil {
		r, s := f.callAB(c, bridge, b, b)
		if s != nil {
			suspended()
		}
		return r
	}
	r, s := f.callAB(c, bridge, b, a)
	if s != nil {
		suspended()
	}
	return r
}
