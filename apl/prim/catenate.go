// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prim

import (
	"github.com/apl-core/aplcore/apl/config"
	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/value"
)

// Catenate implements monadic ravel and dyadic A,B / A,[X]B (spec §4.3):
// join A and B along an axis, defaulting to the last axis. An operand one
// rank short of the other is first promoted by inserting a length-1 axis
// at the catenation point (spec's generalization of the teacher's
// separate list/elem and elem/list cases in value/matrix.go's
// catenateFirst), and an operand of volume one is scalar-extended to
// match the other's shape off-axis.
var Catenate = &Fn{
	Name:    ",",
	EvalB:   func(c *config.Config, b *value.Value) *value.Value { return value.Ravel(b) },
	EvalAB:  func(c *config.Config, a, b *value.Value) *value.Value { return catenateDefault(c, a, b) },
	EvalAXB: catenateAXB,
}

func catenateDefault(c *config.Config, a, b *value.Value) *value.Value {
	axis := max(a.Rank(), b.Rank()) - 1
	if axis < 0 {
		axis = 0
	}
	return catenateAxis(a, b, axis)
}

func catenateAXB(c *config.Config, a, x, b *value.Value) *value.Value {
	axis := axisIndex(c, x, bigger(a.Shape(), b.Shape()))
	return catenateAxis(a, b, axis)
}

func bigger(a, b value.Shape) value.Shape {
	if a.Rank() >= b.Rank() {
		return a
	}
	return b
}

// catenateAxis joins a and b along axis, after promoting rank and
// scalar-extending as needed.
func catenateAxis(a, b *value.Value, axis int) *value.Value {
	a, b = promoteForCatenate(a, b, axis)

	ash, bsh := a.Shape(), b.Shape()
	if ash.Rank() != bsh.Rank() {
		panic(errs.Rank("catenate: mismatched ranks %d and %d", ash.Rank(), bsh.Rank()))
	}
	for i := 0; i < ash.Rank(); i++ {
		if i == axis {
			continue
		}
		if ash.Dim(i) != bsh.Dim(i) {
			panic(errs.Length("catenate: shapes %s and %s disagree off axis %d", ash, bsh, axis))
		}
	}

	dims := append([]int64(nil), ash.Dims()...)
	if len(dims) == 0 {
		dims = []int64{ash.Volume() + bsh.Volume()}
	} else {
		dims[axis] = ash.Dim(axis) + bsh.Dim(axis)
	}
	out := value.NewShape(dims...)

	a3, err := ash.Shape3At(axis)
	if err != nil {
		panic(err)
	}
	b3, err := bsh.Shape3At(axis)
	if err != nil {
		panic(err)
	}

	builder := value.NewBuilder(out)
	aBlock := a3.M * a3.L
	bBlock := b3.M * b3.L
	for h := int64(0); h < a3.H; h++ {
		for i := int64(0); i < aBlock; i++ {
			builder.Put(a.At(h*aBlock + i))
		}
		for i := int64(0); i < bBlock; i++ {
			builder.Put(b.At(h*bBlock + i))
		}
	}
	return builder.Build()
}

// promoteForCatenate inserts a length-1 axis at axis into whichever
// operand is exactly one rank short of the other (spec §4.3 "laminate"),
// and scalar-extends whichever operand has volume one but the wrong rank
// entirely.
func promoteForCatenate(a, b *value.Value, axis int) (*value.Value, *value.Value) {
	ar, br := a.Rank(), b.Rank()
	switch {
	case ar == br:
		return a, b
	case ar+1 == br:
		return extendTo(a, b.Shape(), axis), b
	case br+1 == ar:
		return a, extendTo(b, a.Shape(), axis)
	case a.IsVolumeOne():
		return extendTo(a, b.Shape(), axis), b
	case b.IsVolumeOne():
		return a, extendTo(b, a.Shape(), axis)
	default:
		panic(errs.Rank("catenate: incompatible ranks %d and %d", ar, br))
	}
}

// extendTo reshapes v (whose rank is target's rank minus one, or whose
// volume is one) into target's rank by inserting a length-1 axis at axis
// and cycling v's ravel to fill it (spec §4.3 scalar extension).
func extendTo(v *value.Value, target value.Shape, axis int) *value.Value {
	dims := append([]int64(nil), target.Dims()...)
	if axis < len(dims) {
		dims[axis] = 1
	}
	shape := value.NewShape(dims...)
	b := value.NewBuilder(shape)
	n := b.Len()
	vn := v.Len()
	for i := int64(0); i < n; i++ {
		b.Put(v.At(i % vn))
	}
	return b.Build()
}
