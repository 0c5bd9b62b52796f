// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prim

import (
	"github.com/apl-core/aplcore/apl/config"
	"github.com/apl-core/aplcore/apl/value"
)

// Decode implements A⊥B (spec §4.3): evaluates B as the coefficients of a
// polynomial at the radices given by A, i.e. result = Σ B[i] · Π A[j]
// (j>i). A scalar operand broadcasts across the other's length. Grounded
// on the teacher's value/binary.go decode, adapted from its Horner-style
// accumulation.
var Decode = &Fn{Name: "⊥", EvalAB: decodeAB}

// Encode implements A⊤B: the mixed-radix residues of B against the radix
// vector A, one row per radix entry. Grounded on the teacher's
// value/binary.go encode.
var Encode = &Fn{Name: "⊤", EvalAB: encodeAB}

func decodeAB(c *config.Config, a, b *value.Value) *value.Value {
	av := ravelFloats(a)
	bv := ravelFloats(b)
	n := len(av)
	if len(bv) > n {
		n = len(bv)
	}
	get := func(v []float64, i int) float64 {
		if len(v) == 1 {
			return v[0]
		}
		return v[i]
	}
	result := 0.0
	prod := 1.0
	for i := n - 1; i >= 0; i-- {
		result += prod * get(bv, i)
		prod *= get(av, i)
	}
	return value.NewScalar(floatOrIntCell(result))
}

func encodeAB(c *config.Config, a, b *value.Value) *value.Value {
	av := ravelFloats(a)
	bv := ravelFloats(b)
	rows := len(av)
	cols := len(bv)
	out := value.NewBuilder(value.NewShape(int64(rows), int64(cols)))
	for col := 0; col < cols; col++ {
		residues := make([]float64, rows)
		x := bv[col]
		for i := rows - 1; i >= 0; i-- {
			radix := av[i]
			if radix == 0 {
				residues[i] = x
				continue
			}
			m := mod(x, radix)
			residues[i] = m
			x = (x - m) / radix
		}
		for i := 0; i < rows; i++ {
			out.PutAt(int64(i)*int64(cols)+int64(col), floatOrIntCell(residues[i]))
		}
	}
	return out.Build()
}

func mod(x, m float64) float64 {
	r := x - m*floorDiv(x, m)
	return r
}

func floorDiv(x, m float64) float64 {
	q := x / m
	f := float64(int64(q))
	if q < 0 && f != q {
		f--
	}
	return f
}

func ravelFloats(v *value.Value) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		f, ok := v.At(int64(i)).AsFloat64()
		if !ok {
			f = 0
		}
		out[i] = f
	}
	return out
}

func floatOrIntCell(f float64) value.Cell {
	if f == float64(int64(f)) {
		return value.Int(int64(f))
	}
	return value.Float(f)
}
