// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

import (
	"math"
	"math/big"

	"modernc.org/mathutil"

	"github.com/apl-core/aplcore/apl/errs"
)

// prim_f2 dispatch (spec §4.1): each scalar binary primitive is a
// function of two Cells producing one Cell. binaryScalarOp holds one
// function per rung of the coercion lattice INT ⊂ RATIONAL ⊂ FLOAT ⊂
// COMPLEX, exactly mirroring the teacher's binaryOp{fn [numType]fn}
// table in value/binary.go and value/eval.go, but keyed by our Kind.
type binaryScalarFn func(a, b Cell) Cell

type binaryScalarOp struct {
	name string
	// fn[k] handles the case where both operands have already been
	// promoted to rung k of the lattice.
	fn [numKinds]binaryScalarFn
}

// rung orders the coercion lattice; char/pointer/cellref never
// participate in arithmetic coercion (they either have dedicated ops,
// like char bitwise, or are domain errors).
func rung(k Kind) int {
	switch k {
	case KindInt:
		return 0
	case KindRational:
		return 1
	case KindFloat:
		return 2
	case KindComplex:
		return 3
	}
	return -1
}

// promote coerces c up to the lattice rung r.
func promote(c Cell, r int) Cell {
	cr := rung(c.kind)
	if cr == r || cr < 0 {
		return c
	}
	for cr < r {
		cr++
		switch cr {
		case 1: // -> rational
			if c.kind == KindInt {
				if c.big != nil {
					c = Rational(new(big.Rat).SetInt(c.big))
				} else {
					c = Rational(new(big.Rat).SetInt64(c.i))
				}
			}
		case 2: // -> float
			f, _ := c.AsFloat64()
			c = Float(f)
		case 3: // -> complex
			f, _ := c.AsFloat64()
			c = Complex(f, 0)
		}
	}
	return c
}

// coerce brings a and b to the lowest common lattice rung, signaling
// DOMAIN_ERROR if either is not a simple numeric cell.
func coerce(a, b Cell) (Cell, Cell, Kind) {
	if !a.IsSimple() || !b.IsSimple() {
		panic(errs.Domain("coercion failure: %s vs %s", a.kind, b.kind))
	}
	ra, rb := rung(a.kind), rung(b.kind)
	r := ra
	if rb > r {
		r = rb
	}
	a, b = promote(a, r), promote(b, r)
	return a, b, a.kind
}

func addBig(x, y *big.Int) Cell { return BigInt(new(big.Int).Add(x, y)) }

func intOf(c Cell) *big.Int {
	if c.big != nil {
		return c.big
	}
	return big.NewInt(c.i)
}

func binOp(name string, intFn func(x, y *big.Int) Cell, ratFn func(x, y *big.Rat) Cell, floatFn func(x, y float64) Cell, cplxFn func(xr, xi, yr, yi float64) Cell) *binaryScalarOp {
	op := &binaryScalarOp{name: name}
	op.fn[KindInt] = func(a, b Cell) Cell { return intFn(intOf(a), intOf(b)) }
	op.fn[KindRational] = func(a, b Cell) Cell { return ratFn(a.rat, b.rat) }
	op.fn[KindFloat] = func(a, b Cell) Cell { return floatFn(a.f, b.f) }
	op.fn[KindComplex] = func(a, b Cell) Cell { return cplxFn(a.re, a.im, b.re, b.im) }
	return op
}

var (
	opAdd, opSub, opMul, opDiv, opPow, opMax, opMin *binaryScalarOp
	opAnd, opOr, opXor                             *binaryScalarOp
)

func init() {
	opAdd = binOp("+",
		func(x, y *big.Int) Cell { return addBig(x, y) },
		func(x, y *big.Rat) Cell { return Rational(new(big.Rat).Add(x, y)) },
		func(x, y float64) Cell { return Float(x + y) },
		func(xr, xi, yr, yi float64) Cell { return Complex(xr+yr, xi+yi) },
	)
	opSub = binOp("-",
		func(x, y *big.Int) Cell { return BigInt(new(big.Int).Sub(x, y)) },
		func(x, y *big.Rat) Cell { return Rational(new(big.Rat).Sub(x, y)) },
		func(x, y float64) Cell { return Float(x - y) },
		func(xr, xi, yr, yi float64) Cell { return Complex(xr-yr, xi-yi) },
	)
	opMul = binOp("×",
		func(x, y *big.Int) Cell { return BigInt(bigIntMul(x, y)) },
		func(x, y *big.Rat) Cell { return Rational(new(big.Rat).Mul(x, y)) },
		func(x, y float64) Cell { return Float(x * y) },
		func(xr, xi, yr, yi float64) Cell { return Complex(xr*yr-xi*yi, xr*yi+xi*yr) },
	)
	opDiv = binOp("÷",
		func(x, y *big.Int) Cell {
			if y.Sign() == 0 {
				panic(errs.Domain("division by zero"))
			}
			return Rational(new(big.Rat).SetFrac(x, y))
		},
		func(x, y *big.Rat) Cell {
			if y.Sign() == 0 {
				panic(errs.Domain("division by zero"))
			}
			return Rational(new(big.Rat).Quo(x, y))
		},
		func(x, y float64) Cell {
			if y == 0 {
				panic(errs.Domain("division by zero"))
			}
			return Float(x / y)
		},
		func(xr, xi, yr, yi float64) Cell {
			d := yr*yr + yi*yi
			if d == 0 {
				panic(errs.Domain("division by zero"))
			}
			return Complex((xr*yr+xi*yi)/d, (xi*yr-xr*yi)/d)
		},
	)
	opPow = binOp("⋆",
		func(x, y *big.Int) Cell {
			if y.Sign() < 0 {
				f, _ := new(big.Float).SetInt(x).Float64()
				yf, _ := new(big.Float).SetInt(y).Float64()
				return Float(math.Pow(f, yf))
			}
			if !y.IsInt64() {
				panic(errs.Domain("exponent too large"))
			}
			return BigInt(new(big.Int).Exp(x, y, nil))
		},
		func(x, y *big.Rat) Cell {
			xf, _ := x.Float64()
			yf, _ := y.Float64()
			return Float(math.Pow(xf, yf))
		},
		func(x, y float64) Cell { return Float(math.Pow(x, y)) },
		func(xr, xi, yr, yi float64) Cell {
			// (xr+i·xi)^(yr+i·yi) via polar form.
			r := math.Hypot(xr, xi)
			theta := math.Atan2(xi, xr)
			if yi == 0 {
				nr := math.Pow(r, yr)
				nt := theta * yr
				return Complex(nr*math.Cos(nt), nr*math.Sin(nt))
			}
			lnr := math.Log(r)
			newLogR := yr*lnr - yi*theta
			newTheta := yi*lnr + yr*theta
			nr := math.Exp(newLogR)
			return Complex(nr*math.Cos(newTheta), nr*math.Sin(newTheta))
		},
	)
	opMax = binOp("⌈",
		func(x, y *big.Int) Cell {
			if x.Cmp(y) >= 0 {
				return BigInt(x)
			}
			return BigInt(y)
		},
		func(x, y *big.Rat) Cell {
			if x.Cmp(y) >= 0 {
				return Rational(x)
			}
			return Rational(y)
		},
		func(x, y float64) Cell { return Float(math.Max(x, y)) },
		nil,
	)
	opMin = binOp("⌊",
		func(x, y *big.Int) Cell {
			if x.Cmp(y) <= 0 {
				return BigInt(x)
			}
			return BigInt(y)
		},
		func(x, y *big.Rat) Cell {
			if x.Cmp(y) <= 0 {
				return Rational(x)
			}
			return Rational(y)
		},
		func(x, y float64) Cell { return Float(math.Min(x, y)) },
		nil,
	)
}

// Add, Sub, Mul, Div, Pow, Max, Min implement the coercing scalar
// arithmetic primitives (spec §4.1). Each panics with a *errs.Error on
// domain failure; callers (apl/prim, apl/op) recover at the Token
// boundary.
func Add(a, b Cell) Cell { return apply(opAdd, a, b) }
func Sub(a, b Cell) Cell { return apply(opSub, a, b) }
func Mul(a, b Cell) Cell { return apply(opMul, a, b) }
func Div(a, b Cell) Cell { return apply(opDiv, a, b) }
func Pow(a, b Cell) Cell { return apply(opPow, a, b) }

func Max(a, b Cell) Cell {
	if a.kind == KindComplex || b.kind == KindComplex {
		panic(errs.Domain("max is not defined on complex cells"))
	}
	return apply(opMax, a, b)
}

func Min(a, b Cell) Cell {
	if a.kind == KindComplex || b.kind == KindComplex {
		panic(errs.Domain("min is not defined on complex cells"))
	}
	return apply(opMin, a, b)
}

func apply(op *binaryScalarOp, a, b Cell) Cell {
	a, b, k := coerce(a, b)
	fn := op.fn[k]
	if fn == nil {
		panic(errs.Domain("%s not implemented for %s", op.name, k))
	}
	return fn(a, b)
}

// Neg returns the additive inverse of c.
func Neg(c Cell) Cell {
	mustNumeric(c)
	switch c.kind {
	case KindInt:
		return BigInt(new(big.Int).Neg(intOf(c)))
	case KindRational:
		return Rational(new(big.Rat).Neg(c.rat))
	case KindFloat:
		return Float(-c.f)
	case KindComplex:
		return Complex(-c.re, -c.im)
	}
	panic(errs.Domain("neg not implemented for %s", c.kind))
}

// GCD and LCM implement APL2's dyadic ∧/∨ overload on integers: greatest
// common divisor and least common multiple (spec §4.1 extended by
// SPEC_FULL.md's domain-stack wiring of modernc.org/mathutil).
func GCD(a, b Cell) Cell {
	x, xok := a.AsInt64()
	y, yok := b.AsInt64()
	if xok && yok {
		return Int(int64(mathutil.GCD(int(x), int(y))))
	}
	return BigInt(new(big.Int).GCD(nil, nil, new(big.Int).Abs(intOf(a)), new(big.Int).Abs(intOf(b))))
}

func LCM(a, b Cell) Cell {
	x, xok := a.AsInt64()
	y, yok := b.AsInt64()
	if x == 0 || y == 0 {
		return Int(0)
	}
	if xok && yok {
		g := mathutil.GCD(int(x), int(y))
		return Int(int64(x / g * y))
	}
	g := GCD(a, b)
	return Mul(Div(a, g), b)
}

// bitwiseOp applies fn to the integer coercion of a and b. Character
// cells participate via their Unicode scalar value (spec §4.1: "Bitwise
// operators on character cells apply 32-bit XOR/AND/OR over the code
// point").
func bitwiseOp(a, b Cell, fn func(x, y int64) int64) Cell {
	av, aok := intOrCharBits(a)
	bv, bok := intOrCharBits(b)
	if !aok || !bok {
		panic(errs.Domain("bitwise op requires integer or char operands"))
	}
	return Int(fn(av, bv))
}

func intOrCharBits(c Cell) (int64, bool) {
	if c.kind == KindChar {
		return int64(c.ch), true
	}
	if v, ok := c.AsInt64(); ok {
		return v, true
	}
	return 0, false
}

func And(a, b Cell) Cell { return bitwiseOp(a, b, func(x, y int64) int64 { return x & y }) }
func Or(a, b Cell) Cell  { return bitwiseOp(a, b, func(x, y int64) int64 { return x | y }) }
func Xor(a, b Cell) Cell { return bitwiseOp(a, b, func(x, y int64) int64 { return x ^ y }) }
func Nand(a, b Cell) Cell {
	return bitwiseOp(a, b, func(x, y int64) int64 {
		if x != 0 && y != 0 {
			return 0
		}
		return 1
	})
}
func Nor(a, b Cell) Cell {
	return bitwiseOp(a, b, func(x, y int64) int64 {
		if x == 0 && y == 0 {
			return 1
		}
		return 0
	})
}
