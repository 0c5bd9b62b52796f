// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

import (
	"fmt"
	"math"
	"math/big"

	"github.com/remyoudompheng/bigfft"

	"github.com/apl-core/aplcore/apl/errs"
)

// Kind tags the closed sum type a Cell carries (spec §3.1). Unlike the
// teacher's own Value interface, which dispatches by Go interface method
// (effectively virtual dispatch per concrete type), Cell is a single
// struct with a Kind discriminant; arithmetic dispatches through a vtable
// of functions indexed by Kind (see arith.go), per the design note in
// spec §9 ("a clean rewrite uses a closed sum type... not virtual
// dispatch").
type Kind uint8

const (
	KindInt      Kind = iota // CT_INT: int64 fast path, promoting to *big.Int on overflow
	KindFloat                // CT_FLOAT: double-precision float
	KindComplex              // CT_COMPLEX: pair of doubles
	KindChar                 // CT_CHAR: Unicode code point
	KindPointer              // CT_POINTER: owning reference to a nested Value
	KindCellRef              // CT_CELLREF: lvalue reference into some Value
	KindRational             // CT_RATIONAL: numerator/denominator pair (reduces to KindInt when denom 1)
	numKinds
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindComplex:
		return "complex"
	case KindChar:
		return "char"
	case KindPointer:
		return "pointer"
	case KindCellRef:
		return "cellref"
	case KindRational:
		return "rational"
	}
	return "unknown"
}

// Ref is the lvalue a CT_CELLREF cell carries: a pointer to a cell inside
// some Value, used only during selective assignment (spec §3.1, §3.3).
// The referenced Value must outlive the Ref (spec invariant).
type Ref struct {
	Target *Value
	Index  int64 // flat ravel index into Target
}

// Cell is a single polymorphic array element (spec §3.1). The zero Cell is
// the integer 0.
type Cell struct {
	kind Kind

	i   int64    // KindInt fast path
	big *big.Int // KindInt overflow path; non-nil only when the value doesn't fit int64
	f   float64  // KindFloat
	re  float64  // KindComplex real part
	im  float64  // KindComplex imaginary part
	ch  rune     // KindChar
	rat *big.Rat // KindRational

	ptr *Value // KindPointer
	ref *Ref   // KindCellRef
}

// Int returns an integer cell. Values outside int64 range should instead
// be built with BigInt.
func Int(i int64) Cell { return Cell{kind: KindInt, i: i} }

// BigInt returns an integer cell backed by an arbitrary-precision integer,
// reducing to the int64 fast path when it fits (mirrors the teacher's
// Int/BigInt promotion in value/int.go, value/bigint.go).
func BigInt(b *big.Int) Cell {
	if b.IsInt64() {
		return Int(b.Int64())
	}
	return Cell{kind: KindInt, big: new(big.Int).Set(b)}
}

// Float returns a floating-point cell.
func Float(f float64) Cell { return Cell{kind: KindFloat, f: f} }

// Complex returns a complex cell from its real and imaginary parts.
func Complex(re, im float64) Cell { return Cell{kind: KindComplex, re: re, im: im} }

// Char returns a character cell. c must be a valid Unicode scalar value
// unless used only for bitwise operators (spec §3.1 invariant).
func Char(c rune) Cell { return Cell{kind: KindChar, ch: c} }

// Rational returns a rational cell, reducing to KindInt when the
// denominator is 1 (spec §3.1).
func Rational(r *big.Rat) Cell {
	if r.IsInt() {
		return BigInt(new(big.Int).Set(r.Num()))
	}
	return Cell{kind: KindRational, rat: new(big.Rat).Set(r)}
}

// Pointer returns a cell owning a nested Value (an enclosed array).
func Pointer(v *Value) Cell { return Cell{kind: KindPointer, ptr: v} }

// CellRefOf returns an lvalue cell referencing a cell inside v.
func CellRefOf(v *Value, index int64) Cell {
	return Cell{kind: KindCellRef, ref: &Ref{Target: v, Index: index}}
}

// Kind reports the cell's tag.
func (c Cell) Kind() Kind { return c.kind }

// IsSimple reports whether c is a plain numeric scalar (int, float,
// complex, or rational) as opposed to char, pointer, or cellref — the
// "simple cells" spec §4.1 describes taking the direct numeric-field path.
func (c Cell) IsSimple() bool {
	switch c.kind {
	case KindInt, KindFloat, KindComplex, KindRational:
		return true
	}
	return false
}

// BigValue returns the arbitrary-precision integer backing an overflowed
// KindInt cell, or nil if the cell fits in int64 or is not an integer.
func (c Cell) BigValue() *big.Int {
	if c.kind == KindInt {
		return c.big
	}
	return nil
}

// AsInt64 returns the int64 value of an integer cell that fits; ok is
// false for a big-backed integer cell or any other kind.
func (c Cell) AsInt64() (v int64, ok bool) {
	if c.kind != KindInt {
		return 0, false
	}
	if c.big != nil {
		return 0, false
	}
	return c.i, true
}

// AsFloat64 returns c as a float64, coercing through the numeric lattice
// INT ⊂ RATIONAL ⊂ FLOAT ⊂ COMPLEX (spec §4.1). ok is false for char,
// pointer, cellref, or a non-real complex cell.
func (c Cell) AsFloat64() (v float64, ok bool) {
	switch c.kind {
	case KindInt:
		if c.big != nil {
			f := new(big.Float).SetInt(c.big)
			v, _ = f.Float64()
			return v, true
		}
		return float64(c.i), true
	case KindFloat:
		return c.f, true
	case KindRational:
		f, _ := c.rat.Float64()
		return f, true
	case KindComplex:
		if c.im == 0 {
			return c.re, true
		}
	}
	return 0, false
}

// Pointee returns the nested Value a KindPointer cell owns, or nil.
func (c Cell) Pointee() *Value {
	if c.kind == KindPointer {
		return c.ptr
	}
	return nil
}

// RefTarget returns the Ref a KindCellRef cell carries, or nil.
func (c Cell) RefTarget() *Ref {
	if c.kind == KindCellRef {
		return c.ref
	}
	return nil
}

// Rune returns the code point of a KindChar cell and true, or (0, false).
func (c Cell) Rune() (rune, bool) {
	if c.kind == KindChar {
		return c.ch, true
	}
	return 0, false
}

// Components returns the real and imaginary parts of a KindComplex cell.
func (c Cell) Components() (re, im float64) { return c.re, c.im }

// Rat returns the *big.Rat backing a KindRational cell, or nil.
func (c Cell) Rat() *big.Rat {
	if c.kind == KindRational {
		return c.rat
	}
	return nil
}

func (c Cell) String() string {
	switch c.kind {
	case KindInt:
		if c.big != nil {
			return c.big.String()
		}
		return fmt.Sprintf("%d", c.i)
	case KindFloat:
		return fmt.Sprintf("%g", c.f)
	case KindComplex:
		return fmt.Sprintf("%gJ%g", c.re, c.im)
	case KindChar:
		return string(c.ch)
	case KindPointer:
		return "⊂" + c.ptr.String()
	case KindCellRef:
		return fmt.Sprintf("&ref[%d]", c.ref.Index)
	case KindRational:
		return fmt.Sprintf("%s/%s", c.rat.Num(), c.rat.Denom())
	}
	return "?"
}

// NearInt reports whether c is within tol of an integer (spec §4.1
// "near-int" test). Only meaningful for numeric kinds.
func (c Cell) NearInt(tol float64) bool {
	f, ok := c.AsFloat64()
	if !ok {
		return false
	}
	r := math.Round(f)
	if r == 0 {
		return math.Abs(f) <= tol
	}
	return math.Abs(f-r) <= tol*math.Abs(r)
}

// ToIntTol coerces c to an int64 within tolerance tol, per spec §4.1.
func (c Cell) ToIntTol(tol float64) (int64, bool) {
	if !c.NearInt(tol) {
		return 0, false
	}
	f, _ := c.AsFloat64()
	return int64(math.Round(f)), true
}

// Equal reports cell equality with comparison tolerance qct (spec §4.1):
// two floats a, b are equal iff |a-b| ≤ qct*max(|a|,|b|).
func (c Cell) Equal(d Cell, qct float64) bool {
	if c.kind == KindChar || d.kind == KindChar {
		if c.kind != d.kind {
			return false
		}
		return c.ch == d.ch
	}
	if c.kind == KindPointer || d.kind == KindPointer {
		if c.kind != d.kind {
			return false
		}
		return c.ptr.DeepEqual(d.ptr, qct)
	}
	if c.kind == KindCellRef || d.kind == KindCellRef {
		return false
	}
	cf, cok := c.AsFloat64()
	df, dok := d.AsFloat64()
	if cok && dok {
		if cf == df {
			return true
		}
		m := math.Max(math.Abs(cf), math.Abs(df))
		return math.Abs(cf-df) <= qct*m
	}
	// Complex with nonzero imaginary part on at least one side.
	cre, cim := c.Components()
	dre, dim := d.Components()
	if c.kind != KindComplex {
		cre, _ = c.AsFloat64()
		cim = 0
	}
	if d.kind != KindComplex {
		dre, _ = d.AsFloat64()
		dim = 0
	}
	m := math.Max(math.Hypot(cre, cim), math.Hypot(dre, dim))
	return math.Hypot(cre-dre, cim-dim) <= qct*m
}

// Less implements the total order spec §3.1 requires: characters sort
// before numbers, and otherwise cells compare by numeric value, with ties
// between structurally distinct values broken by a stable discriminant
// (here, Kind then String, since Go values carry no stable address).
func (c Cell) Less(d Cell) bool {
	cChar, dChar := c.kind == KindChar, d.kind == KindChar
	if cChar != dChar {
		return cChar
	}
	if cChar {
		return c.ch < d.ch
	}
	cf, cok := c.AsFloat64()
	df, dok := d.AsFloat64()
	if cok && dok {
		if cf != df {
			return cf < df
		}
	}
	if c.kind != d.kind {
		return c.kind < d.kind
	}
	return c.String() < d.String()
}

// SubtypeMask returns the set of integer widths c could be stored in
// without loss (spec §3.1). apl/codec's CDR encoder does not consult it.
type SubtypeMask uint16

const (
	SubS8 SubtypeMask = 1 << iota
	SubU8
	SubS16
	SubU16
	SubS32
	SubU32
	SubS64
	SubU64
)

func (c Cell) SubtypeMask() SubtypeMask {
	if c.kind == KindChar {
		return SubU32
	}
	v, ok := c.AsInt64()
	if !ok {
		return 0
	}
	var m SubtypeMask
	if v >= -(1<<7) && v < 1<<7 {
		m |= SubS8
	}
	if v >= 0 && v < 1<<8 {
		m |= SubU8
	}
	if v >= -(1<<15) && v < 1<<15 {
		m |= SubS16
	}
	if v >= 0 && v < 1<<16 {
		m |= SubU16
	}
	if v >= -(1<<31) && v < 1<<31 {
		m |= SubS32
	}
	if v >= 0 && v < 1<<32 {
		m |= SubU32
	}
	m |= SubS64
	if v >= 0 {
		m |= SubU64
	}
	return m
}

// CDRSize returns a per-element byte width (1, 4, or 8) for this cell
// (spec §3.1, §4.8). apl/codec's CDR encoder uses its own fixed widths
// and does not call CDRSize.
func (c Cell) CDRSize() int {
	switch c.kind {
	case KindChar:
		return 4
	case KindInt:
		if v, ok := c.AsInt64(); ok && v >= -128 && v < 128 {
			return 1
		}
		return 8
	case KindFloat, KindComplex, KindRational, KindPointer, KindCellRef:
		return 8
	}
	return 8
}

// bigIntMul multiplies two arbitrary-precision integers, accelerating
// large operands with bigfft once both exceed a size threshold below
// which schoolbook math/big multiplication is already fast (spec §4.1,
// supplemented per SPEC_FULL.md's domain-stack wiring).
func bigIntMul(x, y *big.Int) *big.Int {
	const fftWordThreshold = 1 << 12 // 64-bit words: ~ 78900 decimal digits
	if len(x.Bits()) > fftWordThreshold && len(y.Bits()) > fftWordThreshold {
		return bigfft.Mul(x, y)
	}
	return new(big.Int).Mul(x, y)
}

func mustNumeric(c Cell) {
	if !c.IsSimple() {
		panic(errs.Domain("expected a numeric cell, got %s", c.kind))
	}
}
