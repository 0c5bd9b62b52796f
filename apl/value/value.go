// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

import (
	"strings"
	"sync/atomic"

	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/ravel"
)

// Value is a Shape plus a ravel of cells (spec §3.3). The ravel is backed
// by the persistent, structure-sharing store in apl/ravel, the same
// transient/publish idiom the teacher's value/vector.go uses for its
// Vector type, generalized here to arbitrary rank.
type Value struct {
	shape Shape
	data  *ravel.Slice[Cell]
	proto *Cell // lazily computed prototype (spec §3.3 "Prototype")
	refs  *int32
	done  bool // set by Build and by Check (spec "complete" flag)
}

// Builder constructs a Value by filling its ravel exactly once through a
// monotonic cursor, mirroring the teacher's "next_ravel_*" construction
// discipline (spec §3.3): a producer must fill every cell before the
// Value escapes via Build.
type Builder struct {
	shape Shape
	t     *ravel.TransientSlice[Cell]
	next  int64
	want  int64
}

// NewBuilder starts building a Value of the given shape. Per spec §3.3 a
// one-cell "prototype slot" is always present even for empty values, so
// the ravel allocated here has max(1, shape.Volume()) cells.
func NewBuilder(shape Shape) *Builder {
	n := shape.Volume()
	want := n
	if n == 0 {
		n = 1
	}
	t := new(ravel.TransientSlice[Cell])
	t.Resize(int(n))
	return &Builder{shape: shape, t: t, want: want}
}

// Put appends the next cell in ravel order.
func (b *Builder) Put(c Cell) {
	b.t.Set(int(b.next), c)
	b.next++
}

// PutAt sets ravel cell i directly, for producers that don't fill
// strictly in order (e.g. transpose, rotate). The builder still requires
// every slot to be written before Build.
func (b *Builder) PutAt(i int64, c Cell) {
	b.t.Set(int(i), c)
}

// Fill appends n copies of c.
func (b *Builder) Fill(n int64, c Cell) {
	for i := int64(0); i < n; i++ {
		b.Put(c)
	}
}

// Len reports the builder's total ravel capacity.
func (b *Builder) Len() int64 { return int64(b.t.Len()) }

// Build publishes the builder as an immutable Value and marks it
// complete. It does not run Check and does not verify that every slot
// was written.
func (b *Builder) Build() *Value {
	v := &Value{shape: b.shape, data: b.t.Persist(), refs: new(int32)}
	*v.refs = 1
	v.done = true
	return v
}

// GrowBuilder accumulates cells of unknown final count before fixing
// them into a rank-1 Value, for producers like partitioned enclose that
// don't know a group's size until they've scanned past its end.
type GrowBuilder struct {
	cells []Cell
}

// NewGrowBuilder starts an empty GrowBuilder.
func NewGrowBuilder() *GrowBuilder { return &GrowBuilder{} }

// Put appends one cell.
func (g *GrowBuilder) Put(c Cell) { g.cells = append(g.cells, c) }

// Len reports the number of cells appended so far.
func (g *GrowBuilder) Len() int64 { return int64(len(g.cells)) }

// Build fixes the accumulated cells into a rank-1 Value.
func (g *GrowBuilder) Build() *Value {
	b := NewBuilder(NewShape(int64(len(g.cells))))
	for _, c := range g.cells {
		b.Put(c)
	}
	return b.Build()
}

// NewScalar builds a rank-0 Value from a single cell.
func NewScalar(c Cell) *Value {
	b := NewBuilder(Scalar)
	b.Put(c)
	return b.Build()
}

// NewVector builds a rank-1 Value from cells.
func NewVector(cells ...Cell) *Value {
	b := NewBuilder(NewShape(int64(len(cells))))
	for _, c := range cells {
		b.Put(c)
	}
	return b.Build()
}

// NewFilled builds a Value of the given shape with every cell set to c.
func NewFilled(shape Shape, c Cell) *Value {
	b := NewBuilder(shape)
	n := b.Len()
	b.Fill(n, c)
	return b.Build()
}

func (v *Value) Shape() Shape { return v.shape }
func (v *Value) Rank() int    { return v.shape.Rank() }

// Len returns max(1, shape.Volume()), the ravel length (spec §3.3
// invariant).
func (v *Value) Len() int64 {
	n := v.shape.Volume()
	if n == 0 {
		return 1
	}
	return n
}

// At returns the i'th cell of the ravel.
func (v *Value) At(i int64) Cell { return v.data.At(int(i)) }

// IsScalar reports whether v has rank 0.
func (v *Value) IsScalar() bool { return v.shape.Rank() == 0 }

// IsVolumeOne reports whether v has exactly one cell, the condition spec
// §3.3 calls "scalar extension" eligibility (a stronger scalar test than
// IsScalar, since a length-1 vector also qualifies).
func (v *Value) IsVolumeOne() bool { return v.shape.Volume() == 1 }

// Retain increments the reference count (spec §3.3 lifetime model). The
// Go garbage collector remains the actual memory owner; this bookkeeping
// exists so the core's lifetime contract — release when no outer Value
// or Token holds a reference — is directly testable (spec §8), matching
// the discipline the teacher's C++ ancestor enforces by hand.
func (v *Value) Retain() *Value {
	atomic.AddInt32(v.refs, 1)
	return v
}

// Release decrements the reference count. Returns the count after the
// decrement.
func (v *Value) Release() int32 {
	return atomic.AddInt32(v.refs, -1)
}

// RefCount reports the current reference count.
func (v *Value) RefCount() int32 { return atomic.LoadInt32(v.refs) }

// Prototype returns the fill element used by overtake, expand, and
// empty-result reductions (spec §3.3). It is derived from the first
// ravel cell: numeric 0 for numeric values, blank for character values,
// or a same-shape nested all-zero/all-blank value for nested values.
func (v *Value) Prototype() Cell {
	if v.proto != nil {
		return *v.proto
	}
	p := defaultOf(v.At(0))
	v.proto = &p
	return p
}

func defaultOf(c Cell) Cell {
	switch c.kind {
	case KindChar:
		return Char(' ')
	case KindPointer:
		return Pointer(zeroLike(c.ptr))
	default:
		return Int(0)
	}
}

// zeroLike returns a same-shape Value with every cell replaced by its
// kind's zero/blank equivalent, recursing through nested pointers.
func zeroLike(v *Value) *Value {
	b := NewBuilder(v.shape)
	n := b.Len()
	for i := int64(0); i < n; i++ {
		b.PutAt(i, defaultOf(v.At(i)))
	}
	return b.Build()
}

// Check validates the invariants spec §8 requires of a constructed Value:
// the ravel length equals max(1, shape.Volume()), and every pointer
// cell's nested Value is itself checked. It is idempotent and safe to
// call repeatedly (e.g. once per producer, as the teacher's check_value
// does, and again defensively by a consumer that didn't build the Value
// itself).
func (v *Value) Check() error {
	if int64(v.data.Len()) != v.Len() {
		return errs.WSFullf("ravel length %d does not match shape volume %d", v.data.Len(), v.Len())
	}
	for i := int64(0); i < v.Len(); i++ {
		c := v.At(i)
		if c.kind == KindPointer {
			if c.ptr == nil {
				return errs.Domain("pointer cell at index %d owns no value", i)
			}
			if err := c.ptr.Check(); err != nil {
				return err
			}
		}
	}
	v.done = true
	return nil
}

// DeepEqual implements ≡ (match): structural equivalence recursing
// through nested pointer cells and comparing leaf cells with tolerance
// qct (spec §4.3).
func (v *Value) DeepEqual(w *Value, qct float64) bool {
	if v == w {
		return true
	}
	if w == nil {
		return false
	}
	if !v.shape.Equal(w.shape) {
		return false
	}
	for i := int64(0); i < v.Len(); i++ {
		if !v.At(i).Equal(w.At(i), qct) {
			return false
		}
	}
	return true
}

func (v *Value) String() string {
	if v.IsScalar() {
		return v.At(0).String()
	}
	var b strings.Builder
	b.WriteString(v.shape.String())
	b.WriteString("⍴(")
	for i := int64(0); i < v.Len(); i++ {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(v.At(i).String())
	}
	b.WriteString(")")
	return b.String()
}

// Ravel returns v reshaped to a vector of its own cells in ravel order
// (the monadic comma primitive, spec §4.3).
func Ravel(v *Value) *Value {
	b := NewBuilder(NewShape(v.Len()))
	for i := int64(0); i < v.Len(); i++ {
		b.Put(v.At(i))
	}
	return b.Build()
}
