// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

import "testing"

func TestBuilderShapeInvariant(t *testing.T) {
	v := NewFilled(NewShape(2, 3), Int(0))
	if v.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", v.Len())
	}
	if err := v.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestScalarRavelLenIsOne(t *testing.T) {
	v := NewFilled(NewShape(), Int(5))
	if v.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", v.Len())
	}
}

func TestEmptyShapeStillHasPrototypeSlot(t *testing.T) {
	v := NewFilled(NewShape(0, 3), Char(' '))
	if v.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (prototype slot)", v.Len())
	}
	if got := v.Prototype(); got.String() != " " {
		t.Fatalf("Prototype() = %q, want blank", got.String())
	}
}

func TestDeepEqualToleranceAndShape(t *testing.T) {
	a := NewVector(Int(1), Int(2), Int(3))
	b := NewVector(Int(1), Int(2), Int(3))
	if !a.DeepEqual(b, 0) {
		t.Fatal("expected equal vectors to match")
	}
	c := NewVector(Int(1), Int(2))
	if a.DeepEqual(c, 0) {
		t.Fatal("expected different-length vectors to mismatch")
	}
}

func TestNestedPointerCheck(t *testing.T) {
	inner := NewVector(Int(1), Int(2))
	outer := NewVector(Cell{}, Pointer(inner))
	outer.data.At(0) // sanity: no panic on read
	if err := outer.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestArithmeticCoercionLattice(t *testing.T) {
	r := Add(Int(1), Float(2.5))
	f, ok := r.AsFloat64()
	if !ok || f != 3.5 {
		t.Fatalf("Add(1, 2.5) = %v, want 3.5", r)
	}
	c := Add(Int(1), Complex(0, 1))
	re, im := c.Components()
	if re != 1 || im != 1 {
		t.Fatalf("Add(1, 0J1) = %v, want 1J1", c)
	}
}

func TestGCDLCM(t *testing.T) {
	if got := GCD(Int(30), Int(36)); got.String() != "6" {
		t.Fatalf("GCD(30,36) = %s, want 6", got)
	}
	if got := LCM(Int(15), Int(35)); got.String() != "105" {
		t.Fatalf("LCM(15,35) = %s, want 105", got)
	}
}
