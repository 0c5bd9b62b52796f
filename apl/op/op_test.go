// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package op

import (
	"testing"

	"github.com/apl-core/aplcore/apl/config"
	"github.com/apl-core/aplcore/apl/macro"
	"github.com/apl-core/aplcore/apl/prim"
	"github.com/apl-core/aplcore/apl/value"
)

func intVec(xs ...int64) *value.Value {
	cells := make([]value.Cell, len(xs))
	for i, x := range xs {
		cells[i] = value.Int(x)
	}
	return value.NewVector(cells...)
}

func iotaVec(n int64) *value.Value {
	xs := make([]int64, n)
	for i := range xs {
		xs[i] = int64(i) + 1
	}
	return intVec(xs...)
}

func wantInts(t *testing.T, v *value.Value, want ...int64) {
	t.Helper()
	if v.Len() != int64(len(want)) {
		t.Fatalf("got length %d, want %d", v.Len(), len(want))
	}
	for i, w := range want {
		got, ok := v.At(int64(i)).ToIntTol(0)
		if !ok || got != w {
			t.Errorf("index %d: got %v, want %d", i, v.At(int64(i)), w)
		}
	}
}

func nativeBridge() macro.Bridge {
	return macro.NativeOnly{Primitives: func(name string, isBinary bool) bool { return prim.IsPrimitive(name, isBinary) }}
}

// TestReduceSum checks the algebraic law +/⍳N = N×(N+1)÷2 for the
// 1-based ⍳N that iotaVec builds (spec §8).
func TestReduceSum(t *testing.T) {
	c := &config.Config{}
	b := nativeBridge()
	for _, n := range []int64{0, 1, 5, 10} {
		got := Reduce(Operand{Native: prim.Plus}, c, b, 0, iotaVec(n))
		want := n * (n + 1) / 2
		gv, ok := got.At(0).ToIntTol(0)
		if !ok || gv != want {
			t.Errorf("n=%d: +/⍳%d = %v, want %d", n, n, got, want)
		}
	}
}

// TestReduceMatrix checks scenario 2: +/ 2 3⍴⍳6 → 6 15.
func TestReduceMatrix(t *testing.T) {
	c := &config.Config{}
	bridge := nativeBridge()
	sh := value.NewShape(2, 3)
	b := value.NewBuilder(sh)
	for i := int64(1); i <= 6; i++ {
		b.Put(value.Int(i))
	}
	got := Reduce(Operand{Native: prim.Plus}, c, bridge, 1, b.Build())
	wantInts(t, got, 6, 15)
}

func TestScanRunningSum(t *testing.T) {
	c := &config.Config{}
	bridge := nativeBridge()
	got := Scan(Operand{Native: prim.Plus}, c, bridge, 0, iotaVec(5))
	wantInts(t, got, 1, 3, 6, 10, 15)
}

func TestEachDyadicScalarExtend(t *testing.T) {
	c := &config.Config{}
	bridge := nativeBridge()
	got := EachDyadic(Operand{Native: prim.Times}, c, bridge, value.NewScalar(value.Int(2)), iotaVec(4))
	wantInts(t, got, 2, 4, 6, 8)
}

func TestCommute(t *testing.T) {
	c := &config.Config{}
	bridge := nativeBridge()
	// A f⍨ B = B f A: 3 -⍨ 10 = 10 - 3 = 7.
	got := Commute(Operand{Native: prim.Minus}, c, bridge, value.NewScalar(value.Int(3)), value.NewScalar(value.Int(10)))
	wantInts(t, got, 7)
}

func TestReplicate(t *testing.T) {
	c := &config.Config{}
	a := intVec(1, 0, 2)
	b := intVec(10, 20, 30)
	got := Replicate(c, 0, a, b)
	wantInts(t, got, 10, 30, 30)
}

// TestExpand checks scenario 5: 1 1 0 1 \ 'ABC' → 'AB C'.
func TestExpand(t *testing.T) {
	c := &config.Config{}
	mask := intVec(1, 1, 0, 1)
	b := value.NewVector(value.Char('A'), value.Char('B'), value.Char('C'))
	got := Expand(c, 0, mask, b)
	if got.Len() != 4 {
		t.Fatalf("got length %d, want 4", got.Len())
	}
	want := []rune{'A', 'B', ' ', 'C'}
	for i, w := range want {
		r, ok := got.At(int64(i)).Rune()
		if !ok || r != w {
			t.Errorf("index %d: got %q, want %q", i, r, w)
		}
	}
}

func TestNReduce(t *testing.T) {
	c := &config.Config{}
	bridge := nativeBridge()
	// 2-wise sum of 1 2 3 4 5 -> 3 5 7 9.
	got := NReduce(Operand{Native: prim.Plus}, c, bridge, 2, 0, iotaVec(5))
	wantInts(t, got, 3, 5, 7, 9)
}

func TestNReduceAmbiguousCase(t *testing.T) {
	// spec §9 Open Question (1): |n| = axis length + 1 yields an empty result.
	c := &config.Config{}
	bridge := nativeBridge()
	got := NReduce(Operand{Native: prim.Plus}, c, bridge, 4, 0, iotaVec(3))
	if got.Shape().Volume() != 0 {
		t.Fatalf("expected an empty result, got shape %s", got.Shape())
	}
}

// TestOuterProductTimes checks scenario 3: ∘.×⍨ 1 2 3 → the 3x3 multiplication table.
func TestOuterProductTimes(t *testing.T) {
	c := &config.Config{}
	bridge := nativeBridge()
	v := intVec(1, 2, 3)
	got := OuterProduct(Operand{Native: prim.Times}, c, bridge, v, v)
	want := []int64{1, 2, 3, 2, 4, 6, 3, 6, 9}
	wantInts(t, got, want...)
	if !got.Shape().Equal(value.NewShape(3, 3)) {
		t.Errorf("got shape %s, want 3 3", got.Shape())
	}
}

func TestInnerProductPlusTimes(t *testing.T) {
	c := &config.Config{}
	bridge := nativeBridge()
	a := value.NewBuilder(value.NewShape(2, 2))
	for _, x := range []int64{1, 2, 3, 4} {
		a.Put(value.Int(x))
	}
	av := a.Build()
	bmat := value.NewBuilder(value.NewShape(2, 2))
	for _, x := range []int64{5, 6, 7, 8} {
		bmat.Put(value.Int(x))
	}
	bv := bmat.Build()
	got := InnerProduct(Operand{Native: prim.Plus}, Operand{Native: prim.Times}, c, bridge, av, bv)
	// [[1,2],[3,4]] +.× [[5,6],[7,8]] = [[19,22],[43,50]]
	wantInts(t, got, 19, 22, 43, 50)
}

func TestRankMonadicScalarFrame(t *testing.T) {
	c := &config.Config{}
	bridge := nativeBridge()
	// A rank-0 frame (chunk rank equal to the argument's own rank) still
	// invokes the operand exactly once (spec §9, from
	// original_source/Bif_OPER2_RANK.cc).
	b := iotaVec(3)
	got := RankMonadic(Operand{Native: prim.Plus}, c, bridge, b.Rank(), b)
	if got.Shape().Rank() != 1 || got.Len() != 3 {
		t.Fatalf("expected one invocation producing the full 3-vector, got shape %s", got.Shape())
	}
}
