// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package structured

import (
	"testing"

	"github.com/apl-core/aplcore/apl/codec"
	"github.com/apl-core/aplcore/apl/config"
	"github.com/apl-core/aplcore/apl/value"
)

func mapTable(pairs ...rune) *value.Value {
	b := value.NewBuilder(value.NewShape(int64(len(pairs))/2, 2))
	for _, r := range pairs {
		b.Put(value.Char(r))
	}
	return b.Build()
}

func wantString(t *testing.T, v *value.Value, want string) {
	t.Helper()
	got := codec.StringOf(v)
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// TestMapScenario checks spec scenario 6:
// (3 2⍴'aAbBcC') ⎕MAP 'abc' → 'ABC'.
func TestMapScenario(t *testing.T) {
	c := &config.Config{}
	a := mapTable('a', 'A', 'b', 'B', 'c', 'C')
	got := Map(c, a, codec.CharVector("abc"))
	wantString(t, got, "ABC")
}

// TestMapUnmatchedPassesThrough checks the companion case: a cell with no
// entry in the table passes through unchanged, so 'aBc' → 'ABc'.
func TestMapUnmatchedPassesThrough(t *testing.T) {
	c := &config.Config{}
	a := mapTable('a', 'A', 'b', 'B', 'c', 'C')
	got := Map(c, a, codec.CharVector("aBc"))
	wantString(t, got, "ABc")
}

func TestMapFlatOperand(t *testing.T) {
	c := &config.Config{}
	a := codec.CharVector("aAbBcC")
	got := Map(c, a, codec.CharVector("cab"))
	wantString(t, got, "CAB")
}

func TestMapDuplicateKeyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on duplicate key")
		}
	}()
	c := &config.Config{}
	a := mapTable('a', 'A', 'a', 'B')
	Map(c, a, codec.CharVector("a"))
}

// TestCRHexScenario checks spec scenario 4: 'HELLO' ⎕CR[6] B where B is
// bytes [0xDE,0xAD] → string "dead"; decoding that with ⎕CR[-6] and
// re-encoding with ⎕CR[5] gives the uppercase "DEAD".
func TestCRHexScenario(t *testing.T) {
	c := &config.Config{}
	bytesVec := value.NewVector(value.Int(0xDE), value.Int(0xAD))
	a := value.NewScalar(value.Int(6))
	encoded := CR(c, a, bytesVec)
	wantString(t, encoded, "dead")

	decodeSel := value.NewScalar(value.Int(-6))
	decoded := CR(c, decodeSel, encoded)
	reencoded := CR(c, value.NewScalar(value.Int(5)), decoded)
	wantString(t, reencoded, "DEAD")
}

func TestCRCDRRoundTrip(t *testing.T) {
	c := &config.Config{}
	b := value.NewVector(value.Int(1), value.Int(2), value.Int(3))
	packed := CR(c, value.NewScalar(value.Int(11)), b)
	unpacked := CR(c, value.NewScalar(value.Int(12)), packed)
	if !unpacked.DeepEqual(b, 0) {
		t.Errorf("got %v, want %v", unpacked, b)
	}
}

func TestCRLinesRoundTrip(t *testing.T) {
	c := &config.Config{}
	b := codec.CharVector("one\ntwo\nthree")
	nested := CR(c, value.NewScalar(value.Int(35)), b)
	if nested.Len() != 3 {
		t.Fatalf("got %d lines, want 3", nested.Len())
	}
	rejoined := CR(c, value.NewScalar(value.Int(36)), nested)
	wantString(t, rejoined, "one\ntwo\nthree")
}

func TestCRUnimplementedSubFunctionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an unimplemented sub-function")
		}
	}()
	c := &config.Config{}
	CR(c, value.NewScalar(value.Int(37)), value.NewScalar(value.Int(0)))
}
