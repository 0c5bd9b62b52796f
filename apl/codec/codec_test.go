// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"testing"

	"github.com/apl-core/aplcore/apl/value"
)

func intVec(xs ...int64) *value.Value {
	cells := make([]value.Cell, len(xs))
	for i, x := range xs {
		cells[i] = value.Int(x)
	}
	return value.NewVector(cells...)
}

// TestCDRRoundTrip checks spec §8's round-trip property for a simple
// numeric vector, a character vector, and a nested value.
func TestCDRRoundTrip(t *testing.T) {
	cases := []*value.Value{
		intVec(1, 2, 3, 4, 5),
		CharVector("hello, world"),
		value.NewVector(
			value.Pointer(intVec(1, 2)),
			value.Pointer(CharVector("ab")),
			value.Int(42),
		),
		value.NewScalar(value.Float(3.5)),
		value.NewScalar(value.Complex(1, -2)),
	}
	for i, v := range cases {
		buf := EncodeCDR(v)
		got, err := DecodeCDR(buf)
		if err != nil {
			t.Fatalf("case %d: decode error: %v", i, err)
		}
		if !got.DeepEqual(v, 0) {
			t.Errorf("case %d: round trip mismatch: got %v, want %v", i, got, v)
		}
	}
}

func TestHexRoundTrip(t *testing.T) {
	b := intVec(0xDE, 0xAD, 0xBE, 0xEF)
	enc := EncodeHex(b, 0, false)
	if StringOf(enc) != "deadbeef" {
		t.Fatalf("got %q, want deadbeef", StringOf(enc))
	}
	dec := DecodeHex(enc)
	if !dec.DeepEqual(b, 0) {
		t.Errorf("hex round trip mismatch: got %v, want %v", dec, b)
	}
}

// TestHexUppercaseScenario encodes bytes [0xDE,0xAD] as uppercase hex
// ("DEAD", the ⎕CR[5] form), decodes that text, and re-encodes the bytes
// as lowercase hex ("dead", the ⎕CR[6] form of spec scenario 4).
func TestHexUppercaseScenario(t *testing.T) {
	b := intVec(0xDE, 0xAD)
	enc := EncodeHex(b, 0, true)
	if StringOf(enc) != "DEAD" {
		t.Fatalf("got %q, want DEAD", StringOf(enc))
	}
	dec := DecodeHex(enc)
	if StringOf(EncodeHex(dec, 0, false)) != "dead" {
		t.Fatalf("got %q, want dead", StringOf(EncodeHex(dec, 0, false)))
	}
}

// TestBase64RoundTrip checks spec §8: base64.decode(base64.encode(S)) = S.
func TestBase64RoundTrip(t *testing.T) {
	raw := []byte("the quick brown fox jumps over the lazy dog, padding??")
	enc := EncodeBase64(ByteVector(raw), 0)
	dec := DecodeBase64(enc)
	got := BytesOf(dec, 0)
	if string(got) != string(raw) {
		t.Fatalf("got %q, want %q", got, raw)
	}
}

// TestUTF8RoundTrip checks spec §8, including an astral-plane code point.
func TestUTF8RoundTrip(t *testing.T) {
	v := CharVector("héllo 𝄞 world")
	enc := EncodeUTF8(v)
	dec := DecodeUTF8(enc, 0)
	if !dec.DeepEqual(v, 0) {
		t.Errorf("UTF-8 round trip mismatch: got %v, want %v", dec, v)
	}
}

// TestJSONRoundTrip checks spec §8: for a representable Value,
// JSON.decode(JSON.encode(V)) ≡ V, for the shapes the mapping supports
// (character vectors, numeric scalars, nested arrays, associative
// arrays).
func TestJSONRoundTrip(t *testing.T) {
	original := value.NewVector(
		value.Pointer(CharVector("name")),
		value.Pointer(intVec(1, 2, 3)),
	)
	buf := EncodeJSON(original)
	got, err := DecodeJSON(buf)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if got.Len() != original.Len() {
		t.Fatalf("got length %d, want %d", got.Len(), original.Len())
	}
	if !got.DeepEqual(original, 0) {
		t.Errorf("JSON round trip mismatch: got %v, want %v", got, original)
	}
}

func TestJSONObjectRoundTrip(t *testing.T) {
	buf := []byte(`{"a":1,"b":[1,2,3],"c":"hi"}`)
	v, err := DecodeJSON(buf)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	reenc := EncodeJSON(v)
	v2, err := DecodeJSON(reenc)
	if err != nil {
		t.Fatalf("re-decode error: %v", err)
	}
	if !v2.DeepEqual(v, 0) {
		t.Errorf("JSON object round trip mismatch: got %v, want %v", v2, v)
	}
}

func TestXMLRoundTrip(t *testing.T) {
	buf := []byte(`<root attr="1"><child>text</child></root>`)
	v, err := DecodeXML(buf)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	out := EncodeXML(v)
	v2, err := DecodeXML(out)
	if err != nil {
		t.Fatalf("re-decode error: %v", err)
	}
	if !v2.DeepEqual(v, 0) {
		t.Errorf("XML round trip mismatch: got %v, want %v", v2, v)
	}
}
