// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/value"
)

// ByteVector builds a simple-integer Value (spec's "byte vector") from
// raw bytes, one cell per byte. Exported for apl/structured's ⎕CR
// sub-functions that hand back raw byte payloads (CDR, JSON, XML, TLV).
func ByteVector(b []byte) *value.Value {
	return byteVector(b)
}

func byteVector(b []byte) *value.Value {
	cells := make([]value.Cell, len(b))
	for i, x := range b {
		cells[i] = value.Int(int64(x))
	}
	return value.NewVector(cells...)
}

// BytesOf reads a byte vector Value back into a []byte, validating every
// cell is a near-integer in [0,255] (spec §4.1 near-int tolerance).
// Exported for apl/structured's ⎕CR sub-functions.
func BytesOf(v *value.Value, tol float64) []byte {
	return bytesFromVector(v, tol)
}

func bytesFromVector(v *value.Value, tol float64) []byte {
	n := v.Len()
	out := make([]byte, n)
	for i := int64(0); i < n; i++ {
		x, ok := v.At(i).ToIntTol(tol)
		if !ok || x < 0 || x > 255 {
			panic(errs.Domain("expected a byte vector (integers 0..255)"))
		}
		out[i] = byte(x)
	}
	return out
}

// EncodeHex implements ⎕CR[5]/⎕CR[6] (spec §6.2): a byte vector Value to
// its uppercase/lowercase hex-string Value.
func EncodeHex(v *value.Value, tol float64, upper bool) *value.Value {
	raw := bytesFromVector(v, tol)
	var s string
	if upper {
		s = strings.ToUpper(hex.EncodeToString(raw))
	} else {
		s = hex.EncodeToString(raw)
	}
	return CharVector(s)
}

// DecodeHex implements ⎕CR[13]: hex-string Value to a byte-vector Value.
func DecodeHex(v *value.Value) *value.Value {
	s := StringOf(v)
	raw, err := hex.DecodeString(s)
	if err != nil {
		panic(errs.Domain("hex decode: %v", err))
	}
	return byteVector(raw)
}

// EncodeBase64 implements ⎕CR[16] (spec §6.2, §4.8): a byte vector Value
// to its RFC 4648 base64 text (with "=" padding), via the standard
// library — the retrieved pack carries no APL-specific base64 codec, and
// Go's encoding/base64 already implements RFC 4648 exactly as spec §4.8
// requires, so a hand-rolled reimplementation would only shadow it.
func EncodeBase64(v *value.Value, tol float64) *value.Value {
	raw := bytesFromVector(v, tol)
	return CharVector(base64.StdEncoding.EncodeToString(raw))
}

// DecodeBase64 implements ⎕CR[17].
func DecodeBase64(v *value.Value) *value.Value {
	s := StringOf(v)
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		panic(errs.Domain("base64 decode: %v", err))
	}
	return byteVector(raw)
}

// EncodeUTF8 implements ⎕CR[18]: a character Value to its UTF-8 byte
// vector, preserving every Unicode scalar value including astral planes
// (spec §4.8).
func EncodeUTF8(v *value.Value) *value.Value {
	s := StringOf(v)
	return byteVector([]byte(s))
}

// DecodeUTF8 implements ⎕CR[19]: a UTF-8 byte vector back to a character
// Value. Surrogate pairs in the input are rejected (spec §4.8): the whole
// byte vector is checked with utf8.Valid, which rejects encoded
// surrogate code units since UTF-8 never legally encodes them.
func DecodeUTF8(v *value.Value, tol float64) *value.Value {
	raw := bytesFromVector(v, tol)
	if !utf8.Valid(raw) {
		panic(errs.Domain("UTF-8 decode: invalid byte sequence"))
	}
	runes := []rune(string(raw))
	cells := make([]value.Cell, len(runes))
	for i, r := range runes {
		cells[i] = value.Char(r)
	}
	return value.NewVector(cells...)
}

// CharVector builds a character-vector Value from a Go string.
func CharVector(s string) *value.Value {
	runes := []rune(s)
	cells := make([]value.Cell, len(runes))
	for i, r := range runes {
		cells[i] = value.Char(r)
	}
	return value.NewVector(cells...)
}

// StringOf reads a character-vector (or scalar) Value back into a Go
// string, panicking with DOMAIN_ERROR on any non-character cell.
func StringOf(v *value.Value) string {
	n := v.Len()
	runes := make([]rune, n)
	for i := int64(0); i < n; i++ {
		r, ok := v.At(i).Rune()
		if !ok {
			panic(errs.Domain("expected a character value"))
		}
		runes[i] = r
	}
	return string(runes)
}
