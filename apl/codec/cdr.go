// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package codec implements the structured-representation bridge (spec §1
// C7, §4.8): CDR binary form, hex/base64/UTF-8 byte codecs, and JSON/XML
// conversion to and from apl/value.Value. Grounded on the teacher's
// value/persist/slice.go encode/publish idiom (build once, publish
// immutable) for the encoder side, and on value/format.go's Sprint
// dispatch-by-Kind convention for choosing a packing strategy per cell
// kind.
package codec

import (
	"encoding/binary"
	"math"
	"math/big"

	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/value"
)

// cellTag is the CDR wire tag for a cell kind (spec §6.3 "type"/"ptype"
// header fields). tagGeneral marks a ravel whose cells are not all the
// same simple kind, switching the ravel encoding to a self-describing
// per-cell form.
type cellTag byte

const (
	tagInt cellTag = iota
	tagFloat
	tagComplex
	tagChar
	tagRational
	tagPointer
	tagGeneral
)

func tagOf(k value.Kind) cellTag {
	switch k {
	case value.KindInt:
		return tagInt
	case value.KindFloat:
		return tagFloat
	case value.KindComplex:
		return tagComplex
	case value.KindChar:
		return tagChar
	case value.KindRational:
		return tagRational
	case value.KindPointer:
		return tagPointer
	default:
		panic(errs.Domain("CDR: cell kind %s is not serializable", k))
	}
}

// header is the 16-byte CDR header (spec §6.3): total size, the byte
// length of the trailing pointer pool, two reserved/tag bytes, and rank.
type header struct {
	Size    uint32
	PtrLen  uint32
	Padding uint16
	Type    byte
	PType   byte
	Rank    uint32
}

const headerSize = 16

// EncodeCDR serializes v into CDR bytes (spec §4.8, §6.3). A uniform
// ravel (every cell sharing one simple kind) packs directly at its
// natural width; a mixed ravel (spec's "general array", produced by
// nested/heterogeneous values) falls back to a self-describing per-cell
// encoding, with any CT_POINTER cell's nested Value recursively encoded
// into a trailing pointer pool that the cell's slot indexes into.
func EncodeCDR(v *value.Value) []byte {
	sh := v.Shape()
	rank := sh.Rank()
	dims := sh.Dims()

	uniform, kind := uniformKind(v)

	var body []byte
	var pool []byte
	if uniform {
		body = encodeUniform(v, kind)
	} else {
		body, pool = encodeGeneral(v)
	}

	var buf []byte
	buf = append(buf, make([]byte, headerSize)...)
	for _, d := range dims {
		buf = appendU32(buf, uint32(d))
	}
	buf = append(buf, body...)
	buf = append(buf, pool...)

	h := header{
		Size:   uint32(len(buf)),
		PtrLen: uint32(len(pool)),
		Type:   byte(tagOf(kind)),
		PType:  byte(tagOf(v.Prototype().Kind())),
		Rank:   uint32(rank),
	}
	if !uniform {
		h.Type = byte(tagGeneral)
	}
	putHeader(buf[:headerSize], h)
	return buf
}

// uniformKind reports whether every cell in v's ravel shares one simple,
// directly-packable kind, and which kind that is.
func uniformKind(v *value.Value) (bool, value.Kind) {
	n := v.Len()
	k := v.At(0).Kind()
	if k == value.KindCellRef {
		panic(errs.Domain("CDR: cannot serialize a cell-ref value"))
	}
	for i := int64(1); i < n; i++ {
		if v.At(i).Kind() != k {
			return false, k
		}
	}
	if k == value.KindPointer {
		return false, k
	}
	return true, k
}

func encodeUniform(v *value.Value, kind value.Kind) []byte {
	n := v.Len()
	var out []byte
	for i := int64(0); i < n; i++ {
		out = append(out, encodeCellFixed(v.At(i), kind)...)
	}
	return out
}

// encodeCellFixed packs one cell at kind's natural CDR width (spec §6.3:
// "packed by cell type").
func encodeCellFixed(c value.Cell, kind value.Kind) []byte {
	switch kind {
	case value.KindInt:
		return encodeIntFixed(c)
	case value.KindFloat:
		f, _ := c.AsFloat64()
		return appendU64(nil, math.Float64bits(f))
	case value.KindComplex:
		re, im := c.Components()
		out := appendU64(nil, math.Float64bits(re))
		return appendU64(out, math.Float64bits(im))
	case value.KindChar:
		r, _ := c.Rune()
		return appendU32(nil, uint32(r))
	case value.KindRational:
		return encodeBigRatPrefixed(c.Rat())
	default:
		panic(errs.Domain("CDR: unsupported uniform kind %s", kind))
	}
}

// encodeIntFixed packs an integer cell as a 0 tag byte plus 8 bytes when
// it fits int64, else as a 1 tag byte, a sign byte and a length-prefixed
// big.Int magnitude (mirrors the teacher's
// int64/BigInt promotion, spec §3.1).
func encodeIntFixed(c value.Cell) []byte {
	if v, ok := c.AsInt64(); ok {
		out := []byte{0}
		return appendU64(out, uint64(v))
	}
	b := c.BigValue()
	data := b.Bytes()
	sign := byte(0)
	if b.Sign() < 0 {
		sign = 1
	}
	out := []byte{1, sign}
	out = appendU32(out, uint32(len(data)))
	return append(out, data...)
}

func decodeIntFixed(buf []byte) (value.Cell, []byte) {
	tag := buf[0]
	buf = buf[1:]
	if tag == 0 {
		v := int64(binary.LittleEndian.Uint64(buf))
		return value.Int(v), buf[8:]
	}
	sign := buf[0]
	buf = buf[1:]
	n := binary.LittleEndian.Uint32(buf)
	buf = buf[4:]
	data := buf[:n]
	buf = buf[n:]
	b := new(big.Int).SetBytes(data)
	if sign == 1 {
		b.Neg(b)
	}
	return value.BigInt(b), buf
}

func encodeBigRatPrefixed(r *big.Rat) []byte {
	num, den := r.Num().Bytes(), r.Denom().Bytes()
	sign := byte(0)
	if r.Sign() < 0 {
		sign = 1
	}
	out := []byte{sign}
	out = appendU32(out, uint32(len(num)))
	out = append(out, num...)
	out = appendU32(out, uint32(len(den)))
	out = append(out, den...)
	return out
}

func decodeBigRatPrefixed(buf []byte) (value.Cell, []byte) {
	sign := buf[0]
	buf = buf[1:]
	nn := binary.LittleEndian.Uint32(buf)
	buf = buf[4:]
	num := new(big.Int).SetBytes(buf[:nn])
	buf = buf[nn:]
	nd := binary.LittleEndian.Uint32(buf)
	buf = buf[4:]
	den := new(big.Int).SetBytes(buf[:nd])
	buf = buf[nd:]
	if sign == 1 {
		num.Neg(num)
	}
	return value.Rational(new(big.Rat).SetFrac(num, den)), buf
}

// encodeGeneral encodes a mixed-kind ravel as a sequence of
// (tag byte, payload) cells, recursively CDR-encoding any pointer cell's
// nested Value into the returned pool and leaving a (offset, length)
// pair in the cell's own slot.
func encodeGeneral(v *value.Value) (body, pool []byte) {
	n := v.Len()
	for i := int64(0); i < n; i++ {
		c := v.At(i)
		k := c.Kind()
		body = append(body, byte(tagOf(k)))
		switch k {
		case value.KindPointer:
			sub := EncodeCDR(c.Pointee())
			offset := uint32(len(pool))
			pool = append(pool, sub...)
			body = appendU32(body, offset)
			body = appendU32(body, uint32(len(sub)))
		default:
			body = append(body, encodeCellFixed(c, k)...)
		}
	}
	return body, pool
}

// DecodeCDR parses bytes produced by EncodeCDR back into a Value (spec
// §8 round-trip: CDR.decode(CDR.encode(V)) ≡ V, element-wise, qct=0).
func DecodeCDR(buf []byte) (*value.Value, error) {
	if len(buf) < headerSize {
		return nil, errs.Domain("CDR: truncated header")
	}
	h := readHeader(buf[:headerSize])
	rest := buf[headerSize:]

	dims := make([]int64, h.Rank)
	for i := range dims {
		dims[i] = int64(binary.LittleEndian.Uint32(rest))
		rest = rest[4:]
	}
	shape := value.NewShape(dims...)

	pool := buf[uint32(len(buf))-h.PtrLen:]
	body := rest[:uint32(len(rest))-h.PtrLen]

	n := shape.Volume()
	if n == 0 {
		n = 1
	}
	b := value.NewBuilder(shape)
	if cellTag(h.Type) != tagGeneral {
		kind := kindFor(cellTag(h.Type))
		for i := int64(0); i < n; i++ {
			var c value.Cell
			c, body = decodeCellFixed(body, kind)
			b.Put(c)
		}
	} else {
		for i := int64(0); i < n; i++ {
			tag := cellTag(body[0])
			body = body[1:]
			var c value.Cell
			if tag == tagPointer {
				offset := binary.LittleEndian.Uint32(body)
				body = body[4:]
				length := binary.LittleEndian.Uint32(body)
				body = body[4:]
				sub, err := DecodeCDR(pool[offset : offset+length])
				if err != nil {
					return nil, err
				}
				c = value.Pointer(sub)
			} else {
				c, body = decodeCellFixed(body, kindFor(tag))
			}
			b.Put(c)
		}
	}
	return b.Build(), nil
}

func kindFor(t cellTag) value.Kind {
	switch t {
	case tagInt:
		return value.KindInt
	case tagFloat:
		return value.KindFloat
	case tagComplex:
		return value.KindComplex
	case tagChar:
		return value.KindChar
	case tagRational:
		return value.KindRational
	default:
		panic(errs.Domain("CDR: unknown cell tag %d", t))
	}
}

func decodeCellFixed(buf []byte, kind value.Kind) (value.Cell, []byte) {
	switch kind {
	case value.KindInt:
		return decodeIntFixed(buf)
	case value.KindFloat:
		f := math.Float64frombits(binary.LittleEndian.Uint64(buf))
		return value.Float(f), buf[8:]
	case value.KindComplex:
		re := math.Float64frombits(binary.LittleEndian.Uint64(buf))
		im := math.Float64frombits(binary.LittleEndian.Uint64(buf[8:]))
		return value.Complex(re, im), buf[16:]
	case value.KindChar:
		r := rune(binary.LittleEndian.Uint32(buf))
		return value.Char(r), buf[4:]
	case value.KindRational:
		return decodeBigRatPrefixed(buf)
	default:
		panic(errs.Domain("CDR: unsupported kind %s in fixed decode", kind))
	}
}

func putHeader(buf []byte, h header) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Size)
	binary.LittleEndian.PutUint32(buf[4:8], h.PtrLen)
	binary.LittleEndian.PutUint16(buf[8:10], h.Padding)
	buf[10] = h.Type
	buf[11] = h.PType
	binary.LittleEndian.PutUint32(buf[12:16], h.Rank)
}

func readHeader(buf []byte) header {
	return header{
		Size:    binary.LittleEndian.Uint32(buf[0:4]),
		PtrLen:  binary.LittleEndian.Uint32(buf[4:8]),
		Padding: binary.LittleEndian.Uint16(buf[8:10]),
		Type:    buf[10],
		PType:   buf[11],
		Rank:    binary.LittleEndian.Uint32(buf[12:16]),
	}
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendU64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}
