// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prim

// Registry maps primitive glyph names to their Fn, mirroring the
// teacher's unaryOps/binaryOps maps (value/unary.go, value/binary.go) as
// the single place that enumerates every primitive the kernel
// implements. apl/macro.Bridge.IsPrimitive and any embedder's dispatcher
// consult this map rather than hard-coding the glyph set a second time.
var Registry = map[string]*Fn{
	"+": Plus,
	"-": Minus,
	"×": Times,
	"÷": Divide,
	"⋆": Power,
	"⌈": CeilBinary,
	"⌊": FloorBinary,

	"gcd":  GCDOp,
	"lcm":  LCMOp,
	"and":  AndOp,
	"or":   OrOp,
	"nand": NandOp,
	"nor":  NorOp,
	"xor":  XorOp,

	"<": LessThan,
	">": GreaterThan,
	"=": EqualTo,
	"≠": NotEqualTo,
	"≤": LessEq,
	"≥": GreaterEq,

	",": Catenate,
	"⍴": Reshape,
	"↑": Take,
	"↓": Drop,
	"⌽": Rotate,
	"⊖": VRotate,
	"⍉": Transpose,
	"⊥": Decode,
	"⊤": Encode,
	"∈": Member,
	"≡": Match,
	"≢": NotMatch,
	"∪": Union,
	"∩": Intersect,
	"⍳": Iota,
	"⍸": IntervalIndex,
	"⊂": Enclose,
	"⊃": Disclose,
}

// IsPrimitive reports whether name is a registered primitive, satisfying
// the predicate apl/macro.Bridge.IsPrimitive expects (spec §1 C8).
func IsPrimitive(name string, _ bool) bool {
	_, ok := Registry[name]
	return ok
}
