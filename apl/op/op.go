// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package op implements the operator kernel (spec §1 C6, §4.4-§4.7):
// reduce, scan, each, commute, inner product, outer product, and the
// rank operator. Every operator takes a function operand that is either
// one of apl/prim's native Fns or, through apl/macro.Bridge, a
// user-defined function the embedder owns (spec §1 C8). Grounded on the
// teacher's value/eval.go, which plays the equivalent role for ivy's
// single flat opName string dispatch, generalized here to arbitrary
// rank via apl/value.Shape's H/M/L axis split.
package op

import (
	"github.com/apl-core/aplcore/apl/config"
	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/macro"
	"github.com/apl-core/aplcore/apl/prim"
	"github.com/apl-core/aplcore/apl/token"
	"github.com/apl-core/aplcore/apl/value"
)

// Operand is the function argument an operator applies: either a native
// primitive (apl/prim.Fn) or, through a Bridge, a user-defined function
// named by Name (spec §1 C8 "Macro bridge").
type Operand struct {
	Native *prim.Fn
	Name   string // set when Native is nil: resolved through Bridge
}

// callAB applies the operand dyadically to a and b, going through bridge
// when the operand isn't native. A ClassSuspend token's *token.Suspension
// record is returned so the caller (which owns the ⎕SI stack) can drive the suspended
// user-defined function; every other result is unwrapped into a *Value
// or an error.
func (o Operand) callAB(c *config.Config, bridge macro.Bridge, a, b *value.Value) (*value.Value, *token.Suspension) {
	if o.Native != nil {
		return prim.Dispatch(o.Native, c, a, nil, b), nil
	}
	t := bridge.Invoke(macro.Call{Name: o.Name, Left: a, Right: b})
	switch t.Class() {
	case token.ClassValue:
		v, _ := t.Value()
		return v, nil
	case token.ClassSuspend:
		s, _ := t.SuspensionRecord()
		return nil, s
	case token.ClassError:
		e, _ := t.Err()
		panic(e)
	default:
		panic(errs.Valence("%s: function produced no value", o.Name))
	}
}

func (o Operand) callB(c *config.Config, bridge macro.Bridge, b *value.Value) (*value.Value, *token.Suspension) {
	if o.Native != nil {
		return prim.Dispatch(o.Native, c, nil, nil, b), nil
	}
	t := bridge.Invoke(macro.Call{Name: o.Name, Right: b})
	switch t.Class() {
	case token.ClassValue:
		v, _ := t.Value()
		return v, nil
	case token.ClassSuspend:
		s, _ := t.SuspensionRecord()
		return nil, s
	case token.ClassError:
		e, _ := t.Err()
		panic(e)
	default:
		panic(errs.Valence("%s: function produced no value", o.Name))
	}
}

// associative reports whether o is known to be an associative scalar
// primitive, enabling reduce's parallel divide-and-conquer fast path
// (spec §5 "Ordering guarantees", §9).
func (o Operand) associative() bool {
	return o.Native != nil && o.Native.AssociativeScalar
}

// identity returns o's reduction identity over b along axis, if any
// (spec §4.4).
func (o Operand) identity(b *value.Value, axis int) (*value.Value, bool) {
	if o.Native == nil || o.Native.Identity == nil {
		return nil, false
	}
	return o.Native.Identity(b, axis)
}

// suspended panics with a not-yet-supported error: user-defined function
// operands that actually suspend mid-reduction require a continuation
// protocol through the caller's ⎕SI stack, which belongs to the
// embedder's exec layer (spec §1 C8), not this package.
func suspended() {
	panic(errs.Valence("operator suspended on a user-defined function operand; caller must drive the continuation through its own ⎕SI stack"))
}
