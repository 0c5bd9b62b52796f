// Copyright 2014 Rob Pike. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package token implements the tagged carrier passed between primitives
// and operators (spec §3.4). Where the teacher represents a result
// directly as a value.Value (or a panic carrying a value.Error), the core
// needs an explicit carrier because a primitive may also need to signal
// "no result" or "suspend — a user-defined function must run" without
// resorting to panic/recover for ordinary control flow.
package token

import (
	"github.com/google/uuid"

	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/value"
)

// Class identifies which payload a Token carries (spec §3.4).
type Class uint8

const (
	ClassValue    Class = iota // TOK_APL_VALUE: owns a value.Value
	ClassFunction              // TOK_FUNCTION: identifies a function by name
	ClassError                 // TOK_ERROR: carries an *errs.Error
	ClassVoid                  // TOK_VOID: function produced no result
	ClassSuspend               // TOK_SI_PUSHED: a user-defined function must execute
)

func (c Class) String() string {
	switch c {
	case ClassValue:
		return "value"
	case ClassFunction:
		return "function"
	case ClassError:
		return "error"
	case ClassVoid:
		return "void"
	case ClassSuspend:
		return "suspend"
	}
	return "unknown"
}

// Suspension records the partial state of a primitive or operator that
// must pause to let a user-defined function operand run (spec §5
// "Suspension points", §9 "Partial/suspended computation"). Continuation
// identifies which in-flight call this suspension belongs to, so a
// resumed computation run through apl/macro.Bridge can be matched
// back to the frame that produced it even if other suspensions are live
// concurrently in nested ⎕SI frames.
type Suspension struct {
	Continuation uuid.UUID
	// Resume is invoked by the orchestrator once the suspended
	// user-defined function has produced a result; it re-enters the
	// primitive or operator at the saved continuation point (spec §9).
	Resume func(result *value.Value) Token
}

// Token is the tagged carrier of spec §3.4.
type Token struct {
	class   Class
	val     *value.Value
	fn      string
	err     *errs.Error
	suspend *Suspension
}

// FromValue wraps v as a ClassValue token.
func FromValue(v *value.Value) Token { return Token{class: ClassValue, val: v} }

// FromFunction wraps a function identity as a ClassFunction token.
func FromFunction(name string) Token { return Token{class: ClassFunction, fn: name} }

// FromError wraps err as a ClassError token.
func FromError(err *errs.Error) Token { return Token{class: ClassError, err: err} }

// Void is the ClassVoid token (a function ran but produced no result).
var Void = Token{class: ClassVoid}

// FromSuspension wraps a Suspension as a ClassSuspend token.
func FromSuspension(s *Suspension) Token { return Token{class: ClassSuspend, suspend: s} }

func (t Token) Class() Class { return t.class }

// Value returns the carried value.Value and true, or (nil, false) if t is
// not a ClassValue token.
func (t Token) Value() (*value.Value, bool) {
	if t.class != ClassValue {
		return nil, false
	}
	return t.val, true
}

// FunctionName returns the carried function identity and true, or ("",
// false) if t is not a ClassFunction token.
func (t Token) FunctionName() (string, bool) {
	if t.class != ClassFunction {
		return "", false
	}
	return t.fn, true
}

// Err returns the carried *errs.Error and true, or (nil, false) if t is
// not a ClassError token.
func (t Token) Err() (*errs.Error, bool) {
	if t.class != ClassError {
		return nil, false
	}
	return t.err, true
}

// SuspensionRecord returns the carried *Suspension and true, or (nil,
// false) if t is not a ClassSuspend token.
func (t Token) SuspensionRecord() (*Suspension, bool) {
	if t.class != ClassSuspend {
		return nil, false
	}
	return t.suspend, true
}

// NewSuspension mints a Suspension with a fresh continuation id.
func NewSuspension(resume func(result *value.Value) Token) *Suspension {
	return &Suspension{Continuation: uuid.New(), Resume: resume}
}

// Recover converts a panic carrying an *errs.Error (the propagation path
// spec §7 describes for failures raised inside primitives and operators)
// into a ClassError Token. Call it in a deferred function at the
// statement-level handler; it re-panics anything that isn't an
// *errs.Error, since that indicates a real bug rather than an APL-level
// error.
func Recover(dst *Token) {
	if r := recover(); r != nil {
		if e, ok := r.(*errs.Error); ok {
			*dst = FromError(e)
			return
		}
		panic(r)
	}
}
