// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package macro defines the narrow contract the evaluation core uses to
// invoke user-defined fallback helpers (spec §1 C8, §9 "Macro bridge").
// The core treats the tokenizer, the ⎕SI execution stack, and the
// command processor as external collaborators; when a primitive or
// operator needs to run a user-defined function operand (reduce's LO,
// rank's f, inner/outer product's f or g, each's operand), it does not
// call into the parser or a user-function executor directly. Instead it
// calls through a Bridge, the same boundary the teacher's
// exec.Function/value.Frame pair describes between the value package
// (which knows how to evaluate primitives) and the exec package (which
// owns user-defined op storage and stack frames).
package macro

import (
	"github.com/apl-core/aplcore/apl/errs"
	"github.com/apl-core/aplcore/apl/token"
	"github.com/apl-core/aplcore/apl/value"
)

// Call describes one invocation of a function operand: a name (resolved
// by the bridge's owner, not by the core), and one or two Value operands.
// Left is nil for a monadic call.
type Call struct {
	Name  string
	Left  *value.Value // nil for monadic calls
	Right *value.Value
	Axis  *value.Value // nil unless an axis operand was supplied
}

// Bridge is implemented by whatever owns user-defined functions (the
// exec package's equivalent, kept out of this module's scope per spec
// §1). apl/op calls through Bridge whenever a function operand given to
// reduce, scan, each, inner product, outer product, or the rank operator
// turns out not to be one of the primitives apl/prim implements natively.
type Bridge interface {
	// Invoke evaluates call and returns a Token: a ClassValue token on
	// success, a ClassError token on an APL-level error, or a
	// ClassSuspend token if Call.Name names a user-defined function
	// whose execution must be driven by the caller (the function body
	// might itself contain control flow or further suspensions) —
	// spec §5 "Suspension points", §9 "Partial/suspended computation".
	Invoke(call Call) token.Token

	// IsPrimitive reports whether name is a primitive or operator the
	// core itself implements, so apl/op can decide whether to call
	// apl/prim directly (the fast, native path) or go through Invoke.
	IsPrimitive(name string, isBinary bool) bool
}

// NativeOnly is a Bridge that never resolves user-defined functions; it
// is useful for embedders that only need the primitive/operator kernel
// and have no user-defined-function layer at all (e.g. running the core
// as a pure array-expression evaluator). Every call to Invoke reports a
// VALENCE_ERROR-class failure through a ClassError token rather than
// panicking, so callers that always go through a Bridge don't need a
// special case for "no bridge configured".
type NativeOnly struct {
	Primitives func(name string, isBinary bool) bool
}

func (n NativeOnly) Invoke(call Call) token.Token {
	return token.FromError(errs.Valence("no user-defined function %q available", call.Name))
}

func (n NativeOnly) IsPrimitive(name string, isBinary bool) bool {
	if n.Primitives == nil {
		return false
	}
	return n.Primitives(name, isBinary)
}
