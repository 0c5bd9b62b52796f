// Copyright 2014 Rob Pike. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the small set of environment knobs the evaluation
// core reads: index origin, comparison tolerance, numeric base, the random
// source, and debug/trace flags.
package config

import (
	"math/big"
	"math/rand"
	"time"
)

// DefaultTolerance is the comparison tolerance used when a Config has never
// had SetTolerance called, matching APL2's default ⎕CT of 1e-13.
const DefaultTolerance = 1e-13

// MaxTolerance is the largest legal ⎕CT, per spec §4.1 (qct ∈ [0, 2⁻³²]).
const MaxTolerance = 1.0 / (1 << 32)

// A Config holds information about the configuration of the system.
// The zero value of a Config holds the default values for all settings
// except tolerance and parallel thresholds, which are resolved lazily
// through their accessors.
type Config struct {
	prompt    string
	format    string
	ratFormat string
	origin    int
	bigOrigin *big.Int
	debug     map[string]bool
	source    rand.Source
	random    *rand.Rand

	// Bases: 0 means C-like, base 10 with 07 for octal and 0xa for hex.
	inputBase  int
	outputBase int

	// tolerance is ⎕CT, the comparison tolerance described in spec §4.1.
	// Until SetTolerance is called (toleranceSet false), Tolerance
	// returns DefaultTolerance.
	tolerance     float64
	toleranceSet  bool
	parallel      int // worker pool size; 0 or 1 disables parallel dispatch
	monadicThresh int // result volume above which a monadic scalar op may parallelize
	dyadicThresh  int // result volume above which a dyadic scalar op may parallelize
}

func (c *Config) init() {
	if c.random == nil {
		c.source = rand.NewSource(time.Now().Unix())
		c.random = rand.New(c.source)
	}
}

func (c *Config) Format() string {
	if c == nil {
		return ""
	}
	return c.format
}

func (c *Config) RatFormat() string {
	if c == nil {
		return "%v/%v"
	}
	return c.ratFormat
}

func (c *Config) SetFormat(s string) {
	c.format = s
	if s == "" {
		c.ratFormat = "%v/%v"
	} else {
		c.ratFormat = s + "/" + s
	}
}

func (c *Config) Debug(s string) bool {
	if c == nil {
		return false
	}
	return c.debug[s]
}

func (c *Config) SetDebug(s string, state bool) {
	if c.debug == nil {
		c.debug = make(map[string]bool)
	}
	c.debug[s] = state
}

func (c *Config) Origin() int {
	if c == nil {
		return 0
	}
	return c.origin
}

func (c *Config) BigOrigin() *big.Int {
	if c == nil || c.bigOrigin == nil {
		return big.NewInt(0)
	}
	return c.bigOrigin
}

func (c *Config) SetOrigin(origin int) {
	c.origin = origin
	c.bigOrigin = big.NewInt(int64(origin))
}

// Tolerance returns ⎕CT, the comparison tolerance used by Cell equality,
// near-int tests, and index-of matching (spec §4.1).
func (c *Config) Tolerance() float64 {
	if c == nil || !c.toleranceSet {
		return DefaultTolerance
	}
	return c.tolerance
}

// SetTolerance sets ⎕CT, clamping to the legal range documented in spec §4.1.
func (c *Config) SetTolerance(qct float64) {
	if qct < 0 {
		qct = 0
	}
	if qct > MaxTolerance {
		qct = MaxTolerance
	}
	c.tolerance = qct
	c.toleranceSet = true
}

func (c *Config) Prompt() string {
	return c.prompt
}

func (c *Config) SetPrompt(prompt string) {
	c.prompt = prompt
}

func (c *Config) Random() *rand.Rand {
	c.init()
	return c.random
}

func (c *Config) RandomSeed(seed int64) {
	c.init()
	c.source.Seed(seed)
}

func (c *Config) Base() (int, int) {
	if c == nil {
		return 0, 0
	}
	return c.inputBase, c.outputBase
}

func (c *Config) InputBase() int {
	if c == nil {
		return 0
	}
	return c.inputBase
}

func (c *Config) OutputBase() int {
	if c == nil {
		return 0
	}
	return c.outputBase
}

func (c *Config) SetBase(inputBase, outputBase int) {
	c.inputBase = inputBase
	c.outputBase = outputBase
}

// ParallelCores returns the configured worker-pool size. 0 or 1 means
// scalar primitives never split work across a pool (spec §5).
func (c *Config) ParallelCores() int {
	if c == nil {
		return 1
	}
	if c.parallel <= 0 {
		return 1
	}
	return c.parallel
}

// SetParallelCores configures the worker-pool size used by apl/workers.
func (c *Config) SetParallelCores(n int) {
	c.parallel = n
}

// MonadicThreshold returns the result-volume threshold above which a
// monadic scalar primitive may dispatch across the worker pool.
func (c *Config) MonadicThreshold() int {
	if c == nil || c.monadicThresh <= 0 {
		return 100000
	}
	return c.monadicThresh
}

// DyadicThreshold returns the result-volume threshold above which a
// dyadic scalar primitive may dispatch across the worker pool.
func (c *Config) DyadicThreshold() int {
	if c == nil || c.dyadicThresh <= 0 {
		return 100000
	}
	return c.dyadicThresh
}

// SetThresholds sets the per-valence parallel-dispatch thresholds (spec §5,
// "Parallel thresholds").
func (c *Config) SetThresholds(monadic, dyadic int) {
	c.monadicThresh = monadic
	c.dyadicThresh = dyadic
}
