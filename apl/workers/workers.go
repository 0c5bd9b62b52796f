// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package workers implements the optional worker pool behind the scalar
// fast path of dyadic primitives and the scalar fast path of inner/outer
// product (spec §5, §9 "Parallel scalar fast path"). The scheduling model
// is master + join: the orchestrator owns the result ravel exclusively
// until join, and splits it into disjoint contiguous slices, one per
// worker, so no locking is needed while workers run.
package workers

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool dispatches Run calls across at most Cores goroutines. The zero
// Pool runs everything on the caller's goroutine (Cores defaults to 1),
// matching spec §5's requirement that parallel dispatch is strictly
// optional and gated by the worker-pool size.
type Pool struct {
	Cores int
}

// Sequential is a Pool that never splits work, used when a build omits
// the parallel feature or a Config reports a single core (spec §9: "real
// parallelism is optional and behind a feature flag").
var Sequential = Pool{Cores: 1}

// ShouldParallelize reports whether a scalar primitive producing
// resultVolume elements should split its work across the pool, per spec
// §5's "Parallel thresholds": the pool must have more than one core, and
// the result volume must exceed the caller-supplied threshold.
func (p Pool) ShouldParallelize(resultVolume int64, threshold int) bool {
	return p.Cores > 1 && resultVolume > int64(threshold)
}

// Run splits [0, n) into contiguous slices, one per available core (but
// never more slices than n), and calls fn(lo, hi) for each slice
// concurrently, then joins. fn must write only to its own [lo, hi) slice
// of the result ravel; per spec §5 this is the only synchronization
// contract parallel workers need, since inputs are immutable while the
// pool runs and the orchestrator alone owns the result ravel until join.
func (p Pool) Run(n int64, fn func(lo, hi int64)) error {
	cores := p.Cores
	if cores < 1 {
		cores = 1
	}
	if cores == 1 || n <= 1 {
		fn(0, n)
		return nil
	}
	if int64(cores) > n {
		cores = int(n)
	}
	g, _ := errgroup.WithContext(context.Background())
	chunk := n / int64(cores)
	rem := n % int64(cores)
	var lo int64
	for i := 0; i < cores; i++ {
		hi := lo + chunk
		if int64(i) < rem {
			hi++
		}
		loC, hiC := lo, hi
		g.Go(func() error {
			fn(loC, hiC)
			return nil
		})
		lo = hi
	}
	return g.Wait()
}
