// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package op

import (
	"github.com/apl-core/aplcore/apl/config"
	"github.com/apl-core/aplcore/apl/macro"
	"github.com/apl-core/aplcore/apl/value"
)

// Scan implements f\B and f\[X]B (spec §4.4): the running reduction
// along the given axis, so the result has the same shape as B and its
// m'th slab entry equals f reduced over B's first m entries along that
// axis. When f is an associative scalar primitive this runs as a
// left-to-right running accumulator per slab, O(axis length); for any
// other f each entry is a full right-to-left reduction of its prefix.
func Scan(f Operand, c *config.Config, bridge macro.Bridge, axis int, b *value.Value) *value.Value {
	bsh := b.Shape()
	if bsh.Rank() == 0 {
		return b
	}
	s3, err := bsh.Shape3At(axis)
	if err != nil {
		panic(err)
	}
	dim := s3.M
	out := value.NewBuilder(bsh)
	for h := int64(0); h < s3.H; h++ {
		for l := int64(0); l < s3.L; l++ {
			var acc value.Cell
			for m := int64(0); m < dim; m++ {
				cell := b.At(h*dim*s3.L + m*s3.L + l)
				switch {
				case m == 0:
					acc = cell
				case f.associative():
					acc = call1(f, c, bridge, acc, cell)
				default:
					prefix := make([]value.Cell, m+1)
					for k := int64(0); k <= m; k++ {
						prefix[k] = b.At(h*dim*s3.L + k*s3.L + l)
					}
					acc = reduceCells(f, c, bridge, prefix)
				}
				out.PutAt(h*dim*s3.L+m*s3.L+l, acc)
			}
		}
	}
	return out.Build()
}
