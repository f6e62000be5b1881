// Copyright 2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package where

import "math"

// Cost is an estimated quantity (rows, work) stored as 10*log2(X), rounded.
// The logarithmic domain keeps multiplication cheap (integer addition) and
// makes enormous estimates saturate gracefully instead of overflowing.
type Cost int16

// costTable holds 10*log2(x) for x in 8..15, minus the 30 contributed by
// the leading octave.
var costTable = [8]Cost{0, 2, 3, 5, 6, 7, 8, 9}

// CostOf converts a row count or repetition count into the log domain.
// CostOf(1) == 0, CostOf(2) == 10, CostOf(3) == 16.
func CostOf(n int64) Cost {
	if n <= 1 {
		return 0
	}
	x := uint64(n)
	y := Cost(40)
	if x < 8 {
		for x < 8 {
			y -= 10
			x <<= 1
		}
	} else {
		for x > 255 {
			x >>= 4
			y += 40
		}
		for x > 15 {
			x >>= 1
			y += 10
		}
	}
	return costTable[x&7] + y - 10
}

// addTable is the correction added to the larger operand of Add, indexed by
// the difference between the operands.
var addTable = [32]Cost{
	10, 10, 9, 9, 8, 8, 7, 7, 7, 6, 6, 6, 5, 5, 5, 4,
	4, 4, 4, 3, 3, 3, 3, 3, 3, 2, 2, 2, 2, 2, 2, 2,
}

// Add returns the log-domain sum of two costs: approximately
// 10*log2(2^(a/10) + 2^(b/10)). It is commutative and monotone but not
// associative at full precision.
func (a Cost) Add(b Cost) Cost {
	if a < b {
		a, b = b, a
	}
	if a > b+49 {
		return a
	}
	if a > b+31 {
		return a + 1
	}
	return a + addTable[a-b]
}

// EstLog estimates the log-domain cost of sorting or searching a structure
// of the given log-domain size: zero below the CostOf(8) threshold, the
// excess above it otherwise.
func EstLog(x Cost) Cost {
	if x <= CostOf(8) {
		return 0
	}
	return x - CostOf(8)
}

// CostFromFloat reduces a virtual-table-supplied double to the log domain.
// Values at or below 1 cost nothing; moderate values go through the integer
// conversion; huge values take the exponent straight out of the IEEE-754
// representation.
func CostFromFloat(x float64) Cost {
	if x <= 1 {
		return 0
	}
	if x <= 2000000000 {
		return CostOf(int64(x))
	}
	e := int64(math.Float64bits(x)>>52) - 1022
	return Cost(e * 10)
}
