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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCostOf(t *testing.T) {
	require := require.New(t)

	require.Equal(Cost(0), CostOf(0))
	require.Equal(Cost(0), CostOf(1))
	require.Equal(Cost(10), CostOf(2))
	require.Equal(Cost(16), CostOf(3))
	require.Equal(Cost(20), CostOf(4))
	require.Equal(Cost(28), CostOf(7))
	require.Equal(Cost(30), CostOf(8))
	require.Equal(Cost(33), CostOf(10))
	require.Equal(Cost(43), CostOf(20))
	require.Equal(Cost(46), CostOf(25))
	require.Equal(Cost(99), CostOf(1000))

	// Monotone over a wide range.
	prev := CostOf(1)
	for _, n := range []int64{2, 3, 5, 9, 17, 100, 999, 1000, 4096, 1 << 20, 1 << 40, 1 << 62} {
		c := CostOf(n)
		require.True(c >= prev, "CostOf(%d)=%d below previous %d", n, c, prev)
		prev = c
	}
}

func TestCostAdd(t *testing.T) {
	require := require.New(t)

	vals := []Cost{0, 1, 5, 10, 16, 30, 31, 32, 33, 48, 49, 50, 60, 99, 132, 200}
	for _, a := range vals {
		for _, b := range vals {
			sum := a.Add(b)
			require.Equal(sum, b.Add(a), "Add not commutative for %d,%d", a, b)
			max := a
			if b > max {
				max = b
			}
			require.True(sum >= max, "Add(%d,%d)=%d < max", a, b, sum)
			require.True(sum <= max+10, "Add(%d,%d)=%d > max+10", a, b, sum)
		}
	}

	// Saturation thresholds, including both exact boundaries: a difference
	// of 31 still reads the lookup table and 49 still rounds up.
	require.Equal(Cost(133), Cost(131).Add(100))
	require.Equal(Cost(133), Cost(132).Add(100))
	require.Equal(Cost(150), Cost(149).Add(100))
	require.Equal(Cost(150), Cost(150).Add(100))
	require.Equal(Cost(100), Cost(100).Add(50))
	require.Equal(Cost(101), Cost(100).Add(68))
	// Equal operands double the estimate.
	require.Equal(Cost(110), Cost(100).Add(100))
}

func TestEstLog(t *testing.T) {
	require := require.New(t)

	require.Equal(Cost(0), EstLog(0))
	require.Equal(Cost(0), EstLog(CostOf(8)))
	require.Equal(Cost(1), EstLog(CostOf(8)+1))
	require.Equal(Cost(102), EstLog(132))
}

func TestCostFromFloat(t *testing.T) {
	require := require.New(t)

	require.Equal(Cost(0), CostFromFloat(0))
	require.Equal(Cost(0), CostFromFloat(1))
	require.Equal(CostOf(10), CostFromFloat(10))
	require.Equal(CostOf(1000000), CostFromFloat(1e6))

	// Beyond the integer range the IEEE-754 exponent takes over; the result
	// must stay close to 10*log2(x) and stay monotone.
	big := CostFromFloat(1e18)
	require.True(big >= 590 && big <= 600, "CostFromFloat(1e18)=%d", big)
	require.True(CostFromFloat(1e30) > big)
}
