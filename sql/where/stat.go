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
	"strings"

	"github.com/spf13/cast"

	"github.com/dolthub/go-query-planner/sql"
	"github.com/dolthub/go-query-planner/sql/expression"
)

// rangeEstFromSamples refines the output estimate of a range scan on the
// left-most index column using histogram samples. Range bounds that are not
// literals keep the default estimate.
func (info *planInfo) rangeEstFromSamples(l *Loop, si sql.StatIndex, dflt Cost) Cost {
	samples := si.Samples()
	total := si.RowEstimate(0)

	lower := int64(0)
	upper := total
	bounded := false
	for _, t := range l.Terms {
		if t.Op&(OpGT|OpGE|OpLT|OpLE) == 0 {
			continue
		}
		lit, ok := rhsOf(t).(*expression.Literal)
		if !ok {
			continue
		}
		pos := samplePosition(samples, lit.Value(), total)
		if t.Op&(OpGT|OpGE) != 0 {
			if pos > lower {
				lower = pos
				bounded = true
			}
		} else {
			if pos < upper {
				upper = pos
				bounded = true
			}
		}
	}
	if !bounded {
		return dflt
	}
	rows := upper - lower
	if rows < 1 {
		rows = 1
	}
	return CostOf(rows)
}

// samplePosition estimates how many index rows precede value v: the NLt of
// the first sample at or above v, or the full count when v is beyond every
// sample.
func samplePosition(samples []sql.Sample, v interface{}, total int64) int64 {
	for _, s := range samples {
		if sampleCompare(s.Value, v) >= 0 {
			return s.NLt
		}
	}
	return total
}

// sampleCompare orders two sampled values: numerically when both coerce to
// numbers, byte-wise as text otherwise. NULL sorts first.
func sampleCompare(a, b interface{}) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	af, aerr := cast.ToFloat64E(a)
	bf, berr := cast.ToFloat64E(b)
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	as, _ := cast.ToStringE(a)
	bs, _ := cast.ToStringE(b)
	return strings.Compare(as, bs)
}
