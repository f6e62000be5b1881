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

// orCost is one candidate way of satisfying an OR branch: the tables it
// requires, its per-scan cost and its output estimate.
type orCost struct {
	prereq Bitmask
	rRun   Cost
	nOut   Cost
}

// orSetSize bounds how many candidate prereq/cost combinations are tracked
// while costing an OR term.
const orSetSize = 3

// orSet keeps the best few orCost entries. An entry earns a slot when its
// prerequisite set is new and either a slot is free or it is cheaper than
// the current worst, or when it improves an entry with identical
// prerequisites.
type orSet struct {
	n int
	a [orSetSize]orCost
}

// insert adds a candidate, returning true if the set changed.
func (s *orSet) insert(prereq Bitmask, rRun, nOut Cost) bool {
	for i := 0; i < s.n; i++ {
		if s.a[i].prereq == prereq {
			if s.a[i].rRun <= rRun {
				return false
			}
			s.a[i].rRun = rRun
			s.a[i].nOut = nOut
			return true
		}
	}
	if s.n < orSetSize {
		s.a[s.n] = orCost{prereq, rRun, nOut}
		s.n++
		return true
	}
	// Replace the most expensive entry if the candidate beats it.
	worst := 0
	for i := 1; i < s.n; i++ {
		if s.a[i].rRun > s.a[worst].rRun {
			worst = i
		}
	}
	if rRun >= s.a[worst].rRun {
		return false
	}
	s.a[worst] = orCost{prereq, rRun, nOut}
	return true
}
