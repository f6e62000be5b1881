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
	"github.com/dolthub/go-query-planner/sql"
)

// Path is an ordered prefix of chosen loops: a candidate join order under
// construction.
type Path struct {
	// MaskLoop is the union of self-masks of the loops in the path.
	MaskLoop Bitmask
	// RevLoop marks the loops scanned in reverse for ORDER BY.
	RevLoop Bitmask
	// NRow is the accumulated output row estimate.
	NRow Cost
	// Cost is the accumulated cost.
	Cost Cost
	// IsOrdered, valid only when IsOrderedValid, reports whether the path
	// produces rows in the requested order.
	IsOrdered      bool
	IsOrderedValid bool
	// Loops in nesting order, outermost first.
	Loops []*Loop
}

// solve runs the dynamic program over join depth: at each depth the N best
// prefix paths survive, extended by every loop whose prerequisites they
// satisfy. nRowEst, when non-zero, charges a one-shot sort to every path
// that does not deliver the requested order.
func (info *planInfo) solve(nRowEst Cost) (*Path, error) {
	nLoop := len(info.src)
	mxChoice := 10
	switch {
	case nLoop == 1:
		mxChoice = 1
	case nLoop == 2:
		mxChoice = 5
	}

	nRowInit := info.nQueryLoop
	if max := CostOf(25); nRowInit > max {
		nRowInit = max
	}

	var rSortCost Cost
	if len(info.orderBy) > 0 && nRowEst > 0 {
		rSortCost = nRowEst + EstLog(nRowEst)
	}

	aFrom := []*Path{{NRow: nRowInit}}

	for depth := 0; depth < nLoop; depth++ {
		var aTo []*Path
		isLast := depth == nLoop-1

		for _, from := range aFrom {
			for _, l := range info.loops {
				if !from.MaskLoop.Contains(l.Prereq) {
					continue
				}
				if from.MaskLoop.Intersects(l.MaskSelf) {
					continue
				}

				cost := from.Cost.Add(l.Setup.Add(l.Run + from.NRow))

				isOrdered, isOrderedValid := from.IsOrdered, from.IsOrderedValid
				revLoop := from.RevLoop
				if len(info.orderBy) > 0 && !isOrderedValid {
					var rev Bitmask
					switch info.pathSatisfiesOrderBy(from, l, depth+1, &rev) {
					case orderSatisfied:
						isOrdered, isOrderedValid = true, true
						revLoop = rev
					case orderNotSatisfied:
						isOrdered, isOrderedValid = false, true
					default:
						if isLast {
							// No later loop can rescue the order.
							isOrdered, isOrderedValid = false, true
						}
					}
				}
				if isOrderedValid && !isOrdered && rSortCost > 0 {
					cost = cost.Add(rSortCost)
				}

				to := &Path{
					MaskLoop:       from.MaskLoop | l.MaskSelf,
					RevLoop:        revLoop,
					NRow:           from.NRow + l.NOut,
					Cost:           cost,
					IsOrdered:      isOrdered,
					IsOrderedValid: isOrderedValid,
					Loops:          append(append([]*Loop(nil), from.Loops...), l),
				}
				aTo = insertPath(aTo, to, mxChoice)
			}
		}

		if len(aTo) == 0 {
			return nil, sql.ErrNoQuerySolution.New()
		}
		aFrom = aTo
		for i, p := range aFrom {
			info.trace(TracePaths, "depth %d path %d: mask=%#x cost=%d rows=%d ordered=%v valid=%v rev=%#x",
				depth+1, i, p.MaskLoop, p.Cost, p.NRow, p.IsOrdered, p.IsOrderedValid, p.RevLoop)
		}
	}

	best := aFrom[0]
	for _, p := range aFrom[1:] {
		if pathBetter(p, best) {
			best = p
		}
	}
	return best, nil
}

// insertPath merges a candidate into the depth's top-N list. Two paths with
// the same loop set and the same ordering knowledge occupy one slot; beyond
// mxChoice slots the most expensive survivor is evicted.
func insertPath(aTo []*Path, to *Path, mxChoice int) []*Path {
	for i, p := range aTo {
		if p.MaskLoop == to.MaskLoop && p.IsOrderedValid == to.IsOrderedValid {
			if pathBetter(to, p) {
				aTo[i] = to
			}
			return aTo
		}
	}
	if len(aTo) < mxChoice {
		return append(aTo, to)
	}
	worst := 0
	for i := 1; i < len(aTo); i++ {
		if pathWorse(aTo[i], aTo[worst]) {
			worst = i
		}
	}
	if pathBetter(to, aTo[worst]) {
		aTo[worst] = to
	}
	return aTo
}

// pathBetter reports whether a should replace b. Equal costs break toward
// fewer output rows, then toward an ordered path, then toward fewer
// prerequisite bits; a complete tie keeps the earlier-inserted path, so the
// solver stays deterministic.
func pathBetter(a, b *Path) bool {
	if a.Cost != b.Cost {
		return a.Cost < b.Cost
	}
	if a.NRow != b.NRow {
		return a.NRow < b.NRow
	}
	if a.IsOrdered != b.IsOrdered {
		return a.IsOrdered
	}
	pa, pb := pathPrereqBits(a), pathPrereqBits(b)
	if pa != pb {
		return pa < pb
	}
	return false
}

func pathWorse(a, b *Path) bool {
	if a.Cost != b.Cost {
		return a.Cost > b.Cost
	}
	return a.NRow > b.NRow
}

func pathPrereqBits(p *Path) int {
	var m Bitmask
	for _, l := range p.Loops {
		m |= l.Prereq
	}
	return m.Count()
}

