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

// addOrLoops builds OR-of-indexes union loops: for every indexable OR term
// that can constrain this table, each branch is planned against the table
// alone, the per-branch costs are combined pairwise, and the survivors
// become union loops whose per-row cost carries a fixed surcharge for the
// deduplicating row-set probe.
func (info *planInfo) addOrLoops(pos int, src *SrcItem, mExtra Bitmask) error {
	self := info.masks.Mask(src.Cursor)

	for _, t := range info.wc.terms {
		if t.Op&OpOr == 0 || t.or == nil || !t.or.indexable.Intersects(self) {
			continue
		}

		var prev orSet
		var subLoops []*Loop
		first := true
		ok := true
		for bi, bt := range t.or.wc.terms {
			if bt.parent >= 0 {
				continue
			}
			branchWC := newClause(info, info.wc, OpAnd)
			if bt.and != nil {
				branchWC.terms = bt.and.wc.terms
			} else {
				// The branch term plus any virtual terms its analysis
				// produced (commuted copies, derived ranges).
				for ci := range t.or.wc.terms {
					if t.or.wc.rootOf(ci) == bi {
						branchWC.terms = append(branchWC.terms, t.or.wc.terms[ci])
					}
				}
			}

			var cur orSet
			savedWC, savedSet, savedBest := info.wc, info.orSet, info.orBest
			info.wc = branchWC
			info.orSet = &cur
			info.orBest = nil

			var err error
			if vt, isVtab := src.Table.(sql.VirtualTable); isVtab {
				err = info.addVirtualLoops(pos, src, vt, mExtra)
			} else {
				err = info.addBtreeLoops(pos, src, mExtra)
			}
			best := info.orBest
			info.wc, info.orSet, info.orBest = savedWC, savedSet, savedBest
			if err != nil {
				return err
			}
			if cur.n == 0 || best == nil {
				ok = false
				break
			}
			subLoops = append(subLoops, best)

			if first {
				prev = cur
				first = false
				continue
			}
			var next orSet
			for i := 0; i < prev.n; i++ {
				for j := 0; j < cur.n; j++ {
					next.insert(
						prev.a[i].prereq|cur.a[j].prereq,
						prev.a[i].rRun.Add(cur.a[j].rRun),
						prev.a[i].nOut.Add(cur.a[j].nOut),
					)
				}
			}
			prev = next
		}
		if !ok || first {
			continue
		}

		for i := 0; i < prev.n; i++ {
			union := &Loop{
				TabPos:   pos,
				MaskSelf: self,
				SortIdx:  -1,
				Prereq:   (prev.a[i].prereq | mExtra) &^ self,
				// The row-set probe that drops duplicate rows costs about
				// as much per row as a binary search.
				Run:      prev.a[i].rRun + 18,
				NOut:     prev.a[i].nOut,
				Flags:    FlagMultiOr,
				Terms:    []*Term{t},
				SubLoops: subLoops,
			}
			info.insert(union)
		}
	}
	return nil
}
