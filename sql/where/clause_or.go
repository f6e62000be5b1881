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
	"github.com/dolthub/go-query-planner/sql/expression"
)

// analyzeOr decomposes an OR term into a nested clause and tries the two
// rewrites in priority order: collapse to a single-column IN when every
// branch is an equality on the same column, otherwise compute the set of
// tables every branch can constrain through some index and tag the term as
// an indexable OR.
func (wc *Clause) analyzeOr(idx int) {
	info := wc.info
	t := wc.terms[idx]

	sub := newClause(info, wc, OpOr)
	sub.split(t.Expr, t.joinCursor)
	sub.analyzeAll()
	t.Op = OpOr
	t.or = &orInfo{wc: sub}
	t.flags |= termDynamic

	// Branches are the terms present before analysis appended virtual
	// copies; a copy constrains on behalf of the branch it descends from.
	indexable := ^Bitmask(0)
	for bi, bt := range sub.terms {
		if bt.parent >= 0 {
			continue
		}
		var b Bitmask
		if _, isAnd := bt.Expr.(*expression.And); isAnd {
			awc := newClause(info, sub, OpAnd)
			awc.split(bt.Expr, bt.joinCursor)
			awc.analyzeAll()
			bt.and = &andInfo{wc: awc}
			bt.Op = OpAnd
			for _, at := range awc.terms {
				if at.Op&opSingle != 0 && at.flags&termFromJoin == 0 {
					b |= info.masks.Mask(at.LeftCursor)
				}
			}
		} else {
			for ci, ct := range sub.terms {
				if sub.rootOf(ci) != bi || ct.Op&opSingle == 0 {
					continue
				}
				b |= info.masks.Mask(ct.LeftCursor)
			}
		}
		indexable &= b
	}
	t.or.indexable = indexable

	if wc.op == OpAnd {
		if wc.convertOrToIn(idx) {
			// Re-resolve: convertOrToIn appends to wc.
			wc.terms[idx].Op = OpNoop
		}
	}
}

// rootOf walks parent links to the branch a term descends from.
func (wc *Clause) rootOf(i int) int {
	for wc.terms[i].parent >= 0 {
		i = wc.terms[i].parent
	}
	return i
}

// convertOrToIn rewrites e1 OR e2 OR ... as column IN (v1, v2, ...) when
// every branch is an equality on one common column whose right-hand side
// does not reference that column's table. The IN term is appended to the
// enclosing clause as a virtual child of the OR term. Only single-column
// conversion is attempted.
func (wc *Clause) convertOrToIn(idx int) bool {
	info := wc.info
	sub := wc.terms[idx].or.wc

	// Candidate columns come from the equality branches themselves.
	type colKey struct{ cursor, column int }
	var candidates []colKey
	seen := make(map[colKey]struct{})
	for _, bt := range sub.terms {
		if bt.Op&OpEq == 0 || bt.LeftCursor < 0 {
			continue
		}
		k := colKey{bt.LeftCursor, bt.LeftColumn}
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			candidates = append(candidates, k)
		}
	}

	for _, cand := range candidates {
		curMask := info.masks.Mask(cand.cursor)
		values := make([]sql.Expression, 0, len(sub.terms))
		var colRef *expression.GetField
		ok := true
		for bi, bt := range sub.terms {
			if bt.parent >= 0 {
				continue
			}
			// The branch itself or one of its commuted copies must be the
			// equality on the candidate column.
			match := wc.findEqOn(sub, bi, cand.cursor, cand.column, curMask)
			if match == nil {
				ok = false
				break
			}
			values = append(values, rhsOf(match))
			if colRef == nil {
				colRef, _ = bareColumn(lhsOf(match))
			}
		}
		if !ok || colRef == nil {
			continue
		}

		in := expression.NewIn(colRef, expression.NewTuple(values...))
		n := wc.add(in, termVirtual|termDynamic, wc.terms[idx].joinCursor)
		wc.analyze(n)
		wc.markChild(n, idx)
		return true
	}
	return false
}

// findEqOn returns the equality term on (cursor, column) rooted at branch
// bi, or nil.
func (wc *Clause) findEqOn(sub *Clause, bi, cursor, column int, curMask Bitmask) *Term {
	for ci, ct := range sub.terms {
		if sub.rootOf(ci) != bi {
			continue
		}
		if ct.Op&OpEq == 0 || ct.LeftCursor != cursor || ct.LeftColumn != column {
			continue
		}
		if ct.PrereqRight.Intersects(curMask) {
			continue
		}
		return ct
	}
	return nil
}

// lhsOf and rhsOf return the operands of an analyzed comparison term in the
// canonical column-on-the-left orientation. They return nil for terms that
// are not binary comparisons.
func lhsOf(t *Term) sql.Expression {
	c, ok := t.Expr.(expression.Comparison)
	if !ok {
		return nil
	}
	if col, ok := bareColumn(c.LeftChild()); ok &&
		col.Cursor() == t.LeftCursor && col.Column() == t.LeftColumn {
		return c.LeftChild()
	}
	return c.RightChild()
}

func rhsOf(t *Term) sql.Expression {
	c, ok := t.Expr.(expression.Comparison)
	if !ok {
		return nil
	}
	if col, ok := bareColumn(c.LeftChild()); ok &&
		col.Cursor() == t.LeftCursor && col.Column() == t.LeftColumn {
		return c.RightChild()
	}
	return c.LeftChild()
}
