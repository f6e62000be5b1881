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

// maxEquiv bounds the equivalence set a scan may grow to: the seed column
// plus ten columns reached through x=y chains.
const maxEquiv = 11

// termScanner iterates every term usable against a target (cursor, column,
// operator mask), following equivalence classes: whenever a scanned term is
// an equivalence whose right side is another bare column, that column joins
// the scan set, so x=y AND y=z lets a constraint on z drive an index on x.
type termScanner struct {
	origWC *Clause
	wc     *Clause
	opMask Operator

	// Collation/affinity compatibility against a candidate index column.
	checkIdx bool
	idxColl  sql.Collation
	idxAff   sql.Affinity

	aEquiv [2 * maxEquiv]int
	nEquiv int
	iEquiv int
	k      int
}

// newTermScanner starts a scan for terms constraining (cursor, column) with
// an operator in opMask. When idxColl/idxAff are supplied the scan skips
// terms whose comparison collation or affinity is incompatible with the
// index column; such terms are skipped, never errored.
func newTermScanner(wc *Clause, cursor, column int, opMask Operator) *termScanner {
	s := &termScanner{origWC: wc, wc: wc, opMask: opMask}
	s.aEquiv[0] = cursor
	s.aEquiv[1] = column
	s.nEquiv = 1
	return s
}

func (s *termScanner) withIndexColumn(coll sql.Collation, aff sql.Affinity) *termScanner {
	s.checkIdx = true
	s.idxColl = coll
	s.idxAff = aff
	return s
}

// next returns the next usable term, or nil when the scan is exhausted.
func (s *termScanner) next() *Term {
	for s.iEquiv < s.nEquiv {
		cursor := s.aEquiv[s.iEquiv*2]
		column := s.aEquiv[s.iEquiv*2+1]
		for s.wc != nil {
			for s.k < len(s.wc.terms) {
				t := s.wc.terms[s.k]
				s.k++
				if t.LeftCursor != cursor || t.LeftColumn != column {
					continue
				}
				if t.Op&s.opMask == 0 {
					continue
				}
				rhs := rhsOf(t)
				if t.Op&OpEquiv != 0 && s.nEquiv < maxEquiv {
					if rcol, ok := bareColumn(rhs); ok {
						s.addEquiv(rcol.Cursor(), rcol.Column())
					}
				}
				// A term whose right side is the seed itself would send the
				// scan straight back where it started.
				if rcol, ok := bareColumn(rhs); ok &&
					rcol.Cursor() == s.aEquiv[0] && rcol.Column() == s.aEquiv[1] {
					continue
				}
				if s.checkIdx && t.Op&OpIsNull == 0 {
					if !s.compatible(t, rhs) {
						continue
					}
				}
				return t
			}
			s.wc = s.wc.outer
			s.k = 0
		}
		s.iEquiv++
		s.wc = s.origWC
		s.k = 0
	}
	return nil
}

func (s *termScanner) addEquiv(cursor, column int) {
	for i := 0; i < s.nEquiv; i++ {
		if s.aEquiv[i*2] == cursor && s.aEquiv[i*2+1] == column {
			return
		}
	}
	s.aEquiv[s.nEquiv*2] = cursor
	s.aEquiv[s.nEquiv*2+1] = column
	s.nEquiv++
}

func (s *termScanner) compatible(t *Term, rhs sql.Expression) bool {
	if t.Op&OpIn != 0 {
		// IN compares element by element; element affinity is not modelled,
		// only the collation must line up.
		lhs := lhsOf(t)
		if lhs == nil {
			return true
		}
		return expression.ComparisonCollation(lhs, lhs).Equals(s.idxColl)
	}
	lhs := lhsOf(t)
	if lhs == nil || rhs == nil {
		return true
	}
	if !expression.AffinityOf(rhs).Compatible(s.idxAff) {
		return false
	}
	return expression.ComparisonCollation(lhs, rhs).Equals(s.idxColl)
}

// findTerm returns the best term driving (cursor, column): a constant-RHS
// equality wins outright, then the first non-equivalence term, then any
// usable term. Terms needing a table in notReady are skipped.
func (wc *Clause) findTerm(cursor, column int, notReady Bitmask, opMask Operator, idxCol *sql.IndexColumn, aff sql.Affinity) *Term {
	s := newTermScanner(wc, cursor, column, opMask)
	if idxCol != nil {
		s.withIndexColumn(idxCol.Collation, aff)
	}
	var firstAny, firstDirect *Term
	for t := s.next(); t != nil; t = s.next() {
		if t.PrereqRight.Intersects(notReady) {
			continue
		}
		if t.PrereqRight == 0 && t.Op&OpEq != 0 {
			return t
		}
		if firstDirect == nil && t.Op&OpEquiv == 0 {
			firstDirect = t
		}
		if firstAny == nil {
			firstAny = t
		}
	}
	if firstDirect != nil {
		return firstDirect
	}
	return firstAny
}
