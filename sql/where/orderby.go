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

// OrderTerm is one ORDER BY (or GROUP BY / DISTINCT) term.
type OrderTerm struct {
	Expr sql.Expression
	Desc bool
}

// orderMode selects how strictly ORDER BY terms must be matched. GROUP BY
// and DISTINCT only require the same grouping, not the left-to-right order,
// and are indifferent to scan direction.
type orderMode int

const (
	modeOrderBy orderMode = iota
	modeGroupBy
	modeDistinctBy
)

const (
	orderNotSatisfied = 0
	orderSatisfied    = 1
	orderUnknown      = -1
)

// pathSatisfiesOrderBy decides whether the path formed by extending from
// with last (depth loops total) produces rows in the requested order.
// It returns orderSatisfied, orderNotSatisfied, or orderUnknown when the
// answer depends on loops not yet chosen. revMask receives the loops that
// must run in reverse.
func (info *planInfo) pathSatisfiesOrderBy(from *Path, last *Loop, depth int, revMask *Bitmask) int {
	obs := info.orderBy
	if len(obs) == 0 {
		return orderSatisfied
	}
	if len(obs) > 63 {
		return orderNotSatisfied
	}
	if !info.config.OrderByIdxJoin && depth > 1 {
		return orderNotSatisfied
	}
	obDone := Bitmask(1)<<uint(len(obs)) - 1
	var obSat Bitmask
	var rev Bitmask

	isOrderDistinct := true
	var distinctTables Bitmask
	var ready Bitmask

	loops := make([]*Loop, 0, depth)
	loops = append(loops, from.Loops...)
	loops = append(loops, last)

	for _, l := range loops {
		ready |= l.MaskSelf

		if l.Flags&FlagVirtual != 0 {
			if l.VTab.Ordered {
				// A virtual table only sees the ORDER BY when every term is
				// one of its own columns, so consuming it consumes all.
				obSat = obDone
			} else {
				isOrderDistinct = false
			}
			break
		}

		// ORDER BY terms naming a column of this loop's table that the
		// WHERE clause pins per outer row (= const or IS NULL) are
		// satisfied no matter what order rows arrive in.
		outer := ready &^ l.MaskSelf
		lsrc := info.srcByCursorMask(l.MaskSelf)
		for i, ob := range obs {
			if obSat&(Bitmask(1)<<uint(i)) != 0 {
				continue
			}
			col, ok := bareColumn(ob.Expr)
			if !ok || lsrc == nil || col.Cursor() != lsrc.Cursor {
				continue
			}
			t := info.wc.findTerm(col.Cursor(), col.Column(), ^outer, OpEq|OpIsNull, nil, sql.AffinityNone)
			if t == nil {
				continue
			}
			if t.Op&OpEq != 0 {
				lhs, rhs := lhsOf(t), rhsOf(t)
				if lhs != nil && rhs != nil &&
					!expression.ComparisonCollation(lhs, rhs).Equals(orderCollation(ob)) {
					continue
				}
			}
			obSat |= Bitmask(1) << uint(i)
		}

		loopDistinct := l.Flags&FlagOneRow != 0
		idx := l.BTree.Index
		if l.Flags&(FlagVirtual|FlagMultiOr|FlagAutoIndex) == 0 && idx != nil {
			src := lsrc
			mismatch := false
			revSet, revIdx := false, false
			allKeyUsed := true
			allNotNull := true

			j := 0
			for ; j < idx.ColumnCount(); j++ {
				icol := idx.Column(j)
				if src != nil && !src.Table.Schema()[icol.Column].NotNull {
					allNotNull = false
				}
				if j < l.BTree.NEq {
					// Equalities pin the column to a point, except IN,
					// which revisits the index once per value and breaks
					// any ordering beyond this column.
					if l.Terms[j].Op&OpIn != 0 {
						allKeyUsed = false
						break
					}
					continue
				}

				matched := false
				for i, ob := range obs {
					if obSat&(Bitmask(1)<<uint(i)) != 0 {
						continue
					}
					col, ok := bareColumn(ob.Expr)
					if !ok || src == nil || col.Cursor() != src.Cursor || col.Column() != icol.Column {
						if info.orderMode == modeOrderBy {
							break
						}
						continue
					}
					if !orderCollation(ob).Equals(icol.Collation) {
						if info.orderMode == modeOrderBy {
							break
						}
						continue
					}
					needRev := icol.Desc != ob.Desc
					if info.orderMode == modeOrderBy {
						// One direction per loop: every term the loop
						// satisfies must agree.
						if revSet && needRev != revIdx {
							mismatch = true
							break
						}
						revSet, revIdx = true, needRev
					}
					obSat |= Bitmask(1) << uint(i)
					matched = true
					break
				}
				if mismatch || !matched {
					if !matched {
						allKeyUsed = false
					}
					break
				}
			}
			if mismatch {
				return orderNotSatisfied
			}
			if revSet && revIdx {
				rev |= l.MaskSelf
			}
			if !loopDistinct {
				loopDistinct = idx.Unique() && allKeyUsed && allNotNull
			}
		}
		// A bare rowid scan is unique on rowid, but rowid is never an
		// ORDER BY column here, so it contributes no usable distinctness.

		if loopDistinct {
			distinctTables |= l.MaskSelf
		} else {
			isOrderDistinct = false
		}

		// Once every table scanned so far yields order-distinct rows, any
		// ORDER BY term built from those tables alone cannot distinguish
		// two rows the prefix hasn't already separated.
		if isOrderDistinct {
			for i, ob := range obs {
				if obSat&(Bitmask(1)<<uint(i)) != 0 {
					continue
				}
				m := info.maskOfExpr(ob.Expr)
				if m != 0 && distinctTables.Contains(m) {
					obSat |= Bitmask(1) << uint(i)
				}
			}
		}

		if obSat == obDone {
			break
		}
		// Later loops may only consume further terms while the prefix
		// built so far cannot produce two rows agreeing on everything
		// consumed; otherwise the inner ordering restarts per outer row.
		if !isOrderDistinct {
			break
		}
	}

	if obSat == obDone {
		*revMask = rev
		return orderSatisfied
	}
	if !isOrderDistinct {
		return orderNotSatisfied
	}
	return orderUnknown
}

// orderCollation resolves the collation an ORDER BY term sorts under.
func orderCollation(ob OrderTerm) sql.Collation {
	if c, ok := ob.Expr.(*expression.Collate); ok {
		return c.Collation
	}
	if col, ok := bareColumn(ob.Expr); ok {
		return col.Collation()
	}
	return sql.CollationBinary
}
