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

// addVirtualLoops negotiates access paths with a virtual table's BestIndex
// method in four rounds: constants without IN, constants with IN, variables
// without IN, then everything. Each distinct returned plan becomes one
// candidate loop. A final round with no usable constraints guarantees a
// loop that can run without any outer table positioned.
func (info *planInfo) addVirtualLoops(pos int, src *SrcItem, vt sql.VirtualTable, mExtra Bitmask) error {
	self := info.masks.Mask(src.Cursor)
	basePrereq := mExtra &^ self

	var terms []*Term
	for _, t := range info.wc.terms {
		if t.LeftCursor != src.Cursor || t.Op&(opSingle|OpMatch) == 0 {
			continue
		}
		if t.Op&OpIsNull != 0 {
			continue
		}
		if t.PrereqRight.Intersects(self) {
			continue
		}
		if src.LeftJoin && t.flags&termFromJoin != 0 && t.joinCursor != src.Cursor {
			continue
		}
		terms = append(terms, t)
	}

	var orderBy []sql.IndexOrderBy
	for _, ob := range info.orderBy {
		col, ok := bareColumn(ob.Expr)
		if !ok || col.Cursor() != src.Cursor {
			orderBy = nil
			break
		}
		orderBy = append(orderBy, sql.IndexOrderBy{Column: col.Column(), Desc: ob.Desc})
	}

	type planKey struct {
		idxNum int
		idxStr string
		prereq Bitmask
	}
	seen := make(map[planKey]struct{})
	sawFree := false

	round := func(usableFn func(*Term) bool, mustRun bool) error {
		iinfo := &sql.IndexInfo{
			Constraints: make([]sql.IndexConstraint, len(terms)),
			OrderBy:     orderBy,
			Usage:       make([]sql.ConstraintUsage, len(terms)),
		}
		any := false
		for i, t := range terms {
			usable := usableFn(t)
			iinfo.Constraints[i] = sql.IndexConstraint{
				Column: t.LeftColumn,
				Op:     constraintOp(t.Op),
				Usable: usable,
			}
			any = any || usable
		}
		if !any && !mustRun {
			return nil
		}

		if err := vt.BestIndex(info.ctx, iinfo); err != nil {
			return err
		}

		loop := &Loop{
			TabPos:   pos,
			MaskSelf: self,
			SortIdx:  -1,
			Prereq:   basePrereq,
			Run:      CostFromFloat(iinfo.EstimatedCost),
			// A virtual table that says nothing else is assumed to return
			// about 25 rows.
			NOut:  46,
			Flags: FlagVirtual,
		}
		loop.VTab.IdxNum = iinfo.IdxNum
		loop.VTab.IdxStr = iinfo.IdxStr
		loop.VTab.Ordered = iinfo.OrderByConsumed

		maxArg := 0
		for i, u := range iinfo.Usage {
			if u.ArgvIndex <= 0 {
				continue
			}
			if !iinfo.Constraints[i].Usable {
				return sql.ErrVirtualTableBestIndex.New(src.Table.Name())
			}
			loop.Prereq |= terms[i].PrereqRight
			loop.Terms = append(loop.Terms, terms[i])
			if u.Omit && i < 64 {
				loop.VTab.OmitMask |= 1 << uint(i)
			}
			if u.ArgvIndex > maxArg {
				maxArg = u.ArgvIndex
			}
		}
		// The constraint-to-argument map, in argument order.
		loop.VTab.Args = make([]*Term, maxArg)
		for i, u := range iinfo.Usage {
			if u.ArgvIndex > 0 {
				loop.VTab.Args[u.ArgvIndex-1] = terms[i]
			}
		}
		loop.Prereq &^= self

		key := planKey{iinfo.IdxNum, iinfo.IdxStr, loop.Prereq}
		if _, dup := seen[key]; dup {
			return nil
		}
		seen[key] = struct{}{}
		if loop.Prereq == basePrereq {
			sawFree = true
		}
		info.insert(loop)
		return nil
	}

	phases := []func(*Term) bool{
		func(t *Term) bool { return t.PrereqRight == 0 && t.Op&OpIn == 0 },
		func(t *Term) bool { return t.PrereqRight == 0 },
		func(t *Term) bool { return t.Op&OpIn == 0 },
		func(t *Term) bool { return true },
	}
	for i, usable := range phases {
		if err := round(usable, i == len(phases)-1); err != nil {
			return err
		}
	}
	if !sawFree {
		return round(func(*Term) bool { return false }, true)
	}
	return nil
}

func constraintOp(op Operator) sql.ConstraintOp {
	switch {
	case op&(OpEq|OpIn) != 0:
		return sql.ConstraintEQ
	case op&OpLT != 0:
		return sql.ConstraintLT
	case op&OpLE != 0:
		return sql.ConstraintLE
	case op&OpGT != 0:
		return sql.ConstraintGT
	case op&OpGE != 0:
		return sql.ConstraintGE
	default:
		return sql.ConstraintMatch
	}
}
