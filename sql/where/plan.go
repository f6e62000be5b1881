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
	"github.com/mitchellh/hashstructure"

	"github.com/dolthub/go-query-planner/sql"
)

// Emitter is the planner's view of the byte-code generator: an allocator
// for the registers, labels and cursors the chosen plan will need. The
// planner only reserves resources; emitting the scan loops is the caller's
// business.
type Emitter interface {
	AllocRegister() int
	AllocLabel() int
	AllocCursor() int
}

// Level is the hand-off for one join level: everything the emitter needs to
// open and drive one loop of the chosen path.
type Level struct {
	// From is the position in the FROM list; Cursor the cursor to open.
	From   int
	Cursor int
	// Loop is the chosen candidate loop.
	Loop *Loop
	// Reversed is true when the scan must run backward to satisfy the
	// requested order.
	Reversed bool

	// Index to open, nil for a plain table scan. NEq leading columns are
	// constrained by equality; RangeBottom/RangeTop bound the next column.
	Index       sql.Index
	NEq         int
	RangeBottom *Term
	RangeTop    *Term
	// Covering is true when the base table never needs to be read.
	Covering bool

	// Virtual-table hand-off. Args[i] is the term whose right-hand side
	// becomes filter argument i+1.
	IdxNum   int
	IdxStr   string
	OmitMask uint64
	Args     []*Term

	// OR-union hand-off: one sub-plan per branch, plus the register of the
	// deduplicating row set.
	SubPlans  []*Loop
	RowSetReg int

	// AutoIndexCursor is the cursor reserved for a transient index, or -1.
	AutoIndexCursor int

	// Consumed terms; the emitter must not re-test them.
	Consumed []*Term
}

// Plan is the full result of planning: the nesting order, the access path
// of every level, and the global flags the statement compiler consumes.
type Plan struct {
	Levels []*Level
	// OrderBySatisfied is true when the output arrives in the requested
	// order and no sort pass is needed.
	OrderBySatisfied bool
	// Distinct is the residual deduplication obligation.
	Distinct DistinctLevel
	// RowEstimate is the log-domain estimate of output rows.
	RowEstimate Cost
}

// fingerprintLevel is the stable projection of a level used for hashing.
type fingerprintLevel struct {
	Table    string
	Index    string
	Flags    uint32
	NEq      int
	Reversed bool
	IdxNum   int
	IdxStr   string
}

// Fingerprint returns a hash of the plan's observable decisions. Planning
// the same input twice yields the same fingerprint; tests lean on this for
// the determinism guarantees.
func (p *Plan) Fingerprint() (uint64, error) {
	type fp struct {
		Levels           []fingerprintLevel
		OrderBySatisfied bool
		Distinct         int
	}
	v := fp{OrderBySatisfied: p.OrderBySatisfied, Distinct: int(p.Distinct)}
	for _, lvl := range p.Levels {
		f := fingerprintLevel{
			Flags:    uint32(lvl.Loop.Flags),
			NEq:      lvl.NEq,
			Reversed: lvl.Reversed,
			IdxNum:   lvl.IdxNum,
			IdxStr:   lvl.IdxStr,
		}
		if lvl.Index != nil {
			f.Index = lvl.Index.ID()
			f.Table = lvl.Index.Table()
		}
		v.Levels = append(v.Levels, f)
	}
	return hashstructure.Hash(v, nil)
}

// buildPlan loads the winning path into the hand-off structure, reserving
// emitter resources and marking consumed terms so the emitter will not
// re-test them.
func (info *planInfo) buildPlan(path *Path) *Plan {
	p := &Plan{
		RowEstimate:      path.NRow,
		OrderBySatisfied: path.IsOrderedValid && path.IsOrdered,
	}

	for _, l := range path.Loops {
		src := info.src[l.TabPos]
		lvl := &Level{
			From:            l.TabPos,
			Cursor:          src.Cursor,
			Loop:            l,
			Reversed:        path.RevLoop.Intersects(l.MaskSelf),
			NEq:             l.BTree.NEq,
			Covering:        l.Flags&FlagIdxOnly != 0,
			IdxNum:          l.VTab.IdxNum,
			IdxStr:          l.VTab.IdxStr,
			OmitMask:        l.VTab.OmitMask,
			Args:            l.VTab.Args,
			SubPlans:        l.SubLoops,
			RowSetReg:       -1,
			AutoIndexCursor: -1,
		}
		if l.Flags&(FlagIndexed|FlagAutoIndex) != 0 || (l.Flags&FlagIPK != 0 && l.BTree.NEq > 0) {
			lvl.Index = l.BTree.Index
		}
		for _, t := range l.Terms {
			switch {
			case t.Op&(OpGT|OpGE) != 0:
				lvl.RangeBottom = t
			case t.Op&(OpLT|OpLE) != 0:
				lvl.RangeTop = t
			}
			info.wc.disable(t)
			lvl.Consumed = append(lvl.Consumed, t)
		}
		if info.emitter != nil {
			if l.Flags&FlagMultiOr != 0 {
				lvl.RowSetReg = info.emitter.AllocRegister()
			}
			if l.Flags&FlagAutoIndex != 0 {
				lvl.AutoIndexCursor = info.emitter.AllocCursor()
			}
		}
		p.Levels = append(p.Levels, lvl)
	}
	return p
}
