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
	"github.com/dolthub/go-query-planner/internal/similartext"
	"github.com/dolthub/go-query-planner/sql"
	"github.com/dolthub/go-query-planner/sql/expression"
)

// LoopFlags describe the shape of a candidate loop.
type LoopFlags uint32

const (
	// FlagColumnEq marks leading index columns constrained by equality.
	FlagColumnEq LoopFlags = 1 << iota
	// FlagColumnRange marks a range constraint on the first unconstrained
	// column.
	FlagColumnRange
	// FlagColumnIn marks an IN constraint among the equalities.
	FlagColumnIn
	// FlagColumnNull marks an IS NULL used as an equality.
	FlagColumnNull
	// FlagTopLimit and FlagBtmLimit mark the two range ends.
	FlagTopLimit
	FlagBtmLimit
	// FlagIdxOnly marks a covering index: the base table is never read.
	FlagIdxOnly
	// FlagIPK marks access through the table's integer primary key.
	FlagIPK
	// FlagIndexed marks access through a secondary index.
	FlagIndexed
	// FlagVirtual marks a virtual-table loop.
	FlagVirtual
	// FlagInAble marks a loop that can absorb further IN constraints.
	FlagInAble
	// FlagOneRow marks equalities covering every column of a unique index.
	FlagOneRow
	// FlagMultiOr marks an OR-of-indexes union loop.
	FlagMultiOr
	// FlagAutoIndex marks a transient index built at execution time; the
	// loop owns its index descriptor.
	FlagAutoIndex
)

// Loop is one candidate way of scanning one FROM-list table.
type Loop struct {
	// Prereq is the set of cursors that must be positioned before this loop
	// can run.
	Prereq Bitmask
	// MaskSelf is the single-bit mask of the loop's own cursor.
	MaskSelf Bitmask
	// TabPos is the position of the table in the FROM list.
	TabPos int
	// SortIdx groups loops by the ordering they produce: 0 for primary-key
	// order, 1+i for the i-th secondary index, -1 for no usable order.
	SortIdx int

	// Setup is the one-time cost (building an automatic index); Run the
	// cost of one complete scan; NOut the estimated rows produced.
	Setup Cost
	Run   Cost
	NOut  Cost

	Flags LoopFlags
	// Terms consumed by the loop. For every consumed term, PrereqRight is
	// disjoint from MaskSelf.
	Terms []*Term

	// BTree is the payload for table/index scans; VTab for virtual tables.
	// The AUTO_INDEX flag marks a b-tree loop owning its descriptor.
	BTree struct {
		NEq   int
		Index sql.Index
	}
	VTab struct {
		IdxNum   int
		IdxStr   string
		Ordered  bool
		OmitMask uint64
		// Args maps filter-argument positions to the terms whose right-hand
		// sides supply them: Args[i] feeds argument i+1.
		Args []*Term
	}

	// SubLoops are the per-branch plans of an OR-union loop.
	SubLoops []*Loop
}

func (l *Loop) clone() *Loop {
	c := *l
	c.Terms = append([]*Term(nil), l.Terms...)
	c.SubLoops = append([]*Loop(nil), l.SubLoops...)
	c.VTab.Args = append([]*Term(nil), l.VTab.Args...)
	return &c
}

// insert adds a template loop to the candidate list, applying the
// dominance rules: an existing loop that is usable whenever the new one is,
// and no more expensive, supersedes it; conversely a new loop that is
// usable whenever an existing one is, and cheaper, replaces it. The
// template is cloned, so the builder may keep mutating it.
func (info *planInfo) insert(tmpl *Loop) {
	if info.orSet != nil {
		// While costing an OR branch only the cost triple is collected,
		// plus the cheapest concrete loop for the sub-plan hand-off.
		info.orSet.insert(tmpl.Prereq, tmpl.Run, tmpl.NOut)
		if info.orBest == nil || tmpl.Run < info.orBest.Run {
			info.orBest = tmpl.clone()
		}
		return
	}
	for i, p := range info.loops {
		if p.TabPos != tmpl.TabPos || p.SortIdx != tmpl.SortIdx {
			continue
		}
		if tmpl.Prereq.Contains(p.Prereq) && p.Setup <= tmpl.Setup && p.Run <= tmpl.Run {
			// P dominates T, unless T drives more columns of the same index
			// at no extra prerequisite.
			if p.BTree.Index != nil && p.BTree.Index == tmpl.BTree.Index &&
				p.Prereq == tmpl.Prereq && len(tmpl.Terms) > len(p.Terms) {
				info.loops[i] = tmpl.clone()
			}
			return
		}
		if p.Prereq.Contains(tmpl.Prereq) && p.Run >= tmpl.Run && p.Setup >= tmpl.Setup {
			info.loops[i] = tmpl.clone()
			return
		}
	}
	info.loops = append(info.loops, tmpl.clone())
}

// buildLoops enumerates candidate loops for every FROM-list entry in FROM
// order. Tables to the right of a LEFT JOIN inherit a prerequisite on every
// table to its left, which pins the join order across the LEFT JOIN
// boundary.
func (info *planInfo) buildLoops() error {
	var mPrior Bitmask
	for pos, src := range info.src {
		var mExtra Bitmask
		if src.LeftJoin {
			mExtra = mPrior
		}
		var err error
		if vt, ok := src.Table.(sql.VirtualTable); ok {
			err = info.addVirtualLoops(pos, src, vt, mExtra)
		} else {
			err = info.addBtreeLoops(pos, src, mExtra)
		}
		if err != nil {
			return err
		}
		if err := info.addOrLoops(pos, src, mExtra); err != nil {
			return err
		}
		mPrior |= info.masks.Mask(src.Cursor)
	}
	return nil
}

// addBtreeLoops enumerates the loops of one ordinary table: the full scan
// (through the primary key, so it doubles as the PK-ordered scan),
// automatic-index candidates, and every index probe extended column by
// column.
func (info *planInfo) addBtreeLoops(pos int, src *SrcItem, mExtra Bitmask) error {
	self := info.masks.Mask(src.Cursor)
	rSize := CostOf(src.Table.NumRows())
	rLogSize := EstLog(rSize)

	probes, err := info.probesFor(src)
	if err != nil {
		return err
	}

	// Automatic indexes are enumerated first so that the setup-cost
	// invariant (auto-index setup dominates) holds against every loop that
	// follows.
	if info.config.AutoIndex && src.IndexedBy == "" && !src.NotIndexed &&
		len(info.src) > 1 && info.orSet == nil {
		for _, t := range info.wc.terms {
			if !info.termCanDriveIndex(t, src) {
				continue
			}
			auto := &Loop{
				TabPos:   pos,
				MaskSelf: self,
				SortIdx:  -1,
				Prereq:   (mExtra | t.PrereqRight) &^ self,
				Setup:    rLogSize.Add(rSize) + CostOf(7),
				NOut:     CostOf(20),
				Flags:    FlagAutoIndex | FlagColumnEq,
				Terms:    []*Term{t},
			}
			auto.Run = rLogSize.Add(auto.NOut)
			auto.BTree.NEq = 1
			info.insert(auto)
		}
	}

	for _, probe := range probes {
		tmpl := &Loop{
			TabPos:   pos,
			MaskSelf: self,
			Prereq:   mExtra &^ self,
			SortIdx:  probe.sortIdx,
			NOut:     rSize,
			Flags:    probe.flags,
		}
		tmpl.BTree.Index = probe.index

		if probe.flags&FlagIPK != 0 {
			// Full table scan, in primary-key order.
			tmpl.Run = rSize.Add(rLogSize) + 16
			info.insert(tmpl)
		} else if (probe.covering && info.config.CoveringIndexScan) ||
			src.IndexedBy != "" || info.indexMayOrder(src.Cursor) {
			// Full index scan: worthwhile when covering, or when the index
			// order may spare a sort.
			scan := tmpl.clone()
			if probe.covering && info.config.CoveringIndexScan {
				scan.Flags |= FlagIdxOnly
				scan.Run = rSize.Add(rLogSize) + 14
			} else {
				scan.Run = rSize.Add(rLogSize+16) + 16
			}
			info.insert(scan)
		}

		if err := info.extendBtree(src, probe, tmpl, rLogSize, 0); err != nil {
			return err
		}
	}
	return nil
}

// probe describes one access path of a table: the primary key or a
// secondary index.
type probe struct {
	index    sql.Index
	sortIdx  int
	flags    LoopFlags
	covering bool
}

// probesFor lists the access paths of a table, honoring INDEXED BY and NOT
// INDEXED clauses. The primary key comes first.
func (info *planInfo) probesFor(src *SrcItem) ([]*probe, error) {
	var probes []*probe
	pk := src.Table.PrimaryKey()
	probes = append(probes, &probe{index: pk, sortIdx: 0, flags: FlagIPK, covering: true})

	if src.NotIndexed {
		return probes, nil
	}
	found := src.IndexedBy == ""
	for i, idx := range src.Table.Indexes() {
		if src.IndexedBy != "" && idx.ID() != src.IndexedBy {
			continue
		}
		found = true
		if src.IndexedBy != "" {
			// INDEXED BY forbids every other access path, the full table
			// scan included.
			probes = probes[:0]
		}
		probes = append(probes, &probe{
			index:    idx,
			sortIdx:  1 + i,
			flags:    FlagIndexed,
			covering: info.indexCovers(src, idx),
		})
		if src.IndexedBy != "" {
			break
		}
	}
	if !found {
		var ids []string
		for _, idx := range src.Table.Indexes() {
			ids = append(ids, idx.ID())
		}
		return nil, sql.ErrIndexedByNotFound.New(
			src.IndexedBy + similartext.Find(ids, src.IndexedBy))
	}
	return probes, nil
}

// indexCovers reports whether every column of the table the query reads is
// present in the index.
func (info *planInfo) indexCovers(src *SrcItem, idx sql.Index) bool {
	used := info.colUsed[src.Cursor]
	if used&(1<<63) != 0 {
		return false
	}
	var m uint64
	for i := 0; i < idx.ColumnCount(); i++ {
		c := idx.Column(i).Column
		if c < 63 {
			m |= 1 << uint(c)
		}
	}
	if pk := src.Table.PrimaryKey(); pk != nil {
		for i := 0; i < pk.ColumnCount(); i++ {
			c := pk.Column(i).Column
			if c < 63 {
				m |= 1 << uint(c)
			}
		}
	}
	return used&^m == 0
}

// indexMayOrder reports whether an index scan of the cursor could
// contribute to the requested output order.
func (info *planInfo) indexMayOrder(cursor int) bool {
	for _, ob := range info.orderBy {
		for _, c := range expression.ReferencedCursors(ob.Expr) {
			if c == cursor {
				return true
			}
		}
	}
	return false
}

// termCanDriveIndex reports whether a term could drive an automatic index
// on the table: a strict equality on one of its columns whose right side
// needs nothing from the table itself, and — across a LEFT JOIN — one that
// lives in the join's own ON clause.
func (info *planInfo) termCanDriveIndex(t *Term, src *SrcItem) bool {
	if t.LeftCursor != src.Cursor || t.Op&OpEq == 0 {
		return false
	}
	if t.PrereqRight.Intersects(info.masks.Mask(src.Cursor)) {
		return false
	}
	if src.LeftJoin {
		return t.joinCursor == src.Cursor
	}
	return t.flags&termFromJoin == 0
}

// extendBtree grows an index probe one column at a time: each term usable
// against the next index column produces an inserted loop, and equality
// terms recurse to consider the column after that. A range terminates the
// extension.
func (info *planInfo) extendBtree(src *SrcItem, pr *probe, tmpl *Loop, rLogSize Cost, nInCost Cost) error {
	idx := pr.index
	if idx == nil {
		return nil
	}
	nEq := tmpl.BTree.NEq
	if nEq >= idx.ColumnCount() {
		return nil
	}

	opMask := OpEq | OpIn | OpGT | OpGE | OpLT | OpLE | OpIsNull
	if tmpl.Flags&FlagBtmLimit != 0 {
		opMask = OpLT | OpLE
	}

	icol := idx.Column(nEq)
	col := src.Table.Schema()[icol.Column]

	saved := tmpl.clone()
	s := newTermScanner(info.wc, src.Cursor, icol.Column, opMask).
		withIndexColumn(icol.Collation, col.Affinity)
	for t := s.next(); t != nil; t = s.next() {
		if t.allPrereq().Intersects(tmpl.MaskSelf) {
			continue
		}
		if src.LeftJoin && t.flags&termFromJoin != 0 && t.joinCursor != src.Cursor {
			continue
		}
		already := false
		for _, u := range saved.Terms {
			if u == t {
				already = true
				break
			}
		}
		if already {
			continue
		}
		*tmpl = *saved.clone()
		tmpl.Terms = append(tmpl.Terms, t)
		tmpl.Prereq = (tmpl.Prereq | t.allPrereq()) &^ tmpl.MaskSelf

		newInCost := nInCost
		rangeTerm := false
		switch {
		case t.Op&OpIn != 0:
			tmpl.Flags |= FlagColumnIn | FlagColumnEq
			tmpl.BTree.NEq = nEq + 1
			newInCost += info.inCost(t)
		case t.Op&OpEq != 0:
			tmpl.Flags |= FlagColumnEq
			tmpl.BTree.NEq = nEq + 1
		case t.Op&OpIsNull != 0:
			tmpl.Flags |= FlagColumnNull | FlagColumnEq
			tmpl.BTree.NEq = nEq + 1
			newInCost += CostOf(2)
		case t.Op&(OpGT|OpGE) != 0:
			tmpl.Flags |= FlagColumnRange | FlagBtmLimit
			rangeTerm = true
		default:
			tmpl.Flags |= FlagColumnRange | FlagTopLimit
			rangeTerm = true
		}

		if rangeTerm {
			info.costRange(tmpl, idx, nEq, newInCost, rLogSize, pr)
			info.insert(tmpl)
			// A second term may close the other end of the range.
			if tmpl.Flags&FlagBtmLimit != 0 && tmpl.Flags&FlagTopLimit == 0 {
				if err := info.extendBtree(src, pr, tmpl, rLogSize, newInCost); err != nil {
					return err
				}
			}
			continue
		}

		info.costEq(tmpl, idx, newInCost, rLogSize, pr)
		if tmpl.BTree.NEq == idx.ColumnCount() && idx.Unique() &&
			tmpl.Flags&FlagColumnIn == 0 {
			tmpl.Flags |= FlagOneRow
			tmpl.NOut = 0
		}
		info.insert(tmpl)
		if err := info.extendBtree(src, pr, tmpl, rLogSize, newInCost); err != nil {
			return err
		}
	}
	*tmpl = *saved
	return nil
}

// inCost prices the fan-out of an IN right-hand side: the value count for a
// literal list, a fixed 46 for a subquery.
func (info *planInfo) inCost(t *Term) Cost {
	in, ok := t.Expr.(*expression.In)
	if !ok {
		return CostOf(2)
	}
	if tup, ok := in.Right.(expression.Tuple); ok {
		return CostOf(int64(len(tup)))
	}
	return 46
}

// costEq prices a loop whose last consumed term is an equality.
func (info *planInfo) costEq(l *Loop, idx sql.Index, nInCost, rLogSize Cost, pr *probe) {
	nOut := CostOf(idx.RowEstimate(l.BTree.NEq)) + nInCost
	l.NOut = nOut
	if pr.covering && l.Flags&FlagIndexed != 0 {
		l.Flags |= FlagIdxOnly
	}
	l.Run = loopRunCost(nOut, nInCost, rLogSize, pr.covering || l.Flags&FlagIPK != 0)
}

// costRange prices a loop whose extension ended in a range. Each range end
// cuts the remaining key space by a default factor of 4; histogram samples,
// when present and enabled, refine the fraction.
func (info *planInfo) costRange(l *Loop, idx sql.Index, nEq int, nInCost, rLogSize Cost, pr *probe) {
	nOut := CostOf(idx.RowEstimate(nEq)) + nInCost
	if l.Flags&FlagBtmLimit != 0 {
		nOut -= 20
	}
	if l.Flags&FlagTopLimit != 0 {
		nOut -= 20
	}
	if nOut < 10 {
		nOut = 10
	}
	if info.config.Stat3 && nEq == 0 {
		if si, ok := idx.(sql.StatIndex); ok && len(si.Samples()) > 0 {
			nOut = info.rangeEstFromSamples(l, si, nOut)
		}
	}
	l.NOut = nOut
	if pr.covering && l.Flags&FlagIndexed != 0 {
		l.Flags |= FlagIdxOnly
	}
	l.Run = loopRunCost(nOut, nInCost, rLogSize, pr.covering || l.Flags&FlagIPK != 0)
}

// loopRunCost combines the seek and scan halves of one loop execution. A
// non-covering secondary index pays an extra table-row fetch per visited
// entry.
func loopRunCost(nOut, nInCost, rLogSize Cost, covering bool) Cost {
	seek := rLogSize + nInCost
	scan := nOut
	if !covering {
		scan += 16
	}
	return seek.Add(scan)
}

// allPrereq is the prerequisite set a term imposes on a loop that consumes
// it, including the LEFT JOIN widening.
func (t *Term) allPrereq() Bitmask { return t.PrereqRight | t.extraRight }
