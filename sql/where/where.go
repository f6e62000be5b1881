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

// Package where decides how the tables of a SELECT, UPDATE or DELETE are
// visited: in what order, through which index, and scanning in which
// direction, so that the estimated cost is minimal while SQL semantics are
// preserved. It analyzes the WHERE clause into terms, enumerates candidate
// loops per table, and searches the N best join paths, handing the winning
// plan to the byte-code emitter.
package where

import (
	"github.com/dolthub/go-query-planner/sql"
	"github.com/dolthub/go-query-planner/sql/expression"
)

// SrcItem is one entry of the FROM list.
type SrcItem struct {
	// Table from the catalog.
	Table sql.Table
	// Cursor is the cursor number the emitter will open for this table.
	Cursor int
	// Alias under which the table was brought into scope, informational.
	Alias string
	// LeftJoin is true when this is the right table of a LEFT JOIN; On is
	// the join condition. ON conditions of inner joins belong in Where.
	LeftJoin bool
	On       sql.Expression
	// IndexedBy forces one named index; NotIndexed forbids them all.
	IndexedBy  string
	NotIndexed bool
}

// Query is one planning request.
type Query struct {
	From  []*SrcItem
	Where sql.Expression
	// Select lists the projected expressions; the planner derives column
	// usage (for covering indexes) and DISTINCT redundancy from it.
	Select []sql.Expression
	// OrderBy is the ordering the output should arrive in; OrderMode tells
	// whether it came from ORDER BY, GROUP BY or DISTINCT, which differ in
	// strictness.
	OrderBy   []OrderTerm
	OrderMode OrderMode
	// Distinct is true for SELECT DISTINCT.
	Distinct bool
	// OuterRowEstimate is how many times the caller expects to run the
	// whole loop nest (subquery planning); 0 or 1 for a top-level query.
	OuterRowEstimate int64
}

// OrderMode is re-exported for callers; see orderMode.
type OrderMode = orderMode

const (
	// OrderBy requires exact left-to-right order with consistent
	// directions.
	OrderBy = modeOrderBy
	// GroupBy only requires grouping: any order of the terms, either
	// direction.
	GroupBy = modeGroupBy
	// DistinctBy is GroupBy strictness applied to a DISTINCT projection.
	DistinctBy = modeDistinctBy
)

// planInfo is the working state of one planning call. It owns every term,
// loop and path built during the call and is discarded when planning ends.
type planInfo struct {
	ctx     *sql.Context
	config  *Config
	emitter Emitter

	masks   *MaskSet
	src     []*SrcItem
	wc      *Clause
	orderBy []OrderTerm

	orderMode orderMode
	colUsed   map[int]uint64

	loops []*Loop

	// orSet, when non-nil, redirects loop insertion while an OR branch is
	// being costed.
	orSet  *orSet
	orBest *Loop

	nQueryLoop Cost
}

// Begin plans one query. The context logger receives trace output when
// enabled; the emitter, when given, is asked for the registers and cursors
// the plan will need.
func Begin(ctx *sql.Context, q *Query, config *Config, emitter Emitter) (*Plan, error) {
	if ctx == nil {
		ctx = sql.NewEmptyContext()
	}
	span, ctx := ctx.Span("plan_where")
	defer span.Finish()

	if config == nil {
		config = DefaultConfig()
	}
	if len(q.From) > sql.MaxJoinTables {
		return nil, sql.ErrTooManyTables.New(sql.MaxJoinTables)
	}

	info := &planInfo{
		ctx:        ctx,
		config:     config,
		emitter:    emitter,
		masks:      NewMaskSet(),
		src:        q.From,
		orderBy:    q.OrderBy,
		orderMode:  q.OrderMode,
		colUsed:    make(map[int]uint64),
		nQueryLoop: CostOf(q.OuterRowEstimate),
	}
	for _, src := range q.From {
		info.masks.Assign(src.Cursor)
	}

	info.wc = newClause(info, nil, OpAnd)
	info.wc.split(q.Where, -1)
	for _, src := range q.From {
		if src.On == nil {
			continue
		}
		joinCursor := -1
		if src.LeftJoin {
			joinCursor = src.Cursor
		}
		info.wc.split(src.On, joinCursor)
	}
	info.collectColUsage(q)
	info.wc.analyzeAll()
	info.traceTerms()

	distinct := DistinctNone
	if q.Distinct {
		distinct = DistinctUnordered
		if config.DistinctOpt && info.distinctRedundant(q.Select) {
			distinct = DistinctUnique
			// Nothing left for the ordering machinery to prove.
			if info.orderMode == modeDistinctBy {
				info.orderBy = nil
			}
		}
	}

	if err := info.buildLoops(); err != nil {
		return nil, err
	}
	info.traceLoops()

	path, err := info.solve(0)
	if err != nil {
		return nil, err
	}
	if len(info.orderBy) > 0 {
		// Second pass: now that the output size is known, charge a sort to
		// every unordered path and let an ordered one win if it is close.
		path, err = info.solve(path.NRow + 1)
		if err != nil {
			return nil, err
		}
	}

	plan := info.buildPlan(path)
	plan.Distinct = distinct
	if q.Distinct && distinct != DistinctUnique &&
		info.orderMode == modeDistinctBy && plan.OrderBySatisfied {
		plan.Distinct = DistinctOrdered
	}

	if config.OmitNoopJoin {
		info.omitNoopJoins(plan, q)
	}
	if config.ReverseOrder && !plan.OrderBySatisfied {
		for _, lvl := range plan.Levels {
			lvl.Reversed = !lvl.Reversed
		}
	}
	info.tracePlan(plan)
	return plan, nil
}

// maskOfExpr returns the set of cursors an expression references.
func (info *planInfo) maskOfExpr(e sql.Expression) Bitmask {
	if e == nil {
		return 0
	}
	var m Bitmask
	for _, c := range expression.ReferencedCursors(e) {
		m |= info.masks.Mask(c)
	}
	return m
}

func (info *planInfo) srcByCursorMask(m Bitmask) *SrcItem {
	for _, s := range info.src {
		if info.masks.Mask(s.Cursor) == m {
			return s
		}
	}
	return nil
}

// collectColUsage computes, per cursor, the bitmask of column ordinals the
// query reads. Columns 63 and beyond share the top bit, which simply
// disqualifies covering-index shortcuts.
func (info *planInfo) collectColUsage(q *Query) {
	mark := func(e sql.Expression) {
		if e == nil {
			return
		}
		expression.Inspect(e, func(e sql.Expression) bool {
			if col, ok := e.(*expression.GetField); ok {
				bit := uint(col.Column())
				if bit > 63 {
					bit = 63
				}
				info.colUsed[col.Cursor()] |= 1 << bit
			}
			return true
		})
	}
	for _, e := range q.Select {
		mark(e)
	}
	mark(q.Where)
	for _, ob := range q.OrderBy {
		mark(ob.Expr)
	}
	for _, src := range q.From {
		mark(src.On)
	}
}

// omitNoopJoins drops innermost LEFT JOIN levels that cannot change the
// result: the loop yields at most one row, the table is referenced only by
// its own ON clause, and nothing in the projection or ordering reads it.
func (info *planInfo) omitNoopJoins(plan *Plan, q *Query) {
	var resultMask Bitmask
	for _, e := range q.Select {
		resultMask |= info.maskOfExpr(e)
	}
	for _, ob := range q.OrderBy {
		resultMask |= info.maskOfExpr(ob.Expr)
	}

	for len(plan.Levels) > 1 {
		lvl := plan.Levels[len(plan.Levels)-1]
		src := info.src[lvl.From]
		if !src.LeftJoin || lvl.Loop.Flags&FlagOneRow == 0 {
			return
		}
		self := info.masks.Mask(src.Cursor)
		if resultMask.Intersects(self) {
			return
		}
		referenced := false
		for _, t := range info.wc.terms {
			if t.flags&termVirtual != 0 || t.joinCursor == src.Cursor {
				continue
			}
			if t.PrereqAll.Intersects(self) {
				referenced = true
				break
			}
		}
		if referenced {
			return
		}
		plan.Levels = plan.Levels[:len(plan.Levels)-1]
	}
}

func (info *planInfo) traceTerms() {
	for i, t := range info.wc.terms {
		info.trace(TraceTerms, "term %d: %s op=%#x cursor=%d col=%d prereq=%#x/%#x",
			i, t.Expr, t.Op, t.LeftCursor, t.LeftColumn, t.PrereqRight, t.PrereqAll)
	}
}

func (info *planInfo) traceLoops() {
	for i, l := range info.loops {
		info.trace(TraceLoops, "loop %d: tab=%d flags=%#x nEq=%d prereq=%#x setup=%d run=%d out=%d",
			i, l.TabPos, l.Flags, l.BTree.NEq, l.Prereq, l.Setup, l.Run, l.NOut)
	}
}

func (info *planInfo) tracePlan(plan *Plan) {
	for i, lvl := range plan.Levels {
		name := "scan"
		if lvl.Index != nil {
			name = lvl.Index.ID()
		}
		info.trace(TracePlan, "level %d: table=%s access=%s nEq=%d reversed=%v",
			i, info.src[lvl.From].Table.Name(), name, lvl.NEq, lvl.Reversed)
	}
	info.trace(TracePlan, "order satisfied=%v distinct=%d rows=%d",
		plan.OrderBySatisfied, plan.Distinct, plan.RowEstimate)
}
