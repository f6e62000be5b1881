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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-query-planner/sql"
	"github.com/dolthub/go-query-planner/sql/expression"
)

func TestLoopBuilderEqualityAndRange(t *testing.T) {
	require := require.New(t)

	t1 := testTable("t1")
	t1.AddIndex("i", false, "a", "b")
	src := &SrcItem{Table: t1, Cursor: 0}

	info := analyzed(nil, expression.JoinAnd(
		expression.NewEquals(gf(t1, 0, "a"), lit(5)),
		expression.NewGreaterThan(gf(t1, 0, "b"), lit(2)),
		expression.NewLessThan(gf(t1, 0, "b"), lit(10)),
	), src)
	require.NoError(info.buildLoops())

	loops := loopsForTable(info, 0)
	require.NotEmpty(loops)

	// The most constrained candidate: one equality plus both range ends.
	var best *Loop
	for _, l := range loops {
		if l.Flags&FlagColumnEq != 0 && l.Flags&FlagBtmLimit != 0 && l.Flags&FlagTopLimit != 0 {
			best = l
		}
	}
	require.NotNil(best)
	require.Equal(1, best.BTree.NEq)
	require.Equal("i", best.BTree.Index.ID())
	require.Len(best.Terms, 3)
	// Not covering: column c is still read.
	require.Zero(best.Flags & FlagIdxOnly)

	// Both range ends shrink the output estimate below the bare equality.
	rowsEq := CostOf(t1.Indexes()[0].RowEstimate(1))
	require.True(best.NOut <= rowsEq-40, "range did not narrow output: %d", best.NOut)

	// The constrained loop must beat the full scan.
	var full *Loop
	for _, l := range loops {
		if l.Flags&FlagIPK != 0 && len(l.Terms) == 0 {
			full = l
		}
	}
	require.NotNil(full)
	rSize := CostOf(t1.NumRows())
	require.Equal(rSize.Add(EstLog(rSize))+16, full.Run)
	require.True(best.Run < full.Run)
}

func TestLoopBuilderRangeOnSecondColumnAloneIsUnusable(t *testing.T) {
	require := require.New(t)

	t1 := testTable("t1")
	t1.AddIndex("i", false, "a", "b")
	src := &SrcItem{Table: t1, Cursor: 0}

	info := analyzed(nil, expression.NewGreaterThan(gf(t1, 0, "b"), lit(2)), src)
	require.NoError(info.buildLoops())

	for _, l := range loopsForTable(info, 0) {
		require.Zero(l.Flags&FlagColumnRange,
			"index i must not be driven by a constraint on its second column")
	}
}

func TestLoopBuilderOneRowOnUniqueEquality(t *testing.T) {
	require := require.New(t)

	t1 := testTable("t1")
	t1.AddIndex("u", true, "a")
	src := &SrcItem{Table: t1, Cursor: 0}

	info := analyzed(nil, expression.NewEquals(gf(t1, 0, "a"), lit(5)), src)
	require.NoError(info.buildLoops())

	var one *Loop
	for _, l := range loopsForTable(info, 0) {
		if l.Flags&FlagOneRow != 0 {
			one = l
		}
	}
	require.NotNil(one)
	require.Equal(Cost(0), one.NOut)
	require.Equal(1, one.BTree.NEq)
}

func TestLoopBuilderCoveringIndex(t *testing.T) {
	require := require.New(t)

	t1 := testTable("t1")
	t1.AddIndex("iab", false, "a", "b")
	src := &SrcItem{Table: t1, Cursor: 0}

	info := &planInfo{
		ctx:     sql.NewEmptyContext(),
		config:  DefaultConfig(),
		masks:   NewMaskSet(),
		src:     []*SrcItem{src},
		colUsed: make(map[int]uint64),
	}
	info.masks.Assign(0)
	info.wc = newClause(info, nil, OpAnd)
	info.wc.split(expression.NewEquals(gf(t1, 0, "a"), lit(1)), -1)
	// Only a and b are read.
	info.collectColUsage(&Query{
		From:   []*SrcItem{src},
		Select: []sql.Expression{gf(t1, 0, "a"), gf(t1, 0, "b")},
	})
	info.wc.analyzeAll()
	require.NoError(info.buildLoops())

	sawCovering := false
	for _, l := range loopsForTable(info, 0) {
		if l.Flags&FlagIdxOnly != 0 {
			sawCovering = true
		}
	}
	require.True(sawCovering)
}

func TestLoopBuilderInCost(t *testing.T) {
	require := require.New(t)

	t1 := testTable("t1")
	t1.AddIndex("ia", false, "a")
	src := &SrcItem{Table: t1, Cursor: 0}

	info := analyzed(nil, expression.NewIn(gf(t1, 0, "a"),
		expression.NewTuple(lit(1), lit(2), lit(7))), src)
	require.NoError(info.buildLoops())

	var in *Loop
	for _, l := range loopsForTable(info, 0) {
		if l.Flags&FlagColumnIn != 0 {
			in = l
		}
	}
	require.NotNil(in)
	// Three probes instead of one: the fan-out shows up in the estimate.
	require.Equal(CostOf(t1.Indexes()[0].RowEstimate(1))+CostOf(3), in.NOut)
}

func TestLoopBuilderAutoIndex(t *testing.T) {
	require := require.New(t)

	t1 := testTable("t1")
	t2 := testTable("t2")
	s1 := &SrcItem{Table: t1, Cursor: 0}
	s2 := &SrcItem{Table: t2, Cursor: 1}

	info := analyzed(nil, expression.NewEquals(gf(t1, 0, "a"), gf(t2, 1, "b")), s1, s2)
	require.NoError(info.buildLoops())

	var auto *Loop
	for _, l := range loopsForTable(info, 1) {
		if l.Flags&FlagAutoIndex != 0 {
			auto = l
		}
	}
	require.NotNil(auto)

	rSize := CostOf(t2.NumRows())
	rLogSize := EstLog(rSize)
	require.Equal(rLogSize.Add(rSize)+CostOf(7), auto.Setup)
	require.Equal(CostOf(20), auto.NOut)
	require.Equal(rLogSize.Add(auto.NOut), auto.Run)
	require.Equal(info.masks.Mask(0), auto.Prereq)

	cfg := DefaultConfig()
	cfg.AutoIndex = false
	info = analyzed(cfg, expression.NewEquals(gf(t1, 0, "a"), gf(t2, 1, "b")), s1, s2)
	require.NoError(info.buildLoops())
	for _, l := range info.loops {
		require.Zero(l.Flags & FlagAutoIndex)
	}
}

func TestLoopBuilderIndexedBy(t *testing.T) {
	require := require.New(t)

	t1 := testTable("t1")
	t1.AddIndex("ia", false, "a")
	src := &SrcItem{Table: t1, Cursor: 0, IndexedBy: "ia"}

	info := analyzed(nil, expression.NewEquals(gf(t1, 0, "b"), lit(1)), src)
	require.NoError(info.buildLoops())
	for _, l := range loopsForTable(info, 0) {
		require.Equal("ia", l.BTree.Index.ID())
	}

	src.IndexedBy = "ib"
	info = analyzed(nil, nil, src)
	err := info.buildLoops()
	require.Error(err)
	require.True(sql.ErrIndexedByNotFound.Is(err))
	require.Contains(err.Error(), "maybe you mean ia?")
}

func TestLoopBuilderOrUnion(t *testing.T) {
	require := require.New(t)

	t1 := testTable("t1")
	t1.AddIndex("ia", false, "a")
	t1.AddIndex("ib", false, "b")
	src := &SrcItem{Table: t1, Cursor: 0}

	info := analyzed(nil, expression.NewOr(
		expression.NewEquals(gf(t1, 0, "a"), lit(1)),
		expression.NewEquals(gf(t1, 0, "b"), lit(2)),
	), src)
	require.NoError(info.buildLoops())

	var union *Loop
	for _, l := range loopsForTable(info, 0) {
		if l.Flags&FlagMultiOr != 0 {
			union = l
		}
	}
	require.NotNil(union)
	require.Len(union.SubLoops, 2)

	// Each branch is cheap through its own index, so the union with its
	// fixed row-set surcharge still beats a full scan.
	var full *Loop
	for _, l := range loopsForTable(info, 0) {
		if l.Flags&FlagIPK != 0 && len(l.Terms) == 0 {
			full = l
		}
	}
	require.NotNil(full)
	require.True(union.Run < full.Run)
}

func TestLoopInsertDominance(t *testing.T) {
	require := require.New(t)

	info := &planInfo{config: DefaultConfig()}
	a := &Loop{TabPos: 0, SortIdx: 1, MaskSelf: 1, Run: 50, NOut: 40}
	b := &Loop{TabPos: 0, SortIdx: 1, MaskSelf: 1, Run: 60, NOut: 40}

	// The cheaper loop with equal prerequisites supersedes.
	info.insert(a)
	info.insert(b)
	require.Len(info.loops, 1)
	require.Equal(Cost(50), info.loops[0].Run)

	// A cheaper loop replaces an existing one.
	c := &Loop{TabPos: 0, SortIdx: 1, MaskSelf: 1, Run: 30, NOut: 40}
	info.insert(c)
	require.Len(info.loops, 1)
	require.Equal(Cost(30), info.loops[0].Run)

	// A cheaper loop that needs more prerequisites coexists.
	d := &Loop{TabPos: 0, SortIdx: 1, MaskSelf: 1, Prereq: 2, Run: 20, NOut: 40}
	info.insert(d)
	require.Len(info.loops, 2)

	// Different tables never interact.
	e := &Loop{TabPos: 1, SortIdx: 1, MaskSelf: 2, Run: 10, NOut: 40}
	info.insert(e)
	require.Len(info.loops, 3)
}

func TestLeftJoinOnTermCannotDriveLeftTable(t *testing.T) {
	require := require.New(t)

	t1 := testTable("t1")
	t1.AddIndex("ia", false, "a")
	t2 := testTable("t2")
	t2.AddIndex("ib", false, "b")
	s1 := &SrcItem{Table: t1, Cursor: 0}
	s2 := &SrcItem{
		Table:    t2,
		Cursor:   1,
		LeftJoin: true,
		On:       expression.NewEquals(gf(t1, 0, "a"), gf(t2, 1, "b")),
	}

	info := analyzed(nil, nil, s1, s2)
	require.NoError(info.buildLoops())

	// The ON term may drive t2's index but never t1's.
	for _, l := range loopsForTable(info, 0) {
		require.Empty(l.Terms, "ON-clause term drives an index on the left table")
	}
	sawDriven := false
	for _, l := range loopsForTable(info, 1) {
		if len(l.Terms) > 0 {
			sawDriven = true
			// Everything left of the join is a prerequisite.
			require.True(l.Prereq.Contains(info.masks.Mask(0)))
		}
	}
	require.True(sawDriven)
}
