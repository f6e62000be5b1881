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

	"github.com/dolthub/go-query-planner/memory"
	"github.com/dolthub/go-query-planner/sql"
	"github.com/dolthub/go-query-planner/sql/expression"
)

// seqTable is a virtual table that advertises a cheap plan when its first
// column is constrained by equality, and records every BestIndex call.
type seqTable struct {
	*memory.Table
	calls     int
	misbehave bool
}

func newSeqTable() *seqTable {
	return &seqTable{Table: memory.NewTable("seq", []sql.Column{
		{Name: "value", Affinity: sql.AffinityInteger, Collation: sql.CollationBinary},
		{Name: "step", Affinity: sql.AffinityInteger, Collation: sql.CollationBinary},
	}).WithRowCount(1000000)}
}

func (s *seqTable) BestIndex(ctx *sql.Context, info *sql.IndexInfo) error {
	s.calls++
	info.EstimatedCost = 1e6
	info.IdxNum = 0
	for i, c := range info.Constraints {
		if c.Column != 0 || c.Op != sql.ConstraintEQ {
			continue
		}
		if s.misbehave {
			// Claim an argument for a constraint regardless of usability.
			info.Usage[i].ArgvIndex = 1
			continue
		}
		if !c.Usable {
			continue
		}
		info.Usage[i].ArgvIndex = 1
		info.Usage[i].Omit = true
		info.IdxNum = 1
		info.IdxStr = "eq"
		info.EstimatedCost = 10
		break
	}
	if len(info.OrderBy) == 1 && info.OrderBy[0].Column == 0 && !info.OrderBy[0].Desc {
		info.OrderByConsumed = true
	}
	return nil
}

func (s *seqTable) misbehaving() *seqTable {
	s.misbehave = true
	return s
}

func TestVirtualTableBestIndex(t *testing.T) {
	require := require.New(t)

	vt := newSeqTable()
	src := &SrcItem{Table: vt, Cursor: 0}

	plan, err := Begin(sql.NewEmptyContext(), &Query{
		From:   []*SrcItem{src},
		Where:  expression.NewEquals(gf(vt.Table, 0, "value"), lit(42)),
		Select: selectAll(src),
	}, nil, nil)
	require.NoError(err)
	require.True(vt.calls >= 1)

	require.Len(plan.Levels, 1)
	lvl := plan.Levels[0]
	require.NotZero(lvl.Loop.Flags & FlagVirtual)
	require.Equal(1, lvl.IdxNum)
	require.Equal("eq", lvl.IdxStr)
	require.Equal(uint64(1), lvl.OmitMask)
	require.Len(lvl.Consumed, 1)
	require.Len(lvl.Args, 1)
	require.Equal(lvl.Consumed[0], lvl.Args[0])
	require.Equal(CostFromFloat(10), lvl.Loop.Run)
}

func TestVirtualTableOrderByConsumed(t *testing.T) {
	require := require.New(t)

	vt := newSeqTable()
	src := &SrcItem{Table: vt, Cursor: 0}

	plan, err := Begin(sql.NewEmptyContext(), &Query{
		From:    []*SrcItem{src},
		Select:  selectAll(src),
		OrderBy: []OrderTerm{{Expr: gf(vt.Table, 0, "value")}},
	}, nil, nil)
	require.NoError(err)
	require.True(plan.OrderBySatisfied)
}

func TestVirtualTableJoinPhases(t *testing.T) {
	require := require.New(t)

	vt := newSeqTable()
	t1 := testTable("t1")
	s1 := &SrcItem{Table: t1, Cursor: 0}
	s2 := &SrcItem{Table: vt, Cursor: 1}

	// The constraint's right side comes from t1, so only the
	// variables-allowed phases may claim it.
	plan, err := Begin(sql.NewEmptyContext(), &Query{
		From:   []*SrcItem{s1, s2},
		Where:  expression.NewEquals(gf(vt.Table, 1, "value"), gf(t1, 0, "a")),
		Select: []sql.Expression{gf(t1, 0, "a")},
	}, nil, nil)
	require.NoError(err)
	require.True(vt.calls > 1, "expected several negotiation phases")

	require.Len(plan.Levels, 2)
	require.Equal(1, plan.Levels[1].From, "virtual table must be the inner loop")
	require.Equal(1, plan.Levels[1].IdxNum)
}

func TestVirtualTableBestIndexMalfunction(t *testing.T) {
	require := require.New(t)

	vt := newSeqTable().misbehaving()
	t1 := testTable("t1")
	s1 := &SrcItem{Table: t1, Cursor: 0}
	s2 := &SrcItem{Table: vt, Cursor: 1}

	// The value constraint is unusable in the constants-only phase, yet
	// the module claims an argument for it.
	_, err := Begin(sql.NewEmptyContext(), &Query{
		From: []*SrcItem{s1, s2},
		Where: expression.JoinAnd(
			expression.NewEquals(gf(vt.Table, 1, "value"), gf(t1, 0, "a")),
			expression.NewEquals(gf(vt.Table, 1, "step"), lit(3)),
		),
		Select: []sql.Expression{gf(t1, 0, "a")},
	}, nil, nil)
	require.Error(err)
	require.True(sql.ErrVirtualTableBestIndex.Is(err))
}
