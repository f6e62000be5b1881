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

func sampledTable() *memory.Table {
	t := memory.NewTable("t", []sql.Column{
		{Name: "a", Affinity: sql.AffinityInteger, Collation: sql.CollationBinary},
		{Name: "b", Affinity: sql.AffinityInteger, Collation: sql.CollationBinary},
	}).WithRowCount(1000)
	t.AddIndex("ia", false, "a").WithSamples(
		sql.Sample{Value: 10, NEq: 10, NLt: 100},
		sql.Sample{Value: 15, NEq: 10, NLt: 150},
		sql.Sample{Value: 20, NEq: 10, NLt: 900},
	)
	return t
}

func rangeLoop(info *planInfo) *Loop {
	for _, l := range info.loops {
		if l.Flags&FlagColumnRange != 0 {
			return l
		}
	}
	return nil
}

func TestRangeEstimateFromSamples(t *testing.T) {
	require := require.New(t)

	tbl := sampledTable()
	src := &SrcItem{Table: tbl, Cursor: 0}

	info := analyzed(nil, expression.JoinAnd(
		expression.NewGreaterThan(gf(tbl, 0, "a"), lit(10)),
		expression.NewLessThan(gf(tbl, 0, "a"), lit(20)),
	), src)
	require.NoError(info.buildLoops())

	l := rangeLoop(info)
	require.NotNil(l)
	// 900-100 of 1000 rows fall inside the range per the histogram.
	require.Equal(CostOf(800), l.NOut)
}

func TestRangeEstimateDefaultFactorWithoutStats(t *testing.T) {
	require := require.New(t)

	cfg := DefaultConfig()
	cfg.Stat3 = false

	tbl := sampledTable()
	src := &SrcItem{Table: tbl, Cursor: 0}

	info := analyzed(cfg, expression.JoinAnd(
		expression.NewGreaterThan(gf(tbl, 0, "a"), lit(10)),
		expression.NewLessThan(gf(tbl, 0, "a"), lit(20)),
	), src)
	require.NoError(info.buildLoops())

	l := rangeLoop(info)
	require.NotNil(l)
	// Default: each range end divides the estimate by four.
	require.Equal(CostOf(1000)-40, l.NOut)
}

func TestSampleCompare(t *testing.T) {
	require := require.New(t)

	require.Equal(0, sampleCompare(5, 5.0))
	require.Equal(-1, sampleCompare(3, 5))
	require.Equal(1, sampleCompare("b", "a"))
	require.Equal(-1, sampleCompare(nil, 0))
	require.Equal(0, sampleCompare(nil, nil))
}

func TestSamplePosition(t *testing.T) {
	require := require.New(t)

	samples := []sql.Sample{
		{Value: 10, NLt: 100},
		{Value: 20, NLt: 900},
	}
	require.Equal(int64(100), samplePosition(samples, 5, 1000))
	require.Equal(int64(100), samplePosition(samples, 10, 1000))
	require.Equal(int64(900), samplePosition(samples, 15, 1000))
	require.Equal(int64(1000), samplePosition(samples, 25, 1000))
}
