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

package memory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/go-query-planner/sql"
)

func TestTableName(t *testing.T) {
	require := require.New(t)
	table := NewTable("test", []sql.Column{{Name: "col1", Affinity: sql.AffinityText}})
	require.Equal("test", table.Name())
}

func TestTableIndexes(t *testing.T) {
	require := require.New(t)

	table := NewTable("t", []sql.Column{
		{Name: "a", Affinity: sql.AffinityInteger},
		{Name: "b", Affinity: sql.AffinityInteger},
	}).WithRowCount(1000)
	idx := table.AddIndex("iab", false, "a", "b")

	require.Len(table.Indexes(), 1)
	require.Equal("iab", idx.ID())
	require.Equal("t", idx.Table())
	require.Equal(2, idx.ColumnCount())
	require.Equal(0, idx.Column(0).Column)
	require.Equal(1, idx.Column(1).Column)
	require.False(idx.Unique())
}

func TestIndexDefaultRowEstimates(t *testing.T) {
	require := require.New(t)

	table := NewTable("t", []sql.Column{
		{Name: "a", Affinity: sql.AffinityInteger},
		{Name: "b", Affinity: sql.AffinityInteger},
	}).WithRowCount(1000)

	idx := table.AddIndex("iab", false, "a", "b")
	require.Equal(int64(1000), idx.RowEstimate(0))
	require.Equal(int64(100), idx.RowEstimate(1))
	require.Equal(int64(10), idx.RowEstimate(2))
	// Beyond the key the last estimate holds.
	require.Equal(int64(10), idx.RowEstimate(5))

	uniq := table.AddIndex("ua", true, "a")
	require.Equal(int64(1), uniq.RowEstimate(1))
}

func TestTablePrimaryKey(t *testing.T) {
	require := require.New(t)

	table := NewTable("t", []sql.Column{
		{Name: "id", Affinity: sql.AffinityInteger, NotNull: true},
		{Name: "v", Affinity: sql.AffinityText},
	}).WithRowCount(500)
	require.Nil(table.PrimaryKey())

	table.SetPrimaryKey("id")
	pk := table.PrimaryKey()
	require.NotNil(pk)
	require.True(pk.Unique())
	require.Equal(1, pk.ColumnCount())
	require.Equal(int64(1), pk.RowEstimate(1))
}

func TestIndexSamples(t *testing.T) {
	require := require.New(t)

	table := NewTable("t", []sql.Column{{Name: "a", Affinity: sql.AffinityInteger}}).
		WithRowCount(100)
	idx := table.AddIndex("ia", false, "a").WithSamples(
		sql.Sample{Value: 10, NEq: 5, NLt: 0},
		sql.Sample{Value: 20, NEq: 5, NLt: 50},
	)

	var si sql.StatIndex = idx
	require.Len(si.Samples(), 2)
}
