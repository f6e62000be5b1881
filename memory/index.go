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
	"github.com/dolthub/go-query-planner/sql"
)

// Index is an in-memory index description with default or explicit row
// estimates and optional histogram samples.
type Index struct {
	table   string
	id      string
	unique  bool
	columns []sql.IndexColumn
	rowEst  []int64
	samples []sql.Sample
}

var (
	_ sql.Index     = (*Index)(nil)
	_ sql.StatIndex = (*Index)(nil)
)

// ID implements the sql.Index interface.
func (i *Index) ID() string { return i.id }

// Table implements the sql.Index interface.
func (i *Index) Table() string { return i.table }

// ColumnCount implements the sql.Index interface.
func (i *Index) ColumnCount() int { return len(i.columns) }

// Column implements the sql.Index interface.
func (i *Index) Column(n int) sql.IndexColumn { return i.columns[n] }

// Unique implements the sql.Index interface.
func (i *Index) Unique() bool { return i.unique }

// RowEstimate implements the sql.Index interface.
func (i *Index) RowEstimate(nEq int) int64 {
	if nEq >= len(i.rowEst) {
		nEq = len(i.rowEst) - 1
	}
	return i.rowEst[nEq]
}

// Samples implements the sql.StatIndex interface.
func (i *Index) Samples() []sql.Sample { return i.samples }

// WithDesc marks the n-th index column as descending and returns the index.
func (i *Index) WithDesc(n int) *Index {
	i.columns[n].Desc = true
	return i
}

// WithCollation overrides the collation of the n-th index column.
func (i *Index) WithCollation(n int, c sql.Collation) *Index {
	i.columns[n].Collation = c
	return i
}

// WithRowEstimates sets explicit estimates: est[k] is the number of rows
// matched by equality on the first k columns, est[0] the total count.
func (i *Index) WithRowEstimates(est ...int64) *Index {
	i.rowEst = est
	return i
}

// WithSamples attaches histogram samples, making the index a
// sql.StatIndex with data.
func (i *Index) WithSamples(samples ...sql.Sample) *Index {
	i.samples = samples
	return i
}

// deriveRowEstimates fills in the default statistics: each extra equality
// column divides the match count by ten, and a unique key pins the full
// prefix to a single row.
func (i *Index) deriveRowEstimates(numRows int64) {
	i.rowEst = make([]int64, len(i.columns)+1)
	n := numRows
	for k := range i.rowEst {
		if n < 1 {
			n = 1
		}
		i.rowEst[k] = n
		n /= 10
	}
	if i.unique {
		i.rowEst[len(i.columns)] = 1
	}
}
