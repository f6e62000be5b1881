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

// Package memory provides an in-memory catalog implementation used for
// examples and tests: tables, indexes and statistics with no storage
// behind them.
package memory

import (
	"github.com/dolthub/go-query-planner/sql"
)

// Table is an in-memory table description: schema, a row-count estimate,
// and the indexes defined on it.
type Table struct {
	name    string
	schema  []sql.Column
	numRows int64
	pk      *Index
	indexes []sql.Index
}

var _ sql.Table = (*Table)(nil)

// NewTable creates a new Table with the given name and schema.
func NewTable(name string, schema []sql.Column) *Table {
	return &Table{name: name, schema: schema, numRows: 1000000}
}

// WithRowCount sets the estimated row count and returns the table.
func (t *Table) WithRowCount(n int64) *Table {
	t.numRows = n
	for _, idx := range t.indexes {
		idx.(*Index).deriveRowEstimates(n)
	}
	if t.pk != nil {
		t.pk.deriveRowEstimates(n)
	}
	return t
}

// Name implements the sql.Table interface.
func (t *Table) Name() string { return t.name }

// Schema implements the sql.Table interface.
func (t *Table) Schema() []sql.Column { return t.schema }

// NumRows implements the sql.Table interface.
func (t *Table) NumRows() int64 { return t.numRows }

// PrimaryKey implements the sql.Table interface.
func (t *Table) PrimaryKey() sql.Index {
	if t.pk == nil {
		return nil
	}
	return t.pk
}

// Indexes implements the sql.Table interface.
func (t *Table) Indexes() []sql.Index { return t.indexes }

// SetPrimaryKey declares a unique primary-key index over the named columns
// and returns the table.
func (t *Table) SetPrimaryKey(cols ...string) *Table {
	t.pk = t.newIndex(t.name+"_pk", true, cols)
	return t
}

// AddIndex declares a secondary index over the named columns. Column
// collation and sort order default to the column's declaration; use the
// returned Index to adjust them.
func (t *Table) AddIndex(id string, unique bool, cols ...string) *Index {
	idx := t.newIndex(id, unique, cols)
	t.indexes = append(t.indexes, idx)
	return idx
}

func (t *Table) newIndex(id string, unique bool, cols []string) *Index {
	idx := &Index{table: t.name, id: id, unique: unique}
	for _, name := range cols {
		for i, c := range t.schema {
			if c.Name == name {
				idx.columns = append(idx.columns, sql.IndexColumn{
					Column:    i,
					Collation: c.Collation,
				})
				break
			}
		}
	}
	idx.deriveRowEstimates(t.numRows)
	return idx
}

// Column returns the ordinal of the named column, or -1.
func (t *Table) Column(name string) int {
	for i, c := range t.schema {
		if c.Name == name {
			return i
		}
	}
	return -1
}
