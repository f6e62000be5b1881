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

package sql

// Column is the schema of one table column as the planner sees it.
type Column struct {
	// Name of the column.
	Name string
	// Affinity of the column type.
	Affinity Affinity
	// Collation is the default collating sequence for text comparisons
	// against this column.
	Collation Collation
	// NotNull is true if the column carries a NOT NULL constraint.
	NotNull bool
	// PrimaryKey is true if the column is part of the table's primary key.
	PrimaryKey bool
}

// Table is the catalog's view of one table. The planner never reads rows;
// it only consumes schema and statistics.
type Table interface {
	// Name returns the table name.
	Name() string
	// Schema returns the columns of the table in declaration order.
	Schema() []Column
	// NumRows returns the estimated number of rows in the table.
	NumRows() int64
	// PrimaryKey returns the index representing the table's primary key, or
	// nil if the table is accessed by implicit rowid only.
	PrimaryKey() Index
	// Indexes returns the secondary indexes of the table.
	Indexes() []Index
}

// IndexColumn is one column of an index.
type IndexColumn struct {
	// Column is the ordinal of the table column this index column stores.
	Column int
	// Collation used to order this column within the index.
	Collation Collation
	// Desc is true if this column is stored in descending order.
	Desc bool
}

// Index is the catalog's view of one index.
type Index interface {
	// ID returns the name of the index, unique within its table.
	ID() string
	// Table returns the name of the table the index belongs to.
	Table() string
	// ColumnCount returns the number of columns in the index key.
	ColumnCount() int
	// Column returns the i-th key column.
	Column(i int) IndexColumn
	// Unique reports whether the full key is unique.
	Unique() bool
	// RowEstimate returns the estimated number of rows matched by an
	// equality constraint on the first nEq columns. RowEstimate(0) is the
	// total number of index entries.
	RowEstimate(nEq int) int64
}

// Sample is one histogram sample of an index's left-most column.
type Sample struct {
	// Value of the left-most indexed column at this sample.
	Value interface{}
	// NEq is the number of rows equal to Value.
	NEq int64
	// NLt is the number of rows with key strictly less than Value.
	NLt int64
	// NDLt is the number of distinct keys less than Value.
	NDLt int64
}

// StatIndex is an Index with collected histogram samples. The planner uses
// the samples, when the histogram knob is enabled, to refine range row
// estimates on the index's left-most column; equality estimates do not read
// the samples. Absence of samples merely falls back to default factors.
type StatIndex interface {
	Index
	// Samples returns the histogram samples in ascending key order.
	Samples() []Sample
}
