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

package expression

import (
	"fmt"

	"github.com/dolthub/go-query-planner/sql"
)

// GetField is a reference to one column of one cursor in the FROM list.
type GetField struct {
	cursor    int
	column    int
	name      string
	affinity  sql.Affinity
	collation sql.Collation
	nullable  bool
}

var _ sql.Expression = (*GetField)(nil)

// NewGetField creates a column reference for the given cursor and column
// ordinal.
func NewGetField(cursor, column int, name string) *GetField {
	return &GetField{
		cursor:    cursor,
		column:    column,
		name:      name,
		affinity:  sql.AffinityNone,
		collation: sql.CollationBinary,
		nullable:  true,
	}
}

// NewGetFieldWithProps creates a column reference carrying the column's
// affinity, collation and nullability from the catalog.
func NewGetFieldWithProps(cursor, column int, name string, aff sql.Affinity, coll sql.Collation, nullable bool) *GetField {
	return &GetField{cursor, column, name, aff, coll, nullable}
}

// Cursor returns the cursor this field references.
func (gf *GetField) Cursor() int { return gf.cursor }

// Column returns the column ordinal this field references.
func (gf *GetField) Column() int { return gf.column }

// Name returns the column name.
func (gf *GetField) Name() string { return gf.name }

// Affinity returns the column's type affinity.
func (gf *GetField) Affinity() sql.Affinity { return gf.affinity }

// Collation returns the column's default collation.
func (gf *GetField) Collation() sql.Collation { return gf.collation }

// IsNullable implements the sql.Nullable interface.
func (gf *GetField) IsNullable() bool { return gf.nullable }

// Children implements the Expression interface.
func (*GetField) Children() []sql.Expression { return nil }

func (gf *GetField) String() string {
	return fmt.Sprintf("t%d.%s", gf.cursor, gf.name)
}
