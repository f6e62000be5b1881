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
	"github.com/dolthub/go-query-planner/sql"
)

// DistinctLevel is how much deduplication the emitter still owes after
// planning.
type DistinctLevel int

const (
	// DistinctNone: the query has no DISTINCT.
	DistinctNone DistinctLevel = iota
	// DistinctUnordered: a hash-based deduplication step is required.
	DistinctUnordered
	// DistinctOrdered: rows arrive grouped, adjacent duplicates suffice.
	DistinctOrdered
	// DistinctUnique: the rows are provably distinct already; the emitter
	// omits the deduplication step entirely.
	DistinctUnique
)

// distinctRedundant reports whether DISTINCT is a no-op: a single-table
// query with some UNIQUE index whose every column is NOT NULL and either
// appears in the projection or is pinned to a constant by WHERE.
func (info *planInfo) distinctRedundant(projection []sql.Expression) bool {
	if len(info.src) != 1 {
		return false
	}
	src := info.src[0]

	projected := make(map[int]struct{})
	for _, e := range projection {
		if col, ok := bareColumn(e); ok && col.Cursor() == src.Cursor {
			projected[col.Column()] = struct{}{}
		}
	}

	indexes := src.Table.Indexes()
	if pk := src.Table.PrimaryKey(); pk != nil {
		indexes = append([]sql.Index{pk}, indexes...)
	}
	for _, idx := range indexes {
		if !idx.Unique() {
			continue
		}
		ok := true
		for i := 0; i < idx.ColumnCount(); i++ {
			icol := idx.Column(i)
			if !src.Table.Schema()[icol.Column].NotNull {
				ok = false
				break
			}
			if _, inProj := projected[icol.Column]; inProj {
				continue
			}
			t := info.wc.findTerm(src.Cursor, icol.Column, ^Bitmask(0), OpEq, &icol,
				src.Table.Schema()[icol.Column].Affinity)
			if t == nil {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
