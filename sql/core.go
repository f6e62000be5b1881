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

import (
	"fmt"

	errors "gopkg.in/src-d/go-errors.v1"
)

// Expression is a node of the WHERE / ORDER BY expression tree the planner
// consumes. The tree is built elsewhere (the parser and binder are out of
// scope); the planner only inspects it, duplicates subtrees it synthesizes
// and hands subtrees back to the emitter.
type Expression interface {
	fmt.Stringer
	// Children returns the immediate children of this expression node.
	Children() []Expression
}

// Nullable is implemented by expressions that can report whether they may
// evaluate to NULL.
type Nullable interface {
	IsNullable() bool
}

var (
	// ErrTooManyTables is returned when a join has more tables than the
	// planner's cursor bitmask can represent.
	ErrTooManyTables = errors.NewKind("at most %d tables in a join")

	// ErrIndexedByNotFound is returned when an INDEXED BY clause names an
	// index that does not exist on the table.
	ErrIndexedByNotFound = errors.NewKind("no such index: %s")

	// ErrNoQuerySolution is returned when an INDEXED BY constraint forbids
	// the only usable access path.
	ErrNoQuerySolution = errors.NewKind("no query solution")

	// ErrVirtualTableBestIndex is returned when a virtual table's BestIndex
	// method returns a malformed plan.
	ErrVirtualTableBestIndex = errors.NewKind("%s.BestIndex malfunction")
)

// MaxJoinTables is the hard upper limit on the number of FROM-list entries,
// a consequence of the fixed 64-bit cursor bitmask.
const MaxJoinTables = 64
