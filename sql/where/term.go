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

// Operator encodes the shape of an analyzed term as a one-hot bit, so that
// scans can match several shapes with a single mask test.
type Operator uint16

const (
	OpIn Operator = 1 << iota
	OpEq
	OpLT
	OpLE
	OpGT
	OpGE
	OpMatch
	OpIsNull
	OpOr
	OpAnd
	// OpEquiv marks an equality whose two sides are both columns, usable
	// for transitive constraint propagation.
	OpEquiv
	// OpNoop marks a term that has been subsumed by a synthesized
	// replacement (an OR rewritten to IN) and must be ignored.
	OpNoop
)

// opSingle matches every operator that constrains a single column.
const opSingle = OpIn | OpEq | OpLT | OpLE | OpGT | OpGE | OpIsNull

// opAllEq matches the operators usable as index equality constraints.
const opAllEq = OpEq | OpIn | OpIsNull

// mirror returns the operator with its operands swapped: a<b becomes b>a.
func (op Operator) mirror() Operator {
	switch op {
	case OpLT:
		return OpGT
	case OpLE:
		return OpGE
	case OpGT:
		return OpLT
	case OpGE:
		return OpLE
	}
	return op
}

type termFlags uint16

const (
	// termDynamic marks an expression subtree synthesized, and therefore
	// owned, by the planner.
	termDynamic termFlags = 1 << iota
	// termVirtual marks a term added by analysis rather than present in the
	// original WHERE clause; the emitter never evaluates it directly.
	termVirtual
	// termCoded marks a term consumed by the chosen plan, so the emitter
	// will not re-test it.
	termCoded
	// termCopied marks a term that has a commuted virtual copy.
	termCopied
	// termVNull marks a synthesized col>NULL term that suppresses the
	// implicit null filter of the range scan it drives.
	termVNull
	// termFromJoin marks a term originating in a LEFT JOIN ON clause.
	termFromJoin
)

// Term is one AND-factor of the WHERE clause. When the term has the shape
// column <op> expr, LeftCursor and LeftColumn name the column and Op encodes
// the operator; otherwise Op is zero and the term is post-filter residue.
type Term struct {
	// Expr is the subexpression this term represents.
	Expr sql.Expression
	// LeftCursor and LeftColumn identify the constrained column, or
	// LeftCursor is -1.
	LeftCursor int
	LeftColumn int
	// Op is the operator class, possibly a disjunction of bits.
	Op Operator
	// PrereqRight is the set of cursors used by the right-hand side.
	PrereqRight Bitmask
	// PrereqAll is the set of cursors used anywhere in the term. Always a
	// superset of PrereqRight.
	PrereqAll Bitmask
	// extraRight widens PrereqRight during loop building so a LEFT JOIN
	// ON-term cannot drive an index on a table to the join's left.
	extraRight Bitmask

	flags termFlags
	// joinCursor is the right table of the LEFT JOIN whose ON clause this
	// term came from, or -1.
	joinCursor int
	// parent is the index in the owning clause of the term whose analysis
	// synthesized this one, or -1. Held as an index, never a pointer: the
	// clause array grows during analysis.
	parent int
	// nChild counts live synthesized children; when it drops to zero the
	// term is disabled along with them.
	nChild int

	// or holds the decomposed OR sub-clause when Op includes OpOr.
	or *orInfo
	// and holds the decomposed AND sub-clause of an OR branch.
	and *andInfo

	wc *Clause
}

type orInfo struct {
	wc *Clause
	// indexable is the set of tables every OR branch can constrain through
	// some index.
	indexable Bitmask
}

type andInfo struct {
	wc *Clause
}

// isResidue reports whether no index path can consume the term, so it must
// be re-tested inside the emitted loop.
func (t *Term) isResidue() bool { return t.Op == 0 || t.Op == OpNoop }

// disabled reports whether the term has been consumed (directly or through
// its synthesized children) by the chosen plan.
func (t *Term) disabled() bool { return t.flags&termCoded != 0 }

// disable marks a term consumed. Disabling the last live child of a parent
// cascades to the parent, so a BETWEEN whose two derived inequalities are
// both consumed is never re-tested.
func (wc *Clause) disable(t *Term) {
	for t != nil && t.flags&termCoded == 0 {
		t.flags |= termCoded
		if t.parent < 0 {
			return
		}
		p := t.wc.terms[t.parent]
		p.nChild--
		if p.nChild != 0 {
			return
		}
		t = p
	}
}
