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
	"github.com/spf13/cast"

	"github.com/dolthub/go-query-planner/sql"
	"github.com/dolthub/go-query-planner/sql/expression"
)

// Clause is an ordered sequence of terms produced by splitting an
// expression on a connective. Terms reference each other by index because
// the slice grows while synthesized terms are appended.
type Clause struct {
	info  *planInfo
	outer *Clause
	op    Operator
	terms []*Term
}

func newClause(info *planInfo, outer *Clause, op Operator) *Clause {
	return &Clause{info: info, outer: outer, op: op}
}

// split recursively breaks e apart on the clause's connective and appends
// one term per factor.
func (wc *Clause) split(e sql.Expression, joinCursor int) {
	if e == nil {
		return
	}
	switch b := e.(type) {
	case *expression.And:
		if wc.op == OpAnd {
			wc.split(b.Left, joinCursor)
			wc.split(b.Right, joinCursor)
			return
		}
	case *expression.Or:
		if wc.op == OpOr {
			wc.split(b.Left, joinCursor)
			wc.split(b.Right, joinCursor)
			return
		}
	}
	wc.add(e, 0, joinCursor)
}

// add appends a raw term and returns its index. Analysis happens
// separately so that synthesized terms can be appended while iterating.
func (wc *Clause) add(e sql.Expression, flags termFlags, joinCursor int) int {
	t := &Term{
		Expr:       e,
		LeftCursor: -1,
		LeftColumn: -1,
		parent:     -1,
		joinCursor: joinCursor,
		flags:      flags,
		wc:         wc,
	}
	if joinCursor >= 0 {
		t.flags |= termFromJoin
	}
	wc.terms = append(wc.terms, t)
	return len(wc.terms) - 1
}

// markChild records that the term at index child was synthesized from the
// term at index parent. Disabling cascades through this link.
func (wc *Clause) markChild(child, parent int) {
	wc.terms[child].parent = parent
	wc.terms[parent].nChild++
}

// analyzeAll analyzes every term present when the call starts. Terms the
// analysis itself appends are analyzed at their creation site; re-visiting
// them here would synthesize their children a second time.
func (wc *Clause) analyzeAll() {
	for i := len(wc.terms) - 1; i >= 0; i-- {
		wc.analyze(i)
	}
}

// analyze classifies one term: computes its prerequisite masks, detects the
// canonical column <op> expr shape, and synthesizes the virtual terms the
// original implies.
func (wc *Clause) analyze(idx int) {
	info := wc.info
	t := wc.terms[idx]
	e := t.Expr

	t.PrereqAll = info.maskOfExpr(e)
	if t.joinCursor >= 0 {
		// An ON-clause term of a LEFT JOIN belongs to the right table even
		// if it doesn't mention it, and must never drive an index on a
		// table to the join's left.
		right := info.masks.Mask(t.joinCursor)
		t.PrereqAll |= right
		t.extraRight = right - 1
	}

	switch e := e.(type) {
	case *expression.Equals:
		wc.analyzeComparison(idx, e.Left, e.Right, OpEq)
	case *expression.LessThan:
		wc.analyzeComparison(idx, e.Left, e.Right, OpLT)
	case *expression.LessThanOrEqual:
		wc.analyzeComparison(idx, e.Left, e.Right, OpLE)
	case *expression.GreaterThan:
		wc.analyzeComparison(idx, e.Left, e.Right, OpGT)
	case *expression.GreaterThanOrEqual:
		wc.analyzeComparison(idx, e.Left, e.Right, OpGE)
	case *expression.In:
		if col, ok := bareColumn(e.Left); ok {
			t.LeftCursor = col.Cursor()
			t.LeftColumn = col.Column()
			t.Op = OpIn
			t.PrereqRight = info.maskOfExpr(e.Right)
		}
	case *expression.IsNull:
		if col, ok := bareColumn(e.Child); ok {
			t.LeftCursor = col.Cursor()
			t.LeftColumn = col.Column()
			t.Op = OpIsNull
		}
	case *expression.Between:
		wc.analyzeBetween(idx, e)
	case *expression.Or:
		wc.analyzeOr(idx)
	case *expression.Match:
		if col, ok := bareColumn(e.Left); ok {
			t.LeftCursor = col.Cursor()
			t.LeftColumn = col.Column()
			t.Op = OpMatch
			t.PrereqRight = info.maskOfExpr(e.Right)
		}
	case *expression.Like:
		wc.analyzeLike(idx, e)
	case *expression.Not:
		wc.analyzeNotNull(idx, e)
	}
}

// analyzeComparison canonicalizes a binary comparison to column <op> expr.
// When both sides are bare columns a commuted virtual copy is added so the
// constraint can drive an index on either table; for plain equality outside
// a LEFT JOIN ON clause, with the transitive-closure knob on, both terms are
// additionally tagged as equivalences, feeding transitive propagation.
func (wc *Clause) analyzeComparison(idx int, left, right sql.Expression, op Operator) {
	info := wc.info
	t := wc.terms[idx]

	lcol, lok := bareColumn(left)
	rcol, rok := bareColumn(right)

	switch {
	case lok:
		t.LeftCursor = lcol.Cursor()
		t.LeftColumn = lcol.Column()
		t.Op = op
		t.PrereqRight = info.maskOfExpr(right)
	case rok:
		// Commute: expr <op> column is analyzed as column <mirror-op> expr.
		t.LeftCursor = rcol.Cursor()
		t.LeftColumn = rcol.Column()
		t.Op = op.mirror()
		t.PrereqRight = info.maskOfExpr(left)
	default:
		return
	}

	// A two-column comparison gets a commuted virtual copy so it can drive
	// an index on either table. The copy itself is never copied again.
	if lok && rok && t.flags&termVirtual == 0 {
		extra := Operator(0)
		if op == OpEq && t.joinCursor < 0 && info.config.TransitiveClosure {
			t.Op |= OpEquiv
			extra = OpEquiv
		}
		dup := commuted(t.Expr, op)
		n := wc.add(dup, termVirtual|termDynamic, t.joinCursor)
		wc.analyze(n)
		// Re-resolve after append.
		t = wc.terms[idx]
		wc.terms[n].Op |= extra
		wc.markChild(n, idx)
		t.flags |= termCopied
	}
}

// commuted builds the swapped form of a two-column comparison.
func commuted(e sql.Expression, op Operator) sql.Expression {
	c := e.(expression.Comparison)
	l, r := c.RightChild(), c.LeftChild()
	switch op.mirror() {
	case OpEq:
		return expression.NewEquals(l, r)
	case OpLT:
		return expression.NewLessThan(l, r)
	case OpLE:
		return expression.NewLessThanOrEqual(l, r)
	case OpGT:
		return expression.NewGreaterThan(l, r)
	default:
		return expression.NewGreaterThanOrEqual(l, r)
	}
}

// analyzeBetween rewrites a BETWEEN b AND c into the two virtual
// inequalities a>=b and a<=c, both children of the original.
func (wc *Clause) analyzeBetween(idx int, e *expression.Between) {
	ge := wc.add(expression.NewGreaterThanOrEqual(e.Val, e.Lower),
		termVirtual|termDynamic, wc.terms[idx].joinCursor)
	wc.analyze(ge)
	wc.markChild(ge, idx)

	le := wc.add(expression.NewLessThanOrEqual(e.Val, e.Upper),
		termVirtual|termDynamic, wc.terms[idx].joinCursor)
	wc.analyze(le)
	wc.markChild(le, idx)
}

// analyzeNotNull synthesizes col>NULL from col IS NOT NULL. The range form
// only helps when histogram samples can bound how much of the index it
// skips, so the rewrite is gated on the stat knob.
func (wc *Clause) analyzeNotNull(idx int, e *expression.Not) {
	if !wc.info.config.Stat3 || wc.op != OpAnd {
		return
	}
	isnull, ok := e.Child.(*expression.IsNull)
	if !ok {
		return
	}
	col, ok := bareColumn(isnull.Child)
	if !ok {
		return
	}
	n := wc.add(expression.NewGreaterThan(col, expression.NewLiteral(nil)),
		termVirtual|termDynamic|termVNull, wc.terms[idx].joinCursor)
	wc.analyze(n)
	wc.markChild(n, idx)
}

// analyzeLike turns a LIKE or GLOB against a literal prefix into the pair
// of virtual range terms col>=prefix and col<prefix⁺, where prefix⁺
// increments the last prefix byte. The derived terms become children of the
// LIKE only when the pattern is exactly prefix+'%'; otherwise the LIKE
// always remains as residue.
func (wc *Clause) analyzeLike(idx int, e *expression.Like) {
	t := wc.terms[idx]
	col, ok := bareColumn(e.Left)
	if !ok || col.Affinity() != sql.AffinityText {
		return
	}
	lit, ok := e.Right.(*expression.Literal)
	if !ok {
		return
	}
	pattern, err := cast.ToStringE(lit.Value())
	if err != nil || pattern == "" {
		return
	}

	wildAny, wildOne := byte('%'), byte('_')
	if e.Glob {
		wildAny, wildOne = '*', '?'
	}
	noCase := !e.CaseSensitive

	cnt := 0
	for cnt < len(pattern) && pattern[cnt] != wildAny && pattern[cnt] != wildOne {
		cnt++
	}
	if cnt == 0 || pattern[cnt-1] == 0xff {
		return
	}
	isComplete := cnt == len(pattern)-1 && pattern[cnt] == wildAny

	prefix := pattern[:cnt]
	c := prefix[cnt-1]
	if noCase {
		// Folding past 'A'-1 would cross the case boundary, so the range
		// cannot be made exact and the original LIKE must survive.
		if c == '@' {
			isComplete = false
		}
		c = lowerByte(c)
	}
	upper := prefix[:cnt-1] + string([]byte{c + 1})

	coll := sql.CollationBinary
	if noCase {
		coll = sql.CollationNoCase
	}
	joinCursor := t.joinCursor

	lo := wc.add(expression.NewGreaterThanOrEqual(col,
		expression.NewCollate(expression.NewLiteral(prefix), coll)),
		termVirtual|termDynamic, joinCursor)
	wc.analyze(lo)
	hi := wc.add(expression.NewLessThan(col,
		expression.NewCollate(expression.NewLiteral(upper), coll)),
		termVirtual|termDynamic, joinCursor)
	wc.analyze(hi)

	if isComplete {
		wc.markChild(lo, idx)
		wc.markChild(hi, idx)
	}
}

func lowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// bareColumn unwraps an expression down to a plain column reference,
// looking through explicit COLLATE wrappers.
func bareColumn(e sql.Expression) (*expression.GetField, bool) {
	for {
		switch x := e.(type) {
		case *expression.GetField:
			return x, true
		case *expression.Collate:
			e = x.Child
		default:
			return nil, false
		}
	}
}
