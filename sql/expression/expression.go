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
	"github.com/dolthub/go-query-planner/sql"
)

// UnaryExpression is an expression that has only one child.
type UnaryExpression struct {
	Child sql.Expression
}

// Children implements the Expression interface.
func (p *UnaryExpression) Children() []sql.Expression {
	return []sql.Expression{p.Child}
}

// BinaryExpression is an expression that has two children.
type BinaryExpression struct {
	Left  sql.Expression
	Right sql.Expression
}

// Children implements the Expression interface.
func (p *BinaryExpression) Children() []sql.Expression {
	return []sql.Expression{p.Left, p.Right}
}

// Inspect traverses the expression in depth-first order: it starts by calling
// f(expr); expr must not be nil. If f returns true, Inspect invokes f
// recursively for each of the children of expr, followed by a call of
// f(nil).
func Inspect(expr sql.Expression, f func(sql.Expression) bool) {
	if f(expr) {
		for _, child := range expr.Children() {
			Inspect(child, f)
		}
		f(nil)
	}
}

// IsConstant reports whether the expression references no columns, so its
// value is fixed for the duration of a scan.
func IsConstant(e sql.Expression) bool {
	constant := true
	Inspect(e, func(e sql.Expression) bool {
		if _, ok := e.(*GetField); ok {
			constant = false
			return false
		}
		return true
	})
	return constant
}

// ReferencedCursors returns the set of cursors referenced anywhere in the
// expression, in first-appearance order.
func ReferencedCursors(e sql.Expression) []int {
	var cursors []int
	seen := make(map[int]struct{})
	Inspect(e, func(e sql.Expression) bool {
		if gf, ok := e.(*GetField); ok {
			if _, ok := seen[gf.Cursor()]; !ok {
				seen[gf.Cursor()] = struct{}{}
				cursors = append(cursors, gf.Cursor())
			}
		}
		return true
	})
	return cursors
}

// AffinityOf returns the type affinity of an expression. Column references
// carry their column's affinity, literals their value's, and everything else
// has no affinity.
func AffinityOf(e sql.Expression) sql.Affinity {
	switch e := e.(type) {
	case *GetField:
		return e.Affinity()
	case *Literal:
		return e.Affinity()
	case *Collate:
		return AffinityOf(e.Child)
	}
	return sql.AffinityNone
}

// CollationOf returns the collating sequence an expression contributes to a
// comparison, or "" if it contributes none. An explicit COLLATE wrapper
// always wins over a column's default collation.
func CollationOf(e sql.Expression) sql.Collation {
	switch e := e.(type) {
	case *Collate:
		return e.Collation
	case *GetField:
		return e.Collation()
	}
	return ""
}

// ComparisonCollation resolves the collating sequence used to compare left
// against right: an explicit COLLATE on either side wins (left first), then
// the left column's default, then the right's, then BINARY.
func ComparisonCollation(left, right sql.Expression) sql.Collation {
	if c, ok := left.(*Collate); ok {
		return c.Collation
	}
	if c, ok := right.(*Collate); ok {
		return c.Collation
	}
	if c := CollationOf(left); c != "" {
		return c
	}
	if c := CollationOf(right); c != "" {
		return c
	}
	return sql.CollationBinary
}
