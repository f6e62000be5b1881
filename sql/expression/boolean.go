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

// And is the AND connective.
type And struct {
	BinaryExpression
}

// Or is the OR connective.
type Or struct {
	BinaryExpression
}

// Not negates its child.
type Not struct {
	UnaryExpression
}

var (
	_ sql.Expression = (*And)(nil)
	_ sql.Expression = (*Or)(nil)
	_ sql.Expression = (*Not)(nil)
)

// NewAnd returns a new AND expression.
func NewAnd(left, right sql.Expression) *And {
	return &And{BinaryExpression{left, right}}
}

// NewOr returns a new OR expression.
func NewOr(left, right sql.Expression) *Or {
	return &Or{BinaryExpression{left, right}}
}

// NewNot returns a new NOT expression.
func NewNot(child sql.Expression) *Not {
	return &Not{UnaryExpression{child}}
}

// JoinAnd folds the given expressions into a left-deep chain of ANDs. It
// returns nil when exprs is empty.
func JoinAnd(exprs ...sql.Expression) sql.Expression {
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	default:
		result := NewAnd(exprs[0], exprs[1])
		for _, e := range exprs[2:] {
			result = NewAnd(result, e)
		}
		return result
	}
}

func (a *And) String() string { return fmt.Sprintf("(%s AND %s)", a.Left, a.Right) }
func (o *Or) String() string  { return fmt.Sprintf("(%s OR %s)", o.Left, o.Right) }
func (n *Not) String() string { return fmt.Sprintf("NOT %s", n.Child) }

// IsNull checks whether its child evaluates to NULL.
type IsNull struct {
	UnaryExpression
}

var _ sql.Expression = (*IsNull)(nil)

// NewIsNull returns a new IS NULL expression.
func NewIsNull(child sql.Expression) *IsNull {
	return &IsNull{UnaryExpression{child}}
}

func (i *IsNull) String() string { return fmt.Sprintf("%s IS NULL", i.Child) }
