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

// Comparison is implemented by all binary comparison expressions.
type Comparison interface {
	sql.Expression
	LeftChild() sql.Expression
	RightChild() sql.Expression
}

// Equals is the = comparison.
type Equals struct {
	BinaryExpression
}

// LessThan is the < comparison.
type LessThan struct {
	BinaryExpression
}

// LessThanOrEqual is the <= comparison.
type LessThanOrEqual struct {
	BinaryExpression
}

// GreaterThan is the > comparison.
type GreaterThan struct {
	BinaryExpression
}

// GreaterThanOrEqual is the >= comparison.
type GreaterThanOrEqual struct {
	BinaryExpression
}

var (
	_ Comparison = (*Equals)(nil)
	_ Comparison = (*LessThan)(nil)
	_ Comparison = (*LessThanOrEqual)(nil)
	_ Comparison = (*GreaterThan)(nil)
	_ Comparison = (*GreaterThanOrEqual)(nil)
)

// NewEquals returns a new = expression.
func NewEquals(left, right sql.Expression) *Equals {
	return &Equals{BinaryExpression{left, right}}
}

// NewLessThan returns a new < expression.
func NewLessThan(left, right sql.Expression) *LessThan {
	return &LessThan{BinaryExpression{left, right}}
}

// NewLessThanOrEqual returns a new <= expression.
func NewLessThanOrEqual(left, right sql.Expression) *LessThanOrEqual {
	return &LessThanOrEqual{BinaryExpression{left, right}}
}

// NewGreaterThan returns a new > expression.
func NewGreaterThan(left, right sql.Expression) *GreaterThan {
	return &GreaterThan{BinaryExpression{left, right}}
}

// NewGreaterThanOrEqual returns a new >= expression.
func NewGreaterThanOrEqual(left, right sql.Expression) *GreaterThanOrEqual {
	return &GreaterThanOrEqual{BinaryExpression{left, right}}
}

func (e *Equals) LeftChild() sql.Expression  { return e.Left }
func (e *Equals) RightChild() sql.Expression { return e.Right }
func (e *Equals) String() string             { return fmt.Sprintf("%s = %s", e.Left, e.Right) }

func (e *LessThan) LeftChild() sql.Expression  { return e.Left }
func (e *LessThan) RightChild() sql.Expression { return e.Right }
func (e *LessThan) String() string             { return fmt.Sprintf("%s < %s", e.Left, e.Right) }

func (e *LessThanOrEqual) LeftChild() sql.Expression  { return e.Left }
func (e *LessThanOrEqual) RightChild() sql.Expression { return e.Right }
func (e *LessThanOrEqual) String() string             { return fmt.Sprintf("%s <= %s", e.Left, e.Right) }

func (e *GreaterThan) LeftChild() sql.Expression  { return e.Left }
func (e *GreaterThan) RightChild() sql.Expression { return e.Right }
func (e *GreaterThan) String() string             { return fmt.Sprintf("%s > %s", e.Left, e.Right) }

func (e *GreaterThanOrEqual) LeftChild() sql.Expression  { return e.Left }
func (e *GreaterThanOrEqual) RightChild() sql.Expression { return e.Right }
func (e *GreaterThanOrEqual) String() string {
	return fmt.Sprintf("%s >= %s", e.Left, e.Right)
}
