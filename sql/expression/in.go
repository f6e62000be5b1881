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
	"strings"

	"github.com/dolthub/go-query-planner/sql"
)

// Tuple is an ordered list of expressions, the right-hand side of an IN
// against a value list.
type Tuple []sql.Expression

var _ sql.Expression = (Tuple)(nil)

// NewTuple creates a new Tuple expression.
func NewTuple(exprs ...sql.Expression) Tuple { return Tuple(exprs) }

// Children implements the Expression interface.
func (t Tuple) Children() []sql.Expression { return []sql.Expression(t) }

func (t Tuple) String() string {
	var parts = make([]string, len(t))
	for i, e := range t {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Subquery is an opaque stand-in for a SELECT used as the right-hand side
// of an IN. The planner never looks inside it; it only costs membership
// probes against it.
type Subquery struct {
	name string
}

var _ sql.Expression = (*Subquery)(nil)

// NewSubquery returns a placeholder for the named subquery.
func NewSubquery(name string) *Subquery { return &Subquery{name} }

// Children implements the Expression interface.
func (*Subquery) Children() []sql.Expression { return nil }

func (s *Subquery) String() string { return fmt.Sprintf("(SELECT %s)", s.name) }

// In is the IN membership test. The right-hand side is either a Tuple of
// values or a Subquery.
type In struct {
	BinaryExpression
}

var _ Comparison = (*In)(nil)

// NewIn creates an IN expression.
func NewIn(left, right sql.Expression) *In {
	return &In{BinaryExpression{left, right}}
}

func (in *In) LeftChild() sql.Expression  { return in.Left }
func (in *In) RightChild() sql.Expression { return in.Right }

func (in *In) String() string { return fmt.Sprintf("%s IN %s", in.Left, in.Right) }
