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

// Literal is a constant value.
type Literal struct {
	value    interface{}
	affinity sql.Affinity
}

var _ sql.Expression = (*Literal)(nil)

// NewLiteral creates a new literal expression. The affinity is inferred
// from the Go type of the value.
func NewLiteral(value interface{}) *Literal {
	aff := sql.AffinityNone
	switch value.(type) {
	case string:
		aff = sql.AffinityText
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		aff = sql.AffinityInteger
	case float32, float64:
		aff = sql.AffinityReal
	case []byte:
		aff = sql.AffinityBlob
	}
	return &Literal{value: value, affinity: aff}
}

// Value returns the literal value.
func (l *Literal) Value() interface{} { return l.value }

// Affinity returns the affinity of the literal value.
func (l *Literal) Affinity() sql.Affinity { return l.affinity }

// IsNullable implements the sql.Nullable interface.
func (l *Literal) IsNullable() bool { return l.value == nil }

// Children implements the Expression interface.
func (*Literal) Children() []sql.Expression { return nil }

func (l *Literal) String() string {
	if l.value == nil {
		return "NULL"
	}
	if s, ok := l.value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(l.value)
}

// Collate attaches an explicit collating sequence to an expression, the way
// a COLLATE operator does. It wins over column default collations when the
// collation of a comparison is resolved.
type Collate struct {
	UnaryExpression
	Collation sql.Collation
}

var _ sql.Expression = (*Collate)(nil)

// NewCollate wraps an expression with an explicit collation.
func NewCollate(child sql.Expression, collation sql.Collation) *Collate {
	return &Collate{UnaryExpression{child}, collation}
}

func (c *Collate) String() string {
	return fmt.Sprintf("%s COLLATE %s", c.Child, c.Collation)
}
