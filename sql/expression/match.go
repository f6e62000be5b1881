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

// Match applies a module-defined pattern match to a column. Only virtual
// tables can make use of it; against ordinary tables it is always residue.
type Match struct {
	BinaryExpression
}

var _ sql.Expression = (*Match)(nil)

// NewMatch creates a MATCH expression over a column and a pattern.
func NewMatch(left, right sql.Expression) *Match {
	return &Match{BinaryExpression{left, right}}
}

func (m *Match) String() string { return fmt.Sprintf("%s MATCH %s", m.Left, m.Right) }
