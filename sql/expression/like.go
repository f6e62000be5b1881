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

// Like matches its left side against a pattern. LIKE patterns use % and _
// wildcards and compare case-insensitively by default; GLOB patterns use *
// and ? and compare case-sensitively.
type Like struct {
	BinaryExpression
	// Glob marks GLOB semantics instead of LIKE.
	Glob bool
	// CaseSensitive disables the default ASCII case folding of LIKE. It is
	// implied for GLOB.
	CaseSensitive bool
}

var _ sql.Expression = (*Like)(nil)

// NewLike creates a case-insensitive LIKE expression.
func NewLike(left, right sql.Expression) *Like {
	return &Like{BinaryExpression: BinaryExpression{left, right}}
}

// NewGlob creates a GLOB expression.
func NewGlob(left, right sql.Expression) *Like {
	return &Like{BinaryExpression: BinaryExpression{left, right}, Glob: true, CaseSensitive: true}
}

func (l *Like) String() string {
	op := "LIKE"
	if l.Glob {
		op = "GLOB"
	}
	return fmt.Sprintf("%s %s %s", l.Left, op, l.Right)
}
