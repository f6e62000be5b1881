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
	"github.com/dolthub/go-query-planner/memory"
	"github.com/dolthub/go-query-planner/sql"
	"github.com/dolthub/go-query-planner/sql/expression"
)

// gf builds a column reference carrying the column's catalog properties.
func gf(t *memory.Table, cursor int, name string) *expression.GetField {
	ord := t.Column(name)
	c := t.Schema()[ord]
	return expression.NewGetFieldWithProps(cursor, ord, name, c.Affinity, c.Collation, !c.NotNull)
}

func lit(v interface{}) *expression.Literal { return expression.NewLiteral(v) }

// selectAll projects every column of every FROM entry, the planner-side
// equivalent of SELECT *.
func selectAll(items ...*SrcItem) []sql.Expression {
	var out []sql.Expression
	for _, it := range items {
		for ord, c := range it.Table.Schema() {
			out = append(out, expression.NewGetFieldWithProps(
				it.Cursor, ord, c.Name, c.Affinity, c.Collation, !c.NotNull))
		}
	}
	return out
}

// analyzed builds and analyzes a WHERE clause over the given FROM list,
// returning the planning state for white-box assertions.
func analyzed(cfg *Config, wherExpr sql.Expression, items ...*SrcItem) *planInfo {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	info := &planInfo{
		ctx:     sql.NewEmptyContext(),
		config:  cfg,
		masks:   NewMaskSet(),
		src:     items,
		colUsed: make(map[int]uint64),
	}
	for _, it := range items {
		info.masks.Assign(it.Cursor)
	}
	info.wc = newClause(info, nil, OpAnd)
	info.wc.split(wherExpr, -1)
	for _, it := range items {
		if it.On == nil {
			continue
		}
		jc := -1
		if it.LeftJoin {
			jc = it.Cursor
		}
		info.wc.split(it.On, jc)
	}
	info.collectColUsage(&Query{From: items, Where: wherExpr, Select: selectAll(items...)})
	info.wc.analyzeAll()
	return info
}

// termsWithOp returns the analyzed terms whose operator includes op.
func termsWithOp(info *planInfo, op Operator) []*Term {
	var out []*Term
	for _, t := range info.wc.terms {
		if t.Op&op != 0 {
			out = append(out, t)
		}
	}
	return out
}

// loopsForTable filters candidate loops by FROM position.
func loopsForTable(info *planInfo, pos int) []*Loop {
	var out []*Loop
	for _, l := range info.loops {
		if l.TabPos == pos {
			out = append(out, l)
		}
	}
	return out
}
