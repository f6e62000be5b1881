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

package sql

// ConstraintOp is the operator of one virtual-table constraint.
type ConstraintOp byte

const (
	ConstraintEQ ConstraintOp = iota + 1
	ConstraintGT
	ConstraintLE
	ConstraintLT
	ConstraintGE
	ConstraintMatch
)

// IndexConstraint is one WHERE-clause constraint offered to a virtual
// table's BestIndex method.
type IndexConstraint struct {
	// Column constrained, in table schema order.
	Column int
	// Op of the constraint.
	Op ConstraintOp
	// Usable is false when the right-hand side refers to tables that will
	// not yet be positioned when this table is scanned.
	Usable bool
}

// IndexOrderBy is one ORDER BY term offered to BestIndex.
type IndexOrderBy struct {
	Column int
	Desc   bool
}

// ConstraintUsage is BestIndex's answer for one constraint.
type ConstraintUsage struct {
	// ArgvIndex, when >0, requests the constraint's right-hand side as the
	// ArgvIndex-th filter argument.
	ArgvIndex int
	// Omit, when true, promises the module checks the constraint itself so
	// the emitter may skip the byte-code re-test.
	Omit bool
}

// IndexInfo is the exchange structure between the planner and a virtual
// table's BestIndex method.
type IndexInfo struct {
	// Inputs.
	Constraints []IndexConstraint
	OrderBy     []IndexOrderBy

	// Outputs.
	Usage           []ConstraintUsage
	IdxNum          int
	IdxStr          string
	OrderByConsumed bool
	EstimatedCost   float64
}

// VirtualTable is a table whose scan and seek semantics are provided by an
// external module. The planner negotiates access paths through BestIndex.
type VirtualTable interface {
	Table
	// BestIndex fills in the output half of info for the given inputs.
	BestIndex(ctx *Context, info *IndexInfo) error
}
