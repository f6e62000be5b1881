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

import "strings"

// Collation identifies a collating sequence by name. Collation names are
// compared case-insensitively.
type Collation string

const (
	// CollationBinary compares byte by byte.
	CollationBinary = Collation("BINARY")
	// CollationNoCase folds ASCII upper case to lower case before comparing.
	CollationNoCase = Collation("NOCASE")
	// CollationRTrim ignores trailing spaces.
	CollationRTrim = Collation("RTRIM")
)

// Equals reports whether two collation names identify the same collating
// sequence.
func (c Collation) Equals(o Collation) bool {
	return strings.EqualFold(string(c), string(o))
}

// Affinity is the type affinity of a column or expression, used to decide
// whether a term can drive an index on a column.
type Affinity byte

const (
	AffinityNone Affinity = iota
	AffinityText
	AffinityNumeric
	AffinityInteger
	AffinityReal
	AffinityBlob
)

// Compatible reports whether a comparison against a column of affinity idx
// can use an index on that column when the other operand has affinity a.
// Text columns require text comparisons; numeric-family affinities are
// interchangeable.
func (a Affinity) Compatible(idx Affinity) bool {
	if a == AffinityNone || idx == AffinityNone {
		return true
	}
	if idx == AffinityText || idx == AffinityBlob {
		return a == idx || a == AffinityNone
	}
	return a != AffinityText && a != AffinityBlob
}
