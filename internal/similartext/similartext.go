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

// Package similartext implements a simple string distance search used to
// enrich "not found" errors with a "maybe you mean" suggestion.
package similartext

import (
	"fmt"
	"reflect"
	"strings"
)

// DistanceLimit is the maximum Levenshtein distance a name may be from the
// input and still be suggested.
const DistanceLimit = 3

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// distance is the Levenshtein distance between two strings.
func distance(s1, s2 []rune) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	column := make([]int, len(s1)+1)
	for y := 1; y <= len(s1); y++ {
		column[y] = y
	}
	for x := 1; x <= len(s2); x++ {
		column[0] = x
		lastKey := x - 1
		for y := 1; y <= len(s1); y++ {
			oldKey := column[y]
			var incr int
			if s1[y-1] != s2[x-1] {
				incr = 1
			}
			column[y] = min(min(column[y]+1, column[y-1]+1), lastKey+incr)
			lastKey = oldKey
		}
	}
	return column[len(s1)]
}

// Find returns a string with the names most similar to src, formatted for
// appending to an error message, or an empty string when nothing is close
// enough.
func Find(names []string, src string) string {
	if len(src) == 0 {
		return ""
	}

	minDist := -1
	var matches []string
	for _, n := range names {
		dist := distance([]rune(n), []rune(src))
		if minDist == -1 || dist < minDist {
			minDist = dist
			matches = []string{n}
		} else if dist == minDist {
			matches = append(matches, n)
		}
	}
	if len(matches) == 0 || minDist > DistanceLimit {
		return ""
	}
	return fmt.Sprintf(", maybe you mean %s?", strings.Join(matches, " or "))
}

// FindFromMap does the same as Find but over the string keys of a map.
func FindFromMap(m interface{}, src string) string {
	rv := reflect.ValueOf(m)
	if !rv.IsValid() || rv.Kind() != reflect.Map {
		return ""
	}
	var names []string
	for _, k := range rv.MapKeys() {
		if k.Kind() == reflect.String {
			names = append(names, k.String())
		}
	}
	return Find(names, src)
}
