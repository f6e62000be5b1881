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

// Trace bits for Config.TraceMask. Output goes to the context logger at
// debug level.
const (
	// TraceTerms logs the analyzed WHERE terms.
	TraceTerms uint32 = 1 << iota
	// TraceLoops logs the candidate loops that survive loop building.
	TraceLoops
	// TracePaths logs the surviving paths at each solver depth.
	TracePaths
	// TracePlan logs the final plan.
	TracePlan
)

func (info *planInfo) trace(mask uint32, format string, args ...interface{}) {
	if info.config.TraceMask&mask == 0 {
		return
	}
	info.ctx.Logger().WithField("component", "planner").Debugf(format, args...)
}
