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
	"io/ioutil"

	yaml "gopkg.in/yaml.v2"
)

// Config holds the optimization knobs. Every knob is independently
// switchable, mostly so that tests and bug reproductions can isolate one
// transformation at a time.
type Config struct {
	// Stat3 enables histogram-sample based row estimates and the
	// IS NOT NULL → col>NULL rewrite that depends on them.
	Stat3 bool `yaml:"stat3"`
	// AutoIndex enables synthesis of transient indexes for joins with no
	// usable permanent index.
	AutoIndex bool `yaml:"auto_index"`
	// CoveringIndexScan enables full scans of covering indexes in place of
	// table scans.
	CoveringIndexScan bool `yaml:"covering_index_scan"`
	// TransitiveClosure enables equality propagation through x=y chains.
	TransitiveClosure bool `yaml:"transitive_closure"`
	// OmitNoopJoin drops LEFT JOIN tables that contribute nothing to the
	// result.
	OmitNoopJoin bool `yaml:"omit_noop_join"`
	// DistinctOpt enables DISTINCT redundancy detection.
	DistinctOpt bool `yaml:"distinct_opt"`
	// OrderByIdxJoin lets loops below the outermost one contribute to
	// satisfying ORDER BY; when off, only the outermost loop's order counts.
	OrderByIdxJoin bool `yaml:"order_by_idx_join"`
	// ReverseOrder flips unconstrained scans, for diagnostic tracing only.
	ReverseOrder bool `yaml:"reverse_order"`
	// TraceMask gates planner debug output; see trace.go for the bits.
	TraceMask uint32 `yaml:"trace_mask"`
}

// DefaultConfig returns the production defaults: every optimization on,
// diagnostics off.
func DefaultConfig() *Config {
	return &Config{
		Stat3:             true,
		AutoIndex:         true,
		CoveringIndexScan: true,
		TransitiveClosure: true,
		OmitNoopJoin:      true,
		DistinctOpt:       true,
		OrderByIdxJoin:    true,
	}
}

// LoadConfig reads a yaml knob file. Knobs absent from the file keep their
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
