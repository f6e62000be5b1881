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

// Package planner is a cost-based WHERE-clause planner: given a decomposed
// WHERE clause, a FROM list, an optional ORDER BY and the catalog's
// indexes, it decides the join order, the access path of every table, and
// the scan direction of every loop, and hands the result to a byte-code
// emitter. Parsing, expression evaluation and storage are out of scope.
package planner

import (
	"time"

	"github.com/dolthub/go-query-planner/sql"
	"github.com/dolthub/go-query-planner/sql/where"
)

// Config re-exports the planner knobs.
type Config = where.Config

// Planner plans queries. It is stateless apart from its configuration and
// safe for concurrent use; each Plan call builds and discards its own
// working memory.
type Planner struct {
	cfg     *where.Config
	emitter where.Emitter
}

// New creates a Planner with the given configuration. A nil configuration
// means defaults.
func New(cfg *where.Config) *Planner {
	if cfg == nil {
		cfg = where.DefaultConfig()
	}
	return &Planner{cfg: cfg}
}

// NewDefault creates a Planner with the default configuration.
func NewDefault() *Planner { return New(nil) }

// WithEmitter attaches the register/label/cursor allocator the plans will
// reserve resources from.
func (p *Planner) WithEmitter(e where.Emitter) *Planner {
	p.emitter = e
	return p
}

// Config returns the planner's configuration.
func (p *Planner) Config() *where.Config { return p.cfg }

// Plan plans one query.
func (p *Planner) Plan(ctx *sql.Context, q *where.Query) (*where.Plan, error) {
	if ctx == nil {
		ctx = sql.NewEmptyContext()
	}
	start := time.Now()
	plan, err := where.Begin(ctx, q, p.cfg, p.emitter)
	if err != nil {
		ctx.Logger().WithError(err).Debug("planning failed")
		return nil, err
	}
	ctx.Logger().
		WithField("levels", len(plan.Levels)).
		WithField("duration", time.Since(start)).
		Debug("query planned")
	return plan, nil
}
