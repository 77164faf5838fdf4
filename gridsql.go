// Copyright 2024 GridSQL, Inc.
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

// Package gridsql compiles SQL queries into distribution-aware physical
// plans for a cluster of members. The pipeline is parse, validate,
// convert to a logical plan, then cost-based optimization over a memo
// of equivalence classes. An OptimizerContext is created per query and
// pins an immutable catalog snapshot for its whole lifetime.
package gridsql

import (
	ast "github.com/dolthub/vitess/go/vt/sqlparser"

	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/expression/function"
	"github.com/gridsql/gridsql/sql/memo"
	"github.com/gridsql/gridsql/sql/parse"
	"github.com/gridsql/gridsql/sql/planbuilder"
)

// Backend extends the compiler for a specific execution engine: extra
// functions in the operator table (taking precedence over built-ins)
// and extra planner rules.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string
	// Functions returns the backend's operator table extension, layered
	// over the built-ins with precedence. May be nil.
	Functions() *function.Registry
	// ValidateSelect inspects a statement after validation and may reject
	// it with a backend-specific error.
	ValidateSelect(bound *planbuilder.BoundSelect) error
	// Rules returns additional transformation rules for the planner.
	Rules() []memo.Rule
}

// Config assembles an OptimizerContext.
type Config struct {
	// Catalog resolves table names. Required. It is snapshotted at
	// context creation; later catalog changes do not affect this query.
	Catalog sql.Catalog
	// SearchPaths are the schema paths tried in order for unqualified
	// table names. Defaults to a single "public" schema.
	SearchPaths [][]string
	// MemberCount is the cluster size plans are produced for. Defaults
	// to 1.
	MemberCount int
	// Backend is the optional engine-specific extension.
	Backend Backend
	// Parser carries the dialect options.
	Parser parse.Options
	// Budget bounds the optimizer's search steps; zero or less means
	// unbounded.
	Budget int
	// Coster and Carder override the default cost model.
	Coster memo.Coster
	Carder memo.Carder
}

// OptimizerContext is the per-query compilation state. It is cheap to
// create and must not be shared between queries.
type OptimizerContext struct {
	ctx         *sql.Context
	catalog     sql.Catalog
	searchPaths [][]string
	members     int
	funcs       *function.Registry
	backend     Backend
	parser      parse.Options
	budget      int
	coster      memo.Coster
	carder      memo.Carder
}

// NewOptimizerContext creates the compilation context for one query,
// snapshotting the catalog.
func NewOptimizerContext(ctx *sql.Context, cfg Config) (*OptimizerContext, error) {
	if cfg.Catalog == nil {
		return nil, sql.ErrInternal.New("optimizer context requires a catalog")
	}
	if ctx == nil {
		ctx = sql.NewEmptyContext()
	}
	searchPaths := cfg.SearchPaths
	if len(searchPaths) == 0 {
		searchPaths = [][]string{{"public"}}
	}
	members := cfg.MemberCount
	if members < 1 {
		members = 1
	}
	funcs := function.Defaults()
	if cfg.Backend != nil {
		funcs = funcs.Merge(cfg.Backend.Functions())
	}
	return &OptimizerContext{
		ctx:         ctx,
		catalog:     cfg.Catalog.Snapshot(),
		searchPaths: searchPaths,
		members:     members,
		funcs:       funcs,
		backend:     cfg.Backend,
		parser:      cfg.Parser,
		budget:      cfg.Budget,
		coster:      cfg.Coster,
		carder:      cfg.Carder,
	}, nil
}

// Catalog returns the context's catalog snapshot.
func (o *OptimizerContext) Catalog() sql.Catalog { return o.catalog }

// Members returns the cluster size this context plans for.
func (o *OptimizerContext) Members() int { return o.members }

// Parse parses a single SQL statement.
func (o *OptimizerContext) Parse(query string) (ast.Statement, error) {
	return parse.Parse(o.ctx, query, o.parser)
}

// Validate resolves and type-checks a parsed statement against the
// catalog snapshot and the operator table.
func (o *OptimizerContext) Validate(query string, stmt ast.Statement) (*planbuilder.BoundSelect, error) {
	span, ctx := o.ctx.Span("validate")
	defer span.End()
	b := planbuilder.New(ctx, o.catalog, o.searchPaths, o.funcs, o.parser, query)
	bound, err := b.BindSelect(stmt)
	if err != nil {
		return nil, err
	}
	if o.backend != nil {
		if err := o.backend.ValidateSelect(bound); err != nil {
			return nil, err
		}
	}
	return bound, nil
}

// Convert assembles the canonical logical plan for a validated
// statement.
func (o *OptimizerContext) Convert(bound *planbuilder.BoundSelect) (sql.Node, error) {
	span, _ := o.ctx.Span("convert")
	defer span.End()
	return planbuilder.Convert(bound)
}

// DefaultRules returns the planner configuration for this context: the
// standard rule set plus the backend's transformations.
func (o *OptimizerContext) DefaultRules() memo.RuleSet {
	rules := memo.DefaultRuleSet()
	if o.backend != nil {
		rules.Transforms = append(rules.Transforms, o.backend.Rules()...)
	}
	return rules
}

// Optimize searches for the cheapest physical plan of the logical node
// that satisfies the required traits, under the context's budget.
func (o *OptimizerContext) Optimize(node sql.Node, rules memo.RuleSet, required memo.Required) (sql.Node, float64, error) {
	span, ctx := o.ctx.Span("optimize")
	defer span.End()

	m := memo.NewMemo(o.members, o.budget, o.coster, o.carder)
	if _, err := m.InsertNode(node); err != nil {
		return nil, 0, err
	}
	best, cost, err := m.Optimize(rules, required)
	if err != nil {
		return nil, 0, err
	}
	ctx.Logger().WithField("cost", cost).Debug("optimized plan")
	return best, cost, nil
}

// OptimizeQuery runs the whole pipeline with the default rules against
// an arbitrary trait requirement.
func (o *OptimizerContext) OptimizeQuery(query string, required memo.Required) (sql.Node, float64, error) {
	stmt, err := o.Parse(query)
	if err != nil {
		return nil, 0, err
	}
	bound, err := o.Validate(query, stmt)
	if err != nil {
		return nil, 0, err
	}
	logical, err := o.Convert(bound)
	if err != nil {
		return nil, 0, err
	}
	return o.Optimize(logical, o.DefaultRules(), required)
}

// CompileQuery runs the whole pipeline with the default rules, placing
// the result on a single member. It returns the physical plan.
func (o *OptimizerContext) CompileQuery(query string) (sql.Node, error) {
	physical, _, err := o.OptimizeQuery(query, memo.OnSingle())
	if err != nil {
		return nil, err
	}
	return physical, nil
}
