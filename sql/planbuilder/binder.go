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

package planbuilder

import (
	"strings"

	ast "github.com/dolthub/vitess/go/vt/sqlparser"

	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/expression"
	"github.com/gridsql/gridsql/sql/expression/aggregation"
	"github.com/gridsql/gridsql/sql/expression/function"
	"github.com/gridsql/gridsql/sql/parse"
	"github.com/gridsql/gridsql/sql/plan"
)

// Binder validates one statement. It is cheap to construct and is not
// reused across statements; the query text is kept to report identifier
// positions.
type Binder struct {
	ctx         *sql.Context
	cat         sql.Catalog
	searchPaths [][]string
	funcs       *function.Registry
	opts        parse.Options
	query       string
}

// New creates a binder for a single query. funcs is the merged operator
// table, with any backend extension already layered on top of the
// built-ins.
func New(ctx *sql.Context, cat sql.Catalog, searchPaths [][]string, funcs *function.Registry, opts parse.Options, query string) *Binder {
	return &Binder{
		ctx:         ctx,
		cat:         cat,
		searchPaths: searchPaths,
		funcs:       funcs,
		opts:        opts,
		query:       query,
	}
}

// bindErr carries an error up through the recursive bind as a panic, so
// the happy path stays free of error plumbing. BindSelect recovers it.
type bindErr struct {
	err error
}

func (b *Binder) handleErr(err error) {
	panic(bindErr{err})
}

// scopeColumn is one column visible at some point of the query, with its
// folded lookup keys and its display names.
type scopeColumn struct {
	table    string // folded table alias
	col      string // folded column name
	dispName string
	typ      sql.Type
	nullable bool
	index    int
}

type scope struct {
	cols []scopeColumn
}

func (s *scope) add(table, name string, typ sql.Type, nullable bool, fold func(string) string) {
	s.cols = append(s.cols, scopeColumn{
		table:    fold(table),
		col:      fold(name),
		dispName: name,
		typ:      typ,
		nullable: nullable,
		index:    len(s.cols),
	})
}

func scopeFromSchema(schema sql.Schema, fold func(string) string) *scope {
	s := &scope{}
	for _, c := range schema {
		s.add(c.Source, c.Name, c.Type, c.Nullable, fold)
	}
	return s
}

// pos returns the 1-based byte offset of the first case-insensitive
// occurrence of ident in the query text, or 0 when it cannot be
// located.
func (b *Binder) pos(ident string) int {
	i := strings.Index(strings.ToLower(b.query), strings.ToLower(ident))
	if i < 0 {
		return 0
	}
	return i + 1
}

// BindSelect validates a parsed statement. Only SELECT statements are
// accepted; DDL and DML are out of scope for this compiler.
func (b *Binder) BindSelect(stmt ast.Statement) (bound *BoundSelect, err error) {
	defer func() {
		if r := recover(); r != nil {
			be, ok := r.(bindErr)
			if !ok {
				panic(r)
			}
			bound, err = nil, be.err
		}
	}()

	sel, ok := stmt.(*ast.Select)
	if !ok {
		return nil, sql.ErrUnsupportedSyntax.New(ast.String(stmt))
	}
	return b.bindSelect(sel), nil
}

func (b *Binder) bindSelect(sel *ast.Select) *BoundSelect {
	if sel.QueryOpts.Distinct {
		b.handleErr(sql.ErrUnsupportedFeature.New("DISTINCT"))
	}

	bound := &BoundSelect{}
	srcScope := &scope{}
	bound.From = b.bindFrom(sel.From, srcScope)

	if sel.Where != nil {
		w := b.bindExpr(srcScope, sel.Where.Expr)
		if aggregation.IsAggregate(w) {
			b.handleErr(sql.ErrUnsupportedSyntax.New("aggregate function in WHERE clause"))
		}
		b.checkBoolean("WHERE", w)
		bound.Where = w
	}

	for _, g := range sel.GroupBy {
		ge := b.bindExpr(srcScope, g)
		if aggregation.IsAggregate(ge) {
			b.handleErr(sql.ErrUnsupportedSyntax.New("aggregate function in GROUP BY clause"))
		}
		bound.GroupExprs = append(bound.GroupExprs, ge)
	}

	selected := b.bindSelectExprs(srcScope, sel.SelectExprs)

	bound.Grouped = len(bound.GroupExprs) > 0
	for _, e := range selected {
		if aggregation.IsAggregate(e) {
			bound.Grouped = true
		}
	}
	var having sql.Expression
	if sel.Having != nil {
		having = b.bindExpr(srcScope, sel.Having.Expr)
		b.checkBoolean("HAVING", having)
		if aggregation.IsAggregate(having) {
			bound.Grouped = true
		}
	}

	if bound.Grouped {
		b.bindGrouped(bound, selected, having)
	} else {
		if having != nil {
			b.handleErr(sql.ErrUnsupportedSyntax.New("HAVING without GROUP BY or aggregation"))
		}
		bound.Projections = selected
		bound.OutputSchema = plan.SchemaForExpressions(selected)
	}

	b.bindOrderBy(bound, srcScope, sel.OrderBy)
	b.bindLimit(bound, sel.Limit)
	return bound
}

// bindGrouped finishes a grouped query: validates the grouping rules,
// assembles the aggregation output list, and rewrites HAVING over it.
func (b *Binder) bindGrouped(bound *BoundSelect, selected []sql.Expression, having sql.Expression) {
	for _, e := range selected {
		b.checkGroupingRule(e, bound.GroupExprs)
	}
	if having != nil {
		b.checkGroupingRule(having, bound.GroupExprs)
	}

	bound.AggSelected = append(bound.AggSelected, selected...)
	bound.VisibleCount = len(selected)

	aggSchema := plan.SchemaForExpressions(bound.AggSelected)
	if having != nil {
		bound.Having = b.rewriteOverAggOutput(having, bound, &aggSchema)
	}

	visible := aggSchema[:bound.VisibleCount]
	bound.Projections = fieldRefs(visible, 0)
	bound.OutputSchema = visible
}

// checkGroupingRule enforces that every column reference in e is either
// under an aggregate or part of a GROUP BY expression. Matching is by
// expression text, the usual approximation of structural equality.
func (b *Binder) checkGroupingRule(e sql.Expression, groupExprs []sql.Expression) {
	for _, g := range groupExprs {
		if e.String() == g.String() {
			return
		}
	}
	if _, ok := e.(aggregation.Aggregation); ok {
		return
	}
	if a, ok := e.(*expression.Alias); ok {
		b.checkGroupingRule(a.Child, groupExprs)
		return
	}
	if gf, ok := e.(*expression.GetField); ok {
		b.handleErr(sql.ErrFieldMissing.New(gf.String()))
	}
	for _, c := range e.Children() {
		b.checkGroupingRule(c, groupExprs)
	}
}

// rewriteOverAggOutput rebases a HAVING condition onto the aggregation
// output schema. Aggregates and grouping expressions become field
// references; aggregates not already produced are appended as hidden
// output columns.
func (b *Binder) rewriteOverAggOutput(e sql.Expression, bound *BoundSelect, aggSchema *sql.Schema) sql.Expression {
	for i, sel := range bound.AggSelected {
		target := sel
		if a, ok := target.(*expression.Alias); ok {
			target = a.Child
		}
		if e.String() == target.String() {
			c := (*aggSchema)[i]
			return expression.NewGetField(i, c.Type, c.Source, c.Name, c.Nullable)
		}
	}
	if agg, ok := e.(aggregation.Aggregation); ok {
		i := len(bound.AggSelected)
		bound.AggSelected = append(bound.AggSelected, agg)
		*aggSchema = append(*aggSchema, plan.SchemaForExpressions([]sql.Expression{agg})[0])
		c := (*aggSchema)[i]
		return expression.NewGetField(i, c.Type, c.Source, c.Name, c.Nullable)
	}
	children := e.Children()
	if len(children) == 0 {
		return e
	}
	rewritten := make([]sql.Expression, len(children))
	for i, c := range children {
		rewritten[i] = b.rewriteOverAggOutput(c, bound, aggSchema)
	}
	ne, err := e.WithChildren(rewritten...)
	if err != nil {
		b.handleErr(err)
	}
	return ne
}

func (b *Binder) bindOrderBy(bound *BoundSelect, srcScope *scope, orderBy ast.OrderBy) {
	if len(orderBy) == 0 {
		return
	}
	outScope := scopeFromSchema(bound.OutputSchema, b.opts.Fold)

	// Each term resolves independently: output columns shadow source
	// columns, so a query can order by its own aliases, and an ungrouped
	// query can also order by source columns the select list dropped.
	fields := make([]sql.SortField, 0, len(orderBy))
	atOutput := make([]bool, len(orderBy))
	belowProject := false
	for i, o := range orderBy {
		expr, err := b.tryBindExpr(outScope, o.Expr)
		if err == nil {
			atOutput[i] = true
		} else {
			if bound.Grouped {
				b.handleErr(err)
			}
			expr = b.bindExpr(srcScope, o.Expr)
			if aggregation.IsAggregate(expr) {
				b.handleErr(sql.ErrUnsupportedSyntax.New("aggregate function in ORDER BY of an ungrouped query"))
			}
			belowProject = true
		}
		order := sql.Ascending
		if o.Direction == ast.DescScr {
			order = sql.Descending
		}
		fields = append(fields, sql.SortField{Column: expr, Order: order})
	}

	if belowProject {
		// The sort runs below the projection, so terms bound against the
		// output columns are rebased onto the expressions producing them.
		// All sort keys then address the source row shape.
		for i := range fields {
			if atOutput[i] {
				fields[i].Column = b.rebaseOntoSource(fields[i].Column, bound.Projections)
			}
		}
	}
	bound.SortFields = fields
	bound.SortBelowProject = belowProject
}

// rebaseOntoSource replaces references to output columns with the
// projection expressions producing them. Only reachable for ungrouped
// queries, whose projections are all source-level expressions.
func (b *Binder) rebaseOntoSource(e sql.Expression, projections []sql.Expression) sql.Expression {
	if gf, ok := e.(*expression.GetField); ok {
		p := projections[gf.Index()]
		if a, ok := p.(*expression.Alias); ok {
			return a.Child
		}
		return p
	}
	children := e.Children()
	if len(children) == 0 {
		return e
	}
	rebased := make([]sql.Expression, len(children))
	for i, c := range children {
		rebased[i] = b.rebaseOntoSource(c, projections)
	}
	ne, err := e.WithChildren(rebased...)
	if err != nil {
		b.handleErr(err)
	}
	return ne
}

func (b *Binder) bindLimit(bound *BoundSelect, limit *ast.Limit) {
	if limit == nil {
		return
	}
	bound.HasLimit = true
	bound.Limit = b.bindIntVal("LIMIT", limit.Rowcount)
	if limit.Offset != nil {
		bound.Offset = b.bindIntVal("OFFSET", limit.Offset)
	}
}

func (b *Binder) bindIntVal(clause string, e ast.Expr) int64 {
	v, ok := e.(*ast.SQLVal)
	if !ok || v.Type != ast.IntVal {
		b.handleErr(sql.ErrUnsupportedSyntax.New(clause + " with a non-integer expression"))
	}
	n := b.parseInt(string(v.Val))
	if n < 0 {
		b.handleErr(sql.ErrUnsupportedSyntax.New("negative " + clause))
	}
	return n
}

// bindFrom resolves the FROM clause into scans and joins, extending the
// scope with each table's columns. A multi-table FROM list is a cross
// join.
func (b *Binder) bindFrom(exprs ast.TableExprs, s *scope) sql.Node {
	var node sql.Node
	for _, te := range exprs {
		right := b.bindTableExpr(te, s)
		if node == nil {
			node = right
		} else {
			node = plan.NewCrossJoin(node, right)
		}
	}
	if node == nil {
		b.handleErr(sql.ErrUnsupportedSyntax.New("SELECT without FROM"))
	}
	return node
}

func (b *Binder) bindTableExpr(te ast.TableExpr, s *scope) sql.Node {
	switch te := te.(type) {
	case *ast.AliasedTableExpr:
		return b.bindAliasedTable(te, s)
	case *ast.JoinTableExpr:
		return b.bindJoin(te, s)
	case *ast.ParenTableExpr:
		return b.bindFrom(te.Exprs, s)
	default:
		b.handleErr(sql.ErrUnsupportedSyntax.New(ast.String(te)))
		return nil
	}
}

func (b *Binder) bindAliasedTable(te *ast.AliasedTableExpr, s *scope) sql.Node {
	tn, ok := te.Expr.(ast.TableName)
	if !ok {
		b.handleErr(sql.ErrUnsupportedFeature.New("subqueries in FROM"))
	}
	name := sql.TableName{Name: b.opts.Fold(tn.Name.String())}
	if !tn.DbQualifier.IsEmpty() {
		name.Qualifier = b.opts.Fold(tn.DbQualifier.String())
	}
	table, err := sql.ResolveTable(b.cat, name, b.searchPaths)
	if err != nil {
		b.handleErr(err)
	}

	alias := name.Name
	if !te.As.IsEmpty() {
		alias = b.opts.Fold(te.As.String())
	}
	for _, c := range s.cols {
		if c.table == alias {
			b.handleErr(sql.ErrDuplicateAliasOrTable.New(alias))
		}
	}

	scan := plan.NewResolvedTable(table, alias)
	for _, c := range scan.Schema() {
		s.add(alias, c.Name, c.Type, c.Nullable, b.opts.Fold)
	}
	return scan
}

func (b *Binder) bindJoin(te *ast.JoinTableExpr, s *scope) sql.Node {
	switch te.Join {
	case ast.JoinStr:
	default:
		b.handleErr(sql.ErrUnsupportedFeature.New(te.Join))
	}
	left := b.bindTableExpr(te.LeftExpr, s)
	right := b.bindTableExpr(te.RightExpr, s)
	var cond sql.Expression
	if te.Condition.On != nil {
		cond = b.bindExpr(s, te.Condition.On)
		if aggregation.IsAggregate(cond) {
			b.handleErr(sql.ErrUnsupportedSyntax.New("aggregate function in JOIN condition"))
		}
		b.checkBoolean("JOIN", cond)
	}
	return plan.NewInnerJoin(left, right, cond)
}

func (b *Binder) bindSelectExprs(s *scope, exprs ast.SelectExprs) []sql.Expression {
	var out []sql.Expression
	for _, se := range exprs {
		switch se := se.(type) {
		case *ast.StarExpr:
			qualifier := ""
			if !se.TableName.Name.IsEmpty() {
				qualifier = b.opts.Fold(se.TableName.Name.String())
			}
			out = append(out, b.expandStar(s, qualifier)...)
		case *ast.AliasedExpr:
			e := b.bindExpr(s, se.Expr)
			if !se.As.IsEmpty() {
				e = expression.NewAlias(e, b.opts.Fold(se.As.String()))
			}
			out = append(out, e)
		default:
			b.handleErr(sql.ErrUnsupportedSyntax.New(ast.String(se)))
		}
	}
	return out
}

// expandStar replaces a * or table.* with field references to every
// matching column in scope, in scope order.
func (b *Binder) expandStar(s *scope, qualifier string) []sql.Expression {
	var out []sql.Expression
	for _, c := range s.cols {
		if qualifier != "" && c.table != qualifier {
			continue
		}
		out = append(out, expression.NewGetField(c.index, c.typ, c.table, c.dispName, c.nullable))
	}
	if len(out) == 0 {
		if qualifier != "" {
			b.handleErr(sql.ErrTableNotFound.New(qualifier))
		}
		b.handleErr(sql.ErrUnsupportedSyntax.New("* with an empty scope"))
	}
	return out
}

func fieldRefs(schema sql.Schema, offset int) []sql.Expression {
	refs := make([]sql.Expression, len(schema))
	for i, c := range schema {
		refs[i] = expression.NewGetField(offset+i, c.Type, c.Source, c.Name, c.Nullable)
	}
	return refs
}
