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

package memo

import (
	"fmt"
	"strings"

	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/plan"
)

// RelExpr is a relational expression inside an equivalence class.
// Expressions reference their inputs as groups, not concrete plans; the
// optimizer picks the concrete implementation per group afterwards.
type RelExpr interface {
	fmt.Stringer
	Group() *ExprGroup
	SetGroup(*ExprGroup)
	Next() RelExpr
	SetNext(RelExpr)
	Children() []*ExprGroup
}

type relBase struct {
	g *ExprGroup
	n RelExpr
}

func (r *relBase) Group() *ExprGroup     { return r.g }
func (r *relBase) SetGroup(g *ExprGroup) { r.g = g }
func (r *relBase) Next() RelExpr         { return r.n }
func (r *relBase) SetNext(n RelExpr)     { r.n = n }

// TableScan reads a catalog table. Its distribution is fixed by the
// catalog and is the only trait source in a plan.
type TableScan struct {
	relBase
	Table *plan.ResolvedTable
}

func (r *TableScan) Children() []*ExprGroup { return nil }

func (r *TableScan) String() string {
	return fmt.Sprintf("tablescan: %s", r.Table.Name())
}

// Filter drops rows not matching a condition.
type Filter struct {
	relBase
	Child *ExprGroup
	Cond  sql.Expression
}

func (r *Filter) Children() []*ExprGroup { return []*ExprGroup{r.Child} }

func (r *Filter) String() string {
	return fmt.Sprintf("filter: %s", r.Cond)
}

// Project computes the projection list over its input.
type Project struct {
	relBase
	Child       *ExprGroup
	Projections []sql.Expression
}

func (r *Project) Children() []*ExprGroup { return []*ExprGroup{r.Child} }

func (r *Project) String() string {
	return fmt.Sprintf("project: %s", exprsString(r.Projections))
}

// GroupBy aggregates its input. Phase distinguishes the members created
// by two-phase splitting from the original complete aggregation.
type GroupBy struct {
	relBase
	Child    *ExprGroup
	Selected []sql.Expression
	Grouping []sql.Expression
	Phase    plan.AggregationPhase
}

func (r *GroupBy) Children() []*ExprGroup { return []*ExprGroup{r.Child} }

func (r *GroupBy) String() string {
	return fmt.Sprintf("groupby[%s]: %s grouping %s",
		r.Phase, exprsString(r.Selected), exprsString(r.Grouping))
}

// Join is an inner join; a nil condition is a cross join.
type Join struct {
	relBase
	Left  *ExprGroup
	Right *ExprGroup
	Cond  sql.Expression
}

func (r *Join) Children() []*ExprGroup { return []*ExprGroup{r.Left, r.Right} }

func (r *Join) String() string {
	if r.Cond == nil {
		return "crossjoin"
	}
	return fmt.Sprintf("innerjoin: %s", r.Cond)
}

// Sort orders its input.
type Sort struct {
	relBase
	Child  *ExprGroup
	Fields []sql.SortField
}

func (r *Sort) Children() []*ExprGroup { return []*ExprGroup{r.Child} }

func (r *Sort) String() string {
	fields := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		fields[i] = f.String()
	}
	return fmt.Sprintf("sort: %s", strings.Join(fields, ", "))
}

// Limit truncates its input. It requires a single stream.
type Limit struct {
	relBase
	Child  *ExprGroup
	Count  int64
	Offset int64
}

func (r *Limit) Children() []*ExprGroup { return []*ExprGroup{r.Child} }

func (r *Limit) String() string {
	return fmt.Sprintf("limit: %d,%d", r.Count, r.Offset)
}

// relSchema derives a member's output schema from its expressions and
// its child groups.
func relSchema(e RelExpr) sql.Schema {
	switch e := e.(type) {
	case *TableScan:
		return e.Table.Schema()
	case *Filter:
		return e.Child.RelProps.schema
	case *Project:
		return plan.SchemaForExpressions(e.Projections)
	case *GroupBy:
		return plan.SchemaForExpressions(e.Selected)
	case *Join:
		return append(e.Left.RelProps.schema.Copy(), e.Right.RelProps.schema.Copy()...)
	case *Sort:
		return e.Child.RelProps.schema
	case *Limit:
		return e.Child.RelProps.schema
	default:
		return nil
	}
}

func exprsString(exprs []sql.Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
