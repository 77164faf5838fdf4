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

// Package planbuilder binds a parsed AST against a catalog and an
// operator table, producing a validated statement ready for conversion
// to a logical plan. Binding resolves table and column names, folds
// identifier case, infers expression types bottom-up, and enforces the
// grouping rules. All failures surface as sql error kinds with the
// offending name and, where it can be located, its position in the
// query text.
package planbuilder

import (
	"github.com/gridsql/gridsql/sql"
)

// BoundSelect is a fully validated SELECT. Every expression in it is
// resolved and typed; conversion to a logical plan is a pure assembly
// step that cannot fail on user input.
type BoundSelect struct {
	// From is the resolved source tree: table scans and joins.
	From sql.Node
	// Where is the bound WHERE condition, or nil.
	Where sql.Expression

	// Grouped reports whether the query aggregates. True when a GROUP BY
	// clause is present or the select list contains an aggregate.
	Grouped bool
	// GroupExprs are the bound GROUP BY expressions.
	GroupExprs []sql.Expression
	// AggSelected is the aggregation output list: the select list plus
	// any aggregates that only HAVING references. Only set when Grouped.
	AggSelected []sql.Expression
	// VisibleCount is how many leading AggSelected columns belong to the
	// select list. The rest exist only for HAVING.
	VisibleCount int

	// Projections is the final projection list. For grouped queries it is
	// field references into the visible aggregation output.
	Projections []sql.Expression
	// Having is the bound HAVING condition rewritten over the
	// aggregation output, or nil.
	Having sql.Expression

	// SortFields are the bound ORDER BY terms, or nil.
	SortFields []sql.SortField
	// SortBelowProject is set when the ordering references source columns
	// rather than the query's output columns. Only possible for
	// ungrouped queries.
	SortBelowProject bool

	// HasLimit reports whether a LIMIT clause was present.
	HasLimit bool
	Limit    int64
	Offset   int64

	// OutputSchema is the schema of the query result, in select-list
	// order with inferred types.
	OutputSchema sql.Schema
}
