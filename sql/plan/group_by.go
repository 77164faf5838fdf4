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

package plan

import (
	"fmt"
	"strings"

	"github.com/gridsql/gridsql/sql"
)

// AggregationPhase marks how a GroupBy participates in distributed
// aggregation. A logical plan always carries AggComplete; the planner
// may split it into a partial phase below an exchange and a final phase
// above it.
type AggregationPhase byte

const (
	// AggComplete performs the whole aggregation in one step.
	AggComplete AggregationPhase = iota
	// AggPartial produces per-member partial states.
	AggPartial
	// AggFinal merges partial states into final values.
	AggFinal
)

func (p AggregationPhase) String() string {
	switch p {
	case AggPartial:
		return "partial"
	case AggFinal:
		return "final"
	default:
		return "complete"
	}
}

// GroupBy groups rows by a set of expressions and evaluates the selected
// expressions, which mix grouping columns and aggregate calls.
type GroupBy struct {
	UnaryNode
	SelectedExprs []sql.Expression
	GroupByExprs  []sql.Expression
	Phase         AggregationPhase
}

var _ sql.Node = (*GroupBy)(nil)

// NewGroupBy creates a complete aggregation node.
func NewGroupBy(selected, grouping []sql.Expression, child sql.Node) *GroupBy {
	return &GroupBy{
		UnaryNode:     UnaryNode{Child: child},
		SelectedExprs: selected,
		GroupByExprs:  grouping,
		Phase:         AggComplete,
	}
}

// WithPhase returns a copy of the node marked with the given phase.
func (g *GroupBy) WithPhase(phase AggregationPhase) *GroupBy {
	ng := *g
	ng.Phase = phase
	return &ng
}

// Resolved implements the Node interface.
func (g *GroupBy) Resolved() bool {
	return g.Child.Resolved() &&
		expressionsResolved(g.SelectedExprs...) &&
		expressionsResolved(g.GroupByExprs...)
}

// Schema implements the Node interface.
func (g *GroupBy) Schema() sql.Schema {
	return SchemaForExpressions(g.SelectedExprs)
}

// WithChildren implements the Node interface.
func (g *GroupBy) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(g, len(children), 1)
	}
	ng := *g
	ng.Child = children[0]
	return &ng, nil
}

func (g *GroupBy) String() string {
	selected := make([]string, len(g.SelectedExprs))
	for i, e := range g.SelectedExprs {
		selected[i] = e.String()
	}
	grouping := make([]string, len(g.GroupByExprs))
	for i, e := range g.GroupByExprs {
		grouping[i] = e.String()
	}
	if g.Phase == AggComplete {
		return fmt.Sprintf("GroupBy(select: %s, group: %s)",
			strings.Join(selected, ", "), strings.Join(grouping, ", "))
	}
	return fmt.Sprintf("GroupBy[%s](select: %s, group: %s)",
		g.Phase, strings.Join(selected, ", "), strings.Join(grouping, ", "))
}
