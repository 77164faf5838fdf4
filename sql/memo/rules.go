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
	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/expression"
	"github.com/gridsql/gridsql/sql/expression/aggregation"
	"github.com/gridsql/gridsql/sql/plan"
)

// Rule is a transformation that grows an equivalence class with a
// logically equivalent alternative. Apply reports whether the memo
// changed. Backends extend the planner by adding rules to the set.
type Rule interface {
	Apply(m *Memo, e RelExpr) (bool, error)
}

// Enforcer inserts a trait-enforcing operator over an already optimized
// plan fragment. With no enforcers configured, a requirement no member
// can provide natively makes the search fail with ErrPlanNotFound.
type Enforcer interface {
	// Enforce wraps w with one step toward req, or reports false when
	// this enforcer cannot help.
	Enforce(m *Memo, g *ExprGroup, w *winner, req Required) (*winner, bool)
}

// RuleSet is the planner configuration: the transformations to explore
// with and the enforcers available to satisfy trait requirements.
type RuleSet struct {
	Transforms []Rule
	Enforcers  []Enforcer
}

// DefaultRuleSet returns the standard planner configuration.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Transforms: []Rule{
			TwoPhaseAggregation{},
		},
		Enforcers: []Enforcer{
			GatherEnforcer{},
			RepartitionEnforcer{},
			BroadcastEnforcer{},
			SortEnforcer{},
		},
	}
}

// TwoPhaseAggregation splits a complete aggregation into a per-member
// partial phase and a merging final phase, so the bulk of the work runs
// where the rows already are and only partial states cross the wire.
// Only decomposable aggregates qualify; AVG does not merge and keeps
// the single-phase form.
type TwoPhaseAggregation struct{}

// Apply implements the Rule interface.
func (TwoPhaseAggregation) Apply(m *Memo, e RelExpr) (bool, error) {
	g, ok := e.(*GroupBy)
	if !ok || g.Phase != plan.AggComplete {
		return false, nil
	}
	for _, sel := range g.Selected {
		inner := unwrapAlias(sel)
		if indexOfExpr(g.Grouping, inner) >= 0 {
			continue
		}
		switch inner.(type) {
		case *aggregation.Count, *aggregation.Sum, *aggregation.Min, *aggregation.Max:
		default:
			return false, nil
		}
	}

	// The partial phase carries the grouping columns even when the query
	// does not select them; the final phase groups on them.
	partial := append([]sql.Expression{}, g.Selected...)
	for _, ge := range g.Grouping {
		if indexOfUnwrapped(partial, ge) < 0 {
			partial = append(partial, ge)
		}
	}
	partialSchema := plan.SchemaForExpressions(partial)

	pg, err := m.memoize(&GroupBy{
		Child:    g.Child,
		Selected: partial,
		Grouping: g.Grouping,
		Phase:    plan.AggPartial,
	})
	if err != nil {
		return false, err
	}

	completeSchema := e.Group().RelProps.schema
	finalSelected := make([]sql.Expression, len(g.Selected))
	for i, sel := range g.Selected {
		c := partialSchema[i]
		ref := expression.NewGetField(i, c.Type, c.Source, c.Name, c.Nullable)
		var fe sql.Expression = ref
		if agg, isAgg := unwrapAlias(sel).(aggregation.Aggregation); isAgg {
			merged, mergeable := aggregation.Merge(agg, ref)
			if !mergeable {
				return false, nil
			}
			fe = merged
		}
		finalSelected[i] = expression.NewAlias(fe, completeSchema[i].Name)
	}
	finalGrouping := make([]sql.Expression, len(g.Grouping))
	for i, ge := range g.Grouping {
		j := indexOfUnwrapped(partial, ge)
		c := partialSchema[j]
		finalGrouping[i] = expression.NewGetField(j, c.Type, c.Source, c.Name, c.Nullable)
	}

	return m.addToGroup(&GroupBy{
		Child:    pg,
		Selected: finalSelected,
		Grouping: finalGrouping,
		Phase:    plan.AggFinal,
	}, e.Group())
}

func unwrapAlias(e sql.Expression) sql.Expression {
	if a, ok := e.(*expression.Alias); ok {
		return a.Child
	}
	return e
}

// indexOfExpr finds e in exprs by textual equality.
func indexOfExpr(exprs []sql.Expression, e sql.Expression) int {
	for i, x := range exprs {
		if x.String() == e.String() {
			return i
		}
	}
	return -1
}

// indexOfUnwrapped finds e in exprs comparing both through aliases.
func indexOfUnwrapped(exprs []sql.Expression, e sql.Expression) int {
	target := unwrapAlias(e).String()
	for i, x := range exprs {
		if unwrapAlias(x).String() == target {
			return i
		}
	}
	return -1
}

// GatherEnforcer satisfies a singleton requirement by collecting all
// rows onto one member.
type GatherEnforcer struct{}

// Enforce implements the Enforcer interface.
func (GatherEnforcer) Enforce(m *Memo, g *ExprGroup, w *winner, req Required) (*winner, bool) {
	if !req.Dist.IsSingle() || w.provided.Satisfies(req.Dist) {
		return nil, false
	}
	return m.wrapEnforcer(g, w, enforcerStep{kind: EnforceGather}, sql.SingleDistribution(), nil), true
}

// RepartitionEnforcer satisfies a partitioned requirement by rehashing
// rows across members by the required keys.
type RepartitionEnforcer struct{}

// Enforce implements the Enforcer interface.
func (RepartitionEnforcer) Enforce(m *Memo, g *ExprGroup, w *winner, req Required) (*winner, bool) {
	if !req.Dist.IsPartitioned() || w.provided.Satisfies(req.Dist) {
		return nil, false
	}
	step := enforcerStep{kind: EnforceRepartition, keys: req.Dist.Keys()}
	return m.wrapEnforcer(g, w, step, req.Dist, nil), true
}

// BroadcastEnforcer satisfies a replicated requirement by sending every
// row to every member.
type BroadcastEnforcer struct{}

// Enforce implements the Enforcer interface.
func (BroadcastEnforcer) Enforce(m *Memo, g *ExprGroup, w *winner, req Required) (*winner, bool) {
	if !req.Dist.IsReplicated() || w.provided.Satisfies(req.Dist) {
		return nil, false
	}
	return m.wrapEnforcer(g, w, enforcerStep{kind: EnforceBroadcast}, sql.ReplicatedDistribution(), nil), true
}

// SortEnforcer satisfies an ordering requirement with an explicit sort.
// It only fires once the distribution requirement is met, since an
// exchange inserted later would destroy the order.
type SortEnforcer struct{}

// Enforce implements the Enforcer interface.
func (SortEnforcer) Enforce(m *Memo, g *ExprGroup, w *winner, req Required) (*winner, bool) {
	if len(req.Ordering) == 0 || orderingSatisfies(w.ordering, req.Ordering) {
		return nil, false
	}
	if !w.provided.Satisfies(req.Dist) {
		return nil, false
	}
	step := enforcerStep{kind: EnforceSort, fields: req.Ordering}
	return m.wrapEnforcer(g, w, step, w.provided, req.Ordering), true
}

// wrapEnforcer layers one enforcer step over a winner, charging its
// cost against the group's cardinality.
func (m *Memo) wrapEnforcer(g *ExprGroup, w *winner, step enforcerStep, provided sql.Distribution, ordering []sql.SortField) *winner {
	nw := &winner{
		expr:      w.expr,
		children:  w.children,
		enforcers: append(append([]enforcerStep{}, w.enforcers...), step),
		provided:  provided,
		ordering:  ordering,
		cost:      w.cost + m.coster.EstimateEnforcerCost(step.kind, g.RelProps.Card()),
		exchanges: w.exchanges,
		nodes:     w.nodes + 1,
	}
	if step.kind != EnforceSort {
		nw.exchanges++
	}
	return nw
}
