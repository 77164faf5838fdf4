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
	"strings"

	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/expression"
	"github.com/gridsql/gridsql/sql/plan"
)

// Optimize explores the memo with the rule set's transformations, then
// searches top-down for the cheapest implementation of the root that
// satisfies the required traits. The result is an immutable physical
// plan; calling Optimize again with the same inputs returns an
// equivalent plan at the same cost.
func (m *Memo) Optimize(rules RuleSet, required Required) (sql.Node, float64, error) {
	if m.root == nil {
		return nil, 0, sql.ErrInternal.New("optimize called on an empty memo")
	}
	if err := m.Explore(rules); err != nil {
		return nil, 0, err
	}
	w, err := m.optimizeGroup(m.root, required, rules)
	if err != nil {
		return nil, 0, err
	}
	if w == nil {
		return nil, 0, sql.ErrPlanNotFound.New(required)
	}
	n, err := m.buildPhysical(w)
	if err != nil {
		return nil, 0, err
	}
	return n, w.cost, nil
}

// optimizeGroup finds the cheapest implementation of a group under the
// given requirement. Results, including failures, are memoized per
// trait set. A nil winner with nil error means no plan exists.
func (m *Memo) optimizeGroup(g *ExprGroup, required Required, rules RuleSet) (*winner, error) {
	key := required.key()
	if w, ok := g.winners[key]; ok {
		return w, nil
	}
	if err := m.chargeStep(); err != nil {
		return nil, err
	}

	var best *winner
	for e := g.First; e != nil; e = e.Next() {
		candidates, err := m.implement(e, required, rules)
		if err != nil {
			return nil, err
		}
		for _, w := range candidates {
			if w.satisfies(required) && w.better(best) {
				best = w
			}
		}
	}

	// Alternatively take the cheapest unconstrained plan and enforce the
	// traits on top of it.
	if !required.isAny() {
		base, err := m.optimizeGroup(g, Any(), rules)
		if err != nil {
			return nil, err
		}
		if base != nil {
			if cand := m.enforce(base, g, required, rules); cand != nil && cand.better(best) {
				best = cand
			}
		}
	}

	g.winners[key] = best
	return best, nil
}

// implement builds the candidate implementations of one member under the
// requirement, one per child-requirement strategy.
func (m *Memo) implement(e RelExpr, required Required, rules RuleSet) ([]*winner, error) {
	var out []*winner
	for _, childReqs := range childStrategies(m, e, required) {
		children := e.Children()
		cws := make([]*winner, len(children))
		feasible := true
		for i, cg := range children {
			cw, err := m.optimizeGroup(cg, childReqs[i], rules)
			if err != nil {
				return nil, err
			}
			if cw == nil {
				feasible = false
				break
			}
			cws[i] = cw
		}
		if !feasible {
			continue
		}
		provided, valid := providedDist(e, cws)
		if !valid {
			continue
		}
		w := &winner{
			expr:     e,
			children: cws,
			provided: provided,
			ordering: providedOrdering(e, cws),
			cost:     m.coster.EstimateCost(e),
			nodes:    1,
		}
		for _, cw := range cws {
			w.cost += cw.cost
			w.exchanges += cw.exchanges
			w.nodes += cw.nodes
		}
		out = append(out, w)
	}
	return out, nil
}

// enforce layers trait enforcers over an unconstrained winner until the
// requirement is met. Enforcers are tried in rule-set order; a pass with
// no applicable enforcer fails the requirement.
func (m *Memo) enforce(base *winner, g *ExprGroup, required Required, rules RuleSet) *winner {
	cand := base
	for i := 0; i < 4; i++ {
		if cand.satisfies(required) {
			return cand
		}
		progressed := false
		for _, enf := range rules.Enforcers {
			if next, ok := enf.Enforce(m, g, cand, required); ok {
				cand = next
				progressed = true
				break
			}
		}
		if !progressed {
			return nil
		}
	}
	if cand.satisfies(required) {
		return cand
	}
	return nil
}

// childStrategies enumerates the child trait requirements worth trying
// for one member. Every strategy must keep the operator's semantics
// correct; providedDist rejects the ones that do not.
func childStrategies(m *Memo, e RelExpr, required Required) [][]Required {
	switch e := e.(type) {
	case *TableScan:
		return [][]Required{nil}
	case *Filter, *Project:
		// distribution and ordering pass through
		return [][]Required{{required}}
	case *Sort:
		return [][]Required{{Required{Dist: required.Dist}}}
	case *Limit:
		return [][]Required{{OnSingle()}}
	case *GroupBy:
		if e.Phase == plan.AggPartial {
			return [][]Required{{Any()}}
		}
		strategies := [][]Required{{Any()}, {OnSingle()}}
		if keys, ok := groupingKeys(e.Grouping); ok {
			strategies = append(strategies, []Required{{
				Dist: sql.PartitionedDistribution(m.members, keys...),
			}})
		}
		return strategies
	case *Join:
		strategies := [][]Required{
			{Any(), Any()},
			{Any(), Required{Dist: sql.ReplicatedDistribution()}},
			{Required{Dist: sql.ReplicatedDistribution()}, Any()},
			{OnSingle(), OnSingle()},
		}
		if lkeys, rkeys, ok := joinEquiKeys(e); ok {
			strategies = append(strategies, []Required{
				{Dist: sql.PartitionedDistribution(m.members, lkeys...)},
				{Dist: sql.PartitionedDistribution(m.members, rkeys...)},
			})
		}
		return strategies
	default:
		return nil
	}
}

// providedDist derives the output distribution of a member from the
// distributions its chosen children provide, rejecting combinations
// that would compute wrong results.
func providedDist(e RelExpr, cws []*winner) (sql.Distribution, bool) {
	switch e := e.(type) {
	case *TableScan:
		return e.Table.Distribution(), true
	case *Filter:
		return cws[0].provided, true
	case *Project:
		return cws[0].provided, true
	case *Sort:
		return cws[0].provided, true
	case *Limit:
		d := cws[0].provided
		switch {
		case d.IsReplicated():
			// each member truncates its own full copy
			return d, true
		case d.IsSingle():
			return d, true
		default:
			return sql.Distribution{}, false
		}
	case *GroupBy:
		d := cws[0].provided
		if e.Phase == plan.AggPartial {
			return d, true
		}
		if d.IsSingle() || d.IsReplicated() {
			return d, true
		}
		if d.IsPartitioned() {
			if keys, ok := groupingKeys(e.Grouping); ok && d.KeysSubsetOf(keys) {
				return d, true
			}
		}
		return sql.Distribution{}, false
	case *Join:
		l, r := cws[0].provided, cws[1].provided
		switch {
		case l.IsReplicated() && r.IsReplicated():
			return l, true
		case r.IsReplicated():
			return l, true
		case l.IsReplicated():
			return r, true
		case l.IsSingle() && r.IsSingle():
			return l, true
		case l.IsPartitioned() && r.IsPartitioned():
			lkeys, rkeys, ok := joinEquiKeys(e)
			if !ok {
				return sql.Distribution{}, false
			}
			if colocated(l, r, lkeys, rkeys) {
				return l, true
			}
			return sql.Distribution{}, false
		default:
			return sql.Distribution{}, false
		}
	default:
		return sql.Distribution{}, false
	}
}

// providedOrdering derives the row ordering a member's output carries.
// Exchanges interleave streams, so enforcers reset it.
func providedOrdering(e RelExpr, cws []*winner) []sql.SortField {
	switch e := e.(type) {
	case *Sort:
		return e.Fields
	case *Filter:
		return cws[0].ordering
	case *Project:
		return cws[0].ordering
	case *Limit:
		return cws[0].ordering
	default:
		return nil
	}
}

// groupingKeys extracts the column names of a grouping list made of
// plain column references. Distribution by grouping key is only
// expressible for such lists.
func groupingKeys(grouping []sql.Expression) ([]string, bool) {
	if len(grouping) == 0 {
		return nil, false
	}
	keys := make([]string, len(grouping))
	for i, g := range grouping {
		gf, ok := g.(*expression.GetField)
		if !ok {
			return nil, false
		}
		keys[i] = strings.ToLower(gf.Name())
	}
	return keys, true
}

// joinEquiKeys extracts the column pairs of an equi-join condition,
// split by input side. Only conditions that are pure conjunctions of
// column equalities qualify.
func joinEquiKeys(e *Join) (lkeys, rkeys []string, ok bool) {
	if e.Cond == nil {
		return nil, nil, false
	}
	leftSchema := e.Left.RelProps.schema
	for _, conj := range expression.SplitConjunction(e.Cond) {
		cmp, isCmp := conj.(*expression.Comparison)
		if !isCmp || !cmp.IsEquality() {
			return nil, nil, false
		}
		a, aOk := cmp.Left.(*expression.GetField)
		b, bOk := cmp.Right.(*expression.GetField)
		if !aOk || !bOk {
			return nil, nil, false
		}
		switch {
		case schemaHasField(leftSchema, a) && !schemaHasField(leftSchema, b):
			lkeys = append(lkeys, strings.ToLower(a.Name()))
			rkeys = append(rkeys, strings.ToLower(b.Name()))
		case schemaHasField(leftSchema, b) && !schemaHasField(leftSchema, a):
			lkeys = append(lkeys, strings.ToLower(b.Name()))
			rkeys = append(rkeys, strings.ToLower(a.Name()))
		default:
			return nil, nil, false
		}
	}
	return lkeys, rkeys, len(lkeys) > 0
}

// colocated reports whether two partitioned inputs can be joined without
// movement. Hashing is positional, so it is not enough for both key sets
// to appear in the condition: key i of the left partitioning must be
// equated with key i of the right partitioning. A crosswise condition
// like l.a = r.b AND l.b = r.a over tables both partitioned by (a, b)
// sends matching rows to different members.
func colocated(l, r sql.Distribution, lkeys, rkeys []string) bool {
	if l.Members() != r.Members() {
		return false
	}
	lk, rk := l.Keys(), r.Keys()
	if len(lk) != len(rk) {
		return false
	}
	for i := range lk {
		if !pairEquated(lk[i], rk[i], lkeys, rkeys) {
			return false
		}
	}
	return true
}

// pairEquated reports whether the join condition equates lkey with rkey.
func pairEquated(lkey, rkey string, lkeys, rkeys []string) bool {
	for i := range lkeys {
		if lkeys[i] == lkey && rkeys[i] == rkey {
			return true
		}
	}
	return false
}

func schemaHasField(schema sql.Schema, gf *expression.GetField) bool {
	for _, c := range schema {
		if strings.EqualFold(c.Name, gf.Name()) && strings.EqualFold(c.Source, gf.Table()) {
			return true
		}
	}
	return false
}
