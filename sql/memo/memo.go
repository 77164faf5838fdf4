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

// Package memo implements the cost-based planner. A logical plan is
// inserted into a memo of equivalence classes, transformation rules
// expand each class with alternatives, and a top-down search picks the
// cheapest implementation that satisfies the required physical traits,
// inserting exchanges and sorts where the traits cannot be met
// natively. The search is bounded by a step budget.
package memo

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/plan"
)

// Memo is the search state for one optimization: the set of equivalence
// classes, the cost model, and the exploration budget.
type Memo struct {
	cnt    GroupID
	root   *ExprGroup
	groups []*ExprGroup

	coster  Coster
	carder  Carder
	members int

	budget int
	steps  int

	interner map[uint64]*ExprGroup
}

// NewMemo creates an empty memo. members is the cluster size used for
// partitioned traits and exchange costing. A budget of zero or less
// means unbounded.
func NewMemo(members, budget int, coster Coster, carder Carder) *Memo {
	if coster == nil {
		coster = NewDefaultCoster(members)
	}
	if carder == nil {
		carder = NewDefaultCarder()
	}
	return &Memo{
		coster:   coster,
		carder:   carder,
		members:  members,
		budget:   budget,
		interner: make(map[uint64]*ExprGroup),
	}
}

// Root returns the root equivalence class, set by the first InsertNode.
func (m *Memo) Root() *ExprGroup { return m.root }

// Members returns the cluster size the memo plans for.
func (m *Memo) Members() int { return m.members }

// chargeStep consumes one unit of the exploration budget.
func (m *Memo) chargeStep() error {
	m.steps++
	if m.budget > 0 && m.steps > m.budget {
		return sql.ErrBudgetExceeded.New(m.budget)
	}
	return nil
}

// InsertNode inserts a logical plan, returning its group. The group of
// the first inserted tree becomes the memo root; the recursion memoizes
// children first, so the root must be taken from the outermost result,
// not from the first group created.
func (m *Memo) InsertNode(n sql.Node) (*ExprGroup, error) {
	g, err := m.insertNode(n)
	if err != nil {
		return nil, err
	}
	if m.root == nil {
		m.root = g
	}
	return g, nil
}

func (m *Memo) insertNode(n sql.Node) (*ExprGroup, error) {
	var e RelExpr
	switch n := n.(type) {
	case *plan.ResolvedTable:
		e = &TableScan{Table: n}
	case *plan.Filter:
		child, err := m.insertNode(n.Child)
		if err != nil {
			return nil, err
		}
		e = &Filter{Child: child, Cond: n.Expression}
	case *plan.Project:
		child, err := m.insertNode(n.Child)
		if err != nil {
			return nil, err
		}
		e = &Project{Child: child, Projections: n.Projections}
	case *plan.GroupBy:
		child, err := m.insertNode(n.Child)
		if err != nil {
			return nil, err
		}
		e = &GroupBy{Child: child, Selected: n.SelectedExprs, Grouping: n.GroupByExprs, Phase: n.Phase}
	case *plan.InnerJoin:
		left, err := m.insertNode(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := m.insertNode(n.Right)
		if err != nil {
			return nil, err
		}
		e = &Join{Left: left, Right: right, Cond: n.Cond}
	case *plan.Sort:
		child, err := m.insertNode(n.Child)
		if err != nil {
			return nil, err
		}
		e = &Sort{Child: child, Fields: n.SortFields}
	case *plan.Limit:
		child, err := m.insertNode(n.Child)
		if err != nil {
			return nil, err
		}
		e = &Limit{Child: child, Count: n.Count, Offset: n.Offset}
	default:
		return nil, sql.ErrInternal.New(fmt.Sprintf("cannot memoize plan node %T", n))
	}
	return m.memoize(e)
}

// memoize interns an expression: if an identical member already exists
// anywhere in the memo its group is returned, otherwise a new group is
// created.
func (m *Memo) memoize(e RelExpr) (*ExprGroup, error) {
	h := relHash(e)
	if g, ok := m.interner[h]; ok {
		return g, nil
	}
	if err := m.chargeStep(); err != nil {
		return nil, err
	}
	m.cnt++
	g := newExprGroup(m, m.cnt, e)
	m.groups = append(m.groups, g)
	m.interner[h] = g
	return g, nil
}

// addToGroup adds an equivalent expression to an existing group. It
// reports whether the memo changed; a duplicate of a known member is
// dropped.
func (m *Memo) addToGroup(e RelExpr, g *ExprGroup) (bool, error) {
	h := relHash(e)
	if _, ok := m.interner[h]; ok {
		return false, nil
	}
	if err := m.chargeStep(); err != nil {
		return false, err
	}
	g.Prepend(e)
	m.interner[h] = g
	return true, nil
}

// Explore applies the transformation rules to every member of every
// group until a fixed point, growing classes with logically equivalent
// alternatives.
func (m *Memo) Explore(rules RuleSet) error {
	for changed := true; changed; {
		changed = false
		for i := 0; i < len(m.groups); i++ {
			g := m.groups[i]
			for e := g.First; e != nil; e = e.Next() {
				for _, r := range rules.Transforms {
					added, err := r.Apply(m, e)
					if err != nil {
						return err
					}
					changed = changed || added
				}
			}
		}
	}
	return nil
}

func (m *Memo) String() string {
	var b strings.Builder
	for i := len(m.groups) - 1; i >= 0; i-- {
		b.WriteString(m.groups[i].String())
		b.WriteByte('\n')
	}
	return b.String()
}

// relHash identifies a member expression by its shape: operator, scalar
// expressions, and child group ids. Used to deduplicate rule output.
func relHash(e RelExpr) uint64 {
	var b strings.Builder
	switch e := e.(type) {
	case *TableScan:
		fmt.Fprintf(&b, "scan|%s", e.Table.Name())
	case *Filter:
		fmt.Fprintf(&b, "filter|%d|%s", e.Child.Id, e.Cond)
	case *Project:
		fmt.Fprintf(&b, "project|%d|%s", e.Child.Id, exprsString(e.Projections))
	case *GroupBy:
		fmt.Fprintf(&b, "groupby|%d|%d|%s|%s", e.Child.Id, e.Phase, exprsString(e.Selected), exprsString(e.Grouping))
	case *Join:
		fmt.Fprintf(&b, "join|%d|%d|%v", e.Left.Id, e.Right.Id, e.Cond)
	case *Sort:
		fields := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			fields[i] = f.String()
		}
		fmt.Fprintf(&b, "sort|%d|%s", e.Child.Id, strings.Join(fields, ","))
	case *Limit:
		fmt.Fprintf(&b, "limit|%d|%d|%d", e.Child.Id, e.Count, e.Offset)
	}
	return xxhash.Sum64String(b.String())
}
