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
)

// GroupID is the index of an equivalence class in the memo.
type GroupID uint32

// ExprGroup is an equivalence class of relational expressions that all
// produce the same rows. Members form a singly linked list headed at
// First. Winners are the cheapest implementations found so far, one per
// required trait set, so the same class can carry different best plans
// for different parents.
type ExprGroup struct {
	m        *Memo
	Id       GroupID
	First    RelExpr
	RelProps *relProps

	winners map[uint64]*winner
}

func newExprGroup(m *Memo, id GroupID, e RelExpr) *ExprGroup {
	g := &ExprGroup{
		m:       m,
		Id:      id,
		First:   e,
		winners: make(map[uint64]*winner),
	}
	e.SetGroup(g)
	g.RelProps = newRelProps(g)
	return g
}

// Prepend adds an equivalent expression to the head of the member list.
func (g *ExprGroup) Prepend(e RelExpr) {
	e.SetNext(g.First)
	g.First = e
	e.SetGroup(g)
}

// Len returns the number of member expressions.
func (g *ExprGroup) Len() int {
	n := 0
	for e := g.First; e != nil; e = e.Next() {
		n++
	}
	return n
}

func (g *ExprGroup) String() string {
	var members []string
	for e := g.First; e != nil; e = e.Next() {
		members = append(members, e.String())
	}
	return fmt.Sprintf("G%d: [%s]", g.Id, strings.Join(members, " | "))
}

// relProps are the logical properties shared by every member of a group:
// the output schema and the cardinality estimate. Both are derived from
// the first (logical) member.
type relProps struct {
	grp    *ExprGroup
	schema sql.Schema

	card      float64
	cardKnown bool
}

func newRelProps(g *ExprGroup) *relProps {
	return &relProps{grp: g, schema: relSchema(g.First)}
}

// Card returns the estimated output row count of the group.
func (p *relProps) Card() float64 {
	if !p.cardKnown {
		p.card = p.grp.m.carder.EstimateCard(p.grp.First)
		p.cardKnown = true
	}
	return p.card
}

// winner is the cheapest known implementation of a group for one
// required trait set. It pins the chosen member, the winners picked for
// its children, and the enforcers layered on top.
type winner struct {
	expr     RelExpr
	children []*winner
	// enforcers are applied bottom-up on top of expr's output.
	enforcers []enforcerStep

	provided sql.Distribution
	ordering []sql.SortField

	cost      float64
	exchanges int
	nodes     int
}

func (w *winner) satisfies(req Required) bool {
	return w.provided.Satisfies(req.Dist) && orderingSatisfies(w.ordering, req.Ordering)
}

// better implements the plan preference order: lower cost wins, then
// fewer exchanges, then fewer plan nodes. The last two make the choice
// deterministic between cost ties.
func (w *winner) better(o *winner) bool {
	if o == nil {
		return true
	}
	if w.cost != o.cost {
		return w.cost < o.cost
	}
	if w.exchanges != o.exchanges {
		return w.exchanges < o.exchanges
	}
	return w.nodes < o.nodes
}

// enforcerStep is one trait-enforcing operator to wrap around a winner's
// output when building the physical plan.
type enforcerStep struct {
	kind EnforcerKind
	keys []string
	// fields is set for sort steps.
	fields []sql.SortField
}

// EnforcerKind identifies a trait-enforcing operator for costing.
type EnforcerKind byte

const (
	EnforceGather EnforcerKind = iota
	EnforceRepartition
	EnforceBroadcast
	EnforceSort
)
