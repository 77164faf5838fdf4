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
	"math"

	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/expression"
	"github.com/gridsql/gridsql/sql/plan"
)

// Cost factors are relative weights, not wall-clock units. Network
// transfer dominates scanning, which dominates per-row CPU work.
const (
	cpuCostFactor     = 0.01
	seqIOCostFactor   = 1.0
	netCostFactor     = 4.0
	defaultFilterSel  = 0.25
	equalityFilterSel = 0.1
	joinCondSel       = 0.1
)

// Coster estimates the cost of a single relational expression, excluding
// its inputs. Backends replace the default to reflect their own
// execution characteristics.
type Coster interface {
	// EstimateCost returns the cost of executing e itself.
	EstimateCost(e RelExpr) float64
	// EstimateEnforcerCost returns the cost of one trait enforcer over
	// card input rows.
	EstimateEnforcerCost(kind EnforcerKind, card float64) float64
}

// Carder estimates the output row count of a relational expression.
type Carder interface {
	EstimateCard(e RelExpr) float64
}

// NewDefaultCoster returns the built-in cost model for a cluster of the
// given size.
func NewDefaultCoster(members int) Coster {
	if members < 1 {
		members = 1
	}
	return &defaultCoster{members: members}
}

type defaultCoster struct {
	members int
}

func (c *defaultCoster) EstimateCost(e RelExpr) float64 {
	switch e := e.(type) {
	case *TableScan:
		return e.Group().RelProps.Card() * seqIOCostFactor
	case *Filter:
		return e.Child.RelProps.Card() * cpuCostFactor
	case *Project:
		return e.Child.RelProps.Card() * float64(len(e.Projections)) * cpuCostFactor
	case *GroupBy:
		in := e.Child.RelProps.Card()
		out := e.Group().RelProps.Card()
		return (in + out) * cpuCostFactor
	case *Join:
		l := e.Left.RelProps.Card()
		r := e.Right.RelProps.Card()
		return l*r*cpuCostFactor + e.Group().RelProps.Card()*cpuCostFactor
	case *Sort:
		n := e.Child.RelProps.Card()
		if n < 2 {
			n = 2
		}
		return n * math.Log2(n) * cpuCostFactor
	case *Limit:
		return e.Group().RelProps.Card() * cpuCostFactor
	default:
		return 0
	}
}

func (c *defaultCoster) EstimateEnforcerCost(kind EnforcerKind, card float64) float64 {
	switch kind {
	case EnforceGather:
		return card * netCostFactor
	case EnforceRepartition:
		return card * netCostFactor
	case EnforceBroadcast:
		// every member receives the full input
		return card * netCostFactor * float64(c.members)
	case EnforceSort:
		n := card
		if n < 2 {
			n = 2
		}
		return n * math.Log2(n) * cpuCostFactor
	default:
		return 0
	}
}

// NewDefaultCarder returns the built-in cardinality model.
func NewDefaultCarder() Carder {
	return &defaultCarder{}
}

type defaultCarder struct{}

func (c *defaultCarder) EstimateCard(e RelExpr) float64 {
	switch e := e.(type) {
	case *TableScan:
		return float64(e.Table.Table.Statistics().RowCount())
	case *Filter:
		return math.Max(1, e.Child.RelProps.Card()*filterSelectivity(e.Cond, e.Child))
	case *Project:
		return e.Child.RelProps.Card()
	case *GroupBy:
		return groupByCard(e)
	case *Join:
		l := e.Left.RelProps.Card()
		r := e.Right.RelProps.Card()
		if e.Cond == nil {
			return l * r
		}
		return math.Max(1, l*r*joinCondSel)
	case *Sort:
		return e.Child.RelProps.Card()
	case *Limit:
		return math.Min(float64(e.Count), e.Child.RelProps.Card())
	default:
		return 1
	}
}

func groupByCard(e *GroupBy) float64 {
	in := e.Child.RelProps.Card()
	if len(e.Grouping) == 0 {
		// global aggregation; partial phases emit one row per member
		if e.Phase == plan.AggPartial {
			return math.Min(in, float64(e.Group().m.members))
		}
		return 1
	}
	groups := math.Max(1, in/3)
	if d, ok := groupingDistinct(e); ok {
		groups = math.Min(groups, d)
	}
	if e.Phase == plan.AggPartial {
		return math.Min(in, groups*float64(e.Group().m.members))
	}
	return groups
}

// groupingDistinct estimates the number of groups from table statistics
// when the grouping keys are plain columns over a scan.
func groupingDistinct(e *GroupBy) (float64, bool) {
	scan := scanBelow(e.Child)
	if scan == nil {
		return 0, false
	}
	stats := scan.Table.Table.Statistics()
	total := 1.0
	for _, g := range e.Grouping {
		gf, ok := g.(*expression.GetField)
		if !ok {
			return 0, false
		}
		d, ok := stats.DistinctCount(gf.Name())
		if !ok {
			return 0, false
		}
		total *= float64(d)
	}
	return total, true
}

// filterSelectivity estimates the fraction of rows a condition keeps.
// Equality over a column with known distinct counts uses 1/distinct;
// other predicates fall back to fixed heuristics.
func filterSelectivity(cond sql.Expression, child *ExprGroup) float64 {
	switch e := cond.(type) {
	case *expression.And:
		return filterSelectivity(e.Left, child) * filterSelectivity(e.Right, child)
	case *expression.Or:
		s := filterSelectivity(e.Left, child) + filterSelectivity(e.Right, child)
		return math.Min(s, 1)
	case *expression.Not:
		return 1 - filterSelectivity(e.Child, child)
	case *expression.Comparison:
		if !e.IsEquality() {
			return defaultFilterSel
		}
		if sel, ok := equalitySelectivity(e, child); ok {
			return sel
		}
		return equalityFilterSel
	default:
		return defaultFilterSel
	}
}

func equalitySelectivity(e *expression.Comparison, child *ExprGroup) (float64, bool) {
	var col *expression.GetField
	if gf, ok := e.Left.(*expression.GetField); ok {
		col = gf
	} else if gf, ok := e.Right.(*expression.GetField); ok {
		col = gf
	} else {
		return 0, false
	}
	scan := scanBelow(child)
	if scan == nil {
		return 0, false
	}
	d, ok := scan.Table.Table.Statistics().DistinctCount(col.Name())
	if !ok || d == 0 {
		return 0, false
	}
	return 1 / float64(d), true
}

// scanBelow returns the table scan feeding a group through filters and
// projections, if there is exactly one such path.
func scanBelow(g *ExprGroup) *TableScan {
	switch e := g.First.(type) {
	case *TableScan:
		return e
	case *Filter:
		return scanBelow(e.Child)
	case *Project:
		return scanBelow(e.Child)
	default:
		return nil
	}
}
