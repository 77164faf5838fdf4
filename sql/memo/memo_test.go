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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridsql/gridsql/memory"
	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/expression"
	"github.com/gridsql/gridsql/sql/expression/function"
	"github.com/gridsql/gridsql/sql/parse"
	"github.com/gridsql/gridsql/sql/plan"
	"github.com/gridsql/gridsql/sql/planbuilder"
	"github.com/gridsql/gridsql/sql/types"
)

// clusterCatalog has a fact table partitioned by a over four members, a
// replicated dimension table, and a single-member table.
func clusterCatalog() *memory.Catalog {
	cat := memory.NewCatalog()
	cat.AddTable([]string{"public"}, memory.NewTable("t", sql.Schema{
		{Name: "a", Type: types.Int64},
		{Name: "b", Type: types.Int64},
		{Name: "x", Type: types.Int64},
	}, sql.PartitionedDistribution(4, "a")).WithStatistics(memory.TableStats{
		Rows:     1000,
		Distinct: map[string]uint64{"a": 100, "b": 10},
	}))
	cat.AddTable([]string{"public"}, memory.NewTable("r", sql.Schema{
		{Name: "id", Type: types.Int64},
		{Name: "label", Type: types.Text},
	}, sql.ReplicatedDistribution()).WithStatistics(memory.TableStats{Rows: 50}))
	cat.AddTable([]string{"public"}, memory.NewTable("s", sql.Schema{
		{Name: "a", Type: types.Int64},
		{Name: "b", Type: types.Int64},
	}, sql.SingleDistribution()).WithStatistics(memory.TableStats{Rows: 100}))
	return cat
}

func buildLogical(t *testing.T, query string, cat sql.Catalog) sql.Node {
	t.Helper()
	ctx := sql.NewEmptyContext()
	opts := parse.Options{}
	stmt, err := parse.Parse(ctx, query, opts)
	require.NoError(t, err)
	bound, err := planbuilder.New(ctx, cat, [][]string{{"public"}}, function.Defaults(), opts, query).BindSelect(stmt)
	require.NoError(t, err)
	node, err := planbuilder.Convert(bound)
	require.NoError(t, err)
	return node
}

func optimizeQuery(t *testing.T, query string, members int, rules RuleSet, required Required) (sql.Node, float64, error) {
	t.Helper()
	logical := buildLogical(t, query, clusterCatalog())
	m := NewMemo(members, 0, nil, nil)
	_, err := m.InsertNode(logical)
	require.NoError(t, err)
	return m.Optimize(rules, required)
}

func exchanges(n sql.Node) []*plan.Exchange {
	var out []*plan.Exchange
	sql.InspectNode(n, func(n sql.Node) bool {
		if e, ok := n.(*plan.Exchange); ok {
			out = append(out, e)
		}
		return true
	})
	return out
}

func groupBysWithPhase(n sql.Node, phase plan.AggregationPhase) []*plan.GroupBy {
	var out []*plan.GroupBy
	sql.InspectNode(n, func(n sql.Node) bool {
		if g, ok := n.(*plan.GroupBy); ok && g.Phase == phase {
			out = append(out, g)
		}
		return true
	})
	return out
}

func TestSingleMemberPlanHasNoExchanges(t *testing.T) {
	physical, cost, err := optimizeQuery(t,
		"SELECT a FROM s WHERE b = 1", 1, DefaultRuleSet(), OnSingle())
	require.NoError(t, err)
	require.Greater(t, cost, 0.0)
	require.Empty(t, exchanges(physical))

	project, ok := physical.(*plan.Project)
	require.True(t, ok)
	_, ok = project.Child.(*plan.Filter)
	require.True(t, ok)
}

func TestGroupByPartitionKeyAggregatesInPlace(t *testing.T) {
	physical, _, err := optimizeQuery(t,
		"SELECT a, sum(x) FROM t GROUP BY a", 4, DefaultRuleSet(), OnSingle())
	require.NoError(t, err)

	// grouping by the partition key never splits a group across
	// members, so the aggregation runs where the rows are and only the
	// results are gathered
	ex := exchanges(physical)
	require.Len(t, ex, 1)
	require.Equal(t, plan.ExchangeGather, ex[0].Mode)
	require.Empty(t, groupBysWithPhase(physical, plan.AggPartial))

	complete := groupBysWithPhase(physical, plan.AggComplete)
	require.Len(t, complete, 1)
	_, ok := complete[0].Child.(*plan.ResolvedTable)
	require.True(t, ok)
}

func TestGroupByNonKeySplitsAggregation(t *testing.T) {
	physical, _, err := optimizeQuery(t,
		"SELECT b, sum(x) FROM t GROUP BY b", 4, DefaultRuleSet(), OnSingle())
	require.NoError(t, err)

	require.Len(t, groupBysWithPhase(physical, plan.AggPartial), 1)
	require.Len(t, groupBysWithPhase(physical, plan.AggFinal), 1)
	require.NotEmpty(t, exchanges(physical))
}

func TestGlobalAggregationSplits(t *testing.T) {
	physical, _, err := optimizeQuery(t,
		"SELECT sum(x), count(*) FROM t", 4, DefaultRuleSet(), OnSingle())
	require.NoError(t, err)

	require.Len(t, groupBysWithPhase(physical, plan.AggPartial), 1)
	require.Len(t, groupBysWithPhase(physical, plan.AggFinal), 1)
	ex := exchanges(physical)
	require.Len(t, ex, 1)
	require.Equal(t, plan.ExchangeGather, ex[0].Mode)
}

func TestAvgIsNotSplit(t *testing.T) {
	physical, _, err := optimizeQuery(t,
		"SELECT avg(x) FROM t", 4, DefaultRuleSet(), OnSingle())
	require.NoError(t, err)

	require.Empty(t, groupBysWithPhase(physical, plan.AggPartial))
	require.Len(t, groupBysWithPhase(physical, plan.AggComplete), 1)
}

func TestJoinWithReplicatedTableIsLocal(t *testing.T) {
	physical, _, err := optimizeQuery(t,
		"SELECT t.a, r.label FROM t JOIN r ON t.x = r.id", 4, DefaultRuleSet(), OnSingle())
	require.NoError(t, err)

	// the replicated side is already everywhere; only the final gather
	// moves rows
	ex := exchanges(physical)
	require.Len(t, ex, 1)
	require.Equal(t, plan.ExchangeGather, ex[0].Mode)
}

func TestLimitRunsOnSingleStream(t *testing.T) {
	physical, _, err := optimizeQuery(t,
		"SELECT a FROM t ORDER BY a LIMIT 5", 4, DefaultRuleSet(), OnSingle())
	require.NoError(t, err)

	limit, ok := physical.(*plan.Limit)
	require.True(t, ok)
	ex := exchanges(physical)
	require.Len(t, ex, 1)
	require.Equal(t, plan.ExchangeGather, ex[0].Mode)
	_ = limit
}

func TestPlanNotFoundWithoutEnforcers(t *testing.T) {
	_, _, err := optimizeQuery(t,
		"SELECT a FROM t", 4, RuleSet{}, OnSingle())
	require.Error(t, err)
	require.True(t, sql.ErrPlanNotFound.Is(err))
}

func TestBudgetExceededDuringInsert(t *testing.T) {
	logical := buildLogical(t, "SELECT a FROM t", clusterCatalog())
	m := NewMemo(4, 1, nil, nil)
	_, err := m.InsertNode(logical)
	require.Error(t, err)
	require.True(t, sql.ErrBudgetExceeded.Is(err))
}

func TestBudgetExceededDuringSearch(t *testing.T) {
	logical := buildLogical(t, "SELECT a FROM t", clusterCatalog())
	m := NewMemo(4, 3, nil, nil)
	_, err := m.InsertNode(logical)
	require.NoError(t, err)
	_, _, err = m.Optimize(DefaultRuleSet(), OnSingle())
	require.Error(t, err)
	require.True(t, sql.ErrBudgetExceeded.Is(err))
}

func TestOptimizeIsIdempotent(t *testing.T) {
	logical := buildLogical(t, "SELECT b, sum(x) FROM t GROUP BY b", clusterCatalog())
	m := NewMemo(4, 0, nil, nil)
	_, err := m.InsertNode(logical)
	require.NoError(t, err)

	first, cost1, err := m.Optimize(DefaultRuleSet(), OnSingle())
	require.NoError(t, err)
	second, cost2, err := m.Optimize(DefaultRuleSet(), OnSingle())
	require.NoError(t, err)
	require.Equal(t, cost1, cost2)
	require.Equal(t, first.String(), second.String())
}

func TestTwoPhaseRuleNeverIncreasesCost(t *testing.T) {
	enforcersOnly := RuleSet{Enforcers: DefaultRuleSet().Enforcers}
	queries := []string{
		"SELECT b, sum(x) FROM t GROUP BY b",
		"SELECT a, sum(x) FROM t GROUP BY a",
		"SELECT count(*) FROM t",
	}
	for _, q := range queries {
		_, without, err := optimizeQuery(t, q, 4, enforcersOnly, OnSingle())
		require.NoError(t, err, q)
		_, with, err := optimizeQuery(t, q, 4, DefaultRuleSet(), OnSingle())
		require.NoError(t, err, q)
		require.LessOrEqual(t, with, without, q)
	}
}

func TestWinnerPreferenceOrder(t *testing.T) {
	cheap := &winner{cost: 1, exchanges: 3, nodes: 9}
	pricey := &winner{cost: 2, exchanges: 0, nodes: 1}
	require.True(t, cheap.better(pricey))
	require.False(t, pricey.better(cheap))

	fewerExchanges := &winner{cost: 1, exchanges: 1, nodes: 9}
	require.True(t, fewerExchanges.better(cheap))

	fewerNodes := &winner{cost: 1, exchanges: 1, nodes: 5}
	require.True(t, fewerNodes.better(fewerExchanges))

	require.True(t, cheap.better(nil))
}

func fieldRef(i int, name string) sql.Expression {
	return expression.NewGetField(i, types.Int64, "t", name, false)
}

func TestOrderingSatisfies(t *testing.T) {
	a := sql.SortField{Column: fieldRef(0, "a"), Order: sql.Ascending}
	b := sql.SortField{Column: fieldRef(1, "b"), Order: sql.Descending}

	require.True(t, orderingSatisfies(nil, nil))
	require.True(t, orderingSatisfies([]sql.SortField{a, b}, []sql.SortField{a}))
	require.False(t, orderingSatisfies([]sql.SortField{a}, []sql.SortField{a, b}))
	require.False(t, orderingSatisfies([]sql.SortField{b}, []sql.SortField{a}))
	aDesc := sql.SortField{Column: a.Column, Order: sql.Descending}
	require.False(t, orderingSatisfies([]sql.SortField{a}, []sql.SortField{aDesc}))
}

func TestRequiredKeyDistinguishesTraits(t *testing.T) {
	single := OnSingle()
	part := Required{Dist: sql.PartitionedDistribution(4, "a")}
	require.NotEqual(t, single.key(), part.key())
	require.Equal(t, part.key(), Required{Dist: sql.PartitionedDistribution(4, "A")}.key())
}

func TestInsertNodeRootIsTopOperator(t *testing.T) {
	logical := buildLogical(t,
		"SELECT t.a, r.label FROM t JOIN r ON t.x = r.id", clusterCatalog())
	m := NewMemo(4, 0, nil, nil)
	g, err := m.InsertNode(logical)
	require.NoError(t, err)

	// children are memoized before their parents, but the root must be
	// the inserted tree's top operator, not the first leaf reached
	require.Same(t, g, m.Root())
	_, ok := m.Root().First.(*Project)
	require.True(t, ok)

	physical, _, err := m.Optimize(DefaultRuleSet(), OnSingle())
	require.NoError(t, err)
	project, ok := physical.(*plan.Project)
	require.True(t, ok)
	require.Len(t, project.Schema(), 2)
	join := false
	sql.InspectNode(physical, func(n sql.Node) bool {
		if _, ok := n.(*plan.InnerJoin); ok {
			join = true
		}
		return true
	})
	require.True(t, join)
}

// crossKeyCatalog holds two tables hash-partitioned by (a, b).
func crossKeyCatalog() *memory.Catalog {
	cat := memory.NewCatalog()
	schema := sql.Schema{
		{Name: "a", Type: types.Int64},
		{Name: "b", Type: types.Int64},
	}
	cat.AddTable([]string{"public"}, memory.NewTable("l", schema,
		sql.PartitionedDistribution(4, "a", "b")).WithStatistics(memory.TableStats{Rows: 1000}))
	cat.AddTable([]string{"public"}, memory.NewTable("r", schema,
		sql.PartitionedDistribution(4, "a", "b")).WithStatistics(memory.TableStats{Rows: 1000}))
	return cat
}

func TestAlignedKeyJoinIsColocated(t *testing.T) {
	logical := buildLogical(t,
		"SELECT l.a FROM l JOIN r ON l.a = r.a AND l.b = r.b", crossKeyCatalog())
	m := NewMemo(4, 0, nil, nil)
	_, err := m.InsertNode(logical)
	require.NoError(t, err)

	physical, _, err := m.Optimize(DefaultRuleSet(), Any())
	require.NoError(t, err)
	require.Empty(t, exchanges(physical))
}

func TestCrossKeyJoinIsNotColocated(t *testing.T) {
	// both sides hash columns a and b, but the condition pairs them
	// crosswise: a left row (1,2) matches a right row (2,1), which lives
	// on a different member, so rows must move
	logical := buildLogical(t,
		"SELECT l.a FROM l JOIN r ON l.a = r.b AND l.b = r.a", crossKeyCatalog())
	m := NewMemo(4, 0, nil, nil)
	_, err := m.InsertNode(logical)
	require.NoError(t, err)

	physical, _, err := m.Optimize(DefaultRuleSet(), Any())
	require.NoError(t, err)
	require.NotEmpty(t, exchanges(physical))
}

func TestMemoDeduplicatesEquivalentInsertions(t *testing.T) {
	logical := buildLogical(t, "SELECT a FROM t", clusterCatalog())
	m := NewMemo(4, 0, nil, nil)
	g1, err := m.InsertNode(logical)
	require.NoError(t, err)
	g2, err := m.InsertNode(logical)
	require.NoError(t, err)
	require.Equal(t, g1.Id, g2.Id)
}
