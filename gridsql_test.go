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

package gridsql

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridsql/gridsql/memory"
	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/expression/function"
	"github.com/gridsql/gridsql/sql/memo"
	"github.com/gridsql/gridsql/sql/plan"
	"github.com/gridsql/gridsql/sql/planbuilder"
	"github.com/gridsql/gridsql/sql/types"
)

func testCatalog() *memory.Catalog {
	cat := memory.NewCatalog()
	cat.AddTable([]string{"public"}, memory.NewTable("orders", sql.Schema{
		{Name: "id", Type: types.Int64},
		{Name: "customer_id", Type: types.Int64},
		{Name: "amount", Type: types.Float64},
		{Name: "region", Type: types.Text},
	}, sql.PartitionedDistribution(4, "customer_id")).WithStatistics(memory.TableStats{
		Rows:     10000,
		Distinct: map[string]uint64{"customer_id": 1000, "region": 20},
	}))
	cat.AddTable([]string{"public"}, memory.NewTable("customers", sql.Schema{
		{Name: "id", Type: types.Int64},
		{Name: "name", Type: types.Text, Nullable: true},
	}, sql.ReplicatedDistribution()))
	return cat
}

func newTestContext(t *testing.T, cfg Config) *OptimizerContext {
	t.Helper()
	if cfg.Catalog == nil {
		cfg.Catalog = testCatalog()
	}
	if cfg.MemberCount == 0 {
		cfg.MemberCount = 4
	}
	o, err := NewOptimizerContext(sql.NewEmptyContext(), cfg)
	require.NoError(t, err)
	return o
}

func planExchanges(n sql.Node) []*plan.Exchange {
	var out []*plan.Exchange
	sql.InspectNode(n, func(n sql.Node) bool {
		if e, ok := n.(*plan.Exchange); ok {
			out = append(out, e)
		}
		return true
	})
	return out
}

func TestCompileQueryEndToEnd(t *testing.T) {
	o := newTestContext(t, Config{})
	physical, err := o.CompileQuery(
		"SELECT region, sum(amount) FROM orders GROUP BY region")
	require.NoError(t, err)
	require.True(t, physical.Resolved())

	// the projection stays on top; optimization must not hand back an
	// inner operator of the plan
	_, ok := physical.(*plan.Project)
	require.True(t, ok)

	schema := physical.Schema()
	require.Len(t, schema, 2)
	require.Equal(t, "region", schema[0].Name)
	require.True(t, types.Float64.Equals(schema[1].Type))

	// the table is spread over four members, so something has to move
	require.NotEmpty(t, planExchanges(physical))
}

func TestCompileQuerySingleMember(t *testing.T) {
	cat := memory.NewCatalog()
	cat.AddTable([]string{"public"}, memory.NewTable("t", sql.Schema{
		{Name: "a", Type: types.Int64},
	}, sql.SingleDistribution()))
	o := newTestContext(t, Config{Catalog: cat, MemberCount: 1})

	physical, err := o.CompileQuery("SELECT a FROM t WHERE a > 0")
	require.NoError(t, err)
	require.Empty(t, planExchanges(physical))
}

func TestNewContextRequiresCatalog(t *testing.T) {
	_, err := NewOptimizerContext(sql.NewEmptyContext(), Config{})
	require.Error(t, err)
	require.True(t, sql.ErrInternal.Is(err))
}

func TestContextDefaults(t *testing.T) {
	o, err := NewOptimizerContext(nil, Config{Catalog: testCatalog()})
	require.NoError(t, err)
	require.Equal(t, 1, o.Members())

	// the default search path finds tables in "public"
	_, err = o.CompileQuery("SELECT id FROM orders")
	require.NoError(t, err)
}

func TestCatalogSnapshotIsolation(t *testing.T) {
	cat := testCatalog()
	o := newTestContext(t, Config{Catalog: cat})

	cat.DropTable([]string{"public"}, "orders")

	// the context planned against the snapshot taken at creation
	_, err := o.CompileQuery("SELECT id FROM orders")
	require.NoError(t, err)

	// a fresh context sees the mutation
	o2 := newTestContext(t, Config{Catalog: cat})
	_, err = o2.CompileQuery("SELECT id FROM orders")
	require.True(t, sql.ErrTableNotFound.Is(err))
}

func TestBudgetPropagation(t *testing.T) {
	o := newTestContext(t, Config{Budget: 1})
	_, err := o.CompileQuery("SELECT id FROM orders")
	require.Error(t, err)
	require.True(t, sql.ErrBudgetExceeded.Is(err))
}

func TestOptimizeWithoutEnforcersFails(t *testing.T) {
	o := newTestContext(t, Config{})
	stmt, err := o.Parse("SELECT id FROM orders")
	require.NoError(t, err)
	bound, err := o.Validate("SELECT id FROM orders", stmt)
	require.NoError(t, err)
	logical, err := o.Convert(bound)
	require.NoError(t, err)

	_, _, err = o.Optimize(logical, memo.RuleSet{}, memo.OnSingle())
	require.Error(t, err)
	require.True(t, sql.ErrPlanNotFound.Is(err))
}

func TestParseErrorSurfaces(t *testing.T) {
	o := newTestContext(t, Config{})
	_, err := o.CompileQuery("SELECT FROM WHERE")
	require.True(t, sql.ErrSyntax.Is(err))
}

func TestValidationErrorSurfaces(t *testing.T) {
	o := newTestContext(t, Config{})
	_, err := o.CompileQuery("SELECT no_such_column FROM orders")
	require.True(t, sql.ErrColumnNotFound.Is(err))
}

type testBackend struct{}

func (testBackend) Name() string { return "test" }

func (testBackend) Functions() *function.Registry {
	return function.NewRegistry(
		function.Def{Name: "member_id", MinArgs: 0, MaxArgs: 0,
			Type: func(args []sql.Expression) (sql.Type, error) {
				return types.Int64, nil
			}},
		// shadows the built-in
		function.Def{Name: "upper", MinArgs: 1, MaxArgs: 1,
			Type: func(args []sql.Expression) (sql.Type, error) {
				return types.Int64, nil
			}},
	)
}

func (testBackend) ValidateSelect(bound *planbuilder.BoundSelect) error { return nil }

func (testBackend) Rules() []memo.Rule { return []memo.Rule{noopRule{}} }

type noopRule struct{}

func (noopRule) Apply(m *memo.Memo, e memo.RelExpr) (bool, error) { return false, nil }

func TestBackendExtension(t *testing.T) {
	o := newTestContext(t, Config{Backend: testBackend{}})

	physical, err := o.CompileQuery("SELECT member_id() FROM customers")
	require.NoError(t, err)
	require.True(t, types.Int64.Equals(physical.Schema()[0].Type))

	// backend definitions take precedence over built-ins
	physical, err = o.CompileQuery("SELECT upper(id) FROM customers")
	require.NoError(t, err)
	require.True(t, types.Int64.Equals(physical.Schema()[0].Type))

	base := memo.DefaultRuleSet()
	require.Len(t, o.DefaultRules().Transforms, len(base.Transforms)+1)
}

// boundedBackend rejects queries without a LIMIT clause.
type boundedBackend struct {
	testBackend
}

func (boundedBackend) ValidateSelect(bound *planbuilder.BoundSelect) error {
	if !bound.HasLimit {
		return sql.ErrUnsupportedFeature.New("unbounded result sets")
	}
	return nil
}

func TestBackendValidationHook(t *testing.T) {
	o := newTestContext(t, Config{Backend: boundedBackend{}})

	_, err := o.CompileQuery("SELECT id FROM orders")
	require.True(t, sql.ErrUnsupportedFeature.Is(err))

	_, err = o.CompileQuery("SELECT id FROM orders ORDER BY id LIMIT 1")
	require.NoError(t, err)
}
