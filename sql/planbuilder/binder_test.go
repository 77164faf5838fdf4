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

package planbuilder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridsql/gridsql/memory"
	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/expression/function"
	"github.com/gridsql/gridsql/sql/parse"
	"github.com/gridsql/gridsql/sql/types"
)

func testCatalog() *memory.Catalog {
	cat := memory.NewCatalog()
	cat.AddTable([]string{"public"}, memory.NewTable("orders", sql.Schema{
		{Name: "id", Type: types.Int64},
		{Name: "customer_id", Type: types.Int64},
		{Name: "amount", Type: types.Float64},
		{Name: "region", Type: types.Text},
	}, sql.PartitionedDistribution(4, "customer_id")))
	cat.AddTable([]string{"public"}, memory.NewTable("customers", sql.Schema{
		{Name: "id", Type: types.Int64},
		{Name: "name", Type: types.Text, Nullable: true},
	}, sql.ReplicatedDistribution()))
	cat.AddTable([]string{"archive"}, memory.NewTable("orders", sql.Schema{
		{Name: "id", Type: types.Int64},
		{Name: "note", Type: types.Text},
	}, sql.SingleDistribution()))
	return cat
}

func bindQuery(t *testing.T, query string, paths [][]string, funcs *function.Registry) (*BoundSelect, error) {
	t.Helper()
	ctx := sql.NewEmptyContext()
	opts := parse.Options{}
	stmt, err := parse.Parse(ctx, query, opts)
	require.NoError(t, err)
	if paths == nil {
		paths = [][]string{{"public"}}
	}
	if funcs == nil {
		funcs = function.Defaults()
	}
	return New(ctx, testCatalog(), paths, funcs, opts, query).BindSelect(stmt)
}

func TestBindSimpleSelect(t *testing.T) {
	bound, err := bindQuery(t, "SELECT id, amount FROM orders WHERE amount > 10", nil, nil)
	require.NoError(t, err)
	require.NotNil(t, bound.Where)
	require.False(t, bound.Grouped)
	require.Len(t, bound.Projections, 2)
	require.True(t, types.Int64.Equals(bound.OutputSchema[0].Type))
	require.True(t, types.Float64.Equals(bound.OutputSchema[1].Type))
}

func TestBindStarExpansion(t *testing.T) {
	bound, err := bindQuery(t, "SELECT * FROM customers", nil, nil)
	require.NoError(t, err)
	require.Len(t, bound.Projections, 2)
	require.Equal(t, "id", bound.OutputSchema[0].Name)
	require.Equal(t, "name", bound.OutputSchema[1].Name)
}

func TestBindSearchPathOrder(t *testing.T) {
	// archive shadows public, so the unqualified name picks up the
	// archive table's schema
	bound, err := bindQuery(t, "SELECT note FROM orders",
		[][]string{{"archive"}, {"public"}}, nil)
	require.NoError(t, err)
	require.Equal(t, "note", bound.OutputSchema[0].Name)

	// a qualified reference skips the search path
	bound, err = bindQuery(t, "SELECT amount FROM public.orders",
		[][]string{{"archive"}, {"public"}}, nil)
	require.NoError(t, err)
	require.Equal(t, "amount", bound.OutputSchema[0].Name)

	_, err = bindQuery(t, "SELECT note FROM archive.nope",
		[][]string{{"archive"}}, nil)
	require.True(t, sql.ErrTableNotFound.Is(err))
}

func TestBindTableNotFound(t *testing.T) {
	_, err := bindQuery(t, "SELECT x FROM missing_table", nil, nil)
	require.True(t, sql.ErrTableNotFound.Is(err))
	require.Contains(t, err.Error(), "missing_table")
}

func TestBindColumnNotFoundReportsPosition(t *testing.T) {
	_, err := bindQuery(t, "SELECT missing FROM orders", nil, nil)
	require.True(t, sql.ErrColumnNotFound.Is(err))
	require.Contains(t, err.Error(), `"missing"`)
	// "SELECT " is seven bytes, so the identifier starts at position 8
	require.Contains(t, err.Error(), "position 8")
}

func TestBindAmbiguousColumn(t *testing.T) {
	_, err := bindQuery(t, "SELECT id FROM orders, customers", nil, nil)
	require.True(t, sql.ErrAmbiguousColumnName.Is(err))

	// qualification resolves the ambiguity
	bound, err := bindQuery(t, "SELECT orders.id FROM orders, customers", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "id", bound.OutputSchema[0].Name)
}

func TestBindDuplicateAlias(t *testing.T) {
	_, err := bindQuery(t, "SELECT 1 FROM orders, orders", nil, nil)
	require.True(t, sql.ErrDuplicateAliasOrTable.Is(err))

	bound, err := bindQuery(t, "SELECT a.id, b.id FROM orders a, orders b", nil, nil)
	require.NoError(t, err)
	require.Len(t, bound.Projections, 2)
}

func TestBindTypeMismatch(t *testing.T) {
	_, err := bindQuery(t, "SELECT id + name FROM customers", nil, nil)
	require.True(t, sql.ErrTypeMismatch.Is(err))

	_, err = bindQuery(t, "SELECT id FROM customers WHERE name > id", nil, nil)
	require.True(t, sql.ErrTypeMismatch.Is(err))
}

func TestBindNonBooleanWhere(t *testing.T) {
	_, err := bindQuery(t, "SELECT id FROM customers WHERE id", nil, nil)
	require.True(t, sql.ErrInvalidOperandType.Is(err))
}

func TestBindFunctionNotFound(t *testing.T) {
	_, err := bindQuery(t, "SELECT frobnicate(id) FROM customers", nil, nil)
	require.True(t, sql.ErrFunctionNotFound.Is(err))
}

func TestBindFunctionArity(t *testing.T) {
	_, err := bindQuery(t, "SELECT upper(name, name) FROM customers", nil, nil)
	require.True(t, sql.ErrInvalidArgumentNumber.Is(err))
}

func TestBindFunctionOperandType(t *testing.T) {
	_, err := bindQuery(t, "SELECT upper(id) FROM customers", nil, nil)
	require.True(t, sql.ErrInvalidOperandType.Is(err))
}

func TestBindExtensionOverridesBuiltin(t *testing.T) {
	custom := function.Defaults().Merge(function.NewRegistry(
		function.Def{Name: "upper", MinArgs: 1, MaxArgs: 1,
			Type: func(args []sql.Expression) (sql.Type, error) {
				return types.Int64, nil
			}},
	))
	bound, err := bindQuery(t, "SELECT upper(id) FROM customers", nil, custom)
	require.NoError(t, err)
	require.True(t, types.Int64.Equals(bound.OutputSchema[0].Type))
}

func TestBindGroupBy(t *testing.T) {
	bound, err := bindQuery(t, "SELECT region, sum(amount) FROM orders GROUP BY region", nil, nil)
	require.NoError(t, err)
	require.True(t, bound.Grouped)
	require.Len(t, bound.GroupExprs, 1)
	require.Equal(t, 2, bound.VisibleCount)
	require.True(t, types.Float64.Equals(bound.OutputSchema[1].Type))
}

func TestBindGroupingRuleViolation(t *testing.T) {
	_, err := bindQuery(t, "SELECT amount FROM orders GROUP BY region", nil, nil)
	require.True(t, sql.ErrFieldMissing.Is(err))
}

func TestBindGlobalAggregation(t *testing.T) {
	bound, err := bindQuery(t, "SELECT count(*), sum(amount) FROM orders", nil, nil)
	require.NoError(t, err)
	require.True(t, bound.Grouped)
	require.Empty(t, bound.GroupExprs)
	require.True(t, types.Int64.Equals(bound.OutputSchema[0].Type))
}

func TestBindHavingAddsHiddenAggregate(t *testing.T) {
	bound, err := bindQuery(t,
		"SELECT region FROM orders GROUP BY region HAVING sum(amount) > 100", nil, nil)
	require.NoError(t, err)
	require.NotNil(t, bound.Having)
	require.Equal(t, 1, bound.VisibleCount)
	require.Len(t, bound.AggSelected, 2)
	require.Len(t, bound.OutputSchema, 1)
}

func TestBindAggregateInWhere(t *testing.T) {
	_, err := bindQuery(t, "SELECT id FROM orders WHERE sum(amount) > 1", nil, nil)
	require.True(t, sql.ErrUnsupportedSyntax.Is(err))
}

func TestBindNestedAggregate(t *testing.T) {
	_, err := bindQuery(t, "SELECT sum(count(id)) FROM orders", nil, nil)
	require.True(t, sql.ErrUnsupportedSyntax.Is(err))
}

func TestBindDistinctUnsupported(t *testing.T) {
	_, err := bindQuery(t, "SELECT DISTINCT region FROM orders", nil, nil)
	require.True(t, sql.ErrUnsupportedFeature.Is(err))
}

func TestBindOrderByOutputAlias(t *testing.T) {
	bound, err := bindQuery(t, "SELECT amount AS total FROM orders ORDER BY total DESC", nil, nil)
	require.NoError(t, err)
	require.Len(t, bound.SortFields, 1)
	require.Equal(t, sql.Descending, bound.SortFields[0].Order)
	require.False(t, bound.SortBelowProject)
}

func TestBindOrderBySourceColumn(t *testing.T) {
	bound, err := bindQuery(t, "SELECT amount FROM orders ORDER BY region", nil, nil)
	require.NoError(t, err)
	require.Len(t, bound.SortFields, 1)
	require.True(t, bound.SortBelowProject)
}

func TestBindOrderByMixesAliasAndSourceColumn(t *testing.T) {
	bound, err := bindQuery(t,
		"SELECT amount AS total FROM orders ORDER BY total DESC, region", nil, nil)
	require.NoError(t, err)
	require.Len(t, bound.SortFields, 2)
	require.True(t, bound.SortBelowProject)

	// the alias term is rebased onto the expression that produces it, so
	// both sort keys address the source row
	require.Equal(t, "orders.amount", bound.SortFields[0].Column.String())
	require.Equal(t, sql.Descending, bound.SortFields[0].Order)
	require.Equal(t, "orders.region", bound.SortFields[1].Column.String())
	require.Equal(t, sql.Ascending, bound.SortFields[1].Order)
}

func TestBindOrderByUnknownInGroupedQuery(t *testing.T) {
	_, err := bindQuery(t,
		"SELECT region FROM orders GROUP BY region ORDER BY amount", nil, nil)
	require.Error(t, err)
}

func TestBindLimitOffset(t *testing.T) {
	bound, err := bindQuery(t, "SELECT id FROM orders LIMIT 10 OFFSET 5", nil, nil)
	require.NoError(t, err)
	require.True(t, bound.HasLimit)
	require.Equal(t, int64(10), bound.Limit)
	require.Equal(t, int64(5), bound.Offset)
}

func TestBindJoinOn(t *testing.T) {
	bound, err := bindQuery(t,
		"SELECT o.id, c.name FROM orders o JOIN customers c ON o.customer_id = c.id", nil, nil)
	require.NoError(t, err)
	require.Len(t, bound.Projections, 2)
	require.False(t, bound.Grouped)
}

func TestBindCaseInsensitiveIdentifiers(t *testing.T) {
	bound, err := bindQuery(t, "SELECT AMOUNT FROM ORDERS", nil, nil)
	require.NoError(t, err)
	require.Len(t, bound.Projections, 1)
}

func TestBindUnknownStatementKind(t *testing.T) {
	ctx := sql.NewEmptyContext()
	opts := parse.Options{}
	stmt, err := parse.Parse(ctx, "SHOW TABLES", opts)
	require.NoError(t, err)
	_, err = New(ctx, testCatalog(), [][]string{{"public"}}, function.Defaults(), opts, "SHOW TABLES").BindSelect(stmt)
	require.True(t, sql.ErrUnsupportedSyntax.Is(err))
}

func TestBindErrorsMentionOffendingName(t *testing.T) {
	_, err := bindQuery(t, "SELECT nope FROM customers", nil, nil)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "nope"))
}
