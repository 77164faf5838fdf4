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

package memory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/types"
)

func newTestTable(name string) *Table {
	return NewTable(name, sql.Schema{
		{Name: "id", Type: types.Int64},
	}, sql.SingleDistribution())
}

func TestCatalogLookupIsCaseInsensitive(t *testing.T) {
	cat := NewCatalog()
	cat.AddTable([]string{"Public"}, newTestTable("Orders"))

	tbl, ok := cat.Table([]string{"public"}, "orders")
	require.True(t, ok)
	require.Equal(t, "Orders", tbl.Name())

	tbl, ok = cat.Table([]string{"PUBLIC"}, "ORDERS")
	require.True(t, ok)
	require.Equal(t, "Orders", tbl.Name())
}

func TestCatalogSchemaPathKeying(t *testing.T) {
	cat := NewCatalog()
	cat.AddTable([]string{"a", "b"}, newTestTable("t"))

	_, ok := cat.Table([]string{"a", "b"}, "t")
	require.True(t, ok)
	_, ok = cat.Table([]string{"a"}, "t")
	require.False(t, ok)
	_, ok = cat.Table([]string{"b", "a"}, "t")
	require.False(t, ok)
}

func TestCatalogAddReplacesExisting(t *testing.T) {
	cat := NewCatalog()
	cat.AddTable([]string{"public"}, newTestTable("t"))
	cat.AddTable([]string{"public"}, NewTable("t", sql.Schema{
		{Name: "id", Type: types.Int64},
		{Name: "extra", Type: types.Text},
	}, sql.SingleDistribution()))

	tbl, ok := cat.Table([]string{"public"}, "t")
	require.True(t, ok)
	require.Len(t, tbl.Schema(), 2)
}

func TestCatalogDropTable(t *testing.T) {
	cat := NewCatalog()
	cat.AddTable([]string{"public"}, newTestTable("t"))
	cat.DropTable([]string{"public"}, "T")
	_, ok := cat.Table([]string{"public"}, "t")
	require.False(t, ok)

	// dropping a missing table is a no-op
	cat.DropTable([]string{"public"}, "t")
	cat.DropTable([]string{"nope"}, "t")
}

func TestSnapshotIsolation(t *testing.T) {
	cat := NewCatalog()
	cat.AddTable([]string{"public"}, newTestTable("t"))

	snap := cat.Snapshot()

	cat.DropTable([]string{"public"}, "t")
	cat.AddTable([]string{"public"}, newTestTable("u"))

	_, ok := snap.Table([]string{"public"}, "t")
	require.True(t, ok)
	_, ok = snap.Table([]string{"public"}, "u")
	require.False(t, ok)

	_, ok = cat.Table([]string{"public"}, "t")
	require.False(t, ok)
}

func TestSnapshotCopiesStatistics(t *testing.T) {
	stats := TableStats{Rows: 10, Distinct: map[string]uint64{"id": 5}}
	cat := NewCatalog()
	cat.AddTable([]string{"public"}, newTestTable("t").WithStatistics(stats))

	snap := cat.Snapshot()
	stats.Distinct["id"] = 99

	tbl, ok := snap.Table([]string{"public"}, "t")
	require.True(t, ok)
	d, ok := tbl.Statistics().DistinctCount("id")
	require.True(t, ok)
	require.Equal(t, uint64(5), d)
}

func TestTableDefaultsToUnknownStatistics(t *testing.T) {
	tbl := newTestTable("t")
	// unknown statistics still report a positive row count so plans
	// over the table have a nonzero cost
	require.NotZero(t, tbl.Statistics().RowCount())
	_, ok := tbl.Statistics().DistinctCount("id")
	require.False(t, ok)
}

func TestTableStats(t *testing.T) {
	stats := TableStats{Rows: 42, Distinct: map[string]uint64{"id": 7}}
	tbl := newTestTable("t").WithStatistics(stats)
	require.Equal(t, uint64(42), tbl.Statistics().RowCount())

	d, ok := tbl.Statistics().DistinctCount("ID")
	require.True(t, ok)
	require.Equal(t, uint64(7), d)
	_, ok = tbl.Statistics().DistinctCount("other")
	require.False(t, ok)
}
