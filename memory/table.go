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
	"strings"

	"github.com/gridsql/gridsql/sql"
)

// Table is a catalog entry described programmatically: a name, a
// schema, a distribution, and optional statistics.
type Table struct {
	name   string
	schema sql.Schema
	dist   sql.Distribution
	stats  sql.TableStatistics
}

var _ sql.Table = (*Table)(nil)

// NewTable creates a table with the given schema and distribution.
// Statistics default to unknown.
func NewTable(name string, schema sql.Schema, dist sql.Distribution) *Table {
	return &Table{
		name:   name,
		schema: schema,
		dist:   dist,
		stats:  sql.UnknownStatistics,
	}
}

// WithStatistics sets the table's statistics and returns it, for
// chained construction.
func (t *Table) WithStatistics(stats sql.TableStatistics) *Table {
	t.stats = stats
	return t
}

// Name implements the sql.Table interface.
func (t *Table) Name() string { return t.name }

// Schema implements the sql.Table interface.
func (t *Table) Schema() sql.Schema { return t.schema }

// Distribution implements the sql.Table interface.
func (t *Table) Distribution() sql.Distribution { return t.dist }

// Statistics implements the sql.Table interface.
func (t *Table) Statistics() sql.TableStatistics { return t.stats }

// copyTable deep-copies the table for catalog snapshots. Statistics maps
// are copied too, so mutating the live catalog's stats cannot reach a
// pinned snapshot.
func (t *Table) copyTable() *Table {
	stats := t.stats
	if s, ok := stats.(TableStats); ok {
		distinct := make(map[string]uint64, len(s.Distinct))
		for k, v := range s.Distinct {
			distinct[k] = v
		}
		stats = TableStats{Rows: s.Rows, Distinct: distinct}
	}
	return &Table{
		name:   t.name,
		schema: t.schema.Copy(),
		dist:   t.dist,
		stats:  stats,
	}
}

// TableStats is a fixed statistics value for tests and embedders.
type TableStats struct {
	// Rows is the total row count.
	Rows uint64
	// Distinct maps lowercase column names to distinct value counts.
	Distinct map[string]uint64
}

var _ sql.TableStatistics = TableStats{}

// RowCount implements the sql.TableStatistics interface.
func (s TableStats) RowCount() uint64 { return s.Rows }

// DistinctCount implements the sql.TableStatistics interface.
func (s TableStats) DistinctCount(column string) (uint64, bool) {
	d, ok := s.Distinct[strings.ToLower(column)]
	return d, ok
}
