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

package sql

// TableStatistics provides base-table statistics for cardinality
// estimation. Implementations must be safe for concurrent reads.
type TableStatistics interface {
	// RowCount returns the estimated number of rows in the table.
	RowCount() uint64
	// DistinctCount returns the estimated number of distinct values for
	// the named column, and whether an estimate is available.
	DistinctCount(column string) (uint64, bool)
}

// UnknownStatistics is the statistics source for tables without any
// collected statistics. The row count defaults to a small positive value
// so costs stay strictly positive.
var UnknownStatistics TableStatistics = unknownStats{}

const defaultRowCount = 1000

type unknownStats struct{}

func (unknownStats) RowCount() uint64 { return defaultRowCount }

func (unknownStats) DistinctCount(string) (uint64, bool) { return 0, false }
