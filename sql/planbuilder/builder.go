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
	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/plan"
)

// Convert assembles the canonical logical plan for a validated
// statement:
//
//	Limit? > Sort? > Project > Filter(HAVING)? > GroupBy? > Filter(WHERE)? > source
//
// When the ordering references source columns, the sort runs below the
// projection instead. Convert cannot fail on user input; an error here
// is an internal fault.
func Convert(bound *BoundSelect) (sql.Node, error) {
	node := bound.From
	if bound.Where != nil {
		node = plan.NewFilter(bound.Where, node)
	}
	if bound.Grouped {
		node = plan.NewGroupBy(bound.AggSelected, bound.GroupExprs, node)
		if bound.Having != nil {
			node = plan.NewFilter(bound.Having, node)
		}
	}
	if bound.SortBelowProject && len(bound.SortFields) > 0 {
		node = plan.NewSort(bound.SortFields, node)
	}
	node = plan.NewProject(bound.Projections, node)
	if !bound.SortBelowProject && len(bound.SortFields) > 0 {
		node = plan.NewSort(bound.SortFields, node)
	}
	if bound.HasLimit {
		node = plan.NewLimit(bound.Limit, bound.Offset, node)
	}

	if !node.Resolved() {
		return nil, sql.ErrInternal.New("converted plan is not fully resolved")
	}
	return node, nil
}
