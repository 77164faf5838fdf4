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

	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/plan"
)

// buildPhysical turns a winner into a concrete plan tree: the chosen
// member over its children's physical plans, wrapped by the winner's
// enforcer steps from the inside out.
func (m *Memo) buildPhysical(w *winner) (sql.Node, error) {
	children := make([]sql.Node, len(w.children))
	for i, cw := range w.children {
		c, err := m.buildPhysical(cw)
		if err != nil {
			return nil, err
		}
		children[i] = c
	}

	var n sql.Node
	switch e := w.expr.(type) {
	case *TableScan:
		n = e.Table
	case *Filter:
		n = plan.NewFilter(e.Cond, children[0])
	case *Project:
		n = plan.NewProject(e.Projections, children[0])
	case *GroupBy:
		n = plan.NewGroupBy(e.Selected, e.Grouping, children[0]).WithPhase(e.Phase)
	case *Join:
		n = plan.NewInnerJoin(children[0], children[1], e.Cond)
	case *Sort:
		n = plan.NewSort(e.Fields, children[0])
	case *Limit:
		n = plan.NewLimit(e.Count, e.Offset, children[0])
	default:
		return nil, sql.ErrInternal.New(fmt.Sprintf("cannot build plan for memo expression %T", w.expr))
	}

	for _, step := range w.enforcers {
		switch step.kind {
		case EnforceGather:
			n = plan.NewGather(n, m.members)
		case EnforceRepartition:
			n = plan.NewRepartition(n, m.members, step.keys...)
		case EnforceBroadcast:
			n = plan.NewBroadcast(n, m.members)
		case EnforceSort:
			n = plan.NewSort(step.fields, n)
		}
	}
	return n, nil
}
