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

package plan

import (
	"fmt"

	"github.com/gridsql/gridsql/sql"
)

// Limit returns at most Count rows after skipping Offset rows. Limit is
// only correct on a single stream, so the planner requires a singleton
// distribution below it.
type Limit struct {
	UnaryNode
	Count  int64
	Offset int64
}

var _ sql.Node = (*Limit)(nil)

// NewLimit creates a new limit node.
func NewLimit(count, offset int64, child sql.Node) *Limit {
	return &Limit{
		UnaryNode: UnaryNode{Child: child},
		Count:     count,
		Offset:    offset,
	}
}

// WithChildren implements the Node interface.
func (l *Limit) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(l, len(children), 1)
	}
	return NewLimit(l.Count, l.Offset, children[0]), nil
}

func (l *Limit) String() string {
	if l.Offset > 0 {
		return fmt.Sprintf("Limit(%d, offset %d)", l.Count, l.Offset)
	}
	return fmt.Sprintf("Limit(%d)", l.Count)
}
