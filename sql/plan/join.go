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

// InnerJoin joins two inputs on a condition. A nil condition is a cross
// join.
type InnerJoin struct {
	BinaryNode
	Cond sql.Expression
}

var _ sql.Node = (*InnerJoin)(nil)

// NewInnerJoin creates an inner join on the given condition.
func NewInnerJoin(left, right sql.Node, cond sql.Expression) *InnerJoin {
	return &InnerJoin{
		BinaryNode: BinaryNode{Left: left, Right: right},
		Cond:       cond,
	}
}

// NewCrossJoin creates a join with no condition.
func NewCrossJoin(left, right sql.Node) *InnerJoin {
	return NewInnerJoin(left, right, nil)
}

// Resolved implements the Node interface.
func (j *InnerJoin) Resolved() bool {
	if !j.BinaryNode.Resolved() {
		return false
	}
	return j.Cond == nil || j.Cond.Resolved()
}

// Schema implements the Node interface. Join output is the left schema
// followed by the right schema.
func (j *InnerJoin) Schema() sql.Schema {
	return append(j.Left.Schema().Copy(), j.Right.Schema().Copy()...)
}

// WithChildren implements the Node interface.
func (j *InnerJoin) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(j, len(children), 2)
	}
	return NewInnerJoin(children[0], children[1], j.Cond), nil
}

func (j *InnerJoin) String() string {
	if j.Cond == nil {
		return "CrossJoin"
	}
	return fmt.Sprintf("InnerJoin(%s)", j.Cond)
}
