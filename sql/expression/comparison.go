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

package expression

import (
	"fmt"

	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/types"
)

// Comparison is a binary comparison between two expressions. Its result
// type is always Boolean; operand compatibility is enforced by the
// validator before construction.
type Comparison struct {
	BinaryExpression
	// Op is the comparison operator, e.g. "=", "<", ">=".
	Op string
}

var _ sql.Expression = (*Comparison)(nil)

func newComparison(op string, left, right sql.Expression) *Comparison {
	return &Comparison{BinaryExpression{Left: left, Right: right}, op}
}

// NewEquals creates an equality comparison.
func NewEquals(left, right sql.Expression) *Comparison {
	return newComparison("=", left, right)
}

// NewNotEquals creates an inequality comparison.
func NewNotEquals(left, right sql.Expression) *Comparison {
	return newComparison("!=", left, right)
}

// NewLessThan creates a < comparison.
func NewLessThan(left, right sql.Expression) *Comparison {
	return newComparison("<", left, right)
}

// NewLessThanOrEqual creates a <= comparison.
func NewLessThanOrEqual(left, right sql.Expression) *Comparison {
	return newComparison("<=", left, right)
}

// NewGreaterThan creates a > comparison.
func NewGreaterThan(left, right sql.Expression) *Comparison {
	return newComparison(">", left, right)
}

// NewGreaterThanOrEqual creates a >= comparison.
func NewGreaterThanOrEqual(left, right sql.Expression) *Comparison {
	return newComparison(">=", left, right)
}

// IsEquality reports whether this comparison is a plain equality. The
// planner uses equalities to derive partitioning keys.
func (c *Comparison) IsEquality() bool { return c.Op == "=" }

// Type implements the Expression interface.
func (c *Comparison) Type() sql.Type { return types.Boolean }

// WithChildren implements the Expression interface.
func (c *Comparison) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), 2)
	}
	return newComparison(c.Op, children[0], children[1]), nil
}

func (c *Comparison) String() string {
	return fmt.Sprintf("(%s %s %s)", c.Left, c.Op, c.Right)
}
