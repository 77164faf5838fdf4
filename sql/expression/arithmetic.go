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

// Arithmetic is a binary numeric operation. The result type follows the
// numeric promotion policy in sql/types; the validator guarantees both
// operands are numeric before construction.
type Arithmetic struct {
	BinaryExpression
	// Op is the arithmetic operator, e.g. "+", "*".
	Op string
}

var _ sql.Expression = (*Arithmetic)(nil)

// NewArithmetic creates an arithmetic expression with the given operator.
func NewArithmetic(left, right sql.Expression, op string) *Arithmetic {
	return &Arithmetic{BinaryExpression{Left: left, Right: right}, op}
}

// NewPlus creates an addition.
func NewPlus(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, "+")
}

// NewMinus creates a subtraction.
func NewMinus(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, "-")
}

// NewMult creates a multiplication.
func NewMult(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, "*")
}

// NewDiv creates a division. Division always produces a fractional type.
func NewDiv(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, "/")
}

// Type implements the Expression interface.
func (a *Arithmetic) Type() sql.Type {
	if a.Op == "/" {
		if types.IsDecimal(a.Left.Type()) || types.IsDecimal(a.Right.Type()) {
			return types.Decimal
		}
		return types.Float64
	}
	if t, ok := types.PromoteNumeric(a.Left.Type(), a.Right.Type()); ok {
		return t
	}
	// validator rejects non-numeric operands before this node exists
	return a.Left.Type()
}

// WithChildren implements the Expression interface.
func (a *Arithmetic) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), 2)
	}
	return NewArithmetic(children[0], children[1], a.Op), nil
}

func (a *Arithmetic) String() string {
	return fmt.Sprintf("(%s %s %s)", a.Left, a.Op, a.Right)
}
