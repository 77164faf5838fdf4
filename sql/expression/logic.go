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

// And is a boolean conjunction.
type And struct {
	BinaryExpression
}

var _ sql.Expression = (*And)(nil)

// NewAnd creates an And expression.
func NewAnd(left, right sql.Expression) *And {
	return &And{BinaryExpression{Left: left, Right: right}}
}

// JoinAnd folds the given expressions into a right-deep conjunction.
// Returns nil for no expressions and the expression itself for one.
func JoinAnd(exprs ...sql.Expression) sql.Expression {
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	default:
		return NewAnd(exprs[0], JoinAnd(exprs[1:]...))
	}
}

// SplitConjunction unfolds a conjunction into its conjunct list.
func SplitConjunction(expr sql.Expression) []sql.Expression {
	and, ok := expr.(*And)
	if !ok {
		if expr == nil {
			return nil
		}
		return []sql.Expression{expr}
	}
	return append(SplitConjunction(and.Left), SplitConjunction(and.Right)...)
}

// Type implements the Expression interface.
func (*And) Type() sql.Type { return types.Boolean }

// WithChildren implements the Expression interface.
func (a *And) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), 2)
	}
	return NewAnd(children[0], children[1]), nil
}

func (a *And) String() string {
	return fmt.Sprintf("(%s AND %s)", a.Left, a.Right)
}

// Or is a boolean disjunction.
type Or struct {
	BinaryExpression
}

var _ sql.Expression = (*Or)(nil)

// NewOr creates an Or expression.
func NewOr(left, right sql.Expression) *Or {
	return &Or{BinaryExpression{Left: left, Right: right}}
}

// Type implements the Expression interface.
func (*Or) Type() sql.Type { return types.Boolean }

// WithChildren implements the Expression interface.
func (o *Or) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 2 {
		return nil, sql.ErrInvalidChildrenNumber.New(o, len(children), 2)
	}
	return NewOr(children[0], children[1]), nil
}

func (o *Or) String() string {
	return fmt.Sprintf("(%s OR %s)", o.Left, o.Right)
}

// Not is a boolean negation.
type Not struct {
	UnaryExpression
}

var _ sql.Expression = (*Not)(nil)

// NewNot creates a Not expression.
func NewNot(child sql.Expression) *Not {
	return &Not{UnaryExpression{Child: child}}
}

// Type implements the Expression interface.
func (*Not) Type() sql.Type { return types.Boolean }

// WithChildren implements the Expression interface.
func (n *Not) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(n, len(children), 1)
	}
	return NewNot(children[0]), nil
}

func (n *Not) String() string {
	return fmt.Sprintf("NOT(%s)", n.Child)
}

// IsNull checks whether its child is NULL.
type IsNull struct {
	UnaryExpression
}

var _ sql.Expression = (*IsNull)(nil)

// NewIsNull creates an IsNull expression.
func NewIsNull(child sql.Expression) *IsNull {
	return &IsNull{UnaryExpression{Child: child}}
}

// Type implements the Expression interface.
func (*IsNull) Type() sql.Type { return types.Boolean }

// IsNullable implements the Expression interface.
func (*IsNull) IsNullable() bool { return false }

// WithChildren implements the Expression interface.
func (n *IsNull) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(n, len(children), 1)
	}
	return NewIsNull(children[0]), nil
}

func (n *IsNull) String() string {
	return fmt.Sprintf("(%s IS NULL)", n.Child)
}
