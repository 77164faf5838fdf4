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

// Package aggregation defines the built-in aggregate expressions. The
// planner splits some of them into per-member partial aggregates merged
// by a final aggregate after an exchange; see Merge.
package aggregation

import (
	"fmt"

	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/expression"
	"github.com/gridsql/gridsql/sql/types"
)

// Aggregation is implemented by all aggregate expressions.
type Aggregation interface {
	sql.Expression
	sql.Nameable
}

// IsAggregate reports whether the expression tree contains an aggregate.
func IsAggregate(e sql.Expression) bool {
	var found bool
	sql.Inspect(e, func(e sql.Expression) bool {
		if _, ok := e.(Aggregation); ok {
			found = true
			return false
		}
		return true
	})
	return found
}

// Merge returns the final-stage aggregate that combines per-member
// partial results of agg, reading the partial value from the given field
// reference. The second return value is false for aggregates that cannot
// be computed in two phases (currently AVG).
func Merge(agg Aggregation, partialField *expression.GetField) (Aggregation, bool) {
	switch agg.(type) {
	case *Count:
		// counts merge by summation
		return NewSum(partialField), true
	case *Sum:
		return NewSum(partialField), true
	case *Min:
		return NewMin(partialField), true
	case *Max:
		return NewMax(partialField), true
	default:
		return nil, false
	}
}

type unaryAggBase struct {
	expression.UnaryExpression
	name string
}

func (a *unaryAggBase) Name() string { return a.name }

func (a *unaryAggBase) String() string {
	return fmt.Sprintf("%s(%s)", a.name, a.Child)
}

// Count counts non-NULL values of its child. COUNT(*) is represented as
// a count over the literal 1.
type Count struct {
	unaryAggBase
}

var _ Aggregation = (*Count)(nil)

// NewCount creates a COUNT aggregate.
func NewCount(child sql.Expression) *Count {
	return &Count{unaryAggBase{expression.UnaryExpression{Child: child}, "COUNT"}}
}

// NewCountAll creates a COUNT(*) aggregate.
func NewCountAll() *Count {
	return NewCount(expression.NewLiteral(int64(1), types.Int64))
}

// Type implements the Expression interface.
func (*Count) Type() sql.Type { return types.Int64 }

// IsNullable implements the Expression interface.
func (*Count) IsNullable() bool { return false }

// WithChildren implements the Expression interface.
func (c *Count) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), 1)
	}
	return NewCount(children[0]), nil
}

// Sum sums its child values.
type Sum struct {
	unaryAggBase
}

var _ Aggregation = (*Sum)(nil)

// NewSum creates a SUM aggregate.
func NewSum(child sql.Expression) *Sum {
	return &Sum{unaryAggBase{expression.UnaryExpression{Child: child}, "SUM"}}
}

// Type implements the Expression interface. Integer sums widen to Int64
// so partial sums can be merged without overflow surprises.
func (s *Sum) Type() sql.Type {
	t := s.Child.Type()
	switch {
	case types.IsInteger(t):
		return types.Int64
	case types.IsDecimal(t):
		return types.Decimal
	default:
		return types.Float64
	}
}

// IsNullable implements the Expression interface. A sum over zero rows
// is NULL.
func (*Sum) IsNullable() bool { return true }

// WithChildren implements the Expression interface.
func (s *Sum) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 1)
	}
	return NewSum(children[0]), nil
}

// Min returns the smallest child value.
type Min struct {
	unaryAggBase
}

var _ Aggregation = (*Min)(nil)

// NewMin creates a MIN aggregate.
func NewMin(child sql.Expression) *Min {
	return &Min{unaryAggBase{expression.UnaryExpression{Child: child}, "MIN"}}
}

// Type implements the Expression interface.
func (m *Min) Type() sql.Type { return m.Child.Type() }

// IsNullable implements the Expression interface.
func (*Min) IsNullable() bool { return true }

// WithChildren implements the Expression interface.
func (m *Min) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(m, len(children), 1)
	}
	return NewMin(children[0]), nil
}

// Max returns the largest child value.
type Max struct {
	unaryAggBase
}

var _ Aggregation = (*Max)(nil)

// NewMax creates a MAX aggregate.
func NewMax(child sql.Expression) *Max {
	return &Max{unaryAggBase{expression.UnaryExpression{Child: child}, "MAX"}}
}

// Type implements the Expression interface.
func (m *Max) Type() sql.Type { return m.Child.Type() }

// IsNullable implements the Expression interface.
func (*Max) IsNullable() bool { return true }

// WithChildren implements the Expression interface.
func (m *Max) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(m, len(children), 1)
	}
	return NewMax(children[0]), nil
}

// Avg averages its child values. AVG is not decomposable into a single
// partial/final pair, so distributed plans repartition its input instead.
type Avg struct {
	unaryAggBase
}

var _ Aggregation = (*Avg)(nil)

// NewAvg creates an AVG aggregate.
func NewAvg(child sql.Expression) *Avg {
	return &Avg{unaryAggBase{expression.UnaryExpression{Child: child}, "AVG"}}
}

// Type implements the Expression interface.
func (a *Avg) Type() sql.Type {
	if types.IsDecimal(a.Child.Type()) {
		return types.Decimal
	}
	return types.Float64
}

// IsNullable implements the Expression interface.
func (*Avg) IsNullable() bool { return true }

// WithChildren implements the Expression interface.
func (a *Avg) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), 1)
	}
	return NewAvg(children[0]), nil
}
