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
)

// Literal is a constant value with a type.
type Literal struct {
	value     interface{}
	fieldType sql.Type
}

var _ sql.Expression = (*Literal)(nil)

// NewLiteral creates a new Literal expression.
func NewLiteral(value interface{}, fieldType sql.Type) *Literal {
	return &Literal{value: value, fieldType: fieldType}
}

// Value returns the literal value.
func (p *Literal) Value() interface{} { return p.value }

// Resolved implements the Expression interface.
func (p *Literal) Resolved() bool { return true }

// Type implements the Expression interface.
func (p *Literal) Type() sql.Type { return p.fieldType }

// IsNullable implements the Expression interface.
func (p *Literal) IsNullable() bool { return p.value == nil }

// Children implements the Expression interface.
func (p *Literal) Children() []sql.Expression { return nil }

// WithChildren implements the Expression interface.
func (p *Literal) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(children), 0)
	}
	return p, nil
}

func (p *Literal) String() string {
	if p.value == nil {
		return "NULL"
	}
	if s, ok := p.value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", p.value)
}
