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
	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/types"
)

// Star is a `*` or `table.*` select expression. It only exists before
// validation; the validator expands it into field references.
type Star struct {
	// Table is the qualifier, or empty for a bare `*`.
	Table string
}

var _ sql.Expression = (*Star)(nil)

// NewStar creates an unqualified star expression.
func NewStar() *Star { return &Star{} }

// NewQualifiedStar creates a star expression scoped to one table.
func NewQualifiedStar(table string) *Star { return &Star{Table: table} }

// Resolved implements the Expression interface. A star is never
// resolved; it must be expanded during validation.
func (*Star) Resolved() bool { return false }

// Type implements the Expression interface.
func (*Star) Type() sql.Type { return types.Null }

// IsNullable implements the Expression interface.
func (*Star) IsNullable() bool { return false }

// Children implements the Expression interface.
func (*Star) Children() []sql.Expression { return nil }

// WithChildren implements the Expression interface.
func (s *Star) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 0)
	}
	return s, nil
}

func (s *Star) String() string {
	if s.Table == "" {
		return "*"
	}
	return s.Table + ".*"
}
