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

// Alias gives a name to an expression in a projection.
type Alias struct {
	UnaryExpression
	name string
}

var _ sql.Expression = (*Alias)(nil)
var _ sql.Nameable = (*Alias)(nil)

// NewAlias creates an Alias over the given expression.
func NewAlias(child sql.Expression, name string) *Alias {
	return &Alias{UnaryExpression{Child: child}, name}
}

// Name implements the Nameable interface.
func (a *Alias) Name() string { return a.name }

// Type implements the Expression interface.
func (a *Alias) Type() sql.Type { return a.Child.Type() }

// WithChildren implements the Expression interface.
func (a *Alias) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(a, len(children), 1)
	}
	return NewAlias(children[0], a.name), nil
}

func (a *Alias) String() string {
	return fmt.Sprintf("%s AS %s", a.Child, a.name)
}
