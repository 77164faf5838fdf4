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
	"strings"

	"github.com/gridsql/gridsql/sql"
)

// Call is a resolved scalar function call. Its name resolved against the
// operator table and its result type was inferred by the function's type
// rule during validation.
type Call struct {
	name     string
	args     []sql.Expression
	retType  sql.Type
	nullable bool
}

var _ sql.Expression = (*Call)(nil)
var _ sql.Nameable = (*Call)(nil)

// NewCall creates a resolved function call.
func NewCall(name string, retType sql.Type, nullable bool, args ...sql.Expression) *Call {
	return &Call{name: strings.ToLower(name), args: args, retType: retType, nullable: nullable}
}

// Name implements the Nameable interface.
func (c *Call) Name() string { return c.name }

// Resolved implements the Expression interface.
func (c *Call) Resolved() bool {
	for _, a := range c.args {
		if !a.Resolved() {
			return false
		}
	}
	return true
}

// Type implements the Expression interface.
func (c *Call) Type() sql.Type { return c.retType }

// IsNullable implements the Expression interface.
func (c *Call) IsNullable() bool { return c.nullable }

// Children implements the Expression interface.
func (c *Call) Children() []sql.Expression { return c.args }

// WithChildren implements the Expression interface.
func (c *Call) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(c.args) {
		return nil, sql.ErrInvalidChildrenNumber.New(c, len(children), len(c.args))
	}
	return NewCall(c.name, c.retType, c.nullable, children...), nil
}

func (c *Call) String() string {
	args := make([]string, len(c.args))
	for i, a := range c.args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.name, strings.Join(args, ", "))
}
