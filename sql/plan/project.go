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
	"strings"

	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/expression"
)

// Project computes a list of expressions over each input row.
type Project struct {
	UnaryNode
	Projections []sql.Expression
}

var _ sql.Node = (*Project)(nil)

// NewProject creates a projection over the given expressions.
func NewProject(projections []sql.Expression, child sql.Node) *Project {
	return &Project{
		UnaryNode:   UnaryNode{Child: child},
		Projections: projections,
	}
}

// Resolved implements the Node interface.
func (p *Project) Resolved() bool {
	return p.Child.Resolved() && expressionsResolved(p.Projections...)
}

// Schema implements the Node interface.
func (p *Project) Schema() sql.Schema {
	return SchemaForExpressions(p.Projections)
}

// WithChildren implements the Node interface.
func (p *Project) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(children), 1)
	}
	return NewProject(p.Projections, children[0]), nil
}

func (p *Project) String() string {
	exprs := make([]string, len(p.Projections))
	for i, e := range p.Projections {
		exprs[i] = e.String()
	}
	return fmt.Sprintf("Project(%s)", strings.Join(exprs, ", "))
}

// SchemaForExpressions derives an output schema from a projection list.
// Aliases and column references keep their names; any other expression is
// named by its text form, matching how most engines title computed
// columns.
func SchemaForExpressions(exprs []sql.Expression) sql.Schema {
	schema := make(sql.Schema, len(exprs))
	for i, e := range exprs {
		var name, source string
		switch e := e.(type) {
		case *expression.Alias:
			name = e.Name()
		case *expression.GetField:
			name = e.Name()
			source = e.Table()
		default:
			name = e.String()
		}
		schema[i] = &sql.Column{
			Name:     name,
			Type:     e.Type(),
			Nullable: e.IsNullable(),
			Source:   source,
		}
	}
	return schema
}
