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

// GetField is a resolved reference to a field of the input row by index.
type GetField struct {
	table      string
	name       string
	fieldIndex int
	fieldType  sql.Type
	nullable   bool
}

var _ sql.Expression = (*GetField)(nil)

// NewGetField creates a GetField expression.
func NewGetField(index int, fieldType sql.Type, table, name string, nullable bool) *GetField {
	return &GetField{
		table:      table,
		name:       name,
		fieldIndex: index,
		fieldType:  fieldType,
		nullable:   nullable,
	}
}

// Index returns the index of the field in the input row.
func (p *GetField) Index() int { return p.fieldIndex }

// Table returns the name of the table the field comes from, or empty for
// computed columns.
func (p *GetField) Table() string { return p.table }

// Name returns the column name.
func (p *GetField) Name() string { return p.name }

// Resolved implements the Expression interface.
func (p *GetField) Resolved() bool { return true }

// Type implements the Expression interface.
func (p *GetField) Type() sql.Type { return p.fieldType }

// IsNullable implements the Expression interface.
func (p *GetField) IsNullable() bool { return p.nullable }

// Children implements the Expression interface.
func (p *GetField) Children() []sql.Expression { return nil }

// WithChildren implements the Expression interface.
func (p *GetField) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(p, len(children), 0)
	}
	return p, nil
}

// WithIndex returns a copy of this field reference with a new row index.
func (p *GetField) WithIndex(index int) *GetField {
	f := *p
	f.fieldIndex = index
	return &f
}

func (p *GetField) String() string {
	if p.table == "" {
		return p.name
	}
	return fmt.Sprintf("%s.%s", p.table, p.name)
}
