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
)

// Sort orders its input by a list of sort fields.
type Sort struct {
	UnaryNode
	SortFields []sql.SortField
}

var _ sql.Node = (*Sort)(nil)

// NewSort creates a new sort node.
func NewSort(fields []sql.SortField, child sql.Node) *Sort {
	return &Sort{
		UnaryNode:  UnaryNode{Child: child},
		SortFields: fields,
	}
}

// Resolved implements the Node interface.
func (s *Sort) Resolved() bool {
	for _, f := range s.SortFields {
		if !f.Column.Resolved() {
			return false
		}
	}
	return s.Child.Resolved()
}

// WithChildren implements the Node interface.
func (s *Sort) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 1 {
		return nil, sql.ErrInvalidChildrenNumber.New(s, len(children), 1)
	}
	return NewSort(s.SortFields, children[0]), nil
}

func (s *Sort) String() string {
	fields := make([]string, len(s.SortFields))
	for i, f := range s.SortFields {
		fields[i] = f.String()
	}
	return fmt.Sprintf("Sort(%s)", strings.Join(fields, ", "))
}
