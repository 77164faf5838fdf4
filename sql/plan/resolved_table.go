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

// ResolvedTable is a table scan over a resolved catalog entry. Its
// distribution trait comes directly from the catalog; it is the only
// node whose trait is fixed before optimization.
type ResolvedTable struct {
	Table sql.Table
	// Alias is the name the table is referenced by in the query, or the
	// table's own name.
	Alias string
}

var _ sql.Node = (*ResolvedTable)(nil)
var _ sql.Nameable = (*ResolvedTable)(nil)

// NewResolvedTable creates a scan over the given catalog entry.
func NewResolvedTable(table sql.Table, alias string) *ResolvedTable {
	if alias == "" {
		alias = strings.ToLower(table.Name())
	}
	return &ResolvedTable{Table: table, Alias: alias}
}

// Name implements the Nameable interface.
func (t *ResolvedTable) Name() string { return t.Alias }

// Distribution returns the scan's distribution trait.
func (t *ResolvedTable) Distribution() sql.Distribution {
	return t.Table.Distribution()
}

// Resolved implements the Node interface.
func (t *ResolvedTable) Resolved() bool { return true }

// Schema implements the Node interface. Columns are sourced to the scan
// alias so references stay unambiguous under self joins.
func (t *ResolvedTable) Schema() sql.Schema {
	schema := t.Table.Schema().Copy()
	for _, col := range schema {
		col.Source = t.Alias
	}
	return schema
}

// Children implements the Node interface.
func (t *ResolvedTable) Children() []sql.Node { return nil }

// WithChildren implements the Node interface.
func (t *ResolvedTable) WithChildren(children ...sql.Node) (sql.Node, error) {
	if len(children) != 0 {
		return nil, sql.ErrInvalidChildrenNumber.New(t, len(children), 0)
	}
	return t, nil
}

func (t *ResolvedTable) String() string {
	if t.Alias != strings.ToLower(t.Table.Name()) {
		return fmt.Sprintf("Scan(%s AS %s)", t.Table.Name(), t.Alias)
	}
	return fmt.Sprintf("Scan(%s)", t.Table.Name())
}
