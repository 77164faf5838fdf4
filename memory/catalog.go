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

// Package memory provides an in-memory catalog, used by tests and by
// embedders that describe their tables programmatically.
package memory

import (
	"strings"
	"sync"

	"github.com/gridsql/gridsql/sql"
)

// Catalog is a mutable in-memory catalog. It is safe for concurrent
// use; Snapshot returns an immutable copy, so optimizations started
// before a mutation keep seeing the old state.
type Catalog struct {
	mu      sync.RWMutex
	schemas map[string]map[string]*Table
}

var _ sql.Catalog = (*Catalog)(nil)

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{schemas: make(map[string]map[string]*Table)}
}

// AddTable registers a table under the given schema path. Existing
// entries with the same name are replaced.
func (c *Catalog) AddTable(schemaPath []string, t *Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := pathKey(schemaPath)
	if c.schemas[key] == nil {
		c.schemas[key] = make(map[string]*Table)
	}
	c.schemas[key][strings.ToLower(t.Name())] = t
}

// DropTable removes a table. Missing entries are ignored.
func (c *Catalog) DropTable(schemaPath []string, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.schemas[pathKey(schemaPath)], strings.ToLower(name))
}

// Table implements the sql.Catalog interface.
func (c *Catalog) Table(schemaPath []string, name string) (sql.Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.schemas[pathKey(schemaPath)][strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return t, true
}

// Snapshot implements the sql.Catalog interface.
func (c *Catalog) Snapshot() sql.Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := NewCatalog()
	for path, tables := range c.schemas {
		snap.schemas[path] = make(map[string]*Table, len(tables))
		for name, t := range tables {
			snap.schemas[path][name] = t.copyTable()
		}
	}
	return snap
}

func pathKey(schemaPath []string) string {
	parts := make([]string, len(schemaPath))
	for i, p := range schemaPath {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, ".")
}
