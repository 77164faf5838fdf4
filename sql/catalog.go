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

package sql

import "strings"

// TableName is a possibly schema-qualified table reference.
type TableName struct {
	// Qualifier is the schema path the reference was qualified with, or
	// empty to resolve against the search path.
	Qualifier string
	// Name is the table name.
	Name string
}

func (t TableName) String() string {
	if t.Qualifier == "" {
		return t.Name
	}
	return t.Qualifier + "." + t.Name
}

// Catalog resolves table names to their metadata. Implementations must be
// safe for concurrent reads; the compiler never writes.
type Catalog interface {
	// Table returns the table with the given name under the given schema
	// path. The second return value reports whether it exists.
	Table(schemaPath []string, name string) (Table, bool)
	// Snapshot returns an immutable copy of the catalog. OptimizerContext
	// creation snapshots its catalog so that concurrent catalog mutation
	// cannot affect an in-flight optimization.
	Snapshot() Catalog
}

// ResolveTable resolves a table reference against a catalog using the
// given ordered search paths. For qualified names only the named schema
// is consulted; for unqualified names the search paths are tried in
// order and the first match wins. Returns ErrTableNotFound when nothing
// matches.
func ResolveTable(cat Catalog, name TableName, searchPaths [][]string) (Table, error) {
	if name.Qualifier != "" {
		if t, ok := cat.Table(strings.Split(name.Qualifier, "."), name.Name); ok {
			return t, nil
		}
		return nil, ErrTableNotFound.New(name.String())
	}
	for _, path := range searchPaths {
		if t, ok := cat.Table(path, name.Name); ok {
			return t, nil
		}
	}
	return nil, ErrTableNotFound.New(name.String())
}
