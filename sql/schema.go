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

// Schema is the definition of a result set: an ordered list of columns.
type Schema []*Column

// IndexOf returns the position of the named column from the given source,
// or -1 if it is not present. Matching is case-insensitive.
func (s Schema) IndexOf(column, source string) int {
	column = strings.ToLower(column)
	source = strings.ToLower(source)
	for i, col := range s {
		if strings.ToLower(col.Name) == column && strings.ToLower(col.Source) == source {
			return i
		}
	}
	return -1
}

// Contains reports whether the schema contains a column with the given
// name from the given source.
func (s Schema) Contains(column, source string) bool {
	return s.IndexOf(column, source) != -1
}

// Equals checks whether the given schema is equal to this one.
func (s Schema) Equals(s2 Schema) bool {
	if len(s) != len(s2) {
		return false
	}
	for i := range s {
		if !s[i].Equals(s2[i]) {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of the schema. Plans hand schemas to callers;
// copying keeps catalog snapshots isolated from later mutation.
func (s Schema) Copy() Schema {
	out := make(Schema, len(s))
	for i, col := range s {
		c := *col
		out[i] = &c
	}
	return out
}
