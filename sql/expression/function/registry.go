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

// Package function implements the operator table: the registry of scalar
// and aggregate functions the validator resolves calls against. The
// registry is an immutable configuration value built once per
// OptimizerContext; backend extensions layer their own functions on top
// with overlay precedence.
package function

import (
	"sort"
	"strings"

	"github.com/gridsql/gridsql/sql"
)

// TypeRule infers the result type of a call from its already-typed
// arguments. It returns an error describing the offending argument when
// no result type is defined; the validator wraps it with position
// context.
type TypeRule func(args []sql.Expression) (sql.Type, error)

// Def describes one function in the operator table.
type Def struct {
	// Name is the lowercase function name.
	Name string
	// MinArgs and MaxArgs bound the accepted argument count. MaxArgs of
	// -1 means variadic.
	MinArgs, MaxArgs int
	// Aggregate marks aggregate functions; the validator builds them
	// into aggregation expressions rather than scalar calls.
	Aggregate bool
	// Type is the result-type inference rule. Unused for aggregates.
	Type TypeRule
}

// AcceptsArity reports whether the definition accepts n arguments.
func (d Def) AcceptsArity(n int) bool {
	if n < d.MinArgs {
		return false
	}
	return d.MaxArgs < 0 || n <= d.MaxArgs
}

// ArityString renders the accepted argument count for diagnostics.
func (d Def) ArityString() string {
	switch {
	case d.MaxArgs < 0:
		return "at least " + itoa(d.MinArgs)
	case d.MinArgs == d.MaxArgs:
		return itoa(d.MinArgs)
	default:
		return itoa(d.MinArgs) + " to " + itoa(d.MaxArgs)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}

// Registry is a lookup table from function name to definition. A nil
// Registry is a valid empty table.
type Registry struct {
	defs map[string]Def
}

// NewRegistry creates a Registry with the given definitions.
func NewRegistry(defs ...Def) *Registry {
	r := &Registry{defs: make(map[string]Def, len(defs))}
	for _, d := range defs {
		r.defs[strings.ToLower(d.Name)] = d
	}
	return r
}

// Function looks up a definition by name, case-insensitively.
func (r *Registry) Function(name string) (Def, bool) {
	if r == nil {
		return Def{}, false
	}
	d, ok := r.defs[strings.ToLower(name)]
	return d, ok
}

// Merge returns a new Registry with overlay's definitions layered on top
// of this one. On a name collision the overlay wins, which is how
// backend-specific operator tables take precedence over the built-ins.
func (r *Registry) Merge(overlay *Registry) *Registry {
	merged := &Registry{defs: make(map[string]Def)}
	if r != nil {
		for k, v := range r.defs {
			merged.defs[k] = v
		}
	}
	if overlay != nil {
		for k, v := range overlay.defs {
			merged.defs[k] = v
		}
	}
	return merged
}

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.defs))
	for k := range r.defs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
