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

import "fmt"

// Type represents a SQL data type. Concrete types live in sql/types.
type Type interface {
	fmt.Stringer
	// Equals reports whether the given type is identical to this one.
	Equals(other Type) bool
	// Convert coerces a Go value to this type's canonical representation,
	// or returns an error if the value cannot represent this type.
	Convert(v interface{}) (interface{}, error)
	// Zero returns the zero value for this type.
	Zero() interface{}
}
