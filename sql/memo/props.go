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

package memo

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/gridsql/gridsql/sql"
)

// Required is the physical trait set a parent demands from a group: a
// distribution and, optionally, a row ordering. Winners are memoized
// per required trait set.
type Required struct {
	Dist     sql.Distribution
	Ordering []sql.SortField
}

// Any places no constraint on the plan.
func Any() Required {
	return Required{Dist: sql.AnyDistribution()}
}

// OnSingle requires all rows on a single member, the usual root
// requirement: the member coordinating the query must see the whole
// result.
func OnSingle() Required {
	return Required{Dist: sql.SingleDistribution()}
}

// isAny reports whether the requirement constrains nothing.
func (r Required) isAny() bool {
	return r.Dist.IsAny() && len(r.Ordering) == 0
}

// key returns a hash identifying the trait set, used to index winners.
func (r Required) key() uint64 {
	var b strings.Builder
	b.WriteString(r.Dist.String())
	for _, f := range r.Ordering {
		b.WriteByte('|')
		b.WriteString(f.String())
	}
	return xxhash.Sum64String(b.String())
}

func (r Required) String() string {
	if len(r.Ordering) == 0 {
		return r.Dist.String()
	}
	fields := make([]string, len(r.Ordering))
	for i, f := range r.Ordering {
		fields[i] = f.String()
	}
	return fmt.Sprintf("%s ORDER BY %s", r.Dist, strings.Join(fields, ", "))
}

// orderingSatisfies reports whether the provided ordering is at least as
// strict as the required one, by prefix comparison of the sort terms.
func orderingSatisfies(provided, required []sql.SortField) bool {
	if len(required) == 0 {
		return true
	}
	if len(provided) < len(required) {
		return false
	}
	for i, f := range required {
		if provided[i].Order != f.Order || provided[i].Column.String() != f.Column.String() {
			return false
		}
	}
	return true
}
