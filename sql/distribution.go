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

import (
	"fmt"
	"strings"
)

// DistributionKind enumerates the ways a relation's rows can be spread
// across cluster members.
type DistributionKind byte

const (
	// DistAny places no constraint. Only valid as a requirement; a node
	// never provides it.
	DistAny DistributionKind = iota
	// DistSingle means all rows are on a single member.
	DistSingle
	// DistReplicated means every member holds a full copy of the rows.
	DistReplicated
	// DistPartitioned means rows are hash-partitioned by a key column set
	// over a fixed number of members.
	DistPartitioned
)

// Distribution is a trait describing how the output rows of a relational
// node are spread across cluster members. The zero value is DistAny.
//
// Satisfaction semantics: DistAny is satisfied by anything; DistReplicated
// satisfies every requirement (each member already holds all rows);
// DistSingle satisfies DistSingle; DistPartitioned satisfies only a
// partitioned requirement with the same key columns in the same order
// and the same member count.
type Distribution struct {
	kind    DistributionKind
	keys    []string
	members int
}

// AnyDistribution returns the unconstrained distribution requirement.
func AnyDistribution() Distribution {
	return Distribution{kind: DistAny}
}

// SingleDistribution returns the single-member distribution.
func SingleDistribution() Distribution {
	return Distribution{kind: DistSingle}
}

// ReplicatedDistribution returns the fully replicated distribution.
func ReplicatedDistribution() Distribution {
	return Distribution{kind: DistReplicated}
}

// PartitionedDistribution returns a distribution hash-partitioned by the
// given key columns over the given number of members. Key comparison is
// case-insensitive but positional: hashing by (a, b) does not place rows
// where hashing by (b, a) would.
func PartitionedDistribution(members int, keys ...string) Distribution {
	normed := make([]string, len(keys))
	for i, k := range keys {
		normed[i] = strings.ToLower(k)
	}
	return Distribution{kind: DistPartitioned, keys: normed, members: members}
}

// Kind returns the distribution kind.
func (d Distribution) Kind() DistributionKind { return d.kind }

// Keys returns the normalized partitioning key columns, or nil for
// non-partitioned distributions.
func (d Distribution) Keys() []string { return d.keys }

// Members returns the member count for partitioned distributions, or 0.
func (d Distribution) Members() int { return d.members }

func (d Distribution) IsAny() bool         { return d.kind == DistAny }
func (d Distribution) IsSingle() bool      { return d.kind == DistSingle }
func (d Distribution) IsReplicated() bool  { return d.kind == DistReplicated }
func (d Distribution) IsPartitioned() bool { return d.kind == DistPartitioned }

// Equals reports whether two distributions are identical traits.
func (d Distribution) Equals(o Distribution) bool {
	if d.kind != o.kind || d.members != o.members || len(d.keys) != len(o.keys) {
		return false
	}
	for i := range d.keys {
		if d.keys[i] != o.keys[i] {
			return false
		}
	}
	return true
}

// Satisfies reports whether this provided distribution meets the given
// requirement without any data movement.
func (d Distribution) Satisfies(req Distribution) bool {
	switch {
	case req.kind == DistAny:
		return true
	case d.kind == DistReplicated:
		return true
	default:
		return d.Equals(req)
	}
}

// KeysSubsetOf reports whether every partitioning key appears in the
// given column name set. Used to decide whether per-partition grouping is
// complete: grouping by a superset of the partition key never splits one
// group across members.
func (d Distribution) KeysSubsetOf(cols []string) bool {
	if d.kind != DistPartitioned {
		return false
	}
	set := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		set[strings.ToLower(c)] = struct{}{}
	}
	for _, k := range d.keys {
		if _, ok := set[k]; !ok {
			return false
		}
	}
	return true
}

func (d Distribution) String() string {
	switch d.kind {
	case DistAny:
		return "ANY"
	case DistSingle:
		return "SINGLE"
	case DistReplicated:
		return "REPLICATED"
	default:
		return fmt.Sprintf("PARTITIONED(%s/%d)", strings.Join(d.keys, ","), d.members)
	}
}
