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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistributionSatisfies(t *testing.T) {
	partA := PartitionedDistribution(4, "a")
	partB := PartitionedDistribution(4, "b")
	partA2 := PartitionedDistribution(2, "a")

	cases := []struct {
		name      string
		provided  Distribution
		required  Distribution
		satisfies bool
	}{
		{"any accepts single", SingleDistribution(), AnyDistribution(), true},
		{"any accepts partitioned", partA, AnyDistribution(), true},
		{"replicated satisfies single", ReplicatedDistribution(), SingleDistribution(), true},
		{"replicated satisfies partitioned", ReplicatedDistribution(), partA, true},
		{"single satisfies single", SingleDistribution(), SingleDistribution(), true},
		{"single does not satisfy partitioned", SingleDistribution(), partA, false},
		{"partitioned same keys", partA, PartitionedDistribution(4, "a"), true},
		{"partitioned different keys", partA, partB, false},
		{"partitioned different members", partA, partA2, false},
		{"partitioned does not satisfy single", partA, SingleDistribution(), false},
		{"partitioned does not satisfy replicated", partA, ReplicatedDistribution(), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.satisfies, c.provided.Satisfies(c.required))
		})
	}
}

func TestDistributionKeyNormalization(t *testing.T) {
	a := PartitionedDistribution(4, "A", "b")
	require.True(t, a.Equals(PartitionedDistribution(4, "a", "B")))
	require.Equal(t, []string{"a", "b"}, a.Keys())

	// key order is part of the trait: hashing (a,b) and hashing (b,a)
	// place rows on different members
	require.False(t, a.Equals(PartitionedDistribution(4, "b", "a")))
	require.False(t, a.Satisfies(PartitionedDistribution(4, "b", "a")))
}

func TestDistributionKeysSubsetOf(t *testing.T) {
	d := PartitionedDistribution(4, "a", "b")
	require.True(t, d.KeysSubsetOf([]string{"a", "b", "c"}))
	require.True(t, d.KeysSubsetOf([]string{"B", "A"}))
	require.False(t, d.KeysSubsetOf([]string{"a"}))
	require.False(t, SingleDistribution().KeysSubsetOf([]string{"a"}))
}

func TestDistributionString(t *testing.T) {
	require.Equal(t, "ANY", AnyDistribution().String())
	require.Equal(t, "SINGLE", SingleDistribution().String())
	require.Equal(t, "REPLICATED", ReplicatedDistribution().String())
	require.Equal(t, "PARTITIONED(a/4)", PartitionedDistribution(4, "a").String())
}
