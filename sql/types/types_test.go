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

package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridsql/gridsql/sql"
)

func TestPromoteNumeric(t *testing.T) {
	cases := []struct {
		a, b sql.Type
		want sql.Type
		ok   bool
	}{
		{Int32, Int32, Int32, true},
		{Int32, Int64, Int64, true},
		{Int64, Float32, Float64, true},
		{Float32, Float32, Float32, true},
		{Float32, Float64, Float64, true},
		{Int64, Decimal, Decimal, true},
		{Float64, Decimal, Decimal, true},
		{Null, Int32, Int32, true},
		{Int64, Null, Int64, true},
		{Int64, Text, nil, false},
		{Boolean, Int32, nil, false},
	}
	for _, c := range cases {
		got, ok := PromoteNumeric(c.a, c.b)
		require.Equal(t, c.ok, ok, "%s + %s", c.a, c.b)
		if c.ok {
			require.True(t, c.want.Equals(got), "%s + %s gave %s", c.a, c.b, got)
		}
	}
}

func TestComparable(t *testing.T) {
	require.True(t, Comparable(Int32, Float64))
	require.True(t, Comparable(Decimal, Int64))
	require.True(t, Comparable(Text, Text))
	require.True(t, Comparable(Boolean, Boolean))
	require.True(t, Comparable(Null, Text))
	require.True(t, Comparable(Int64, Null))
	require.False(t, Comparable(Int64, Text))
	require.False(t, Comparable(Boolean, Int32))
	require.False(t, Comparable(Text, Float64))
}

func TestConvert(t *testing.T) {
	v, err := Int64.Convert(int32(7))
	require.NoError(t, err)
	require.Equal(t, int64(7), v)

	v, err = Float64.Convert(int64(2))
	require.NoError(t, err)
	require.Equal(t, float64(2), v)

	v, err = Text.Convert("abc")
	require.NoError(t, err)
	require.Equal(t, "abc", v)

	_, err = Int64.Convert("abc")
	require.Error(t, err)
}
