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

package function

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridsql/gridsql/sql"
	"github.com/gridsql/gridsql/sql/types"
)

func TestLookupIsCaseInsensitive(t *testing.T) {
	r := Defaults()
	d, ok := r.Function("UPPER")
	require.True(t, ok)
	require.Equal(t, "upper", d.Name)
	_, ok = r.Function("no_such_function")
	require.False(t, ok)
}

func TestAcceptsArity(t *testing.T) {
	fixed := Def{Name: "mod", MinArgs: 2, MaxArgs: 2}
	require.True(t, fixed.AcceptsArity(2))
	require.False(t, fixed.AcceptsArity(1))
	require.False(t, fixed.AcceptsArity(3))

	variadic := Def{Name: "concat", MinArgs: 1, MaxArgs: -1}
	require.True(t, variadic.AcceptsArity(1))
	require.True(t, variadic.AcceptsArity(9))
	require.False(t, variadic.AcceptsArity(0))
}

func TestMergeOverlayWins(t *testing.T) {
	custom := NewRegistry(
		Def{Name: "upper", MinArgs: 2, MaxArgs: 2, Type: func(args []sql.Expression) (sql.Type, error) {
			return types.Int64, nil
		}},
		Def{Name: "backend_fn", MinArgs: 0, MaxArgs: 0, Type: func(args []sql.Expression) (sql.Type, error) {
			return types.Text, nil
		}},
	)
	merged := Defaults().Merge(custom)

	d, ok := merged.Function("upper")
	require.True(t, ok)
	require.Equal(t, 2, d.MinArgs)

	_, ok = merged.Function("backend_fn")
	require.True(t, ok)

	// built-ins not overridden are still present
	_, ok = merged.Function("lower")
	require.True(t, ok)
}

func TestMergeNilReceiverAndOverlay(t *testing.T) {
	var nilReg *Registry
	merged := nilReg.Merge(Defaults())
	_, ok := merged.Function("sum")
	require.True(t, ok)

	merged = Defaults().Merge(nil)
	_, ok = merged.Function("sum")
	require.True(t, ok)
}
