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

package parse

import (
	"testing"

	ast "github.com/dolthub/vitess/go/vt/sqlparser"
	"github.com/stretchr/testify/require"

	"github.com/gridsql/gridsql/sql"
)

func TestParseSelect(t *testing.T) {
	ctx := sql.NewEmptyContext()
	stmt, err := Parse(ctx, "SELECT a, b FROM t WHERE a = 1", Options{})
	require.NoError(t, err)
	_, ok := stmt.(*ast.Select)
	require.True(t, ok)
}

func TestParseTrailingSemicolon(t *testing.T) {
	ctx := sql.NewEmptyContext()
	_, err := Parse(ctx, "SELECT 1 FROM t;  ", Options{})
	require.NoError(t, err)
}

func TestParseSyntaxError(t *testing.T) {
	ctx := sql.NewEmptyContext()
	_, err := Parse(ctx, "SELECT FROM WHERE", Options{})
	require.Error(t, err)
	require.True(t, sql.ErrSyntax.Is(err))
}

func TestParseEmptyStatement(t *testing.T) {
	ctx := sql.NewEmptyContext()
	_, err := Parse(ctx, "   ;  ", Options{})
	require.Error(t, err)
	require.True(t, sql.ErrSyntax.Is(err))
}

func TestParseMultipleStatements(t *testing.T) {
	ctx := sql.NewEmptyContext()
	_, err := Parse(ctx, "SELECT 1 FROM t; SELECT 2 FROM t", Options{})
	require.Error(t, err)
	require.True(t, sql.ErrMultipleStatements.Is(err))
}

func TestFold(t *testing.T) {
	require.Equal(t, "abc", Options{}.Fold("ABC"))
	require.Equal(t, "ABC", Options{CaseSensitiveIdentifiers: true}.Fold("ABC"))
}
