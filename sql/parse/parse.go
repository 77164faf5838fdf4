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

// Package parse turns SQL text into an untyped abstract syntax tree
// using the vitess grammar. Parsing is a pure function of the query text
// and the dialect options; no state is shared across calls.
package parse

import (
	"strings"
	"unicode"

	ast "github.com/dolthub/vitess/go/vt/sqlparser"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gridsql/gridsql/sql"
)

// Options is the dialect configuration for parsing and identifier
// handling.
type Options struct {
	// AnsiQuotes treats double-quoted strings as identifiers rather than
	// string literals.
	AnsiQuotes bool
	// CaseSensitiveIdentifiers disables the default lowercase folding of
	// unquoted identifiers during validation.
	CaseSensitiveIdentifiers bool
}

// ParserOptions maps the dialect options onto the vitess parser.
func (o Options) ParserOptions() ast.ParserOptions {
	return ast.ParserOptions{AnsiQuotes: o.AnsiQuotes}
}

// Fold normalizes an identifier according to the dialect's casing rule.
func (o Options) Fold(ident string) string {
	if o.CaseSensitiveIdentifiers {
		return ident
	}
	return strings.ToLower(ident)
}

// Parse parses a single SQL statement. Trailing semicolons and
// whitespace are ignored; any further statement after the first is
// rejected. Syntax failures are reported as sql.ErrSyntax with the
// parser's position information in the message.
func Parse(ctx *sql.Context, query string, opts Options) (ast.Statement, error) {
	span, _ := ctx.Span("parse", trace.WithAttributes(attribute.String("query", query)))
	defer span.End()

	s := strings.TrimSpace(query)
	s = strings.TrimRightFunc(s, func(r rune) bool {
		return r == ';' || unicode.IsSpace(r)
	})
	if s == "" {
		return nil, sql.ErrSyntax.New("empty statement")
	}

	stmt, ri, err := ast.ParseOneWithOptions(ctx, s, opts.ParserOptions())
	if err != nil {
		return nil, sql.ErrSyntax.New(err.Error())
	}
	if ri != 0 && ri < len(s) {
		return nil, sql.ErrMultipleStatements.New(ri + 1)
	}
	return stmt, nil
}
