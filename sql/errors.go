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

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrSyntax is returned when a query cannot be parsed. The message
	// includes the parser's position information.
	ErrSyntax = errors.NewKind("syntax error: %s")

	// ErrMultipleStatements is returned when more than one statement is
	// submitted in a single query string.
	ErrMultipleStatements = errors.NewKind("expected a single statement, found trailing input at position %d")

	// ErrTableNotFound is returned when a table name does not resolve in
	// any schema on the search path.
	ErrTableNotFound = errors.NewKind("table not found: %s")

	// ErrColumnNotFound is returned when a column reference does not
	// resolve in any table in scope. Arguments: column name, 1-based byte
	// position in the query text.
	ErrColumnNotFound = errors.NewKind("column %q could not be found in any table in scope (at position %d)")

	// ErrAmbiguousColumnName is returned when an unqualified column
	// reference is present in more than one table in scope.
	ErrAmbiguousColumnName = errors.NewKind("ambiguous column name %q, it's present in all these tables: %v")

	// ErrDuplicateAliasOrTable is returned when two tables in the same
	// FROM clause share a name or alias.
	ErrDuplicateAliasOrTable = errors.NewKind("not unique table/alias: %q")

	// ErrFunctionNotFound is returned when a function call does not
	// resolve in the operator table.
	ErrFunctionNotFound = errors.NewKind("function %q not found")

	// ErrInvalidArgumentNumber is returned when a function is called with
	// the wrong number of arguments. Arguments: name, expected, actual.
	ErrInvalidArgumentNumber = errors.NewKind("function %q expected %v arguments, %d given")

	// ErrTypeMismatch is returned when an operator has no defined result
	// type for its operand types. Arguments: operator, left type, right
	// type.
	ErrTypeMismatch = errors.NewKind("operator %q is not defined for types %s and %s")

	// ErrInvalidOperandType is returned when a single operand has a type
	// an operator cannot accept. Arguments: operator, actual type.
	ErrInvalidOperandType = errors.NewKind("operator %q is not defined for type %s")

	// ErrFieldMissing is returned when a projected or ordering expression
	// does not appear in the GROUP BY clause or inside an aggregate.
	ErrFieldMissing = errors.NewKind("expression %q must appear in the GROUP BY clause or be used in an aggregate function")

	// ErrUnsupportedSyntax is returned for syntax the compiler resolves
	// but does not implement.
	ErrUnsupportedSyntax = errors.NewKind("unsupported syntax: %s")

	// ErrUnsupportedFeature is returned for features intentionally out of
	// scope.
	ErrUnsupportedFeature = errors.NewKind("unsupported feature: %s")

	// ErrPlanNotFound is returned when no physical plan in the root
	// equivalence class satisfies the required trait set.
	ErrPlanNotFound = errors.NewKind("no plan satisfies the required traits: %s")

	// ErrBudgetExceeded is returned when the planner's exploration budget
	// is exhausted before a fixed point is reached. Argument: the budget.
	ErrBudgetExceeded = errors.NewKind("optimization budget of %d steps exceeded")

	// ErrInvalidChildrenNumber is returned when WithChildren is called
	// with the wrong number of children. This error indicates a bug.
	ErrInvalidChildrenNumber = errors.NewKind("%T: invalid children number, got %d, expected %d")

	// ErrInternal is an internal-consistency fault: a compiler invariant
	// was violated. This error indicates a bug and aborts the query.
	ErrInternal = errors.NewKind("internal error: %s")
)
